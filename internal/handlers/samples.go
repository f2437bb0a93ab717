package handlers

import (
	"net/http"

	"github.com/code-100-precent/LingMeme/pkg/utils/response"
	"github.com/gin-gonic/gin"
)

// SampleView 示例图列表项
type SampleView struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

func (h *Handlers) handleListSamples(c *gin.Context) {
	names := h.loader.Samples()
	out := make([]SampleView, 0, len(names))
	for _, n := range names {
		out = append(out, SampleView{Name: n, URL: h.apiPrefix + "/editor/samples/" + n})
	}
	response.Success(c, "success", out)
}

func (h *Handlers) handleGetSample(c *gin.Context) {
	name := c.Param("name")
	data, err := h.loader.SampleBytes(name)
	if err != nil {
		fail(c, err)
		return
	}
	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, http.DetectContentType(data), data)
}
