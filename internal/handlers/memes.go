package handlers

import (
	"net/http"

	"github.com/code-100-precent/LingMeme/internal/gallery"
	"github.com/code-100-precent/LingMeme/internal/models"
	"github.com/code-100-precent/LingMeme/pkg/constants"
	"github.com/code-100-precent/LingMeme/pkg/utils/response"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"
)

// MemePage is one page of the gallery, newest first
type MemePage struct {
	Items []models.Meme `json:"items"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Size  int           `json:"size"`
}

func (h *Handlers) handleListMemes(c *gin.Context) {
	if h.gallery == nil {
		fail(c, errGalleryDisabled)
		return
	}
	page := cast.ToInt(c.DefaultQuery("page", "1"))
	size := cast.ToInt(c.DefaultQuery("size", cast.ToString(gallery.DefaultPageSize)))
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = gallery.DefaultPageSize
	}
	if size > gallery.MaxPageSize {
		size = gallery.MaxPageSize
	}
	items, total, err := h.gallery.List(c.Request.Context(), page, size)
	if err != nil {
		fail(c, err)
		return
	}
	if items == nil {
		items = []models.Meme{}
	}
	response.Success(c, "success", MemePage{Items: items, Total: total, Page: page, Size: size})
}

func (h *Handlers) handleGetMeme(c *gin.Context) {
	if h.gallery == nil {
		fail(c, errGalleryDisabled)
		return
	}
	meme, err := h.gallery.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, "success", meme)
}

func (h *Handlers) handleMemeImage(c *gin.Context) {
	if h.gallery == nil {
		fail(c, errGalleryDisabled)
		return
	}
	rc, size, err := h.gallery.OpenImage(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	defer rc.Close()
	c.DataFromReader(http.StatusOK, size, constants.PNGContentType, rc, map[string]string{
		"Cache-Control": "public, max-age=31536000, immutable",
	})
}
