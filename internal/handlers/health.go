package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/code-100-precent/LingMeme/pkg/middleware"
	"github.com/code-100-precent/LingMeme/pkg/utils"
	"github.com/code-100-precent/LingMeme/pkg/utils/response"
	"github.com/gin-gonic/gin"
)

var errDatabaseUnavailable = &utils.Error{Code: http.StatusServiceUnavailable, Message: "database unavailable"}

const readyPingTimeout = 2 * time.Second

// Readiness is reported by the ready probe
type Readiness struct {
	Database string `json:"database"`
	Sessions int    `json:"sessions"`
}

// handleReady pings the database bound to the request
func (h *Handlers) handleReady(c *gin.Context) {
	db := middleware.GetDB(c)
	if db == nil {
		fail(c, errDatabaseUnavailable)
		return
	}
	sqlDB, err := db.DB()
	if err == nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), readyPingTimeout)
		defer cancel()
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		fail(c, errDatabaseUnavailable)
		return
	}
	response.Success(c, "ready", Readiness{
		Database: db.Dialector.Name(),
		Sessions: h.registry.Len(),
	})
}
