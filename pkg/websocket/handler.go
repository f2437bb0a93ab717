package websocket

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Handler serves hub statistics over HTTP
type Handler struct {
	hub *Hub
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub) *Handler {
	return &Handler{
		hub: hub,
	}
}

// RegisterRoutes registers the stats and health routes under r
func RegisterRoutes(r gin.IRoutes, handler *Handler) {
	r.GET("/ws/stats", handler.GetStats)
	r.GET("/ws/health", handler.HealthCheck)
}

// GetStats gets WebSocket statistics
func (h *Handler) GetStats(c *gin.Context) {
	stats := GetConfigSummary(h.hub.config)
	stats["total_connections"] = h.hub.GetConnectionCount()
	if group := c.Query("group"); group != "" {
		stats["group"] = group
		stats["group_connections"] = h.hub.GetGroupConnections(group)
	}
	c.JSON(http.StatusOK, stats)
}

// HealthCheck performs WebSocket health check
func (h *Handler) HealthCheck(c *gin.Context) {
	if h.hub.closed.Load() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  "WebSocket Hub is closed",
		})
		return
	}

	totalConnections := h.hub.GetConnectionCount()
	maxConnections := h.hub.config.MaxConnections

	status := "healthy"
	if totalConnections >= maxConnections*9/10 { // 90% or above is considered warning
		status = "warning"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":            status,
		"total_connections": totalConnections,
		"max_connections":   maxConnections,
		"connection_usage":  float64(totalConnections) / float64(maxConnections) * 100,
		"timestamp":         time.Now().Unix(),
	})
}
