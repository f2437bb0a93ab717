package middleware

import (
	"github.com/code-100-precent/LingMeme/pkg/constants"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDMiddleware adds a unique request ID to each request
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Try to get request ID from header
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			// Generate new request ID
			requestID = uuid.New().String()
		}

		// Set request ID in context
		c.Set(constants.RequestIDField, requestID)

		// Set request ID in response header
		c.Header("X-Request-ID", requestID)

		c.Next()
	}
}

// GetRequestID gets request ID from context
func GetRequestID(c *gin.Context) string {
	if id, exists := c.Get(constants.RequestIDField); exists {
		if str, ok := id.(string); ok {
			return str
		}
	}
	return ""
}
