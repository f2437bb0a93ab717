package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/code-100-precent/LingMeme/pkg/utils/response"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RecoveryMiddleware recovers from panics and answers with the JSON envelope
func RecoveryMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("Panic recovered",
					zap.Any("error", err),
					zap.String("path", c.Request.URL.Path),
					zap.String("method", c.Request.Method),
					zap.String("request_id", GetRequestID(c)),
					zap.String("stack", string(debug.Stack())),
				)

				c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
					Code: http.StatusInternalServerError,
					Msg:  "Internal server error",
					Data: fmt.Sprintf("%v", err),
				})
			}
		}()

		c.Next()
	}
}
