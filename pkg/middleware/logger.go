package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// LoggerMiddleware 请求日志中间件
func LoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery
		method := c.Request.Method

		// 处理请求
		c.Next()

		// Filter monitoring-related paths
		if strings.Contains(path, "/metrics") ||
			strings.Contains(path, "/static") ||
			strings.Contains(path, "/favicon.ico") {
			return
		}

		status := c.Writer.Status()
		// 成功的 GET 不记录；失败的一律记录
		if method == "GET" && status < 400 {
			return
		}

		fields := []zap.Field{
			zap.Int("status", status),
			zap.String("method", method),
			zap.String("path", path),
			zap.String("query", query),
			zap.String("ip", c.ClientIP()),
			zap.String("user-agent", c.Request.UserAgent()),
			zap.Duration("latency", time.Since(start)),
		}
		if id := GetRequestID(c); id != "" {
			fields = append(fields, zap.String("request_id", id))
		}

		// 拖拽时指针事件非常密集，降为 debug
		if status < 400 && strings.HasSuffix(path, "/events") {
			logger.Debug("Request", fields...)
			return
		}
		logger.Info("Request", fields...)
	}
}
