package middleware

import (
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
)

// CompressionConfig represents compression middleware configuration
type CompressionConfig struct {
	// Compression level (1-9, default: 6)
	Level int
	// Exclude paths from compression (prefix match)
	ExcludePaths []string
	// ExcludePathRegexs PNG 与 WebSocket 路由不压缩
	ExcludePathRegexs []string
	// ExcludeExtensions e.g. ".png"
	ExcludeExtensions []string
}

// DefaultCompressionConfig returns default compression configuration
func DefaultCompressionConfig() *CompressionConfig {
	return &CompressionConfig{
		Level: 6,
		ExcludePaths: []string{
			"/metrics",
			"/health",
			"/uploads",
		},
		ExcludePathRegexs: []string{
			`/editor/sessions/[^/]+/(preview|download|ws)$`,
			`/editor/samples/[^/]+$`,
			`/memes/[^/]+/image$`,
		},
		ExcludeExtensions: []string{".png", ".jpg", ".jpeg", ".gif", ".webp"},
	}
}

// CompressionMiddleware creates compression middleware
func CompressionMiddleware(config *CompressionConfig) gin.HandlerFunc {
	if config == nil {
		config = DefaultCompressionConfig()
	}

	return gzip.Gzip(config.Level,
		gzip.WithExcludedPaths(config.ExcludePaths),
		gzip.WithExcludedPathsRegexs(config.ExcludePathRegexs),
		gzip.WithExcludedExtensions(config.ExcludeExtensions),
	)
}
