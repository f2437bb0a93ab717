package bootstrap

import (
	"fmt"
	"os"
	"strings"

	"github.com/code-100-precent/LingMeme/pkg/config"
	"github.com/code-100-precent/LingMeme/pkg/logger"
	"go.uber.org/zap"
)

// LogConfigInfo Print global configuration information
func LogConfigInfo() {
	cfg := config.GlobalConfig
	logger.Info("system config load finished")
	logger.Info("global config",
		zap.String("server_name", cfg.ServerName),
		zap.String("server_url", cfg.ServerUrl),
		zap.String("mode", cfg.Mode),
	)

	logger.Info("base config",
		zap.String("addr", cfg.Addr),
		zap.String("db_driver", cfg.DBDriver),
		zap.String("dsn", cfg.DSN),
		zap.String("api_prefix", cfg.APIPrefix),
		zap.String("monitor_prefix", cfg.MonitorPrefix),
		zap.String("secret_expire_days", cfg.SecretExpireDays),
		zap.Bool("ssl_enabled", cfg.SSLEnabled),
		zap.String("rate_limit", cfg.RateLimit),
	)

	logger.Info("storage config",
		zap.String("storage_kind", cfg.StorageKind),
		zap.String("upload_dir", cfg.UploadDir),
		zap.String("cache_type", cfg.Cache.Type),
		zap.String("redis_addr", cfg.Cache.Redis.Addr),
		zap.Duration("feed_cache_ttl", cfg.FeedCacheTTL),
	)

	logger.Info("editor config",
		zap.Int("max_width", cfg.Editor.MaxWidth),
		zap.Int("max_height", cfg.Editor.MaxHeight),
		zap.Float64("anchor_margin", cfg.Editor.AnchorMargin),
		zap.Float64("hit_padding", cfg.Editor.HitPadding),
		zap.Float64("font_size_min", cfg.Editor.FontSizeMin),
		zap.Float64("font_size_max", cfg.Editor.FontSizeMax),
		zap.Float64("default_font_size", cfg.Editor.DefaultFontSize),
		zap.Float64("stroke_width", cfg.Editor.StrokeWidth),
		zap.Int("max_upload_mb", cfg.Editor.MaxUploadMB),
		zap.Bool("remote_images", cfg.Editor.RemoteImages),
		zap.Duration("session_ttl", cfg.Editor.SessionTTL),
		zap.Int("max_sessions", cfg.Editor.MaxSessions),
	)

	logger.Info("log config",
		zap.String("log_level", cfg.Log.Level),
		zap.String("log_filename", cfg.Log.Filename),
		zap.Int("log_max_size", cfg.Log.MaxSize),
		zap.Int("log_max_age", cfg.Log.MaxAge),
		zap.Int("log_max_backups", cfg.Log.MaxBackups),
	)
}

// PrintBannerFromFile Read file and print
func PrintBannerFromFile(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return err
	}

	lines := strings.Split(string(data), "\n")

	colors := []string{
		"\x1b[38;5;165m",
		"\x1b[38;5;189m",
		"\x1b[38;5;207m",
		"\x1b[38;5;219m",
		"\x1b[38;5;225m",
		"\x1b[38;5;231m",
	}

	for i, line := range lines {
		color := colors[i%len(colors)]
		fmt.Println(color + line + "\x1b[0m")
	}
	return nil
}
