package config

import (
	"log"
	"os"
	"time"

	"github.com/code-100-precent/LingMeme/pkg/cache"
	"github.com/code-100-precent/LingMeme/pkg/logger"
	"github.com/code-100-precent/LingMeme/pkg/utils"
)

// Config represents the system configuration
type Config struct {
	ServerName       string `env:"SERVER_NAME"`
	ServerUrl        string `env:"SERVER_URL"`
	DBDriver         string `env:"DB_DRIVER"`
	DSN              string `env:"DSN"`
	Log              logger.LogConfig
	Addr             string `env:"ADDR"`
	Mode             string `env:"MODE"`
	APIPrefix        string `env:"API_PREFIX"`
	MonitorPrefix    string `env:"MONITOR_PREFIX"`
	SessionSecret    string `env:"SESSION_SECRET"`
	SecretExpireDays string `env:"SESSION_EXPIRE_DAYS"`
	StorageKind      string `env:"STORAGE_KIND"`
	UploadDir        string `env:"UPLOAD_DIR"`
	// FeedCacheTTL 画廊列表缓存时间
	FeedCacheTTL time.Duration `env:"FEED_CACHE_TTL"`
	// RateLimit ulule/limiter 格式，如 "1000-M"
	RateLimit   string `env:"RATE_LIMIT"`
	Cache       cache.Config
	Editor      EditorConfig
	SSLEnabled  bool   `env:"SSL_ENABLED"`
	SSLCertFile string `env:"SSL_CERT_FILE"`
	SSLKeyFile  string `env:"SSL_KEY_FILE"`
}

// EditorConfig holds the meme editor tunables
type EditorConfig struct {
	MaxWidth        int           `env:"EDITOR_MAX_WIDTH"`
	MaxHeight       int           `env:"EDITOR_MAX_HEIGHT"`
	AnchorMargin    float64       `env:"EDITOR_ANCHOR_MARGIN"`
	HitPadding      float64       `env:"EDITOR_HIT_PADDING"`
	FontSizeMin     float64       `env:"EDITOR_FONT_SIZE_MIN"`
	FontSizeMax     float64       `env:"EDITOR_FONT_SIZE_MAX"`
	DefaultFontSize float64       `env:"EDITOR_DEFAULT_FONT_SIZE"`
	StrokeWidth     float64       `env:"EDITOR_STROKE_WIDTH"`
	MaxUploadMB     int           `env:"EDITOR_MAX_UPLOAD_MB"`
	RemoteImages    bool          `env:"EDITOR_REMOTE_IMAGES"`
	SessionTTL      time.Duration `env:"EDITOR_SESSION_TTL"`
	MaxSessions     int           `env:"EDITOR_MAX_SESSIONS"`
}

// MaxUploadBytes is MaxUploadMB in bytes
func (e EditorConfig) MaxUploadBytes() int64 {
	return int64(e.MaxUploadMB) << 20
}

// GlobalConfig is the global configuration instance
var GlobalConfig *Config

// Load loads configuration from environment variables
func Load() error {
	// Load .env file based on APP_ENV
	env := os.Getenv("APP_ENV")
	if err := utils.LoadEnv(env); err != nil {
		log.Printf("Note: .env file not found or failed to load: %v (using default values)", err)
	}

	GlobalConfig = &Config{
		ServerName:       getStringOrDefault("SERVER_NAME", "LingMeme"),
		ServerUrl:        getStringOrDefault("SERVER_URL", ""),
		DBDriver:         getStringOrDefault("DB_DRIVER", "sqlite"),
		DSN:              getStringOrDefault("DSN", "./lingmeme.db"),
		Addr:             getStringOrDefault("ADDR", ":7072"),
		Mode:             getStringOrDefault("MODE", "development"),
		APIPrefix:        getStringOrDefault("API_PREFIX", "/api"),
		MonitorPrefix:    getStringOrDefault("MONITOR_PREFIX", "/metrics"),
		SecretExpireDays: getStringOrDefault("SESSION_EXPIRE_DAYS", "7"),
		SessionSecret:    getStringOrDefault("SESSION_SECRET", generateDefaultSessionSecret()),
		StorageKind:      getStringOrDefault("STORAGE_KIND", "local"),
		UploadDir:        getStringOrDefault("UPLOAD_DIR", "./uploads"),
		FeedCacheTTL:     utils.GetDurationEnv("FEED_CACHE_TTL", 30*time.Second),
		RateLimit:        getStringOrDefault("RATE_LIMIT", "1000-M"),
		Log: logger.LogConfig{
			Level:      getStringOrDefault("LOG_LEVEL", "info"),
			Filename:   getStringOrDefault("LOG_FILENAME", "./logs/app.log"),
			MaxSize:    getIntOrDefault("LOG_MAX_SIZE", 100),
			MaxAge:     getIntOrDefault("LOG_MAX_AGE", 30),
			MaxBackups: getIntOrDefault("LOG_MAX_BACKUPS", 5),
			Daily:      getBoolOrDefault("LOG_DAILY", true),
		},
		Cache:       loadCacheConfig(),
		Editor:      loadEditorConfig(),
		SSLEnabled:  getBoolOrDefault("SSL_ENABLED", false),
		SSLCertFile: getStringOrDefault("SSL_CERT_FILE", ""),
		SSLKeyFile:  getStringOrDefault("SSL_KEY_FILE", ""),
	}
	return nil
}

// getStringOrDefault gets environment variable value, returns default if empty
func getStringOrDefault(key, defaultValue string) string {
	value := utils.GetEnv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getBoolOrDefault gets boolean environment variable value, returns default if empty
func getBoolOrDefault(key string, defaultValue bool) bool {
	value := utils.GetEnv(key)
	if value == "" {
		return defaultValue
	}
	return utils.GetBoolEnv(key)
}

// getIntOrDefault gets integer environment variable value, returns default if zero
func getIntOrDefault(key string, defaultValue int) int {
	value := utils.GetIntEnv(key)
	if value == 0 {
		return defaultValue
	}
	return int(value)
}

func getFloatOrDefault(key string, defaultValue float64) float64 {
	value := utils.GetFloatEnv(key)
	if value <= 0 {
		return defaultValue
	}
	return value
}

// generateDefaultSessionSecret generates a default session secret for development only
func generateDefaultSessionSecret() string {
	return "default-secret-key-change-in-production-" + utils.RandText(16)
}

func loadEditorConfig() EditorConfig {
	return EditorConfig{
		MaxWidth:        getIntOrDefault("EDITOR_MAX_WIDTH", 800),
		MaxHeight:       getIntOrDefault("EDITOR_MAX_HEIGHT", 600),
		AnchorMargin:    getFloatOrDefault("EDITOR_ANCHOR_MARGIN", 50),
		HitPadding:      getFloatOrDefault("EDITOR_HIT_PADDING", 10),
		FontSizeMin:     getFloatOrDefault("EDITOR_FONT_SIZE_MIN", 20),
		FontSizeMax:     getFloatOrDefault("EDITOR_FONT_SIZE_MAX", 100),
		DefaultFontSize: getFloatOrDefault("EDITOR_DEFAULT_FONT_SIZE", 48),
		StrokeWidth:     getFloatOrDefault("EDITOR_STROKE_WIDTH", 3),
		MaxUploadMB:     getIntOrDefault("EDITOR_MAX_UPLOAD_MB", 10),
		RemoteImages:    getBoolOrDefault("EDITOR_REMOTE_IMAGES", false),
		SessionTTL:      utils.GetDurationEnv("EDITOR_SESSION_TTL", 30*time.Minute),
		MaxSessions:     getIntOrDefault("EDITOR_MAX_SESSIONS", 1000),
	}
}

// loadCacheConfig loads cache configuration with all default values
func loadCacheConfig() cache.Config {
	redisAddr := getStringOrDefault("REDIS_ADDR", "localhost:6379")
	return cache.Config{
		Type: getStringOrDefault("CACHE_TYPE", cache.KindLocal),
		Redis: cache.RedisConfig{
			Addr: redisAddr,
			// REDIS_DB 可以为 0
			Password:     utils.GetEnv("REDIS_PASSWORD"),
			DB:           int(utils.GetIntEnv("REDIS_DB")),
			PoolSize:     getIntOrDefault("REDIS_POOL_SIZE", 10),
			MinIdleConns: getIntOrDefault("REDIS_MIN_IDLE_CONNS", 5),
			DialTimeout:  utils.GetDurationEnv("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  utils.GetDurationEnv("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: utils.GetDurationEnv("REDIS_WRITE_TIMEOUT", 3*time.Second),
			IdleTimeout:  utils.GetDurationEnv("REDIS_IDLE_TIMEOUT", 5*time.Minute),
			KeyPrefix:    getStringOrDefault("REDIS_KEY_PREFIX", "lingmeme:"),
		},
		Local: cache.LocalConfig{
			MaxSize:           getIntOrDefault("LOCAL_CACHE_MAX_SIZE", 1000),
			DefaultExpiration: utils.GetDurationEnv("LOCAL_CACHE_DEFAULT_EXPIRATION", 5*time.Minute),
			CleanupInterval:   utils.GetDurationEnv("LOCAL_CACHE_CLEANUP_INTERVAL", 10*time.Minute),
		},
	}
}
