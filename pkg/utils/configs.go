package utils

import (
	"context"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/code-100-precent/LingMeme/pkg/cache"
	"github.com/spf13/cast"
)

// envCacheTTL 环境变量缓存时间
const envCacheTTL = 10 * time.Second

var (
	envCache     cache.Cache
	envCacheOnce sync.Once
)

// getEnvCache 获取环境变量缓存（延迟初始化）
func getEnvCache() cache.Cache {
	envCacheOnce.Do(func() {
		envCache = cache.NewLRUCache(cache.LRUCacheConfig{
			MaxSize:           1024,
			DefaultExpiration: envCacheTTL,
			CleanupInterval:   time.Minute,
		})
	})
	return envCache
}

func GetEnv(key string) string {
	v, _ := LookupEnv(key)
	return v
}

func GetBoolEnv(key string) bool {
	v, _ := strconv.ParseBool(GetEnv(key))
	return v
}

func GetFloatEnv(key string) float64 {
	return cast.ToFloat64(GetEnv(key))
}

func GetIntEnv(key string) int64 {
	v, _ := strconv.ParseInt(GetEnv(key), 10, 64)
	return v
}

// GetDurationEnv parses values like "30m" or "90s"; a bare number is read as seconds
func GetDurationEnv(key string, defaultVal time.Duration) time.Duration {
	v := GetEnv(key)
	if v == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.ParseInt(v, 10, 64); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultVal
}

func LookupEnv(key string) (value string, found bool) {
	key = strings.ToUpper(key)
	ctx := context.Background()
	ec := getEnvCache()
	if v, ok := os.LookupEnv(key); ok {
		_ = ec.Set(ctx, key, v, envCacheTTL)
		return v, true
	}
	if val, ok := ec.Get(ctx, key); ok {
		if v, ok := val.(string); ok {
			return v, true
		}
	}
	data, err := os.ReadFile(".env")
	if err != nil {
		return "", false
	}
	for _, line := range strings.Split(string(data), "\n") {
		v := strings.TrimSpace(line)
		if v == "" || v[0] == '#' || !strings.Contains(v, "=") {
			continue
		}
		vs := strings.SplitN(v, "=", 2)
		k, vv := strings.ToUpper(strings.TrimSpace(vs[0])), strings.TrimSpace(vs[1])
		_ = ec.Set(ctx, k, vv, envCacheTTL)
		if k == key {
			return vv, true
		}
	}
	return "", false
}

// LoadEnv Load .env file based on environment
func LoadEnv(env string) error {
	envFile := ".env"
	if env != "" {
		envFile = ".env." + env
	}

	data, err := os.ReadFile(envFile)
	if err != nil {
		return err
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		os.Setenv(strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]))
	}
	return nil
}
