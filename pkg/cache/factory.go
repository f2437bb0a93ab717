package cache

import "fmt"

// NewCache 按配置创建缓存实例
func NewCache(cfg Config) (Cache, error) {
	switch cfg.Type {
	case "", KindLocal, KindGoCache:
		return NewGoCache(cfg.Local), nil
	case KindLRU:
		return NewLRUCache(LRUCacheConfig{
			MaxSize:           cfg.Local.MaxSize,
			DefaultExpiration: cfg.Local.DefaultExpiration,
			CleanupInterval:   cfg.Local.CleanupInterval,
		}), nil
	case KindRedis:
		return NewRedisCache(cfg.Redis)
	default:
		return nil, fmt.Errorf("unknown cache type: %s", cfg.Type)
	}
}
