package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// goCacheWrapper 基于 patrickmn/go-cache 的本地缓存
type goCacheWrapper struct {
	cache *gocache.Cache
}

// NewGoCache 创建本地缓存
func NewGoCache(config LocalConfig) Cache {
	exp := config.DefaultExpiration
	if exp <= 0 {
		exp = gocache.NoExpiration
	}
	return &goCacheWrapper{cache: gocache.New(exp, config.CleanupInterval)}
}

func (g *goCacheWrapper) Get(ctx context.Context, key string) (interface{}, bool) {
	return g.cache.Get(key)
}

func (g *goCacheWrapper) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if expiration <= 0 {
		expiration = gocache.DefaultExpiration
	}
	g.cache.Set(key, value, expiration)
	return nil
}

func (g *goCacheWrapper) Delete(ctx context.Context, key string) error {
	g.cache.Delete(key)
	return nil
}

func (g *goCacheWrapper) Exists(ctx context.Context, key string) bool {
	_, ok := g.cache.Get(key)
	return ok
}

func (g *goCacheWrapper) Clear(ctx context.Context) error {
	g.cache.Flush()
	return nil
}

func (g *goCacheWrapper) Len() int {
	return g.cache.ItemCount()
}

func (g *goCacheWrapper) Close() error {
	return nil
}

func (g *goCacheWrapper) DeleteExpired() int {
	before := g.cache.ItemCount()
	g.cache.DeleteExpired()
	return before - g.cache.ItemCount()
}
