package cache

import (
	"context"
	"time"
)

// Cache 缓存接口
type Cache interface {
	// Get 获取缓存值
	Get(ctx context.Context, key string) (interface{}, bool)
	// Set 设置缓存值，expiration<=0 时使用默认过期时间
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	// Delete 删除缓存
	Delete(ctx context.Context, key string) error
	// Exists 检查键是否存在
	Exists(ctx context.Context, key string) bool
	// Clear 清空缓存
	Clear(ctx context.Context) error
	// Close 关闭缓存
	Close() error
}

// Sizer 可统计条目数的缓存
type Sizer interface {
	Len() int
}

// Expirer 支持主动清理过期条目的缓存
type Expirer interface {
	DeleteExpired() int
}
