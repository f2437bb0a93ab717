package session

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/code-100-precent/LingMeme/internal/editor"
	"github.com/code-100-precent/LingMeme/pkg/cache"
	"github.com/code-100-precent/LingMeme/pkg/logger"
	"github.com/code-100-precent/LingMeme/pkg/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrSessionNotFound = errors.New("editor session not found")

type Config struct {
	// TTL is a sliding idle timeout
	TTL         time.Duration
	MaxSessions int
	Editor      editor.Options
	// Painter is shared by every editor; nil selects the built-in font stack
	Painter editor.TextPainter
	// OnDrop runs in its own goroutine after a session is evicted, expired or deleted
	OnDrop func(id string)
}

// Registry keeps live sessions in an LRU bounded by MaxSessions
type Registry struct {
	cfg    Config
	store  cache.Cache
	active atomic.Int64
}

func NewRegistry(cfg Config) *Registry {
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * time.Minute
	}
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = 1000
	}
	r := &Registry{cfg: cfg}
	r.store = cache.NewLRUCache(cache.LRUCacheConfig{
		MaxSize:           cfg.MaxSessions,
		DefaultExpiration: cfg.TTL,
		CleanupInterval:   cfg.TTL / 2,
		OnEvict: func(key string, _ interface{}) {
			// 回调在缓存锁内执行，只更新计数
			n := r.active.Add(-1)
			metrics.ActiveSessions.Set(float64(n))
			logger.Debug("editor session dropped", zap.String("session", key))
			if cfg.OnDrop != nil {
				go cfg.OnDrop(key)
			}
		},
	})
	return r
}

// Create starts a new session with an empty editor
func (r *Registry) Create(ctx context.Context) (*Session, error) {
	id := uuid.NewString()
	s := newSession(id, editor.New(r.cfg.Editor, r.cfg.Painter), time.Now())
	s.touch = func() { r.touch(s) }
	if err := r.store.Set(ctx, id, s, r.cfg.TTL); err != nil {
		return nil, err
	}
	n := r.active.Add(1)
	metrics.ActiveSessions.Set(float64(n))
	logger.Info("editor session created", zap.String("session", id))
	return s, nil
}

// Get returns a live session and extends its TTL
func (r *Registry) Get(ctx context.Context, id string) (*Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrSessionNotFound
	}
	v, ok := r.store.Get(ctx, id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	s, ok := v.(*Session)
	if !ok {
		return nil, ErrSessionNotFound
	}
	_ = r.store.Set(ctx, id, s, r.cfg.TTL)
	return s, nil
}

// touch extends the TTL of a session that is still registered. A deleted or
// expired session is not brought back.
func (r *Registry) touch(s *Session) {
	ctx := context.Background()
	if v, ok := r.store.Get(ctx, s.ID); ok && v == s {
		_ = r.store.Set(ctx, s.ID, s, r.cfg.TTL)
	}
}

// Delete ends a session. Deleting an unknown id is not an error.
func (r *Registry) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, id)
}

// Len is the number of live sessions
func (r *Registry) Len() int {
	return int(r.active.Load())
}

// Purge drops expired sessions and returns how many went away
func (r *Registry) Purge() int {
	if e, ok := r.store.(cache.Expirer); ok {
		return e.DeleteExpired()
	}
	return 0
}

// Close drops every session and stops the cleanup goroutine
func (r *Registry) Close() error {
	_ = r.store.Clear(context.Background())
	return r.store.Close()
}
