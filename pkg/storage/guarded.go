package stores

import (
	"context"
	"errors"
	"io"

	"github.com/code-100-precent/LingMeme/pkg/circuitbreaker"
)

// GuardedStore wraps a remote Store with a circuit breaker. Idempotent calls are
// retried with backoff; Write is not since the reader may be partially consumed.
type GuardedStore struct {
	Store
	Breaker *circuitbreaker.CircuitBreaker
	Retry   circuitbreaker.RetryConfig
}

// IsBackendFailure 对象不存在和参数错误不计入熔断
func IsBackendFailure(err error) bool {
	return !errors.Is(err, ErrObjectNotFound) &&
		!errors.Is(err, ErrInvalidPath) &&
		!errors.Is(err, context.Canceled)
}

// WithBreaker guards s with a breaker named after the storage kind
func WithBreaker(kind string, s Store) *GuardedStore {
	cfg := circuitbreaker.DefaultConfig("storage:" + kind)
	cfg.IsFailure = IsBackendFailure
	retry := circuitbreaker.DefaultRetryConfig()
	retry.Retryable = func(err error) bool {
		return IsBackendFailure(err) &&
			!errors.Is(err, circuitbreaker.ErrCircuitOpen) &&
			!errors.Is(err, circuitbreaker.ErrTooManyRequests)
	}
	return &GuardedStore{Store: s, Breaker: circuitbreaker.New(cfg), Retry: retry}
}

func (g *GuardedStore) do(ctx context.Context, fn func(ctx context.Context) error) error {
	return circuitbreaker.Retry(ctx, g.Retry, func(ctx context.Context) error {
		return g.Breaker.Execute(ctx, fn)
	})
}

func (g *GuardedStore) Read(ctx context.Context, key string) (rc io.ReadCloser, size int64, err error) {
	err = g.do(ctx, func(ctx context.Context) error {
		var e error
		rc, size, e = g.Store.Read(ctx, key)
		return e
	})
	return rc, size, err
}

func (g *GuardedStore) Write(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	return g.Breaker.Execute(ctx, func(ctx context.Context) error {
		return g.Store.Write(ctx, key, r, size, contentType)
	})
}

func (g *GuardedStore) Delete(ctx context.Context, key string) error {
	return g.do(ctx, func(ctx context.Context) error {
		return g.Store.Delete(ctx, key)
	})
}

func (g *GuardedStore) Exists(ctx context.Context, key string) (ok bool, err error) {
	err = g.do(ctx, func(ctx context.Context) error {
		var e error
		ok, e = g.Store.Exists(ctx, key)
		return e
	})
	return ok, err
}
