package stores

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/code-100-precent/LingMeme/pkg/circuitbreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flakyStore struct {
	Store
	fails int
	calls int
}

func (f *flakyStore) Exists(ctx context.Context, key string) (bool, error) {
	f.calls++
	if f.calls <= f.fails {
		return false, errors.New("connection reset")
	}
	return f.Store.Exists(ctx, key)
}

func (f *flakyStore) Write(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	f.calls++
	if f.calls <= f.fails {
		return errors.New("connection reset")
	}
	return f.Store.Write(ctx, key, r, size, contentType)
}

func guarded(t *testing.T, inner Store) *GuardedStore {
	g := WithBreaker(KindLocal, inner)
	g.Retry.InitialInterval = time.Millisecond
	g.Retry.MaxInterval = time.Millisecond
	return g
}

func TestGuardedStore_PassThrough(t *testing.T) {
	g := guarded(t, localStore(t))
	ctx := context.Background()

	require.NoError(t, g.Write(ctx, "memes/a.png", strings.NewReader("png"), 3, "image/png"))
	ok, err := g.Exists(ctx, "memes/a.png")
	require.NoError(t, err)
	assert.True(t, ok)

	rc, _, err := g.Read(ctx, "memes/a.png")
	require.NoError(t, err)
	data, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, "png", string(data))

	require.NoError(t, g.Delete(ctx, "memes/a.png"))
	assert.Equal(t, "storage:local", g.Breaker.Name())
}

func TestGuardedStore_NotFoundDoesNotTrip(t *testing.T) {
	g := guarded(t, localStore(t))
	for i := 0; i < 10; i++ {
		_, _, err := g.Read(context.Background(), "memes/missing.png")
		assert.ErrorIs(t, err, ErrObjectNotFound)
	}
	assert.Equal(t, circuitbreaker.StateClosed, g.Breaker.State())
}

func TestGuardedStore_RetriesIdempotentCalls(t *testing.T) {
	inner := &flakyStore{Store: localStore(t), fails: 2}
	g := guarded(t, inner)
	ok, err := g.Exists(context.Background(), "memes/a.png")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 3, inner.calls)
}

func TestGuardedStore_WriteNotRetried(t *testing.T) {
	inner := &flakyStore{Store: localStore(t), fails: 1}
	g := guarded(t, inner)
	err := g.Write(context.Background(), "memes/a.png", bytes.NewReader([]byte("x")), 1, "image/png")
	assert.Error(t, err)
	assert.Equal(t, 1, inner.calls)
}

func TestGuardedStore_OpensOnRepeatedFailures(t *testing.T) {
	inner := &flakyStore{Store: localStore(t), fails: 1000}
	g := guarded(t, inner)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_ = g.Write(ctx, fmt.Sprintf("memes/%d.png", i), strings.NewReader("x"), 1, "image/png")
	}
	assert.Equal(t, circuitbreaker.StateOpen, g.Breaker.State())

	_, err := g.Exists(ctx, "memes/0.png")
	assert.ErrorIs(t, err, circuitbreaker.ErrCircuitOpen)
	assert.Equal(t, 5, inner.calls)
}

func localStore(t *testing.T) *LocalStore {
	return &LocalStore{Root: t.TempDir(), Prefix: "/uploads", NewDirPerm: 0755}
}
