package session

import (
	"context"
	"errors"
	"image"
	"sync"
	"testing"
	"time"

	"github.com/code-100-precent/LingMeme/internal/editor"
	imgx "github.com/code-100-precent/LingMeme/pkg/image"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedPainter struct{}

func (fixedPainter) Measure(text string, size float64) float64 { return float64(len(text)) * size / 2 }

func (fixedPainter) DrawOutlined(*image.RGBA, string, float64, float64, imgx.TextStyle) {}

func newTestRegistry(t *testing.T, cfg Config) *Registry {
	t.Helper()
	cfg.Painter = fixedPainter{}
	r := NewRegistry(cfg)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestRegistry_CreateGetDelete(t *testing.T) {
	r := newTestRegistry(t, Config{})
	ctx := context.Background()

	s, err := r.Create(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, 1, r.Len())

	got, err := r.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Same(t, s, got)

	require.NoError(t, r.Delete(ctx, s.ID))
	_, err = r.Get(ctx, s.ID)
	assert.True(t, errors.Is(err, ErrSessionNotFound))
	assert.Equal(t, 0, r.Len())

	_, err = r.Get(ctx, "not-a-uuid")
	assert.True(t, errors.Is(err, ErrSessionNotFound))
}

func TestRegistry_EvictsOldest(t *testing.T) {
	r := newTestRegistry(t, Config{MaxSessions: 2})
	ctx := context.Background()

	a, _ := r.Create(ctx)
	b, _ := r.Create(ctx)
	_, _ = r.Get(ctx, a.ID) // a is now most recent
	c, _ := r.Create(ctx)

	_, err := r.Get(ctx, b.ID)
	assert.True(t, errors.Is(err, ErrSessionNotFound))
	_, err = r.Get(ctx, a.ID)
	assert.NoError(t, err)
	_, err = r.Get(ctx, c.ID)
	assert.NoError(t, err)
	assert.Equal(t, 2, r.Len())
}

func TestRegistry_SlidingTTLAndPurge(t *testing.T) {
	r := newTestRegistry(t, Config{TTL: 200 * time.Millisecond})
	ctx := context.Background()

	kept, _ := r.Create(ctx)
	dropped, _ := r.Create(ctx)

	for i := 0; i < 3; i++ {
		time.Sleep(100 * time.Millisecond)
		_, err := r.Get(ctx, kept.ID)
		require.NoError(t, err)
	}
	// the background sweep may already have dropped it
	assert.LessOrEqual(t, r.Purge(), 1)
	_, err := r.Get(ctx, dropped.ID)
	assert.True(t, errors.Is(err, ErrSessionNotFound))
	assert.Equal(t, 1, r.Len())
}

func TestSession_DoExtendsTTL(t *testing.T) {
	r := newTestRegistry(t, Config{TTL: 200 * time.Millisecond})
	ctx := context.Background()

	s, _ := r.Create(ctx)
	idle, _ := r.Create(ctx)
	// WebSocket 消息只走 Do，不经过 Get
	for i := 0; i < 6; i++ {
		time.Sleep(60 * time.Millisecond)
		require.NoError(t, s.Do(func(*editor.Editor) error { return nil }))
	}
	r.Purge()

	got, err := r.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Same(t, s, got)
	_, err = r.Get(ctx, idle.ID)
	assert.True(t, errors.Is(err, ErrSessionNotFound))
	assert.Equal(t, 1, r.Len())
}

func TestSession_DoDoesNotRestoreDeleted(t *testing.T) {
	r := newTestRegistry(t, Config{})
	ctx := context.Background()

	s, _ := r.Create(ctx)
	require.NoError(t, r.Delete(ctx, s.ID))
	require.NoError(t, s.Do(func(*editor.Editor) error { return nil }))

	_, err := r.Get(ctx, s.ID)
	assert.True(t, errors.Is(err, ErrSessionNotFound))
	assert.Equal(t, 0, r.Len())
}

func TestSession_DoSerializes(t *testing.T) {
	r := newTestRegistry(t, Config{})
	s, err := r.Create(context.Background())
	require.NoError(t, err)

	require.NoError(t, s.Do(func(ed *editor.Editor) error {
		ed.LoadImage(image.NewRGBA(image.Rect(0, 0, 800, 600)), "blank")
		return ed.ApplyPatch(editor.SlotTop, editor.LayerPatch{X: 0})
	}))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Do(func(ed *editor.Editor) error {
				l, _ := ed.Layer(editor.SlotTop)
				return ed.ApplyPatch(editor.SlotTop, editor.LayerPatch{X: l.Position.X + 1})
			})
		}()
	}
	wg.Wait()

	st := s.Snapshot()
	assert.Equal(t, 20.0, st.Layers.Top.Position.X)
	assert.True(t, st.HasImage)
	assert.False(t, s.LastSeen().Before(s.CreatedAt))
}

func TestSession_DoPropagatesError(t *testing.T) {
	r := newTestRegistry(t, Config{})
	s, _ := r.Create(context.Background())
	err := s.Do(func(ed *editor.Editor) error {
		_, err := ed.Export()
		return err
	})
	assert.True(t, errors.Is(err, editor.ErrExportWithoutImage))
}

func TestRegistry_OnDrop(t *testing.T) {
	dropped := make(chan string, 1)
	r := newTestRegistry(t, Config{OnDrop: func(id string) { dropped <- id }})
	ctx := context.Background()

	s, err := r.Create(ctx)
	require.NoError(t, err)
	require.NoError(t, r.Delete(ctx, s.ID))

	select {
	case id := <-dropped:
		assert.Equal(t, s.ID, id)
	case <-time.After(2 * time.Second):
		t.Fatal("OnDrop was not called")
	}
}
