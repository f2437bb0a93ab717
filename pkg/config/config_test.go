package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	require.NoError(t, Load())
	c := GlobalConfig

	assert.Equal(t, "/api", c.APIPrefix)
	assert.Equal(t, 30*time.Second, c.FeedCacheTTL)
	assert.Equal(t, "1000-M", c.RateLimit)

	e := c.Editor
	assert.Equal(t, 800, e.MaxWidth)
	assert.Equal(t, 600, e.MaxHeight)
	assert.Equal(t, 50.0, e.AnchorMargin)
	assert.Equal(t, 10.0, e.HitPadding)
	assert.Equal(t, 20.0, e.FontSizeMin)
	assert.Equal(t, 100.0, e.FontSizeMax)
	assert.Equal(t, 48.0, e.DefaultFontSize)
	assert.Equal(t, 3.0, e.StrokeWidth)
	assert.Equal(t, int64(10<<20), e.MaxUploadBytes())
	assert.False(t, e.RemoteImages)
	assert.Equal(t, 30*time.Minute, e.SessionTTL)
	assert.Equal(t, 1000, e.MaxSessions)
}

func TestLoad_EditorOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("EDITOR_MAX_WIDTH", "1024")
	t.Setenv("EDITOR_HIT_PADDING", "12.5")
	t.Setenv("EDITOR_REMOTE_IMAGES", "true")
	t.Setenv("EDITOR_SESSION_TTL", "5m")
	t.Setenv("FEED_CACHE_TTL", "90")
	t.Setenv("CACHE_TYPE", "lru")

	require.NoError(t, Load())
	e := GlobalConfig.Editor
	assert.Equal(t, 1024, e.MaxWidth)
	assert.Equal(t, 12.5, e.HitPadding)
	assert.True(t, e.RemoteImages)
	assert.Equal(t, 5*time.Minute, e.SessionTTL)
	assert.Equal(t, 90*time.Second, GlobalConfig.FeedCacheTTL)
	assert.Equal(t, "lru", GlobalConfig.Cache.Type)
}
