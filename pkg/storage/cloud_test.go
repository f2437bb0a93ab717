package stores

import (
	"bytes"
	"context"
	"io"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// envReady 所有变量都设置时才跑集成测试
func getenv(k string) string { return os.Getenv(k) }

func envReady(keys ...string) bool {
	for _, k := range keys {
		if os.Getenv(k) == "" {
			return false
		}
	}
	return true
}

// storeRoundTrip writes, reads, stats and deletes one meme-sized object
func storeRoundTrip(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	key := "lingmeme-test/" + time.Now().Format("20060102-150405.000") + ".png"
	payload := []byte("\x89PNG test payload")

	require.NoError(t, s.Write(ctx, key, bytes.NewReader(payload), int64(len(payload)), "image/png"))
	ok, err := s.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)

	rc, _, err := s.Read(ctx, key)
	require.NoError(t, err)
	data, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, payload, data)

	require.NoError(t, s.Delete(ctx, key))
	ok, err = s.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = s.Read(ctx, key)
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestUnconfiguredCloudStores(t *testing.T) {
	ctx := context.Background()
	for name, s := range map[string]Store{
		KindOSS:   &OSSStore{},
		KindQiniu: &QiNiuStore{},
		KindCOS:   &CosStore{},
	} {
		_, _, err := s.Read(ctx, "memes/a.png")
		assert.Error(t, err, name)
		assert.Error(t, s.Write(ctx, "memes/a.png", bytes.NewReader([]byte("x")), 1, "image/png"), name)
		_, err = s.Exists(ctx, "memes/a.png")
		assert.Error(t, err, name)
		assert.Error(t, s.Delete(ctx, "memes/a.png"), name)
	}
}
