package editor

import (
	"context"
	"errors"
	"image/color"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	imgx "github.com/code-100-precent/LingMeme/pkg/image"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitSize(t *testing.T) {
	tests := []struct {
		w, h int
		want CanvasState
	}{
		{1600, 400, CanvasState{800, 200}},
		{400, 1200, CanvasState{200, 600}},
		{1000, 1000, CanvasState{600, 600}},
		{640, 480, CanvasState{640, 480}},
		{800, 600, CanvasState{800, 600}},
		{1024, 768, CanvasState{800, 600}},
		{600, 900, CanvasState{400, 600}},
		{3000, 1, CanvasState{800, 1}},
	}
	for _, tt := range tests {
		got := FitSize(tt.w, tt.h, 800, 600)
		assert.Equal(t, tt.want, got, "%dx%d", tt.w, tt.h)
		assert.LessOrEqual(t, got.Width, 800)
		assert.LessOrEqual(t, got.Height, 600)
	}
}

func testLoader(t *testing.T, cfg LoaderConfig) *Loader {
	t.Helper()
	if cfg.Samples == nil {
		cfg.Samples = fstest.MapFS{
			"image.png":        {Data: pngBytes(t, solidImage(40, 30, gray))},
			"image copy.png":   {Data: pngBytes(t, solidImage(30, 40, gray))},
			"image copy 2.png": {Data: pngBytes(t, solidImage(20, 20, gray))},
			"notes.txt":        {Data: []byte("not an image")},
		}
	}
	return NewLoader(cfg)
}

func TestLoader_Samples(t *testing.T) {
	l := testLoader(t, LoaderConfig{})
	assert.Equal(t, []string{"image.png", "image copy.png", "image copy 2.png"}, l.Samples())

	img, err := l.Load(context.Background(), Source{Sample: "image copy.png"})
	require.NoError(t, err)
	assert.Equal(t, 30, img.Bounds().Dx())

	_, err = l.Load(context.Background(), Source{Sample: "../image.png"})
	assert.True(t, errors.Is(err, ErrUnknownSample))
	_, err = l.Load(context.Background(), Source{Sample: "missing.png"})
	assert.True(t, errors.Is(err, ErrUnknownSample))
}

func TestLoader_DataURLAndBytes(t *testing.T) {
	l := testLoader(t, LoaderConfig{})
	data := pngBytes(t, solidImage(12, 8, color.White))

	img, err := l.Load(context.Background(), Source{DataURL: imgx.PNGDataURL(data)})
	require.NoError(t, err)
	assert.Equal(t, 12, img.Bounds().Dx())

	img, err = l.Load(context.Background(), Source{Data: data})
	require.NoError(t, err)
	assert.Equal(t, 8, img.Bounds().Dy())
}

func TestLoader_DecodeFailures(t *testing.T) {
	l := testLoader(t, LoaderConfig{MaxBytes: 1 << 10})
	ctx := context.Background()

	_, err := l.Load(ctx, Source{Data: []byte("definitely not an image")})
	assert.True(t, errors.Is(err, ErrImageDecode))

	_, err = l.Load(ctx, Source{DataURL: "data:image/png;base64,!!!"})
	assert.True(t, errors.Is(err, ErrImageDecode))

	_, err = l.Load(ctx, Source{Data: make([]byte, 2<<10)})
	assert.True(t, errors.Is(err, ErrImageDecode))

	_, err = l.Load(ctx, Source{})
	assert.True(t, errors.Is(err, ErrEmptySource))
}

func TestLoader_Remote(t *testing.T) {
	data := pngBytes(t, solidImage(16, 16, gray))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ok.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(data)
	}))
	defer srv.Close()
	ctx := context.Background()

	_, err := testLoader(t, LoaderConfig{}).Load(ctx, Source{URL: srv.URL + "/ok.png"})
	assert.True(t, errors.Is(err, ErrRemoteDisabled))

	l := testLoader(t, LoaderConfig{AllowRemote: true, Client: srv.Client()})
	img, err := l.Load(ctx, Source{URL: srv.URL + "/ok.png"})
	require.NoError(t, err)
	assert.Equal(t, 16, img.Bounds().Dx())

	_, err = l.Load(ctx, Source{URL: srv.URL + "/missing.png"})
	assert.True(t, errors.Is(err, ErrImageDecode))

	_, err = l.Load(ctx, Source{URL: "ftp://example.com/a.png"})
	assert.True(t, errors.Is(err, ErrImageDecode))
}
