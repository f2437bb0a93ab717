package editor

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	imgx "github.com/code-100-precent/LingMeme/pkg/image"
	"github.com/stretchr/testify/require"
)

// stubPainter measures every rune as half the font size and records draws
type stubPainter struct {
	draws []string
}

func (p *stubPainter) Measure(text string, size float64) float64 {
	return float64(len([]rune(text))) * size / 2
}

func (p *stubPainter) DrawOutlined(_ *image.RGBA, text string, _, _ float64, _ imgx.TextStyle) {
	p.draws = append(p.draws, text)
}

func solidImage(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: c}, image.Point{}, draw.Src)
	return img
}

func pngBytes(t *testing.T, img image.Image) []byte {
	t.Helper()
	data, err := imgx.EncodePNG(img)
	require.NoError(t, err)
	return data
}

var gray = color.RGBA{R: 128, G: 128, B: 128, A: 255}

// newLoadedEditor returns an editor with a stub painter and an 800x600 gray image
func newLoadedEditor(t *testing.T) (*Editor, *stubPainter) {
	t.Helper()
	p := &stubPainter{}
	e := New(DefaultOptions(), p)
	e.LoadImage(solidImage(800, 600, gray), "test")
	return e, p
}

func strPtr(s string) *string { return &s }
