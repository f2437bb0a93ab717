package editor

import (
	"image"
	"image/color"
	"image/draw"

	imgx "github.com/code-100-precent/LingMeme/pkg/image"
	xdraw "golang.org/x/image/draw"
)

// TextPainter measures and draws outlined text. *imgx.FontStack implements it.
type TextPainter interface {
	Measurer
	DrawOutlined(dst *image.RGBA, text string, cx, cy float64, st imgx.TextStyle)
}

var (
	fallbackFill   = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	fallbackStroke = color.RGBA{A: 0xff}
)

// Renderer paints the base image and both layers in a fixed order
type Renderer struct {
	painter     TextPainter
	strokeWidth float64
}

func NewRenderer(p TextPainter, strokeWidth float64) *Renderer {
	return &Renderer{painter: p, strokeWidth: strokeWidth}
}

// Render clears dst, fills it with base and then draws top and bottom. Each layer
// is stroked before it is filled.
func (r *Renderer) Render(dst *image.RGBA, base image.Image, layers *Layers) {
	b := dst.Bounds()
	draw.Draw(dst, b, image.Transparent, image.Point{}, draw.Src)

	if base != nil {
		sb := base.Bounds()
		if sb.Dx() == b.Dx() && sb.Dy() == b.Dy() {
			draw.Draw(dst, b, base, sb.Min, draw.Over)
		} else {
			xdraw.CatmullRom.Scale(dst, b, base, sb, xdraw.Over, nil)
		}
	}

	for _, s := range Slots {
		l := layers[s]
		if !l.Visible() {
			continue
		}
		r.painter.DrawOutlined(dst, l.Text, l.Position.X, l.Position.Y, imgx.TextStyle{
			Size:        l.FontSize,
			Fill:        parseColor(l.TextColor, fallbackFill),
			Stroke:      parseColor(l.BorderColor, fallbackStroke),
			StrokeWidth: r.strokeWidth,
		})
	}
}

func parseColor(hex string, fallback color.RGBA) color.RGBA {
	if hex == "" {
		return fallback
	}
	c, err := imgx.ParseHexColor(hex)
	if err != nil {
		return fallback
	}
	return c
}
