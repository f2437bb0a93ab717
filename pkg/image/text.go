package image

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"sync"

	"github.com/golang/freetype/raster"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/math/fixed"
)

// FontStack is an ordered list of faces. A rune missing from the first face is
// looked up in the next one, the way a CSS font-family list falls back.
type FontStack struct {
	Name  string
	fonts []*truetype.Font
}

// TextStyle describes one outlined text draw
type TextStyle struct {
	Size        float64
	Fill        color.Color
	Stroke      color.Color
	StrokeWidth float64
}

var (
	defaultStack     *FontStack
	defaultStackOnce sync.Once
)

// DefaultFontStack returns the built-in bold stack. It is the only font source the
// editor uses, so measurement and drawing always agree.
func DefaultFontStack() *FontStack {
	defaultStackOnce.Do(func() {
		s, err := NewFontStack("Go Bold, Go Mono Bold", gobold.TTF, gomonobold.TTF)
		if err != nil {
			panic(fmt.Sprintf("built-in fonts: %v", err))
		}
		defaultStack = s
	})
	return defaultStack
}

// NewFontStack parses the given TrueType sources in priority order
func NewFontStack(name string, ttfs ...[]byte) (*FontStack, error) {
	if len(ttfs) == 0 {
		return nil, fmt.Errorf("font stack %q is empty", name)
	}
	s := &FontStack{Name: name}
	for i, data := range ttfs {
		f, err := truetype.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("font %d of %q: %w", i, name, err)
		}
		s.fonts = append(s.fonts, f)
	}
	return s, nil
}

// Spec is the canvas-style font descriptor for size, e.g. "bold 48px Go Bold, Go Mono Bold"
func (s *FontStack) Spec(size float64) string {
	return fmt.Sprintf("bold %spx %s", trimFloat(size), s.Name)
}

func trimFloat(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%g", v)
}

type placedGlyph struct {
	font  *truetype.Font
	index truetype.Index
	x     fixed.Int26_6
}

func toFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(math.Round(v * 64))
}

func fromFixed(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

func (s *FontStack) pick(r rune) (*truetype.Font, truetype.Index) {
	for _, f := range s.fonts {
		if idx := f.Index(r); idx != 0 {
			return f, idx
		}
	}
	// .notdef of the primary face
	return s.fonts[0], 0
}

// layout places every rune on one line starting at x=0 and returns the advance width
func (s *FontStack) layout(text string, scale fixed.Int26_6) ([]placedGlyph, fixed.Int26_6) {
	var (
		glyphs   []placedGlyph
		x        fixed.Int26_6
		prevFont *truetype.Font
		prevIdx  truetype.Index
	)
	for _, r := range text {
		f, idx := s.pick(r)
		if prevFont == f {
			x += f.Kern(scale, prevIdx, idx)
		}
		glyphs = append(glyphs, placedGlyph{font: f, index: idx, x: x})
		x += f.HMetric(scale, idx).AdvanceWidth
		prevFont, prevIdx = f, idx
	}
	return glyphs, x
}

// Measure returns the advance width in pixels of text rendered at size
func (s *FontStack) Measure(text string, size float64) float64 {
	if size <= 0 || text == "" {
		return 0
	}
	_, w := s.layout(text, toFixed(size))
	return fromFixed(w)
}

// VerticalMetrics returns ascent and descent (both positive) of the primary face at size
func (s *FontStack) VerticalMetrics(size float64) (ascent, descent float64) {
	face := truetype.NewFace(s.fonts[0], &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingNone})
	defer face.Close()
	m := face.Metrics()
	return fromFixed(m.Ascent), fromFixed(m.Descent)
}

// Outline builds the glyph outlines of text centered horizontally on cx with the
// middle of the em box on cy.
func (s *FontStack) Outline(text string, cx, cy, size float64) raster.Path {
	scale := toFixed(size)
	glyphs, width := s.layout(text, scale)
	ascent, descent := s.VerticalMetrics(size)

	originX := toFixed(cx) - width/2
	baseline := toFixed(cy + (ascent-descent)/2)

	var (
		path raster.Path
		buf  truetype.GlyphBuf
	)
	for _, g := range glyphs {
		if err := buf.Load(g.font, scale, g.index, font.HintingNone); err != nil {
			continue
		}
		start := 0
		for _, end := range buf.Ends {
			appendContour(&path, buf.Points[start:end], originX+g.x, baseline)
			start = end
		}
	}
	return path
}

// appendContour converts one quadratic TrueType contour into path segments
func appendContour(path *raster.Path, ps []truetype.Point, dx, dy fixed.Int26_6) {
	if len(ps) == 0 {
		return
	}
	pt := func(p truetype.Point) fixed.Point26_6 {
		return fixed.Point26_6{X: dx + p.X, Y: dy - p.Y}
	}
	onCurve := func(p truetype.Point) bool { return p.Flags&0x01 != 0 }

	start := pt(ps[0])
	others := ps[1:]
	if !onCurve(ps[0]) {
		last := ps[len(ps)-1]
		if onCurve(last) {
			start = pt(last)
			others = ps[:len(ps)-1]
		} else {
			l := pt(last)
			start = fixed.Point26_6{X: (start.X + l.X) / 2, Y: (start.Y + l.Y) / 2}
			others = ps
		}
	}

	path.Start(start)
	q0, on0 := start, true
	for _, p := range others {
		q, on := pt(p), onCurve(p)
		if on {
			if on0 {
				path.Add1(q)
			} else {
				path.Add2(q0, q)
			}
		} else if !on0 {
			mid := fixed.Point26_6{X: (q0.X + q.X) / 2, Y: (q0.Y + q.Y) / 2}
			path.Add2(q0, mid)
		}
		q0, on0 = q, on
	}
	if on0 {
		path.Add1(start)
	} else {
		path.Add2(q0, start)
	}
}

// DrawOutlined strokes the glyph outlines first and then fills them at the same
// position, so the fill covers the inner half of the stroke.
func (s *FontStack) DrawOutlined(dst *image.RGBA, text string, cx, cy float64, st TextStyle) {
	if text == "" || st.Size <= 0 {
		return
	}
	path := s.Outline(text, cx, cy, st.Size)
	if len(path) == 0 {
		return
	}

	b := dst.Bounds()
	r := raster.NewRasterizer(b.Dx(), b.Dy())
	r.UseNonZeroWinding = true
	painter := raster.NewRGBAPainter(dst)

	if st.StrokeWidth > 0 && st.Stroke != nil {
		painter.SetColor(st.Stroke)
		raster.Stroke(r, path, toFixed(st.StrokeWidth), raster.RoundCapper, raster.RoundJoiner)
		r.Rasterize(painter)
		r.Clear()
	}

	fill := st.Fill
	if fill == nil {
		fill = color.White
	}
	painter.SetColor(fill)
	r.AddPath(path)
	r.Rasterize(painter)
}
