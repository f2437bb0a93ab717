package editor

import "math"

// Point is a position in canvas pixel space
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }

func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// Rect is the on-screen bounding box of the canvas element, as reported by
// getBoundingClientRect on the client.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Degenerate reports whether the box cannot be used to derive a scale
func (r Rect) Degenerate() bool {
	return !(r.Width > 0) || !(r.Height > 0) || math.IsInf(r.Width, 0) || math.IsInf(r.Height, 0)
}

// ToCanvasPoint maps client coordinates into bitmap coordinates. The scale is
// derived from the box given with this very event; a degenerate box yields false.
func ToCanvasPoint(clientX, clientY float64, box Rect, bitmapW, bitmapH int) (Point, bool) {
	if box.Degenerate() || bitmapW <= 0 || bitmapH <= 0 {
		return Point{}, false
	}
	if math.IsNaN(clientX) || math.IsNaN(clientY) {
		return Point{}, false
	}
	scaleX := float64(bitmapW) / box.Width
	scaleY := float64(bitmapH) / box.Height
	return Point{
		X: (clientX - box.Left) * scaleX,
		Y: (clientY - box.Top) * scaleY,
	}, true
}

// ClampPoint clamps p into [0,w]x[0,h]
func ClampPoint(p Point, w, h int) Point {
	return Point{X: clamp(p.X, 0, float64(w)), Y: clamp(p.Y, 0, float64(h))}
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
