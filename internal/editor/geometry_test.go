package editor

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToCanvasPoint(t *testing.T) {
	tests := []struct {
		name   string
		x, y   float64
		box    Rect
		w, h   int
		want   Point
		wantOK bool
	}{
		{"identity", 100, 50, Rect{Width: 800, Height: 600}, 800, 600, Point{100, 50}, true},
		{"css half size", 110, 70, Rect{Left: 10, Top: 20, Width: 400, Height: 300}, 800, 600, Point{200, 100}, true},
		{"css double size", 400, 300, Rect{Width: 1600, Height: 1200}, 800, 600, Point{200, 150}, true},
		{"outside box", -10, 0, Rect{Width: 400, Height: 300}, 800, 600, Point{-20, 0}, true},
		{"zero width", 1, 1, Rect{Width: 0, Height: 300}, 800, 600, Point{}, false},
		{"negative height", 1, 1, Rect{Width: 10, Height: -1}, 800, 600, Point{}, false},
		{"nan width", 1, 1, Rect{Width: math.NaN(), Height: 1}, 800, 600, Point{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ToCanvasPoint(tt.x, tt.y, tt.box, tt.w, tt.h)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.InDelta(t, tt.want.X, got.X, 1e-9)
				assert.InDelta(t, tt.want.Y, got.Y, 1e-9)
			}
		})
	}
}

func TestToCanvasPoint_RecomputedPerBox(t *testing.T) {
	p1, _ := ToCanvasPoint(100, 100, Rect{Width: 800, Height: 600}, 800, 600)
	p2, _ := ToCanvasPoint(100, 100, Rect{Width: 400, Height: 300}, 800, 600)
	assert.Equal(t, Point{100, 100}, p1)
	assert.Equal(t, Point{200, 200}, p2)
}

func TestClampPoint(t *testing.T) {
	assert.Equal(t, Point{0, 0}, ClampPoint(Point{-5, -1}, 800, 600))
	assert.Equal(t, Point{800, 600}, ClampPoint(Point{900, 601}, 800, 600))
	assert.Equal(t, Point{10, 20}, ClampPoint(Point{10, 20}, 800, 600))
	assert.Equal(t, Point{0, 5}, ClampPoint(Point{math.NaN(), 5}, 800, 600))
}

func TestClampPoint_Idempotent(t *testing.T) {
	sizes := [][2]int{{1, 1}, {800, 600}, {200, 600}, {533, 400}}
	for _, s := range sizes {
		for x := -100.0; x <= 1000; x += 37.5 {
			for y := -100.0; y <= 800; y += 41.25 {
				once := ClampPoint(Point{x, y}, s[0], s[1])
				assert.Equal(t, once, ClampPoint(once, s[0], s[1]))
				assert.True(t, once.X >= 0 && once.X <= float64(s[0]))
				assert.True(t, once.Y >= 0 && once.Y <= float64(s[1]))
			}
		}
	}
}
