package editor

import (
	"testing"

	imgx "github.com/code-100-precent/LingMeme/pkg/image"
	"github.com/stretchr/testify/assert"
)

func testLayers() Layers {
	ls := DefaultLayers(DefaultOptions())
	ls[SlotTop].Text = "TOP"
	ls[SlotBottom].Text = "BOTTOM"
	return ls
}

func TestHitTest_Anchor(t *testing.T) {
	h := NewHitTester(&stubPainter{}, 10)
	ls := testLayers()

	assert.Equal(t, SlotTop, h.HitTest(ls[SlotTop].Position, &ls))
	assert.Equal(t, SlotBottom, h.HitTest(ls[SlotBottom].Position, &ls))
	assert.Equal(t, SlotNone, h.HitTest(Point{400, 300}, &ls))
}

func TestHitTest_Bounds(t *testing.T) {
	h := NewHitTester(&stubPainter{}, 10)
	ls := testLayers()
	top := ls[SlotTop]
	// stub: 3 runes * 48 / 2 = 72 wide
	halfW, halfH := 36.0+10, 24.0+10
	a := top.Position

	// inclusive edges
	assert.Equal(t, SlotTop, h.HitTest(Point{a.X + halfW, a.Y}, &ls))
	assert.Equal(t, SlotTop, h.HitTest(Point{a.X - halfW, a.Y + halfH}, &ls))

	for _, p := range []Point{
		{a.X + halfW + 0.01, a.Y},
		{a.X - halfW - 0.01, a.Y},
		{a.X, a.Y + halfH + 0.01},
		{a.X, a.Y - halfH - 0.01},
	} {
		assert.Equal(t, SlotNone, h.HitTest(p, &ls), "%v", p)
	}
}

func TestHitTest_TopWinsOverlap(t *testing.T) {
	h := NewHitTester(&stubPainter{}, 10)
	ls := testLayers()
	ls[SlotBottom].Position = ls[SlotTop].Position

	assert.Equal(t, SlotTop, h.HitTest(ls[SlotTop].Position, &ls))

	ls[SlotTop].Text = "   "
	assert.Equal(t, SlotBottom, h.HitTest(ls[SlotTop].Position, &ls))
}

func TestHitTest_EmptyNeverHit(t *testing.T) {
	h := NewHitTester(&stubPainter{}, 10)
	ls := DefaultLayers(DefaultOptions())
	ls[SlotBottom].Text = "\t"
	for _, s := range Slots {
		assert.Equal(t, SlotNone, h.HitTest(ls[s].Position, &ls))
		_, ok := h.Box(ls[s])
		assert.False(t, ok)
	}
}

func TestHitTest_UsesRendererMetrics(t *testing.T) {
	fonts := imgx.DefaultFontStack()
	h := NewHitTester(fonts, 10)
	ls := testLayers()
	ls[SlotTop].FontSize = 60

	box, ok := h.Box(ls[SlotTop])
	assert.True(t, ok)
	assert.InDelta(t, fonts.Measure("TOP", 60)+20, box.MaxX-box.MinX, 1e-9)
	assert.InDelta(t, 60+20, box.MaxY-box.MinY, 1e-9)
}
