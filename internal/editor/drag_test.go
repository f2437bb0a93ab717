package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// half-size CSS box over an 800x600 bitmap: canvas = client * 2
var halfBox = Rect{Width: 400, Height: 300}

func pointerEv(kind Kind, x, y float64) InputEvent {
	return InputEvent{Kind: kind, Modality: ModalityPointer, ClientX: x, ClientY: y, Box: halfBox, HasPoint: true}
}

func newDrag() (*DragController, Layers, CanvasState) {
	return NewDragController(NewHitTester(&stubPainter{}, 10)), testLayers(), CanvasState{Width: 800, Height: 600}
}

func TestDrag_RoundTrip(t *testing.T) {
	d, ls, c := newDrag()
	anchor := ls[SlotTop].Position // (400,50)

	out := d.Handle(pointerEv(KindPress, 205, 27), &ls, c) // canvas (410,54)
	require.True(t, out.Dragging)
	assert.Equal(t, SlotTop, out.Target)
	assert.Equal(t, CursorGrabbing, out.Cursor)
	assert.False(t, out.Changed)

	sess, ok := d.Session()
	require.True(t, ok)
	assert.Equal(t, Point{410, 54}.Sub(anchor), sess.GrabOffset)

	out = d.Handle(pointerEv(KindMove, 300, 200), &ls, c) // canvas (600,400)
	assert.True(t, out.Changed)
	assert.Equal(t, ClampPoint(Point{600, 400}.Sub(Point{410, 54}.Sub(anchor)), 800, 600), ls[SlotTop].Position)
	assert.Equal(t, Point{590, 396}, ls[SlotTop].Position)

	out = d.Handle(pointerEv(KindRelease, 300, 200), &ls, c)
	assert.False(t, out.Dragging)
	assert.Equal(t, CursorCrosshair, out.Cursor)
	assert.False(t, d.Dragging())

	// moves after release are hover only
	out = d.Handle(pointerEv(KindMove, 10, 10), &ls, c)
	assert.False(t, out.Changed)
	assert.Equal(t, Point{590, 396}, ls[SlotTop].Position)
}

func TestDrag_ClampsToCanvas(t *testing.T) {
	d, ls, c := newDrag()
	d.Handle(pointerEv(KindPress, 200, 275), &ls, c) // bottom anchor
	d.Handle(pointerEv(KindMove, -100, 5000), &ls, c)
	assert.Equal(t, Point{0, 600}, ls[SlotBottom].Position)
	// top untouched
	assert.Equal(t, Point{400, 50}, ls[SlotTop].Position)
}

func TestDrag_MissStaysIdle(t *testing.T) {
	d, ls, c := newDrag()
	before := ls
	out := d.Handle(pointerEv(KindPress, 200, 150), &ls, c)
	assert.False(t, out.Dragging)
	assert.Equal(t, SlotNone, out.Target)
	assert.Equal(t, CursorCrosshair, out.Cursor)

	d.Handle(pointerEv(KindMove, 10, 10), &ls, c)
	assert.Equal(t, before, ls)
}

func TestDrag_HoverCursor(t *testing.T) {
	d, ls, c := newDrag()
	assert.Equal(t, CursorGrab, d.Handle(pointerEv(KindMove, 200, 25), &ls, c).Cursor)
	assert.Equal(t, CursorCrosshair, d.Handle(pointerEv(KindMove, 200, 150), &ls, c).Cursor)
	assert.False(t, d.Dragging())
}

func TestDrag_AllReleasesEndDrag(t *testing.T) {
	releases := []InputEvent{
		pointerEv(KindRelease, 0, 0),
		{Kind: KindRelease, Modality: ModalityTouch},
		// a release outside any sane box still ends the drag
		{Kind: KindRelease, Modality: ModalityPointer, Box: Rect{}, HasPoint: true},
	}
	for _, rel := range releases {
		d, ls, c := newDrag()
		d.Handle(pointerEv(KindPress, 200, 25), &ls, c)
		require.True(t, d.Dragging())
		d.Handle(rel, &ls, c)
		assert.False(t, d.Dragging())
	}
}

func TestDrag_DegenerateBoxIgnored(t *testing.T) {
	d, ls, c := newDrag()
	ev := pointerEv(KindPress, 200, 25)
	ev.Box = Rect{Width: 0, Height: 300}
	out := d.Handle(ev, &ls, c)
	assert.False(t, out.Dragging)

	d.Handle(pointerEv(KindPress, 200, 25), &ls, c)
	before := ls[SlotTop].Position
	mv := pointerEv(KindMove, 300, 100)
	mv.Box = Rect{Width: 400, Height: 0}
	out = d.Handle(mv, &ls, c)
	assert.True(t, out.Dragging)
	assert.False(t, out.Changed)
	assert.Equal(t, before, ls[SlotTop].Position)
}

func TestDrag_SameForTouchAndPointer(t *testing.T) {
	run := func(m Modality) Point {
		d, ls, c := newDrag()
		for _, ev := range []InputEvent{
			{Kind: KindPress, Modality: m, ClientX: 190, ClientY: 30, Box: halfBox, HasPoint: true},
			{Kind: KindMove, Modality: m, ClientX: 120, ClientY: 80, Box: halfBox, HasPoint: true},
			{Kind: KindRelease, Modality: m},
		} {
			d.Handle(ev, &ls, c)
		}
		return ls[SlotTop].Position
	}
	assert.Equal(t, run(ModalityPointer), run(ModalityTouch))
}
