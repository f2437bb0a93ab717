package editor

// Cursor is the CSS cursor the client should show over the canvas
type Cursor string

const (
	CursorDefault   Cursor = "default"
	CursorCrosshair Cursor = "crosshair"
	CursorGrab      Cursor = "grab"
	CursorGrabbing  Cursor = "grabbing"
)

// DragSession lives from a press that hits a layer until the next release
type DragSession struct {
	Target     Slot  `json:"target"`
	GrabOffset Point `json:"grabOffset"`
}

// Outcome is reported for every input event
type Outcome struct {
	Changed         bool   `json:"changed"`
	Cursor          Cursor `json:"cursor"`
	Dragging        bool   `json:"dragging"`
	Target          Slot   `json:"target"`
	SuppressDefault bool   `json:"suppressDefault"`
}

// DragController is the Idle/Dragging state machine. It never looks at the
// event modality.
type DragController struct {
	hit     *HitTester
	session *DragSession
}

func NewDragController(hit *HitTester) *DragController {
	return &DragController{hit: hit}
}

func (d *DragController) Dragging() bool {
	return d.session != nil
}

// Session returns a copy of the active drag session
func (d *DragController) Session() (DragSession, bool) {
	if d.session == nil {
		return DragSession{}, false
	}
	return *d.session, true
}

// Reset drops any active drag
func (d *DragController) Reset() {
	d.session = nil
}

// Handle advances the state machine by one event. layers is mutated in place
// when a drag moves its target.
func (d *DragController) Handle(ev InputEvent, layers *Layers, canvas CanvasState) Outcome {
	switch ev.Kind {
	case KindPress:
		return d.press(ev, layers, canvas)
	case KindMove:
		return d.move(ev, layers, canvas)
	default:
		d.session = nil
		return Outcome{Cursor: CursorCrosshair, Target: SlotNone}
	}
}

func (d *DragController) press(ev InputEvent, layers *Layers, canvas CanvasState) Outcome {
	p, ok := d.point(ev, canvas)
	if !ok {
		return d.idle()
	}
	// 拖拽中再次按下（多指触控）沿用当前会话
	if d.session != nil {
		return d.dragging(false)
	}
	target := d.hit.HitTest(p, layers)
	if target == SlotNone {
		return Outcome{Cursor: CursorCrosshair, Target: SlotNone}
	}
	d.session = &DragSession{
		Target:     target,
		GrabOffset: p.Sub(layers[target].Position),
	}
	return d.dragging(false)
}

func (d *DragController) move(ev InputEvent, layers *Layers, canvas CanvasState) Outcome {
	p, ok := d.point(ev, canvas)
	if !ok {
		return d.idle()
	}
	if d.session == nil {
		if d.hit.HitTest(p, layers) != SlotNone {
			return Outcome{Cursor: CursorGrab, Target: SlotNone}
		}
		return Outcome{Cursor: CursorCrosshair, Target: SlotNone}
	}
	layer := layers.At(d.session.Target)
	next := ClampPoint(p.Sub(d.session.GrabOffset), canvas.Width, canvas.Height)
	changed := next != layer.Position
	layer.Position = next
	return d.dragging(changed)
}

func (d *DragController) point(ev InputEvent, canvas CanvasState) (Point, bool) {
	if !ev.HasPoint {
		return Point{}, false
	}
	return ToCanvasPoint(ev.ClientX, ev.ClientY, ev.Box, canvas.Width, canvas.Height)
}

// idle reports the current state for an event that was ignored
func (d *DragController) idle() Outcome {
	if d.session != nil {
		return d.dragging(false)
	}
	return Outcome{Cursor: CursorCrosshair, Target: SlotNone}
}

func (d *DragController) dragging(changed bool) Outcome {
	return Outcome{
		Changed:  changed,
		Cursor:   CursorGrabbing,
		Dragging: true,
		Target:   d.session.Target,
	}
}
