package editor

// Measurer returns the advance width of text at a pixel size. The renderer and the
// hit tester must share one, otherwise the grab box drifts away from the glyphs.
type Measurer interface {
	Measure(text string, size float64) float64
}

// Box is an axis-aligned rectangle with inclusive bounds
type Box struct {
	MinX float64 `json:"minX"`
	MinY float64 `json:"minY"`
	MaxX float64 `json:"maxX"`
	MaxY float64 `json:"maxY"`
}

func (b Box) Contains(p Point) bool {
	return p.X >= b.MinX && p.X <= b.MaxX && p.Y >= b.MinY && p.Y <= b.MaxY
}

// HitTester finds the layer under a canvas point using single-line text boxes
type HitTester struct {
	measurer Measurer
	padding  float64
}

func NewHitTester(m Measurer, padding float64) *HitTester {
	return &HitTester{measurer: m, padding: padding}
}

// Box returns the padded grab box of l. Invisible layers have none.
func (h *HitTester) Box(l TextLayer) (Box, bool) {
	if !l.Visible() {
		return Box{}, false
	}
	halfW := h.measurer.Measure(l.Text, l.FontSize) / 2
	halfH := l.FontSize / 2
	return Box{
		MinX: l.Position.X - halfW - h.padding,
		MaxX: l.Position.X + halfW + h.padding,
		MinY: l.Position.Y - halfH - h.padding,
		MaxY: l.Position.Y + halfH + h.padding,
	}, true
}

// HitTest checks top before bottom and returns the first layer containing p
func (h *HitTester) HitTest(p Point, layers *Layers) Slot {
	for _, s := range Slots {
		box, ok := h.Box(layers[s])
		if ok && box.Contains(p) {
			return s
		}
	}
	return SlotNone
}
