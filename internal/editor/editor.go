package editor

import (
	"fmt"
	"image"
	"time"

	imgx "github.com/code-100-precent/LingMeme/pkg/image"
	"github.com/code-100-precent/LingMeme/pkg/metrics"
)

// LayerMetadata is the per-slot view of both layers
type LayerMetadata struct {
	Top    TextLayer `json:"top"`
	Bottom TextLayer `json:"bottom"`
}

func metadataOf(ls *Layers) LayerMetadata {
	return LayerMetadata{Top: ls[SlotTop], Bottom: ls[SlotBottom]}
}

// Artifact is a finished meme handed to the persistence collaborator
type Artifact struct {
	ImageData     []byte        `json:"-"`
	TopText       string        `json:"topText"`
	BottomText    string        `json:"bottomText"`
	LayerMetadata LayerMetadata `json:"layerMetadata"`
	Canvas        CanvasState   `json:"canvas"`
	CreatedAt     time.Time     `json:"createdAt"`
}

// State is a read-only snapshot of an editor
type State struct {
	Canvas   CanvasState   `json:"canvas"`
	Layers   LayerMetadata `json:"layers"`
	HasImage bool          `json:"hasImage"`
	Source   string        `json:"source,omitempty"`
	Dragging bool          `json:"dragging"`
	Target   Slot          `json:"target"`
	FontSpec string        `json:"fontSpec"`
	Version  uint64        `json:"version"`
}

// Editor owns both layers, the canvas size, the pre-scaled base image and the
// frame buffer. It is not safe for concurrent use.
type Editor struct {
	opts     Options
	painter  TextPainter
	hit      *HitTester
	drag     *DragController
	renderer *Renderer

	layers Layers
	canvas CanvasState
	source string
	base   *image.RGBA
	frame  *image.RGBA

	// version 每次帧变化递增
	version     uint64
	exported    []byte
	exportedVer uint64
}

// New creates an editor with no image. A nil painter selects the built-in font stack.
func New(opts Options, painter TextPainter) *Editor {
	opts = opts.normalized()
	if painter == nil {
		painter = imgx.DefaultFontStack()
	}
	hit := NewHitTester(painter, opts.HitPadding)
	return &Editor{
		opts:     opts,
		painter:  painter,
		hit:      hit,
		drag:     NewDragController(hit),
		renderer: NewRenderer(painter, opts.StrokeWidth),
		layers:   DefaultLayers(opts),
		canvas:   CanvasState{Width: opts.MaxWidth, Height: opts.MaxHeight},
	}
}

func (e *Editor) Options() Options { return e.opts }

func (e *Editor) HasImage() bool { return e.base != nil }

func (e *Editor) Canvas() CanvasState { return e.canvas }

func (e *Editor) Layers() Layers { return e.layers }

func (e *Editor) Version() uint64 { return e.version }

// Layer returns a copy of one layer
func (e *Editor) Layer(s Slot) (TextLayer, error) {
	l := e.layers.At(s)
	if l == nil {
		return TextLayer{}, fmt.Errorf("%w: %d", ErrUnknownSlot, s)
	}
	return *l, nil
}

// FontSpec is the font descriptor used for both measuring and drawing size
func (e *Editor) FontSpec(size float64) string {
	if fs, ok := e.painter.(*imgx.FontStack); ok {
		return fs.Spec(size)
	}
	return fmt.Sprintf("bold %gpx", size)
}

func (e *Editor) Snapshot() State {
	sess, dragging := e.drag.Session()
	target := SlotNone
	if dragging {
		target = sess.Target
	}
	return State{
		Canvas:   e.canvas,
		Layers:   metadataOf(&e.layers),
		HasImage: e.HasImage(),
		Source:   e.source,
		Dragging: dragging,
		Target:   target,
		FontSpec: e.FontSpec(e.opts.DefaultFontSize),
		Version:  e.version,
	}
}

// LoadImage fits img into the canvas bounds, re-anchors both layers and repaints.
// Text and colors are kept.
func (e *Editor) LoadImage(img image.Image, source string) CanvasState {
	b := img.Bounds()
	c := FitSize(b.Dx(), b.Dy(), e.opts.MaxWidth, e.opts.MaxHeight)

	e.canvas = c
	e.base = imgx.ScaleTo(img, c.Width, c.Height)
	e.frame = image.NewRGBA(image.Rect(0, 0, c.Width, c.Height))
	e.source = source
	e.drag.Reset()
	anchorLayers(&e.layers, c, e.opts.AnchorMargin)
	e.render()
	return c
}

// HandleRaw normalizes a browser event and handles it
func (e *Editor) HandleRaw(raw RawEvent) (Outcome, error) {
	ev, err := NormalizeEvent(raw)
	if err != nil {
		return Outcome{}, err
	}
	return e.HandleEvent(ev), nil
}

// HandleEvent feeds one input event to the drag controller. Without an image
// every event is a no-op.
func (e *Editor) HandleEvent(ev InputEvent) Outcome {
	metrics.InputEvents.WithLabelValues(ev.Kind.String(), ev.Modality.String()).Inc()
	if !e.HasImage() {
		return Outcome{Cursor: CursorDefault, Target: SlotNone}
	}

	wasDragging := e.drag.Dragging()
	out := e.drag.Handle(ev, &e.layers, e.canvas)
	if ev.Modality == ModalityTouch && (wasDragging || out.Dragging) {
		out.SuppressDefault = true
	}
	if out.Changed {
		e.render()
	}
	return out
}

// ApplyPatch updates one layer. On error nothing changes.
func (e *Editor) ApplyPatch(s Slot, p LayerPatch) error {
	l := e.layers.At(s)
	if l == nil {
		return fmt.Errorf("%w: %d", ErrUnknownSlot, s)
	}
	before := *l
	if err := p.apply(l, e.canvas, e.opts); err != nil {
		return err
	}
	if *l != before && e.HasImage() {
		e.render()
	}
	return nil
}

// Export returns the PNG encoding of the current frame
func (e *Editor) Export() ([]byte, error) {
	if !e.HasImage() {
		return nil, ErrExportWithoutImage
	}
	if e.exported != nil && e.exportedVer == e.version {
		return e.exported, nil
	}
	data, err := Export(e.frame)
	if err != nil {
		return nil, err
	}
	e.exported, e.exportedVer = data, e.version
	return data, nil
}

// Artifact bundles the exported frame with the text metadata
func (e *Editor) Artifact(now time.Time) (*Artifact, error) {
	data, err := e.Export()
	if err != nil {
		return nil, err
	}
	return &Artifact{
		ImageData:     data,
		TopText:       e.layers[SlotTop].Text,
		BottomText:    e.layers[SlotBottom].Text,
		LayerMetadata: metadataOf(&e.layers),
		Canvas:        e.canvas,
		CreatedAt:     now,
	}, nil
}

func (e *Editor) render() {
	start := time.Now()
	e.renderer.Render(e.frame, e.base, &e.layers)
	e.version++
	metrics.ObserveRender(start)
}
