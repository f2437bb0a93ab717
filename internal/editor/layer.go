package editor

import (
	"fmt"
	"strings"

	imgx "github.com/code-100-precent/LingMeme/pkg/image"
	"github.com/spf13/cast"
)

// Slot identifies one of the two fixed text layers
type Slot int

const (
	SlotNone   Slot = -1
	SlotTop    Slot = 0
	SlotBottom Slot = 1
)

// Slots lists the layers in hit-test priority order
var Slots = [...]Slot{SlotTop, SlotBottom}

func (s Slot) String() string {
	switch s {
	case SlotTop:
		return "top"
	case SlotBottom:
		return "bottom"
	default:
		return "none"
	}
}

func (s Slot) Valid() bool {
	return s == SlotTop || s == SlotBottom
}

func (s Slot) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Slot) UnmarshalText(b []byte) error {
	v, err := ParseSlot(string(b))
	if err != nil && string(b) != "none" {
		return err
	}
	*s = v
	return nil
}

// ParseSlot accepts "top" or "bottom"
func ParseSlot(name string) (Slot, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "top":
		return SlotTop, nil
	case "bottom":
		return SlotBottom, nil
	}
	return SlotNone, fmt.Errorf("%w: %q", ErrUnknownSlot, name)
}

// TextLayer is one overlay string with its style and anchor
type TextLayer struct {
	Text        string  `json:"text"`
	FontSize    float64 `json:"fontSize"`
	Position    Point   `json:"position"`
	TextColor   string  `json:"textColor"`
	BorderColor string  `json:"borderColor"`
}

// Visible 空串或纯空白不绘制也不参与命中
func (l TextLayer) Visible() bool {
	return strings.TrimSpace(l.Text) != ""
}

// Layers holds exactly two layers, indexed by Slot
type Layers [2]TextLayer

// At returns the layer in slot, or nil for SlotNone
func (ls *Layers) At(s Slot) *TextLayer {
	if !s.Valid() {
		return nil
	}
	return &ls[s]
}

// Options are the editor's tunables; see DefaultOptions for the stock values
type Options struct {
	MaxWidth           int
	MaxHeight          int
	AnchorMargin       float64
	HitPadding         float64
	FontSizeMin        float64
	FontSizeMax        float64
	DefaultFontSize    float64
	StrokeWidth        float64
	DefaultTextColor   string
	DefaultBorderColor string
}

func DefaultOptions() Options {
	return Options{
		MaxWidth:           800,
		MaxHeight:          600,
		AnchorMargin:       50,
		HitPadding:         10,
		FontSizeMin:        20,
		FontSizeMax:        100,
		DefaultFontSize:    48,
		StrokeWidth:        3,
		DefaultTextColor:   "#ffffff",
		DefaultBorderColor: "#000000",
	}
}

// normalized fills zero fields from the defaults
func (o Options) normalized() Options {
	d := DefaultOptions()
	if o.MaxWidth <= 0 {
		o.MaxWidth = d.MaxWidth
	}
	if o.MaxHeight <= 0 {
		o.MaxHeight = d.MaxHeight
	}
	if o.AnchorMargin < 0 {
		o.AnchorMargin = d.AnchorMargin
	}
	if o.HitPadding < 0 {
		o.HitPadding = d.HitPadding
	}
	if o.FontSizeMin <= 0 {
		o.FontSizeMin = d.FontSizeMin
	}
	if o.FontSizeMax < o.FontSizeMin {
		o.FontSizeMax = max(d.FontSizeMax, o.FontSizeMin)
	}
	if o.DefaultFontSize <= 0 {
		o.DefaultFontSize = d.DefaultFontSize
	}
	o.DefaultFontSize = clamp(o.DefaultFontSize, o.FontSizeMin, o.FontSizeMax)
	if o.StrokeWidth <= 0 {
		o.StrokeWidth = d.StrokeWidth
	}
	if o.DefaultTextColor == "" {
		o.DefaultTextColor = d.DefaultTextColor
	}
	if o.DefaultBorderColor == "" {
		o.DefaultBorderColor = d.DefaultBorderColor
	}
	return o
}

// DefaultLayers places top and bottom on an empty canvas of the maximum size
func DefaultLayers(opts Options) Layers {
	opts = opts.normalized()
	var ls Layers
	for _, s := range Slots {
		ls[s] = TextLayer{
			FontSize:    opts.DefaultFontSize,
			TextColor:   opts.DefaultTextColor,
			BorderColor: opts.DefaultBorderColor,
		}
	}
	anchorLayers(&ls, CanvasState{Width: opts.MaxWidth, Height: opts.MaxHeight}, opts.AnchorMargin)
	return ls
}

// anchorLayers puts top at (W/2, margin) and bottom at (W/2, H-margin)
func anchorLayers(ls *Layers, c CanvasState, margin float64) {
	w, h := float64(c.Width), float64(c.Height)
	ls[SlotTop].Position = ClampPoint(Point{X: w / 2, Y: margin}, c.Width, c.Height)
	ls[SlotBottom].Position = ClampPoint(Point{X: w / 2, Y: h - margin}, c.Width, c.Height)
}

// LayerPatch is a partial update of one layer. Numeric fields accept anything
// spf13/cast can read as a number (json numbers, numeric strings, ints).
type LayerPatch struct {
	Text        *string `json:"text,omitempty"`
	FontSize    any     `json:"fontSize,omitempty"`
	X           any     `json:"x,omitempty"`
	Y           any     `json:"y,omitempty"`
	TextColor   *string `json:"textColor,omitempty"`
	BorderColor *string `json:"borderColor,omitempty"`
}

// Empty reports whether the patch carries no field
func (p LayerPatch) Empty() bool {
	return p.Text == nil && p.FontSize == nil && p.X == nil && p.Y == nil &&
		p.TextColor == nil && p.BorderColor == nil
}

// apply validates every field first and only then writes, so a rejected patch
// leaves the layer untouched.
func (p LayerPatch) apply(l *TextLayer, c CanvasState, opts Options) error {
	next := *l
	if p.Text != nil {
		next.Text = *p.Text
	}
	if p.FontSize != nil {
		v, err := toNumber("fontSize", p.FontSize)
		if err != nil {
			return err
		}
		next.FontSize = clamp(v, opts.FontSizeMin, opts.FontSizeMax)
	}
	if p.X != nil {
		v, err := toNumber("x", p.X)
		if err != nil {
			return err
		}
		next.Position.X = v
	}
	if p.Y != nil {
		v, err := toNumber("y", p.Y)
		if err != nil {
			return err
		}
		next.Position.Y = v
	}
	next.Position = ClampPoint(next.Position, c.Width, c.Height)
	if p.TextColor != nil {
		hex, err := imgx.NormalizeHexColor(*p.TextColor)
		if err != nil {
			return fmt.Errorf("%w: textColor %q", ErrInvalidColor, *p.TextColor)
		}
		next.TextColor = hex
	}
	if p.BorderColor != nil {
		hex, err := imgx.NormalizeHexColor(*p.BorderColor)
		if err != nil {
			return fmt.Errorf("%w: borderColor %q", ErrInvalidColor, *p.BorderColor)
		}
		next.BorderColor = hex
	}
	*l = next
	return nil
}

func toNumber(field string, v any) (float64, error) {
	if s, ok := v.(string); ok {
		s = strings.TrimSpace(s)
		if s == "" {
			return 0, fmt.Errorf("%w: %s is empty", ErrInvalidNumber, field)
		}
		v = s
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%v", ErrInvalidNumber, field, v)
	}
	return f, nil
}
