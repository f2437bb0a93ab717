package editor

import (
	"fmt"
	"strings"
)

// Kind is what the drag controller sees after normalization
type Kind int

const (
	KindPress Kind = iota
	KindMove
	KindRelease
)

func (k Kind) String() string {
	switch k {
	case KindPress:
		return "press"
	case KindMove:
		return "move"
	default:
		return "release"
	}
}

// Modality records where an event came from. Only the editor looks at it.
type Modality int

const (
	ModalityPointer Modality = iota
	ModalityTouch
)

func (m Modality) String() string {
	if m == ModalityTouch {
		return "touch"
	}
	return "pointer"
}

// TouchPoint is one entry of a TouchEvent's touch list
type TouchPoint struct {
	ClientX float64 `json:"clientX"`
	ClientY float64 `json:"clientY"`
}

// RawEvent is the browser-shaped payload clients send for canvas input
type RawEvent struct {
	Type           string       `json:"type"`
	ClientX        float64      `json:"clientX"`
	ClientY        float64      `json:"clientY"`
	Touches        []TouchPoint `json:"touches,omitempty"`
	ChangedTouches []TouchPoint `json:"changedTouches,omitempty"`
	Rect           Rect         `json:"rect"`
}

// InputEvent is the single event variant fed to the drag controller
type InputEvent struct {
	Kind     Kind
	Modality Modality
	ClientX  float64
	ClientY  float64
	Box      Rect
	// HasPoint is false for releases that carry no coordinates (touchend)
	HasPoint bool
}

var eventKinds = map[string]struct {
	kind     Kind
	modality Modality
}{
	"mousedown":     {KindPress, ModalityPointer},
	"pointerdown":   {KindPress, ModalityPointer},
	"mousemove":     {KindMove, ModalityPointer},
	"pointermove":   {KindMove, ModalityPointer},
	"mouseup":       {KindRelease, ModalityPointer},
	"pointerup":     {KindRelease, ModalityPointer},
	"mouseleave":    {KindRelease, ModalityPointer},
	"pointerleave":  {KindRelease, ModalityPointer},
	"pointercancel": {KindRelease, ModalityPointer},
	"touchstart":    {KindPress, ModalityTouch},
	"touchmove":     {KindMove, ModalityTouch},
	"touchend":      {KindRelease, ModalityTouch},
	"touchcancel":   {KindRelease, ModalityTouch},
}

// NormalizeEvent folds pointer and touch payloads into one InputEvent. Touch
// press and move use the first active touch point.
func NormalizeEvent(raw RawEvent) (InputEvent, error) {
	k, ok := eventKinds[strings.ToLower(strings.TrimSpace(raw.Type))]
	if !ok {
		return InputEvent{}, fmt.Errorf("%w: %q", ErrUnknownEvent, raw.Type)
	}
	ev := InputEvent{Kind: k.kind, Modality: k.modality, Box: raw.Rect}

	if k.modality == ModalityPointer {
		ev.ClientX, ev.ClientY, ev.HasPoint = raw.ClientX, raw.ClientY, true
		return ev, nil
	}

	touches := raw.Touches
	if k.kind == KindRelease {
		touches = raw.ChangedTouches
	}
	if len(touches) > 0 {
		ev.ClientX, ev.ClientY, ev.HasPoint = touches[0].ClientX, touches[0].ClientY, true
	} else if k.kind != KindRelease {
		return InputEvent{}, fmt.Errorf("%w: %s without touches", ErrUnknownEvent, raw.Type)
	}
	return ev, nil
}
