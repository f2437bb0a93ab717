package editor

import "errors"

var (
	// ErrImageDecode 图片无法解码，编辑器保持原状
	ErrImageDecode = errors.New("image could not be decoded")

	// ErrExportWithoutImage is the user-facing message shown when nothing is loaded yet
	ErrExportWithoutImage = errors.New("Please select an image first!")

	ErrUnknownSlot    = errors.New("unknown layer slot")
	ErrUnknownEvent   = errors.New("unknown input event type")
	ErrInvalidNumber  = errors.New("value is not a number")
	ErrInvalidColor   = errors.New("invalid color")
	ErrUnknownSample  = errors.New("unknown sample image")
	ErrRemoteDisabled = errors.New("remote images are disabled")
	ErrEmptySource    = errors.New("no image source given")
)
