package editor

import (
	"image"

	imgx "github.com/code-100-precent/LingMeme/pkg/image"
)

// Export encodes the frame as PNG. It reads pixels only.
func Export(frame *image.RGBA) ([]byte, error) {
	if frame == nil {
		return nil, ErrExportWithoutImage
	}
	return imgx.EncodePNG(frame)
}
