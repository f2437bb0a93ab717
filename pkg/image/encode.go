package image

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/png"
)

// pngEncoder uses a fixed compression level so identical frames encode to identical bytes
var pngEncoder = &png.Encoder{CompressionLevel: png.DefaultCompression}

// EncodePNG losslessly encodes img
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := pngEncoder.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// PNGDataURL formats PNG bytes as a data URL
func PNGDataURL(data []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(data)
}
