package image

import (
	"bytes"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

func encodeWith(t *testing.T, enc func(*bytes.Buffer) error) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, enc(&buf))
	return buf.Bytes()
}

func TestDecode_Formats(t *testing.T) {
	img := createTestImage(40, 30)
	cases := map[Format][]byte{
		FormatPNG:  encodeWith(t, func(b *bytes.Buffer) error { return png.Encode(b, img) }),
		FormatJPEG: encodeWith(t, func(b *bytes.Buffer) error { return jpeg.Encode(b, img, nil) }),
		FormatBMP:  encodeWith(t, func(b *bytes.Buffer) error { return bmp.Encode(b, img) }),
	}
	for want, data := range cases {
		assert.Equal(t, want, DetectFormat(data))
		got, format, err := Decode(data)
		require.NoError(t, err, want)
		assert.Equal(t, want, format)
		assert.Equal(t, 40, got.Bounds().Dx())
		assert.Equal(t, 30, got.Bounds().Dy())
	}
}

func TestDecode_Errors(t *testing.T) {
	_, _, err := Decode(nil)
	assert.ErrorIs(t, err, ErrEmptyImage)

	_, _, err = Decode([]byte("definitely not an image"))
	assert.Error(t, err)

	// valid signature, truncated body
	data := encodeWith(t, func(b *bytes.Buffer) error { return png.Encode(b, createTestImage(10, 10)) })
	_, format, err := Decode(data[:20])
	assert.Error(t, err)
	assert.Equal(t, FormatPNG, format)
}

func TestParseDataURL(t *testing.T) {
	data := encodeWith(t, func(b *bytes.Buffer) error { return png.Encode(b, createTestImage(4, 4)) })

	mediaType, payload, err := ParseDataURL(PNGDataURL(data))
	require.NoError(t, err)
	assert.Equal(t, "image/png", mediaType)
	assert.Equal(t, data, payload)

	mediaType, payload, err = ParseDataURL("data:text/plain,hello%20world")
	require.NoError(t, err)
	assert.Equal(t, "text/plain", mediaType)
	assert.Equal(t, "hello world", string(payload))

	_, _, err = ParseDataURL("https://example.com/a.png")
	assert.Error(t, err)
	_, _, err = ParseDataURL("data:image/png;base64")
	assert.Error(t, err)
	_, _, err = ParseDataURL("data:image/png;base64,@@@")
	assert.Error(t, err)
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "image/png", ContentType(FormatPNG))
	assert.Equal(t, "image/jpeg", ContentType(FormatJPEG))
	assert.Equal(t, "application/octet-stream", ContentType(FormatUnknown))
}
