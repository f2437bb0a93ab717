package editor

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"path"
	"slices"
	"strings"
	"time"

	imgx "github.com/code-100-precent/LingMeme/pkg/image"
)

// CanvasState is the bitmap size of the editor
type CanvasState struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// FitSize shrinks w x h into maxW x maxH keeping the aspect ratio. Width is
// clamped first and height second; images that already fit keep their size.
func FitSize(w, h, maxW, maxH int) CanvasState {
	fw, fh := float64(w), float64(h)
	if fw > float64(maxW) {
		fh = fh * float64(maxW) / fw
		fw = float64(maxW)
	}
	if fh > float64(maxH) {
		fw = fw * float64(maxH) / fh
		fh = float64(maxH)
	}
	return CanvasState{Width: max(1, int(fw)), Height: max(1, int(fh))}
}

// Source names where an image comes from. Exactly one field is used, checked in
// declaration order.
type Source struct {
	Data    []byte `json:"-"`
	DataURL string `json:"dataUrl,omitempty"`
	Sample  string `json:"sample,omitempty"`
	URL     string `json:"url,omitempty"`
}

// Name is a short label for logs and the session snapshot
func (s Source) Name() string {
	switch {
	case len(s.Data) > 0:
		return "upload"
	case s.DataURL != "":
		return "data-url"
	case s.Sample != "":
		return "sample:" + s.Sample
	case s.URL != "":
		return s.URL
	}
	return ""
}

type LoaderConfig struct {
	// Samples holds the bundled sample images at its root
	Samples     fs.FS
	AllowRemote bool
	MaxBytes    int64
	Client      *http.Client
}

// Loader turns a Source into a decoded image. It holds no editor state, so it
// runs before the session lock is taken.
type Loader struct {
	samples     fs.FS
	allowRemote bool
	maxBytes    int64
	client      *http.Client
}

func NewLoader(cfg LoaderConfig) *Loader {
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 10 << 20
	}
	if cfg.Client == nil {
		cfg.Client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Loader{
		samples:     cfg.Samples,
		allowRemote: cfg.AllowRemote,
		maxBytes:    cfg.MaxBytes,
		client:      cfg.Client,
	}
}

// Samples lists bundled sample names, shortest name first
func (l *Loader) Samples() []string {
	if l.samples == nil {
		return nil
	}
	entries, err := fs.ReadDir(l.samples, ".")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || imgx.ContentType(formatFromExt(e.Name())) == "application/octet-stream" {
			continue
		}
		names = append(names, e.Name())
	}
	slices.SortFunc(names, func(a, b string) int {
		if len(a) != len(b) {
			return len(a) - len(b)
		}
		return strings.Compare(a, b)
	})
	return names
}

// SampleBytes returns the raw bytes of one bundled sample
func (l *Loader) SampleBytes(name string) ([]byte, error) {
	if l.samples == nil || name == "" || name != path.Base(name) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSample, name)
	}
	data, err := fs.ReadFile(l.samples, name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSample, name)
	}
	return data, nil
}

func formatFromExt(name string) imgx.Format {
	switch strings.ToLower(path.Ext(name)) {
	case ".png":
		return imgx.FormatPNG
	case ".jpg", ".jpeg":
		return imgx.FormatJPEG
	case ".gif":
		return imgx.FormatGIF
	case ".webp":
		return imgx.FormatWEBP
	}
	return imgx.FormatUnknown
}

// Load fetches and decodes src. Every decoding failure wraps ErrImageDecode.
func (l *Loader) Load(ctx context.Context, src Source) (image.Image, error) {
	data, err := l.read(ctx, src)
	if err != nil {
		return nil, err
	}
	return l.Decode(data)
}

// Decode decodes raw image bytes
func (l *Loader) Decode(data []byte) (image.Image, error) {
	if int64(len(data)) > l.maxBytes {
		return nil, fmt.Errorf("%w: image larger than %d bytes", ErrImageDecode, l.maxBytes)
	}
	img, _, err := imgx.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageDecode, err)
	}
	return img, nil
}

func (l *Loader) read(ctx context.Context, src Source) ([]byte, error) {
	switch {
	case len(src.Data) > 0:
		return src.Data, nil
	case src.DataURL != "":
		_, data, err := imgx.ParseDataURL(src.DataURL)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrImageDecode, err)
		}
		return data, nil
	case src.Sample != "":
		return l.SampleBytes(src.Sample)
	case src.URL != "":
		return l.fetch(ctx, src.URL)
	}
	return nil, ErrEmptySource
}

func (l *Loader) fetch(ctx context.Context, raw string) ([]byte, error) {
	if !l.allowRemote {
		return nil, ErrRemoteDisabled
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: bad url %q", ErrImageDecode, raw)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageDecode, err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch %s: %v", ErrImageDecode, u.Host, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: fetch %s: status %d", ErrImageDecode, u.Host, resp.StatusCode)
	}
	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(resp.Body, l.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrImageDecode, err)
	}
	if n > l.maxBytes {
		return nil, fmt.Errorf("%w: image larger than %d bytes", ErrImageDecode, l.maxBytes)
	}
	return buf.Bytes(), nil
}
