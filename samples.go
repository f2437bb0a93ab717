package LingMeme

import (
	"embed"
	"io/fs"
)

// EmbedSamples 内置示例底图
//
//go:embed assets/samples/*.png
var EmbedSamples embed.FS

// SamplesFS returns the bundled samples rooted at their directory
func SamplesFS() fs.FS {
	sub, err := fs.Sub(EmbedSamples, "assets/samples")
	if err != nil {
		panic(err)
	}
	return sub
}
