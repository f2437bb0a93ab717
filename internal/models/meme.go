package models

import (
	"time"

	"github.com/code-100-precent/LingMeme/internal/editor"
)

// Meme is one published artifact. The PNG itself lives in the object store under ImageKey.
type Meme struct {
	BaseModel
	ImageKey   string               `json:"imageKey" gorm:"size:255"`
	ImageURL   string               `json:"imageUrl" gorm:"size:512"`
	TopText    string               `json:"topText" gorm:"size:512"`
	BottomText string               `json:"bottomText" gorm:"size:512"`
	Layers     editor.LayerMetadata `json:"layerMetadata" gorm:"serializer:json;type:text"`
	Width      int                  `json:"width"`
	Height     int                  `json:"height"`
	Size       int64                `json:"size"`
}

func (Meme) TableName() string {
	return "memes"
}

// NewMeme copies everything but the image bytes from a
func NewMeme(a editor.Artifact) *Meme {
	m := &Meme{
		TopText:    a.TopText,
		BottomText: a.BottomText,
		Layers:     a.LayerMetadata,
		Width:      a.Canvas.Width,
		Height:     a.Canvas.Height,
		Size:       int64(len(a.ImageData)),
	}
	if !a.CreatedAt.IsZero() {
		m.CreatedAt = a.CreatedAt.UnixMilli()
	}
	return m
}

// Created returns CreatedAt as a time
func (m *Meme) Created() time.Time {
	return time.UnixMilli(m.CreatedAt)
}
