package bootstrap

import (
	"context"
	"strings"
	"time"

	"github.com/code-100-precent/LingMeme/internal/editor"
	"github.com/code-100-precent/LingMeme/internal/models"
	"github.com/code-100-precent/LingMeme/pkg/logger"
	"go.uber.org/zap"
)

// GallerySeeder is the part of the gallery the seeder writes to
type GallerySeeder interface {
	Persist(ctx context.Context, a editor.Artifact) (*models.Meme, error)
	Count(ctx context.Context) (int64, error)
}

// SeedService fills an empty gallery with one demo meme per bundled sample
type SeedService struct {
	Gallery GallerySeeder
	Loader  *editor.Loader
	Editor  editor.Options
	// Painter nil selects the built-in font stack
	Painter editor.TextPainter
}

func (s *SeedService) SeedAll(ctx context.Context) error {
	if err := s.seedGallery(ctx); err != nil {
		return err
	}
	return nil
}

func (s *SeedService) seedGallery(ctx context.Context) error {
	n, err := s.Gallery.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	seeded := 0
	for _, name := range s.Loader.Samples() {
		img, err := s.Loader.Load(ctx, editor.Source{Sample: name})
		if err != nil {
			logger.Warn("skip sample", zap.String("sample", name), zap.Error(err))
			continue
		}
		ed := editor.New(s.Editor, s.Painter)
		ed.LoadImage(img, "sample:"+name)
		top, bottom := "LingMeme", strings.ToUpper(strings.TrimSuffix(name, ".png"))
		if err := ed.ApplyPatch(editor.SlotTop, editor.LayerPatch{Text: &top}); err != nil {
			return err
		}
		if err := ed.ApplyPatch(editor.SlotBottom, editor.LayerPatch{Text: &bottom}); err != nil {
			return err
		}
		a, err := ed.Artifact(time.Now())
		if err != nil {
			return err
		}
		if _, err := s.Gallery.Persist(ctx, *a); err != nil {
			return err
		}
		seeded++
	}
	logger.Info("gallery seeded", zap.Int("memes", seeded))
	return nil
}
