package scheduler

import (
	"context"

	"github.com/code-100-precent/LingMeme/pkg/logger"
	"github.com/code-100-precent/LingMeme/pkg/metrics"
	"go.uber.org/zap"
)

const (
	TaskPurgeSessions = "purge-sessions"
	TaskGallerySize   = "gallery-size"
)

// SessionPurger drops idle editor sessions
type SessionPurger interface {
	Purge() int
	Len() int
}

// GalleryCounter reports how many memes have been published
type GalleryCounter interface {
	Count(ctx context.Context) (int64, error)
}

// PurgeSessionsTask evicts expired sessions and refreshes the active-session gauge
func PurgeSessionsTask(p SessionPurger, schedule string) *Task {
	if schedule == "" {
		schedule = "@every 1m"
	}
	return &Task{
		ID:       TaskPurgeSessions,
		Name:     "Purge idle editor sessions",
		Schedule: schedule,
		Enabled:  true,
		Run: func(ctx context.Context) error {
			if n := p.Purge(); n > 0 {
				logger.Info("idle sessions purged", zap.Int("count", n))
			}
			metrics.ActiveSessions.Set(float64(p.Len()))
			return nil
		},
	}
}

// GallerySizeTask recounts the published memes for the gallery gauge
func GallerySizeTask(g GalleryCounter, schedule string) *Task {
	if schedule == "" {
		schedule = "@every 5m"
	}
	return &Task{
		ID:       TaskGallerySize,
		Name:     "Refresh gallery size",
		Schedule: schedule,
		Enabled:  true,
		Run: func(ctx context.Context) error {
			n, err := g.Count(ctx)
			if err != nil {
				return err
			}
			metrics.GallerySize.Set(float64(n))
			return nil
		},
	}
}

// RegisterHousekeeping adds the standard maintenance tasks; nil dependencies are skipped
func (s *Scheduler) RegisterHousekeeping(p SessionPurger, g GalleryCounter) error {
	if p != nil {
		if err := s.AddTask(PurgeSessionsTask(p, "")); err != nil {
			return err
		}
	}
	if g != nil {
		if err := s.AddTask(GallerySizeTask(g, "")); err != nil {
			return err
		}
	}
	return nil
}
