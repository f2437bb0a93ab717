package gallery

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/code-100-precent/LingMeme/internal/editor"
	"github.com/code-100-precent/LingMeme/internal/models"
	"github.com/code-100-precent/LingMeme/pkg/cache"
	"github.com/code-100-precent/LingMeme/pkg/constants"
	"github.com/code-100-precent/LingMeme/pkg/logger"
	"github.com/code-100-precent/LingMeme/pkg/metrics"
	stores "github.com/code-100-precent/LingMeme/pkg/storage"
	"github.com/code-100-precent/LingMeme/pkg/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

var ErrMemeNotFound = &utils.Error{Code: http.StatusNotFound, Message: "meme not found"}

// Store persists finished artifacts and serves them back
type Store interface {
	Persist(ctx context.Context, a editor.Artifact) (*models.Meme, error)
	List(ctx context.Context, page, size int) ([]models.Meme, int64, error)
	Get(ctx context.Context, id string) (*models.Meme, error)
	OpenImage(ctx context.Context, id string) (io.ReadCloser, int64, error)
}

// Service keeps rows in gorm and PNG blobs in an object store. List pages are
// cached and dropped on every publish.
type Service struct {
	db    *gorm.DB
	blobs stores.Store
	cache cache.Cache
	ttl   time.Duration
	now   func() time.Time
}

// NewService c may be nil, which disables list caching
func NewService(db *gorm.DB, blobs stores.Store, c cache.Cache, ttl time.Duration) *Service {
	return &Service{db: db, blobs: blobs, cache: c, ttl: ttl, now: time.Now}
}

type listPage struct {
	Items []models.Meme `json:"items"`
	Total int64         `json:"total"`
}

// Persist writes the PNG first and the row second; a failed insert removes the blob
func (s *Service) Persist(ctx context.Context, a editor.Artifact) (*models.Meme, error) {
	if len(a.ImageData) == 0 {
		return nil, editor.ErrExportWithoutImage
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = s.now()
	}

	m := models.NewMeme(a)
	m.ID = uuid.NewString()
	m.ImageKey = constants.MemeKeyPrefix + m.ID + ".png"

	err := s.blobs.Write(ctx, m.ImageKey, bytes.NewReader(a.ImageData), int64(len(a.ImageData)), constants.PNGContentType)
	if err != nil {
		return nil, fmt.Errorf("store meme image: %w", err)
	}
	m.ImageURL = s.blobs.PublicURL(m.ImageKey)

	if err := s.db.WithContext(ctx).Create(m).Error; err != nil {
		if derr := s.blobs.Delete(ctx, m.ImageKey); derr != nil {
			logger.Warn("remove orphan meme image", zap.String("key", m.ImageKey), zap.Error(derr))
		}
		return nil, fmt.Errorf("insert meme: %w", err)
	}

	s.invalidate(ctx)
	metrics.PersistedArtifacts.Inc()
	metrics.GallerySize.Inc()
	logger.Info("meme published",
		zap.String("id", m.ID),
		zap.String("key", m.ImageKey),
		zap.Int64("size", m.Size),
	)
	return m, nil
}

// List returns one page, newest first, plus the total row count
func (s *Service) List(ctx context.Context, page, size int) ([]models.Meme, int64, error) {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}

	key := fmt.Sprintf(constants.CacheKeyGalleryPage, s.generation(ctx), page, size)
	if p, ok := s.cached(ctx, key); ok {
		return p.Items, p.Total, nil
	}

	var (
		items []models.Meme
		total int64
	)
	db := s.db.WithContext(ctx).Model(&models.Meme{})
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := s.db.WithContext(ctx).
		Order("created_at desc").
		Offset((page - 1) * size).
		Limit(size).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}

	if s.cache != nil {
		if b, err := json.Marshal(listPage{Items: items, Total: total}); err == nil {
			_ = s.cache.Set(ctx, key, b, s.ttl)
		}
	}
	return items, total, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.Meme, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrMemeNotFound
	}
	var m models.Meme
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMemeNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// OpenImage streams the stored PNG of meme id
func (s *Service) OpenImage(ctx context.Context, id string) (io.ReadCloser, int64, error) {
	m, err := s.Get(ctx, id)
	if err != nil {
		return nil, 0, err
	}
	rc, size, err := s.blobs.Read(ctx, m.ImageKey)
	if errors.Is(err, stores.ErrObjectNotFound) {
		return nil, 0, fmt.Errorf("%w: %s", ErrMemeNotFound, m.ImageKey)
	}
	return rc, size, err
}

// Count returns the number of persisted memes
func (s *Service) Count(ctx context.Context) (int64, error) {
	var total int64
	err := s.db.WithContext(ctx).Model(&models.Meme{}).Count(&total).Error
	return total, err
}

func (s *Service) generation(ctx context.Context) string {
	if s.cache == nil {
		return "0"
	}
	v, ok := s.cache.Get(ctx, constants.CacheKeyGalleryGen)
	if !ok {
		return "0"
	}
	switch g := v.(type) {
	case string:
		return g
	case []byte:
		return string(g)
	}
	return "0"
}

// invalidate 更新代数，旧的分页缓存随之失效并自然过期
func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	gen := strconv.FormatInt(s.now().UnixNano(), 36)
	if err := s.cache.Set(ctx, constants.CacheKeyGalleryGen, gen, 0); err != nil {
		logger.Warn("bump gallery generation", zap.Error(err))
	}
}

func (s *Service) cached(ctx context.Context, key string) (listPage, bool) {
	var p listPage
	if s.cache == nil {
		return p, false
	}
	v, ok := s.cache.Get(ctx, key)
	if !ok {
		return p, false
	}
	b, ok := v.([]byte)
	if !ok {
		return p, false
	}
	if err := json.Unmarshal(b, &p); err != nil {
		return p, false
	}
	return p, true
}
