package handlers

import (
	"github.com/code-100-precent/LingMeme/internal/editor"
	"github.com/code-100-precent/LingMeme/internal/gallery"
	"github.com/code-100-precent/LingMeme/internal/session"
	"github.com/code-100-precent/LingMeme/pkg/metrics"
	"github.com/code-100-precent/LingMeme/pkg/middleware"
	"github.com/code-100-precent/LingMeme/pkg/websocket"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Options wires the collaborators the HTTP surface needs
type Options struct {
	DB       *gorm.DB
	Registry *session.Registry
	Gallery  gallery.Store
	Loader   *editor.Loader
	Hub      *websocket.Hub

	APIPrefix     string
	MonitorPrefix string
	// MaxUploadBytes bounds a decoded image upload; 0 keeps 10MB
	MaxUploadBytes int64
}

type Handlers struct {
	db        *gorm.DB
	registry  *session.Registry
	gallery   gallery.Store
	loader    *editor.Loader
	wsHub     *websocket.Hub
	apiPrefix string
	monitor   string
	maxUpload int64
}

func NewHandlers(opts Options) *Handlers {
	if opts.Hub == nil {
		opts.Hub = websocket.NewHub(websocket.LoadConfigFromEnv())
	}
	if opts.Loader == nil {
		opts.Loader = editor.NewLoader(editor.LoaderConfig{})
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 10 << 20
	}
	return &Handlers{
		db:        opts.DB,
		registry:  opts.Registry,
		gallery:   opts.Gallery,
		loader:    opts.Loader,
		wsHub:     opts.Hub,
		apiPrefix: opts.APIPrefix,
		monitor:   opts.MonitorPrefix,
		maxUpload: opts.MaxUploadBytes,
	}
}

// Hub is the WebSocket hub the editor channels are attached to
func (h *Handlers) Hub() *websocket.Hub {
	return h.wsHub
}

func (h *Handlers) Register(engine *gin.Engine) {
	if h.monitor != "" {
		engine.GET(h.monitor, metrics.Handler())
	}

	r := engine.Group(h.apiPrefix)
	if h.db != nil {
		r.Use(middleware.InjectDB(h.db))
	}

	websocket.RegisterRoutes(r, websocket.NewHandler(h.wsHub))
	r.GET("/health/ready", h.handleReady)

	ed := r.Group("/editor")
	{
		ed.GET("/samples", h.handleListSamples)
		ed.GET("/samples/:name", h.handleGetSample)

		ed.POST("/sessions", h.handleCreateSession)
		ed.GET("/sessions/current", h.handleCurrentSession)
		ed.GET("/sessions/:id", h.handleGetSession)
		ed.DELETE("/sessions/:id", h.handleDeleteSession)
		ed.POST("/sessions/:id/image", h.handleLoadImage)
		ed.PATCH("/sessions/:id/layers/:slot", h.handlePatchLayer)
		ed.POST("/sessions/:id/events", h.handleEvent)
		ed.GET("/sessions/:id/ws", h.handleEditorWS)
		ed.GET("/sessions/:id/preview", h.handlePreview)
		ed.GET("/sessions/:id/download", h.handleDownload)
		ed.POST("/sessions/:id/publish", h.handlePublish)
	}

	r.GET("/memes", h.handleListMemes)
	r.GET("/memes/:id", h.handleGetMeme)
	r.GET("/memes/:id/image", h.handleMemeImage)
}
