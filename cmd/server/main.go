package main

import (
	"context"
	"crypto/tls"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	LingMeme "github.com/code-100-precent/LingMeme"
	"github.com/code-100-precent/LingMeme/cmd/bootstrap"
	"github.com/code-100-precent/LingMeme/internal/editor"
	"github.com/code-100-precent/LingMeme/internal/gallery"
	"github.com/code-100-precent/LingMeme/internal/handlers"
	"github.com/code-100-precent/LingMeme/internal/session"
	"github.com/code-100-precent/LingMeme/pkg/cache"
	"github.com/code-100-precent/LingMeme/pkg/config"
	"github.com/code-100-precent/LingMeme/pkg/constants"
	"github.com/code-100-precent/LingMeme/pkg/logger"
	"github.com/code-100-precent/LingMeme/pkg/middleware"
	"github.com/code-100-precent/LingMeme/pkg/scheduler"
	stores "github.com/code-100-precent/LingMeme/pkg/storage"
	"github.com/code-100-precent/LingMeme/pkg/utils"
	"github.com/code-100-precent/LingMeme/pkg/websocket"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cast"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	// Global variables for SSL certificate
	sslCert     tls.Certificate
	sslCertOnce sync.Once
	sslCertErr  error
)

type LingMemeApp struct {
	db        *gorm.DB
	registry  *session.Registry
	gallery   *gallery.Service
	loader    *editor.Loader
	hub       *websocket.Hub
	scheduler *scheduler.Scheduler
	handlers  *handlers.Handlers
	listCache cache.Cache
}

// editorOptions maps EDITOR_* settings onto the editor tunables
func editorOptions(c config.EditorConfig) editor.Options {
	opts := editor.DefaultOptions()
	opts.MaxWidth = c.MaxWidth
	opts.MaxHeight = c.MaxHeight
	opts.AnchorMargin = c.AnchorMargin
	opts.HitPadding = c.HitPadding
	opts.FontSizeMin = c.FontSizeMin
	opts.FontSizeMax = c.FontSizeMax
	opts.DefaultFontSize = c.DefaultFontSize
	opts.StrokeWidth = c.StrokeWidth
	return opts
}

func NewLingMemeApp(db *gorm.DB, cfg *config.Config) (*LingMemeApp, error) {
	blobs, err := stores.GetStore(cfg.StorageKind)
	if err != nil {
		return nil, err
	}
	if cfg.StorageKind != "" && cfg.StorageKind != stores.KindLocal {
		// 远程对象存储加熔断
		blobs = stores.WithBreaker(cfg.StorageKind, blobs)
	}

	listCache, err := cache.NewCache(cfg.Cache)
	if err != nil {
		logger.Warn("cache backend unavailable, fallback to local", zap.String("type", cfg.Cache.Type), zap.Error(err))
		listCache = cache.NewGoCache(cfg.Cache.Local)
	}

	hub := websocket.NewHub(websocket.LoadConfigFromEnv())
	registry := session.NewRegistry(session.Config{
		TTL:         cfg.Editor.SessionTTL,
		MaxSessions: cfg.Editor.MaxSessions,
		Editor:      editorOptions(cfg.Editor),
		// 会话被淘汰后关闭其 WebSocket 连接
		OnDrop: hub.CloseGroup,
	})
	loader := editor.NewLoader(editor.LoaderConfig{
		Samples:     LingMeme.SamplesFS(),
		AllowRemote: cfg.Editor.RemoteImages,
		MaxBytes:    cfg.Editor.MaxUploadBytes(),
	})
	svc := gallery.NewService(db, blobs, listCache, cfg.FeedCacheTTL)

	app := &LingMemeApp{
		db:        db,
		registry:  registry,
		gallery:   svc,
		loader:    loader,
		hub:       hub,
		scheduler: scheduler.NewScheduler(),
		listCache: listCache,
	}
	app.handlers = handlers.NewHandlers(handlers.Options{
		DB:             db,
		Registry:       registry,
		Gallery:        svc,
		Loader:         loader,
		Hub:            hub,
		APIPrefix:      cfg.APIPrefix,
		MonitorPrefix:  cfg.MonitorPrefix,
		MaxUploadBytes: cfg.Editor.MaxUploadBytes(),
	})
	if err := app.scheduler.RegisterHousekeeping(registry, svc); err != nil {
		return nil, err
	}
	return app, nil
}

func (app *LingMemeApp) RegisterRoutes(r *gin.Engine) {
	app.handlers.Register(r)
}

// Seed fills an empty gallery with demo memes
func (app *LingMemeApp) Seed(ctx context.Context, cfg *config.Config) error {
	seeder := bootstrap.SeedService{Gallery: app.gallery, Loader: app.loader, Editor: editorOptions(cfg.Editor)}
	return seeder.SeedAll(ctx)
}

func (app *LingMemeApp) Close() {
	app.scheduler.Stop()
	app.hub.Close()
	_ = app.registry.Close()
	_ = app.listCache.Close()
}

// setupRateLimiter shares counters through redis when the cache runs on redis
func setupRateLimiter(cfg *config.Config) {
	if cfg.Cache.Type == cache.KindRedis && cfg.Cache.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		})
		factory := &middleware.RedisStoreFactory{Client: client, Prefix: cfg.Cache.Redis.KeyPrefix + "limiter"}
		if store, err := factory.NewStore(); err == nil {
			middleware.SetRateLimiterStore(store)
		} else {
			logger.Warn("redis rate limiter store unavailable", zap.Error(err))
		}
	}
	middleware.SetRateLimiterConfig(middleware.RateLimiterConfig{
		Rate:       cfg.RateLimit,
		Identifier: "ip",
		SkipPaths: []string{
			"/health",
			cfg.MonitorPrefix,
			cfg.APIPrefix + "/ws/",
		},
	})
}

func main() {
	// 1. Print Banner
	if err := bootstrap.PrintBannerFromFile("banner.txt"); err != nil {
		logger.Warn("banner not printed", zap.Error(err))
	}

	// 2. Parse Command Line Parameters
	mode := flag.String("mode", "", "running environment (development, test, production)")
	addrFlag := flag.String("addr", "", "HTTP serve address, overrides ADDR")
	initSQL := flag.String("init-sql", "", "path to database init .sql script (optional)")
	seed := flag.Bool("seed", false, "fill an empty gallery with demo memes")
	flag.Parse()

	if *mode != "" {
		os.Setenv("APP_ENV", *mode)
	}

	// 3. Load Global Configuration
	if err := config.Load(); err != nil {
		panic("config load failed: " + err.Error())
	}
	cfg := config.GlobalConfig
	if *addrFlag != "" {
		cfg.Addr = *addrFlag
	}

	// 4. Load Log Configuration
	if err := logger.Init(&cfg.Log, cfg.Mode); err != nil {
		panic(err)
	}
	defer logger.Sync()

	bootstrap.LogConfigInfo()

	// 5. Load Data Source
	db, err := bootstrap.SetupDatabase(os.Stdout, &bootstrap.Options{
		InitSQLPath: *initSQL,
		AutoMigrate: true,
	})
	if err != nil {
		logger.Error("database setup failed", zap.Error(err))
		return
	}

	// 6. New App
	app, err := NewLingMemeApp(db, cfg)
	if err != nil {
		logger.Error("app setup failed", zap.Error(err))
		return
	}
	defer app.Close()

	if *seed || (os.Getenv("APP_ENV") != "production" && cfg.Mode != "production") {
		if err := app.Seed(context.Background(), cfg); err != nil {
			logger.Warn("seed failed", zap.Error(err))
		}
	}
	app.scheduler.Start()

	// 7. Initialize Gin Routing
	if cfg.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.MaxMultipartMemory = cfg.Editor.MaxUploadBytes() + 1<<20

	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RecoveryMiddleware(logger.Lg))
	r.Use(middleware.CorsMiddleware())
	r.Use(middleware.CompressionMiddleware(middleware.DefaultCompressionConfig()))
	r.Use(middleware.LoggerMiddleware(logger.Lg))
	setupRateLimiter(cfg)
	r.Use(middleware.RateLimiterMiddleware())

	// Cookie Register
	if secret := utils.GetEnv(constants.ENV_SESSION_SECRET); secret != "" {
		expireDays := cast.ToInt(cfg.SecretExpireDays)
		if expireDays <= 0 {
			expireDays = 7
		}
		r.Use(middleware.WithCookieSession(secret, expireDays*24*3600))
	} else {
		r.Use(middleware.WithMemSession(cfg.SessionSecret))
	}
	r.Use(middleware.TimeoutMiddleware(time.Minute))

	r.Static(cfg.APIPrefix+"/uploads", cfg.UploadDir)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "sessions": app.registry.Len()})
	})

	// 8. Register Routes
	app.RegisterRoutes(r)

	// 9. Start HTTP/HTTPS Server
	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- serve(httpServer, cfg)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server run failed", zap.Error(err))
		}
		return
	case sig := <-quit:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

// serve blocks until the server stops; ErrServerClosed is not an error
func serve(httpServer *http.Server, cfg *config.Config) error {
	var err error
	if cfg.SSLEnabled {
		loadSSLCertificates()
		tlsConfig, tlsErr := GetTLSConfig()
		if tlsErr != nil {
			return tlsErr
		}
		if tlsConfig != nil {
			httpServer.TLSConfig = tlsConfig
			logger.Info("Starting HTTPS server", zap.String("addr", httpServer.Addr))
			err = httpServer.ListenAndServeTLS("", "")
		} else {
			logger.Warn("SSL enabled but TLS config is nil, falling back to HTTP")
			err = httpServer.ListenAndServe()
		}
	} else {
		logger.Info("Starting HTTP server", zap.String("addr", httpServer.Addr))
		err = httpServer.ListenAndServe()
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// loadSSLCertificates loads SSL certificates
func loadSSLCertificates() {
	certFile := config.GlobalConfig.SSLCertFile
	keyFile := config.GlobalConfig.SSLKeyFile

	if certFile == "" || keyFile == "" {
		logger.Warn("SSL enabled but certificate files not configured",
			zap.String("certFile", certFile),
			zap.String("keyFile", keyFile))
		sslCertErr = errors.New("ssl certificate files not configured")
		return
	}

	sslCertOnce.Do(func() {
		cert, err := tls.LoadX509KeyPair(certFile, keyFile)
		if err != nil {
			sslCertErr = err
			logger.Error("Failed to load SSL certificates",
				zap.String("certFile", certFile),
				zap.String("keyFile", keyFile),
				zap.Error(err))
			return
		}
		sslCert = cert
		logger.Info("SSL certificates loaded successfully",
			zap.String("certFile", certFile),
			zap.String("keyFile", keyFile))
	})
}

// IsSSLEnabled checks if SSL is enabled and certificates are loaded
func IsSSLEnabled() bool {
	return config.GlobalConfig.SSLEnabled && sslCertErr == nil
}

// GetTLSConfig gets TLS configuration
func GetTLSConfig() (*tls.Config, error) {
	if !IsSSLEnabled() {
		return nil, sslCertErr
	}
	return &tls.Config{
		Certificates: []tls.Certificate{sslCert},
		MinVersion:   tls.VersionTLS12,
		CipherSuites: []uint16{
			tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
			tls.TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305,
			tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
			tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
			tls.TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305,
			tls.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256,
		},
	}, nil
}
