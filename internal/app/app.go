// Package app provides the application lifecycle management for the
// filehook service.
package app

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"go.uber.org/zap"

	httpapi "github.com/filehook/filehook/internal/api/http"
	"github.com/filehook/filehook/internal/config"
	"github.com/filehook/filehook/internal/filehook"
	"github.com/filehook/filehook/internal/item"
	"github.com/filehook/filehook/internal/metrics"
	"github.com/filehook/filehook/internal/server"
	"github.com/filehook/filehook/internal/store"
)

// App wires the filehook service components and manages their lifecycle.
type App struct {
	cfg    *config.Config
	logger *zap.Logger

	objects      store.ObjectStore
	items        *item.SQLiteService
	synchronizer *filehook.Synchronizer
	shutdown     *server.ShutdownManager

	apiServer     *http.Server
	metricsServer *http.Server

	mu      sync.Mutex
	running bool
}

// New creates a new App with the given configuration. The configuration is
// resolved and validated; a missing store location is fatal here.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	cfg.Resolve()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to create directories: %w", err)
	}

	return &App{
		cfg:      cfg,
		logger:   logger,
		shutdown: server.NewShutdownManager(0, logger),
	}, nil
}

// Start initializes all components and starts the HTTP servers.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	if a.running {
		a.mu.Unlock()
		return fmt.Errorf("app is already running")
	}
	a.running = true
	a.mu.Unlock()

	if err := a.initObjectStore(ctx); err != nil {
		return fmt.Errorf("failed to initialize object store: %w", err)
	}

	items, err := item.NewSQLiteService(a.cfg.Items.DBPath, a.logger)
	if err != nil {
		return fmt.Errorf("failed to open item store: %w", err)
	}
	a.items = items
	a.shutdown.RegisterCloser("item store", items)

	keys := filehook.NewKeyGenerator()

	a.synchronizer = filehook.NewSynchronizer(a.objects, keys, a.cfg.Storage.S3.CacheControl, a.logger)
	a.synchronizer.Register(items)
	a.shutdown.RegisterCloser("delete drain", server.CloserFunc(func() error {
		a.synchronizer.Wait()
		return nil
	}))

	authorizer := filehook.NewUploadAuthorizer(a.objects, a.cfg.Upload.Expiry(), a.logger)
	resolver := filehook.NewMetadataResolver(items, a.objects, a.logger)

	router := httpapi.NewRouter(
		httpapi.NewUploadHandler(items, keys, authorizer),
		httpapi.NewMetadataHandler(resolver),
	)

	a.apiServer = &http.Server{
		Addr:         a.cfg.HTTP.ListenAddr,
		Handler:      router,
		ReadTimeout:  a.cfg.HTTP.ReadTimeout,
		WriteTimeout: a.cfg.HTTP.WriteTimeout,
		IdleTimeout:  a.cfg.HTTP.IdleTimeout,
	}
	a.shutdown.RegisterCloser("api server", &server.HTTPServerCloser{Server: a.apiServer})
	go a.serve("api", a.apiServer)

	if a.cfg.HTTP.MetricsAddr != "" {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", metrics.Handler())
		a.metricsServer = &http.Server{
			Addr:    a.cfg.HTTP.MetricsAddr,
			Handler: metricsMux,
		}
		a.shutdown.RegisterCloser("metrics server", &server.HTTPServerCloser{Server: a.metricsServer})
		go a.serve("metrics", a.metricsServer)
	}

	a.logger.Info("filehook started",
		zap.String("listen", a.cfg.HTTP.ListenAddr),
		zap.String("storage", a.cfg.Storage.Type))

	return nil
}

// initObjectStore constructs the configured backend, wrapped with metrics.
func (a *App) initObjectStore(ctx context.Context) error {
	switch a.cfg.Storage.Type {
	case "s3":
		s3cfg := a.cfg.Storage.S3
		s3store, err := store.NewS3Store(ctx, s3cfg.Bucket, store.S3Config{
			Region:          s3cfg.Region,
			Endpoint:        s3cfg.Endpoint,
			AccessKeyID:     s3cfg.AccessKeyID,
			SecretAccessKey: s3cfg.SecretAccessKey,
			UseAccelerate:   s3cfg.UseAccelerate,
			UsePathStyle:    s3cfg.UsePathStyle,
			CacheControl:    s3cfg.CacheControl,
		})
		if err != nil {
			return err
		}
		a.objects = store.Instrument(s3store)
	case "local":
		local, err := store.NewLocalStore(a.cfg.Storage.Path)
		if err != nil {
			return err
		}
		a.objects = store.Instrument(local)
	default:
		return fmt.Errorf("unknown storage type: %s", a.cfg.Storage.Type)
	}
	return nil
}

func (a *App) serve(name string, srv *http.Server) {
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		a.logger.Error("server failed",
			zap.String("server", name),
			zap.String("addr", srv.Addr),
			zap.Error(err))
	}
}

// Wait blocks until a termination signal arrives, then shuts down.
func (a *App) Wait(ctx context.Context) error {
	return a.shutdown.ListenForSignals(ctx)
}

// Stop initiates graceful shutdown.
func (a *App) Stop(reason string) error {
	return a.shutdown.Shutdown(reason)
}
