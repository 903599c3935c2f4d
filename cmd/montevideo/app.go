package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nkiryanov/montevideo/internal/db"
	"github.com/nkiryanov/montevideo/internal/handlers"
	"github.com/nkiryanov/montevideo/internal/logger"
	"github.com/nkiryanov/montevideo/internal/models"
	"github.com/nkiryanov/montevideo/internal/repository/postgres"
	"github.com/nkiryanov/montevideo/internal/service/auth"
	"github.com/nkiryanov/montevideo/internal/service/auth/tokenmanager"
	"github.com/nkiryanov/montevideo/internal/service/video"
	"github.com/nkiryanov/montevideo/internal/service/youtube"
)

const shutdownTimeout = 5 * time.Second

type ServerApp struct {
	ListenAddr string
	Handler    http.Handler

	// Nil if periodic import disabled
	importer       *youtube.Importer
	importInterval time.Duration

	pool   *pgxpool.Pool
	logger logger.Logger
}

func NewServerApp(ctx context.Context, c *Config) (*ServerApp, error) {
	// Initialize logger
	logger, err := logger.New(c.Environment, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("error while initializing logger: %w", err)
	}

	// Fail fast on bad secrets, before touching db
	tokenManager, err := tokenmanager.New(tokenmanager.Config{
		AccessSecret:  c.AccessSecret,
		RefreshSecret: c.RefreshSecret,
		AccessTTL:     c.AccessTTL,
		RefreshTTL:    c.RefreshTTL,
		RotateRefresh: c.RotateRefresh,
	})
	if err != nil {
		return nil, fmt.Errorf("error while creating token manager. Err: %w", err)
	}

	// Connect to the database and run migrations
	pool, err := db.ConnectAndMigrate(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("error while connecting to db. Err: %w", err)
	}

	// Initialize repositories
	storage := postgres.NewStorage(pool)

	// Initialize services
	authService, err := auth.NewService(auth.Config{}, tokenManager, storage.User())
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("error while creating auth service. Err: %w", err)
	}
	videoService := video.NewService(storage)

	app := &ServerApp{
		ListenAddr: c.ListenAddr,
		pool:       pool,
		logger:     logger,
	}

	// Import endpoint answers 503 without api key, so pass untyped nil then
	var importer interface {
		Import(ctx context.Context) ([]models.Video, error)
	}
	if c.YouTubeAPIKey != "" {
		client := youtube.NewClient(c.YouTubeAddr, c.YouTubeAPIKey, logger.With("component", "youtube"))
		ytImporter := youtube.NewImporter(client, storage, logger.With("component", "importer"))
		importer = ytImporter

		if c.YouTubeImportInterval > 0 {
			app.importer = ytImporter
			app.importInterval = c.YouTubeImportInterval
		}
	}

	app.Handler = handlers.NewRouter(
		handlers.RouterConfig{RequestTimeout: c.RequestTimeout},
		authService,
		videoService,
		importer,
		logger,
	)

	return app, nil
}

// Run starts http server and closes gracefully on context cancellation
// Periodic importer, if enabled, is stopped before db pool closed
func (s *ServerApp) Run(ctx context.Context) error {
	defer s.pool.Close()

	httpServer := &http.Server{
		Addr:    s.ListenAddr,
		Handler: s.Handler,
	}

	srvCtx, srvCtxCancel := context.WithCancel(ctx)
	defer srvCtxCancel()

	var importerStopped <-chan struct{}
	if s.importer != nil {
		importerStopped = s.importer.Run(srvCtx, s.importInterval)
	} else {
		stopped := make(chan struct{})
		close(stopped)
		importerStopped = stopped
	}

	idleConnsClosed := make(chan struct{})
	go func() {
		<-srvCtx.Done()

		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(timeoutCtx); errors.Is(err, context.DeadlineExceeded) {
			s.logger.Error("HTTP server shutdown timeout exceeded, forcing shutdown...")
		}
		s.logger.Info("HTTP server stopped")
		close(idleConnsClosed)
	}()

	// Listen and serve until context is cancelled; then close gracefully connections
	s.logger.Info("Starting server", "address", s.ListenAddr)
	err := httpServer.ListenAndServe()
	srvCtxCancel()
	<-idleConnsClosed
	<-importerStopped

	return err
}
