package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/najubudeen/vanturalog/internal/auth"
	"github.com/najubudeen/vanturalog/internal/config"
	"github.com/najubudeen/vanturalog/internal/contentapi"
	"github.com/najubudeen/vanturalog/internal/migrate"
	contentsvc "github.com/najubudeen/vanturalog/internal/service/content"
	sessionsvc "github.com/najubudeen/vanturalog/internal/service/session"
	"github.com/najubudeen/vanturalog/internal/session"
	"github.com/najubudeen/vanturalog/internal/transport/middleware"
	"github.com/najubudeen/vanturalog/internal/transport/rest"
)

// Run is the application entry point. It loads configuration, initializes
// the logger, builds the session backend and the content API client, wires
// the HTTP handlers, and serves until the context is cancelled.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("session_backend", cfg.Session.Backend),
		slog.Bool("content_api_configured", cfg.ContentAPI.Endpoint != ""),
	)
	if cfg.ContentAPI.Endpoint == "" {
		logger.Warn("content api endpoint is not set; upstream calls will fail until it is configured")
	}

	api := contentapi.New(cfg.ContentAPI.Endpoint, cfg.ContentAPI.Timeout, logger)
	classifier := auth.NewClassifier()

	var (
		factory session.Factory
		deps    = map[string]rest.Pinger{}
	)
	switch cfg.Session.Backend {
	case "postgres":
		if err := migrate.Up(ctx, cfg.Database.DSN); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		pool, err := newPool(ctx, cfg.Database)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer pool.Close()
		factory = session.PostgresFactory{DB: pool, TTL: cfg.Session.TTL, Secure: cfg.Session.Secure}
		deps["postgres"] = pool
	default:
		codec, err := session.NewCodec(cfg.Session.CookieSecret)
		if err != nil {
			return fmt.Errorf("create session codec: %w", err)
		}
		factory = session.CookieFactory{Codec: codec, TTL: cfg.Session.TTL, Secure: cfg.Session.Secure}
	}

	buildManager := func(store session.Store) *sessionsvc.Manager {
		return sessionsvc.NewManager(logger, api, classifier, store,
			sessionsvc.WithVerifyTimeout(cfg.ContentAPI.VerifyTimeout))
	}
	buildSync := func(tokens interface{ Token() string }) *contentsvc.SyncClient {
		return contentsvc.NewSyncClient(logger, api, classifier, tokens,
			contentsvc.WithOptimisticTTL(cfg.Sync.OptimisticTTL))
	}

	limiter := middleware.NewRateLimiter(time.Minute)
	defer limiter.Stop()

	router := rest.NewRouter(
		logger,
		factory,
		buildManager,
		rest.NewAuthHandler(logger),
		rest.NewGraphQLHandler(api, logger),
		rest.NewContentHandler(buildSync, logger),
		rest.NewHealthHandler(BuildVersion(), deps),
		cfg.CORS.Origins(),
		limiter,
		cfg.Server.LoginPerMinute,
	)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}

	logger.Info("shutdown complete")
	return nil
}
