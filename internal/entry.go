// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/leadsync/internal/api"
	"github.com/starford/leadsync/internal/noteservice"
	"github.com/starford/leadsync/internal/sse"
	"github.com/starford/leadsync/internal/storage"
	"github.com/starford/leadsync/internal/watch"
)

// Run starts the HTTP server with the given options and blocks until a
// shutdown signal arrives or ctx is cancelled.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	logger := app.logger
	if logger == nil {
		logger = NewLogger(cfg.App.LogLevel, os.Stdout)
	}
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("store_driver", cfg.Store.Driver),
		slog.String("generator_model", cfg.Generator.Model),
		slog.Bool("auth_enabled", cfg.Auth.AuthEnabled()),
		slog.String("log_level", cfg.App.LogLevel.String()))

	var broker *sse.Broker
	var svcOpts []noteservice.Option
	if cfg.Events.Enabled {
		broker = sse.NewBroker(cfg.Events.Throttle)
		defer broker.Close()
		svcOpts = append(svcOpts, noteservice.WithEvents(broker))
	}

	comps, err := NewComponents(ctx, cfg, logger, svcOpts...)
	if err != nil {
		return err
	}
	defer func() {
		if err := comps.Close(); err != nil {
			logger.Error("store close failed", slog.String("error", err.Error()))
		}
	}()

	routerCfg := api.RouterConfig{
		AuthEnabled:    cfg.Auth.AuthEnabled(),
		Token:          cfg.Auth.Token,
		AllowedOrigins: cfg.App.CORS.AllowedOrigins,
	}
	if broker != nil {
		routerCfg.Events = broker
	}
	apiRouter := api.NewRouter(api.NewHandler(comps.Service, comps.Summarizer), routerCfg)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Mount("/", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)

	// Report edits made to the JSON file by other processes.
	if jsonStore, ok := comps.Store.(*storage.JSONFile); ok && broker != nil && cfg.Events.WatchStore {
		g.Go(func() error {
			if err := watch.Watch(gCtx, jsonStore, logger, broker.PublishStoreChange); err != nil {
				logger.Warn("store watcher failed", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Shut down on SIGINT/SIGTERM, parent cancellation or any group error.
	// gCtx is the only stop signal the watcher sees.
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("Shutting down server...")

		// SSE streams never finish on their own.
		if broker != nil {
			broker.Close()
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}
