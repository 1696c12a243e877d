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

	"github.com/starford/rixa/internal/api"
	"github.com/starford/rixa/internal/catalog"
	"github.com/starford/rixa/internal/content"
	"github.com/starford/rixa/internal/highlight"
	"github.com/starford/rixa/internal/library"
	"github.com/starford/rixa/internal/sse"
)

func newApplication(opts []Option) (*application, error) {
	app := &application{out: os.Stdout, version: "dev"}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if app.logger == nil {
		app.logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: app.config.App.LogLevel,
		}))
	}
	slog.SetDefault(app.logger)
	return app, nil
}

// openLibrary wires the content store, catalog and highlighter into a
// loaded library service. The returned close func releases the catalog.
func (a *application) openLibrary(ctx context.Context) (*library.Service, func(), error) {
	cfg, logger := a.config, a.logger

	store, err := content.NewFS(cfg.Content.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("init content: %w", err)
	}

	db, err := catalog.Open(cfg.Catalog.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("init catalog: %w", err)
	}

	engine := highlight.NewEngine(highlight.ChromaLoader, logger)
	hl := highlight.New(engine, highlight.NewCache(), logger)

	svc := library.NewService(store, db, hl, logger, cfg.Search.Options())
	if _, err := svc.Reload(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("initial sync: %w", err)
	}
	logger.Info("Library loaded",
		slog.String("content_path", store.Root()),
		slog.Int("articles", len(svc.All())))

	return svc, func() { db.Close() }, nil
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg, logger := app.config, app.logger

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("content_path", cfg.Content.Path),
		slog.String("catalog_dsn", cfg.Catalog.DSN),
		slog.String("default_theme", cfg.Highlight.DefaultTheme),
		slog.String("log_level", cfg.App.LogLevel.String()))

	svc, closeLib, err := app.openLibrary(ctx)
	if err != nil {
		return err
	}
	defer closeLib()

	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	apiRouter := api.NewRouter(svc, broker, cfg.Content.Path, cfg.App.HTTP.CORSOrigin)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintf(w, `{"status":"ok","articles":%d}`, len(svc.All()))
	})

	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)
	gCtx, cancel := context.WithCancel(gCtx)
	defer cancel()

	g.Go(func() error {
		err := svc.Watch(gCtx, cfg.Content.Path, func(kind, path string) {
			broker.PublishArticleChange(kind, path)
		})
		if err != nil {
			logger.Warn("watcher stopped", slog.String("error", err.Error()))
		}
		return nil
	})

	if cfg.Highlight.Prewarm {
		g.Go(func() error {
			themes := []highlight.ThemeID{cfg.Highlight.Theme()}
			plain, err := highlight.Prewarm(gCtx, svc.Highlighter(), svc.CodeJobs(), themes, cfg.Highlight.PrewarmConcurrency)
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("prewarm failed", slog.String("error", err.Error()))
				return nil
			}
			logger.Info("Highlight cache warmed", slog.Int("cached", svc.Highlighter().Cache().Len()), slog.Int("plain", plain))
			return nil
		})
	}

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// SIGHUP resyncs the whole content directory; SIGINT and SIGTERM stop.
	g.Go(func() error {
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
		defer signal.Stop(sigs)

	loop:
		for {
			select {
			case sig := <-sigs:
				if sig == syscall.SIGHUP {
					reload(gCtx, svc, broker, logger)
					continue
				}
				logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
				break loop
			case <-gCtx.Done():
				logger.Info("Context cancelled, initiating shutdown")
				break loop
			}
		}

		logger.Info("Shutting down server...")
		cancel()

		shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
		defer stop()
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

func reload(ctx context.Context, svc *library.Service, broker *sse.Broker, logger *slog.Logger) {
	changed, err := svc.Reload(ctx)
	if err != nil {
		logger.Error("reload failed", slog.String("error", err.Error()))
		return
	}
	n := len(svc.All())
	logger.Info("Articles reloaded", slog.Bool("changed", changed), slog.Int("articles", n))
	broker.Publish(sse.Event{
		Type: sse.TypeArticlesReloaded,
		Data: map[string]any{"changed": changed, "articles": n},
	})
}
