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

	"github.com/starford/imgbackup/internal/api"
	"github.com/starford/imgbackup/internal/catalog"
	"github.com/starford/imgbackup/internal/imgsync"
	"github.com/starford/imgbackup/internal/mcpserver"
	"github.com/starford/imgbackup/internal/models"
	"github.com/starford/imgbackup/internal/sse"
	"github.com/starford/imgbackup/internal/storage"
)

// components are the pieces shared by every entry point.
type components struct {
	logger *slog.Logger
	db     *catalog.DB
	store  storage.Transport
	files  *storage.FS
}

func newApplication(opts []Option) (*application, error) {
	app := &application{logOut: os.Stdout}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

// setup initializes logging, the catalog (with an initial sync) and the
// image store.
func (a *application) setup() (*components, error) {
	cfg := a.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(a.logOut, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("cards_dir", cfg.Catalog.CardsDir),
		slog.String("sqlite_path", cfg.Catalog.SQLitePath),
		slog.String("storage_driver", cfg.Storage.Driver),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Ensure cards directory exists.
	if err := os.MkdirAll(cfg.Catalog.CardsDir, 0o755); err != nil {
		return nil, fmt.Errorf("create cards dir: %w", err)
	}

	store, files, err := newTransport(cfg.Storage)
	if err != nil {
		return nil, err
	}

	db, err := catalog.Open(cfg.Catalog.SQLitePath)
	if err != nil {
		return nil, fmt.Errorf("init catalog: %w", err)
	}

	// Run initial sync.
	if err := catalog.Sync(db, cfg.Catalog.CardsDir, logger); err != nil {
		logger.Warn("initial catalog sync failed", slog.String("error", err.Error()))
	}

	return &components{logger: logger, db: db, store: store, files: files}, nil
}

func (a *application) newSyncer(c *components, opts ...imgsync.Option) *imgsync.Syncer {
	f := a.config.Fetch
	opts = append([]imgsync.Option{
		imgsync.WithFetcher(imgsync.NewHTTPFetcher(f.Timeout, f.MaxBytes, f.UserAgent)),
		imgsync.WithLogger(c.logger),
	}, opts...)
	return imgsync.New(c.db, c.store, opts...)
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	c, err := app.setup()
	if err != nil {
		return err
	}
	defer c.db.Close()

	cfg := app.config
	logger := c.logger

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	syncer := app.newSyncer(c, imgsync.WithObserver(broker))
	apiRouter := api.NewRouter(syncer, c.db, c.files, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)

	// Start card watcher with SSE callback.
	if cfg.Catalog.Watch {
		g.Go(func() error {
			if err := catalog.Watch(gCtx, c.db, cfg.Catalog.CardsDir, logger, broker.PublishCatalogEvent); err != nil {
				logger.Error("catalog watcher stopped", slog.String("error", err.Error()))
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

	// Shut down on signal or when any goroutine fails.
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("Shutting down server...")

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

// RunSync performs a single sync pass over sel and returns its report.
func RunSync(ctx context.Context, sel models.Selection, opts ...Option) (*models.Report, error) {
	app, err := newApplication(opts)
	if err != nil {
		return nil, err
	}
	c, err := app.setup()
	if err != nil {
		return nil, err
	}
	defer c.db.Close()

	return app.newSyncer(c).Run(ctx, sel)
}

// RunMCP serves the MCP tools on stdin/stdout until the client disconnects.
func RunMCP(_ context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	c, err := app.setup()
	if err != nil {
		return err
	}
	defer c.db.Close()

	srv := mcpserver.New(c.db, c.store, app.newSyncer(c))
	c.logger.Info("MCP server starting on stdio")
	return srv.ServeStdio()
}
