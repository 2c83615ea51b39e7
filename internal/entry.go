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

	"github.com/swiftfind/swiftfind/internal/api"
	"github.com/swiftfind/swiftfind/internal/clipboard"
	"github.com/swiftfind/swiftfind/internal/discovery"
	"github.com/swiftfind/swiftfind/internal/index"
	"github.com/swiftfind/swiftfind/internal/logging"
	"github.com/swiftfind/swiftfind/internal/platform"
	"github.com/swiftfind/swiftfind/internal/plugin"
	"github.com/swiftfind/swiftfind/internal/service"
	"github.com/swiftfind/swiftfind/internal/sse"
	"github.com/swiftfind/swiftfind/internal/uninstall"
)

const clipboardPollInterval = 2 * time.Second

// buildService wires the catalog, providers, clipboard and plugins into
// a service. The caller owns the returned DB handle. events may be nil
// for one-shot runs without subscribers.
func buildService(app *application, logger *slog.Logger, events service.Events) (*service.Service, *index.DB, *clipboard.History, error) {
	cfg := app.config

	db, err := index.Open(cfg.IndexDBPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init index: %w", err)
	}

	plugins := plugin.Load(cfg.PluginPaths, cfg.PluginsEnabled)
	for _, warning := range plugins.LoadWarnings {
		logger.Warn("plugin load", slog.String("warning", warning))
	}

	clip := clipboard.NewHistory(cfg.ConfigDir(), platform.SystemClipboard{})
	clip.Enabled = cfg.ClipboardEnabled
	clip.RetentionMinutes = cfg.ClipboardRetentionMinutes
	clip.SensitivePatterns = cfg.ClipboardExcludeSensitivePatterns

	var uninstallCache *uninstall.Cache
	if cfg.UninstallActionsEnabled {
		uninstallCache = uninstall.NewCache(app.programsSource())
	}

	svc, err := service.New(cfg, service.Deps{
		Catalog: db,
		Providers: []discovery.Provider{
			&discovery.StartMenu{Roots: discovery.DefaultStartMenuRoots()},
			discovery.NewFileSystem(cfg.DiscoveryRoots, cfg.MaxScanDepth, cfg.DiscoveryExcludeRoots),
			plugins.Provider(),
		},
		Clipboard: clip,
		Plugins:   plugins,
		Uninstall: uninstallCache,
		Launcher:  platform.Launcher{},
		Logger:    logger,
		Events:    events,
	})
	if err != nil {
		db.Close()
		return nil, nil, nil, fmt.Errorf("init service: %w", err)
	}
	return svc, db, clip, nil
}

// reconcileStartup aligns the host's login-item registration with the
// configured launch_at_startup flag. Failures only warn.
func reconcileStartup(mgr platform.StartupManager, want bool, logger *slog.Logger) {
	enabled, err := mgr.IsEnabled()
	if err != nil {
		logger.Warn("startup: query failed", slog.String("error", err.Error()))
		return
	}
	if enabled == want {
		return
	}
	exe, err := os.Executable()
	if err != nil {
		logger.Warn("startup: resolve executable failed", slog.String("error", err.Error()))
		return
	}
	if err := mgr.SetEnabled(want, exe); err != nil {
		logger.Warn("startup: update failed",
			slog.Bool("enabled", want), slog.String("error", err.Error()))
	}
}

// Run starts the launcher service with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Rotating JSON log file under the config directory.
	logger, logCloser, err := logging.NewLogger(cfg.ConfigDir(), cfg.App.LogLevel)
	if err != nil {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.App.LogLevel}))
		logger.Warn("file logging unavailable, using stdout", slog.String("error", err.Error()))
	} else {
		defer logCloser.Close()
	}
	slog.SetDefault(logger)

	logger.Info("configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("config_path", cfg.ConfigPath),
		slog.String("index_db_path", cfg.IndexDBPath),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// SSE broker; the service publishes item events through it.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	svc, db, clip, err := buildService(app, logger, broker)
	if err != nil {
		return err
	}
	defer db.Close()

	reconcileStartup(app.startupManager(), cfg.LaunchAtStartup, logger)

	// Initial catalog fill; a failed provider only warns.
	if indexed, err := svc.Rebuild(); err != nil {
		logger.Warn("initial rebuild failed", slog.String("error", err.Error()))
	} else {
		logger.Info("initial rebuild done", slog.Int("indexed", indexed))
	}

	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker, cfg.ConfigDir())

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

	g, gCtx := errgroup.WithContext(ctx)

	// Filesystem watcher triggers incremental rebuilds.
	g.Go(func() error {
		return discovery.Watch(gCtx, cfg.DiscoveryRoots, 0, logger, func() {
			report, err := svc.RebuildWithReport()
			if err != nil {
				logger.Warn("watch rebuild failed", slog.String("error", err.Error()))
				return
			}
			broker.Publish(sse.Event{Type: "rebuild.done", Data: map[string]int{
				"indexed": report.IndexedTotal,
				"removed": report.RemovedTotal,
			}})
		})
	})

	// Clipboard capture loop.
	if clip.Enabled {
		g.Go(func() error {
			ticker := time.NewTicker(clipboardPollInterval)
			defer ticker.Stop()
			for {
				select {
				case <-gCtx.Done():
					return nil
				case <-ticker.C:
					captured, err := clip.CaptureLatest()
					if err != nil {
						logger.Warn("clipboard capture failed", slog.String("error", err.Error()))
						continue
					}
					if captured {
						broker.Publish(sse.Event{Type: "clipboard.captured", Data: map[string]string{}})
					}
				}
			}
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("context cancelled, initiating shutdown")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("server stopped")
	return nil
}
