package internal

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/swiftfind/swiftfind/internal/logging"
	"github.com/swiftfind/swiftfind/internal/mcpserver"
)

// RunMCP serves the launcher tools over stdio for MCP clients. Stdout
// carries the protocol, so logs go to the log file or stderr.
func RunMCP(opts ...Option) error {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	cfg := app.config

	logger, logCloser, err := logging.NewLogger(cfg.ConfigDir(), cfg.App.LogLevel)
	if err != nil {
		logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.App.LogLevel}))
		logger.Warn("file logging unavailable, using stderr", slog.String("error", err.Error()))
	} else {
		defer logCloser.Close()
	}
	slog.SetDefault(logger)

	svc, db, _, err := buildService(app, logger, nil)
	if err != nil {
		return err
	}
	defer db.Close()

	if indexed, err := svc.Rebuild(); err != nil {
		logger.Warn("initial rebuild failed", slog.String("error", err.Error()))
	} else {
		logger.Info("initial rebuild done", slog.Int("indexed", indexed))
	}

	logger.Info("serving MCP over stdio")
	return mcpserver.New(svc).ServeStdio()
}
