package internal

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/swiftfind/swiftfind/internal/index"
	"github.com/swiftfind/swiftfind/internal/model"
	"github.com/swiftfind/swiftfind/internal/service"
)

// oneShotService wires a service for a single CLI operation. Logs go to
// stderr and stay quiet unless something degrades.
func oneShotService(opts []Option) (*service.Service, *index.DB, error) {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, nil, fmt.Errorf("config is required")
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	svc, db, _, err := buildService(app, logger, nil)
	return svc, db, err
}

// RebuildOnce runs one full catalog rebuild and returns its report.
func RebuildOnce(opts ...Option) (service.RebuildReport, error) {
	svc, db, err := oneShotService(opts)
	if err != nil {
		return service.RebuildReport{}, err
	}
	defer db.Close()
	return svc.RebuildWithReport()
}

// SearchOnce fills the catalog and runs a single query against it.
func SearchOnce(query string, limit int, opts ...Option) ([]model.SearchItem, error) {
	svc, db, err := oneShotService(opts)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	if _, err := svc.Rebuild(); err != nil {
		return nil, err
	}
	return svc.Search(query, limit)
}
