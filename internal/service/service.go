// Package service composes the launcher core: one open catalog, the
// discovery providers, the clipboard ring, plugin and action
// registries, and the launch dispatcher.
package service

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/swiftfind/swiftfind/internal/actions"
	"github.com/swiftfind/swiftfind/internal/apperr"
	"github.com/swiftfind/swiftfind/internal/clipboard"
	"github.com/swiftfind/swiftfind/internal/config"
	"github.com/swiftfind/swiftfind/internal/discovery"
	"github.com/swiftfind/swiftfind/internal/index"
	"github.com/swiftfind/swiftfind/internal/logging"
	"github.com/swiftfind/swiftfind/internal/model"
	"github.com/swiftfind/swiftfind/internal/plugin"
	"github.com/swiftfind/swiftfind/internal/query"
	"github.com/swiftfind/swiftfind/internal/search"
	"github.com/swiftfind/swiftfind/internal/uninstall"
)

// Launcher is the OS capability for opening things and running
// uninstall commands.
type Launcher interface {
	OpenPath(path string) error
	Run(program string, args string) error
}

// Events receives item lifecycle notifications. The SSE broker
// implements it; a nil Events drops them.
type Events interface {
	PublishItemEvent(kind, id string)
}

// Deps bundles the collaborators a Service needs. Catalog and Launcher
// are required; the rest default to inert implementations.
type Deps struct {
	Catalog   index.Catalog
	Providers []discovery.Provider
	Clipboard *clipboard.History
	Plugins   *plugin.Registry
	Uninstall *uninstall.Cache
	Launcher  Launcher
	Logger    *slog.Logger
	Events    Events
}

// Service is the launcher core. All operations run to completion;
// rebuilds are serialized by a mutex.
type Service struct {
	cfg       *config.Config
	catalog   index.Catalog
	providers []discovery.Provider
	clip      *clipboard.History
	plugins   *plugin.Registry
	uninstall *uninstall.Cache
	launcher  Launcher
	logger    *slog.Logger
	events    Events

	rebuildMu sync.Mutex
	now       func() int64
}

// New validates the config and assembles the service.
func New(cfg *config.Config, deps Deps) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrConfig, err)
	}
	if deps.Catalog == nil {
		return nil, fmt.Errorf("%w: catalog is required", apperr.ErrConfig)
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	plugins := deps.Plugins
	if plugins == nil {
		plugins = plugin.Load(nil, false)
	}
	return &Service{
		cfg:       cfg,
		catalog:   deps.Catalog,
		providers: deps.Providers,
		clip:      deps.Clipboard,
		plugins:   plugins,
		uninstall: deps.Uninstall,
		launcher:  deps.Launcher,
		logger:    logger,
		events:    deps.Events,
		now:       search.NowEpochSecs,
	}, nil
}

func (s *Service) publishItem(kind, id string) {
	if s.events == nil {
		return
	}
	s.events.PublishItemEvent(kind, id)
}

// Config returns the validated configuration the service runs with.
func (s *Service) Config() *config.Config { return s.cfg }

// Search parses the query DSL, unions candidates from the catalog,
// clipboard ring, plugin actions and action registries, and returns the
// ranked results.
func (s *Service) Search(rawQuery string, limit int) ([]model.SearchItem, error) {
	eff := s.effectiveLimit(limit)
	parsed := query.Parse(rawQuery, s.cfg.SearchDSLEnabled)
	filter := search.FromQuery(&parsed, s.cfg.ShowFiles, s.cfg.ShowFolders)
	now := s.now()

	actionOpts := actions.Options{
		CommandMode:      parsed.CommandMode,
		WebProvider:      s.cfg.WebSearchProvider,
		WebTemplate:      s.cfg.WebSearchCustomTemplate,
		UninstallEnabled: s.cfg.UninstallActionsEnabled,
		Uninstall:        s.uninstall,
	}

	if parsed.CommandMode || parsed.ModeOverride == query.ModeActions {
		out := actions.Search(parsed.FreeText, eff, actionOpts)
		ranked := search.Rank(s.plugins.ActionItems, parsed.FreeText, eff, filter, now)
		return appendDedup(out, ranked, eff), nil
	}

	items, err := s.catalog.ListItems()
	if err != nil {
		return nil, err
	}
	candidates := items
	if s.clip != nil {
		candidates = append(candidates, s.clip.Items()...)
	}
	candidates = append(candidates, s.plugins.ActionItems...)

	out := search.Rank(candidates, parsed.FreeText, eff, filter, now)

	// Built-in actions ride along in the default mode so "rebuild"
	// finds the rebuild action without the > prefix.
	if parsed.FreeText != "" && parsed.ModeOverride == query.ModeNone {
		builtins := actions.Search(parsed.FreeText, eff, actions.Options{})
		out = appendDedup(out, builtins, eff)
	}
	return out, nil
}

func (s *Service) effectiveLimit(limit int) int {
	max := s.cfg.MaxResults
	if limit <= 0 || limit > max {
		return max
	}
	return limit
}

func appendDedup(head, tail []model.SearchItem, limit int) []model.SearchItem {
	seen := make(map[string]bool, len(head)+len(tail))
	out := make([]model.SearchItem, 0, len(head)+len(tail))
	for _, lists := range [][]model.SearchItem{head, tail} {
		for _, it := range lists {
			if seen[it.ID] {
				continue
			}
			seen[it.ID] = true
			out = append(out, it)
			if len(out) >= limit {
				return out
			}
		}
	}
	return out
}

// Launch dispatches a launch request: a non-empty id wins over a path.
func (s *Service) Launch(id, path string) error {
	if strings.TrimSpace(id) != "" {
		return s.LaunchID(id)
	}
	if strings.TrimSpace(path) != "" {
		return s.LaunchPath(path)
	}
	return fmt.Errorf("%w: launch requires non-empty id or path", apperr.ErrInvalidRequest)
}

// LaunchPath opens a filesystem path directly.
func (s *Service) LaunchPath(path string) error {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return fmt.Errorf("%w: empty path", apperr.ErrInvalidRequest)
	}
	if _, err := os.Stat(trimmed); err != nil {
		return fmt.Errorf("%w: missing path %s", apperr.ErrLaunch, trimmed)
	}
	if err := s.launcher.OpenPath(trimmed); err != nil {
		return fmt.Errorf("%w: open %s: %v", apperr.ErrLaunch, trimmed, err)
	}
	return nil
}

// LaunchID resolves an item or action id and activates it. Catalog
// items whose stored path no longer exists are pruned.
func (s *Service) LaunchID(id string) error {
	switch {
	case id == actions.OpenLogsID:
		return s.openViaLauncher(logging.Dir(s.cfg.ConfigDir()))
	case id == actions.RebuildIndexID:
		_, err := s.Rebuild()
		return err
	case id == actions.ClearClipboardID:
		if s.clip == nil {
			return nil
		}
		return s.clip.Clear()
	case id == actions.OpenConfigID:
		return s.openViaLauncher(s.cfg.ConfigPath)
	case id == actions.DiagnosticsBundleID:
		dir, err := s.DiagnosticsBundle()
		if err != nil {
			return err
		}
		return s.openViaLauncher(dir)
	case strings.HasPrefix(id, actions.WebSearchPrefix):
		q := strings.TrimPrefix(id, actions.WebSearchPrefix)
		url, ok := actions.WebSearchURL(q, s.cfg.WebSearchProvider, s.cfg.WebSearchCustomTemplate)
		if !ok {
			return fmt.Errorf("%w: web search provider misconfigured", apperr.ErrConfig)
		}
		return s.openViaLauncher(url)
	case strings.HasPrefix(id, uninstall.ActionPrefix):
		if s.uninstall == nil {
			return fmt.Errorf("%w: uninstall actions disabled", apperr.ErrInvalidRequest)
		}
		return s.uninstall.Execute(id, s.launcher)
	case strings.HasPrefix(id, clipboard.ResultPrefix):
		if s.clip == nil {
			return fmt.Errorf("%w: clipboard history disabled", apperr.ErrInvalidRequest)
		}
		return s.clip.CopyResult(id)
	}

	if action, ok := s.plugins.ActionsByID[id]; ok {
		return s.launchPluginAction(action)
	}

	item, err := s.catalog.GetItem(id)
	if err != nil {
		return err
	}
	if _, statErr := os.Stat(item.Path); statErr != nil {
		// The target vanished since indexing; drop it so it stops
		// appearing in results. This attempt reports the launch failure;
		// a retry finds nothing and gets ErrItemNotFound.
		if delErr := s.catalog.DeleteItem(item.ID); delErr != nil {
			return delErr
		}
		s.logger.Info("launch: pruned missing item",
			slog.String("id", item.ID), slog.String("path", item.Path))
		s.publishItem("removed", item.ID)
		return fmt.Errorf("%w: missing path %s", apperr.ErrLaunch, item.Path)
	}
	if err := s.launcher.OpenPath(item.Path); err != nil {
		return fmt.Errorf("%w: open %s: %v", apperr.ErrLaunch, item.Path, err)
	}
	if err := s.catalog.RecordLaunch(item.ID, s.now()); err != nil {
		s.logger.Warn("launch: record telemetry failed",
			slog.String("id", item.ID), slog.String("error", err.Error()))
	}
	s.publishItem("launched", item.ID)
	return nil
}

func (s *Service) launchPluginAction(action plugin.Action) error {
	switch action.Kind {
	case plugin.ActionCommand:
		if err := s.launcher.Run(action.Command, strings.Join(action.Args, " ")); err != nil {
			return fmt.Errorf("%w: plugin action %s: %v", apperr.ErrLaunch, action.ResultID, err)
		}
		return nil
	default:
		if err := s.launcher.OpenPath(action.Path); err != nil {
			return fmt.Errorf("%w: plugin action %s: %v", apperr.ErrLaunch, action.ResultID, err)
		}
		return nil
	}
}

func (s *Service) openViaLauncher(target string) error {
	if err := s.launcher.OpenPath(target); err != nil {
		return fmt.Errorf("%w: open %s: %v", apperr.ErrLaunch, target, err)
	}
	return nil
}

// UpsertItem writes one item straight into the catalog.
func (s *Service) UpsertItem(item model.SearchItem) error {
	return s.catalog.UpsertItem(item)
}

// ItemCount reports how many items the catalog holds.
func (s *Service) ItemCount() (int, error) {
	items, err := s.catalog.ListItems()
	if err != nil {
		return 0, err
	}
	return len(items), nil
}

// PluginWarnings lists manifest problems found at load time.
func (s *Service) PluginWarnings() []string {
	return s.plugins.LoadWarnings
}
