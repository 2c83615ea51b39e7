package service

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/swiftfind/swiftfind/internal/apperr"
	"github.com/swiftfind/swiftfind/internal/discovery"
	"github.com/swiftfind/swiftfind/internal/model"
)

// ProviderReport summarizes one provider's part in a rebuild.
type ProviderReport struct {
	Provider   string
	Discovered int
	ElapsedMS  int64
	Err        string
}

// RebuildReport summarizes a whole rebuild.
type RebuildReport struct {
	IndexedTotal int
	RemovedTotal int
	Providers    []ProviderReport
}

// Rebuild refreshes the catalog from every provider and returns the
// number of indexed items.
func (s *Service) Rebuild() (int, error) {
	report, err := s.RebuildWithReport()
	if err != nil {
		return 0, err
	}
	return report.IndexedTotal, nil
}

// RebuildWithReport runs every provider, unions the results into a
// desired set keyed by id, upserts all of it and prunes catalog ids the
// desired set omits. Launch telemetry survives the refresh. A failing
// provider is logged and skipped; to avoid pruning its items on a bad
// day, a rebuild with any provider failure upserts without deleting.
// A provider that reports itself required fails the whole rebuild.
func (s *Service) RebuildWithReport() (RebuildReport, error) {
	s.rebuildMu.Lock()
	defer s.rebuildMu.Unlock()

	existing, err := s.catalog.ListItems()
	if err != nil {
		return RebuildReport{}, err
	}
	previous := make(map[string]model.SearchItem, len(existing))
	for _, it := range existing {
		previous[it.ID] = it
	}

	var report RebuildReport
	desiredByID := make(map[string]int)
	var desired []model.SearchItem
	anyFailed := false

	for _, provider := range s.providers {
		started := time.Now()
		items, err := discoverSafe(provider)
		providerReport := ProviderReport{
			Provider:  provider.Name(),
			ElapsedMS: time.Since(started).Milliseconds(),
		}
		if err != nil {
			providerReport.Err = err.Error()
			report.Providers = append(report.Providers, providerReport)
			if req, ok := provider.(interface{ Required() bool }); ok && req.Required() {
				return report, fmt.Errorf("%w: required provider %s: %v",
					apperr.ErrProvider, provider.Name(), err)
			}
			anyFailed = true
			s.logger.Warn("rebuild: provider failed",
				slog.String("provider", provider.Name()),
				slog.String("error", err.Error()))
			continue
		}
		providerReport.Discovered = len(items)
		report.Providers = append(report.Providers, providerReport)

		for _, item := range items {
			// Providers do not carry usage metrics; keep the learned
			// launch signals across refreshes.
			if prev, ok := previous[item.ID]; ok {
				if item.UseCount == 0 {
					item.UseCount = prev.UseCount
				}
				if item.LastAccessedEpochSecs <= 0 {
					item.LastAccessedEpochSecs = prev.LastAccessedEpochSecs
				}
			}
			if at, ok := desiredByID[item.ID]; ok {
				desired[at] = item
				continue
			}
			desiredByID[item.ID] = len(desired)
			desired = append(desired, item)
		}
	}

	if anyFailed {
		for _, item := range desired {
			if err := s.catalog.UpsertItem(item); err != nil {
				return report, err
			}
		}
	} else {
		removed, err := s.catalog.ApplyDesired(desired)
		if err != nil {
			return report, err
		}
		report.RemovedTotal = removed
		for id := range desiredByID {
			if _, ok := previous[id]; !ok {
				s.publishItem("indexed", id)
			}
		}
		for id := range previous {
			if _, ok := desiredByID[id]; !ok {
				s.publishItem("removed", id)
			}
		}
	}

	after, err := s.catalog.ListItems()
	if err != nil {
		return report, err
	}
	report.IndexedTotal = len(after)

	s.logger.Info("rebuild: done",
		slog.Int("indexed", report.IndexedTotal),
		slog.Int("removed", report.RemovedTotal),
		slog.Int("providers", len(report.Providers)))
	return report, nil
}

// discoverSafe shields a rebuild from a panicking provider.
func discoverSafe(p discovery.Provider) (items []model.SearchItem, err error) {
	defer func() {
		if r := recover(); r != nil {
			items = nil
			err = fmt.Errorf("provider %s panicked: %v", p.Name(), r)
		}
	}()
	return p.Discover()
}
