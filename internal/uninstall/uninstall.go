// Package uninstall surfaces installed-program removal as launcher
// actions. Entries come from a platform source and are cached behind a
// mutex with a TTL so repeated keystrokes do not rescan the system.
package uninstall

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/swiftfind/swiftfind/internal/apperr"
	"github.com/swiftfind/swiftfind/internal/model"
)

// ActionPrefix starts every uninstall action id; the remainder is the
// entry token.
const ActionPrefix = "__swiftfind_action_uninstall__:"

const cacheTTL = 5 * time.Minute

// Entry is one removable program as the install registry reports it.
// ReleaseType, ParentKey and SystemComponent drive the update filter.
type Entry struct {
	Token           string
	DisplayName     string
	Publisher       string
	Command         string
	ReleaseType     string
	ParentKey       string
	SystemComponent bool
}

// Source lists installed programs. Platform adapters implement this;
// on systems without an install registry it returns an empty slice.
type Source interface {
	Entries() ([]Entry, error)
}

// Runner executes a prepared uninstall command.
type Runner interface {
	Run(program string, args string) error
}

// Cache is the TTL-guarded snapshot of uninstall entries.
type Cache struct {
	mu       sync.Mutex
	source   Source
	loadedAt time.Time
	entries  []Entry
	now      func() time.Time
}

func NewCache(source Source) *Cache {
	return &Cache{source: source, now: time.Now}
}

// HasIntent reports whether the query's first whitespace token is an
// uninstall verb.
func HasIntent(query string) bool {
	_, ok := extractSearchTerm(query)
	return ok
}

// Search returns ranked uninstall actions for an uninstall-intent
// query. Queries without intent, and source failures, yield nothing.
func (c *Cache) Search(query string, limit int) []model.SearchItem {
	if limit <= 0 {
		return nil
	}
	term, ok := extractSearchTerm(query)
	if !ok {
		return nil
	}
	entries, err := c.cachedEntries(false)
	if err != nil {
		return nil
	}
	return searchEntries(term, limit, entries)
}

// Execute resolves an uninstall action id back to its entry and runs
// the prepared command. A stale token triggers one forced refresh
// before giving up.
func (c *Cache) Execute(actionID string, runner Runner) error {
	token, ok := strings.CutPrefix(actionID, ActionPrefix)
	if !ok {
		return fmt.Errorf("%w: invalid uninstall action id", apperr.ErrInvalidRequest)
	}

	entry, found, err := c.findByToken(token, false)
	if err != nil {
		return err
	}
	if !found {
		entry, found, err = c.findByToken(token, true)
		if err != nil {
			return err
		}
	}
	if !found {
		return fmt.Errorf("%w: uninstall target is no longer available", apperr.ErrItemNotFound)
	}

	program, args, err := PrepareCommand(entry.Command)
	if err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrLaunch, err)
	}
	if err := runner.Run(program, args); err != nil {
		return fmt.Errorf("%w: uninstall %q: %v", apperr.ErrLaunch, entry.DisplayName, err)
	}
	return nil
}

func (c *Cache) findByToken(token string, forceRefresh bool) (Entry, bool, error) {
	entries, err := c.cachedEntries(forceRefresh)
	if err != nil {
		return Entry{}, false, err
	}
	for _, e := range entries {
		if e.Token == token {
			return e, true, nil
		}
	}
	return Entry{}, false, nil
}

func (c *Cache) cachedEntries(forceRefresh bool) ([]Entry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stale := c.loadedAt.IsZero() || c.now().Sub(c.loadedAt) >= cacheTTL
	if forceRefresh || stale {
		entries, err := c.source.Entries()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperr.ErrProvider, err)
		}
		c.entries = dedupeAndSort(filterEntries(entries))
		c.loadedAt = c.now()
	}
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out, nil
}

// filterEntries drops rows that are not user-facing programs: blank
// names or commands, system components, parented child entries, and
// anything that looks like an OS update.
func filterEntries(entries []Entry) []Entry {
	out := entries[:0]
	for _, e := range entries {
		if strings.TrimSpace(e.DisplayName) == "" || strings.TrimSpace(e.Command) == "" {
			continue
		}
		if e.SystemComponent {
			continue
		}
		if strings.TrimSpace(e.ParentKey) != "" {
			continue
		}
		if looksLikeUpdateEntry(e.DisplayName, e.ReleaseType) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func looksLikeUpdateEntry(displayName, releaseType string) bool {
	display := strings.ToLower(displayName)
	release := strings.ToLower(releaseType)
	return strings.Contains(release, "update") ||
		strings.Contains(release, "hotfix") ||
		strings.Contains(release, "security") ||
		strings.HasPrefix(display, "update for ") ||
		strings.HasPrefix(display, "security update for ") ||
		strings.Contains(display, "hotfix")
}

func dedupeAndSort(entries []Entry) []Entry {
	seen := make(map[string]bool, len(entries))
	out := entries[:0]
	for _, e := range entries {
		key := model.Normalize(e.DisplayName) + "|" + model.Normalize(e.Publisher) + "|" + model.Normalize(e.Command)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].DisplayName) < strings.ToLower(out[j].DisplayName)
	})
	return out
}

func searchEntries(term string, limit int, entries []Entry) []model.SearchItem {
	if limit <= 0 || len(entries) == 0 {
		return nil
	}
	normalized := model.Normalize(term)

	type ranked struct {
		score int64
		entry Entry
	}
	var matches []ranked
	for _, e := range entries {
		score, ok := entryScore(e, normalized)
		if !ok {
			continue
		}
		matches = append(matches, ranked{score: score, entry: e})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].score != matches[j].score {
			return matches[i].score > matches[j].score
		}
		li, lj := strings.ToLower(matches[i].entry.DisplayName), strings.ToLower(matches[j].entry.DisplayName)
		if li != lj {
			return li < lj
		}
		return matches[i].entry.Token < matches[j].entry.Token
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	out := make([]model.SearchItem, 0, len(matches))
	for _, m := range matches {
		out = append(out, entryToAction(m.entry))
	}
	return out
}

func entryToAction(e Entry) model.SearchItem {
	id := ActionPrefix + e.Token
	subtitle := "Installed application"
	if p := strings.TrimSpace(e.Publisher); p != "" {
		subtitle = p + " application"
	}
	return model.SearchItem{
		ID:       id,
		Kind:     model.KindAction,
		Title:    "Uninstall " + strings.TrimSpace(e.DisplayName),
		Subtitle: subtitle,
		Path:     id,
	}
}

func entryScore(e Entry, normalizedQuery string) (int64, bool) {
	if normalizedQuery == "" {
		return 100, true
	}
	name := model.Normalize(e.DisplayName)
	publisher := model.Normalize(e.Publisher)
	lenGap := func(s string) int64 {
		d := int64(len(s)) - int64(len(normalizedQuery))
		if d < 0 {
			d = -d
		}
		return d
	}
	switch {
	case name == normalizedQuery:
		return 20_000, true
	case strings.HasPrefix(name, normalizedQuery):
		return 16_000 - lenGap(name), true
	case strings.Contains(name, normalizedQuery):
		return 12_000 - lenGap(name), true
	case strings.Contains(publisher, normalizedQuery):
		return 8_000 - lenGap(publisher), true
	}
	return 0, false
}

// extractSearchTerm strips the leading uninstall verb. The remaining
// term may be empty, which matches every entry.
func extractSearchTerm(query string) (string, bool) {
	fields := strings.Fields(strings.TrimSpace(query))
	if len(fields) == 0 {
		return "", false
	}
	switch strings.ToLower(fields[0]) {
	case "uninstall", "remove", "delete", "del", "rm":
		return strings.Join(fields[1:], " "), true
	}
	return "", false
}
