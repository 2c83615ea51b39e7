// Package clipboard keeps a small on-disk ring of recently copied text
// and exposes it as searchable items.
package clipboard

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/swiftfind/swiftfind/internal/apperr"
	"github.com/swiftfind/swiftfind/internal/model"
	"github.com/swiftfind/swiftfind/internal/storage"
)

const (
	maxEntries    = 500
	historyFile   = "clipboard-history.json"
	titleChars    = 96
	subtitleChars = 180
)

// ResultPrefix starts every clipboard result id; the remainder is the
// entry id.
const ResultPrefix = "clipboard:"

// Entry is one captured clipboard value. Entries serialize newest
// first.
type Entry struct {
	ID                string `json:"id"`
	Text              string `json:"text"`
	CapturedEpochSecs int64  `json:"captured_epoch_secs"`
}

// System reads and writes the OS clipboard.
type System interface {
	ReadText() (string, error)
	WriteText(text string) error
}

// History is the persisted clipboard ring. Entries older than the
// retention window, or beyond the entry cap, are pruned on access.
type History struct {
	Enabled           bool
	RetentionMinutes  int
	SensitivePatterns []string

	store  storage.Provider
	system System
	now    func() time.Time
}

func NewHistory(configDir string, system System) *History {
	return &History{
		Enabled:          true,
		RetentionMinutes: 60 * 24,
		store:            storage.NewFS(configDir),
		system:           system,
		now:              time.Now,
	}
}

// CaptureLatest reads the system clipboard and records the value as
// the newest entry. It reports whether a new entry was stored; empty,
// sensitive and duplicate-of-head values are skipped.
func (h *History) CaptureLatest() (bool, error) {
	if !h.Enabled {
		return false, nil
	}
	raw, err := h.system.ReadText()
	if err != nil {
		// An unreadable clipboard (locked, non-text) is not an error.
		return false, nil
	}
	text := normalizeText(raw)
	if text == "" {
		return false, nil
	}
	if isSensitive(text, h.SensitivePatterns) {
		return false, nil
	}

	entries := h.loadEntries()
	if len(entries) > 0 && entries[0].Text == text {
		return false, nil
	}

	nowTime := h.now()
	now := nowTime.Unix()
	entry := Entry{
		ID:                fmt.Sprintf("clip-%d-%d", now, nowTime.UnixNano()%1_000_000),
		Text:              text,
		CapturedEpochSecs: now,
	}
	entries = append([]Entry{entry}, entries...)
	entries = h.prune(entries, now)
	if err := h.saveEntries(entries); err != nil {
		return false, err
	}
	return true, nil
}

// Clear deletes the history file. A missing file is fine.
func (h *History) Clear() error {
	if err := h.store.Delete(historyFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: clear clipboard history: %v", apperr.ErrStore, err)
	}
	return nil
}

// Items returns the surviving entries as searchable items, newest
// first. Pruning happens here too so stale entries vanish without a
// capture tick.
func (h *History) Items() []model.SearchItem {
	if !h.Enabled {
		return nil
	}
	entries := h.loadEntries()
	if len(entries) == 0 {
		return nil
	}
	now := h.now().Unix()
	pruned := h.prune(entries, now)
	if len(pruned) != len(entries) {
		_ = h.saveEntries(pruned)
	}

	out := make([]model.SearchItem, 0, len(pruned))
	for _, e := range pruned {
		preview := previewText(e.Text, titleChars)
		out = append(out, model.SearchItem{
			ID:                    ResultPrefix + e.ID,
			Kind:                  model.KindClipboard,
			Title:                 preview,
			Subtitle:              fmt.Sprintf("Copied %s · %s", relativeAge(e.CapturedEpochSecs, now), previewText(e.Text, subtitleChars)),
			Path:                  ResultPrefix + e.ID,
			LastAccessedEpochSecs: e.CapturedEpochSecs,
		})
	}
	return out
}

// CopyResult writes the entry behind a clipboard result id back to the
// system clipboard.
func (h *History) CopyResult(resultID string) error {
	entryID, ok := strings.CutPrefix(resultID, ResultPrefix)
	if !ok {
		return fmt.Errorf("%w: not a clipboard result: %s", apperr.ErrInvalidRequest, resultID)
	}
	for _, e := range h.loadEntries() {
		if e.ID == entryID {
			if err := h.system.WriteText(e.Text); err != nil {
				return fmt.Errorf("%w: clipboard write: %v", apperr.ErrLaunch, err)
			}
			return nil
		}
	}
	return fmt.Errorf("%w: clipboard entry %s", apperr.ErrItemNotFound, entryID)
}

func (h *History) loadEntries() []Entry {
	raw, err := h.store.Read(historyFile)
	if err != nil {
		return nil
	}
	var entries []Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		// A corrupt history file starts the ring over.
		return nil
	}
	return entries
}

func (h *History) saveEntries(entries []Entry) error {
	encoded, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("%w: encode clipboard history: %v", apperr.ErrStore, err)
	}
	if err := h.store.Write(historyFile, encoded); err != nil {
		return fmt.Errorf("%w: write clipboard history: %v", apperr.ErrStore, err)
	}
	return nil
}

func (h *History) prune(entries []Entry, now int64) []Entry {
	retentionSecs := int64(h.RetentionMinutes) * 60
	out := entries[:0]
	for _, e := range entries {
		if e.CapturedEpochSecs <= 0 || e.CapturedEpochSecs > now {
			continue
		}
		if now-e.CapturedEpochSecs > retentionSecs {
			continue
		}
		out = append(out, e)
	}
	if len(out) > maxEntries {
		out = out[:maxEntries]
	}
	return out
}

func normalizeText(input string) string {
	cleaned := strings.ReplaceAll(input, "\x00", "")
	cleaned = strings.ReplaceAll(cleaned, "\r", "")
	return strings.TrimSpace(cleaned)
}

func previewText(value string, maxChars int) string {
	singleLine := strings.TrimSpace(strings.ReplaceAll(value, "\n", " "))
	runes := []rune(singleLine)
	if len(runes) > maxChars {
		runes = runes[:maxChars]
	}
	return string(runes)
}

func isSensitive(value string, patterns []string) bool {
	lowered := strings.ToLower(value)
	for _, pattern := range patterns {
		p := strings.ToLower(strings.TrimSpace(pattern))
		if p != "" && strings.Contains(lowered, p) {
			return true
		}
	}
	return false
}

func relativeAge(capturedEpochSecs, now int64) string {
	age := now - capturedEpochSecs
	if age < 0 {
		age = 0
	}
	switch {
	case age < 60:
		return "just now"
	case age < 3600:
		return fmt.Sprintf("%dm ago", age/60)
	case age < 86_400:
		return fmt.Sprintf("%dh ago", age/3600)
	default:
		return fmt.Sprintf("%dd ago", age/86_400)
	}
}
