// Package model defines the search item record shared by every result
// surface, and the single title normalization used for matching.
package model

// Item kinds produced by the built-in providers. Plugins may declare
// additional kinds; the ranker treats unknown kinds as "other".
const (
	KindApp       = "app"
	KindFile      = "file"
	KindFolder    = "folder"
	KindAction    = "action"
	KindClipboard = "clipboard"
)

// SearchItem is the unit of every result list. ID is the sole primary key
// of the catalog; upsert replaces the whole row.
type SearchItem struct {
	ID       string `json:"id"`
	Kind     string `json:"kind"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle,omitempty"`
	// Path is the activation payload: a filesystem path for openable
	// items, a URL for web actions, an opaque token for actions
	// dispatched by id.
	Path                  string `json:"path"`
	UseCount              int64  `json:"use_count"`
	LastAccessedEpochSecs int64  `json:"last_accessed_epoch_secs"`

	normalized string
}

// NormalizedTitle returns Normalize(Title), memoized on first use.
func (it *SearchItem) NormalizedTitle() string {
	if it.normalized == "" {
		it.normalized = Normalize(it.Title)
	}
	return it.normalized
}

// NormalizedSearchText returns the normalized title joined with the
// normalized subtitle. Term filters and fallback text matching use this
// wider haystack so subtitle keywords stay searchable.
func (it *SearchItem) NormalizedSearchText() string {
	if it.Subtitle == "" {
		return it.NormalizedTitle()
	}
	sub := Normalize(it.Subtitle)
	if sub == "" {
		return it.NormalizedTitle()
	}
	return it.NormalizedTitle() + " " + sub
}
