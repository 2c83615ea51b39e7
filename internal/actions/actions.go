// Package actions provides the built-in launcher actions and the
// dynamic web-search action.
package actions

import (
	"strings"

	"github.com/swiftfind/swiftfind/internal/model"
	"github.com/swiftfind/swiftfind/internal/uninstall"
)

// Reserved action ids. The web-search id carries the raw query after
// the prefix.
const (
	OpenLogsID          = "__swiftfind_action_open_logs__"
	RebuildIndexID      = "__swiftfind_action_rebuild_index__"
	ClearClipboardID    = "__swiftfind_action_clear_clipboard__"
	OpenConfigID        = "__swiftfind_action_open_config__"
	DiagnosticsBundleID = "__swiftfind_action_diagnostics_bundle__"
	WebSearchPrefix     = "__swiftfind_action_web_search__:"
)

// BuiltIn describes one always-available action. Keywords widen the
// query match beyond the title.
type BuiltIn struct {
	ID       string
	Title    string
	Subtitle string
	Keywords []string
}

var builtIns = []BuiltIn{
	{
		ID:       OpenLogsID,
		Title:    "Open SwiftFind Logs Folder",
		Subtitle: "Open logs directory in the file manager",
		Keywords: []string{"logs", "log", "debug"},
	},
	{
		ID:       RebuildIndexID,
		Title:    "Rebuild Search Index",
		Subtitle: "Force a full refresh of indexed items",
		Keywords: []string{"rebuild", "index", "refresh"},
	},
	{
		ID:       ClearClipboardID,
		Title:    "Clear Clipboard History",
		Subtitle: "Delete local clipboard history entries",
		Keywords: []string{"clipboard", "clear", "history"},
	},
	{
		ID:       OpenConfigID,
		Title:    "Open SwiftFind Config",
		Subtitle: "Open config.json",
		Keywords: []string{"config", "settings", "preferences"},
	},
	{
		ID:       DiagnosticsBundleID,
		Title:    "Create Diagnostics Bundle",
		Subtitle: "Export logs and sanitized config for support",
		Keywords: []string{"diagnostics", "support", "bundle", "debug"},
	},
}

// BuiltIns returns the registry in declaration order.
func BuiltIns() []BuiltIn {
	out := make([]BuiltIn, len(builtIns))
	copy(out, builtIns)
	return out
}

// Options configures action search for one query.
type Options struct {
	CommandMode      bool
	WebProvider      string
	WebTemplate      string
	UninstallEnabled bool
	Uninstall        *uninstall.Cache
}

// Search returns the actions matching the query, up to limit. Command
// mode adds the dynamic web-search action first, unless the query is an
// uninstall intent, in which case uninstall actions take its place.
func Search(query string, limit int, opts Options) []model.SearchItem {
	if limit <= 0 {
		return nil
	}
	trimmed := strings.TrimSpace(query)
	normalized := model.Normalize(trimmed)
	var out []model.SearchItem

	uninstallIntent := opts.UninstallEnabled && opts.Uninstall != nil && uninstall.HasIntent(trimmed)

	if opts.CommandMode {
		if !uninstallIntent {
			if web, ok := WebSearchAction(trimmed, opts.WebProvider, opts.WebTemplate); ok {
				out = append(out, web)
				if len(out) >= limit {
					return out
				}
			}
		}
		if uninstallIntent {
			out = append(out, opts.Uninstall.Search(trimmed, limit-len(out))...)
			if len(out) >= limit {
				return out
			}
		}
	}

	for _, a := range builtIns {
		if normalized != "" && !matchesBuiltIn(a, normalized) {
			continue
		}
		out = append(out, model.SearchItem{
			ID:       a.ID,
			Kind:     model.KindAction,
			Title:    a.Title,
			Subtitle: a.Subtitle,
			Path:     a.ID,
		})
		if len(out) >= limit {
			break
		}
	}
	return out
}

func matchesBuiltIn(a BuiltIn, normalizedQuery string) bool {
	if strings.Contains(model.Normalize(a.Title), normalizedQuery) {
		return true
	}
	for _, kw := range a.Keywords {
		if strings.Contains(model.Normalize(kw), normalizedQuery) {
			return true
		}
	}
	return false
}

// WebSearchAction builds the dynamic action for a non-empty query.
func WebSearchAction(query, provider, template string) (model.SearchItem, bool) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return model.SearchItem{}, false
	}
	url, ok := WebSearchURL(trimmed, provider, template)
	if !ok {
		return model.SearchItem{}, false
	}
	return model.SearchItem{
		ID:    WebSearchPrefix + trimmed,
		Kind:  model.KindAction,
		Title: `Search Web for "` + trimmed + `"`,
		Path:  url,
	}, true
}

// WebSearchURL renders the provider's URL for a query. A custom
// provider needs a template containing the {query} placeholder.
func WebSearchURL(query, provider, template string) (string, bool) {
	encoded := EncodeQuery(strings.TrimSpace(query))
	switch provider {
	case "google":
		return "https://www.google.com/search?q=" + encoded, true
	case "bing":
		return "https://www.bing.com/search?q=" + encoded, true
	case "custom":
		tpl := strings.TrimSpace(template)
		if tpl == "" || !strings.Contains(tpl, "{query}") {
			return "", false
		}
		return strings.ReplaceAll(tpl, "{query}", encoded), true
	default: // duckduckgo
		return "https://duckduckgo.com/?q=" + encoded, true
	}
}

const upperhex = "0123456789ABCDEF"

// EncodeQuery percent-encodes everything outside the unreserved set,
// with spaces as '+'.
func EncodeQuery(input string) string {
	var out strings.Builder
	out.Grow(len(input))
	for i := 0; i < len(input); i++ {
		b := input[i]
		switch {
		case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b >= '0' && b <= '9',
			b == '-', b == '_', b == '.', b == '~':
			out.WriteByte(b)
		case b == ' ':
			out.WriteByte('+')
		default:
			out.WriteByte('%')
			out.WriteByte(upperhex[b>>4])
			out.WriteByte(upperhex[b&0x0F])
		}
	}
	return out.String()
}
