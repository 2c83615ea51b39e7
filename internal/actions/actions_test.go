package actions

import (
	"strings"
	"testing"

	"github.com/swiftfind/swiftfind/internal/uninstall"
)

type staticPrograms struct {
	entries []uninstall.Entry
}

func (s staticPrograms) Entries() ([]uninstall.Entry, error) { return s.entries, nil }

func TestSearchFiltersByTitleAndKeywords(t *testing.T) {
	results := Search("diag", 10, Options{})
	found := false
	for _, r := range results {
		if r.ID == DiagnosticsBundleID {
			found = true
		}
	}
	if !found {
		t.Errorf("diagnostics action missing from %v", results)
	}

	results = Search("refresh", 10, Options{})
	if len(results) != 1 || results[0].ID != RebuildIndexID {
		t.Errorf("keyword match = %v, want rebuild only", results)
	}
}

func TestSearchEmptyQueryListsAll(t *testing.T) {
	results := Search("", 10, Options{})
	if len(results) != len(BuiltIns()) {
		t.Errorf("results = %d, want %d", len(results), len(BuiltIns()))
	}
}

func TestSearchHonorsLimit(t *testing.T) {
	results := Search("", 2, Options{})
	if len(results) != 2 {
		t.Errorf("results = %d, want 2", len(results))
	}
}

func TestCommandModeIncludesWebSearchFirst(t *testing.T) {
	results := Search("rust icons", 10, Options{CommandMode: true})
	if len(results) == 0 || !strings.HasPrefix(results[0].ID, WebSearchPrefix) {
		t.Fatalf("results = %v, want web action first", results)
	}
	if results[0].Path != "https://duckduckgo.com/?q=rust+icons" {
		t.Errorf("url = %q", results[0].Path)
	}
}

func TestNonCommandModeOmitsWebSearch(t *testing.T) {
	for _, r := range Search("rust icons", 10, Options{}) {
		if strings.HasPrefix(r.ID, WebSearchPrefix) {
			t.Errorf("web action leaked outside command mode: %v", r)
		}
	}
}

func TestCommandModeRespectsProvider(t *testing.T) {
	results := Search("rust icons", 10, Options{CommandMode: true, WebProvider: "google"})
	if len(results) == 0 {
		t.Fatal("no results")
	}
	if !strings.Contains(results[0].Path, "google.com/search?q=") {
		t.Errorf("url = %q", results[0].Path)
	}
}

func TestUninstallIntentReplacesWebAction(t *testing.T) {
	cache := uninstall.NewCache(staticPrograms{entries: []uninstall.Entry{
		{Token: "hklm:notepad", DisplayName: "Notepad++", Command: "unins.exe"},
	}})
	results := Search("uninstall notepad", 10, Options{
		CommandMode:      true,
		UninstallEnabled: true,
		Uninstall:        cache,
	})
	if len(results) == 0 {
		t.Fatal("no results")
	}
	for _, r := range results {
		if strings.HasPrefix(r.ID, WebSearchPrefix) {
			t.Errorf("web action present despite uninstall intent: %v", r)
		}
	}
	if !strings.HasPrefix(results[0].ID, uninstall.ActionPrefix) {
		t.Errorf("first result = %v, want uninstall action", results[0])
	}
}

func TestWebSearchURLProviders(t *testing.T) {
	tests := []struct {
		provider string
		template string
		want     string
		ok       bool
	}{
		{"duckduckgo", "", "https://duckduckgo.com/?q=caf%C3%A9+au+lait", true},
		{"google", "", "https://www.google.com/search?q=caf%C3%A9+au+lait", true},
		{"bing", "", "https://www.bing.com/search?q=caf%C3%A9+au+lait", true},
		{"custom", "https://kagi.com/search?q={query}", "https://kagi.com/search?q=caf%C3%A9+au+lait", true},
		{"custom", "https://kagi.com/search", "", false},
		{"custom", "", "", false},
	}
	for _, tt := range tests {
		got, ok := WebSearchURL("café au lait", tt.provider, tt.template)
		if ok != tt.ok || got != tt.want {
			t.Errorf("WebSearchURL(%q, %q) = %q, %v; want %q, %v",
				tt.provider, tt.template, got, ok, tt.want, tt.ok)
		}
	}
}

func TestEncodeQuery(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"two words", "two+words"},
		{"a-b_c.d~e", "a-b_c.d~e"},
		{"50%+1", "50%25%2B1"},
		{"q&a=1", "q%26a%3D1"},
	}
	for _, tt := range tests {
		if got := EncodeQuery(tt.in); got != tt.want {
			t.Errorf("EncodeQuery(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
