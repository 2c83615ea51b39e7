// Package discovery populates the catalog. A provider is any value that
// can name itself and emit a batch of items; the service unions every
// provider's output into the desired set for a rebuild.
package discovery

import "github.com/swiftfind/swiftfind/internal/model"

// Provider yields launchable items. Discover must be safe to call from a
// shared execution context and must complete synchronously.
type Provider interface {
	Name() string
	Discover() ([]model.SearchItem, error)
}

// Static is a provider over a fixed item list, used for plugin-declared
// provider items and deterministic fixtures.
type Static struct {
	ProviderName string
	Items        []model.SearchItem
}

func (s *Static) Name() string { return s.ProviderName }

func (s *Static) Discover() ([]model.SearchItem, error) {
	out := make([]model.SearchItem, len(s.Items))
	copy(out, s.Items)
	return out, nil
}

// FixtureApps returns the deterministic app fixture provider.
func FixtureApps() *Static {
	return &Static{
		ProviderName: "app-fixture",
		Items: []model.SearchItem{
			{ID: "app-code", Kind: model.KindApp, Title: "Visual Studio Code", Path: `C:\Program Files\Microsoft VS Code\Code.exe`},
			{ID: "app-term", Kind: model.KindApp, Title: "Windows Terminal", Path: `C:\Program Files\WindowsApps\Terminal.exe`},
		},
	}
}

// FixtureFiles returns the deterministic file fixture provider.
func FixtureFiles() *Static {
	return &Static{
		ProviderName: "file-fixture",
		Items: []model.SearchItem{
			{ID: "file-report", Kind: model.KindFile, Title: "Q4_Report.xlsx", Path: `C:\Users\Admin\Documents\Q4_Report.xlsx`},
			{ID: "file-notes", Kind: model.KindFile, Title: "Meeting Notes.txt", Path: `C:\Users\Admin\Documents\Meeting Notes.txt`},
		},
	}
}
