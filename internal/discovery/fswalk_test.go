package discovery

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/swiftfind/swiftfind/internal/model"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func itemsByKind(items []model.SearchItem) map[string][]string {
	out := make(map[string][]string)
	for _, it := range items {
		out[it.Kind] = append(out[it.Kind], it.Title)
	}
	return out
}

func TestFileSystemWalk(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "docs", "report.txt"))
	writeFile(t, filepath.Join(root, "top.md"))

	p := NewFileSystem([]string{root}, 5, nil)
	items, err := p.Discover()
	if err != nil {
		t.Fatal(err)
	}

	byKind := itemsByKind(items)
	if len(byKind[model.KindFolder]) != 1 || byKind[model.KindFolder][0] != "docs" {
		t.Errorf("folders = %v, want [docs]", byKind[model.KindFolder])
	}
	if len(byKind[model.KindFile]) != 2 {
		t.Errorf("files = %v, want two", byKind[model.KindFile])
	}
	// The root itself is never emitted.
	for _, it := range items {
		if it.Path == root {
			t.Errorf("root emitted as item: %+v", it)
		}
	}
}

func TestFileSystemMaxDepth(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a", "b", "deep.txt"))
	writeFile(t, filepath.Join(root, "shallow.txt"))

	p := NewFileSystem([]string{root}, 1, nil)
	items, err := p.Discover()
	if err != nil {
		t.Fatal(err)
	}
	for _, it := range items {
		if it.Title == "deep.txt" || it.Title == "b" {
			t.Errorf("item beyond max depth emitted: %+v", it)
		}
	}
	byKind := itemsByKind(items)
	if len(byKind[model.KindFile]) != 1 || byKind[model.KindFile][0] != "shallow.txt" {
		t.Errorf("files = %v, want [shallow.txt]", byKind[model.KindFile])
	}
}

func TestFileSystemExcludedRoots(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "keep", "a.txt"))
	writeFile(t, filepath.Join(root, "skip", "b.txt"))

	// Exclusion matching tolerates forward slashes and trailing separators.
	p := NewFileSystem([]string{root}, 5, []string{filepath.ToSlash(filepath.Join(root, "skip")) + "/"})
	items, err := p.Discover()
	if err != nil {
		t.Fatal(err)
	}
	for _, it := range items {
		if it.Title == "skip" || it.Title == "b.txt" {
			t.Errorf("excluded item emitted: %+v", it)
		}
	}
}

func TestFileSystemMissingRoot(t *testing.T) {
	p := NewFileSystem([]string{filepath.Join(t.TempDir(), "gone")}, 5, nil)
	items, err := p.Discover()
	if err != nil {
		t.Fatalf("missing root must not fail: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("items = %v, want none", items)
	}
}

func TestFileSystemDisabledKinds(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "dir", "a.txt"))

	p := NewFileSystem([]string{root}, 5, nil)
	p.ShowFiles = false
	items, err := p.Discover()
	if err != nil {
		t.Fatal(err)
	}
	for _, it := range items {
		if it.Kind == model.KindFile {
			t.Errorf("file emitted with ShowFiles off: %+v", it)
		}
	}
}

func TestIsPathUnderAnyExcludedRoot(t *testing.T) {
	excluded := normalizedExclusionRoots([]string{`C:\Users\Admin\node_modules\`})
	tests := []struct {
		path string
		want bool
	}{
		{`C:\Users\Admin\node_modules`, true},
		{`C:\Users\Admin\node_modules\pkg\index.js`, true},
		{`C:/Users/Admin/NODE_MODULES/pkg`, true},
		{`C:\Users\Admin\node_modules_backup`, false},
		{`C:\Users\Admin`, false},
	}
	for _, tt := range tests {
		if got := isPathUnderAnyExcludedRoot(tt.path, excluded); got != tt.want {
			t.Errorf("isPathUnderAnyExcludedRoot(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestStartMenuScansShortcuts(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Tools", "Editor.lnk"))
	writeFile(t, filepath.Join(root, "Terminal.exe"))
	writeFile(t, filepath.Join(root, "readme.txt"))

	p := &StartMenu{Roots: []string{root, filepath.Join(root, "absent")}}
	items, err := p.Discover()
	if err != nil {
		t.Fatal(err)
	}
	titles := make(map[string]bool)
	for _, it := range items {
		if it.Kind != model.KindApp {
			t.Errorf("kind = %q, want app", it.Kind)
		}
		titles[it.Title] = true
	}
	if !titles["Editor"] || !titles["Terminal"] {
		t.Errorf("titles = %v, want Editor and Terminal", titles)
	}
	if titles["readme"] {
		t.Error("non-shortcut file emitted")
	}
}

func TestStaticProviderCopies(t *testing.T) {
	p := FixtureApps()
	items, err := p.Discover()
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 {
		t.Fatalf("items = %d, want 2", len(items))
	}
	items[0].Title = "mutated"
	again, _ := p.Discover()
	if again[0].Title == "mutated" {
		t.Error("Discover must return a copy")
	}
}
