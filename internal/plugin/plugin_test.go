package plugin

import (
	"os"
	"path/filepath"
	"testing"
)

func writeManifest(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const validManifest = `{
	"id": "todo",
	"name": "Todo",
	"version": "1.0.0",
	"provider_items": [
		{"id": "inbox", "kind": "file", "title": "Todo Inbox", "path": "C:\\todo\\inbox.md"}
	],
	"actions": [
		{"id": "add", "title": "Add Todo", "keywords": ["task", "new"], "type": "command", "command": "todo.exe", "args": ["add"]},
		{"id": "open", "title": "Open Todo List", "subtitle": "Jump to the list", "path": "C:\\todo\\inbox.md"}
	]
}`

func TestLoadManifestFile(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, "todo.json", validManifest)

	reg := Load([]string{path}, true)
	if len(reg.LoadWarnings) != 0 {
		t.Fatalf("warnings: %v", reg.LoadWarnings)
	}
	if len(reg.ProviderItems) != 1 {
		t.Fatalf("provider items = %d, want 1", len(reg.ProviderItems))
	}
	if got := reg.ProviderItems[0].ID; got != "plugin:todo:item:inbox" {
		t.Errorf("item id = %q", got)
	}
	if len(reg.ActionItems) != 2 {
		t.Fatalf("action items = %d, want 2", len(reg.ActionItems))
	}

	add, ok := reg.ActionsByID["plugin:todo:action:add"]
	if !ok {
		t.Fatal("add action not registered")
	}
	if add.Kind != ActionCommand || add.Command != "todo.exe" {
		t.Errorf("add action = %+v", add)
	}
	// Default subtitle and keyword suffix make the action searchable.
	var addItem = reg.ActionItems[0]
	if addItem.Subtitle != "Todo plugin action task new" {
		t.Errorf("searchable subtitle = %q", addItem.Subtitle)
	}

	open := reg.ActionsByID["plugin:todo:action:open"]
	if open.Kind != ActionOpenPath || open.Path != `C:\todo\inbox.md` {
		t.Errorf("open action = %+v", open)
	}
	if open.Subtitle != "Jump to the list" {
		t.Errorf("explicit subtitle lost: %q", open.Subtitle)
	}
}

func TestLoadDirectoryOfManifests(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "todo.json", validManifest)
	writeManifest(t, dir, "broken.json", `{not json`)
	writeManifest(t, dir, "ignored.txt", "not a manifest")

	reg := Load([]string{dir}, true)
	if len(reg.ProviderItems) != 1 {
		t.Errorf("provider items = %d, want 1", len(reg.ProviderItems))
	}
	if len(reg.LoadWarnings) != 1 {
		t.Errorf("warnings = %v, want one for broken.json", reg.LoadWarnings)
	}
}

func TestLoadSkipsDisabledPlugin(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "off.json", `{"id": "off", "enabled": false, "actions": [{"id": "a", "title": "A"}]}`)

	reg := Load([]string{dir}, true)
	if len(reg.ActionItems) != 0 {
		t.Errorf("disabled plugin contributed items: %v", reg.ActionItems)
	}
}

func TestLoadMissingIDWarns(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "anon.json", `{"name": "Anonymous"}`)

	reg := Load([]string{dir}, true)
	if len(reg.LoadWarnings) != 1 {
		t.Errorf("warnings = %v, want one", reg.LoadWarnings)
	}
}

func TestLoadUnknownActionTypeWarns(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "weird.json",
		`{"id": "weird", "actions": [{"id": "a", "title": "A", "type": "shell_script"}]}`)

	reg := Load([]string{dir}, true)
	if len(reg.LoadWarnings) != 1 {
		t.Fatalf("warnings = %v, want one", reg.LoadWarnings)
	}
	if len(reg.ActionItems) != 0 {
		t.Errorf("invalid manifest contributed actions: %v", reg.ActionItems)
	}
}

func TestLoadBlankIDWarns(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "blank.json", `{"id": "   ", "name": "Blank"}`)

	reg := Load([]string{dir}, true)
	if len(reg.LoadWarnings) != 1 {
		t.Errorf("warnings = %v, want one", reg.LoadWarnings)
	}
}

func TestProviderServesManifestItems(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "todo.json", validManifest)

	reg := Load([]string{dir}, true)
	p := reg.Provider()
	if p.Name() != "plugins" {
		t.Errorf("name = %q", p.Name())
	}
	items, err := p.Discover()
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].ID != "plugin:todo:item:inbox" {
		t.Errorf("items = %v", items)
	}
}

func TestLoadDisabledGlobally(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "todo.json", validManifest)

	reg := Load([]string{dir}, false)
	if len(reg.ProviderItems) != 0 || len(reg.ActionItems) != 0 {
		t.Error("plugins loaded while disabled")
	}
}
