// Package plugin loads static plugin manifests: JSON files declaring
// provider items and actions. Plugins never execute code at load time;
// a manifest only contributes catalog items and action records.
package plugin

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/swiftfind/swiftfind/internal/discovery"
	"github.com/swiftfind/swiftfind/internal/model"
)

// ActionKind discriminates how a plugin action activates.
const (
	ActionOpenPath = "open_path"
	ActionCommand  = "command"
)

// Action is the activation record behind a plugin action item.
type Action struct {
	ResultID string
	PluginID string
	ActionID string
	Title    string
	Subtitle string
	Keywords []string
	Kind     string
	Path     string
	Command  string
	Args     []string
}

// Registry holds everything the configured manifests declared. Invalid
// manifests surface as warnings, never as errors.
type Registry struct {
	ProviderItems []model.SearchItem
	ActionItems   []model.SearchItem
	ActionsByID   map[string]Action
	LoadWarnings  []string
}

type manifest struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Version       string           `json:"version"`
	Enabled       *bool            `json:"enabled"`
	ProviderItems []manifestItem   `json:"provider_items"`
	Actions       []manifestAction `json:"actions"`
}

type manifestItem struct {
	ID    string `json:"id"`
	Kind  string `json:"kind"`
	Title string `json:"title"`
	Path  string `json:"path"`
}

type manifestAction struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Subtitle string   `json:"subtitle"`
	Keywords []string `json:"keywords"`
	Type     string   `json:"type"`
	Path     string   `json:"path"`
	Command  string   `json:"command"`
	Args     []string `json:"args"`
}

func (m manifest) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.ID, validation.Required, validation.By(notBlank)),
		validation.Field(&m.Actions),
	)
}

func (a manifestAction) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.Type, validation.By(knownActionType)),
	)
}

func notBlank(value interface{}) error {
	if s, _ := value.(string); strings.TrimSpace(s) == "" {
		return fmt.Errorf("cannot be blank")
	}
	return nil
}

func knownActionType(value interface{}) error {
	s, _ := value.(string)
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", ActionOpenPath, ActionCommand:
		return nil
	}
	return fmt.Errorf("must be %s or %s", ActionOpenPath, ActionCommand)
}

// Load reads every manifest reachable from the configured plugin paths.
// A path may be a manifest file or a directory of .json manifests.
// When enabled is false the registry is empty.
func Load(paths []string, enabled bool) *Registry {
	reg := &Registry{ActionsByID: make(map[string]Action)}
	if !enabled {
		return reg
	}
	for _, p := range paths {
		for _, manifestPath := range discoverManifestPaths(p) {
			m, err := loadManifest(manifestPath)
			if err != nil {
				reg.LoadWarnings = append(reg.LoadWarnings,
					fmt.Sprintf("plugin manifest %q failed: %v", manifestPath, err))
				continue
			}
			reg.append(m)
		}
	}
	return reg
}

// Provider exposes the manifest-declared provider items as a discovery
// provider, so rebuilds index them alongside apps and files.
func (r *Registry) Provider() *discovery.Static {
	return &discovery.Static{ProviderName: "plugins", Items: r.ProviderItems}
}

func discoverManifestPaths(path string) []string {
	info, err := os.Stat(path)
	if err != nil {
		return nil
	}
	if !info.IsDir() {
		return []string{path}
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".json") {
			out = append(out, filepath.Join(path, e.Name()))
		}
	}
	return out
}

func loadManifest(path string) (*manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read failed: %v", err)
	}
	var m manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("invalid json: %v", err)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("invalid manifest: %v", err)
	}
	return &m, nil
}

func (r *Registry) append(m *manifest) {
	if m.Enabled != nil && !*m.Enabled {
		return
	}
	pluginID := strings.TrimSpace(m.ID)
	label := strings.TrimSpace(m.Name)
	if label == "" {
		label = pluginID
	}

	for _, item := range m.ProviderItems {
		id := strings.TrimSpace(item.ID)
		title := strings.TrimSpace(item.Title)
		if id == "" || title == "" {
			continue
		}
		kind := strings.TrimSpace(item.Kind)
		if kind == "" {
			kind = model.KindFile
		}
		r.ProviderItems = append(r.ProviderItems, model.SearchItem{
			ID:    fmt.Sprintf("plugin:%s:item:%s", pluginID, id),
			Kind:  kind,
			Title: title,
			Path:  strings.TrimSpace(item.Path),
		})
	}

	for _, a := range m.Actions {
		actionID := strings.TrimSpace(a.ID)
		title := strings.TrimSpace(a.Title)
		if actionID == "" || title == "" {
			continue
		}
		resultID := fmt.Sprintf("plugin:%s:action:%s", pluginID, actionID)
		subtitle := strings.TrimSpace(a.Subtitle)
		if subtitle == "" {
			subtitle = label + " plugin action"
		}
		kind := ActionOpenPath
		if strings.EqualFold(strings.TrimSpace(a.Type), ActionCommand) {
			kind = ActionCommand
		}
		action := Action{
			ResultID: resultID,
			PluginID: pluginID,
			ActionID: actionID,
			Title:    title,
			Subtitle: subtitle,
			Keywords: a.Keywords,
			Kind:     kind,
			Path:     strings.TrimSpace(a.Path),
			Command:  strings.TrimSpace(a.Command),
			Args:     a.Args,
		}
		// Keywords ride along in the searchable subtitle.
		searchable := subtitle
		if len(a.Keywords) > 0 {
			searchable += " " + strings.Join(a.Keywords, " ")
		}
		r.ActionItems = append(r.ActionItems, model.SearchItem{
			ID:       resultID,
			Kind:     model.KindAction,
			Title:    title,
			Subtitle: searchable,
			Path:     resultID,
		})
		r.ActionsByID[resultID] = action
	}
}
