package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	pkgconfig "github.com/swiftfind/swiftfind/pkg/config"

	"github.com/swiftfind/swiftfind/internal/apperr"
)

// DefaultDir returns the per-user config directory.
func DefaultDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("%w: resolve config dir: %v", apperr.ErrConfig, err)
	}
	return filepath.Join(base, "swiftfind"), nil
}

// Load reads the config file at path. A missing file yields defaults;
// a file with an older version is migrated in place, with the previous
// contents backed up next to it.
func Load(path string) (*Config, error) {
	cfg := NewDefaultConfig(filepath.Dir(path))
	cfg.ConfigPath = path

	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", apperr.ErrConfig, path, err)
	}

	cleaned := pkgconfig.StripComments(os.ExpandEnv(string(raw)))

	var onDisk map[string]json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &onDisk); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", apperr.ErrConfig, path, err)
	}
	version, err := fileVersion(onDisk)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", apperr.ErrConfig, path, err)
	}

	// Populates and validates; Config implements pkgconfig.Validator.
	if err := pkgconfig.Load(path, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrConfig, err)
	}
	cfg.ConfigPath = path

	if version < CurrentVersion {
		if err := migrate(cfg, onDisk, raw, version); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func fileVersion(onDisk map[string]json.RawMessage) (int, error) {
	rawVersion, ok := onDisk["version"]
	if !ok {
		return 0, fmt.Errorf("missing version field")
	}
	var version int
	if err := json.Unmarshal(rawVersion, &version); err != nil {
		return 0, fmt.Errorf("invalid version field: %v", err)
	}
	return version, nil
}

// migrate backs up the old file and rewrites it with the current
// schema. Unknown fields from the old file are carried forward so a
// newer build's additions survive a round trip through this one.
func migrate(cfg *Config, onDisk map[string]json.RawMessage, original []byte, fromVersion int) error {
	backup := filepath.Join(cfg.ConfigDir(),
		fmt.Sprintf("config.v%d-backup-%d.json", fromVersion, time.Now().Unix()))
	if err := os.WriteFile(backup, original, 0o644); err != nil {
		return fmt.Errorf("%w: write backup %s: %v", apperr.ErrConfig, backup, err)
	}

	cfg.Version = CurrentVersion

	current, err := configAsMap(cfg)
	if err != nil {
		return err
	}
	merged := make(map[string]json.RawMessage, len(onDisk)+len(current))
	for key, value := range onDisk {
		merged[key] = value
	}
	for key, value := range current {
		merged[key] = value
	}

	encoded, err := json.MarshalIndent(merged, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode migrated config: %v", apperr.ErrConfig, err)
	}
	if err := os.WriteFile(cfg.ConfigPath, append(encoded, '\n'), 0o644); err != nil {
		return fmt.Errorf("%w: rewrite %s: %v", apperr.ErrConfig, cfg.ConfigPath, err)
	}
	return nil
}

func configAsMap(cfg *Config) (map[string]json.RawMessage, error) {
	encoded, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: encode config: %v", apperr.ErrConfig, err)
	}
	var out map[string]json.RawMessage
	if err := json.Unmarshal(encoded, &out); err != nil {
		return nil, fmt.Errorf("%w: encode config: %v", apperr.ErrConfig, err)
	}
	return out, nil
}

var templateBanner = []string{
	"// SwiftFind configuration.",
	"// Lines starting with // are comments and are ignored.",
	"// hotkey: modifiers from Ctrl, Alt, Shift plus one key, e.g. \"Ctrl+Shift+Space\".",
	"// max_results: number of results per query, between 5 and 100.",
	"// web_search_provider: google | duckduckgo | bing | custom.",
	"// A custom provider needs web_search_custom_template with a {query} placeholder.",
	"// discovery_roots: directories to index; discovery_exclude_roots prunes subtrees.",
}

// WriteTemplate writes a commented starter config. Machine-managed
// fields (index_db_path) are left out so the launcher keeps choosing
// them.
func WriteTemplate(cfg *Config, path string) error {
	fields, err := configAsMap(cfg)
	if err != nil {
		return err
	}
	delete(fields, "index_db_path")

	encoded, err := json.MarshalIndent(fields, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode template: %v", apperr.ErrConfig, err)
	}

	var out []byte
	for _, line := range templateBanner {
		out = append(out, line...)
		out = append(out, '\n')
	}
	out = append(out, encoded...)
	out = append(out, '\n')

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("%w: create config dir: %v", apperr.ErrConfig, err)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("%w: write template %s: %v", apperr.ErrConfig, path, err)
	}
	return nil
}
