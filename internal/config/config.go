// Package config defines the launcher configuration: a versioned JSON
// file with a commented banner, migrated in place when the schema
// moves forward.
package config

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/swiftfind/swiftfind/internal/hotkey"
)

// CurrentVersion is the config schema version written by this build.
const CurrentVersion = 2

// Web search providers.
const (
	ProviderGoogle     = "google"
	ProviderDuckduckgo = "duckduckgo"
	ProviderBing       = "bing"
	ProviderCustom     = "custom"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the launcher configuration.
type Config struct {
	Version int `json:"version"`

	App  ApplicationConfig `json:"app"`
	Auth AuthConfig        `json:"auth"`

	Hotkey           string `json:"hotkey"`
	MaxResults       int    `json:"max_results"`
	SearchDSLEnabled bool   `json:"search_dsl_enabled"`
	LaunchAtStartup  bool   `json:"launch_at_startup"`

	ClipboardEnabled                  bool     `json:"clipboard_enabled"`
	ClipboardRetentionMinutes         int      `json:"clipboard_retention_minutes"`
	ClipboardExcludeSensitivePatterns []string `json:"clipboard_exclude_sensitive_patterns"`

	DiscoveryRoots                  []string `json:"discovery_roots"`
	DiscoveryExcludeRoots           []string `json:"discovery_exclude_roots"`
	MaxScanDepth                    int      `json:"max_scan_depth"`
	ShowFiles                       bool     `json:"show_files"`
	ShowFolders                     bool     `json:"show_folders"`
	WindowsSearchEnabled            bool     `json:"windows_search_enabled"`
	WindowsSearchFallbackFilesystem bool     `json:"windows_search_fallback_filesystem"`

	UninstallActionsEnabled bool     `json:"uninstall_actions_enabled"`
	PluginsEnabled          bool     `json:"plugins_enabled"`
	PluginPaths             []string `json:"plugin_paths"`

	WebSearchProvider       string `json:"web_search_provider"`
	WebSearchCustomTemplate string `json:"web_search_custom_template,omitempty"`

	// ConfigPath is where this config was loaded from; it is never
	// serialized back into the file itself.
	ConfigPath string `json:"-"`

	// IndexDBPath is machine-managed and omitted from user templates.
	IndexDBPath string `json:"index_db_path"`
}

// ConfigDir returns the directory holding the config file and its
// siblings (clipboard history, index database).
func (c *Config) ConfigDir() string {
	return filepath.Dir(c.ConfigPath)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Version, validation.Required, validation.Min(1)),
		validation.Field(&c.MaxResults, validation.Required, validation.Min(5), validation.Max(100)),
		validation.Field(&c.ClipboardRetentionMinutes, validation.Required, validation.Min(1)),
		validation.Field(&c.WebSearchProvider, validation.Required,
			validation.In(ProviderGoogle, ProviderDuckduckgo, ProviderBing, ProviderCustom)),
	); err != nil {
		return err
	}
	if _, err := hotkey.Parse(c.Hotkey); err != nil {
		return fmt.Errorf("hotkey: %v", err)
	}
	if c.WebSearchProvider == ProviderCustom {
		if err := validation.Validate(c.WebSearchCustomTemplate,
			validation.Required, validation.By(containsQueryPlaceholder)); err != nil {
			return fmt.Errorf("web_search_custom_template: %v", err)
		}
	}
	return nil
}

func containsQueryPlaceholder(value any) error {
	s, _ := value.(string)
	if !strings.Contains(s, "{query}") {
		return fmt.Errorf("must contain the {query} placeholder")
	}
	return nil
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `json:"log_level"`
	HTTP     HTTPConfig `json:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `json:"port"`
}

// Address returns the HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local use.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `json:"mode"`
	Token string `json:"token,omitempty"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled" for backward compatibility.
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values,
// anchored at configDir.
func NewDefaultConfig(configDir string) *Config {
	return &Config{
		Version: CurrentVersion,
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8420,
			},
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Hotkey:                    "Ctrl+Shift+Space",
		MaxResults:                30,
		SearchDSLEnabled:          true,
		ClipboardEnabled:          true,
		ClipboardRetentionMinutes: 60 * 24,
		ClipboardExcludeSensitivePatterns: []string{
			"password",
			"secret",
			"api_key",
			"apikey",
			"token",
		},
		MaxScanDepth:                    4,
		ShowFiles:                       true,
		ShowFolders:                     true,
		WindowsSearchEnabled:            true,
		WindowsSearchFallbackFilesystem: true,
		UninstallActionsEnabled:         true,
		PluginsEnabled:                  true,
		WebSearchProvider:               ProviderDuckduckgo,
		ConfigPath:                      filepath.Join(configDir, "config.json"),
		IndexDBPath:                     filepath.Join(configDir, "index.db"),
	}
}
