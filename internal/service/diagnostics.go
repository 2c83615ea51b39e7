package service

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/swiftfind/swiftfind/internal/apperr"
	"github.com/swiftfind/swiftfind/internal/checksum"
	"github.com/swiftfind/swiftfind/internal/logging"
)

// DiagnosticsBundle writes a support bundle under the config directory:
// a summary, the raw and sanitized config, and the recent log files.
// Sensitive values (clipboard patterns, auth token) never enter the
// sanitized config. Returns the bundle directory.
func (s *Service) DiagnosticsBundle() (string, error) {
	stamp := time.Now().Unix()
	bundleDir := filepath.Join(s.cfg.ConfigDir(), "diagnostics", fmt.Sprintf("bundle-%d", stamp))
	if err := os.MkdirAll(bundleDir, 0o755); err != nil {
		return "", fmt.Errorf("%w: create bundle dir: %v", apperr.ErrStore, err)
	}

	summary := fmt.Sprintf(
		"swiftfind diagnostics bundle\ngenerated_epoch_secs=%d\nconfig_path=%s\nindex_db_path=%s\nlogs_dir=%s\n",
		stamp, s.cfg.ConfigPath, s.cfg.IndexDBPath, logging.Dir(s.cfg.ConfigDir()))

	if raw, err := os.ReadFile(s.cfg.ConfigPath); err == nil {
		// The digest lets support match a bundle to the exact config revision.
		summary += fmt.Sprintf("config_sha256=%s\n", checksum.Sum(raw))
		_ = os.WriteFile(filepath.Join(bundleDir, "config.raw.jsonc"), raw, 0o644)
	}

	if err := os.WriteFile(filepath.Join(bundleDir, "summary.txt"), []byte(summary), 0o644); err != nil {
		return "", fmt.Errorf("%w: write summary: %v", apperr.ErrStore, err)
	}

	sanitized := map[string]any{
		"version":                                    s.cfg.Version,
		"max_results":                                s.cfg.MaxResults,
		"hotkey":                                     s.cfg.Hotkey,
		"launch_at_startup":                          s.cfg.LaunchAtStartup,
		"search_dsl_enabled":                         s.cfg.SearchDSLEnabled,
		"uninstall_actions_enabled":                  s.cfg.UninstallActionsEnabled,
		"web_search_provider":                        s.cfg.WebSearchProvider,
		"clipboard_enabled":                          s.cfg.ClipboardEnabled,
		"clipboard_retention_minutes":                s.cfg.ClipboardRetentionMinutes,
		"clipboard_exclude_sensitive_patterns_count": len(s.cfg.ClipboardExcludeSensitivePatterns),
		"plugins_enabled":                            s.cfg.PluginsEnabled,
		"plugin_paths_count":                         len(s.cfg.PluginPaths),
		"discovery_roots_count":                      len(s.cfg.DiscoveryRoots),
		"discovery_exclude_roots_count":              len(s.cfg.DiscoveryExcludeRoots),
		"windows_search_enabled":                     s.cfg.WindowsSearchEnabled,
		"windows_search_fallback_filesystem":         s.cfg.WindowsSearchFallbackFilesystem,
		"show_files":                                 s.cfg.ShowFiles,
		"show_folders":                               s.cfg.ShowFolders,
	}
	encoded, err := json.MarshalIndent(sanitized, "", "  ")
	if err != nil {
		return "", fmt.Errorf("%w: encode sanitized config: %v", apperr.ErrStore, err)
	}
	if err := os.WriteFile(filepath.Join(bundleDir, "config.sanitized.json"), encoded, 0o644); err != nil {
		return "", fmt.Errorf("%w: write sanitized config: %v", apperr.ErrStore, err)
	}

	if err := copyRecentLogs(logging.Dir(s.cfg.ConfigDir()), filepath.Join(bundleDir, "logs")); err != nil {
		return "", err
	}
	return bundleDir, nil
}

func copyRecentLogs(sourceDir, targetDir string) error {
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return fmt.Errorf("%w: create bundle logs dir: %v", apperr.ErrStore, err)
	}
	entries, err := os.ReadDir(sourceDir)
	if err != nil {
		// No logs yet is fine.
		return nil
	}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".log") {
			continue
		}
		_ = copyFile(filepath.Join(sourceDir, name), filepath.Join(targetDir, name))
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = io.Copy(out, in)
	return err
}
