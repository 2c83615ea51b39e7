package api

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
)

// LogsHandler serves the rotated log files for support tooling.
type LogsHandler struct {
	logsDir string
}

// NewLogsHandler creates a handler rooted at the logs directory.
func NewLogsHandler(logsDir string) *LogsHandler {
	return &LogsHandler{logsDir: logsDir}
}

// safeName validates that the filename is a plain .log name (no path
// separators, no traversal) and returns the absolute path under the
// logs dir.
func (h *LogsHandler) safeName(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("filename is required")
	}
	cleaned := filepath.Clean(name)
	if cleaned != filepath.Base(cleaned) || strings.Contains(cleaned, "..") {
		return "", fmt.Errorf("invalid filename: %s", name)
	}
	if !strings.HasSuffix(cleaned, ".log") {
		return "", fmt.Errorf("not a log file: %s", name)
	}
	abs := filepath.Join(h.logsDir, cleaned)
	if !strings.HasPrefix(abs, h.logsDir+string(os.PathSeparator)) && abs != h.logsDir {
		return "", fmt.Errorf("path escapes logs directory")
	}
	return abs, nil
}

// ServeFile handles GET /api/logs/{filename}.
func (h *LogsHandler) ServeFile(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")
	abs, err := h.safeName(filename)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if _, statErr := os.Stat(abs); os.IsNotExist(statErr) {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, abs)
}
