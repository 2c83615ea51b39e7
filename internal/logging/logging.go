// Package logging writes structured logs to a size-rotated file under
// the launcher's config directory.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

const (
	logFileName = "swiftfind.log"
	maxLogBytes = 1_000_000
	maxArchives = 5
)

// Dir returns the logs directory under configDir.
func Dir(configDir string) string {
	return filepath.Join(configDir, "logs")
}

// RotatingWriter appends to swiftfind.log and, once the file passes the
// size threshold, archives it as swiftfind-<epoch>.log. Only the five
// newest archives are kept.
type RotatingWriter struct {
	mu       sync.Mutex
	dir      string
	path     string
	file     *os.File
	size     int64
	maxBytes int64
	now      func() time.Time
}

func NewRotatingWriter(dir string) (*RotatingWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create logs dir: %w", err)
	}
	w := &RotatingWriter{
		dir:      dir,
		path:     filepath.Join(dir, logFileName),
		maxBytes: maxLogBytes,
		now:      time.Now,
	}
	if err := w.openCurrent(); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *RotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.size >= w.maxBytes {
		if err := w.rotate(); err != nil {
			return 0, err
		}
	}
	n, err := w.file.Write(p)
	w.size += int64(n)
	return n, err
}

func (w *RotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}

func (w *RotatingWriter) openCurrent() error {
	file, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return fmt.Errorf("stat log file: %w", err)
	}
	w.file = file
	w.size = info.Size()
	return nil
}

func (w *RotatingWriter) rotate() error {
	if err := w.file.Close(); err != nil {
		return fmt.Errorf("close log file: %w", err)
	}
	archived := filepath.Join(w.dir, fmt.Sprintf("swiftfind-%d.log", w.now().Unix()))
	if err := os.Rename(w.path, archived); err != nil {
		return fmt.Errorf("archive log file: %w", err)
	}
	w.pruneArchives()
	return w.openCurrent()
}

func (w *RotatingWriter) pruneArchives() {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return
	}
	var archives []string
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, "swiftfind-") && strings.HasSuffix(name, ".log") {
			archives = append(archives, name)
		}
	}
	sort.Strings(archives)
	for len(archives) > maxArchives {
		_ = os.Remove(filepath.Join(w.dir, archives[0]))
		archives = archives[1:]
	}
}

// NewLogger builds a JSON slog logger backed by a rotating file. The
// returned closer releases the file handle.
func NewLogger(configDir string, level slog.Level) (*slog.Logger, io.Closer, error) {
	writer, err := NewRotatingWriter(Dir(configDir))
	if err != nil {
		return nil, nil, err
	}
	handler := slog.NewJSONHandler(writer, &slog.HandlerOptions{Level: level})
	return slog.New(handler), writer, nil
}
