package discovery

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/swiftfind/swiftfind/internal/model"
)

// StartMenu recursively scans shortcut roots and emits an app item for
// each .lnk or .exe found. Roots come from configuration; on systems
// without a start-menu layout the root list is simply empty.
type StartMenu struct {
	Roots []string
}

// DefaultStartMenuRoots derives the conventional shortcut roots from the
// environment. Missing variables yield no roots.
func DefaultStartMenuRoots() []string {
	var roots []string
	for _, env := range []string{"ProgramData", "APPDATA"} {
		if base := os.Getenv(env); base != "" {
			roots = append(roots, filepath.Join(base, "Microsoft", "Windows", "Start Menu", "Programs"))
		}
	}
	return roots
}

func (s *StartMenu) Name() string { return "start-menu-apps" }

func (s *StartMenu) Discover() ([]model.SearchItem, error) {
	var out []model.SearchItem
	for _, root := range s.Roots {
		if _, err := os.Stat(root); err != nil {
			continue
		}
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return nil
			}
			ext := strings.ToLower(filepath.Ext(path))
			if ext != ".lnk" && ext != ".exe" {
				return nil
			}
			title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			out = append(out, model.SearchItem{
				ID:    "app:" + path,
				Kind:  model.KindApp,
				Title: title,
				Path:  path,
			})
			return nil
		})
	}
	return out, nil
}
