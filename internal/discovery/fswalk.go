package discovery

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/swiftfind/swiftfind/internal/apperr"
	"github.com/swiftfind/swiftfind/internal/model"
)

// FileSystem walks configured roots and emits a folder item for every
// directory and a file item for every regular file, skipping the roots
// themselves, anything under an excluded root, and unreadable subtrees.
type FileSystem struct {
	Roots         []string
	MaxDepth      int
	ExcludedRoots []string
	ShowFiles     bool
	ShowFolders   bool
}

// NewFileSystem returns a walker with both kinds enabled.
func NewFileSystem(roots []string, maxDepth int, excludedRoots []string) *FileSystem {
	return &FileSystem{
		Roots:         roots,
		MaxDepth:      maxDepth,
		ExcludedRoots: excludedRoots,
		ShowFiles:     true,
		ShowFolders:   true,
	}
}

func (f *FileSystem) Name() string { return "filesystem" }

// Discover walks each root concurrently; output is per-root slices
// concatenated in root order, so the result is deterministic.
func (f *FileSystem) Discover() ([]model.SearchItem, error) {
	if !f.ShowFiles && !f.ShowFolders {
		return nil, nil
	}
	excluded := normalizedExclusionRoots(f.ExcludedRoots)
	perRoot := make([][]model.SearchItem, len(f.Roots))

	var g errgroup.Group
	var mu sync.Mutex
	for i, root := range f.Roots {
		g.Go(func() error {
			items, err := f.walkRoot(root, excluded)
			if err != nil {
				return err
			}
			mu.Lock()
			perRoot[i] = items
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: filesystem: %v", apperr.ErrProvider, err)
	}

	var out []model.SearchItem
	for _, items := range perRoot {
		out = append(out, items...)
	}
	return out, nil
}

func (f *FileSystem) walkRoot(root string, excluded []string) ([]model.SearchItem, error) {
	if _, err := os.Stat(root); err != nil {
		// Vanished roots contribute nothing.
		return nil, nil
	}

	var out []model.SearchItem
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable subtrees are skipped, not fatal.
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if isPathUnderAnyExcludedRoot(path, excluded) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path == root {
				return nil
			}
			if f.MaxDepth > 0 && pathDepth(root, path) > f.MaxDepth {
				return fs.SkipDir
			}
			if f.ShowFolders {
				out = append(out, model.SearchItem{
					ID:    "folder:" + path,
					Kind:  model.KindFolder,
					Title: filepath.Base(path),
					Path:  path,
				})
			}
			return nil
		}
		if !d.Type().IsRegular() || !f.ShowFiles {
			return nil
		}
		if f.MaxDepth > 0 && pathDepth(root, path) > f.MaxDepth {
			return nil
		}
		out = append(out, model.SearchItem{
			ID:    "file:" + path,
			Kind:  model.KindFile,
			Title: filepath.Base(path),
			Path:  path,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func pathDepth(root, path string) int {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return 0
	}
	return strings.Count(rel, string(filepath.Separator)) + 1
}

// normalizePathForCompare converts forward slashes to backslashes, strips
// trailing separators, trims, and lowercases, so exclusion matching is
// insensitive to separator style and case.
func normalizePathForCompare(path string) string {
	v := strings.ReplaceAll(path, "/", `\`)
	v = strings.TrimRight(v, `\`)
	return strings.ToLower(strings.TrimSpace(v))
}

func normalizedExclusionRoots(roots []string) []string {
	var out []string
	for _, root := range roots {
		if v := normalizePathForCompare(root); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// isPathUnderAnyExcludedRoot reports whether path equals an excluded root
// or sits beneath one.
func isPathUnderAnyExcludedRoot(path string, excluded []string) bool {
	norm := normalizePathForCompare(path)
	if norm == "" {
		return false
	}
	for _, root := range excluded {
		if norm == root || strings.HasPrefix(norm, root+`\`) {
			return true
		}
	}
	return false
}
