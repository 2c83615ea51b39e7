// Package testutil provides shared test helpers for setting up catalogs
// and config directories.
package testutil

import (
	"testing"

	"github.com/swiftfind/swiftfind/internal/config"
	"github.com/swiftfind/swiftfind/internal/index"
)

// TestDB opens an in-memory catalog that is closed when the test ends.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	db, err := index.OpenMemory()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestConfig returns a default config rooted in a temporary directory.
func TestConfig(t *testing.T) *config.Config {
	t.Helper()
	return config.NewDefaultConfig(t.TempDir())
}
