package index

import "github.com/swiftfind/swiftfind/internal/model"

// Catalog defines the interface for catalog operations. Consumers should
// depend on this interface rather than the concrete *DB type to
// facilitate testing with in-memory stores.
type Catalog interface {
	UpsertItem(it model.SearchItem) error
	GetItem(id string) (model.SearchItem, error)
	ListItems() ([]model.SearchItem, error)
	DeleteItem(id string) error
	ClearItems() error
	ApplyDesired(desired []model.SearchItem) (int, error)
	RecordLaunch(id string, epochSecs int64) error
	GetMeta(key string) (string, bool, error)
	SetMeta(key, value string) error
	Close() error
}

// Verify *DB satisfies Catalog at compile time.
var _ Catalog = (*DB)(nil)
