package index

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/swiftfind/swiftfind/internal/apperr"
	"github.com/swiftfind/swiftfind/internal/model"
)

const itemColumns = `id, kind, title, path, use_count, last_accessed_epoch_secs`

// UpsertItem inserts or replaces the full catalog row for the item's id.
func (db *DB) UpsertItem(it model.SearchItem) error {
	_, err := db.conn.Exec(`
		INSERT INTO item (`+itemColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			kind                     = excluded.kind,
			title                    = excluded.title,
			path                     = excluded.path,
			use_count                = excluded.use_count,
			last_accessed_epoch_secs = excluded.last_accessed_epoch_secs
	`, it.ID, it.Kind, it.Title, it.Path, it.UseCount, it.LastAccessedEpochSecs)
	if err != nil {
		return fmt.Errorf("%w: upsert item: %v", apperr.ErrStore, err)
	}
	return nil
}

// GetItem returns the catalog row for id, or apperr.ErrItemNotFound.
func (db *DB) GetItem(id string) (model.SearchItem, error) {
	var it model.SearchItem
	err := db.conn.QueryRow(`SELECT `+itemColumns+` FROM item WHERE id = ?`, id).
		Scan(&it.ID, &it.Kind, &it.Title, &it.Path, &it.UseCount, &it.LastAccessedEpochSecs)
	if errors.Is(err, sql.ErrNoRows) {
		return model.SearchItem{}, fmt.Errorf("%w: %s", apperr.ErrItemNotFound, id)
	}
	if err != nil {
		return model.SearchItem{}, fmt.Errorf("%w: get item: %v", apperr.ErrStore, err)
	}
	return it, nil
}

// ListItems returns every catalog row ordered by id, so callers get a
// deterministic sequence without sorting.
func (db *DB) ListItems() ([]model.SearchItem, error) {
	rows, err := db.conn.Query(`SELECT ` + itemColumns + ` FROM item ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%w: list items: %v", apperr.ErrStore, err)
	}
	defer rows.Close()

	var out []model.SearchItem
	for rows.Next() {
		var it model.SearchItem
		if err := rows.Scan(&it.ID, &it.Kind, &it.Title, &it.Path, &it.UseCount, &it.LastAccessedEpochSecs); err != nil {
			return nil, fmt.Errorf("%w: scan item: %v", apperr.ErrStore, err)
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list items: %v", apperr.ErrStore, err)
	}
	return out, nil
}

// DeleteItem removes the row for id. Deleting an absent id is not an error.
func (db *DB) DeleteItem(id string) error {
	if _, err := db.conn.Exec(`DELETE FROM item WHERE id = ?`, id); err != nil {
		return fmt.Errorf("%w: delete item: %v", apperr.ErrStore, err)
	}
	return nil
}

// ClearItems removes every catalog row.
func (db *DB) ClearItems() error {
	if _, err := db.conn.Exec(`DELETE FROM item`); err != nil {
		return fmt.Errorf("%w: clear items: %v", apperr.ErrStore, err)
	}
	return nil
}

// ApplyDesired commits a rebuild's desired set in one transaction: every
// desired item is upserted, every catalog id absent from the desired set
// is deleted. A concurrent reader sees either the old or the new catalog.
// Returns the number of removed rows.
func (db *DB) ApplyDesired(desired []model.SearchItem) (int, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return 0, fmt.Errorf("%w: begin rebuild tx: %v", apperr.ErrStore, err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	keep := make(map[string]struct{}, len(desired))
	for _, it := range desired {
		keep[it.ID] = struct{}{}
		if _, err := tx.Exec(`
			INSERT INTO item (`+itemColumns+`)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				kind                     = excluded.kind,
				title                    = excluded.title,
				path                     = excluded.path,
				use_count                = excluded.use_count,
				last_accessed_epoch_secs = excluded.last_accessed_epoch_secs
		`, it.ID, it.Kind, it.Title, it.Path, it.UseCount, it.LastAccessedEpochSecs); err != nil {
			return 0, fmt.Errorf("%w: rebuild upsert: %v", apperr.ErrStore, err)
		}
	}

	rows, err := tx.Query(`SELECT id FROM item`)
	if err != nil {
		return 0, fmt.Errorf("%w: rebuild list ids: %v", apperr.ErrStore, err)
	}
	var stale []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return 0, fmt.Errorf("%w: rebuild scan id: %v", apperr.ErrStore, err)
		}
		if _, ok := keep[id]; !ok {
			stale = append(stale, id)
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return 0, fmt.Errorf("%w: rebuild list ids: %v", apperr.ErrStore, err)
	}
	rows.Close()

	for _, id := range stale {
		if _, err := tx.Exec(`DELETE FROM item WHERE id = ?`, id); err != nil {
			return 0, fmt.Errorf("%w: rebuild prune: %v", apperr.ErrStore, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%w: commit rebuild: %v", apperr.ErrStore, err)
	}
	return len(stale), nil
}

// RecordLaunch bumps use_count and advances last_accessed for id.
func (db *DB) RecordLaunch(id string, epochSecs int64) error {
	_, err := db.conn.Exec(`
		UPDATE item
		SET use_count = use_count + 1, last_accessed_epoch_secs = ?
		WHERE id = ?
	`, epochSecs, id)
	if err != nil {
		return fmt.Errorf("%w: record launch: %v", apperr.ErrStore, err)
	}
	return nil
}

// GetMeta returns the meta value for key; ok is false when the key is absent.
func (db *DB) GetMeta(key string) (value string, ok bool, err error) {
	err = db.conn.QueryRow(`SELECT value FROM index_meta WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: get meta: %v", apperr.ErrStore, err)
	}
	return value, true, nil
}

// SetMeta inserts or replaces the meta value for key.
func (db *DB) SetMeta(key, value string) error {
	_, err := db.conn.Exec(`
		INSERT INTO index_meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("%w: set meta: %v", apperr.ErrStore, err)
	}
	return nil
}
