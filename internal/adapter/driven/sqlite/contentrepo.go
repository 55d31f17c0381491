package sqlite

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/dispulse/sitecontent/internal/domain/model"
	"github.com/dispulse/sitecontent/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.ContentStore = (*ContentRepo)(nil)

// ContentRepo is the SQLite implementation of the ContentStore port interface.
type ContentRepo struct {
	db  *DB
	now func() time.Time
}

// NewContentRepo creates a new ContentRepo backed by the given DB.
func NewContentRepo(db *DB) *ContentRepo {
	return &ContentRepo{db: db, now: time.Now}
}

type contentRow struct {
	Key   string `db:"key"`
	Value string `db:"value"`
}

// ListAll returns every persisted entry.
func (r *ContentRepo) ListAll(ctx context.Context) (model.ContentMap, error) {
	const query = `SELECT key, value FROM content`

	var rows []contentRow
	if err := r.db.Reader.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list content: %w", err)
	}

	entries := make(model.ContentMap, len(rows))
	for _, row := range rows {
		entries[row.Key] = row.Value
	}

	return entries, nil
}

// InsertMissing inserts every entry whose key is absent, in a single
// transaction. Conflicting keys are skipped, never overwritten.
func (r *ContentRepo) InsertMissing(ctx context.Context, entries model.ContentMap) error {
	const query = `
		INSERT INTO content (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO NOTHING
	`

	if len(entries) == 0 {
		return nil
	}

	tx, err := r.db.Writer.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback after commit is a no-op.

	keys := make([]string, 0, len(entries))
	for key := range entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	now := formatTime(r.now())
	for _, key := range keys {
		if _, err := tx.ExecContext(ctx, query, key, entries[key], now); err != nil {
			return fmt.Errorf("seed content %q: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed transaction: %w", err)
	}

	return nil
}

// Upsert creates the entry for key or overwrites its value and updated_at.
func (r *ContentRepo) Upsert(ctx context.Context, key, value string) (model.ContentEntry, error) {
	const query = `
		INSERT INTO content (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`

	now := r.now().UTC()
	if _, err := r.db.Writer.ExecContext(ctx, query, key, value, formatTime(now)); err != nil {
		return model.ContentEntry{}, fmt.Errorf("upsert content %q: %w", key, err)
	}

	return model.ContentEntry{Key: key, Value: value, UpdatedAt: now}, nil
}

// formatTime renders t as the ISO-8601 UTC text stored in updated_at.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
