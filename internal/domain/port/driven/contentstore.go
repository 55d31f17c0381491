package driven

import (
	"context"

	"github.com/dispulse/sitecontent/internal/domain/model"
)

// ContentStore defines the driven port for the content key/value table.
type ContentStore interface {
	// ListAll returns every persisted entry as a key/value map.
	ListAll(ctx context.Context) (model.ContentMap, error)

	// InsertMissing inserts each entry whose key does not exist yet. Existing
	// keys are left untouched. All inserts are applied in one transaction.
	InsertMissing(ctx context.Context, entries model.ContentMap) error

	// Upsert creates or overwrites the entry for key and returns it as stored.
	Upsert(ctx context.Context, key, value string) (model.ContentEntry, error)
}
