package application

import (
	"context"

	"github.com/dispulse/sitecontent/internal/domain/model"
	"github.com/dispulse/sitecontent/internal/domain/port/driven"
)

// ContentService exposes the content key/value table to the HTTP layer.
type ContentService struct {
	store driven.ContentStore
}

// NewContentService creates a new ContentService.
func NewContentService(store driven.ContentStore) *ContentService {
	return &ContentService{store: store}
}

// ListAll returns every persisted entry. Store failures are reported as
// internal errors without detail.
func (s *ContentService) ListAll(ctx context.Context) (model.ContentMap, error) {
	entries, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, model.ErrInternal(err)
	}
	return entries, nil
}

// SeedMissing inserts every entry whose key is absent and leaves existing
// keys alone. The returned count is the number of keys submitted, not the
// number actually inserted.
func (s *ContentService) SeedMissing(ctx context.Context, entries model.ContentMap) (int, error) {
	if entries == nil {
		return 0, model.ErrValidation("entries", "Entries required")
	}
	if len(entries) == 0 {
		return 0, nil
	}

	if err := s.store.InsertMissing(ctx, entries); err != nil {
		return 0, model.ErrInternal(err)
	}
	return len(entries), nil
}

// Put creates or overwrites the value for key. Callers must already be
// authenticated; the last write wins.
func (s *ContentService) Put(ctx context.Context, key, value string) (model.ContentEntry, error) {
	if key == "" {
		return model.ContentEntry{}, model.ErrValidation("key", "Key required")
	}

	entry, err := s.store.Upsert(ctx, key, value)
	if err != nil {
		return model.ContentEntry{}, model.ErrInternal(err)
	}
	return entry, nil
}
