package application

import (
	"context"
	"log/slog"
	"sort"

	"github.com/dispulse/sitecontent/internal/domain/model"
	"github.com/dispulse/sitecontent/internal/domain/port/driven"
)

// Snapshot is the content a page renders with after one load.
type Snapshot struct {
	// Merged is the persisted content overlaid on the defaults.
	Merged model.ContentMap
	// Persisted is the content as returned by the server.
	Persisted model.ContentMap
	// Missing lists the default keys absent on the server, sorted.
	Missing []string
	// FetchErr is set when the server could not be read. Merged is then the
	// defaults alone and Missing is empty.
	FetchErr error
}

// BackfillResult reports the outcome of one backfill run.
type BackfillResult struct {
	Keys []string
	Err  error
}

// Reconciler loads server content, merges it over the compiled-in defaults
// and backfills default keys the server does not have yet.
type Reconciler struct {
	api      driven.SiteAPI
	defaults model.ContentMap
	logger   *slog.Logger
}

// NewReconciler creates a new Reconciler.
func NewReconciler(api driven.SiteAPI, defaults model.ContentMap, logger *slog.Logger) *Reconciler {
	return &Reconciler{
		api:      api,
		defaults: defaults.Clone(),
		logger:   logger,
	}
}

// Load fetches persisted content. A fetch failure never fails the load: the
// snapshot falls back to the defaults with FetchErr set.
func (r *Reconciler) Load(ctx context.Context) Snapshot {
	persisted, err := r.api.ListContent(ctx)
	if err != nil {
		r.logger.Warn("content load failed, using defaults", "error", err)
		return Snapshot{
			Merged:    r.defaults.Clone(),
			Persisted: model.ContentMap{},
			FetchErr:  err,
		}
	}

	missing := model.MissingFrom(r.defaults, persisted)
	sort.Strings(missing)

	return Snapshot{
		Merged:    model.Merge(r.defaults, persisted),
		Persisted: persisted.Clone(),
		Missing:   missing,
	}
}

// Backfill submits the snapshot's missing keys with their default values in
// a background goroutine. It makes no request when nothing is missing and
// never retries. The returned channel receives exactly one result and is
// then closed.
func (r *Reconciler) Backfill(ctx context.Context, snap Snapshot) <-chan BackfillResult {
	out := make(chan BackfillResult, 1)

	if len(snap.Missing) == 0 {
		out <- BackfillResult{}
		close(out)
		return out
	}

	keys := append([]string(nil), snap.Missing...)
	entries := make(model.ContentMap, len(keys))
	for _, k := range keys {
		entries[k] = r.defaults[k]
	}

	go func() {
		defer close(out)

		if _, err := r.api.SeedContent(ctx, entries); err != nil {
			r.logger.Warn("content backfill failed", "keys", len(keys), "error", err)
			out <- BackfillResult{Keys: keys, Err: err}
			return
		}

		r.logger.Debug("content backfill complete", "keys", len(keys))
		out <- BackfillResult{Keys: keys}
	}()

	return out
}
