package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/dispulse/sitecontent/internal/domain/model"
	"github.com/dispulse/sitecontent/internal/domain/port/driven"
)

// EditorState is the authentication state of an Editor.
type EditorState int

const (
	StateLoggedOut EditorState = iota
	StateAuthenticating
	StateLoggedIn
)

func (s EditorState) String() string {
	switch s {
	case StateLoggedOut:
		return "logged_out"
	case StateAuthenticating:
		return "authenticating"
	case StateLoggedIn:
		return "logged_in"
	default:
		return fmt.Sprintf("EditorState(%d)", int(s))
	}
}

var (
	// ErrNotLoggedIn is returned by save operations without a session.
	ErrNotLoggedIn = errors.New("not logged in")
	// ErrLoginFailed is the only error Login reports, whatever the cause.
	ErrLoginFailed = errors.New("login failed")
)

// BulkSaveError reports the key that stopped SaveAll. Keys in Saved were
// written before the failure and remain committed.
type BulkSaveError struct {
	Key   string
	Saved []string
	Err   error
}

func (e *BulkSaveError) Error() string {
	return fmt.Sprintf("save %q failed after %d saved: %v", e.Key, len(e.Saved), e.Err)
}

func (e *BulkSaveError) Unwrap() error { return e.Err }

// Editor holds an operator's editing session: the bearer token, the
// persisted content and the local drafts. It is safe for concurrent use.
type Editor struct {
	api      driven.SiteAPI
	tokens   driven.TokenStore
	defaults model.ContentMap
	logger   *slog.Logger

	mu        sync.Mutex
	state     EditorState
	token     string
	user      *model.Claims
	persisted model.ContentMap
	drafts    model.ContentMap
	status    string
}

// NewEditor creates a logged-out Editor with drafts equal to the defaults.
func NewEditor(api driven.SiteAPI, tokens driven.TokenStore, defaults model.ContentMap, logger *slog.Logger) *Editor {
	return &Editor{
		api:       api,
		tokens:    tokens,
		defaults:  defaults.Clone(),
		logger:    logger,
		state:     StateLoggedOut,
		persisted: model.ContentMap{},
		drafts:    defaults.Clone(),
	}
}

// State returns the current authentication state.
func (e *Editor) State() EditorState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// User returns the identity of the logged-in operator.
func (e *Editor) User() (model.Claims, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.user == nil {
		return model.Claims{}, false
	}
	return *e.user, true
}

// Status returns the message for the most recent action.
func (e *Editor) Status() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// Resume restores a session from the stored token. A token the server
// rejects is cleared and ErrNotLoggedIn is returned.
func (e *Editor) Resume(ctx context.Context) error {
	token, err := e.tokens.Load()
	if err != nil {
		return fmt.Errorf("load token: %w", err)
	}
	if token == "" {
		e.setLoggedOut()
		return ErrNotLoggedIn
	}

	claims, err := e.api.Me(ctx, token)
	if err != nil {
		e.logger.Info("stored session rejected", "error", err)
		if clearErr := e.tokens.Clear(); clearErr != nil {
			e.logger.Warn("failed to clear token", "error", clearErr)
		}
		e.setLoggedOut()
		return ErrNotLoggedIn
	}

	e.mu.Lock()
	e.state = StateLoggedIn
	e.token = token
	e.user = &claims
	e.mu.Unlock()
	return nil
}

// Login exchanges credentials for a token and persists it.
func (e *Editor) Login(ctx context.Context, email, password string) error {
	e.mu.Lock()
	e.state = StateAuthenticating
	e.mu.Unlock()

	res, err := e.api.Login(ctx, email, password)
	if err != nil || res.Token == "" {
		e.logger.Info("login failed", "error", err)
		e.mu.Lock()
		e.state = StateLoggedOut
		e.token = ""
		e.user = nil
		e.status = "Login failed. Check your email and password."
		e.mu.Unlock()
		return ErrLoginFailed
	}

	if err := e.tokens.Save(res.Token); err != nil {
		e.logger.Warn("failed to persist token", "error", err)
	}

	e.mu.Lock()
	e.state = StateLoggedIn
	e.token = res.Token
	e.user = &model.Claims{
		Subject: res.User.ID,
		Name:    res.User.Name,
		Email:   res.User.Email,
		Role:    res.User.Role,
	}
	e.status = ""
	e.mu.Unlock()
	return nil
}

// Logout forgets the session and the stored token.
func (e *Editor) Logout() error {
	e.setLoggedOut()
	return e.tokens.Clear()
}

func (e *Editor) setLoggedOut() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = StateLoggedOut
	e.token = ""
	e.user = nil
}

// Load fetches persisted content and resets the drafts to defaults overlaid
// with it. On failure the drafts fall back to the defaults.
func (e *Editor) Load(ctx context.Context) error {
	persisted, err := e.api.ListContent(ctx)
	if err != nil {
		e.mu.Lock()
		e.persisted = model.ContentMap{}
		e.drafts = e.defaults.Clone()
		e.mu.Unlock()
		return fmt.Errorf("load content: %w", err)
	}

	e.mu.Lock()
	e.persisted = persisted.Clone()
	e.drafts = model.Merge(e.defaults, persisted)
	e.mu.Unlock()
	return nil
}

// Keys returns every known key in sorted order, limited to those whose key
// or draft value contains filter, ignoring case. An empty filter matches all.
func (e *Editor) Keys(filter string) []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	term := strings.ToLower(strings.TrimSpace(filter))
	seen := make(map[string]struct{}, len(e.defaults)+len(e.drafts))
	var keys []string
	for _, m := range []model.ContentMap{e.defaults, e.drafts} {
		for k := range m {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			if term != "" &&
				!strings.Contains(strings.ToLower(k), term) &&
				!strings.Contains(strings.ToLower(e.draftLocked(k)), term) {
				continue
			}
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// Draft returns the current draft value of key.
func (e *Editor) Draft(key string) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.draftLocked(key)
}

func (e *Editor) draftLocked(key string) string {
	if v, ok := e.drafts[key]; ok {
		return v
	}
	return e.baselineLocked(key)
}

// baselineLocked is what the server is believed to hold for key.
func (e *Editor) baselineLocked(key string) string {
	if v, ok := e.persisted[key]; ok {
		return v
	}
	return e.defaults[key]
}

// SetDraft replaces the draft value of key.
func (e *Editor) SetDraft(key, value string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.drafts[key] = value
}

// AddField adds a draft under the trimmed key. It reports false and does
// nothing when the key is blank.
func (e *Editor) AddField(key, value string) bool {
	key = strings.TrimSpace(key)
	if key == "" {
		return false
	}
	e.SetDraft(key, value)
	return true
}

// Dirty returns the sorted keys whose draft differs from the persisted value,
// or the default when nothing is persisted.
func (e *Editor) Dirty() []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	var keys []string
	for k, v := range e.drafts {
		if v != e.baselineLocked(k) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// Save writes the draft of key to the server.
func (e *Editor) Save(ctx context.Context, key string) error {
	token, value, err := e.prepareSave(key)
	if err != nil {
		return err
	}

	if err := e.api.PutContent(ctx, token, key, value); err != nil {
		e.setStatus(fmt.Sprintf("Failed to save %s.", key))
		return fmt.Errorf("save %q: %w", key, err)
	}

	e.mu.Lock()
	e.persisted[key] = value
	e.status = fmt.Sprintf("Saved %s.", key)
	e.mu.Unlock()
	return nil
}

func (e *Editor) prepareSave(key string) (token, value string, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StateLoggedIn || e.token == "" {
		e.status = "You must be logged in to save."
		return "", "", ErrNotLoggedIn
	}
	e.status = fmt.Sprintf("Saving %s...", key)
	return e.token, e.draftLocked(key), nil
}

// SaveAll writes every dirty key in sorted order. The first failure stops
// the run and is returned as a *BulkSaveError; earlier writes are kept.
func (e *Editor) SaveAll(ctx context.Context) ([]string, error) {
	e.mu.Lock()
	if e.state != StateLoggedIn || e.token == "" {
		e.status = "You must be logged in to save."
		e.mu.Unlock()
		return nil, ErrNotLoggedIn
	}
	token := e.token
	e.status = "Saving changes..."
	e.mu.Unlock()

	dirty := e.Dirty()
	saved := make([]string, 0, len(dirty))
	for _, key := range dirty {
		value := e.Draft(key)
		if err := e.api.PutContent(ctx, token, key, value); err != nil {
			e.setStatus(fmt.Sprintf("Failed to save %s.", key))
			return saved, &BulkSaveError{Key: key, Saved: saved, Err: err}
		}

		e.mu.Lock()
		e.persisted[key] = value
		e.mu.Unlock()
		saved = append(saved, key)
	}

	e.setStatus("All changes saved.")
	return saved, nil
}

// SeedDefaults submits the whole default map. Keys that already exist on the
// server are left untouched there.
func (e *Editor) SeedDefaults(ctx context.Context) (int, error) {
	e.setStatus("Seeding defaults...")

	n, err := e.api.SeedContent(ctx, e.defaults.Clone())
	if err != nil {
		e.setStatus("Failed to seed defaults.")
		return 0, fmt.Errorf("seed defaults: %w", err)
	}

	e.setStatus("Defaults seeded.")
	return n, nil
}

func (e *Editor) setStatus(s string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.status = s
}
