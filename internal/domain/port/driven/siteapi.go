package driven

import (
	"context"

	"github.com/dispulse/sitecontent/internal/domain/model"
)

// LoginResult is the body of a successful login.
type LoginResult struct {
	Token string
	User  model.User
}

// SiteAPI is the client-side view of the content HTTP API, used by
// reconciliation and the admin editor.
type SiteAPI interface {
	ListContent(ctx context.Context) (model.ContentMap, error)
	// SeedContent returns the count reported by the server, which is the
	// number of keys submitted rather than the number inserted.
	SeedContent(ctx context.Context, entries model.ContentMap) (int, error)
	PutContent(ctx context.Context, token, key, value string) error
	Login(ctx context.Context, email, password string) (LoginResult, error)
	Me(ctx context.Context, token string) (model.Claims, error)
}

// TokenStore persists the editor's bearer token between sessions.
// Load returns ("", nil) when no token is stored.
type TokenStore interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}
