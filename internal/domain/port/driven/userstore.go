// Package driven defines secondary port interfaces for external adapters.
package driven

import (
	"context"
	"errors"

	"github.com/dispulse/sitecontent/internal/domain/model"
)

// ErrUserExists indicates a user with the same email already exists.
var ErrUserExists = errors.New("user already exists")

// UserStore defines the driven port for operator account persistence.
// The store is append-only: there is no update or delete.
type UserStore interface {
	// GetByEmail returns (nil, nil) if no user has the given email.
	GetByEmail(ctx context.Context, email string) (*model.User, error)

	// Create inserts a new user. Returns ErrUserExists on a duplicate email.
	Create(ctx context.Context, user model.User) error
}
