package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dispulse/sitecontent/internal/domain/model"
	"github.com/dispulse/sitecontent/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.UserStore = (*UserRepo)(nil)

// UserRepo is the SQLite implementation of the UserStore port interface.
type UserRepo struct {
	db *DB
}

// NewUserRepo creates a new UserRepo backed by the given DB.
func NewUserRepo(db *DB) *UserRepo {
	return &UserRepo{db: db}
}

// GetByEmail retrieves a user by email. Returns (nil, nil) if no user has
// that email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	const query = `SELECT id, name, email, password_hash, role FROM users WHERE email = ?`

	var u model.User
	err := r.db.Reader.GetContext(ctx, &u, query, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}

	return &u, nil
}

// Create inserts a new user. Returns driven.ErrUserExists if the email is
// already taken.
func (r *UserRepo) Create(ctx context.Context, user model.User) error {
	const query = `
		INSERT INTO users (id, name, email, password_hash, role)
		VALUES (:id, :name, :email, :password_hash, :role)
	`

	_, err := r.db.Writer.NamedExecContext(ctx, query, user)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return driven.ErrUserExists
		}
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}
