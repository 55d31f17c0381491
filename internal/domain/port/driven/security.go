package driven

import (
	"time"

	"github.com/dispulse/sitecontent/internal/domain/model"
)

// PasswordHasher abstracts the slow salted password hash.
type PasswordHasher interface {
	Hash(password string) (string, error)
	// Compare returns nil if password matches hash.
	Compare(hash, password string) error
}

// TokenSigner issues and verifies signed bearer tokens.
type TokenSigner interface {
	Sign(user model.User, ttl time.Duration) (string, error)
	// Verify returns model.ErrUnauthorized for every failure.
	Verify(token string) (model.Claims, error)
}
