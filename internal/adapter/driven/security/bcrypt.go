// Package security implements the password hashing and token signing ports.
package security

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/dispulse/sitecontent/internal/domain/port/driven"
)

// DefaultBcryptCost matches the cost used for seeded owner accounts.
const DefaultBcryptCost = 10

// Compile-time interface satisfaction check.
var _ driven.PasswordHasher = (*BcryptHasher)(nil)

// BcryptHasher implements driven.PasswordHasher with bcrypt.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a hasher with the given cost, or DefaultBcryptCost
// when cost is not positive.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost <= 0 {
		cost = DefaultBcryptCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt hash: %w", err)
	}
	return string(b), nil
}

func (h *BcryptHasher) Compare(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
