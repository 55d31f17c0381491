package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rs/xid"

	"github.com/dispulse/sitecontent/internal/config"
	"github.com/dispulse/sitecontent/internal/domain/model"
	"github.com/dispulse/sitecontent/internal/domain/port/driven"
)

// SeedReport counts the outcome of one seeding run.
type SeedReport struct {
	Created int
	Skipped int
}

// UserSeeder creates operator accounts from configuration at startup. It
// never updates an existing account, so running it twice is harmless.
type UserSeeder struct {
	users  driven.UserStore
	hasher driven.PasswordHasher
	logger *slog.Logger
	newID  func() string
}

// NewUserSeeder creates a new UserSeeder.
func NewUserSeeder(users driven.UserStore, hasher driven.PasswordHasher, logger *slog.Logger) *UserSeeder {
	return &UserSeeder{
		users:  users,
		hasher: hasher,
		logger: logger,
		newID:  func() string { return xid.New().String() },
	}
}

// Seed creates each candidate whose email is not yet registered. Candidates
// missing a name, email or password are skipped, as is one whose password
// cannot be hashed (bcrypt rejects passwords over 72 bytes).
func (s *UserSeeder) Seed(ctx context.Context, candidates []config.SeedUser) (SeedReport, error) {
	var report SeedReport

	for _, c := range candidates {
		if c.Name == "" || c.Email == "" || c.Password == "" {
			report.Skipped++
			continue
		}

		existing, err := s.users.GetByEmail(ctx, c.Email)
		if err != nil {
			return report, fmt.Errorf("lookup seed user: %w", err)
		}
		if existing != nil {
			report.Skipped++
			continue
		}

		hash, err := s.hasher.Hash(c.Password)
		if err != nil {
			s.logger.Warn("skipping seed user with unusable password", "email", c.Email, "error", err)
			report.Skipped++
			continue
		}

		role := c.Role
		if role == "" {
			role = model.DefaultRole
		}

		err = s.users.Create(ctx, model.User{
			ID:           s.newID(),
			Name:         c.Name,
			Email:        c.Email,
			PasswordHash: hash,
			Role:         role,
		})
		if errors.Is(err, driven.ErrUserExists) {
			report.Skipped++
			continue
		}
		if err != nil {
			return report, fmt.Errorf("create seed user: %w", err)
		}

		report.Created++
	}

	s.logger.Info("user seed complete", "created", report.Created, "skipped", report.Skipped)
	return report, nil
}
