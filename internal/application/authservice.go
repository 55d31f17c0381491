package application

import (
	"context"
	"sync"
	"time"

	"github.com/dispulse/sitecontent/internal/domain/model"
	"github.com/dispulse/sitecontent/internal/domain/port/driven"
)

// DefaultTokenTTL is the lifetime of an issued bearer token.
const DefaultTokenTTL = 12 * time.Hour

// AuthService exchanges operator credentials for signed bearer tokens and
// verifies those tokens. It is stateless: there is no session store and no
// revocation.
type AuthService struct {
	users  driven.UserStore
	hasher driven.PasswordHasher
	signer driven.TokenSigner
	ttl    time.Duration

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService creates a new AuthService. A non-positive ttl falls back to
// DefaultTokenTTL.
func NewAuthService(users driven.UserStore, hasher driven.PasswordHasher, signer driven.TokenSigner, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &AuthService{
		users:  users,
		hasher: hasher,
		signer: signer,
		ttl:    ttl,
	}
}

// Authenticate checks email and password and returns a signed token plus the
// matching user. Unknown email, wrong password and empty fields all fail with
// the same invalid-credentials error.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (string, model.User, error) {
	if email == "" || password == "" {
		return "", model.User{}, model.ErrInvalidCredentials()
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return "", model.User{}, model.ErrInternal(err)
	}
	if user == nil {
		// An unknown email costs one comparison, same as a wrong password.
		if dummy := s.placeholderHash(); dummy != "" {
			_ = s.hasher.Compare(dummy, password)
		}
		return "", model.User{}, model.ErrInvalidCredentials()
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return "", model.User{}, model.ErrInvalidCredentials()
	}

	token, err := s.signer.Sign(*user, s.ttl)
	if err != nil {
		return "", model.User{}, model.ErrInternal(err)
	}

	return token, *user, nil
}

// placeholderHash returns a hash, produced once with the configured hasher,
// that no login password is expected to match.
func (s *AuthService) placeholderHash() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash("unknown-user-placeholder")
		if err == nil {
			s.dummyHash = hash
		}
	})
	return s.dummyHash
}

// Verify validates a bearer token and returns its claims. Every failure is
// reported as the same unauthorized error.
func (s *AuthService) Verify(token string) (model.Claims, error) {
	claims, err := s.signer.Verify(token)
	if err != nil {
		return model.Claims{}, model.ErrUnauthorized()
	}
	return claims, nil
}
