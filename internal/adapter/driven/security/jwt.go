package security

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dispulse/sitecontent/internal/domain/model"
	"github.com/dispulse/sitecontent/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.TokenSigner = (*JWTSigner)(nil)

// JWTSigner signs and verifies HS256 bearer tokens with a server-held secret.
type JWTSigner struct {
	secret []byte
	now    func() time.Time
}

// NewJWTSigner creates a signer for the given secret.
func NewJWTSigner(secret string) *JWTSigner {
	return &JWTSigner{secret: []byte(secret), now: time.Now}
}

type tokenClaims struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Sign issues a token for user that expires after ttl.
func (s *JWTSigner) Sign(user model.User, ttl time.Duration) (string, error) {
	now := s.now()
	claims := tokenClaims{
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify validates signature and expiry. Every failure, including an empty
// token, yields model.ErrUnauthorized with no hint of which check failed.
func (s *JWTSigner) Verify(token string) (model.Claims, error) {
	if token == "" {
		return model.Claims{}, model.ErrUnauthorized()
	}

	parsed, err := jwt.ParseWithClaims(token, &tokenClaims{}, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return model.Claims{}, model.ErrUnauthorized()
	}

	claims, ok := parsed.Claims.(*tokenClaims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return model.Claims{}, model.ErrUnauthorized()
	}

	out := model.Claims{
		Subject:   claims.Subject,
		Name:      claims.Name,
		Email:     claims.Email,
		Role:      claims.Role,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	return out, nil
}
