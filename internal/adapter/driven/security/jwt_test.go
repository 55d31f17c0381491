package security

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dispulse/sitecontent/internal/domain/model"
)

var testUser = model.User{ID: "u1", Name: "Ada", Email: "ada@dispulse.co", Role: "owner"}

func TestJWTSigner_SignAndVerify(t *testing.T) {
	s := NewJWTSigner("secret")

	tok, err := s.Sign(testUser, 12*time.Hour)
	require.NoError(t, err)

	claims, err := s.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)
	assert.Equal(t, "Ada", claims.Name)
	assert.Equal(t, "ada@dispulse.co", claims.Email)
	assert.Equal(t, "owner", claims.Role)
	assert.WithinDuration(t, time.Now(), claims.IssuedAt, 5*time.Second)
	assert.WithinDuration(t, time.Now().Add(12*time.Hour), claims.ExpiresAt, 5*time.Second)
}

func TestJWTSigner_VerifyFailsAfterExpiry(t *testing.T) {
	issued := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	s := NewJWTSigner("secret")
	s.now = func() time.Time { return issued }

	tok, err := s.Sign(testUser, 12*time.Hour)
	require.NoError(t, err)

	s.now = func() time.Time { return issued.Add(11 * time.Hour) }
	_, err = s.Verify(tok)
	require.NoError(t, err)

	s.now = func() time.Time { return issued.Add(12*time.Hour + time.Second) }
	_, err = s.Verify(tok)
	require.Error(t, err)
	assert.Equal(t, model.ErrUnauthorized(), err)
}

func TestJWTSigner_VerifyUniformFailures(t *testing.T) {
	good := NewJWTSigner("secret")
	other := NewJWTSigner("other-secret")

	wrongSecret, err := other.Sign(testUser, time.Hour)
	require.NoError(t, err)

	expired, err := good.Sign(testUser, -time.Minute)
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "u1",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "u1"}).SignedString([]byte("secret"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "missing", token: ""},
		{name: "malformed", token: "not.a.jwt"},
		{name: "wrong secret", token: wrongSecret},
		{name: "expired", token: expired},
		{name: "alg none", token: none},
		{name: "no expiry", token: noExp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := good.Verify(tt.token)
			require.Error(t, err)
			assert.Equal(t, model.ErrUnauthorized(), err)
		})
	}
}
