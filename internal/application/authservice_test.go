package application_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dispulse/sitecontent/internal/application"
	"github.com/dispulse/sitecontent/internal/domain/model"
)

func seededOwner() model.User {
	return model.User{
		ID:           "u1",
		Name:         "Owner",
		Email:        "owner@dispulse.co",
		PasswordHash: "hashed:correct",
		Role:         "owner",
	}
}

func TestAuthService_Authenticate_Success(t *testing.T) {
	signer := &fakeSigner{}
	svc := application.NewAuthService(newFakeUserStore(seededOwner()), plainHasher{}, signer, 0)

	token, user, err := svc.Authenticate(context.Background(), "owner@dispulse.co", "correct")

	require.NoError(t, err)
	assert.Equal(t, "token-for-u1", token)
	assert.Equal(t, "Owner", user.Name)
	require.Len(t, signer.ttls, 1)
	assert.Equal(t, application.DefaultTokenTTL, signer.ttls[0])
}

func TestAuthService_Authenticate_UniformFailures(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
	}{
		{name: "unknown email", email: "nobody@dispulse.co", password: "correct"},
		{name: "wrong password", email: "owner@dispulse.co", password: "wrong"},
		{name: "empty email", email: "", password: "correct"},
		{name: "empty password", email: "owner@dispulse.co", password: ""},
	}

	svc := application.NewAuthService(newFakeUserStore(seededOwner()), plainHasher{}, &fakeSigner{}, 0)

	var messages []string
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			token, _, err := svc.Authenticate(context.Background(), tc.email, tc.password)

			require.Error(t, err)
			assert.Empty(t, token)
			assert.Equal(t, model.KindUnauthorized, model.KindOf(err))
			messages = append(messages, err.Error())
		})
	}

	for _, m := range messages {
		assert.Equal(t, messages[0], m, "all login failures must be indistinguishable")
	}
}

func TestAuthService_Authenticate_UnknownEmailStillComparesHash(t *testing.T) {
	hasher := &countingHasher{}
	svc := application.NewAuthService(newFakeUserStore(seededOwner()), hasher, &fakeSigner{}, 0)

	_, _, err := svc.Authenticate(context.Background(), "nobody@dispulse.co", "guess")
	require.Error(t, err)
	_, _, err = svc.Authenticate(context.Background(), "owner@dispulse.co", "wrong")
	require.Error(t, err)

	require.Len(t, hasher.compared, 2, "unknown email and wrong password both run a comparison")
	assert.Equal(t, "hashed:unknown-user-placeholder", hasher.compared[0])
	assert.Equal(t, "hashed:correct", hasher.compared[1])
}

func TestAuthService_Authenticate_StoreErrorIsInternal(t *testing.T) {
	store := newFakeUserStore()
	store.getErr = errors.New("disk gone")
	svc := application.NewAuthService(store, plainHasher{}, &fakeSigner{}, 0)

	_, _, err := svc.Authenticate(context.Background(), "owner@dispulse.co", "correct")

	assert.Equal(t, model.KindInternal, model.KindOf(err))
}

func TestAuthService_Verify(t *testing.T) {
	svc := application.NewAuthService(newFakeUserStore(), plainHasher{}, &fakeSigner{}, 0)

	claims, err := svc.Verify("token-for-u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)

	_, err = svc.Verify("garbage")
	require.Error(t, err)
	assert.Equal(t, model.ErrUnauthorized().Error(), err.Error())
}
