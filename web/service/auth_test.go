package service

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolhub/portal/storage"
	"github.com/schoolhub/portal/storage/model"
)

func newTestAuth(t *testing.T) (*AuthService, *storage.Store) {
	t.Helper()
	store := storage.NewStore(t.TempDir())
	return NewAuthService(store, "test-secret", time.Hour), store
}

func TestRegisterValidation(t *testing.T) {
	auth, _ := newTestAuth(t)

	tests := []struct {
		name     string
		login    string
		password string
	}{
		{"short login", "ab", "password1"},
		{"short password", "alice", "12345"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := auth.Register(tt.login, tt.password)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestRegisterDuplicateLogin(t *testing.T) {
	auth, _ := newTestAuth(t)

	_, err := auth.Register("alice", "password1")
	require.NoError(t, err)

	_, err = auth.Register("alice", "password2")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRegisterDefaults(t *testing.T) {
	auth, _ := newTestAuth(t)

	user, err := auth.Register("alice", "password1")
	require.NoError(t, err)
	assert.Equal(t, model.RoleUser, user.Role)
	assert.Equal(t, model.NoGroup, user.Group)
	assert.NotEmpty(t, user.Id)
	assert.NotEqual(t, "password1", user.PasswordHash)
}

func TestLoginAndVerifyRoundTrip(t *testing.T) {
	auth, store := newTestAuth(t)

	_, err := auth.Register("alice", "password1")
	require.NoError(t, err)

	// admin assigns role and group; verify must reflect the update
	_, err = store.Users.Update(func(users []model.User) ([]model.User, error) {
		for i := range users {
			if users[i].Login == "alice" {
				users[i].Role = model.RoleStudent
				users[i].Group = "10a"
			}
		}
		return users, nil
	})
	require.NoError(t, err)

	token, user, err := auth.Login("alice", "password1")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, model.RoleStudent, user.Role)

	identity, err := auth.Authenticate(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", identity.Login)
	assert.Equal(t, model.RoleStudent, identity.Role)
	assert.Equal(t, "10a", identity.Group)
}

func TestLoginBadCredentials(t *testing.T) {
	auth, _ := newTestAuth(t)

	_, err := auth.Register("alice", "password1")
	require.NoError(t, err)

	_, _, err = auth.Login("alice", "wrong")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, _, err = auth.Login("nobody", "password1")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestAuthenticateInvalidToken(t *testing.T) {
	auth, _ := newTestAuth(t)

	_, err := auth.Authenticate("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthenticateExpiredToken(t *testing.T) {
	store := storage.NewStore(t.TempDir())
	auth := NewAuthService(store, "test-secret", -time.Minute)

	_, err := auth.Register("alice", "password1")
	require.NoError(t, err)

	token, _, err := auth.Login("alice", "password1")
	require.NoError(t, err)

	_, err = auth.Authenticate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthenticateDeletedUser(t *testing.T) {
	auth, store := newTestAuth(t)

	_, err := auth.Register("alice", "password1")
	require.NoError(t, err)
	token, _, err := auth.Login("alice", "password1")
	require.NoError(t, err)

	_, err = store.Users.Update(func(users []model.User) ([]model.User, error) {
		return nil, nil
	})
	require.NoError(t, err)

	_, err = auth.Authenticate(token)
	if !errors.Is(err, ErrUnknownUser) {
		t.Errorf("expected ErrUnknownUser, got %v", err)
	}
}
