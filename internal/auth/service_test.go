package auth

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/toyshop-pos/toyshop/internal/shared"
)

type fakeRepo struct {
	users map[string]User
}

func (f *fakeRepo) FindByUsername(_ context.Context, username string) (User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return User{}, shared.ErrNotFound
}

func (f *fakeRepo) FindByID(_ context.Context, id string) (User, error) {
	u, ok := f.users[id]
	if !ok {
		return User{}, shared.ErrNotFound
	}
	return u, nil
}

func newTestService(t *testing.T, users ...User) *Service {
	t.Helper()
	repo := &fakeRepo{users: map[string]User{}}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	tokens := NewTokenManager("test-secret", time.Hour)
	return NewService(repo, tokens, slog.Default())
}

func testUser(t *testing.T, password string) User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return User{
		ID:           "u-1",
		Username:     "kasir1",
		FullName:     "Kasir Satu",
		PasswordHash: string(hash),
		Role:         shared.RoleCashier,
		Active:       true,
	}
}

func TestAuthenticateSuccess(t *testing.T) {
	svc := newTestService(t, testUser(t, "rahasia1"))

	session, err := svc.Authenticate(context.Background(), "kasir1", "rahasia1")
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, "u-1", session.Actor.ID)
	assert.Equal(t, shared.RoleCashier, session.Actor.Role)
}

func TestAuthenticateWrongPassword(t *testing.T) {
	svc := newTestService(t, testUser(t, "rahasia1"))

	_, err := svc.Authenticate(context.Background(), "kasir1", "salah")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestAuthenticateUnknownUser(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Authenticate(context.Background(), "ghost", "whatever")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestAuthenticateInactiveUser(t *testing.T) {
	user := testUser(t, "rahasia1")
	user.Active = false
	svc := newTestService(t, user)

	_, err := svc.Authenticate(context.Background(), "kasir1", "rahasia1")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestTokenRoundTrip(t *testing.T) {
	tokens := NewTokenManager("test-secret", time.Hour)
	actor := shared.Actor{ID: "u-9", Username: "admin", Role: shared.RoleAdmin}

	signed, expiresAt, err := tokens.Issue(actor)
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	parsed, err := tokens.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, actor, parsed)
}

func TestTokenWrongSecret(t *testing.T) {
	tokens := NewTokenManager("test-secret", time.Hour)
	other := NewTokenManager("other-secret", time.Hour)

	signed, _, err := tokens.Issue(shared.Actor{ID: "u-9", Username: "admin", Role: shared.RoleAdmin})
	require.NoError(t, err)

	_, err = other.Parse(signed)
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
}
