package users

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/toyshop-pos/toyshop/internal/shared"
)

type fakeRepo struct {
	users map[string]User
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{users: map[string]User{}}
}

func (f *fakeRepo) List(context.Context) ([]User, error) {
	out := make([]User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeRepo) Get(_ context.Context, id string) (User, error) {
	u, ok := f.users[id]
	if !ok {
		return User{}, shared.ErrNotFound
	}
	return u, nil
}

func (f *fakeRepo) Insert(_ context.Context, u User) error {
	for _, existing := range f.users {
		if existing.Username == u.Username {
			return shared.ErrDuplicate
		}
	}
	f.users[u.ID] = u
	return nil
}

func (f *fakeRepo) Update(_ context.Context, u User) error {
	if _, ok := f.users[u.ID]; !ok {
		return shared.ErrNotFound
	}
	f.users[u.ID] = u
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.users[id]; !ok {
		return shared.ErrNotFound
	}
	delete(f.users, id)
	return nil
}

type fakeAudit struct {
	entries []shared.AuditLog
}

func (f *fakeAudit) Record(_ context.Context, entry shared.AuditLog) error {
	f.entries = append(f.entries, entry)
	return nil
}

var (
	admin   = shared.Actor{ID: "admin-1", Username: "admin", Role: shared.RoleAdmin}
	cashier = shared.Actor{ID: "cashier-1", Username: "kasir1", Role: shared.RoleCashier}
)

func TestCreateHashesPassword(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, &fakeAudit{}, slog.Default())

	user, err := svc.Create(context.Background(), admin, CreateUserInput{
		Username: "kasir2",
		FullName: "Kasir Dua",
		Password: "rahasia1",
		Role:     shared.RoleCashier,
	})
	require.NoError(t, err)
	assert.NotEqual(t, "rahasia1", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("rahasia1")))
	assert.True(t, user.Active)
}

func TestCreateRejectsNonAdmin(t *testing.T) {
	svc := NewService(newFakeRepo(), &fakeAudit{}, slog.Default())

	_, err := svc.Create(context.Background(), cashier, CreateUserInput{
		Username: "kasir2",
		FullName: "Kasir Dua",
		Password: "rahasia1",
		Role:     shared.RoleCashier,
	})
	assert.ErrorIs(t, err, shared.ErrForbidden)
}

func TestCreateDuplicateUsername(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, &fakeAudit{}, slog.Default())

	input := CreateUserInput{Username: "kasir2", FullName: "Kasir Dua", Password: "rahasia1", Role: shared.RoleCashier}
	_, err := svc.Create(context.Background(), admin, input)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), admin, input)
	assert.ErrorIs(t, err, shared.ErrDuplicate)
}

func TestCreateRejectsShortPassword(t *testing.T) {
	svc := NewService(newFakeRepo(), &fakeAudit{}, slog.Default())

	_, err := svc.Create(context.Background(), admin, CreateUserInput{
		Username: "kasir2",
		FullName: "Kasir Dua",
		Password: "abc",
		Role:     shared.RoleCashier,
	})
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestUpdateChangesOnlyGivenFields(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, &fakeAudit{}, slog.Default())

	created, err := svc.Create(context.Background(), admin, CreateUserInput{
		Username: "kasir2", FullName: "Kasir Dua", Password: "rahasia1", Role: shared.RoleCashier,
	})
	require.NoError(t, err)

	inactive := false
	updated, err := svc.Update(context.Background(), admin, created.ID, UpdateUserInput{Active: &inactive})
	require.NoError(t, err)
	assert.False(t, updated.Active)
	assert.Equal(t, created.FullName, updated.FullName)
	assert.Equal(t, created.PasswordHash, updated.PasswordHash)
}

func TestDeleteSelfRejected(t *testing.T) {
	repo := newFakeRepo()
	repo.users[admin.ID] = User{ID: admin.ID, Username: "admin"}
	svc := NewService(repo, &fakeAudit{}, slog.Default())

	err := svc.Delete(context.Background(), admin, admin.ID)
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestDeleteRecordsAudit(t *testing.T) {
	repo := newFakeRepo()
	repo.users["u-2"] = User{ID: "u-2", Username: "kasir2"}
	audit := &fakeAudit{}
	svc := NewService(repo, audit, slog.Default())

	require.NoError(t, svc.Delete(context.Background(), admin, "u-2"))
	require.Len(t, audit.entries, 1)
	assert.Equal(t, "user.delete", audit.entries[0].Action)
	assert.Equal(t, "u-2", audit.entries[0].EntityID)
}
