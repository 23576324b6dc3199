package settings

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyshop-pos/toyshop/internal/shared"
)

type fakeRepo struct {
	values map[string]string
	reads  int
	getErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{values: map[string]string{}}
}

func (f *fakeRepo) Get(_ context.Context, key string) (string, error) {
	f.reads++
	if f.getErr != nil {
		return "", f.getErr
	}
	value, ok := f.values[key]
	if !ok {
		return "", shared.ErrNotFound
	}
	return value, nil
}

func (f *fakeRepo) All(context.Context) (map[string]string, error) {
	out := map[string]string{}
	for k, v := range f.values {
		out[k] = v
	}
	return out, nil
}

func (f *fakeRepo) Set(_ context.Context, key, value string) error {
	f.values[key] = value
	return nil
}

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	return NewCache(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
}

var admin = shared.Actor{ID: "admin-1", Role: shared.RoleAdmin}

func TestTaxPercentageDefaultsToZero(t *testing.T) {
	svc := NewService(newFakeRepo(), nil)

	pct, err := svc.TaxPercentage(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0.0, pct)
}

func TestTaxPercentageReadsStoredValue(t *testing.T) {
	repo := newFakeRepo()
	repo.values[KeyTaxPercentage] = "10"
	svc := NewService(repo, nil)

	pct, err := svc.TaxPercentage(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10.0, pct)
}

func TestCashierDiscountDefaultsToFalse(t *testing.T) {
	svc := NewService(newFakeRepo(), nil)

	allowed, err := svc.CashierDiscountAllowed(context.Background())
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestSetRejectsInvalidTax(t *testing.T) {
	svc := NewService(newFakeRepo(), nil)

	assert.ErrorIs(t, svc.Set(context.Background(), admin, KeyTaxPercentage, "abc"), shared.ErrValidation)
	assert.ErrorIs(t, svc.Set(context.Background(), admin, KeyTaxPercentage, "-1"), shared.ErrValidation)
	assert.ErrorIs(t, svc.Set(context.Background(), admin, KeyTaxPercentage, "101"), shared.ErrValidation)
	assert.NoError(t, svc.Set(context.Background(), admin, KeyTaxPercentage, "11"))
}

func TestAllRejectsNonAdmin(t *testing.T) {
	repo := newFakeRepo()
	repo.values[KeyCashierDiscountAllowed] = "true"
	svc := NewService(repo, nil)
	cashier := shared.Actor{ID: "c-1", Role: shared.RoleCashier}

	_, err := svc.All(context.Background(), cashier)
	assert.ErrorIs(t, err, shared.ErrForbidden)
}

func TestAllFillsDefaults(t *testing.T) {
	repo := newFakeRepo()
	repo.values[KeyStoreName] = "Toko Mainan"
	svc := NewService(repo, nil)

	all, err := svc.All(context.Background(), admin)
	require.NoError(t, err)
	assert.Equal(t, "Toko Mainan", all[KeyStoreName])
	assert.Equal(t, "0", all[KeyTaxPercentage])
	assert.Equal(t, "false", all[KeyCashierDiscountAllowed])
}

func TestGetSurfacesStorageErrors(t *testing.T) {
	repo := newFakeRepo()
	repo.getErr = errors.New("connection refused")
	svc := NewService(repo, nil)

	_, err := svc.Get(context.Background(), KeyTaxPercentage)
	assert.ErrorContains(t, err, "connection refused")

	_, err = svc.TaxPercentage(context.Background())
	assert.Error(t, err)
}

func TestSetRejectsNonAdmin(t *testing.T) {
	svc := NewService(newFakeRepo(), nil)
	cashier := shared.Actor{ID: "c-1", Role: shared.RoleCashier}

	err := svc.Set(context.Background(), cashier, KeyStoreName, "Toko Mainan")
	assert.ErrorIs(t, err, shared.ErrForbidden)
}

func TestCacheServesRepeatReads(t *testing.T) {
	repo := newFakeRepo()
	repo.values[KeyStoreName] = "Toko Mainan"
	svc := NewService(repo, newTestCache(t))

	for range 3 {
		value, err := svc.Get(context.Background(), KeyStoreName)
		require.NoError(t, err)
		assert.Equal(t, "Toko Mainan", value)
	}
	assert.Equal(t, 1, repo.reads)
}

func TestSetInvalidatesCache(t *testing.T) {
	repo := newFakeRepo()
	repo.values[KeyStoreName] = "Toko Mainan"
	svc := NewService(repo, newTestCache(t))

	_, err := svc.Get(context.Background(), KeyStoreName)
	require.NoError(t, err)

	require.NoError(t, svc.Set(context.Background(), admin, KeyStoreName, "Toko Baru"))

	value, err := svc.Get(context.Background(), KeyStoreName)
	require.NoError(t, err)
	assert.Equal(t, "Toko Baru", value)
}
