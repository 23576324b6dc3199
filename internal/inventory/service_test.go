package inventory

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyshop-pos/toyshop/internal/shared"
)

type fakeRepo struct {
	items map[string]Item
}

func newFakeRepo(items ...Item) *fakeRepo {
	f := &fakeRepo{items: map[string]Item{}}
	for _, it := range items {
		f.items[it.ProductID] = it
	}
	return f
}

func (f *fakeRepo) Get(_ context.Context, productID string) (Item, error) {
	it, ok := f.items[productID]
	if !ok {
		return Item{}, shared.ErrNotFound
	}
	return it, nil
}

func (f *fakeRepo) List(context.Context) ([]Item, error) {
	out := make([]Item, 0, len(f.items))
	for _, it := range f.items {
		out = append(out, it)
	}
	return out, nil
}

func (f *fakeRepo) ListLowStock(context.Context) ([]Item, error) {
	var out []Item
	for _, it := range f.items {
		if it.LowStock() {
			out = append(out, it)
		}
	}
	return out, nil
}

func (f *fakeRepo) Adjust(_ context.Context, productID string, mode AdjustMode, amount int) (int, error) {
	it, ok := f.items[productID]
	if !ok {
		return 0, shared.ErrNotFound
	}
	switch mode {
	case ModeAdd:
		it.Quantity += amount
	case ModeSubtract:
		it.Quantity -= amount
		if it.Quantity < 0 {
			it.Quantity = 0
		}
	case ModeSet:
		it.Quantity = amount
	}
	f.items[productID] = it
	return it.Quantity, nil
}

type fakeAudit struct {
	entries []shared.AuditLog
}

func (f *fakeAudit) Record(_ context.Context, entry shared.AuditLog) error {
	f.entries = append(f.entries, entry)
	return nil
}

var admin = shared.Actor{ID: "admin-1", Role: shared.RoleAdmin}

func TestAdjustAdd(t *testing.T) {
	repo := newFakeRepo(Item{ProductID: "p-1", Quantity: 4})
	svc := NewService(repo, &fakeAudit{}, slog.Default())

	item, err := svc.Adjust(context.Background(), admin, AdjustInput{ProductID: "p-1", Mode: ModeAdd, Amount: 6})
	require.NoError(t, err)
	assert.Equal(t, 10, item.Quantity)
}

func TestAdjustSubtractClampsAtZero(t *testing.T) {
	repo := newFakeRepo(Item{ProductID: "p-1", Quantity: 3})
	svc := NewService(repo, &fakeAudit{}, slog.Default())

	item, err := svc.Adjust(context.Background(), admin, AdjustInput{ProductID: "p-1", Mode: ModeSubtract, Amount: 10})
	require.NoError(t, err)
	assert.Equal(t, 0, item.Quantity)
}

func TestAdjustSet(t *testing.T) {
	repo := newFakeRepo(Item{ProductID: "p-1", Quantity: 3})
	svc := NewService(repo, &fakeAudit{}, slog.Default())

	item, err := svc.Adjust(context.Background(), admin, AdjustInput{ProductID: "p-1", Mode: ModeSet, Amount: 42})
	require.NoError(t, err)
	assert.Equal(t, 42, item.Quantity)
}

func TestAdjustRejectsNegativeAmount(t *testing.T) {
	svc := NewService(newFakeRepo(), &fakeAudit{}, slog.Default())

	_, err := svc.Adjust(context.Background(), admin, AdjustInput{ProductID: "p-1", Mode: ModeAdd, Amount: -1})
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestAdjustRejectsUnknownMode(t *testing.T) {
	svc := NewService(newFakeRepo(), &fakeAudit{}, slog.Default())

	_, err := svc.Adjust(context.Background(), admin, AdjustInput{ProductID: "p-1", Mode: "void", Amount: 1})
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestAdjustRejectsNonAdmin(t *testing.T) {
	svc := NewService(newFakeRepo(), &fakeAudit{}, slog.Default())
	cashier := shared.Actor{ID: "c-1", Role: shared.RoleCashier}

	_, err := svc.Adjust(context.Background(), cashier, AdjustInput{ProductID: "p-1", Mode: ModeAdd, Amount: 1})
	assert.ErrorIs(t, err, shared.ErrForbidden)
}

func TestAdjustRecordsAudit(t *testing.T) {
	repo := newFakeRepo(Item{ProductID: "p-1", Quantity: 0})
	audit := &fakeAudit{}
	svc := NewService(repo, audit, slog.Default())

	_, err := svc.Adjust(context.Background(), admin, AdjustInput{ProductID: "p-1", Mode: ModeAdd, Amount: 5, Reason: "restock"})
	require.NoError(t, err)
	require.Len(t, audit.entries, 1)
	assert.Equal(t, "inventory.adjust", audit.entries[0].Action)
	assert.Equal(t, 5, audit.entries[0].Meta["result"])
}

func TestListRejectsNonAdmin(t *testing.T) {
	repo := newFakeRepo(Item{ProductID: "p-1", Quantity: 4})
	svc := NewService(repo, &fakeAudit{}, slog.Default())
	cashier := shared.Actor{ID: "c-1", Role: shared.RoleCashier}

	_, err := svc.List(context.Background(), cashier)
	assert.ErrorIs(t, err, shared.ErrForbidden)

	items, err := svc.List(context.Background(), admin)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestLowStockFilter(t *testing.T) {
	repo := newFakeRepo(
		Item{ProductID: "p-1", Quantity: 2, MinStock: 5},
		Item{ProductID: "p-2", Quantity: 9, MinStock: 5},
	)
	svc := NewService(repo, &fakeAudit{}, slog.Default())

	items, err := svc.ListLowStock(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "p-1", items[0].ProductID)
}
