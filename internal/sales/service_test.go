package sales

import (
	"context"
	"log/slog"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyshop-pos/toyshop/internal/shared"
)

type fakeRepo struct {
	stock map[string]StockRow
	sales map[string]Sale
	items map[string][]SaleItem
}

func newFakeRepo(stock ...StockRow) *fakeRepo {
	f := &fakeRepo{
		stock: map[string]StockRow{},
		sales: map[string]Sale{},
		items: map[string][]SaleItem{},
	}
	for _, s := range stock {
		f.stock[s.ProductID] = s
	}
	return f
}

// WithTx stages all writes and applies them only when fn succeeds, matching
// the rollback behavior of the real transaction.
func (f *fakeRepo) WithTx(_ context.Context, fn func(tx TxRepository) error) error {
	staged := &fakeTx{
		stock: map[string]StockRow{},
		sales: map[string]Sale{},
		items: map[string][]SaleItem{},
	}
	for k, v := range f.stock {
		staged.stock[k] = v
	}
	for k, v := range f.sales {
		staged.sales[k] = v
	}
	for k, v := range f.items {
		staged.items[k] = append([]SaleItem(nil), v...)
	}

	if err := fn(staged); err != nil {
		return err
	}

	f.stock = staged.stock
	f.sales = staged.sales
	f.items = staged.items
	return nil
}

func (f *fakeRepo) Get(_ context.Context, id string) (Sale, error) {
	sale, ok := f.sales[id]
	if !ok {
		return Sale{}, shared.ErrNotFound
	}
	return sale, nil
}

func (f *fakeRepo) ListItems(_ context.Context, saleID string) ([]SaleItem, error) {
	return f.items[saleID], nil
}

func (f *fakeRepo) List(_ context.Context, filter ListFilter) ([]Sale, error) {
	var out []Sale
	for _, sale := range f.sales {
		if filter.CashierID != "" && sale.CashierID != filter.CashierID {
			continue
		}
		out = append(out, sale)
	}
	return out, nil
}

type fakeTx struct {
	stock map[string]StockRow
	sales map[string]Sale
	items map[string][]SaleItem
}

func (t *fakeTx) NextBillNumber(context.Context) (string, error) {
	max := 0
	for _, sale := range t.sales {
		if n, err := strconv.Atoi(sale.BillNumber); err == nil && n > max {
			max = n
		}
	}
	return strconv.Itoa(max + 1), nil
}

func (t *fakeTx) StockForUpdate(_ context.Context, productID string) (StockRow, error) {
	row, ok := t.stock[productID]
	if !ok {
		return StockRow{}, shared.ErrNotFound
	}
	return row, nil
}

func (t *fakeTx) DecrementStock(_ context.Context, productID string, quantity int) error {
	row := t.stock[productID]
	row.Quantity -= quantity
	t.stock[productID] = row
	return nil
}

func (t *fakeTx) InsertSale(_ context.Context, sale Sale) error {
	t.sales[sale.ID] = sale
	return nil
}

func (t *fakeTx) InsertSaleItem(_ context.Context, item SaleItem) error {
	t.items[item.SaleID] = append(t.items[item.SaleID], item)
	return nil
}

type fakeSettings struct {
	taxPct          float64
	discountAllowed bool
}

func (f *fakeSettings) TaxPercentage(context.Context) (float64, error) {
	return f.taxPct, nil
}

func (f *fakeSettings) CashierDiscountAllowed(context.Context) (bool, error) {
	return f.discountAllowed, nil
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

func stockRow(productID, name string, quantity int) StockRow {
	return StockRow{ProductID: productID, Name: name, PurchasePrice: 6, Quantity: quantity}
}

func newTestService(repo *fakeRepo, settings *fakeSettings) *Service {
	return NewService(repo, settings, &fakeAudit{}, slog.Default())
}

func TestCreateComputesTotals(t *testing.T) {
	repo := newFakeRepo(
		stockRow("p-1", "Wooden Train", 10),
		stockRow("p-2", "Rubber Duck", 10),
	)
	svc := newTestService(repo, &fakeSettings{taxPct: 10})

	sale, err := svc.Create(context.Background(), cashier, CreateSaleInput{
		Items: []CreateSaleItem{
			{ProductID: "p-1", Quantity: 2, UnitPrice: 10},
			{ProductID: "p-2", Quantity: 1, UnitPrice: 5},
		},
		Paid: 30,
	})
	require.NoError(t, err)

	assert.Equal(t, 25.0, sale.Subtotal)
	assert.Equal(t, 2.5, sale.Tax)
	assert.Equal(t, 27.5, sale.Total)
	assert.Equal(t, 2.5, sale.Change)
	assert.Equal(t, "1", sale.BillNumber)
	assert.Equal(t, PaymentMethodCash, sale.PaymentMethod)
	assert.Equal(t, 8, repo.stock["p-1"].Quantity)
	assert.Equal(t, 9, repo.stock["p-2"].Quantity)
	require.Len(t, sale.Items, 2)
	assert.Equal(t, 20.0, sale.Items[0].LineTotal)
}

func TestCreateCapturesCallerPrice(t *testing.T) {
	repo := newFakeRepo(stockRow("p-1", "Wooden Train", 10))
	svc := newTestService(repo, &fakeSettings{})

	// A register override below the catalog price is recorded as sent.
	sale, err := svc.Create(context.Background(), cashier, CreateSaleInput{
		Items: []CreateSaleItem{{ProductID: "p-1", Quantity: 1, UnitPrice: 7.25}},
		Paid:  10,
	})
	require.NoError(t, err)
	assert.Equal(t, 7.25, sale.Items[0].UnitPrice)
	assert.Equal(t, 7.25, sale.Total)
}

func TestCreateBillNumbersIncrement(t *testing.T) {
	repo := newFakeRepo(stockRow("p-1", "Wooden Train", 10))
	svc := newTestService(repo, &fakeSettings{})

	input := CreateSaleInput{
		Items: []CreateSaleItem{{ProductID: "p-1", Quantity: 1, UnitPrice: 10}},
		Paid:  100,
	}

	first, err := svc.Create(context.Background(), cashier, input)
	require.NoError(t, err)
	second, err := svc.Create(context.Background(), cashier, input)
	require.NoError(t, err)

	assert.Equal(t, "1", first.BillNumber)
	assert.Equal(t, "2", second.BillNumber)
}

func TestCreateInsufficientStockLeavesNoTrace(t *testing.T) {
	repo := newFakeRepo(stockRow("p-1", "Wooden Train", 1))
	svc := newTestService(repo, &fakeSettings{})

	_, err := svc.Create(context.Background(), cashier, CreateSaleInput{
		Items: []CreateSaleItem{{ProductID: "p-1", Quantity: 2, UnitPrice: 10}},
		Paid:  100,
	})
	require.ErrorIs(t, err, shared.ErrInsufficientStock)

	var stockErr *shared.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 1, stockErr.Available)
	assert.Equal(t, 2, stockErr.Requested)

	assert.Equal(t, 1, repo.stock["p-1"].Quantity)
	assert.Empty(t, repo.sales)
}

func TestCreateInsufficientPaymentRollsBack(t *testing.T) {
	repo := newFakeRepo(stockRow("p-1", "Wooden Train", 10))
	svc := newTestService(repo, &fakeSettings{})

	_, err := svc.Create(context.Background(), cashier, CreateSaleInput{
		Items: []CreateSaleItem{{ProductID: "p-1", Quantity: 2, UnitPrice: 12.50}},
		Paid:  20,
	})
	require.ErrorIs(t, err, shared.ErrInsufficientPayment)
	assert.Equal(t, 10, repo.stock["p-1"].Quantity)
	assert.Empty(t, repo.sales)
}

func TestCreateDiscountNeedsPermission(t *testing.T) {
	repo := newFakeRepo(stockRow("p-1", "Wooden Train", 10))
	svc := newTestService(repo, &fakeSettings{discountAllowed: false})

	input := CreateSaleInput{
		Items:    []CreateSaleItem{{ProductID: "p-1", Quantity: 1, UnitPrice: 12.50}},
		Discount: 2,
		Paid:     100,
	}

	_, err := svc.Create(context.Background(), cashier, input)
	assert.ErrorIs(t, err, shared.ErrForbidden)

	sale, err := svc.Create(context.Background(), admin, input)
	require.NoError(t, err)
	assert.Equal(t, 10.5, sale.Total)
}

func TestCreateDiscountAllowedCashier(t *testing.T) {
	repo := newFakeRepo(stockRow("p-1", "Wooden Train", 10))
	svc := newTestService(repo, &fakeSettings{discountAllowed: true})

	sale, err := svc.Create(context.Background(), cashier, CreateSaleInput{
		Items:    []CreateSaleItem{{ProductID: "p-1", Quantity: 1, UnitPrice: 12.50}},
		Discount: 2.5,
		Paid:     10,
	})
	require.NoError(t, err)
	assert.Equal(t, 10.0, sale.Total)
	assert.Equal(t, 0.0, sale.Change)
}

func TestCreateDiscountExceedsSubtotal(t *testing.T) {
	repo := newFakeRepo(stockRow("p-1", "Wooden Train", 10))
	svc := newTestService(repo, &fakeSettings{discountAllowed: true})

	_, err := svc.Create(context.Background(), cashier, CreateSaleInput{
		Items:    []CreateSaleItem{{ProductID: "p-1", Quantity: 1, UnitPrice: 12.50}},
		Discount: 50,
		Paid:     100,
	})
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestCreateRejectsEmptyAndInvalidLines(t *testing.T) {
	svc := newTestService(newFakeRepo(), &fakeSettings{})

	_, err := svc.Create(context.Background(), cashier, CreateSaleInput{Paid: 10})
	assert.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.Create(context.Background(), cashier, CreateSaleInput{
		Items: []CreateSaleItem{{ProductID: "p-1", Quantity: 0, UnitPrice: 10}},
		Paid:  10,
	})
	assert.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.Create(context.Background(), cashier, CreateSaleInput{
		Items: []CreateSaleItem{{ProductID: "p-1", Quantity: 1, UnitPrice: -1}},
		Paid:  10,
	})
	assert.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.Create(context.Background(), cashier, CreateSaleInput{
		Items: []CreateSaleItem{
			{ProductID: "p-1", Quantity: 1, UnitPrice: 10},
			{ProductID: "p-1", Quantity: 2, UnitPrice: 10},
		},
		Paid: 10,
	})
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestGetScopedToOwningCashier(t *testing.T) {
	repo := newFakeRepo(stockRow("p-1", "Wooden Train", 10))
	svc := newTestService(repo, &fakeSettings{})

	sale, err := svc.Create(context.Background(), cashier, CreateSaleInput{
		Items: []CreateSaleItem{{ProductID: "p-1", Quantity: 1, UnitPrice: 10}},
		Paid:  100,
	})
	require.NoError(t, err)

	other := shared.Actor{ID: "cashier-2", Username: "kasir2", Role: shared.RoleCashier}
	_, err = svc.Get(context.Background(), other, sale.ID)
	assert.ErrorIs(t, err, shared.ErrForbidden)

	got, err := svc.Get(context.Background(), admin, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, sale.ID, got.ID)

	got, err = svc.Get(context.Background(), cashier, sale.ID)
	require.NoError(t, err)
	assert.Len(t, got.Items, 1)
}

func TestListScopesCashierToOwnSales(t *testing.T) {
	repo := newFakeRepo(stockRow("p-1", "Wooden Train", 10))
	svc := newTestService(repo, &fakeSettings{})

	input := CreateSaleInput{
		Items: []CreateSaleItem{{ProductID: "p-1", Quantity: 1, UnitPrice: 10}},
		Paid:  100,
	}
	_, err := svc.Create(context.Background(), cashier, input)
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), admin, input)
	require.NoError(t, err)

	mine, err := svc.List(context.Background(), cashier, ListFilter{})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, cashier.ID, mine[0].CashierID)

	all, err := svc.List(context.Background(), admin, ListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
