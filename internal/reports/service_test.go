package reports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyshop-pos/toyshop/internal/shared"
)

type fakeRepo struct {
	summary   SalesSummary
	profit    ProfitSummary
	top       []ProductPerformance
	lowStock  int
	valuation Valuation
}

func (f *fakeRepo) SalesSummary(context.Context, Period) (SalesSummary, error) {
	return f.summary, nil
}

func (f *fakeRepo) ProfitSummary(context.Context, Period) (ProfitSummary, error) {
	return f.profit, nil
}

func (f *fakeRepo) TopProducts(_ context.Context, _ Period, limit int) ([]ProductPerformance, error) {
	if limit < len(f.top) {
		return f.top[:limit], nil
	}
	return f.top, nil
}

func (f *fakeRepo) CategoryPerformance(context.Context, Period) ([]CategoryPerformance, error) {
	return nil, nil
}

func (f *fakeRepo) CashierPerformance(context.Context, Period) ([]CashierPerformance, error) {
	return nil, nil
}

func (f *fakeRepo) HourlySales(context.Context, Period) ([]HourlySales, error) {
	return nil, nil
}

func (f *fakeRepo) Valuation(context.Context) (Valuation, error) {
	return f.valuation, nil
}

func (f *fakeRepo) LowStockCount(context.Context) (int, error) {
	return f.lowStock, nil
}

var (
	admin   = shared.Actor{ID: "admin-1", Role: shared.RoleAdmin}
	cashier = shared.Actor{ID: "cashier-1", Role: shared.RoleCashier}
)

func week() Period {
	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	return Period{From: from, To: from.AddDate(0, 0, 7)}
}

func TestProfitAdminOnly(t *testing.T) {
	svc := NewService(&fakeRepo{profit: ProfitSummary{Revenue: 100, Cost: 60, Profit: 40}})

	_, err := svc.ProfitSummary(context.Background(), cashier, week())
	assert.ErrorIs(t, err, shared.ErrForbidden)

	profit, err := svc.ProfitSummary(context.Background(), admin, week())
	require.NoError(t, err)
	assert.Equal(t, 40.0, profit.Profit)
}

func TestValuationAdminOnly(t *testing.T) {
	svc := NewService(&fakeRepo{valuation: Valuation{PurchaseValue: 500, SellingValue: 800}})

	_, err := svc.Valuation(context.Background(), cashier)
	assert.ErrorIs(t, err, shared.ErrForbidden)

	v, err := svc.Valuation(context.Background(), admin)
	require.NoError(t, err)
	assert.Equal(t, 800.0, v.SellingValue)
}

func TestPeriodValidation(t *testing.T) {
	svc := NewService(&fakeRepo{})

	_, err := svc.SalesSummary(context.Background(), Period{})
	assert.ErrorIs(t, err, shared.ErrValidation)

	from := time.Date(2026, 8, 7, 0, 0, 0, 0, time.UTC)
	_, err = svc.SalesSummary(context.Background(), Period{From: from, To: from})
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestDashboardAggregates(t *testing.T) {
	repo := &fakeRepo{
		summary:  SalesSummary{SaleCount: 3, Net: 99},
		profit:   ProfitSummary{Profit: 25},
		top:      []ProductPerformance{{ProductID: "p-1", ProductName: "Wooden Train", QuantitySold: 7}},
		lowStock: 2,
	}
	svc := NewService(repo)

	dashboard, err := svc.Dashboard(context.Background(), admin)
	require.NoError(t, err)
	assert.Equal(t, 3, dashboard.Today.SaleCount)
	assert.Equal(t, 25.0, dashboard.Profit.Profit)
	assert.Equal(t, 2, dashboard.LowStockCount)
	require.Len(t, dashboard.TopProducts, 1)
}

func TestDashboardHidesProfitFromCashiers(t *testing.T) {
	repo := &fakeRepo{profit: ProfitSummary{Profit: 25}}
	svc := NewService(repo)

	dashboard, err := svc.Dashboard(context.Background(), cashier)
	require.NoError(t, err)
	assert.Equal(t, 0.0, dashboard.Profit.Profit)
}

func TestTopProductsLimitDefault(t *testing.T) {
	repo := &fakeRepo{top: []ProductPerformance{{ProductID: "p-1"}, {ProductID: "p-2"}}}
	svc := NewService(repo)

	list, err := svc.TopProducts(context.Background(), week(), 0)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	list, err = svc.TopProducts(context.Background(), week(), 1)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
