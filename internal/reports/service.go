package reports

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/toyshop-pos/toyshop/internal/shared"
)

// RepositoryPort abstracts the report projections for the service.
type RepositoryPort interface {
	SalesSummary(ctx context.Context, period Period) (SalesSummary, error)
	ProfitSummary(ctx context.Context, period Period) (ProfitSummary, error)
	TopProducts(ctx context.Context, period Period, limit int) ([]ProductPerformance, error)
	CategoryPerformance(ctx context.Context, period Period) ([]CategoryPerformance, error)
	CashierPerformance(ctx context.Context, period Period) ([]CashierPerformance, error)
	HourlySales(ctx context.Context, period Period) ([]HourlySales, error)
	Valuation(ctx context.Context) (Valuation, error)
	LowStockCount(ctx context.Context) (int, error)
}

// Service serves reports. Profit figures are admin-only.
type Service struct {
	repo RepositoryPort
	now  func() time.Time
}

// NewService constructs the reports service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Today bounds the current calendar day.
func (s *Service) Today() Period {
	now := s.now().UTC()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return Period{From: from, To: from.AddDate(0, 0, 1)}
}

func validatePeriod(period Period) error {
	if period.From.IsZero() || period.To.IsZero() {
		return shared.ValidationError("report period is required")
	}
	if !period.To.After(period.From) {
		return shared.ValidationError("report period end must be after its start")
	}
	return nil
}

// SalesSummary aggregates sales over the period.
func (s *Service) SalesSummary(ctx context.Context, period Period) (SalesSummary, error) {
	if err := validatePeriod(period); err != nil {
		return SalesSummary{}, err
	}
	return s.repo.SalesSummary(ctx, period)
}

// ProfitSummary computes profit over the period. Admin-only: purchase
// prices stay hidden from cashiers.
func (s *Service) ProfitSummary(ctx context.Context, actor shared.Actor, period Period) (ProfitSummary, error) {
	if !actor.IsAdmin() {
		return ProfitSummary{}, shared.ErrForbidden
	}
	if err := validatePeriod(period); err != nil {
		return ProfitSummary{}, err
	}
	return s.repo.ProfitSummary(ctx, period)
}

// TopProducts lists the best sellers over the period.
func (s *Service) TopProducts(ctx context.Context, period Period, limit int) ([]ProductPerformance, error) {
	if err := validatePeriod(period); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	return s.repo.TopProducts(ctx, period, limit)
}

// CategoryPerformance breaks the period's sales down by category.
func (s *Service) CategoryPerformance(ctx context.Context, period Period) ([]CategoryPerformance, error) {
	if err := validatePeriod(period); err != nil {
		return nil, err
	}
	return s.repo.CategoryPerformance(ctx, period)
}

// CashierPerformance breaks the period's sales down by cashier. Admin-only.
func (s *Service) CashierPerformance(ctx context.Context, actor shared.Actor, period Period) ([]CashierPerformance, error) {
	if !actor.IsAdmin() {
		return nil, shared.ErrForbidden
	}
	if err := validatePeriod(period); err != nil {
		return nil, err
	}
	return s.repo.CashierPerformance(ctx, period)
}

// HourlySales buckets the period's sales by hour of day.
func (s *Service) HourlySales(ctx context.Context, period Period) ([]HourlySales, error) {
	if err := validatePeriod(period); err != nil {
		return nil, err
	}
	return s.repo.HourlySales(ctx, period)
}

// Valuation prices the current stock. Admin-only.
func (s *Service) Valuation(ctx context.Context, actor shared.Actor) (Valuation, error) {
	if !actor.IsAdmin() {
		return Valuation{}, shared.ErrForbidden
	}
	return s.repo.Valuation(ctx)
}

// Dashboard aggregates today's numbers. The four projections are
// independent, so they run concurrently and the first failure cancels
// the rest.
func (s *Service) Dashboard(ctx context.Context, actor shared.Actor) (Dashboard, error) {
	today := s.Today()

	var dashboard Dashboard
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		summary, err := s.repo.SalesSummary(ctx, today)
		if err != nil {
			return err
		}
		dashboard.Today = summary
		return nil
	})
	g.Go(func() error {
		products, err := s.repo.TopProducts(ctx, today, 5)
		if err != nil {
			return err
		}
		dashboard.TopProducts = products
		return nil
	})
	g.Go(func() error {
		count, err := s.repo.LowStockCount(ctx)
		if err != nil {
			return err
		}
		dashboard.LowStockCount = count
		return nil
	})
	if actor.IsAdmin() {
		g.Go(func() error {
			profit, err := s.repo.ProfitSummary(ctx, today)
			if err != nil {
				return err
			}
			dashboard.Profit = profit
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}
	return dashboard, nil
}
