package inventory

import (
	"context"
	"log/slog"
	"time"

	"github.com/toyshop-pos/toyshop/internal/shared"
)

// RepositoryPort abstracts stock persistence for the service.
type RepositoryPort interface {
	Get(ctx context.Context, productID string) (Item, error)
	List(ctx context.Context) ([]Item, error)
	ListLowStock(ctx context.Context) ([]Item, error)
	Adjust(ctx context.Context, productID string, mode AdjustMode, amount int) (int, error)
}

// AuditPort records stock adjustments.
type AuditPort interface {
	Record(ctx context.Context, entry shared.AuditLog) error
}

// Service implements stock queries and manual adjustments.
type Service struct {
	repo   RepositoryPort
	audit  AuditPort
	logger *slog.Logger
	now    func() time.Time
}

// NewService constructs the inventory service.
func NewService(repo RepositoryPort, audit AuditPort, logger *slog.Logger) *Service {
	return &Service{repo: repo, audit: audit, logger: logger, now: time.Now}
}

// Get returns one product's stock position.
func (s *Service) Get(ctx context.Context, productID string) (Item, error) {
	return s.repo.Get(ctx, productID)
}

// List returns all stock positions. Admin-only; cashiers see per-product
// quantities through the catalog instead.
func (s *Service) List(ctx context.Context, actor shared.Actor) ([]Item, error) {
	if !actor.IsAdmin() {
		return nil, shared.ErrForbidden
	}
	return s.repo.List(ctx)
}

// ListLowStock returns available products at or below their minimum stock.
func (s *Service) ListLowStock(ctx context.Context) ([]Item, error) {
	return s.repo.ListLowStock(ctx)
}

// Adjust applies a manual stock correction. Admin-only.
func (s *Service) Adjust(ctx context.Context, actor shared.Actor, input AdjustInput) (Item, error) {
	if !actor.IsAdmin() {
		return Item{}, shared.ErrForbidden
	}
	if input.ProductID == "" {
		return Item{}, shared.ValidationError("product is required")
	}
	if !input.Mode.Valid() {
		return Item{}, shared.ValidationError("unknown adjustment mode %q", input.Mode)
	}
	if input.Amount < 0 {
		return Item{}, shared.ValidationError("amount cannot be negative")
	}

	quantity, err := s.repo.Adjust(ctx, input.ProductID, input.Mode, input.Amount)
	if err != nil {
		return Item{}, err
	}

	if err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actor.ID,
		Action:   "inventory.adjust",
		Entity:   "inventory",
		EntityID: input.ProductID,
		Meta: map[string]any{
			"mode":   string(input.Mode),
			"amount": input.Amount,
			"reason": input.Reason,
			"result": quantity,
		},
	}); err != nil {
		s.logger.Warn("audit record failed", slog.Any("error", err))
	}

	s.logger.Info("stock adjusted",
		slog.String("product_id", input.ProductID),
		slog.String("mode", string(input.Mode)),
		slog.Int("amount", input.Amount),
		slog.Int("result", quantity))

	return s.repo.Get(ctx, input.ProductID)
}
