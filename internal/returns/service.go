package returns

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/toyshop-pos/toyshop/internal/shared"
)

// RepositoryPort abstracts return persistence for the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(tx TxRepository) error) error
	Get(ctx context.Context, id string) (Return, error)
	ListItems(ctx context.Context, returnID string) ([]ReturnItem, error)
	List(ctx context.Context, cashierID string) ([]Return, error)
	ReturnableItems(ctx context.Context, saleID string) ([]ReturnableItem, error)
	GetSaleRef(ctx context.Context, saleID string) (SaleRef, error)
}

// AuditPort records posted returns.
type AuditPort interface {
	Record(ctx context.Context, entry shared.AuditLog) error
}

// Service implements merchandise returns.
type Service struct {
	repo   RepositoryPort
	audit  AuditPort
	logger *slog.Logger
	now    func() time.Time
}

// NewService constructs the returns service.
func NewService(repo RepositoryPort, audit AuditPort, logger *slog.Logger) *Service {
	return &Service{repo: repo, audit: audit, logger: logger, now: time.Now}
}

func roundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}

func validateCreateInput(input CreateReturnInput) error {
	if input.SaleID == "" {
		return shared.ValidationError("sale is required")
	}
	if len(input.Items) == 0 {
		return shared.ValidationError("a return needs at least one item")
	}
	seen := map[string]bool{}
	for _, item := range input.Items {
		if item.SaleItemID == "" {
			return shared.ValidationError("sale item is required")
		}
		if item.Quantity <= 0 {
			return shared.ValidationError("return quantity must be positive")
		}
		if seen[item.SaleItemID] {
			return shared.ValidationError("sale item %s listed twice", item.SaleItemID)
		}
		seen[item.SaleItemID] = true
	}
	return nil
}

// Create posts a return. The availability check, the return rows and the
// stock restocks run in one serializable transaction; a line can never be
// returned beyond what the sale recorded, no matter how requests interleave.
// Only admins and the cashier who posted the sale may return against it.
func (s *Service) Create(ctx context.Context, actor shared.Actor, input CreateReturnInput) (Return, error) {
	if err := validateCreateInput(input); err != nil {
		return Return{}, err
	}

	var ret Return
	err := s.repo.WithTx(ctx, func(tx TxRepository) error {
		sale, err := tx.GetSale(ctx, input.SaleID)
		if err != nil {
			return err
		}
		if !shared.CanAccessSale(actor, sale.CashierID) {
			return shared.ErrForbidden
		}

		returnID := uuid.NewString()
		var refundTotal float64
		items := make([]ReturnItem, 0, len(input.Items))

		for _, line := range input.Items {
			saleItem, err := tx.GetSaleItem(ctx, line.SaleItemID)
			if err != nil {
				return err
			}
			if saleItem.SaleID != input.SaleID {
				return shared.ValidationError("sale item %s does not belong to this sale", line.SaleItemID)
			}

			returned, err := tx.ReturnedQuantity(ctx, line.SaleItemID)
			if err != nil {
				return err
			}
			available := saleItem.Quantity - returned
			if line.Quantity > available {
				return &shared.OverReturnError{
					SaleItemID: line.SaleItemID,
					Available:  available,
					Requested:  line.Quantity,
				}
			}

			refund := roundMoney(float64(line.Quantity) * saleItem.UnitPrice)
			refundTotal += refund
			items = append(items, ReturnItem{
				ID:           uuid.NewString(),
				ReturnID:     returnID,
				SaleItemID:   saleItem.ID,
				ProductID:    saleItem.ProductID,
				ProductName:  saleItem.ProductName,
				Quantity:     line.Quantity,
				UnitPrice:    saleItem.UnitPrice,
				RefundAmount: refund,
			})
		}

		method := input.RefundMethod
		if method == "" {
			method = RefundMethodCash
		}

		now := s.now().UTC()
		ret = Return{
			ID:            returnID,
			ReturnNumber:  fmt.Sprintf("RET-%d", now.UnixMilli()),
			SaleID:        sale.ID,
			BillNumber:    sale.BillNumber,
			CashierID:     actor.ID,
			SaleCashierID: sale.CashierID,
			Reason:        input.Reason,
			RefundMethod:  method,
			RefundTotal:   roundMoney(refundTotal),
			CreatedAt:     now,
			Items:         items,
		}

		if err := tx.InsertReturn(ctx, ret); err != nil {
			return err
		}
		for _, item := range items {
			if err := tx.InsertReturnItem(ctx, item); err != nil {
				return err
			}
			if err := tx.IncrementStock(ctx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Return{}, err
	}

	if err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actor.ID,
		Action:   "return.create",
		Entity:   "return",
		EntityID: ret.ID,
		Meta:     map[string]any{"return_number": ret.ReturnNumber, "refund_total": ret.RefundTotal},
	}); err != nil {
		s.logger.Warn("audit record failed", slog.Any("error", err))
	}

	s.logger.Info("return posted",
		slog.String("return_id", ret.ID),
		slog.String("return_number", ret.ReturnNumber),
		slog.Float64("refund_total", ret.RefundTotal))

	return ret, nil
}

// Get returns a posted return with its items. Access follows the
// originating sale, so the selling cashier sees returns against their
// sale no matter who posted them.
func (s *Service) Get(ctx context.Context, actor shared.Actor, id string) (Return, error) {
	ret, err := s.repo.Get(ctx, id)
	if err != nil {
		return Return{}, err
	}
	if !shared.CanAccessSale(actor, ret.SaleCashierID) {
		return Return{}, shared.ErrForbidden
	}

	items, err := s.repo.ListItems(ctx, id)
	if err != nil {
		return Return{}, err
	}
	ret.Items = items
	return ret, nil
}

// List returns posted returns. Cashier listings are scoped to returns
// against their own sales.
func (s *Service) List(ctx context.Context, actor shared.Actor) ([]Return, error) {
	cashierID := ""
	if !actor.IsAdmin() {
		cashierID = actor.ID
	}
	return s.repo.List(ctx, cashierID)
}

// ReturnableItems lists a sale's items with their remaining returnable
// quantities, for building a return.
func (s *Service) ReturnableItems(ctx context.Context, actor shared.Actor, saleID string) ([]ReturnableItem, error) {
	sale, err := s.repo.GetSaleRef(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if !shared.CanAccessSale(actor, sale.CashierID) {
		return nil, shared.ErrForbidden
	}
	return s.repo.ReturnableItems(ctx, saleID)
}
