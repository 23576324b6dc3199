package sales

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/toyshop-pos/toyshop/internal/shared"
)

// RepositoryPort abstracts sale persistence for the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(tx TxRepository) error) error
	Get(ctx context.Context, id string) (Sale, error)
	ListItems(ctx context.Context, saleID string) ([]SaleItem, error)
	List(ctx context.Context, filter ListFilter) ([]Sale, error)
}

// SettingsPort exposes the checkout-relevant store configuration.
type SettingsPort interface {
	TaxPercentage(ctx context.Context) (float64, error)
	CashierDiscountAllowed(ctx context.Context) (bool, error)
}

// AuditPort records posted sales.
type AuditPort interface {
	Record(ctx context.Context, entry shared.AuditLog) error
}

// Service implements checkout and sale queries.
type Service struct {
	repo     RepositoryPort
	settings SettingsPort
	audit    AuditPort
	logger   *slog.Logger
	now      func() time.Time
}

// NewService constructs the sales service.
func NewService(repo RepositoryPort, settings SettingsPort, audit AuditPort, logger *slog.Logger) *Service {
	return &Service{repo: repo, settings: settings, audit: audit, logger: logger, now: time.Now}
}

func validateCreateInput(input CreateSaleInput) error {
	if len(input.Items) == 0 {
		return shared.ValidationError("a sale needs at least one item")
	}
	seen := map[string]bool{}
	for _, item := range input.Items {
		if item.ProductID == "" {
			return shared.ValidationError("item product is required")
		}
		if item.Quantity <= 0 {
			return shared.ValidationError("item quantity must be positive")
		}
		if item.UnitPrice < 0 {
			return shared.ValidationError("item unit price cannot be negative")
		}
		if seen[item.ProductID] {
			return shared.ValidationError("product %s listed twice", item.ProductID)
		}
		seen[item.ProductID] = true
	}
	if input.Discount < 0 {
		return shared.ValidationError("discount cannot be negative")
	}
	if input.Paid < 0 {
		return shared.ValidationError("paid amount cannot be negative")
	}
	return nil
}

// Create posts a sale. Every check and write runs inside one serializable
// transaction: bill numbering, stock verification, totals, the sale rows
// and the stock decrements commit together or not at all.
func (s *Service) Create(ctx context.Context, actor shared.Actor, input CreateSaleInput) (Sale, error) {
	if err := validateCreateInput(input); err != nil {
		return Sale{}, err
	}

	if input.Discount > 0 {
		allowed, err := s.settings.CashierDiscountAllowed(ctx)
		if err != nil {
			return Sale{}, err
		}
		if !shared.CanApplyDiscount(actor, allowed) {
			return Sale{}, shared.ErrForbidden
		}
	}

	taxPct, err := s.settings.TaxPercentage(ctx)
	if err != nil {
		return Sale{}, err
	}

	var sale Sale
	err = s.repo.WithTx(ctx, func(tx TxRepository) error {
		billNumber, err := tx.NextBillNumber(ctx)
		if err != nil {
			return err
		}

		saleID := uuid.NewString()
		var subtotal float64
		items := make([]SaleItem, 0, len(input.Items))

		for _, line := range input.Items {
			stock, err := tx.StockForUpdate(ctx, line.ProductID)
			if err != nil {
				return err
			}
			if stock.Quantity < line.Quantity {
				return &shared.InsufficientStockError{
					ProductID:   stock.ProductID,
					ProductName: stock.Name,
					Available:   stock.Quantity,
					Requested:   line.Quantity,
				}
			}

			lineTotal := roundMoney(float64(line.Quantity) * line.UnitPrice)
			subtotal += lineTotal
			items = append(items, SaleItem{
				ID:            uuid.NewString(),
				SaleID:        saleID,
				ProductID:     stock.ProductID,
				ProductName:   stock.Name,
				Quantity:      line.Quantity,
				UnitPrice:     line.UnitPrice,
				PurchasePrice: stock.PurchasePrice,
				LineTotal:     lineTotal,
			})
		}

		subtotal = roundMoney(subtotal)
		if input.Discount > subtotal {
			return shared.ValidationError("discount cannot exceed the subtotal")
		}

		tax := roundMoney(subtotal * taxPct / 100)
		total := roundMoney(subtotal + tax - input.Discount)
		if input.Paid < total {
			return shared.ErrInsufficientPayment
		}

		method := input.PaymentMethod
		if method == "" {
			method = PaymentMethodCash
		}

		sale = Sale{
			ID:            saleID,
			BillNumber:    billNumber,
			CashierID:     actor.ID,
			CashierName:   actor.Username,
			CustomerName:  input.CustomerName,
			CustomerPhone: input.CustomerPhone,
			Subtotal:      subtotal,
			TaxPercentage: taxPct,
			Tax:           tax,
			Discount:      input.Discount,
			Total:         total,
			PaymentMethod: method,
			Paid:          input.Paid,
			Change:        roundMoney(input.Paid - total),
			Notes:         input.Notes,
			CreatedAt:     s.now().UTC(),
			Items:         items,
		}

		if err := tx.InsertSale(ctx, sale); err != nil {
			return err
		}
		for _, item := range items {
			if err := tx.InsertSaleItem(ctx, item); err != nil {
				return err
			}
			if err := tx.DecrementStock(ctx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Sale{}, err
	}

	if err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actor.ID,
		Action:   "sale.create",
		Entity:   "sale",
		EntityID: sale.ID,
		Meta:     map[string]any{"bill_number": sale.BillNumber, "total": sale.Total},
	}); err != nil {
		s.logger.Warn("audit record failed", slog.Any("error", err))
	}

	s.logger.Info("sale posted",
		slog.String("sale_id", sale.ID),
		slog.String("bill_number", sale.BillNumber),
		slog.Float64("total", sale.Total))

	return sale, nil
}

// Get returns a sale with its items. Cashiers only see their own sales.
func (s *Service) Get(ctx context.Context, actor shared.Actor, id string) (Sale, error) {
	sale, err := s.repo.Get(ctx, id)
	if err != nil {
		return Sale{}, err
	}
	if !shared.CanAccessSale(actor, sale.CashierID) {
		return Sale{}, shared.ErrForbidden
	}

	items, err := s.repo.ListItems(ctx, id)
	if err != nil {
		return Sale{}, err
	}
	sale.Items = items
	return sale, nil
}

// List returns sales matching the filter. Cashier listings are always
// scoped to the cashier's own sales regardless of the requested filter.
func (s *Service) List(ctx context.Context, actor shared.Actor, filter ListFilter) ([]Sale, error) {
	if !actor.IsAdmin() {
		filter.CashierID = actor.ID
	}
	return s.repo.List(ctx, filter)
}
