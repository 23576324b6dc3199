package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/toyshop-pos/toyshop/internal/inventory"
)

// StockLister exposes the low stock query to the scanner.
type StockLister interface {
	ListLowStock(ctx context.Context) ([]inventory.Item, error)
}

// LowStockScanner logs every product at or below its minimum stock so the
// morning shift sees what to reorder.
type LowStockScanner struct {
	stock  StockLister
	logger *slog.Logger
}

// NewLowStockScanner constructs the scanner.
func NewLowStockScanner(stock StockLister, logger *slog.Logger) *LowStockScanner {
	return &LowStockScanner{stock: stock, logger: logger}
}

// Handle processes a low stock scan task.
func (s *LowStockScanner) Handle(ctx context.Context, _ *asynq.Task) error {
	items, err := s.stock.ListLowStock(ctx)
	if err != nil {
		return err
	}

	if len(items) == 0 {
		s.logger.Info("low stock scan clean")
		return nil
	}

	for _, item := range items {
		s.logger.Warn("product below minimum stock",
			slog.String("product_id", item.ProductID),
			slog.String("product_name", item.ProductName),
			slog.Int("quantity", item.Quantity),
			slog.Int("min_stock", item.MinStock))
	}
	s.logger.Info("low stock scan complete", slog.Int("flagged", len(items)))
	return nil
}
