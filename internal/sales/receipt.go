package sales

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/toyshop-pos/toyshop/internal/settings"
	"github.com/toyshop-pos/toyshop/internal/shared"
)

const receiptWidth = 40

// StorePort exposes the receipt header configuration.
type StorePort interface {
	Store(ctx context.Context) (settings.StoreInfo, error)
}

// ReceiptPrinter renders plain-text receipts for thermal printers.
type ReceiptPrinter struct {
	store   StorePort
	printer *message.Printer
}

// NewReceiptPrinter constructs a ReceiptPrinter. Amounts are grouped with
// thousands separators via the message printer.
func NewReceiptPrinter(store StorePort) *ReceiptPrinter {
	return &ReceiptPrinter{
		store:   store,
		printer: message.NewPrinter(language.English),
	}
}

func (p *ReceiptPrinter) money(v float64) string {
	return p.printer.Sprintf("%.2f", v)
}

func center(s string) string {
	if len(s) >= receiptWidth {
		return s
	}
	pad := (receiptWidth - len(s)) / 2
	return strings.Repeat(" ", pad) + s
}

func line(left, right string) string {
	gap := receiptWidth - len(left) - len(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

// Render produces the receipt text for a sale.
func (p *ReceiptPrinter) Render(ctx context.Context, sale Sale) (string, error) {
	info, err := p.store.Store(ctx)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	rule := strings.Repeat("-", receiptWidth)

	b.WriteString(center(info.Name) + "\n")
	if info.Address != "" {
		b.WriteString(center(info.Address) + "\n")
	}
	if info.Phone != "" {
		b.WriteString(center(info.Phone) + "\n")
	}
	b.WriteString(rule + "\n")
	b.WriteString(line("Bill #"+sale.BillNumber, sale.CreatedAt.Format("2006-01-02 15:04")) + "\n")
	b.WriteString(line("Cashier", sale.CashierName) + "\n")
	b.WriteString(rule + "\n")

	for _, item := range sale.Items {
		b.WriteString(item.ProductName + "\n")
		qty := fmt.Sprintf("  %d x %s", item.Quantity, p.money(item.UnitPrice))
		b.WriteString(line(qty, p.money(item.LineTotal)) + "\n")
	}

	b.WriteString(rule + "\n")
	b.WriteString(line("Subtotal", p.money(sale.Subtotal)) + "\n")
	if sale.Tax > 0 {
		label := p.printer.Sprintf("Tax (%.1f%%)", sale.TaxPercentage)
		b.WriteString(line(label, p.money(sale.Tax)) + "\n")
	}
	if sale.Discount > 0 {
		b.WriteString(line("Discount", "-"+p.money(sale.Discount)) + "\n")
	}
	b.WriteString(line("TOTAL", p.money(sale.Total)) + "\n")
	b.WriteString(line("Paid ("+sale.PaymentMethod+")", p.money(sale.Paid)) + "\n")
	b.WriteString(line("Change", p.money(sale.Change)) + "\n")
	b.WriteString(rule + "\n")

	if info.ReceiptFooter != "" {
		b.WriteString(center(info.ReceiptFooter) + "\n")
	}

	return b.String(), nil
}

// Receipt loads a sale and renders its receipt, applying the same access
// rules as Get.
func (s *Service) Receipt(ctx context.Context, actor shared.Actor, printer *ReceiptPrinter, id string) (string, error) {
	sale, err := s.Get(ctx, actor, id)
	if err != nil {
		return "", err
	}
	return printer.Render(ctx, sale)
}
