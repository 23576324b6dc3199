package sales

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyshop-pos/toyshop/internal/settings"
)

type fakeStore struct {
	info settings.StoreInfo
}

func (f *fakeStore) Store(context.Context) (settings.StoreInfo, error) {
	return f.info, nil
}

func TestRenderReceipt(t *testing.T) {
	printer := NewReceiptPrinter(&fakeStore{info: settings.StoreInfo{
		Name:          "Toybox Corner",
		Address:       "12 Main St",
		ReceiptFooter: "Thank you!",
	}})

	sale := Sale{
		BillNumber:    "42",
		CashierName:   "kasir1",
		Subtotal:      25,
		TaxPercentage: 10,
		Tax:           2.5,
		Total:         27.5,
		PaymentMethod: PaymentMethodCash,
		Paid:          30,
		Change:        2.5,
		CreatedAt:     time.Date(2025, 6, 1, 14, 30, 0, 0, time.UTC),
		Items: []SaleItem{
			{ProductName: "Wooden Train", Quantity: 2, UnitPrice: 10, LineTotal: 20},
			{ProductName: "Rubber Duck", Quantity: 1, UnitPrice: 5, LineTotal: 5},
		},
	}

	text, err := printer.Render(context.Background(), sale)
	require.NoError(t, err)

	assert.Contains(t, text, "Toybox Corner")
	assert.Contains(t, text, "Bill #42")
	assert.Contains(t, text, "2 x 10.00")
	assert.Contains(t, text, "27.50")
	assert.Contains(t, text, "Paid (cash)")
	assert.Contains(t, text, "Thank you!")
	assert.NotContains(t, text, "Discount")
}
