package products

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyshop-pos/toyshop/internal/shared"
)

type fakeRepo struct {
	products map[string]Product
	saleRefs map[string]bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{products: map[string]Product{}, saleRefs: map[string]bool{}}
}

func (f *fakeRepo) List(_ context.Context, filter ListFilter) ([]Product, error) {
	var out []Product
	for _, p := range f.products {
		if filter.CategoryID != "" && p.CategoryID != filter.CategoryID {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeRepo) Get(_ context.Context, id string) (Product, error) {
	p, ok := f.products[id]
	if !ok {
		return Product{}, shared.ErrNotFound
	}
	return p, nil
}

func (f *fakeRepo) GetByBarcode(_ context.Context, barcode string) (Product, error) {
	for _, p := range f.products {
		if p.Barcode == barcode {
			return p, nil
		}
	}
	return Product{}, shared.ErrNotFound
}

func (f *fakeRepo) Insert(_ context.Context, p Product) error {
	if p.Barcode != "" {
		for _, existing := range f.products {
			if existing.Barcode == p.Barcode {
				return shared.ErrDuplicate
			}
		}
	}
	f.products[p.ID] = p
	return nil
}

func (f *fakeRepo) Update(_ context.Context, p Product) error {
	if _, ok := f.products[p.ID]; !ok {
		return shared.ErrNotFound
	}
	f.products[p.ID] = p
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, id string) (bool, error) {
	p, ok := f.products[id]
	if !ok {
		return false, shared.ErrNotFound
	}
	if f.saleRefs[id] {
		p.Status = StatusDiscontinued
		f.products[id] = p
		return true, nil
	}
	delete(f.products, id)
	return false, nil
}

type fakeAudit struct {
	entries []shared.AuditLog
}

func (f *fakeAudit) Record(_ context.Context, entry shared.AuditLog) error {
	f.entries = append(f.entries, entry)
	return nil
}

var admin = shared.Actor{ID: "admin-1", Role: shared.RoleAdmin}

func validInput() ProductInput {
	return ProductInput{
		Name:          "Wooden Train",
		Description:   "Six-piece wooden train set",
		Barcode:       "8991234567890",
		CategoryID:    "cat-1",
		PurchasePrice: 10,
		SellingPrice:  15,
		MinStock:      5,
		AgeGroup:      "3-5",
	}
}

func TestCreateProduct(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, &fakeAudit{}, slog.Default())

	product, err := svc.Create(context.Background(), admin, validInput())
	require.NoError(t, err)
	assert.Equal(t, StatusAvailable, product.Status)
	assert.Equal(t, "Six-piece wooden train set", product.Description)
	assert.Equal(t, "3-5", product.AgeGroup)
	assert.NotEmpty(t, product.ID)
}

func TestCreateRejectsNonAdmin(t *testing.T) {
	svc := NewService(newFakeRepo(), &fakeAudit{}, slog.Default())
	cashier := shared.Actor{ID: "c-1", Role: shared.RoleCashier}

	_, err := svc.Create(context.Background(), cashier, validInput())
	assert.ErrorIs(t, err, shared.ErrForbidden)
}

func TestCreateRejectsNegativePrice(t *testing.T) {
	svc := NewService(newFakeRepo(), &fakeAudit{}, slog.Default())

	input := validInput()
	input.SellingPrice = -1
	_, err := svc.Create(context.Background(), admin, input)
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestCreateDuplicateBarcode(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, &fakeAudit{}, slog.Default())

	_, err := svc.Create(context.Background(), admin, validInput())
	require.NoError(t, err)

	input := validInput()
	input.Name = "Other Toy"
	_, err = svc.Create(context.Background(), admin, input)
	assert.ErrorIs(t, err, shared.ErrDuplicate)
}

func TestDeleteDiscontinuesReferencedProduct(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, &fakeAudit{}, slog.Default())

	product, err := svc.Create(context.Background(), admin, validInput())
	require.NoError(t, err)
	repo.saleRefs[product.ID] = true

	discontinued, err := svc.Delete(context.Background(), admin, product.ID)
	require.NoError(t, err)
	assert.True(t, discontinued)
	assert.Equal(t, StatusDiscontinued, repo.products[product.ID].Status)
}

func TestDeleteRemovesUnreferencedProduct(t *testing.T) {
	repo := newFakeRepo()
	audit := &fakeAudit{}
	svc := NewService(repo, audit, slog.Default())

	product, err := svc.Create(context.Background(), admin, validInput())
	require.NoError(t, err)

	discontinued, err := svc.Delete(context.Background(), admin, product.ID)
	require.NoError(t, err)
	assert.False(t, discontinued)
	assert.NotContains(t, repo.products, product.ID)
	assert.Equal(t, "product.delete", audit.entries[len(audit.entries)-1].Action)
}
