package products

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/toyshop-pos/toyshop/internal/shared"
)

// RepositoryPort abstracts product persistence for the service.
type RepositoryPort interface {
	List(ctx context.Context, filter ListFilter) ([]Product, error)
	Get(ctx context.Context, id string) (Product, error)
	GetByBarcode(ctx context.Context, barcode string) (Product, error)
	Insert(ctx context.Context, p Product) error
	Update(ctx context.Context, p Product) error
	Delete(ctx context.Context, id string) (bool, error)
}

// AuditPort records catalog mutations.
type AuditPort interface {
	Record(ctx context.Context, entry shared.AuditLog) error
}

// Service implements catalog management. Reads are open to all staff,
// writes are admin-only.
type Service struct {
	repo   RepositoryPort
	audit  AuditPort
	logger *slog.Logger
	now    func() time.Time
}

// NewService constructs the products service.
func NewService(repo RepositoryPort, audit AuditPort, logger *slog.Logger) *Service {
	return &Service{repo: repo, audit: audit, logger: logger, now: time.Now}
}

// List returns products matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Product, error) {
	return s.repo.List(ctx, filter)
}

// Get returns a single product.
func (s *Service) Get(ctx context.Context, id string) (Product, error) {
	return s.repo.Get(ctx, id)
}

// GetByBarcode looks up a product by its scanned barcode.
func (s *Service) GetByBarcode(ctx context.Context, barcode string) (Product, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return Product{}, shared.ValidationError("barcode is required")
	}
	return s.repo.GetByBarcode(ctx, barcode)
}

func validateInput(input *ProductInput) error {
	input.Name = strings.TrimSpace(input.Name)
	input.Description = strings.TrimSpace(input.Description)
	input.Barcode = strings.TrimSpace(input.Barcode)
	input.AgeGroup = strings.TrimSpace(input.AgeGroup)
	switch {
	case input.Name == "":
		return shared.ValidationError("product name is required")
	case input.CategoryID == "":
		return shared.ValidationError("category is required")
	case input.PurchasePrice < 0:
		return shared.ValidationError("purchase price cannot be negative")
	case input.SellingPrice < 0:
		return shared.ValidationError("selling price cannot be negative")
	case input.MinStock < 0:
		return shared.ValidationError("minimum stock cannot be negative")
	}
	return nil
}

// Create adds a product to the catalog. Admin-only.
func (s *Service) Create(ctx context.Context, actor shared.Actor, input ProductInput) (Product, error) {
	if !actor.IsAdmin() {
		return Product{}, shared.ErrForbidden
	}
	if err := validateInput(&input); err != nil {
		return Product{}, err
	}

	now := s.now().UTC()
	product := Product{
		ID:            uuid.NewString(),
		Name:          input.Name,
		Description:   input.Description,
		Barcode:       input.Barcode,
		CategoryID:    input.CategoryID,
		PurchasePrice: input.PurchasePrice,
		SellingPrice:  input.SellingPrice,
		MinStock:      input.MinStock,
		AgeGroup:      input.AgeGroup,
		Status:        StatusAvailable,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Insert(ctx, product); err != nil {
		return Product{}, err
	}

	if err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actor.ID,
		Action:   "product.create",
		Entity:   "product",
		EntityID: product.ID,
		Meta:     map[string]any{"name": product.Name},
	}); err != nil {
		s.logger.Warn("audit record failed", slog.Any("error", err))
	}

	return s.repo.Get(ctx, product.ID)
}

// Update modifies a product. Admin-only.
func (s *Service) Update(ctx context.Context, actor shared.Actor, id string, input ProductInput) (Product, error) {
	if !actor.IsAdmin() {
		return Product{}, shared.ErrForbidden
	}
	if err := validateInput(&input); err != nil {
		return Product{}, err
	}

	product, err := s.repo.Get(ctx, id)
	if err != nil {
		return Product{}, err
	}

	product.Name = input.Name
	product.Description = input.Description
	product.Barcode = input.Barcode
	product.CategoryID = input.CategoryID
	product.PurchasePrice = input.PurchasePrice
	product.SellingPrice = input.SellingPrice
	product.MinStock = input.MinStock
	product.AgeGroup = input.AgeGroup
	product.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, product); err != nil {
		return Product{}, err
	}

	if err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actor.ID,
		Action:   "product.update",
		Entity:   "product",
		EntityID: product.ID,
	}); err != nil {
		s.logger.Warn("audit record failed", slog.Any("error", err))
	}

	return s.repo.Get(ctx, id)
}

// Delete removes a product, or discontinues it when past sales reference it.
func (s *Service) Delete(ctx context.Context, actor shared.Actor, id string) (discontinued bool, err error) {
	if !actor.IsAdmin() {
		return false, shared.ErrForbidden
	}

	discontinued, err = s.repo.Delete(ctx, id)
	if err != nil {
		return false, err
	}

	action := "product.delete"
	if discontinued {
		action = "product.discontinue"
	}
	if err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actor.ID,
		Action:   action,
		Entity:   "product",
		EntityID: id,
	}); err != nil {
		s.logger.Warn("audit record failed", slog.Any("error", err))
	}

	return discontinued, nil
}
