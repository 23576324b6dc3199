package categories

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/toyshop-pos/toyshop/internal/shared"
)

// RepositoryPort abstracts category persistence for the service.
type RepositoryPort interface {
	List(ctx context.Context) ([]Category, error)
	Get(ctx context.Context, id string) (Category, error)
	Insert(ctx context.Context, c Category) error
	Update(ctx context.Context, c Category) error
	ProductCount(ctx context.Context, id string) (int, error)
	Delete(ctx context.Context, id string) error
}

// Service implements category management.
type Service struct {
	repo RepositoryPort
	now  func() time.Time
}

// NewService constructs the categories service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo, now: time.Now}
}

// List returns all categories.
func (s *Service) List(ctx context.Context) ([]Category, error) {
	return s.repo.List(ctx)
}

// Get returns a single category.
func (s *Service) Get(ctx context.Context, id string) (Category, error) {
	return s.repo.Get(ctx, id)
}

// Create adds a category. Admin-only.
func (s *Service) Create(ctx context.Context, actor shared.Actor, input CategoryInput) (Category, error) {
	if !actor.IsAdmin() {
		return Category{}, shared.ErrForbidden
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return Category{}, shared.ValidationError("category name is required")
	}

	now := s.now().UTC()
	category := Category{
		ID:          uuid.NewString(),
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Insert(ctx, category); err != nil {
		return Category{}, err
	}
	return category, nil
}

// Update modifies a category. Admin-only.
func (s *Service) Update(ctx context.Context, actor shared.Actor, id string, input CategoryInput) (Category, error) {
	if !actor.IsAdmin() {
		return Category{}, shared.ErrForbidden
	}

	category, err := s.repo.Get(ctx, id)
	if err != nil {
		return Category{}, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return Category{}, shared.ValidationError("category name is required")
	}

	category.Name = name
	category.Description = strings.TrimSpace(input.Description)
	category.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, category); err != nil {
		return Category{}, err
	}
	return category, nil
}

// Delete removes a category. Rejected while products still reference it.
func (s *Service) Delete(ctx context.Context, actor shared.Actor, id string) error {
	if !actor.IsAdmin() {
		return shared.ErrForbidden
	}

	count, err := s.repo.ProductCount(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return shared.ValidationError("category still has %d products", count)
	}

	return s.repo.Delete(ctx, id)
}
