package settings

import (
	"context"
	"errors"
	"strconv"

	"github.com/toyshop-pos/toyshop/internal/shared"
)

// RepositoryPort abstracts setting persistence for the service.
type RepositoryPort interface {
	Get(ctx context.Context, key string) (string, error)
	All(ctx context.Context) (map[string]string, error)
	Set(ctx context.Context, key, value string) error
}

// CachePort abstracts the read-through cache. A nil cache is allowed.
type CachePort interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string)
	Invalidate(ctx context.Context, key string)
}

// Defaults applied when a key was never configured.
var defaults = map[string]string{
	KeyStoreName:              "Toy Shop",
	KeyTaxPercentage:          "0",
	KeyCashierDiscountAllowed: "false",
}

// Service reads and writes store configuration.
type Service struct {
	repo  RepositoryPort
	cache CachePort
}

// NewService constructs the settings service.
func NewService(repo RepositoryPort, cache CachePort) *Service {
	return &Service{repo: repo, cache: cache}
}

// Get returns a single setting, falling back to its default when unset.
func (s *Service) Get(ctx context.Context, key string) (string, error) {
	if s.cache != nil {
		if value, ok := s.cache.Get(ctx, key); ok {
			return value, nil
		}
	}

	value, err := s.repo.Get(ctx, key)
	if errors.Is(err, shared.ErrNotFound) {
		if def, ok := defaults[key]; ok {
			return def, nil
		}
		return "", err
	}
	if err != nil {
		return "", err
	}

	if s.cache != nil {
		s.cache.Set(ctx, key, value)
	}
	return value, nil
}

// All returns every setting with defaults filled in for missing keys.
// Admin-only; the full map includes configuration cashiers have no
// business reading.
func (s *Service) All(ctx context.Context, actor shared.Actor) (map[string]string, error) {
	if !actor.IsAdmin() {
		return nil, shared.ErrForbidden
	}
	return s.all(ctx)
}

func (s *Service) all(ctx context.Context) (map[string]string, error) {
	stored, err := s.repo.All(ctx)
	if err != nil {
		return nil, err
	}
	for key, def := range defaults {
		if _, ok := stored[key]; !ok {
			stored[key] = def
		}
	}
	return stored, nil
}

// Set upserts a setting. Admin-only.
func (s *Service) Set(ctx context.Context, actor shared.Actor, key, value string) error {
	if !actor.IsAdmin() {
		return shared.ErrForbidden
	}
	if key == "" {
		return shared.ValidationError("setting key is required")
	}
	if key == KeyTaxPercentage {
		pct, err := strconv.ParseFloat(value, 64)
		if err != nil || pct < 0 || pct > 100 {
			return shared.ValidationError("tax percentage must be a number between 0 and 100")
		}
	}

	if err := s.repo.Set(ctx, key, value); err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, key)
	}
	return nil
}

// TaxPercentage returns the configured tax rate in percent.
func (s *Service) TaxPercentage(ctx context.Context) (float64, error) {
	value, err := s.Get(ctx, KeyTaxPercentage)
	if err != nil {
		return 0, err
	}
	pct, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, nil
	}
	return pct, nil
}

// CashierDiscountAllowed reports whether cashiers may apply discounts.
func (s *Service) CashierDiscountAllowed(ctx context.Context) (bool, error) {
	value, err := s.Get(ctx, KeyCashierDiscountAllowed)
	if err != nil {
		return false, err
	}
	return value == "true", nil
}

// StoreInfo returns the receipt header fields.
type StoreInfo struct {
	Name          string
	Address       string
	Phone         string
	ReceiptFooter string
}

// Store returns the configured store identity.
func (s *Service) Store(ctx context.Context) (StoreInfo, error) {
	all, err := s.all(ctx)
	if err != nil {
		return StoreInfo{}, err
	}
	return StoreInfo{
		Name:          all[KeyStoreName],
		Address:       all[KeyStoreAddress],
		Phone:         all[KeyStorePhone],
		ReceiptFooter: all[KeyReceiptFooter],
	}, nil
}
