package products

import (
	"context"
	"fmt"
	"strings"
)

// Service exposes product catalog operations.
type Service struct {
	repo Repository
}

// NewService constructs the product service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns every product ordered by id.
func (s *Service) List(ctx context.Context) ([]Product, error) {
	return s.repo.List(ctx)
}

// Get returns one product.
func (s *Service) Get(ctx context.Context, id int64) (Product, error) {
	if id <= 0 {
		return Product{}, fmt.Errorf("%w: invalid id %d", ErrValidation, id)
	}
	return s.repo.Get(ctx, id)
}

// Create validates and stores a new product. SKUs are unique.
func (s *Service) Create(ctx context.Context, product Product) (Product, error) {
	product.SKU = strings.TrimSpace(product.SKU)
	product.Name = strings.TrimSpace(product.Name)
	product.Description = strings.TrimSpace(product.Description)
	switch {
	case product.SKU == "":
		return Product{}, fmt.Errorf("%w: sku is required", ErrValidation)
	case product.Name == "":
		return Product{}, fmt.Errorf("%w: name is required", ErrValidation)
	case product.UnitPrice.IsNegative():
		return Product{}, fmt.Errorf("%w: unit price cannot be negative", ErrValidation)
	case !product.UnitPrice.Equal(product.UnitPrice.Round(2)):
		return Product{}, fmt.Errorf("%w: unit price %s has more than two decimal places", ErrValidation, product.UnitPrice)
	case product.UnitPrice.GreaterThan(MaxUnitPrice):
		return Product{}, fmt.Errorf("%w: unit price cannot exceed %s", ErrValidation, MaxUnitPrice.StringFixed(2))
	case product.CurrentStock < 0:
		return Product{}, fmt.Errorf("%w: current stock cannot be negative", ErrValidation)
	}
	exists, err := s.repo.ExistsSKU(ctx, product.SKU)
	if err != nil {
		return Product{}, err
	}
	if exists {
		return Product{}, fmt.Errorf("%w: %s already exists", ErrDuplicateSKU, product.SKU)
	}
	product.ID = 0
	return s.repo.Create(ctx, product)
}

// CountLowStock returns how many products sit below LowStockThreshold.
func (s *Service) CountLowStock(ctx context.Context) (int, error) {
	return s.repo.CountBelow(ctx, LowStockThreshold)
}
