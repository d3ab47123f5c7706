package vendors

import (
	"context"
	"fmt"
	"strings"
)

// Service exposes vendor directory operations.
type Service struct {
	repo Repository
}

// NewService constructs the vendor service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns every vendor ordered by id.
func (s *Service) List(ctx context.Context) ([]Vendor, error) {
	return s.repo.List(ctx)
}

// Get returns one vendor.
func (s *Service) Get(ctx context.Context, id int64) (Vendor, error) {
	if id <= 0 {
		return Vendor{}, fmt.Errorf("%w: invalid id %d", ErrValidation, id)
	}
	return s.repo.Get(ctx, id)
}

// Create validates and stores a new vendor.
func (s *Service) Create(ctx context.Context, vendor Vendor) (Vendor, error) {
	vendor.Name = strings.TrimSpace(vendor.Name)
	vendor.ContactNumber = strings.TrimSpace(vendor.ContactNumber)
	vendor.Email = strings.TrimSpace(vendor.Email)
	vendor.Address = strings.TrimSpace(vendor.Address)
	if vendor.Name == "" {
		return Vendor{}, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if vendor.ContactNumber == "" {
		return Vendor{}, fmt.Errorf("%w: contact number is required", ErrValidation)
	}
	vendor.ID = 0
	return s.repo.Create(ctx, vendor)
}
