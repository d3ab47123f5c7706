package vendors

import (
	"time"

	"github.com/odyssey-erp/stockroom/internal/shared"
)

// Vendor is a supplier that purchase orders are raised against. Vendors are
// never edited once created.
type Vendor struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	ContactNumber string    `json:"contactNumber"`
	Email         string    `json:"email,omitempty"`
	Address       string    `json:"address,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

var (
	// ErrNotFound indicates the vendor does not exist.
	ErrNotFound = shared.NewError(shared.ErrNotFound, "vendor not found")
	// ErrValidation indicates invalid vendor input.
	ErrValidation = shared.NewError(shared.ErrValidation, "invalid vendor")
)
