package products

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/stockroom/internal/shared"
)

// LowStockThreshold is the stock level below which a product is low on stock.
const LowStockThreshold = 10

// MaxUnitPrice is the largest price a NUMERIC(14,2) column holds.
var MaxUnitPrice = decimal.RequireFromString("999999999999.99")

// Product is a catalog entry with its on-hand stock.
type Product struct {
	ID           int64           `json:"id"`
	SKU          string          `json:"sku"`
	Name         string          `json:"name"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	CurrentStock int             `json:"currentStock"`
	Description  string          `json:"description,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// StockLevel classifies on-hand stock.
type StockLevel string

const (
	StockLevelLow StockLevel = "LOW_STOCK"
	StockLevelIn  StockLevel = "IN_STOCK"
)

// Classify returns the stock level for an on-hand quantity.
func Classify(currentStock int) StockLevel {
	if currentStock < LowStockThreshold {
		return StockLevelLow
	}
	return StockLevelIn
}

// Level classifies the product's current stock.
func (p Product) Level() StockLevel {
	return Classify(p.CurrentStock)
}

// IsLowStock reports whether the product is below LowStockThreshold.
func (p Product) IsLowStock() bool {
	return p.Level() == StockLevelLow
}

// Label is the human readable level.
func (l StockLevel) Label() string {
	switch l {
	case StockLevelLow:
		return "Low Stock"
	case StockLevelIn:
		return "In Stock"
	}
	return string(l)
}

var (
	// ErrNotFound indicates the product does not exist.
	ErrNotFound = shared.NewError(shared.ErrNotFound, "product not found")
	// ErrValidation indicates invalid product input.
	ErrValidation = shared.NewError(shared.ErrValidation, "invalid product")
	// ErrDuplicateSKU indicates another product already uses the SKU.
	ErrDuplicateSKU = shared.NewError(shared.ErrConflict, "duplicate sku")
)
