// Package dashboard aggregates the headline counters shown by stockctl.
package dashboard

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/odyssey-erp/stockroom/internal/products"
	"github.com/odyssey-erp/stockroom/internal/purchasing"
	"github.com/odyssey-erp/stockroom/internal/vendors"
)

// Snapshot is a full read of the three collections the dashboard counts.
type Snapshot struct {
	Vendors  []vendors.Vendor
	Products []products.Product
	Orders   []purchasing.Order
}

// Summary holds the dashboard counters.
type Summary struct {
	VendorCount       int `json:"vendorCount"`
	ProductCount      int `json:"productCount"`
	PendingOrderCount int `json:"pendingOrderCount"`
	LowStockCount     int `json:"lowStockCount"`
}

// Summarize computes the counters from a snapshot.
func Summarize(s Snapshot) Summary {
	out := Summary{
		VendorCount:  len(s.Vendors),
		ProductCount: len(s.Products),
	}
	for _, o := range s.Orders {
		if o.Status == purchasing.StatusPending {
			out.PendingOrderCount++
		}
	}
	for _, p := range s.Products {
		if p.IsLowStock() {
			out.LowStockCount++
		}
	}
	return out
}

// Source fetches the full collections.
type Source interface {
	Vendors(ctx context.Context) ([]vendors.Vendor, error)
	Products(ctx context.Context) ([]products.Product, error)
	Orders(ctx context.Context) ([]purchasing.Order, error)
}

// Load fetches a fresh snapshot, querying the three collections
// concurrently. The first failure cancels the others.
func Load(ctx context.Context, src Source) (Snapshot, error) {
	var snap Snapshot
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		snap.Vendors, err = src.Vendors(ctx)
		return err
	})
	g.Go(func() (err error) {
		snap.Products, err = src.Products(ctx)
		return err
	})
	g.Go(func() (err error) {
		snap.Orders, err = src.Orders(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, fmt.Errorf("load dashboard: %w", err)
	}
	return snap, nil
}
