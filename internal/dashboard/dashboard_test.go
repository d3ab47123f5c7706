package dashboard

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/stockroom/internal/products"
	"github.com/odyssey-erp/stockroom/internal/purchasing"
	"github.com/odyssey-erp/stockroom/internal/vendors"
)

func TestSummarize(t *testing.T) {
	snap := Snapshot{
		Vendors: []vendors.Vendor{{ID: 1}, {ID: 2}},
		Products: []products.Product{
			{ID: 1, CurrentStock: 0},
			{ID: 2, CurrentStock: 9},
			{ID: 3, CurrentStock: 10},
			{ID: 4, CurrentStock: 250},
		},
		Orders: []purchasing.Order{
			{ID: 1, Status: purchasing.StatusPending},
			{ID: 2, Status: purchasing.StatusApproved},
			{ID: 3, Status: purchasing.StatusPending},
			{ID: 4, Status: purchasing.StatusCancelled},
			{ID: 5, Status: purchasing.StatusReceived},
		},
	}

	got := Summarize(snap)
	assert.Equal(t, Summary{VendorCount: 2, ProductCount: 4, PendingOrderCount: 2, LowStockCount: 2}, got)
}

func TestSummarizeEmpty(t *testing.T) {
	assert.Equal(t, Summary{}, Summarize(Snapshot{}))
}

type fakeSource struct {
	vendors  []vendors.Vendor
	products []products.Product
	orders   []purchasing.Order
	err      error
}

func (f fakeSource) Vendors(context.Context) ([]vendors.Vendor, error) { return f.vendors, nil }

func (f fakeSource) Products(context.Context) ([]products.Product, error) {
	return f.products, f.err
}

func (f fakeSource) Orders(ctx context.Context) ([]purchasing.Order, error) {
	return f.orders, nil
}

func TestLoad(t *testing.T) {
	src := fakeSource{
		vendors:  []vendors.Vendor{{ID: 1}},
		products: []products.Product{{ID: 1, CurrentStock: 3}},
		orders:   []purchasing.Order{{ID: 1, Status: purchasing.StatusPending}},
	}

	snap, err := Load(context.Background(), src)
	require.NoError(t, err)
	assert.Len(t, snap.Vendors, 1)
	assert.Len(t, snap.Products, 1)
	assert.Len(t, snap.Orders, 1)
	assert.Equal(t, 1, Summarize(snap).LowStockCount)
}

func TestLoadFailure(t *testing.T) {
	boom := errors.New("connection refused")
	_, err := Load(context.Background(), fakeSource{err: boom})
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "load dashboard")
}
