package view

import (
	"strconv"

	"github.com/odyssey-erp/stockroom/internal/dashboard"
	"github.com/odyssey-erp/stockroom/internal/products"
	"github.com/odyssey-erp/stockroom/internal/vendors"
)

// Vendors renders the vendor list.
func (r *Renderer) Vendors(list []vendors.Vendor) error {
	if r.Format == FormatJSON {
		return r.json(list)
	}
	t := newTable(r.W, "ID", "NAME", "CONTACT", "EMAIL", "ADDRESS")
	for _, v := range list {
		t.row(strconv.FormatInt(v.ID, 10), v.Name, v.ContactNumber, orDash(v.Email), orDash(v.Address))
	}
	return t.flush()
}

// Products renders the catalog with each product's stock level.
func (r *Renderer) Products(list []products.Product) error {
	if r.Format == FormatJSON {
		return r.json(list)
	}
	t := newTable(r.W, "ID", "SKU", "NAME", "PRICE", "STOCK", "STATUS")
	for _, p := range list {
		t.row(
			strconv.FormatInt(p.ID, 10),
			p.SKU,
			p.Name,
			Money(p.UnitPrice),
			strconv.Itoa(p.CurrentStock),
			p.Level().Label(),
		)
	}
	return t.flush()
}

// Dashboard renders the headline counters.
func (r *Renderer) Dashboard(s dashboard.Summary) error {
	if r.Format == FormatJSON {
		return r.json(s)
	}
	t := newTable(r.W, "METRIC", "VALUE")
	t.row("Vendors", strconv.Itoa(s.VendorCount))
	t.row("Products", strconv.Itoa(s.ProductCount))
	t.row("Pending orders", strconv.Itoa(s.PendingOrderCount))
	t.row("Low stock products", strconv.Itoa(s.LowStockCount))
	return t.flush()
}
