package view

import (
	"fmt"
	"strconv"

	"github.com/odyssey-erp/stockroom/internal/payments"
	"github.com/odyssey-erp/stockroom/internal/purchasing"
)

// Orders renders the purchase order list.
func (r *Renderer) Orders(list []purchasing.Order) error {
	if r.Format == FormatJSON {
		return r.json(list)
	}
	t := newTable(r.W, "ID", "VENDOR", "DATE", "TOTAL", "STATUS")
	for _, o := range list {
		t.row(
			"#"+strconv.FormatInt(o.ID, 10),
			orDash(o.Vendor.Name),
			date(o.OrderDate),
			Money(o.TotalAmount),
			o.Status.Label(),
		)
	}
	return t.flush()
}

// Order renders one order with its receipt progress per item.
func (r *Renderer) Order(o purchasing.Order) error {
	if r.Format == FormatJSON {
		return r.json(o)
	}
	fmt.Fprintf(r.W, "Order #%d  %s\n", o.ID, o.Status.Label())
	fmt.Fprintf(r.W, "Vendor:  %s\n", orDash(o.Vendor.Name))
	fmt.Fprintf(r.W, "Date:    %s\n", date(o.OrderDate))
	fmt.Fprintf(r.W, "Total:   %s\n\n", Money(o.TotalAmount))

	t := newTable(r.W, "ITEM", "SKU", "PRODUCT", "PRICE", "ORDERED", "RECEIVED", "REMAINING")
	for _, it := range o.Items {
		t.row(
			strconv.FormatInt(it.ID, 10),
			orDash(it.Product.SKU),
			orDash(it.Product.Name),
			Money(it.Product.UnitPrice),
			strconv.Itoa(it.Quantity),
			strconv.Itoa(it.ReceivedQuantity),
			strconv.Itoa(it.Remaining()),
		)
	}
	return t.flush()
}

// Payments renders a payment list.
func (r *Renderer) Payments(list []payments.Payment) error {
	if r.Format == FormatJSON {
		return r.json(list)
	}
	t := newTable(r.W, "ID", "ORDER", "DATE", "AMOUNT", "METHOD", "STATUS", "REFERENCE")
	for _, p := range list {
		t.row(
			strconv.FormatInt(p.ID, 10),
			"#"+strconv.FormatInt(p.PurchaseOrder.ID, 10),
			date(p.PaymentDate),
			Money(p.Amount),
			p.PaymentMethod.Label(),
			string(p.Status),
			orDash(p.TransactionReference),
		)
	}
	return t.flush()
}

// PaymentSummary renders the paid and outstanding balance of an order.
func (r *Renderer) PaymentSummary(s payments.Summary) error {
	if r.Format == FormatJSON {
		return r.json(s)
	}
	t := newTable(r.W, "ORDER", "TOTAL", "PAID", "OUTSTANDING")
	t.row("#"+strconv.FormatInt(s.OrderID, 10), Money(s.TotalAmount), Money(s.TotalPaid), Money(s.Outstanding))
	return t.flush()
}
