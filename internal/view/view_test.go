package view

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/stockroom/internal/dashboard"
	"github.com/odyssey-erp/stockroom/internal/payments"
	"github.com/odyssey-erp/stockroom/internal/products"
	"github.com/odyssey-erp/stockroom/internal/purchasing"
	"github.com/odyssey-erp/stockroom/internal/vendors"
)

func day(s string) time.Time {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func render(t *testing.T, format Format, fn func(*Renderer) error) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, fn(New(&buf, format)))
	return buf.Bytes()
}

func TestMoney(t *testing.T) {
	assert.Equal(t, "$2.50", Money(dec("2.5")))
	assert.Equal(t, "$1,250.00", Money(dec("1250")))
	assert.Equal(t, "$0.00", Money(decimal.Zero))
	assert.Equal(t, "$10.01", Money(dec("10.005")))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("json")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = ParseFormat("yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestGoldenViews(t *testing.T) {
	g := goldie.New(t)

	g.Assert(t, "vendors_text", render(t, FormatText, func(r *Renderer) error {
		return r.Vendors([]vendors.Vendor{
			{ID: 1, Name: "Acme Supply", ContactNumber: "555-0100", Email: "sales@acme.test", Address: "1 Main St"},
			{ID: 2, Name: "Borealis Parts", ContactNumber: "555-0200"},
		})
	}))

	g.Assert(t, "products_text", render(t, FormatText, func(r *Renderer) error {
		return r.Products([]products.Product{
			{ID: 1, SKU: "SKU-001", Name: "Widget", UnitPrice: dec("2.50"), CurrentStock: 5},
			{ID: 2, SKU: "SKU-002", Name: "Gadget Pro", UnitPrice: dec("1250"), CurrentStock: 120},
		})
	}))

	g.Assert(t, "orders_text", render(t, FormatText, func(r *Renderer) error {
		return r.Orders([]purchasing.Order{
			{ID: 1, Vendor: purchasing.VendorRef{ID: 1, Name: "Acme Supply"}, OrderDate: day("2026-01-15"), TotalAmount: dec("32.50"), Status: purchasing.StatusPending},
			{ID: 2, Vendor: purchasing.VendorRef{ID: 2, Name: "Borealis Parts"}, OrderDate: day("2026-02-01"), TotalAmount: dec("1250"), Status: purchasing.StatusReceived},
		})
	}))

	g.Assert(t, "order_text", render(t, FormatText, func(r *Renderer) error {
		return r.Order(purchasing.Order{
			ID:          1,
			Vendor:      purchasing.VendorRef{ID: 1, Name: "Acme Supply"},
			OrderDate:   day("2026-01-15"),
			TotalAmount: dec("32.50"),
			Status:      purchasing.StatusApproved,
			Items: []purchasing.Item{
				{ID: 101, Product: purchasing.ProductRef{ID: 1, SKU: "SKU-001", Name: "Widget", UnitPrice: dec("2.50")}, Quantity: 5, ReceivedQuantity: 3},
				{ID: 102, Product: purchasing.ProductRef{ID: 2, SKU: "SKU-002", Name: "Gadget Pro", UnitPrice: dec("10")}, Quantity: 2},
			},
		})
	}))

	g.Assert(t, "payments_text", render(t, FormatText, func(r *Renderer) error {
		return r.Payments([]payments.Payment{
			{ID: 1, PurchaseOrder: payments.OrderRef{ID: 1}, PaymentDate: day("2026-01-20"), Amount: dec("60"), PaymentMethod: payments.MethodCash, Status: payments.StatusCompleted, TransactionReference: "TX-1"},
			{ID: 2, PurchaseOrder: payments.OrderRef{ID: 1}, PaymentDate: day("2026-01-21"), Amount: dec("40"), PaymentMethod: payments.MethodBankTransfer, Status: payments.StatusPending},
		})
	}))

	g.Assert(t, "summary_text", render(t, FormatText, func(r *Renderer) error {
		return r.PaymentSummary(payments.Summary{OrderID: 1, TotalAmount: dec("100"), TotalPaid: dec("60"), Outstanding: dec("40")})
	}))

	summary := dashboard.Summary{VendorCount: 2, ProductCount: 4, PendingOrderCount: 1, LowStockCount: 2}
	g.Assert(t, "dashboard_text", render(t, FormatText, func(r *Renderer) error {
		return r.Dashboard(summary)
	}))
	g.Assert(t, "dashboard_json", render(t, FormatJSON, func(r *Renderer) error {
		return r.Dashboard(summary)
	}))
}

func TestJSONModeEmitsValues(t *testing.T) {
	out := render(t, FormatJSON, func(r *Renderer) error {
		return r.Vendors([]vendors.Vendor{{ID: 3, Name: "Cobalt", ContactNumber: "1"}})
	})

	var decoded []vendors.Vendor
	require.NoError(t, json.Unmarshal(out, &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "Cobalt", decoded[0].Name)
}

func TestMessage(t *testing.T) {
	out := render(t, FormatText, func(r *Renderer) error {
		return r.Message(map[string]int{"id": 4}, "Approved order #%d", 4)
	})
	assert.Equal(t, "Approved order #4\n", string(out))

	out = render(t, FormatJSON, func(r *Renderer) error {
		return r.Message(map[string]int{"id": 4}, "Approved order #%d", 4)
	})
	assert.JSONEq(t, `{"id":4}`, string(out))
}

func TestEmptyListsRenderHeaders(t *testing.T) {
	out := render(t, FormatText, func(r *Renderer) error { return r.Orders(nil) })
	assert.Equal(t, "ID  VENDOR  DATE  TOTAL  STATUS\n", string(out))
}
