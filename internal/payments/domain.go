package payments

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/stockroom/internal/purchasing"
	"github.com/odyssey-erp/stockroom/internal/shared"
)

// Method is how a payment was made.
type Method string

// Supported payment methods.
const (
	MethodCash         Method = "CASH"
	MethodBankTransfer Method = "BANK_TRANSFER"
	MethodCheque       Method = "CHEQUE"
	MethodCreditCard   Method = "CREDIT_CARD"
	MethodUPI          Method = "UPI"
	MethodOther        Method = "OTHER"
)

// Methods lists every method.
var Methods = []Method{MethodCash, MethodBankTransfer, MethodCheque, MethodCreditCard, MethodUPI, MethodOther}

// IsValid reports whether m is a known method.
func (m Method) IsValid() bool {
	switch m {
	case MethodCash, MethodBankTransfer, MethodCheque, MethodCreditCard, MethodUPI, MethodOther:
		return true
	}
	return false
}

// Label is the display name of m.
func (m Method) Label() string {
	switch m {
	case MethodCash:
		return "Cash"
	case MethodBankTransfer:
		return "Bank Transfer"
	case MethodCheque:
		return "Cheque"
	case MethodCreditCard:
		return "Credit Card"
	case MethodUPI:
		return "UPI"
	case MethodOther:
		return "Other"
	}
	return string(m)
}

// Status is the settlement state of a payment.
type Status string

// Payment statuses. Only COMPLETED payments count towards the paid total.
const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
	StatusCancelled Status = "CANCELLED"
)

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// CountsTowardsPaid reports whether a payment in s settles the order.
func (s Status) CountsTowardsPaid() bool {
	switch s {
	case StatusCompleted:
		return true
	case StatusPending, StatusFailed, StatusCancelled:
		return false
	}
	return false
}

// OrderRef identifies the order a payment settles.
type OrderRef struct {
	ID          int64             `json:"id"`
	TotalAmount decimal.Decimal   `json:"totalAmount"`
	Status      purchasing.Status `json:"status"`
}

// Payment is money paid against a purchase order.
type Payment struct {
	ID                   int64           `json:"id"`
	PurchaseOrder        OrderRef        `json:"purchaseOrder"`
	Amount               decimal.Decimal `json:"amount"`
	PaymentDate          time.Time       `json:"paymentDate"`
	PaymentMethod        Method          `json:"paymentMethod"`
	Status               Status          `json:"status"`
	TransactionReference string          `json:"transactionReference,omitempty"`
	Notes                string          `json:"notes,omitempty"`
}

// Summary is the paid and outstanding balance of one order.
type Summary struct {
	OrderID     int64           `json:"orderId"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	TotalPaid   decimal.Decimal `json:"totalPaid"`
	Outstanding decimal.Decimal `json:"outstanding"`
}

// Summarize derives the balance of order from its payments.
func Summarize(order OrderRef, payments []Payment) Summary {
	paid := decimal.Zero
	for _, p := range payments {
		if p.Status.CountsTowardsPaid() {
			paid = paid.Add(p.Amount)
		}
	}
	return Summary{
		OrderID:     order.ID,
		TotalAmount: order.TotalAmount,
		TotalPaid:   paid,
		Outstanding: order.TotalAmount.Sub(paid),
	}
}

var (
	// ErrNotFound indicates the payment does not exist.
	ErrNotFound = shared.NewError(shared.ErrNotFound, "payment not found")
	// ErrOrderNotFound indicates the referenced order does not exist.
	ErrOrderNotFound = shared.NewError(shared.ErrNotFound, "purchase order not found")
	// ErrValidation indicates invalid input.
	ErrValidation = shared.NewError(shared.ErrValidation, "invalid payment")
	// ErrOrderNotPayable indicates the order status does not accept payments.
	ErrOrderNotPayable = shared.NewError(shared.ErrValidation, "order cannot accept payments")
	// ErrExceedsTotal indicates the payment would overpay the order.
	ErrExceedsTotal = shared.NewError(shared.ErrValidation, "payment amount exceeds order total")
)
