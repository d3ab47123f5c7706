package purchasing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/stockroom/internal/shared"
)

// Status is the purchase order lifecycle state.
type Status string

// Purchase order lifecycle statuses. RECEIVED and CANCELLED are terminal.
const (
	StatusPending   Status = "PENDING"
	StatusApproved  Status = "APPROVED"
	StatusReceived  Status = "RECEIVED"
	StatusCancelled Status = "CANCELLED"
)

// Statuses lists every status in lifecycle order.
var Statuses = []Status{StatusPending, StatusApproved, StatusReceived, StatusCancelled}

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusReceived, StatusCancelled:
		return true
	}
	return false
}

// CanApprove reports whether approve is allowed from s.
func (s Status) CanApprove() bool {
	switch s {
	case StatusPending:
		return true
	case StatusApproved, StatusReceived, StatusCancelled:
		return false
	}
	return false
}

// CanCancel reports whether cancel is allowed from s.
func (s Status) CanCancel() bool {
	switch s {
	case StatusPending, StatusApproved:
		return true
	case StatusReceived, StatusCancelled:
		return false
	}
	return false
}

// CanReceive reports whether goods may be received in s.
func (s Status) CanReceive() bool {
	switch s {
	case StatusApproved:
		return true
	case StatusPending, StatusReceived, StatusCancelled:
		return false
	}
	return false
}

// CanAcceptPayment reports whether payments may be recorded against an
// order in s.
func (s Status) CanAcceptPayment() bool {
	switch s {
	case StatusApproved, StatusReceived:
		return true
	case StatusPending, StatusCancelled:
		return false
	}
	return false
}

// IsTerminal reports whether no further transition leaves s.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusReceived, StatusCancelled:
		return true
	case StatusPending, StatusApproved:
		return false
	}
	return false
}

// Label is the display name of s.
func (s Status) Label() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusApproved:
		return "Approved"
	case StatusReceived:
		return "Received"
	case StatusCancelled:
		return "Cancelled"
	}
	return string(s)
}

// VendorRef identifies the vendor of an order.
type VendorRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name,omitempty"`
}

// ProductRef identifies the product of a line item.
type ProductRef struct {
	ID        int64           `json:"id"`
	SKU       string          `json:"sku,omitempty"`
	Name      string          `json:"name,omitempty"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// Item is one ordered product with its receipt progress.
// Invariant: 0 <= ReceivedQuantity <= Quantity.
type Item struct {
	ID               int64      `json:"id"`
	Product          ProductRef `json:"product"`
	Quantity         int        `json:"quantity"`
	ReceivedQuantity int        `json:"receivedQuantity"`
}

// Remaining is the quantity still to be received.
func (i Item) Remaining() int {
	if i.ReceivedQuantity >= i.Quantity {
		return 0
	}
	return i.Quantity - i.ReceivedQuantity
}

// IsFullyReceived reports whether the whole quantity has arrived.
func (i Item) IsFullyReceived() bool {
	return i.ReceivedQuantity >= i.Quantity
}

// Amount is quantity times unit price.
func (i Item) Amount() decimal.Decimal {
	return i.Product.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order is a purchase order aggregate.
type Order struct {
	ID          int64           `json:"id"`
	Vendor      VendorRef       `json:"vendor"`
	OrderDate   time.Time       `json:"orderDate"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Status      Status          `json:"status"`
	Items       []Item          `json:"items"`
}

// Receipt records goods taken into stock for one item.
type Receipt struct {
	ItemID    int64
	ProductID int64
	Quantity  int
}

var (
	// ErrNotFound indicates the order does not exist.
	ErrNotFound = shared.NewError(shared.ErrNotFound, "purchase order not found")
	// ErrItemNotFound indicates the line item is not part of the order.
	ErrItemNotFound = shared.NewError(shared.ErrNotFound, "order item not found")
	// ErrInvalidState occurs when an action violates the status workflow.
	ErrInvalidState = shared.NewError(shared.ErrConflict, "invalid purchase order state")
	// ErrValidation indicates invalid input.
	ErrValidation = shared.NewError(shared.ErrValidation, "invalid purchase order")
	// ErrQuantityExceeded indicates a receipt larger than the remaining quantity.
	ErrQuantityExceeded = shared.NewError(shared.ErrValidation, "cannot receive more than ordered")
)

// TotalOf sums the line amounts of items.
func TotalOf(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Amount())
	}
	return total
}

// Approve moves a pending order to APPROVED.
func (o *Order) Approve() error {
	if !o.Status.CanApprove() {
		return fmt.Errorf("%w: only pending orders can be approved, current status is %s", ErrInvalidState, o.Status)
	}
	o.Status = StatusApproved
	return nil
}

// Cancel moves a pending or approved order to CANCELLED. Stock already
// received stays in stock.
func (o *Order) Cancel() error {
	if !o.Status.CanCancel() {
		return fmt.Errorf("%w: cannot cancel an order in status %s", ErrInvalidState, o.Status)
	}
	o.Status = StatusCancelled
	return nil
}

// ReceivePartial records qty units of one item. The order stays APPROVED
// even when every item ends up fully received; only ReceiveAll completes it.
// The order is left untouched on error.
func (o *Order) ReceivePartial(itemID int64, qty int) (Receipt, error) {
	if !o.Status.CanReceive() {
		return Receipt{}, fmt.Errorf("%w: order must be approved before receiving goods, current status is %s", ErrInvalidState, o.Status)
	}
	idx := o.itemIndex(itemID)
	if idx < 0 {
		return Receipt{}, fmt.Errorf("%w: item %d on order %d", ErrItemNotFound, itemID, o.ID)
	}
	if qty <= 0 {
		return Receipt{}, fmt.Errorf("%w: receive quantity must be positive", ErrValidation)
	}
	item := &o.Items[idx]
	if remaining := item.Remaining(); qty > remaining {
		return Receipt{}, fmt.Errorf("%w: remaining %d", ErrQuantityExceeded, remaining)
	}
	item.ReceivedQuantity += qty
	return Receipt{ItemID: item.ID, ProductID: item.Product.ID, Quantity: qty}, nil
}

// ReceiveAll receives the remaining quantity of every item and marks the
// order RECEIVED. Items already fully received produce no receipt.
func (o *Order) ReceiveAll() ([]Receipt, error) {
	if !o.Status.CanReceive() {
		return nil, fmt.Errorf("%w: order must be approved before receiving goods, current status is %s", ErrInvalidState, o.Status)
	}
	receipts := make([]Receipt, 0, len(o.Items))
	for i := range o.Items {
		item := &o.Items[i]
		remaining := item.Remaining()
		item.ReceivedQuantity = item.Quantity
		if remaining == 0 {
			continue
		}
		receipts = append(receipts, Receipt{ItemID: item.ID, ProductID: item.Product.ID, Quantity: remaining})
	}
	o.Status = StatusReceived
	return receipts, nil
}

// Item returns the item with itemID.
func (o *Order) Item(itemID int64) (Item, bool) {
	idx := o.itemIndex(itemID)
	if idx < 0 {
		return Item{}, false
	}
	return o.Items[idx], true
}

// IsFullyReceived reports whether every item has been received in full.
func (o *Order) IsFullyReceived() bool {
	for _, item := range o.Items {
		if !item.IsFullyReceived() {
			return false
		}
	}
	return len(o.Items) > 0
}

func (o *Order) itemIndex(itemID int64) int {
	for i := range o.Items {
		if o.Items[i].ID == itemID {
			return i
		}
	}
	return -1
}
