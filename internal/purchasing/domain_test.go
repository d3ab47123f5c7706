package purchasing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/stockroom/internal/shared"
)

func sampleOrder(status Status) Order {
	return Order{
		ID:     1,
		Status: status,
		Items: []Item{
			{ID: 10, Product: ProductRef{ID: 100, SKU: "A", UnitPrice: decimal.RequireFromString("2.50")}, Quantity: 5},
			{ID: 11, Product: ProductRef{ID: 101, SKU: "B", UnitPrice: decimal.RequireFromString("10")}, Quantity: 2},
		},
	}
}

func TestTransitionTable(t *testing.T) {
	cases := []struct {
		status   Status
		approve  bool
		cancel   bool
		receive  bool
		payment  bool
		terminal bool
	}{
		{StatusPending, true, true, false, false, false},
		{StatusApproved, false, true, true, true, false},
		{StatusReceived, false, false, false, true, true},
		{StatusCancelled, false, false, false, false, true},
	}
	require.Len(t, cases, len(Statuses))
	for _, tc := range cases {
		t.Run(string(tc.status), func(t *testing.T) {
			assert.True(t, tc.status.IsValid())
			assert.Equal(t, tc.approve, tc.status.CanApprove())
			assert.Equal(t, tc.cancel, tc.status.CanCancel())
			assert.Equal(t, tc.receive, tc.status.CanReceive())
			assert.Equal(t, tc.payment, tc.status.CanAcceptPayment())
			assert.Equal(t, tc.terminal, tc.status.IsTerminal())
			assert.NotEmpty(t, tc.status.Label())
		})
	}
	assert.False(t, Status("SHIPPED").IsValid())
	assert.False(t, Status("SHIPPED").CanApprove())
}

func TestApproveAndCancel(t *testing.T) {
	order := sampleOrder(StatusPending)
	require.NoError(t, order.Approve())
	require.Equal(t, StatusApproved, order.Status)

	err := order.Approve()
	require.ErrorIs(t, err, ErrInvalidState)
	require.ErrorIs(t, err, shared.ErrConflict)

	require.NoError(t, order.Cancel())
	require.Equal(t, StatusCancelled, order.Status)
	require.ErrorIs(t, order.Cancel(), ErrInvalidState)

	received := sampleOrder(StatusReceived)
	require.ErrorIs(t, received.Cancel(), ErrInvalidState)
	require.Equal(t, StatusReceived, received.Status)
}

func TestReceivePartialThenReceiveAll(t *testing.T) {
	order := sampleOrder(StatusPending)
	require.NoError(t, order.Approve())

	receipt, err := order.ReceivePartial(10, 3)
	require.NoError(t, err)
	require.Equal(t, Receipt{ItemID: 10, ProductID: 100, Quantity: 3}, receipt)

	_, err = order.ReceivePartial(10, 2)
	require.NoError(t, err)
	item, _ := order.Item(10)
	require.Equal(t, 5, item.ReceivedQuantity)
	require.Equal(t, StatusApproved, order.Status)

	receipts, err := order.ReceiveAll()
	require.NoError(t, err)
	require.Equal(t, []Receipt{{ItemID: 11, ProductID: 101, Quantity: 2}}, receipts)
	require.Equal(t, StatusReceived, order.Status)
	require.True(t, order.IsFullyReceived())
}

func TestReceivePartialNeverPromotes(t *testing.T) {
	order := sampleOrder(StatusApproved)
	_, err := order.ReceivePartial(10, 5)
	require.NoError(t, err)
	_, err = order.ReceivePartial(11, 2)
	require.NoError(t, err)
	require.True(t, order.IsFullyReceived())
	require.Equal(t, StatusApproved, order.Status)
}

func TestReceivePartialRejectionsLeaveOrderUntouched(t *testing.T) {
	cases := []struct {
		name   string
		status Status
		itemID int64
		qty    int
		kind   error
	}{
		{"pending", StatusPending, 10, 1, ErrInvalidState},
		{"received", StatusReceived, 10, 1, ErrInvalidState},
		{"cancelled", StatusCancelled, 10, 1, ErrInvalidState},
		{"unknown item", StatusApproved, 99, 1, ErrItemNotFound},
		{"zero", StatusApproved, 10, 0, ErrValidation},
		{"negative", StatusApproved, 10, -2, ErrValidation},
		{"over remaining", StatusApproved, 10, 6, ErrQuantityExceeded},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			order := sampleOrder(tc.status)
			before := sampleOrder(tc.status)
			_, err := order.ReceivePartial(tc.itemID, tc.qty)
			require.ErrorIs(t, err, tc.kind)
			require.Equal(t, before, order)
		})
	}
}

func TestReceivePartialOverRemainingNamesRemaining(t *testing.T) {
	order := sampleOrder(StatusApproved)
	_, err := order.ReceivePartial(10, 4)
	require.NoError(t, err)
	_, err = order.ReceivePartial(10, 2)
	require.ErrorIs(t, err, shared.ErrValidation)
	require.Contains(t, err.Error(), "remaining 1")
}

func TestReceiveAllEquivalentToPartials(t *testing.T) {
	direct := sampleOrder(StatusApproved)
	_, err := direct.ReceiveAll()
	require.NoError(t, err)

	stepwise := sampleOrder(StatusApproved)
	for _, item := range stepwise.Items {
		_, err := stepwise.ReceivePartial(item.ID, item.Remaining())
		require.NoError(t, err)
	}
	for i := range direct.Items {
		require.Equal(t, direct.Items[i].ReceivedQuantity, stepwise.Items[i].ReceivedQuantity)
	}
}

func TestReceiveAllRequiresApproved(t *testing.T) {
	order := sampleOrder(StatusPending)
	receipts, err := order.ReceiveAll()
	require.ErrorIs(t, err, ErrInvalidState)
	require.Nil(t, receipts)
	require.Equal(t, sampleOrder(StatusPending), order)
}

func TestTotalOf(t *testing.T) {
	order := sampleOrder(StatusPending)
	require.True(t, decimal.RequireFromString("32.50").Equal(TotalOf(order.Items)))
	require.True(t, decimal.Zero.Equal(TotalOf(nil)))
}
