package payments

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/stockroom/internal/events"
	"github.com/odyssey-erp/stockroom/internal/purchasing"
	"github.com/odyssey-erp/stockroom/internal/shared"
)

type memoryRepo struct {
	// mu stands in for the order row lock held for the whole transaction.
	mu       sync.Mutex
	orders   map[int64]OrderRef
	payments []Payment
}

type memoryTx struct {
	repo    *memoryRepo
	pending []Payment
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{orders: map[int64]OrderRef{
		1: {ID: 1, TotalAmount: decimal.NewFromInt(100), Status: purchasing.StatusApproved},
		2: {ID: 2, TotalAmount: decimal.NewFromInt(50), Status: purchasing.StatusPending},
		3: {ID: 3, TotalAmount: decimal.NewFromInt(50), Status: purchasing.StatusCancelled},
		4: {ID: 4, TotalAmount: decimal.NewFromInt(80), Status: purchasing.StatusReceived},
	}}
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	tx := &memoryTx{repo: r}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	r.payments = append(r.payments, tx.pending...)
	return nil
}

func (r *memoryRepo) List(ctx context.Context) ([]Payment, error) {
	return append([]Payment(nil), r.payments...), nil
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (Payment, error) {
	for _, p := range r.payments {
		if p.ID == id {
			return p, nil
		}
	}
	return Payment{}, fmt.Errorf("%w: id %d", ErrNotFound, id)
}

func (r *memoryRepo) ListByOrder(ctx context.Context, orderID int64) ([]Payment, error) {
	out := make([]Payment, 0)
	for _, p := range r.payments {
		if p.PurchaseOrder.ID == orderID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memoryRepo) GetOrder(ctx context.Context, orderID int64) (OrderRef, error) {
	o, ok := r.orders[orderID]
	if !ok {
		return OrderRef{}, fmt.Errorf("%w: id %d", ErrOrderNotFound, orderID)
	}
	return o, nil
}

func (tx *memoryTx) LockOrder(ctx context.Context, orderID int64) (OrderRef, error) {
	return tx.repo.GetOrder(ctx, orderID)
}

func (tx *memoryTx) ListByOrder(ctx context.Context, orderID int64) ([]Payment, error) {
	return tx.repo.ListByOrder(ctx, orderID)
}

func (tx *memoryTx) Insert(ctx context.Context, payment Payment) (Payment, error) {
	payment.ID = int64(len(tx.repo.payments) + len(tx.pending) + 1)
	tx.pending = append(tx.pending, payment)
	return payment, nil
}

type memoryIdempotency struct {
	keys    map[string]bool
	deleted []string
}

func (m *memoryIdempotency) CheckAndInsert(ctx context.Context, key, module string) error {
	if m.keys[key] {
		return shared.ErrIdempotencyConflict
	}
	m.keys[key] = true
	return nil
}

func (m *memoryIdempotency) Delete(ctx context.Context, key string) error {
	delete(m.keys, key)
	m.deleted = append(m.deleted, key)
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

type recordingMetrics struct {
	mu       sync.Mutex
	statuses []string
}

func (m *recordingMetrics) PaymentRecorded(status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses = append(m.statuses, status)
}

func newTestService(repo *memoryRepo) (*Service, *memoryIdempotency, *recordingPublisher, *recordingMetrics) {
	idem := &memoryIdempotency{keys: map[string]bool{}}
	pub := &recordingPublisher{}
	metrics := &recordingMetrics{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(repo, idem, pub, metrics, logger), idem, pub, metrics
}

func amount(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestPaymentsSettleOrderUpToTotal(t *testing.T) {
	svc, _, pub, metrics := newTestService(newMemoryRepo())
	ctx := context.Background()

	first, err := svc.Record(ctx, RecordInput{OrderID: 1, Amount: amount(60), Method: MethodCash})
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, first.Status)
	require.False(t, first.PaymentDate.IsZero())

	summary, err := svc.Summary(ctx, 1)
	require.NoError(t, err)
	require.True(t, amount(60).Equal(summary.TotalPaid))
	require.True(t, amount(40).Equal(summary.Outstanding))

	_, err = svc.Record(ctx, RecordInput{OrderID: 1, Amount: amount(40), Method: MethodUPI})
	require.NoError(t, err)
	summary, err = svc.Summary(ctx, 1)
	require.NoError(t, err)
	require.True(t, decimal.Zero.Equal(summary.Outstanding))

	_, err = svc.Record(ctx, RecordInput{OrderID: 1, Amount: amount(10), Method: MethodCash})
	require.ErrorIs(t, err, ErrExceedsTotal)
	require.ErrorIs(t, err, shared.ErrValidation)
	require.Contains(t, err.Error(), "outstanding 0.00")

	summary, _ = svc.Summary(ctx, 1)
	require.False(t, summary.Outstanding.IsNegative())
	require.Len(t, pub.events, 2)
	require.Equal(t, []string{"COMPLETED", "COMPLETED"}, metrics.statuses)
}

func TestNonCompletedPaymentsDoNotCount(t *testing.T) {
	repo := newMemoryRepo()
	svc, _, _, _ := newTestService(repo)
	ctx := context.Background()

	_, err := svc.Record(ctx, RecordInput{OrderID: 4, Amount: amount(30), Method: MethodCheque, Status: StatusPending})
	require.NoError(t, err)
	_, err = svc.Record(ctx, RecordInput{OrderID: 4, Amount: amount(20), Method: MethodCheque, Status: StatusFailed})
	require.NoError(t, err)

	summary, err := svc.Summary(ctx, 4)
	require.NoError(t, err)
	require.True(t, decimal.Zero.Equal(summary.TotalPaid))
	require.True(t, amount(80).Equal(summary.Outstanding))
}

func TestRecordRejections(t *testing.T) {
	svc, _, _, _ := newTestService(newMemoryRepo())
	ctx := context.Background()

	cases := []struct {
		name  string
		input RecordInput
		kind  error
	}{
		{"no order", RecordInput{Amount: amount(1), Method: MethodCash}, ErrValidation},
		{"zero amount", RecordInput{OrderID: 1, Amount: decimal.Zero, Method: MethodCash}, ErrValidation},
		{"negative amount", RecordInput{OrderID: 1, Amount: amount(-5), Method: MethodCash}, ErrValidation},
		{"no method", RecordInput{OrderID: 1, Amount: amount(1)}, ErrValidation},
		{"bad method", RecordInput{OrderID: 1, Amount: amount(1), Method: "BARTER"}, ErrValidation},
		{"bad status", RecordInput{OrderID: 1, Amount: amount(1), Method: MethodCash, Status: "LOST"}, ErrValidation},
		{"unknown order", RecordInput{OrderID: 99, Amount: amount(1), Method: MethodCash}, shared.ErrNotFound},
		{"pending order", RecordInput{OrderID: 2, Amount: amount(1), Method: MethodCash}, ErrOrderNotPayable},
		{"cancelled order", RecordInput{OrderID: 3, Amount: amount(1), Method: MethodCash}, ErrOrderNotPayable},
		{"over total", RecordInput{OrderID: 1, Amount: amount(101), Method: MethodCash}, ErrExceedsTotal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Record(ctx, tc.input)
			require.ErrorIs(t, err, tc.kind)
		})
	}
	all, _ := svc.List(ctx)
	require.Empty(t, all)
}

func TestIdempotencyKeyBlocksReplay(t *testing.T) {
	svc, idem, _, _ := newTestService(newMemoryRepo())
	ctx := context.Background()

	input := RecordInput{OrderID: 1, Amount: amount(10), Method: MethodCash, IdempotencyKey: "abc"}
	_, err := svc.Record(ctx, input)
	require.NoError(t, err)
	_, err = svc.Record(ctx, input)
	require.ErrorIs(t, err, shared.ErrConflict)

	failing := RecordInput{OrderID: 1, Amount: amount(1000), Method: MethodCash, IdempotencyKey: "big"}
	_, err = svc.Record(ctx, failing)
	require.ErrorIs(t, err, ErrExceedsTotal)
	require.Equal(t, []string{"big"}, idem.deleted)
	require.False(t, idem.keys["big"])

	all, _ := svc.List(ctx)
	require.Len(t, all, 1)
}

func TestSummaryAndListByOrderUnknownOrder(t *testing.T) {
	svc, _, _, _ := newTestService(newMemoryRepo())
	_, err := svc.Summary(context.Background(), 42)
	require.ErrorIs(t, err, shared.ErrNotFound)
	_, err = svc.ListByOrder(context.Background(), 42)
	require.ErrorIs(t, err, ErrOrderNotFound)
}

func newTestRouter(svc *Service) http.Handler {
	h := NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), svc)
	r := chi.NewRouter()
	r.Route("/api/payments", h.MountRoutes)
	return r
}

func TestHandlerRecordAndSummary(t *testing.T) {
	svc, _, _, _ := newTestService(newMemoryRepo())
	router := newTestRouter(svc)

	body := `{"purchaseOrder":{"id":1},"amount":60,"paymentMethod":"BANK_TRANSFER","transactionReference":"TX-1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/payments", strings.NewReader(body))
	req.Header.Set(IdempotencyHeader, "k1")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.Contains(t, rr.Body.String(), `"status":"COMPLETED"`)

	req = httptest.NewRequest(http.MethodPost, "/api/payments", strings.NewReader(body))
	req.Header.Set(IdempotencyHeader, "k1")
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusConflict, rr.Code)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/payments",
		strings.NewReader(`{"purchaseOrder":{"id":1},"amount":50,"paymentMethod":"CASH"}`)))
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "payment amount exceeds order total: outstanding 40.00", rr.Body.String())

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/payments/order/1/summary", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), `"totalPaid":"60"`)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/payments/order/1", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), `"transactionReference":"TX-1"`)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/payments/9", nil))
	require.Equal(t, http.StatusNotFound, rr.Code)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/payments",
		strings.NewReader(`{"purchaseOrder":{"id":1},"amount":5}`)))
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Contains(t, rr.Body.String(), "PaymentMethod")
}

func TestConcurrentPaymentsStayWithinTotal(t *testing.T) {
	repo := newMemoryRepo()
	svc, _, _, _ := newTestService(repo)
	ctx := context.Background()
	_, err := svc.Record(ctx, RecordInput{OrderID: 1, Amount: amount(60), Method: MethodCash})
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Record(ctx, RecordInput{OrderID: 1, Amount: amount(40), Method: MethodBankTransfer})
		}(i)
	}
	wg.Wait()

	var rejected int
	for _, err := range errs {
		if err != nil {
			require.ErrorIs(t, err, ErrExceedsTotal)
			rejected++
		}
	}
	require.Equal(t, 1, rejected)

	summary, err := svc.Summary(ctx, 1)
	require.NoError(t, err)
	require.True(t, summary.Outstanding.IsZero(), "outstanding %s", summary.Outstanding)
}

func TestRecordTransactionsReadCommittedRows(t *testing.T) {
	require.Equal(t, pgx.ReadCommitted, recordTxOptions.IsoLevel)
}

func TestAmountPrecision(t *testing.T) {
	svc, _, _, _ := newTestService(newMemoryRepo())
	ctx := context.Background()

	for _, raw := range []string{"0.001", "0.004", "10.125"} {
		_, err := svc.Record(ctx, RecordInput{OrderID: 1, Amount: decimal.RequireFromString(raw), Method: MethodCash})
		require.ErrorIs(t, err, shared.ErrValidation, raw)
		require.Contains(t, err.Error(), "more than two decimal places")
	}

	p, err := svc.Record(ctx, RecordInput{OrderID: 1, Amount: decimal.RequireFromString("12.500"), Method: MethodCash})
	require.NoError(t, err)
	require.True(t, p.Amount.Equal(decimal.RequireFromString("12.5")))
}

func TestHandlerRejectsSubCentAmount(t *testing.T) {
	svc, _, _, _ := newTestService(newMemoryRepo())
	r := newTestRouter(svc)

	rr := httptest.NewRecorder()
	body := `{"purchaseOrder":{"id":1},"amount":0.001,"paymentMethod":"CASH"}`
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/payments", strings.NewReader(body)))
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Contains(t, rr.Body.String(), "more than two decimal places")
}
