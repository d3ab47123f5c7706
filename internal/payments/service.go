package payments

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/stockroom/internal/events"
)

// RepositoryPort describes repository operations used by Service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	List(ctx context.Context) ([]Payment, error)
	Get(ctx context.Context, id int64) (Payment, error)
	ListByOrder(ctx context.Context, orderID int64) ([]Payment, error)
	GetOrder(ctx context.Context, orderID int64) (OrderRef, error)
}

// IdempotencyPort guards against replayed requests.
type IdempotencyPort interface {
	CheckAndInsert(ctx context.Context, key, module string) error
	Delete(ctx context.Context, key string) error
}

// Recorder receives payment metrics.
type Recorder interface {
	PaymentRecorded(status string)
}

const idempotencyModule = "payments.record"

// Service records payments and derives order balances.
type Service struct {
	repo        RepositoryPort
	idempotency IdempotencyPort
	publisher   events.Publisher
	metrics     Recorder
	logger      *slog.Logger
	now         func() time.Time
}

// NewService constructs the payment service. idempotency, publisher and
// metrics may be nil.
func NewService(repo RepositoryPort, idem IdempotencyPort, publisher events.Publisher, metrics Recorder, logger *slog.Logger) *Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, idempotency: idem, publisher: publisher, metrics: metrics, logger: logger, now: time.Now}
}

// RecordInput describes a payment to record.
type RecordInput struct {
	OrderID              int64
	Amount               decimal.Decimal
	Method               Method
	Status               Status
	TransactionReference string
	Notes                string
	IdempotencyKey       string
}

// List returns all payments.
func (s *Service) List(ctx context.Context) ([]Payment, error) {
	return s.repo.List(ctx)
}

// Get returns one payment.
func (s *Service) Get(ctx context.Context, id int64) (Payment, error) {
	if id <= 0 {
		return Payment{}, fmt.Errorf("%w: id must be positive", ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

// ListByOrder returns the payments of one order.
func (s *Service) ListByOrder(ctx context.Context, orderID int64) ([]Payment, error) {
	if _, err := s.repo.GetOrder(ctx, orderID); err != nil {
		return nil, err
	}
	return s.repo.ListByOrder(ctx, orderID)
}

// Summary returns the paid and outstanding amounts of an order.
func (s *Service) Summary(ctx context.Context, orderID int64) (Summary, error) {
	order, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return Summary{}, err
	}
	payments, err := s.repo.ListByOrder(ctx, orderID)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(order, payments), nil
}

// Record stores a payment after checking the order accepts it and that it
// does not overpay the order total.
func (s *Service) Record(ctx context.Context, input RecordInput) (Payment, error) {
	if input.Status == "" {
		input.Status = StatusCompleted
	}
	if err := validateInput(input); err != nil {
		return Payment{}, err
	}

	key := strings.TrimSpace(input.IdempotencyKey)
	if key != "" && s.idempotency != nil {
		if err := s.idempotency.CheckAndInsert(ctx, key, idempotencyModule); err != nil {
			return Payment{}, err
		}
	}

	var created Payment
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		order, err := tx.LockOrder(ctx, input.OrderID)
		if err != nil {
			return err
		}
		if !order.Status.CanAcceptPayment() {
			return fmt.Errorf("%w: order %d is %s", ErrOrderNotPayable, order.ID, order.Status)
		}
		existing, err := tx.ListByOrder(ctx, order.ID)
		if err != nil {
			return err
		}
		summary := Summarize(order, existing)
		if summary.TotalPaid.Add(input.Amount).GreaterThan(order.TotalAmount) {
			return fmt.Errorf("%w: outstanding %s", ErrExceedsTotal, summary.Outstanding.StringFixed(2))
		}
		created, err = tx.Insert(ctx, Payment{
			PurchaseOrder:        order,
			Amount:               input.Amount,
			PaymentDate:          s.now().UTC(),
			PaymentMethod:        input.Method,
			Status:               input.Status,
			TransactionReference: strings.TrimSpace(input.TransactionReference),
			Notes:                strings.TrimSpace(input.Notes),
		})
		return err
	})
	if err != nil {
		if key != "" && s.idempotency != nil {
			if delErr := s.idempotency.Delete(ctx, key); delErr != nil {
				s.logger.WarnContext(ctx, "release idempotency key failed", slog.String("key", key), slog.Any("error", delErr))
			}
		}
		return Payment{}, err
	}

	if s.metrics != nil {
		s.metrics.PaymentRecorded(string(created.Status))
	}
	event := events.New(events.PaymentRecorded, map[string]any{
		"paymentId": created.ID,
		"orderId":   created.PurchaseOrder.ID,
		"amount":    created.Amount.StringFixed(2),
		"status":    created.Status,
	})
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "publish event failed", slog.String("type", event.Type), slog.Any("error", err))
	}
	s.logger.InfoContext(ctx, "payment recorded", slog.Int64("payment_id", created.ID), slog.Int64("order_id", created.PurchaseOrder.ID), slog.String("amount", created.Amount.StringFixed(2)))
	return created, nil
}

func validateInput(input RecordInput) error {
	if input.OrderID <= 0 {
		return fmt.Errorf("%w: purchase order is required", ErrValidation)
	}
	if !input.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", ErrValidation)
	}
	if !input.Amount.Equal(input.Amount.Round(2)) {
		return fmt.Errorf("%w: amount %s has more than two decimal places", ErrValidation, input.Amount)
	}
	if input.Method == "" {
		return fmt.Errorf("%w: payment method is required", ErrValidation)
	}
	if !input.Method.IsValid() {
		return fmt.Errorf("%w: unknown payment method %s", ErrValidation, input.Method)
	}
	if !input.Status.IsValid() {
		return fmt.Errorf("%w: unknown payment status %s", ErrValidation, input.Status)
	}
	return nil
}
