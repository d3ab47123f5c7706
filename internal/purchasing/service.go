package purchasing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/odyssey-erp/stockroom/internal/events"
)

// RepositoryPort describes repository operations used by Service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	List(ctx context.Context) ([]Order, error)
	Get(ctx context.Context, id int64) (Order, error)
}

// Recorder receives workflow metrics.
type Recorder interface {
	OrderTransitioned(to string)
	GoodsReceived(units int)
}

// StockScanner schedules a low stock scan.
type StockScanner interface {
	EnqueueLowStockScan(ctx context.Context) error
}

// Service orchestrates the purchase order workflow.
type Service struct {
	repo      RepositoryPort
	publisher events.Publisher
	metrics   Recorder
	scanner   StockScanner
	logger    *slog.Logger
	now       func() time.Time
}

// NewService constructs the purchasing service. publisher, metrics and
// scanner may be nil.
func NewService(repo RepositoryPort, publisher events.Publisher, metrics Recorder, scanner StockScanner, logger *slog.Logger) *Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, publisher: publisher, metrics: metrics, scanner: scanner, logger: logger, now: time.Now}
}

// CreateInput describes a new purchase order.
type CreateInput struct {
	VendorID int64
	Items    []ItemInput
}

// ItemInput is one requested line.
type ItemInput struct {
	ProductID int64
	Quantity  int
}

// List returns all orders.
func (s *Service) List(ctx context.Context) ([]Order, error) {
	return s.repo.List(ctx)
}

// Get returns one order.
func (s *Service) Get(ctx context.Context, id int64) (Order, error) {
	if id <= 0 {
		return Order{}, fmt.Errorf("%w: id must be positive", ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

// Create stores a PENDING order priced from the current product prices.
func (s *Service) Create(ctx context.Context, input CreateInput) (Order, error) {
	if input.VendorID <= 0 {
		return Order{}, fmt.Errorf("%w: vendor is required", ErrValidation)
	}
	if len(input.Items) == 0 {
		return Order{}, fmt.Errorf("%w: at least one item is required", ErrValidation)
	}
	ids := make([]int64, 0, len(input.Items))
	for i, line := range input.Items {
		if line.ProductID <= 0 {
			return Order{}, fmt.Errorf("%w: item %d has no product", ErrValidation, i+1)
		}
		if line.Quantity <= 0 {
			return Order{}, fmt.Errorf("%w: item %d quantity must be positive", ErrValidation, i+1)
		}
		ids = append(ids, line.ProductID)
	}

	var created Order
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		vendor, err := tx.GetVendor(ctx, input.VendorID)
		if err != nil {
			return err
		}
		products, err := tx.GetProducts(ctx, ids)
		if err != nil {
			return err
		}
		items := make([]Item, 0, len(input.Items))
		for _, line := range input.Items {
			product, ok := products[line.ProductID]
			if !ok {
				return fmt.Errorf("%w: product %d not found", ErrValidation, line.ProductID)
			}
			items = append(items, Item{Product: product, Quantity: line.Quantity})
		}
		order := Order{
			Vendor:      vendor,
			OrderDate:   s.now().UTC(),
			TotalAmount: TotalOf(items),
			Status:      StatusPending,
			Items:       items,
		}
		created, err = tx.CreateOrder(ctx, order)
		return err
	})
	if err != nil {
		return Order{}, err
	}
	s.observe(ctx, events.OrderCreated, created, nil)
	return created, nil
}

// Approve moves a PENDING order to APPROVED.
func (s *Service) Approve(ctx context.Context, id int64) (Order, error) {
	return s.transition(ctx, id, events.OrderApproved, func(o *Order) ([]Receipt, error) {
		return nil, o.Approve()
	})
}

// Cancel moves a PENDING or APPROVED order to CANCELLED.
func (s *Service) Cancel(ctx context.Context, id int64) (Order, error) {
	return s.transition(ctx, id, events.OrderCancelled, func(o *Order) ([]Receipt, error) {
		return nil, o.Cancel()
	})
}

// ReceiveAll receives every outstanding unit and marks the order RECEIVED.
func (s *Service) ReceiveAll(ctx context.Context, id int64) (Order, error) {
	return s.transition(ctx, id, events.OrderReceived, func(o *Order) ([]Receipt, error) {
		return o.ReceiveAll()
	})
}

// ReceivePartial receives qty units of one item.
func (s *Service) ReceivePartial(ctx context.Context, id, itemID int64, qty int) (Order, error) {
	return s.transition(ctx, id, events.OrderItemsReceived, func(o *Order) ([]Receipt, error) {
		receipt, err := o.ReceivePartial(itemID, qty)
		if err != nil {
			return nil, err
		}
		return []Receipt{receipt}, nil
	})
}

// transition locks the order, applies mutate and persists the status,
// received quantities and stock increments in one transaction.
func (s *Service) transition(ctx context.Context, id int64, eventType string, mutate func(*Order) ([]Receipt, error)) (Order, error) {
	if id <= 0 {
		return Order{}, fmt.Errorf("%w: id must be positive", ErrValidation)
	}
	var (
		updated  Order
		receipts []Receipt
	)
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		order, err := tx.LockOrder(ctx, id)
		if err != nil {
			return err
		}
		before := order.Status
		receipts, err = mutate(&order)
		if err != nil {
			return err
		}
		for _, receipt := range receipts {
			item, _ := order.Item(receipt.ItemID)
			if err := tx.SetReceivedQuantity(ctx, receipt.ItemID, item.ReceivedQuantity); err != nil {
				return err
			}
			if err := tx.AddStock(ctx, receipt.ProductID, receipt.Quantity); err != nil {
				return err
			}
		}
		if order.Status != before {
			if err := tx.UpdateStatus(ctx, order.ID, order.Status); err != nil {
				return err
			}
		}
		updated = order
		return nil
	})
	if err != nil {
		return Order{}, err
	}
	s.observe(ctx, eventType, updated, receipts)
	return updated, nil
}

type orderEvent struct {
	OrderID  int64     `json:"orderId"`
	VendorID int64     `json:"vendorId"`
	Status   Status    `json:"status"`
	Receipts []receipt `json:"receipts,omitempty"`
}

type receipt struct {
	ItemID    int64 `json:"itemId"`
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

func (s *Service) observe(ctx context.Context, eventType string, order Order, receipts []Receipt) {
	units := 0
	payload := orderEvent{OrderID: order.ID, VendorID: order.Vendor.ID, Status: order.Status}
	for _, r := range receipts {
		units += r.Quantity
		payload.Receipts = append(payload.Receipts, receipt{ItemID: r.ItemID, ProductID: r.ProductID, Quantity: r.Quantity})
	}
	if s.metrics != nil {
		if eventType != events.OrderItemsReceived {
			s.metrics.OrderTransitioned(string(order.Status))
		}
		s.metrics.GoodsReceived(units)
	}
	if units > 0 && s.scanner != nil {
		if err := s.scanner.EnqueueLowStockScan(ctx); err != nil {
			s.logger.WarnContext(ctx, "enqueue low stock scan failed", slog.Int64("order_id", order.ID), slog.Any("error", err))
		}
	}
	if err := s.publisher.Publish(ctx, events.New(eventType, payload)); err != nil {
		s.logger.WarnContext(ctx, "publish event failed", slog.String("type", eventType), slog.Int64("order_id", order.ID), slog.Any("error", err))
	}
	s.logger.InfoContext(ctx, "purchase order updated", slog.String("event", eventType), slog.Int64("order_id", order.ID), slog.String("status", string(order.Status)), slog.Int("units_received", units))
}
