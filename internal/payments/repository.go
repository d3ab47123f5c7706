package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/stockroom/internal/platform/db"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes transactional operations.
type TxRepository interface {
	LockOrder(ctx context.Context, orderID int64) (OrderRef, error)
	ListByOrder(ctx context.Context, orderID int64) ([]Payment, error)
	Insert(ctx context.Context, payment Payment) (Payment, error)
}

type txRepo struct {
	tx pgx.Tx
}

// recordTxOptions runs payment transactions at read committed: once
// LockOrder returns, ListByOrder must see payments committed by the previous
// holder of the order lock. A repeatable-read snapshot would hide them.
var recordTxOptions = pgx.TxOptions{IsoLevel: pgx.ReadCommitted}

// WithTx wraps callback in a read-committed transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTxOptions(ctx, r.pool, recordTxOptions, func(ctx context.Context, tx pgx.Tx) error {
		return fn(ctx, &txRepo{tx: tx})
	})
}

const paymentColumns = `p.id, p.purchase_order_id, o.total_amount, o.status, p.amount, p.payment_date, p.payment_method, p.status, p.transaction_reference, p.notes`

const paymentFrom = ` FROM payments p JOIN purchase_orders o ON o.id = p.purchase_order_id`

func scanPayment(row pgx.Row) (Payment, error) {
	var p Payment
	err := row.Scan(&p.ID, &p.PurchaseOrder.ID, &p.PurchaseOrder.TotalAmount, &p.PurchaseOrder.Status,
		&p.Amount, &p.PaymentDate, &p.PaymentMethod, &p.Status, &p.TransactionReference, &p.Notes)
	return p, err
}

func listPayments(ctx context.Context, q db.Querier, where string, args ...any) ([]Payment, error) {
	rows, err := q.Query(ctx, `SELECT `+paymentColumns+paymentFrom+where+` ORDER BY p.id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	payments := make([]Payment, 0)
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func getOrder(ctx context.Context, q db.Querier, orderID int64, forUpdate bool) (OrderRef, error) {
	query := `SELECT id, total_amount, status FROM purchase_orders WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	var ref OrderRef
	err := q.QueryRow(ctx, query, orderID).Scan(&ref.ID, &ref.TotalAmount, &ref.Status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return OrderRef{}, fmt.Errorf("%w: id %d", ErrOrderNotFound, orderID)
		}
		return OrderRef{}, err
	}
	return ref, nil
}

// List returns every payment.
func (r *Repository) List(ctx context.Context) ([]Payment, error) {
	return listPayments(ctx, r.pool, "")
}

// Get returns one payment.
func (r *Repository) Get(ctx context.Context, id int64) (Payment, error) {
	p, err := scanPayment(r.pool.QueryRow(ctx, `SELECT `+paymentColumns+paymentFrom+` WHERE p.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Payment{}, fmt.Errorf("%w: id %d", ErrNotFound, id)
		}
		return Payment{}, err
	}
	return p, nil
}

// ListByOrder returns the payments of one order.
func (r *Repository) ListByOrder(ctx context.Context, orderID int64) ([]Payment, error) {
	return listPayments(ctx, r.pool, ` WHERE p.purchase_order_id = $1`, orderID)
}

// GetOrder returns the order reference used for balances.
func (r *Repository) GetOrder(ctx context.Context, orderID int64) (OrderRef, error) {
	return getOrder(ctx, r.pool, orderID, false)
}

func (t *txRepo) LockOrder(ctx context.Context, orderID int64) (OrderRef, error) {
	return getOrder(ctx, t.tx, orderID, true)
}

func (t *txRepo) ListByOrder(ctx context.Context, orderID int64) ([]Payment, error) {
	return listPayments(ctx, t.tx, ` WHERE p.purchase_order_id = $1`, orderID)
}

func (t *txRepo) Insert(ctx context.Context, payment Payment) (Payment, error) {
	err := t.tx.QueryRow(ctx, `
		INSERT INTO payments (purchase_order_id, amount, payment_date, payment_method, status, transaction_reference, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		payment.PurchaseOrder.ID, payment.Amount, payment.PaymentDate, payment.PaymentMethod, payment.Status,
		payment.TransactionReference, payment.Notes,
	).Scan(&payment.ID)
	if err != nil {
		return Payment{}, err
	}
	return payment, nil
}
