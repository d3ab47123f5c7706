package purchasing

import (
	"context"
	"errors"
	"fmt"
	"time"

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
	LockOrder(ctx context.Context, id int64) (Order, error)
	GetVendor(ctx context.Context, id int64) (VendorRef, error)
	GetProducts(ctx context.Context, ids []int64) (map[int64]ProductRef, error)
	CreateOrder(ctx context.Context, order Order) (Order, error)
	UpdateStatus(ctx context.Context, id int64, status Status) error
	SetReceivedQuantity(ctx context.Context, itemID int64, received int) error
	AddStock(ctx context.Context, productID int64, qty int) error
}

type txRepo struct {
	tx pgx.Tx
}

// WithTx wraps callback in repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		return fn(ctx, &txRepo{tx: tx})
	})
}

const orderColumns = `o.id, o.vendor_id, v.name, o.order_date, o.total_amount, o.status`

func scanOrder(row pgx.Row) (Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.Vendor.ID, &o.Vendor.Name, &o.OrderDate, &o.TotalAmount, &o.Status)
	return o, err
}

// List returns every order with its items, newest first.
func (r *Repository) List(ctx context.Context) ([]Order, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+orderColumns+` FROM purchase_orders o JOIN vendors v ON v.id = o.vendor_id ORDER BY o.id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]Order, 0)
	index := make(map[int64]int)
	ids := make([]int64, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		o.Items = []Item{}
		index[o.ID] = len(orders)
		ids = append(ids, o.ID)
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return orders, nil
	}

	itemsByOrder, err := loadItems(ctx, r.pool, ids)
	if err != nil {
		return nil, err
	}
	for orderID, items := range itemsByOrder {
		orders[index[orderID]].Items = items
	}
	return orders, nil
}

// Get returns one order with its items.
func (r *Repository) Get(ctx context.Context, id int64) (Order, error) {
	return getOrder(ctx, r.pool, id, false)
}

func getOrder(ctx context.Context, q db.Querier, id int64, forUpdate bool) (Order, error) {
	query := `SELECT ` + orderColumns + ` FROM purchase_orders o JOIN vendors v ON v.id = o.vendor_id WHERE o.id = $1`
	if forUpdate {
		query += ` FOR UPDATE OF o`
	}
	o, err := scanOrder(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Order{}, fmt.Errorf("%w: id %d", ErrNotFound, id)
		}
		return Order{}, err
	}
	items, err := loadItems(ctx, q, []int64{id})
	if err != nil {
		return Order{}, err
	}
	o.Items = items[id]
	if o.Items == nil {
		o.Items = []Item{}
	}
	return o, nil
}

func loadItems(ctx context.Context, q db.Querier, orderIDs []int64) (map[int64][]Item, error) {
	rows, err := q.Query(ctx, `
		SELECT i.order_id, i.id, i.product_id, p.sku, p.name, p.unit_price, i.quantity, i.received_quantity
		FROM purchase_order_items i
		JOIN products p ON p.id = i.product_id
		WHERE i.order_id = ANY($1)
		ORDER BY i.order_id, i.line_no`, orderIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make(map[int64][]Item, len(orderIDs))
	for rows.Next() {
		var orderID int64
		var item Item
		if err := rows.Scan(&orderID, &item.ID, &item.Product.ID, &item.Product.SKU, &item.Product.Name, &item.Product.UnitPrice, &item.Quantity, &item.ReceivedQuantity); err != nil {
			return nil, err
		}
		items[orderID] = append(items[orderID], item)
	}
	return items, rows.Err()
}

func (t *txRepo) LockOrder(ctx context.Context, id int64) (Order, error) {
	return getOrder(ctx, t.tx, id, true)
}

func (t *txRepo) GetVendor(ctx context.Context, id int64) (VendorRef, error) {
	ref := VendorRef{ID: id}
	err := t.tx.QueryRow(ctx, `SELECT name FROM vendors WHERE id = $1`, id).Scan(&ref.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return VendorRef{}, fmt.Errorf("%w: vendor %d not found", ErrValidation, id)
		}
		return VendorRef{}, err
	}
	return ref, nil
}

func (t *txRepo) GetProducts(ctx context.Context, ids []int64) (map[int64]ProductRef, error) {
	rows, err := t.tx.Query(ctx, `SELECT id, sku, name, unit_price FROM products WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make(map[int64]ProductRef, len(ids))
	for rows.Next() {
		var p ProductRef
		if err := rows.Scan(&p.ID, &p.SKU, &p.Name, &p.UnitPrice); err != nil {
			return nil, err
		}
		products[p.ID] = p
	}
	return products, rows.Err()
}

func (t *txRepo) CreateOrder(ctx context.Context, order Order) (Order, error) {
	now := time.Now()
	err := t.tx.QueryRow(ctx,
		`INSERT INTO purchase_orders (vendor_id, order_date, total_amount, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $5) RETURNING id`,
		order.Vendor.ID, order.OrderDate, order.TotalAmount, order.Status, now,
	).Scan(&order.ID)
	if err != nil {
		return Order{}, err
	}
	for i := range order.Items {
		item := &order.Items[i]
		err := t.tx.QueryRow(ctx,
			`INSERT INTO purchase_order_items (order_id, line_no, product_id, quantity, received_quantity) VALUES ($1, $2, $3, $4, $5) RETURNING id`,
			order.ID, i+1, item.Product.ID, item.Quantity, item.ReceivedQuantity,
		).Scan(&item.ID)
		if err != nil {
			return Order{}, err
		}
	}
	return order, nil
}

func (t *txRepo) UpdateStatus(ctx context.Context, id int64, status Status) error {
	_, err := t.tx.Exec(ctx, `UPDATE purchase_orders SET status = $1, updated_at = $2 WHERE id = $3`, status, time.Now(), id)
	return err
}

func (t *txRepo) SetReceivedQuantity(ctx context.Context, itemID int64, received int) error {
	_, err := t.tx.Exec(ctx, `UPDATE purchase_order_items SET received_quantity = $1 WHERE id = $2`, received, itemID)
	return err
}

func (t *txRepo) AddStock(ctx context.Context, productID int64, qty int) error {
	tag, err := t.tx.Exec(ctx, `UPDATE products SET current_stock = current_stock + $1 WHERE id = $2`, qty, productID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("purchasing: product %d vanished while receiving", productID)
	}
	return nil
}
