package products

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/stockroom/internal/shared"
)

// Repository persists products.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	Get(ctx context.Context, id int64) (Product, error)
	ExistsSKU(ctx context.Context, sku string) (bool, error)
	Create(ctx context.Context, product Product) (Product, error)
	CountBelow(ctx context.Context, threshold int) (int, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository returns a PostgreSQL backed repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const productColumns = `id, sku, name, unit_price, current_stock, COALESCE(description, ''), created_at`

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.SKU, &p.Name, &p.UnitPrice, &p.CurrentStock, &p.Description, &p.CreatedAt)
	return p, err
}

func (r *repository) List(ctx context.Context) ([]Product, error) {
	rows, err := r.db.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Product, error) {
	p, err := scanProduct(r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, fmt.Errorf("%w: id %d", ErrNotFound, id)
		}
		return Product{}, err
	}
	return p, nil
}

func (r *repository) ExistsSKU(ctx context.Context, sku string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM products WHERE sku = $1)`, sku).Scan(&exists)
	return exists, err
}

func (r *repository) Create(ctx context.Context, product Product) (Product, error) {
	now := time.Now()
	err := r.db.QueryRow(ctx,
		`INSERT INTO products (sku, name, unit_price, current_stock, description, created_at) VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6) RETURNING id`,
		product.SKU, product.Name, product.UnitPrice, product.CurrentStock, product.Description, now,
	).Scan(&product.ID)
	if err != nil {
		if shared.IsUniqueViolation(err) {
			return Product{}, fmt.Errorf("%w: %s already exists", ErrDuplicateSKU, product.SKU)
		}
		return Product{}, err
	}
	product.CreatedAt = now
	return product, nil
}

func (r *repository) CountBelow(ctx context.Context, threshold int) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products WHERE current_stock < $1`, threshold).Scan(&count)
	return count, err
}
