package vendors

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists vendors.
type Repository interface {
	List(ctx context.Context) ([]Vendor, error)
	Get(ctx context.Context, id int64) (Vendor, error)
	Create(ctx context.Context, vendor Vendor) (Vendor, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository returns a PostgreSQL backed repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const vendorColumns = `id, name, contact_number, COALESCE(email, ''), COALESCE(address, ''), created_at`

func (r *repository) List(ctx context.Context) ([]Vendor, error) {
	rows, err := r.db.Query(ctx, `SELECT `+vendorColumns+` FROM vendors ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	vendors := make([]Vendor, 0)
	for rows.Next() {
		var v Vendor
		if err := rows.Scan(&v.ID, &v.Name, &v.ContactNumber, &v.Email, &v.Address, &v.CreatedAt); err != nil {
			return nil, err
		}
		vendors = append(vendors, v)
	}
	return vendors, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Vendor, error) {
	var v Vendor
	err := r.db.QueryRow(ctx, `SELECT `+vendorColumns+` FROM vendors WHERE id = $1`, id).
		Scan(&v.ID, &v.Name, &v.ContactNumber, &v.Email, &v.Address, &v.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Vendor{}, fmt.Errorf("%w: id %d", ErrNotFound, id)
		}
		return Vendor{}, err
	}
	return v, nil
}

func (r *repository) Create(ctx context.Context, vendor Vendor) (Vendor, error) {
	now := time.Now()
	err := r.db.QueryRow(ctx,
		`INSERT INTO vendors (name, contact_number, email, address, created_at) VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5) RETURNING id`,
		vendor.Name, vendor.ContactNumber, vendor.Email, vendor.Address, now,
	).Scan(&vendor.ID)
	if err != nil {
		return Vendor{}, err
	}
	vendor.CreatedAt = now
	return vendor, nil
}
