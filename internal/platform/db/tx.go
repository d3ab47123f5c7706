package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/stockroom/internal/shared"
)

// WithTx executes fn within a repeatable-read transaction. The transaction is
// committed only when fn returns nil.
func WithTx(ctx context.Context, pool *pgxpool.Pool, fn func(context.Context, pgx.Tx) error) error {
	return WithTxOptions(ctx, pool, pgx.TxOptions{IsoLevel: pgx.RepeatableRead}, fn)
}

// WithTxOptions is WithTx with an explicit isolation level. Serialization
// failures are reported as shared.ErrConcurrentUpdate.
func WithTxOptions(ctx context.Context, pool *pgxpool.Pool, opts pgx.TxOptions, fn func(context.Context, pgx.Tx) error) error {
	tx, err := pool.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("platform/db: begin tx: %w", err)
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := fn(ctx, tx); err != nil {
		return translate(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return translate(fmt.Errorf("platform/db: commit tx: %w", err))
	}

	return nil
}

func translate(err error) error {
	if shared.IsSerializationFailure(err) {
		return shared.ErrConcurrentUpdate
	}
	return err
}
