package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/vinaykumar231/WOFR-Backend/internal/shared"
)

// WithTx executes a function within a transaction using the RepeatableRead isolation level.
// Begin and commit failures are reported as shared.ErrStorage; errors from fn pass through.
func WithTx(ctx context.Context, pool Beginner, fn func(pgx.Tx) error) error {
	tx, err := pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return fmt.Errorf("%w: platform/db: begin tx: %w", shared.ErrStorage, err)
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: platform/db: commit tx: %w", shared.ErrStorage, err)
	}

	return nil
}
