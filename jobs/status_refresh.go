package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Product statuses drift as time passes without writes: a product can cross
// its expiry or the expiring-soon window with no mutation to recompute the
// stored value. The sweep re-derives every active product's status in SQL,
// mirroring the in-process derivation order.
const statusRefreshSQL = `
UPDATE products SET status = derived.status, updated_at = now()
FROM (
	SELECT id,
		CASE
			WHEN quantity <= 0 THEN 'Out of Stock'
			WHEN quantity < min_stock_level THEN 'Low Stock'
			WHEN expiry_date < now() THEN 'Out of Stock'
			WHEN expiry_date <= now() + interval '48 hours' THEN 'Expiring Soon'
			ELSE 'In Stock'
		END AS status
	FROM products
	WHERE is_active
) AS derived
WHERE products.id = derived.id AND products.status IS DISTINCT FROM derived.status`

// Invalidator flushes report caches after a sweep changed stored statuses.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// RefreshProductStatuses re-derives stored statuses for all active products
// and returns the number of rows that changed.
func RefreshProductStatuses(ctx context.Context, pool *pgxpool.Pool, logger *slog.Logger) (int64, error) {
	if pool == nil {
		return 0, nil
	}
	tag, err := pool.Exec(ctx, statusRefreshSQL)
	if err != nil {
		if logger != nil {
			logger.Error("status refresh sweep failed", slog.Any("error", err))
		}
		return 0, err
	}
	if logger != nil {
		logger.Info("status refresh sweep complete",
			slog.String("job", "status_refresh"),
			slog.Int64("updated", tag.RowsAffected()))
	}
	return tag.RowsAffected(), nil
}

// NewStatusRefreshHandler builds the Asynq handler for the periodic sweep.
func NewStatusRefreshHandler(pool *pgxpool.Pool, invalidator Invalidator, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, _ *asynq.Task) error {
		updated, err := RefreshProductStatuses(ctx, pool, logger)
		if err != nil {
			return err
		}
		if updated > 0 && invalidator != nil {
			if err := invalidator.Invalidate(ctx); err != nil && logger != nil {
				logger.Warn("cache invalidation after sweep failed", slog.Any("error", err))
			}
		}
		return nil
	}
}
