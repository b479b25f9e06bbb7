package stock

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/farmstock/farmstock/internal/catalog"
	"github.com/farmstock/farmstock/internal/platform/db"
	"github.com/farmstock/farmstock/internal/shared"
)

// Repository persists ledger data in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes transactional operations used by the ledger. The
// product row stays locked from GetProductForUpdate until commit, so two
// concurrent adjustments on the same product serialize instead of racing.
type TxRepository interface {
	GetProductForUpdate(ctx context.Context, productID int64) (catalog.Product, error)
	UpdateProductStock(ctx context.Context, p catalog.Product) error
	InsertMovement(ctx context.Context, m Movement) (int64, error)
}

type txRepository struct {
	tx pgx.Tx
}

// WithTx executes the callback inside a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if r == nil {
		return errors.New("stock repository not initialised")
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

// GetProduct loads a product without locking, for read-only validation.
func (r *Repository) GetProduct(ctx context.Context, productID int64) (catalog.Product, error) {
	row := r.pool.QueryRow(ctx, `SELECT id, name, category, quantity, unit, price, market, min_stock_level, creation_date, expiry_date, status, is_active, created_at, updated_at
FROM products WHERE id=$1`, productID)
	return scanProduct(row, productID)
}

func (r *txRepository) GetProductForUpdate(ctx context.Context, productID int64) (catalog.Product, error) {
	row := r.tx.QueryRow(ctx, `SELECT id, name, category, quantity, unit, price, market, min_stock_level, creation_date, expiry_date, status, is_active, created_at, updated_at
FROM products WHERE id=$1 AND is_active FOR UPDATE`, productID)
	return scanProduct(row, productID)
}

func (r *txRepository) UpdateProductStock(ctx context.Context, p catalog.Product) error {
	tag, err := r.tx.Exec(ctx, `UPDATE products
SET quantity=$2, status=$3, creation_date=$4, expiry_date=$5, updated_at=NOW()
WHERE id=$1`, p.ID, p.Quantity, string(p.Status), p.CreationDate, p.ExpiryDate)
	if err != nil {
		return fmt.Errorf("%w: update product stock: %v", shared.ErrPersistence, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: product %d", shared.ErrNotFound, p.ID)
	}
	return nil
}

func (r *txRepository) InsertMovement(ctx context.Context, m Movement) (int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx, `INSERT INTO stock_movements (product_id, delta, quantity_after, reason, ref_module, ref_id, note, posted_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8) RETURNING id`,
		m.ProductID, m.Delta, m.QuantityAfter, string(m.Reason), m.RefModule, nullStr(m.RefID), m.Note, m.PostedAt).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%w: insert movement: %v", shared.ErrPersistence, err)
	}
	return id, nil
}

func scanProduct(row pgx.Row, productID int64) (catalog.Product, error) {
	var p catalog.Product
	err := row.Scan(&p.ID, &p.Name, &p.Category, &p.Quantity, &p.Unit, &p.Price, &p.Market,
		&p.MinStockLevel, &p.CreationDate, &p.ExpiryDate, &p.Status, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return catalog.Product{}, fmt.Errorf("%w: product %d", shared.ErrNotFound, productID)
		}
		return catalog.Product{}, fmt.Errorf("%w: load product: %v", shared.ErrPersistence, err)
	}
	return p, nil
}

func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}
