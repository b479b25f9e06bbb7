package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/farmstock/farmstock/internal/shared"
)

const productColumns = `id, name, category, quantity, unit, price, market, min_stock_level, creation_date, expiry_date, status, is_active, created_at, updated_at`

// Repository persists products in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts the product and returns its id.
func (r *Repository) Create(ctx context.Context, p Product) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `INSERT INTO products
(name, category, quantity, unit, price, market, min_stock_level, creation_date, expiry_date, status, is_active, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,TRUE,NOW(),NOW()) RETURNING id`,
		p.Name, string(p.Category), p.Quantity, string(p.Unit), p.Price, string(p.Market), p.MinStockLevel, p.CreationDate, p.ExpiryDate, string(p.Status)).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%w: insert product: %v", shared.ErrPersistence, err)
	}
	return id, nil
}

// Get loads one product regardless of its active flag.
func (r *Repository) Get(ctx context.Context, id int64) (Product, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1`, id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, fmt.Errorf("%w: product %d", shared.ErrNotFound, id)
		}
		return Product{}, fmt.Errorf("%w: get product: %v", shared.ErrPersistence, err)
	}
	return p, nil
}

// List returns active products matching the filter plus the total count.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]Product, int, error) {
	perPage := filter.PerPage
	if perPage <= 0 {
		perPage = 20
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * perPage

	rows, err := r.pool.Query(ctx, `SELECT `+productColumns+` FROM products
WHERE is_active
  AND ($1 = '' OR market = $1)
  AND ($2 = '' OR status = $2)
ORDER BY name ASC
LIMIT $3 OFFSET $4`, string(filter.Market), string(filter.Status), perPage, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: list products: %v", shared.ErrPersistence, err)
	}
	defer rows.Close()

	products, err := collectProducts(rows)
	if err != nil {
		return nil, 0, err
	}

	var total int
	err = r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products
WHERE is_active AND ($1 = '' OR market = $1) AND ($2 = '' OR status = $2)`,
		string(filter.Market), string(filter.Status)).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: count products: %v", shared.ErrPersistence, err)
	}
	return products, total, nil
}

// ListActive returns all active products, optionally narrowed by market.
func (r *Repository) ListActive(ctx context.Context, market Market) ([]Product, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+productColumns+` FROM products
WHERE is_active AND ($1 = '' OR market = $1)
ORDER BY name ASC`, string(market))
	if err != nil {
		return nil, fmt.Errorf("%w: list active products: %v", shared.ErrPersistence, err)
	}
	defer rows.Close()
	return collectProducts(rows)
}

// SetActive flips the soft-delete flag. Quantity is not reclaimed.
func (r *Repository) SetActive(ctx context.Context, id int64, active bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE products SET is_active=$2, updated_at=NOW() WHERE id=$1`, id, active)
	if err != nil {
		return fmt.Errorf("%w: set product active: %v", shared.ErrPersistence, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: product %d", shared.ErrNotFound, id)
	}
	return nil
}

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Category, &p.Quantity, &p.Unit, &p.Price, &p.Market,
		&p.MinStockLevel, &p.CreationDate, &p.ExpiryDate, &p.Status, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func collectProducts(rows pgx.Rows) ([]Product, error) {
	products := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan product: %v", shared.ErrPersistence, err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate products: %v", shared.ErrPersistence, err)
	}
	return products, nil
}
