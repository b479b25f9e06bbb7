package exports

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/farmstock/farmstock/internal/shared"
)

const entryColumns = `id, product_id, export_country, export_date, quantity, unit, export_price, status, created_at, updated_at`

// Repository persists export entries in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts the entry and returns its id.
func (r *Repository) Create(ctx context.Context, e Entry) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `INSERT INTO export_entries
(product_id, export_country, export_date, quantity, unit, export_price, status, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,NOW(),NOW()) RETURNING id`,
		e.ProductID, e.ExportCountry, e.ExportDate, e.Quantity, string(e.Unit), e.ExportPrice, string(e.Status)).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%w: insert export entry: %v", shared.ErrPersistence, err)
	}
	return id, nil
}

// Get loads one entry.
func (r *Repository) Get(ctx context.Context, id int64) (Entry, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+entryColumns+` FROM export_entries WHERE id=$1`, id)
	e, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Entry{}, fmt.Errorf("%w: export entry %d", shared.ErrNotFound, id)
		}
		return Entry{}, fmt.Errorf("%w: get export entry: %v", shared.ErrPersistence, err)
	}
	return e, nil
}

// Update persists the full entry record.
func (r *Repository) Update(ctx context.Context, e Entry) error {
	tag, err := r.pool.Exec(ctx, `UPDATE export_entries
SET export_country=$2, export_date=$3, quantity=$4, unit=$5, export_price=$6, status=$7, updated_at=NOW()
WHERE id=$1`, e.ID, e.ExportCountry, e.ExportDate, e.Quantity, string(e.Unit), e.ExportPrice, string(e.Status))
	if err != nil {
		return fmt.Errorf("%w: update export entry: %v", shared.ErrPersistence, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: export entry %d", shared.ErrNotFound, e.ID)
	}
	return nil
}

// Delete removes the entry permanently.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM export_entries WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("%w: delete export entry: %v", shared.ErrPersistence, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: export entry %d", shared.ErrNotFound, id)
	}
	return nil
}

// List returns entries matching the filter plus the total count.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]Entry, int, error) {
	perPage := filter.PerPage
	if perPage <= 0 {
		perPage = 20
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * perPage

	rows, err := r.pool.Query(ctx, `SELECT `+entryColumns+` FROM export_entries
WHERE ($1 = 0 OR product_id = $1) AND ($2 = '' OR status = $2)
ORDER BY export_date DESC, id DESC
LIMIT $3 OFFSET $4`, filter.ProductID, string(filter.Status), perPage, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: list export entries: %v", shared.ErrPersistence, err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: scan export entry: %v", shared.ErrPersistence, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterate export entries: %v", shared.ErrPersistence, err)
	}

	var total int
	err = r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM export_entries
WHERE ($1 = 0 OR product_id = $1) AND ($2 = '' OR status = $2)`,
		filter.ProductID, string(filter.Status)).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: count export entries: %v", shared.ErrPersistence, err)
	}
	return entries, total, nil
}

func scanEntry(row pgx.Row) (Entry, error) {
	var e Entry
	err := row.Scan(&e.ID, &e.ProductID, &e.ExportCountry, &e.ExportDate, &e.Quantity,
		&e.Unit, &e.ExportPrice, &e.Status, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}
