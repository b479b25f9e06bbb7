package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/farmstock/farmstock/internal/platform/db"
	"github.com/farmstock/farmstock/internal/shared"
)

const orderColumns = `id, order_number, customer_name, customer_email, customer_phone, customer_address, customer_city, customer_country,
subtotal, shipping_cost, tax, total_amount, payment_method, payment_status, status, transaction_id, estimated_delivery, is_active, created_at, updated_at`

// Repository persists orders in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts the order and its items in one transaction.
func (r *Repository) Create(ctx context.Context, order Order) (int64, error) {
	var id int64
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `INSERT INTO orders
(order_number, customer_name, customer_email, customer_phone, customer_address, customer_city, customer_country,
 subtotal, shipping_cost, tax, total_amount, payment_method, payment_status, status, transaction_id, estimated_delivery, is_active, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,TRUE,NOW(),NOW()) RETURNING id`,
			order.OrderNumber, order.Customer.Name, order.Customer.Email, order.Customer.Phone,
			order.Customer.Address, order.Customer.City, order.Customer.Country,
			order.Subtotal, order.ShippingCost, order.Tax, order.TotalAmount,
			order.PaymentMethod, string(order.PaymentStatus), string(order.Status),
			order.TransactionID, order.EstimatedDelivery).Scan(&id)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return fmt.Errorf("%w: order number %s already exists", shared.ErrConflict, order.OrderNumber)
			}
			return fmt.Errorf("%w: insert order: %v", shared.ErrPersistence, err)
		}

		for _, item := range order.Items {
			_, err := tx.Exec(ctx, `INSERT INTO order_items (order_id, product_id, name, price, quantity, line_total)
VALUES ($1,$2,$3,$4,$5,$6)`, id, item.ProductID, item.Name, item.Price, item.Quantity, item.LineTotal)
			if err != nil {
				return fmt.Errorf("%w: insert order item: %v", shared.ErrPersistence, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// Get loads one order with its items, regardless of the active flag.
func (r *Repository) Get(ctx context.Context, id int64) (Order, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1`, id)
	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Order{}, fmt.Errorf("%w: order %d", shared.ErrNotFound, id)
		}
		return Order{}, fmt.Errorf("%w: get order: %v", shared.ErrPersistence, err)
	}

	rows, err := r.pool.Query(ctx, `SELECT id, order_id, product_id, name, price, quantity, line_total
FROM order_items WHERE order_id=$1 ORDER BY id ASC`, id)
	if err != nil {
		return Order{}, fmt.Errorf("%w: load order items: %v", shared.ErrPersistence, err)
	}
	defer rows.Close()
	for rows.Next() {
		var item OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Name, &item.Price, &item.Quantity, &item.LineTotal); err != nil {
			return Order{}, fmt.Errorf("%w: scan order item: %v", shared.ErrPersistence, err)
		}
		order.Items = append(order.Items, item)
	}
	if err := rows.Err(); err != nil {
		return Order{}, fmt.Errorf("%w: iterate order items: %v", shared.ErrPersistence, err)
	}
	return order, nil
}

// UpdateStatus sets the order status.
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status OrderStatus) error {
	return r.exec(ctx, id, `UPDATE orders SET status=$2, updated_at=NOW() WHERE id=$1`, string(status))
}

// UpdatePaymentStatus sets the payment status.
func (r *Repository) UpdatePaymentStatus(ctx context.Context, id int64, status PaymentStatus) error {
	return r.exec(ctx, id, `UPDATE orders SET payment_status=$2, updated_at=NOW() WHERE id=$1`, string(status))
}

// MarkCancelled sets status=cancelled and payment_status=refunded together.
func (r *Repository) MarkCancelled(ctx context.Context, id int64) error {
	return r.exec(ctx, id, `UPDATE orders SET status=$2, payment_status=$3, updated_at=NOW() WHERE id=$1`,
		string(StatusCancelled), string(PaymentRefunded))
}

// SetActive flips the soft-delete flag.
func (r *Repository) SetActive(ctx context.Context, id int64, active bool) error {
	return r.exec(ctx, id, `UPDATE orders SET is_active=$2, updated_at=NOW() WHERE id=$1`, active)
}

// List returns active orders matching the filter plus the total count.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]Order, int, error) {
	perPage := filter.PerPage
	if perPage <= 0 {
		perPage = 20
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * perPage

	rows, err := r.pool.Query(ctx, `SELECT `+orderColumns+` FROM orders
WHERE is_active AND ($1 = '' OR status = $1)
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`, string(filter.Status), perPage, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: list orders: %v", shared.ErrPersistence, err)
	}
	defer rows.Close()

	result := []Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: scan order: %v", shared.ErrPersistence, err)
		}
		result = append(result, order)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterate orders: %v", shared.ErrPersistence, err)
	}

	var total int
	err = r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE is_active AND ($1 = '' OR status = $1)`,
		string(filter.Status)).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: count orders: %v", shared.ErrPersistence, err)
	}
	return result, total, nil
}

func (r *Repository) exec(ctx context.Context, id int64, sql string, args ...any) error {
	tag, err := r.pool.Exec(ctx, sql, append([]any{id}, args...)...)
	if err != nil {
		return fmt.Errorf("%w: update order: %v", shared.ErrPersistence, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: order %d", shared.ErrNotFound, id)
	}
	return nil
}

func scanOrder(row pgx.Row) (Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.OrderNumber, &o.Customer.Name, &o.Customer.Email, &o.Customer.Phone,
		&o.Customer.Address, &o.Customer.City, &o.Customer.Country,
		&o.Subtotal, &o.ShippingCost, &o.Tax, &o.TotalAmount,
		&o.PaymentMethod, &o.PaymentStatus, &o.Status, &o.TransactionID,
		&o.EstimatedDelivery, &o.IsActive, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}
