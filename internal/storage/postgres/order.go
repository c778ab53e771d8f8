package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/xenking/retail-backoffice/internal/domain/order"
)

var _ order.Repository = (*OrderRepository)(nil)

const orderColumns = `order_id, employee_id, customer_id, order_date, status,
	total_price, total_billed_price,
	COALESCE(customer_name, ''), COALESCE(customer_email, ''),
	created_at, updated_at`

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists a new sale order.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	err := queryEngine(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO sale_orders (
			order_id, employee_id, customer_id, order_date, status,
			total_price, total_billed_price, customer_name, customer_email
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`,
		o.ID, o.EmployeeID, o.CustomerID, o.OrderDate, o.Status,
		o.TotalPrice, o.TotalBilledPrice, o.CustomerName, o.CustomerEmail,
	).Scan(&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating sale order %q: %w", o.ID, err)
	}
	return nil
}

// Get returns a sale order by ID without its items.
func (r *OrderRepository) Get(ctx context.Context, id string) (*order.Order, error) {
	row := queryEngine(ctx, r.pool).QueryRow(ctx,
		`SELECT `+orderColumns+` FROM sale_orders WHERE order_id = $1`, id)

	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting sale order %q: %w", id, err)
	}
	return o, nil
}

// List returns all sale orders, newest first, without their items.
func (r *OrderRepository) List(ctx context.Context) ([]order.Order, error) {
	rows, err := queryEngine(ctx, r.pool).Query(ctx,
		`SELECT `+orderColumns+` FROM sale_orders ORDER BY order_date DESC, order_id`)
	if err != nil {
		return nil, fmt.Errorf("listing sale orders: %w", err)
	}
	defer rows.Close()

	var orders []order.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning sale order: %w", err)
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

// Update rewrites an order's header fields. Totals are written only through
// UpdateTotals.
func (r *OrderRepository) Update(ctx context.Context, o *order.Order) error {
	tag, err := queryEngine(ctx, r.pool).Exec(ctx, `
		UPDATE sale_orders SET
			employee_id = $2, customer_id = $3, order_date = $4, status = $5,
			customer_name = $6, customer_email = $7, updated_at = now()
		WHERE order_id = $1`,
		o.ID, o.EmployeeID, o.CustomerID, o.OrderDate, o.Status,
		o.CustomerName, o.CustomerEmail,
	)
	if err != nil {
		return fmt.Errorf("updating sale order %q: %w", o.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

// UpdateTotals writes the derived totals. A missing order row is not an
// error: the triggering mutation must not fail because the order was deleted
// concurrently.
func (r *OrderRepository) UpdateTotals(ctx context.Context, id string, gross, billed decimal.Decimal) error {
	_, err := queryEngine(ctx, r.pool).Exec(ctx, `
		UPDATE sale_orders
		SET total_price = $2, total_billed_price = $3, updated_at = now()
		WHERE order_id = $1`,
		id, gross, billed,
	)
	if err != nil {
		return fmt.Errorf("updating totals of sale order %q: %w", id, err)
	}
	return nil
}

// Delete removes a sale order.
func (r *OrderRepository) Delete(ctx context.Context, id string) error {
	tag, err := queryEngine(ctx, r.pool).Exec(ctx,
		`DELETE FROM sale_orders WHERE order_id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting sale order %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

func scanOrder(row pgx.Row) (*order.Order, error) {
	var o order.Order
	err := row.Scan(
		&o.ID, &o.EmployeeID, &o.CustomerID, &o.OrderDate, &o.Status,
		&o.TotalPrice, &o.TotalBilledPrice, &o.CustomerName, &o.CustomerEmail,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}
