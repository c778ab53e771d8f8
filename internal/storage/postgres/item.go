package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/retail-backoffice/internal/domain/order"
)

var _ order.ItemRepository = (*ItemRepository)(nil)

const itemColumns = `order_item_id, order_id, variant_id, quantity,
	unit_price, subtotal, status, created_at, updated_at`

// ItemRepository implements order.ItemRepository backed by PostgreSQL.
type ItemRepository struct {
	pool *pgxpool.Pool
}

// NewItemRepository returns an ItemRepository that uses the given pool.
func NewItemRepository(pool *pgxpool.Pool) *ItemRepository {
	return &ItemRepository{pool: pool}
}

// Create persists a new line item, assigning its sequential ID.
func (r *ItemRepository) Create(ctx context.Context, item *order.Item) error {
	err := queryEngine(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO sale_order_items (order_id, variant_id, quantity, unit_price, subtotal, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING order_item_id, created_at, updated_at`,
		item.OrderID, item.VariantID, item.Quantity, item.UnitPrice, item.Subtotal, item.Status,
	).Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return order.ErrNotFound
		}
		return fmt.Errorf("creating sale order item: %w", err)
	}
	return nil
}

// Get returns a line item by ID.
func (r *ItemRepository) Get(ctx context.Context, id int64) (*order.Item, error) {
	row := queryEngine(ctx, r.pool).QueryRow(ctx,
		`SELECT `+itemColumns+` FROM sale_order_items WHERE order_item_id = $1`, id)

	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrItemNotFound
		}
		return nil, fmt.Errorf("getting sale order item %d: %w", id, err)
	}
	return item, nil
}

// List returns all line items.
func (r *ItemRepository) List(ctx context.Context) ([]order.Item, error) {
	rows, err := queryEngine(ctx, r.pool).Query(ctx,
		`SELECT `+itemColumns+` FROM sale_order_items ORDER BY order_item_id`)
	if err != nil {
		return nil, fmt.Errorf("listing sale order items: %w", err)
	}
	defer rows.Close()

	return collectItems(rows)
}

// ListByOrder returns all line items belonging to a single order. The
// recalculator calls this inside the mutating transaction, so it observes
// the mutation that triggered it.
func (r *ItemRepository) ListByOrder(ctx context.Context, orderID string) ([]order.Item, error) {
	rows, err := queryEngine(ctx, r.pool).Query(ctx,
		`SELECT `+itemColumns+` FROM sale_order_items WHERE order_id = $1 ORDER BY order_item_id`,
		orderID)
	if err != nil {
		return nil, fmt.Errorf("listing items of sale order %q: %w", orderID, err)
	}
	defer rows.Close()

	return collectItems(rows)
}

// Update rewrites all mutable fields of a line item.
func (r *ItemRepository) Update(ctx context.Context, item *order.Item) error {
	tag, err := queryEngine(ctx, r.pool).Exec(ctx, `
		UPDATE sale_order_items SET
			order_id = $2, variant_id = $3, quantity = $4,
			unit_price = $5, subtotal = $6, status = $7, updated_at = now()
		WHERE order_item_id = $1`,
		item.ID, item.OrderID, item.VariantID, item.Quantity,
		item.UnitPrice, item.Subtotal, item.Status,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return order.ErrNotFound
		}
		return fmt.Errorf("updating sale order item %d: %w", item.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrItemNotFound
	}
	return nil
}

// Delete removes a line item.
func (r *ItemRepository) Delete(ctx context.Context, id int64) error {
	tag, err := queryEngine(ctx, r.pool).Exec(ctx,
		`DELETE FROM sale_order_items WHERE order_item_id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting sale order item %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrItemNotFound
	}
	return nil
}

// DeleteByOrder removes every line item of an order. Zero affected rows is
// fine: an order may have no items.
func (r *ItemRepository) DeleteByOrder(ctx context.Context, orderID string) error {
	_, err := queryEngine(ctx, r.pool).Exec(ctx,
		`DELETE FROM sale_order_items WHERE order_id = $1`, orderID)
	if err != nil {
		return fmt.Errorf("deleting items of sale order %q: %w", orderID, err)
	}
	return nil
}

func scanItem(row pgx.Row) (*order.Item, error) {
	var item order.Item
	err := row.Scan(
		&item.ID, &item.OrderID, &item.VariantID, &item.Quantity,
		&item.UnitPrice, &item.Subtotal, &item.Status,
		&item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func collectItems(rows pgx.Rows) ([]order.Item, error) {
	var items []order.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning sale order item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}
