package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// ItemStatus is the lifecycle state of a single line item. Like order
// statuses, transitions are unrestricted.
type ItemStatus string

const (
	ItemStatusPending     ItemStatus = "PENDING"
	ItemStatusProcessing  ItemStatus = "PROCESSING"
	ItemStatusCompleted   ItemStatus = "COMPLETED"
	ItemStatusCancelled   ItemStatus = "CANCELLED"
	ItemStatusRefunded    ItemStatus = "REFUNDED"
	ItemStatusReturned    ItemStatus = "RETURNED"
	ItemStatusBackordered ItemStatus = "BACKORDERED"
)

// Valid reports whether s is a known item status.
func (s ItemStatus) Valid() bool {
	switch s {
	case ItemStatusPending, ItemStatusProcessing, ItemStatusCompleted,
		ItemStatusCancelled, ItemStatusRefunded, ItemStatusReturned, ItemStatusBackordered:
		return true
	}
	return false
}

// Billable reports whether an item in this status counts toward the order's
// billed total. BACKORDERED items are not billed until they ship.
func (s ItemStatus) Billable() bool {
	switch s {
	case ItemStatusPending, ItemStatusProcessing, ItemStatusCompleted:
		return true
	}
	return false
}

// Item represents a single line item of a sale order. Subtotal is derived
// from Quantity and UnitPrice and is never client-supplied.
type Item struct {
	ID        int64
	OrderID   string
	VariantID string
	Quantity  int
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
	Status    ItemStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ComputeSubtotal derives the item's subtotal from its quantity and unit
// price, rounded to 2 decimal places (half away from zero, standard for
// currency).
func (i *Item) ComputeSubtotal() {
	i.Subtotal = Subtotal(i.Quantity, i.UnitPrice)
}

// Subtotal returns quantity times unitPrice rounded to 2 decimal places.
func Subtotal(quantity int, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Round(2)
}

// ItemRepository defines persistence operations for sale order items.
type ItemRepository interface {
	Create(ctx context.Context, item *Item) error
	Get(ctx context.Context, id int64) (*Item, error)
	List(ctx context.Context) ([]Item, error)
	ListByOrder(ctx context.Context, orderID string) ([]Item, error)
	Update(ctx context.Context, item *Item) error
	Delete(ctx context.Context, id int64) error
	DeleteByOrder(ctx context.Context, orderID string) error
}
