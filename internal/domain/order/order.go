package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Sentinel errors for sale order operations.
var (
	ErrNotFound         = errors.New("sale order not found")
	ErrItemNotFound     = errors.New("sale order item not found")
	ErrEmployeeNotFound = errors.New("associated employee not found")
	ErrCustomerNotFound = errors.New("associated customer not found")
	ErrVariantNotFound  = errors.New("associated product variant not found")
	ErrNoFields         = errors.New("at least one field is required for update")
)

// Status is the lifecycle state of a sale order. Transitions are
// unrestricted: any status may follow any other.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
	StatusRefunded   Status = "REFUNDED"
)

// Valid reports whether s is a known order status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusCancelled, StatusRefunded:
		return true
	}
	return false
}

// Order represents a sale order. TotalPrice and TotalBilledPrice are derived
// from the order's items and are never written directly by clients.
type Order struct {
	ID               string
	EmployeeID       int64
	CustomerID       *string // nil for walk-in customers
	OrderDate        time.Time
	Status           Status
	TotalPrice       decimal.Decimal
	TotalBilledPrice decimal.Decimal
	CustomerName     string // walk-in fallback
	CustomerEmail    string // walk-in fallback
	CreatedAt        time.Time
	UpdatedAt        time.Time

	Items []Item
}

// Repository defines persistence operations for sale orders.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	Get(ctx context.Context, id string) (*Order, error)
	List(ctx context.Context) ([]Order, error)
	Update(ctx context.Context, o *Order) error
	Delete(ctx context.Context, id string) error

	// UpdateTotals writes the derived totals back to the order row. It is a
	// silent no-op when the order no longer exists: a recalculation racing an
	// order deletion must not fail the triggering mutation.
	UpdateTotals(ctx context.Context, id string, gross, billed decimal.Decimal) error
}
