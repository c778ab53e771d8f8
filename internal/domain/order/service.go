package order

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TxManager runs a function inside a storage transaction. Everything executed
// through the context passed to fn commits or rolls back as one unit.
type TxManager interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// EmployeeDirectory resolves employee references.
type EmployeeDirectory interface {
	EmployeeExists(ctx context.Context, id int64) (bool, error)
}

// CustomerDirectory resolves customer references.
type CustomerDirectory interface {
	CustomerExists(ctx context.Context, id string) (bool, error)
}

// VariantCatalog resolves product variant references.
type VariantCatalog interface {
	VariantExists(ctx context.Context, id string) (bool, error)
}

// InvalidQuantityError indicates a line item has a non-positive quantity.
type InvalidQuantityError struct {
	Quantity int
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than 0, got %d", e.Quantity)
}

// InvalidUnitPriceError indicates a line item has a negative unit price.
type InvalidUnitPriceError struct {
	UnitPrice decimal.Decimal
}

func (e *InvalidUnitPriceError) Error() string {
	return fmt.Sprintf("unit price must not be negative, got %s", e.UnitPrice)
}

// InvalidStatusError indicates an unknown order or item status.
type InvalidStatusError struct {
	Status string
}

func (e *InvalidStatusError) Error() string {
	return fmt.Sprintf("unknown status %q", e.Status)
}

// CreateItemInput holds the client-controllable fields of a new line item.
// Subtotal is always derived, never accepted.
type CreateItemInput struct {
	VariantID string
	Quantity  int
	UnitPrice decimal.Decimal
	Status    ItemStatus // empty means PENDING
}

// CreateItemRequest creates a single item on an existing order.
type CreateItemRequest struct {
	OrderID string
	CreateItemInput
}

// CreateOrderRequest creates an order, optionally with initial items.
type CreateOrderRequest struct {
	EmployeeID    int64
	CustomerID    *string
	Status        Status // empty means PENDING
	CustomerName  string
	CustomerEmail string
	OrderDate     *time.Time
	Items         []CreateItemInput
}

// ItemPatch is a partial update of a line item. Nil fields are untouched.
type ItemPatch struct {
	OrderID   *string
	VariantID *string
	Quantity  *int
	UnitPrice *decimal.Decimal
	Status    *ItemStatus
}

// Empty reports whether the patch changes nothing.
func (p ItemPatch) Empty() bool {
	return p.OrderID == nil && p.VariantID == nil && p.Quantity == nil &&
		p.UnitPrice == nil && p.Status == nil
}

// OrderPatch is a partial update of an order's header fields. Totals are not
// client-writable and have no place here.
type OrderPatch struct {
	EmployeeID    *int64
	CustomerID    *string
	Status        *Status
	CustomerName  *string
	CustomerEmail *string
	OrderDate     *time.Time
}

// Empty reports whether the patch changes nothing.
func (p OrderPatch) Empty() bool {
	return p.EmployeeID == nil && p.CustomerID == nil && p.Status == nil &&
		p.CustomerName == nil && p.CustomerEmail == nil && p.OrderDate == nil
}

// Service orchestrates sale order and line item mutations. Every mutation
// that can affect an order's totals runs the item change and the totals
// recalculation inside one transaction: either both commit or neither does.
//
// Concurrent mutations of the same order are serialized only by the storage
// transaction's isolation level; the totals write is last-writer-wins.
type Service struct {
	orders    Repository
	items     ItemRepository
	recalc    *Recalculator
	tx        TxManager
	employees EmployeeDirectory
	customers CustomerDirectory
	variants  VariantCatalog
}

// NewService creates an order Service with the required dependencies.
func NewService(
	orders Repository,
	items ItemRepository,
	recalc *Recalculator,
	tx TxManager,
	employees EmployeeDirectory,
	customers CustomerDirectory,
	variants VariantCatalog,
) *Service {
	return &Service{
		orders:    orders,
		items:     items,
		recalc:    recalc,
		tx:        tx,
		employees: employees,
		customers: customers,
		variants:  variants,
	}
}

// CreateOrder inserts an order and its initial items, then recalculates the
// totals once at the end, all in one transaction. Client-supplied totals are
// ignored: totals are derived state.
func (s *Service) CreateOrder(ctx context.Context, req CreateOrderRequest) (*Order, error) {
	status := req.Status
	if status == "" {
		status = StatusPending
	}
	if !status.Valid() {
		return nil, &InvalidStatusError{Status: string(status)}
	}
	for i := range req.Items {
		if err := validateItemInput(&req.Items[i]); err != nil {
			return nil, err
		}
	}

	ok, err := s.employees.EmployeeExists(ctx, req.EmployeeID)
	if err != nil {
		return nil, fmt.Errorf("check employee: %w", err)
	}
	if !ok {
		return nil, ErrEmployeeNotFound
	}
	if req.CustomerID != nil {
		ok, err := s.customers.CustomerExists(ctx, *req.CustomerID)
		if err != nil {
			return nil, fmt.Errorf("check customer: %w", err)
		}
		if !ok {
			return nil, ErrCustomerNotFound
		}
	}
	for _, in := range req.Items {
		ok, err := s.variants.VariantExists(ctx, in.VariantID)
		if err != nil {
			return nil, fmt.Errorf("check variant: %w", err)
		}
		if !ok {
			return nil, ErrVariantNotFound
		}
	}

	orderDate := time.Now().UTC()
	if req.OrderDate != nil {
		orderDate = *req.OrderDate
	}

	o := &Order{
		ID:               uuid.New().String(),
		EmployeeID:       req.EmployeeID,
		CustomerID:       req.CustomerID,
		OrderDate:        orderDate,
		Status:           status,
		TotalPrice:       decimal.Zero,
		TotalBilledPrice: decimal.Zero,
		CustomerName:     req.CustomerName,
		CustomerEmail:    req.CustomerEmail,
	}

	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.orders.Create(ctx, o); err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		for _, in := range req.Items {
			item := newItem(o.ID, in)
			if err := s.items.Create(ctx, item); err != nil {
				return fmt.Errorf("create order item: %w", err)
			}
			o.Items = append(o.Items, *item)
		}

		// One recalculation for the whole batch, not one per item.
		gross, billed, err := s.recalc.Recalculate(ctx, o.ID)
		if err != nil {
			return fmt.Errorf("recalculate order: %w", err)
		}
		o.TotalPrice, o.TotalBilledPrice = gross, billed
		return nil
	})
	if err != nil {
		return nil, err
	}
	return o, nil
}

// CreateItem inserts a line item on an existing order and recalculates that
// order's totals in the same transaction.
func (s *Service) CreateItem(ctx context.Context, req CreateItemRequest) (*Item, error) {
	if err := validateItemInput(&req.CreateItemInput); err != nil {
		return nil, err
	}

	var item *Item
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		if _, err := s.orders.Get(ctx, req.OrderID); err != nil {
			return err
		}
		ok, err := s.variants.VariantExists(ctx, req.VariantID)
		if err != nil {
			return fmt.Errorf("check variant: %w", err)
		}
		if !ok {
			return ErrVariantNotFound
		}

		item = newItem(req.OrderID, req.CreateItemInput)
		if err := s.items.Create(ctx, item); err != nil {
			return fmt.Errorf("create order item: %w", err)
		}

		if _, _, err := s.recalc.Recalculate(ctx, req.OrderID); err != nil {
			return fmt.Errorf("recalculate order: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateItem applies a partial update to a line item. The subtotal is
// recomputed when quantity or unit price is part of the change set. If the
// owning order changed, both the previous and the new order are
// recalculated; otherwise only the current one. A patch that touches none of
// the totals-relevant fields skips recalculation entirely.
func (s *Service) UpdateItem(ctx context.Context, id int64, patch ItemPatch) (*Item, error) {
	if patch.Empty() {
		return nil, ErrNoFields
	}
	if patch.Quantity != nil && *patch.Quantity <= 0 {
		return nil, &InvalidQuantityError{Quantity: *patch.Quantity}
	}
	if patch.UnitPrice != nil && patch.UnitPrice.IsNegative() {
		return nil, &InvalidUnitPriceError{UnitPrice: *patch.UnitPrice}
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, &InvalidStatusError{Status: string(*patch.Status)}
	}

	var item *Item
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		item, err = s.items.Get(ctx, id)
		if err != nil {
			return err
		}

		prevOrderID := item.OrderID
		moved := false
		recalcNeeded := false

		if patch.OrderID != nil && *patch.OrderID != item.OrderID {
			if _, err := s.orders.Get(ctx, *patch.OrderID); err != nil {
				return err
			}
			item.OrderID = *patch.OrderID
			moved = true
		}
		if patch.VariantID != nil && *patch.VariantID != item.VariantID {
			ok, err := s.variants.VariantExists(ctx, *patch.VariantID)
			if err != nil {
				return fmt.Errorf("check variant: %w", err)
			}
			if !ok {
				return ErrVariantNotFound
			}
			item.VariantID = *patch.VariantID
		}

		priceChanged := false
		if patch.Quantity != nil && *patch.Quantity != item.Quantity {
			item.Quantity = *patch.Quantity
			priceChanged = true
		}
		if patch.UnitPrice != nil && !patch.UnitPrice.Equal(item.UnitPrice) {
			item.UnitPrice = *patch.UnitPrice
			priceChanged = true
		}
		if priceChanged {
			item.ComputeSubtotal()
			recalcNeeded = true
		}
		if patch.Status != nil && *patch.Status != item.Status {
			item.Status = *patch.Status
			recalcNeeded = true
		}

		if err := s.items.Update(ctx, item); err != nil {
			return fmt.Errorf("update order item: %w", err)
		}

		switch {
		case moved:
			// Reassignment: both orders' totals are stale.
			if _, _, err := s.recalc.Recalculate(ctx, prevOrderID); err != nil {
				return fmt.Errorf("recalculate previous order: %w", err)
			}
			if _, _, err := s.recalc.Recalculate(ctx, item.OrderID); err != nil {
				return fmt.Errorf("recalculate order: %w", err)
			}
		case recalcNeeded:
			if _, _, err := s.recalc.Recalculate(ctx, item.OrderID); err != nil {
				return fmt.Errorf("recalculate order: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// DeleteItem removes a line item and recalculates the totals of the order it
// belonged to, in one transaction.
func (s *Service) DeleteItem(ctx context.Context, id int64) error {
	return s.tx.InTx(ctx, func(ctx context.Context) error {
		item, err := s.items.Get(ctx, id)
		if err != nil {
			return err
		}
		orderID := item.OrderID

		if err := s.items.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete order item: %w", err)
		}
		if _, _, err := s.recalc.Recalculate(ctx, orderID); err != nil {
			return fmt.Errorf("recalculate order: %w", err)
		}
		return nil
	})
}

// UpdateOrder applies a partial update to an order's header fields. Totals
// are untouched: they only change through item mutations.
func (s *Service) UpdateOrder(ctx context.Context, id string, patch OrderPatch) (*Order, error) {
	if patch.Empty() {
		return nil, ErrNoFields
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, &InvalidStatusError{Status: string(*patch.Status)}
	}
	if patch.EmployeeID != nil {
		ok, err := s.employees.EmployeeExists(ctx, *patch.EmployeeID)
		if err != nil {
			return nil, fmt.Errorf("check employee: %w", err)
		}
		if !ok {
			return nil, ErrEmployeeNotFound
		}
	}
	if patch.CustomerID != nil {
		ok, err := s.customers.CustomerExists(ctx, *patch.CustomerID)
		if err != nil {
			return nil, fmt.Errorf("check customer: %w", err)
		}
		if !ok {
			return nil, ErrCustomerNotFound
		}
	}

	var o *Order
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		o, err = s.orders.Get(ctx, id)
		if err != nil {
			return err
		}
		if patch.EmployeeID != nil {
			o.EmployeeID = *patch.EmployeeID
		}
		if patch.CustomerID != nil {
			o.CustomerID = patch.CustomerID
		}
		if patch.Status != nil {
			o.Status = *patch.Status
		}
		if patch.CustomerName != nil {
			o.CustomerName = *patch.CustomerName
		}
		if patch.CustomerEmail != nil {
			o.CustomerEmail = *patch.CustomerEmail
		}
		if patch.OrderDate != nil {
			o.OrderDate = *patch.OrderDate
		}
		if err := s.orders.Update(ctx, o); err != nil {
			return fmt.Errorf("update order: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return o, nil
}

// DeleteOrder removes an order together with all of its items so no orphaned
// items remain.
func (s *Service) DeleteOrder(ctx context.Context, id string) error {
	return s.tx.InTx(ctx, func(ctx context.Context) error {
		if _, err := s.orders.Get(ctx, id); err != nil {
			return err
		}
		if err := s.items.DeleteByOrder(ctx, id); err != nil {
			return fmt.Errorf("delete order items: %w", err)
		}
		if err := s.orders.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete order: %w", err)
		}
		return nil
	})
}

// GetOrder returns an order with its items.
func (s *Service) GetOrder(ctx context.Context, id string) (*Order, error) {
	o, err := s.orders.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	items, err := s.items.ListByOrder(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	o.Items = items
	return o, nil
}

// ListOrders returns all orders without their items.
func (s *Service) ListOrders(ctx context.Context) ([]Order, error) {
	return s.orders.List(ctx)
}

// GetItem returns a single line item.
func (s *Service) GetItem(ctx context.Context, id int64) (*Item, error) {
	return s.items.Get(ctx, id)
}

// ListItems returns all line items.
func (s *Service) ListItems(ctx context.Context) ([]Item, error) {
	return s.items.List(ctx)
}

func validateItemInput(in *CreateItemInput) error {
	if in.Quantity <= 0 {
		return &InvalidQuantityError{Quantity: in.Quantity}
	}
	if in.UnitPrice.IsNegative() {
		return &InvalidUnitPriceError{UnitPrice: in.UnitPrice}
	}
	if in.Status == "" {
		in.Status = ItemStatusPending
	}
	if !in.Status.Valid() {
		return &InvalidStatusError{Status: string(in.Status)}
	}
	return nil
}

func newItem(orderID string, in CreateItemInput) *Item {
	item := &Item{
		OrderID:   orderID,
		VariantID: in.VariantID,
		Quantity:  in.Quantity,
		UnitPrice: in.UnitPrice,
		Status:    in.Status,
	}
	item.ComputeSubtotal()
	return item
}
