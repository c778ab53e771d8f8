package order

import (
	"context"
	"sort"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mock implementations ---

type mockOrderRepo struct {
	orders      map[string]*Order
	totalsCalls int
	createErr   error
	totalsErr   error
}

func newMockOrderRepo(orders ...*Order) *mockOrderRepo {
	m := &mockOrderRepo{orders: make(map[string]*Order)}
	for _, o := range orders {
		cp := *o
		m.orders[o.ID] = &cp
	}
	return m
}

func (m *mockOrderRepo) Create(_ context.Context, o *Order) error {
	if m.createErr != nil {
		return m.createErr
	}
	cp := *o
	m.orders[o.ID] = &cp
	return nil
}

func (m *mockOrderRepo) Get(_ context.Context, id string) (*Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *mockOrderRepo) List(_ context.Context) ([]Order, error) {
	out := make([]Order, 0, len(m.orders))
	for _, o := range m.orders {
		out = append(out, *o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockOrderRepo) Update(_ context.Context, o *Order) error {
	if _, ok := m.orders[o.ID]; !ok {
		return ErrNotFound
	}
	cp := *o
	m.orders[o.ID] = &cp
	return nil
}

func (m *mockOrderRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.orders[id]; !ok {
		return ErrNotFound
	}
	delete(m.orders, id)
	return nil
}

func (m *mockOrderRepo) UpdateTotals(_ context.Context, id string, gross, billed decimal.Decimal) error {
	m.totalsCalls++
	if m.totalsErr != nil {
		return m.totalsErr
	}
	// Silent no-op when the order is gone, mirroring the storage behaviour.
	if o, ok := m.orders[id]; ok {
		o.TotalPrice = gross
		o.TotalBilledPrice = billed
	}
	return nil
}

type mockItemRepo struct {
	items     map[int64]*Item
	nextID    int64
	createErr error
}

func newMockItemRepo(items ...*Item) *mockItemRepo {
	m := &mockItemRepo{items: make(map[int64]*Item)}
	for _, it := range items {
		cp := *it
		m.items[it.ID] = &cp
		if it.ID > m.nextID {
			m.nextID = it.ID
		}
	}
	return m
}

func (m *mockItemRepo) Create(_ context.Context, item *Item) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.nextID++
	item.ID = m.nextID
	cp := *item
	m.items[item.ID] = &cp
	return nil
}

func (m *mockItemRepo) Get(_ context.Context, id int64) (*Item, error) {
	it, ok := m.items[id]
	if !ok {
		return nil, ErrItemNotFound
	}
	cp := *it
	return &cp, nil
}

func (m *mockItemRepo) List(_ context.Context) ([]Item, error) {
	out := make([]Item, 0, len(m.items))
	for _, it := range m.items {
		out = append(out, *it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockItemRepo) ListByOrder(_ context.Context, orderID string) ([]Item, error) {
	var out []Item
	for _, it := range m.items {
		if it.OrderID == orderID {
			out = append(out, *it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockItemRepo) Update(_ context.Context, item *Item) error {
	if _, ok := m.items[item.ID]; !ok {
		return ErrItemNotFound
	}
	cp := *item
	m.items[item.ID] = &cp
	return nil
}

func (m *mockItemRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.items[id]; !ok {
		return ErrItemNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *mockItemRepo) DeleteByOrder(_ context.Context, orderID string) error {
	for id, it := range m.items {
		if it.OrderID == orderID {
			delete(m.items, id)
		}
	}
	return nil
}

// mockTx snapshots both repos before fn and restores them when fn fails,
// mirroring transactional rollback.
type mockTx struct {
	orders *mockOrderRepo
	items  *mockItemRepo
}

func (m *mockTx) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	ordersSnap := make(map[string]*Order, len(m.orders.orders))
	for id, o := range m.orders.orders {
		cp := *o
		ordersSnap[id] = &cp
	}
	itemsSnap := make(map[int64]*Item, len(m.items.items))
	for id, it := range m.items.items {
		cp := *it
		itemsSnap[id] = &cp
	}

	if err := fn(ctx); err != nil {
		m.orders.orders = ordersSnap
		m.items.items = itemsSnap
		return err
	}
	return nil
}

type mockDirectory struct {
	employeeIDs map[int64]bool
	customerIDs map[string]bool
	variantIDs  map[string]bool
}

func (m *mockDirectory) EmployeeExists(_ context.Context, id int64) (bool, error) {
	return m.employeeIDs[id], nil
}

func (m *mockDirectory) CustomerExists(_ context.Context, id string) (bool, error) {
	return m.customerIDs[id], nil
}

func (m *mockDirectory) VariantExists(_ context.Context, id string) (bool, error) {
	return m.variantIDs[id], nil
}

// --- Helpers ---

type fixture struct {
	orders *mockOrderRepo
	items  *mockItemRepo
	svc    *Service
}

func newFixture(orders *mockOrderRepo, items *mockItemRepo) *fixture {
	dir := &mockDirectory{
		employeeIDs: map[int64]bool{1: true},
		customerIDs: map[string]bool{"cust-1": true},
		variantIDs:  map[string]bool{"v1": true, "v2": true},
	}
	recalc := NewRecalculator(orders, items)
	svc := NewService(orders, items, recalc, &mockTx{orders: orders, items: items}, dir, dir, dir)
	return &fixture{orders: orders, items: items, svc: svc}
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testOrder(id string) *Order {
	return &Order{
		ID:               id,
		EmployeeID:       1,
		Status:           StatusPending,
		TotalPrice:       decimal.Zero,
		TotalBilledPrice: decimal.Zero,
	}
}

func testItem(id int64, orderID string, qty int, price string, status ItemStatus) *Item {
	it := &Item{
		ID:        id,
		OrderID:   orderID,
		VariantID: "v1",
		Quantity:  qty,
		UnitPrice: money(price),
		Status:    status,
	}
	it.ComputeSubtotal()
	return it
}

func assertTotals(t *testing.T, f *fixture, orderID, gross, billed string) {
	t.Helper()
	o, err := f.orders.Get(context.Background(), orderID)
	require.NoError(t, err)
	assert.True(t, money(gross).Equal(o.TotalPrice),
		"gross total: want %s, got %s", gross, o.TotalPrice)
	assert.True(t, money(billed).Equal(o.TotalBilledPrice),
		"billed total: want %s, got %s", billed, o.TotalBilledPrice)
}

// --- Tests ---

func TestCreateOrder_TotalsFromItems(t *testing.T) {
	f := newFixture(newMockOrderRepo(), newMockItemRepo())

	o, err := f.svc.CreateOrder(context.Background(), CreateOrderRequest{
		EmployeeID: 1,
		Items: []CreateItemInput{
			{VariantID: "v1", Quantity: 3, UnitPrice: money("19.99")},
			{VariantID: "v2", Quantity: 1, UnitPrice: money("5.00"), Status: ItemStatusCancelled},
		},
	})

	require.NoError(t, err)
	assert.True(t, money("64.97").Equal(o.TotalPrice), "got %s", o.TotalPrice)
	assert.True(t, money("59.97").Equal(o.TotalBilledPrice), "got %s", o.TotalBilledPrice)
	assertTotals(t, f, o.ID, "64.97", "59.97")

	// The whole batch triggers a single totals write.
	assert.Equal(t, 1, f.orders.totalsCalls)
}

func TestCreateOrder_InvalidQuantity(t *testing.T) {
	f := newFixture(newMockOrderRepo(), newMockItemRepo())

	_, err := f.svc.CreateOrder(context.Background(), CreateOrderRequest{
		EmployeeID: 1,
		Items:      []CreateItemInput{{VariantID: "v1", Quantity: 0, UnitPrice: money("1.00")}},
	})

	var iqErr *InvalidQuantityError
	require.ErrorAs(t, err, &iqErr)
	assert.Equal(t, 0, iqErr.Quantity)
}

func TestCreateOrder_NegativeUnitPrice(t *testing.T) {
	f := newFixture(newMockOrderRepo(), newMockItemRepo())

	_, err := f.svc.CreateOrder(context.Background(), CreateOrderRequest{
		EmployeeID: 1,
		Items:      []CreateItemInput{{VariantID: "v1", Quantity: 1, UnitPrice: money("-0.01")}},
	})

	var upErr *InvalidUnitPriceError
	require.ErrorAs(t, err, &upErr)
}

func TestCreateOrder_UnknownStatus(t *testing.T) {
	f := newFixture(newMockOrderRepo(), newMockItemRepo())

	_, err := f.svc.CreateOrder(context.Background(), CreateOrderRequest{
		EmployeeID: 1,
		Status:     "SHIPPED",
	})

	var stErr *InvalidStatusError
	require.ErrorAs(t, err, &stErr)
	assert.Equal(t, "SHIPPED", stErr.Status)
}

func TestCreateOrder_EmployeeNotFound(t *testing.T) {
	f := newFixture(newMockOrderRepo(), newMockItemRepo())

	_, err := f.svc.CreateOrder(context.Background(), CreateOrderRequest{EmployeeID: 99})
	require.ErrorIs(t, err, ErrEmployeeNotFound)
}

func TestCreateOrder_VariantNotFound(t *testing.T) {
	f := newFixture(newMockOrderRepo(), newMockItemRepo())

	_, err := f.svc.CreateOrder(context.Background(), CreateOrderRequest{
		EmployeeID: 1,
		Items:      []CreateItemInput{{VariantID: "missing", Quantity: 1, UnitPrice: money("1.00")}},
	})
	require.ErrorIs(t, err, ErrVariantNotFound)
}

func TestCreateOrder_ZeroPriceItem(t *testing.T) {
	f := newFixture(newMockOrderRepo(), newMockItemRepo())

	o, err := f.svc.CreateOrder(context.Background(), CreateOrderRequest{
		EmployeeID: 1,
		Items:      []CreateItemInput{{VariantID: "v1", Quantity: 5, UnitPrice: decimal.Zero}},
	})

	require.NoError(t, err)
	assert.True(t, decimal.Zero.Equal(o.TotalPrice))
	assert.True(t, decimal.Zero.Equal(o.TotalBilledPrice))
}

func TestCreateOrder_ItemCreateFailureRollsBack(t *testing.T) {
	orders := newMockOrderRepo()
	items := newMockItemRepo()
	items.createErr = errors.New("db write failed")
	f := newFixture(orders, items)

	_, err := f.svc.CreateOrder(context.Background(), CreateOrderRequest{
		EmployeeID: 1,
		Items:      []CreateItemInput{{VariantID: "v1", Quantity: 1, UnitPrice: money("1.00")}},
	})

	require.Error(t, err)
	// Nothing survives the rollback, not even the order row.
	assert.Empty(t, orders.orders)
	assert.Empty(t, items.items)
}

func TestCreateItem_TotalsWriteFailureRollsBack(t *testing.T) {
	orders := newMockOrderRepo(testOrder("o1"))
	items := newMockItemRepo()
	errWrite := errors.New("totals write failed")
	orders.totalsErr = errWrite
	f := newFixture(orders, items)

	_, err := f.svc.CreateItem(context.Background(), CreateItemRequest{
		OrderID:         "o1",
		CreateItemInput: CreateItemInput{VariantID: "v1", Quantity: 1, UnitPrice: money("25.50")},
	})

	require.ErrorIs(t, err, errWrite)
	// The item insert preceding the failed totals write must not survive.
	left, lerr := f.items.ListByOrder(context.Background(), "o1")
	require.NoError(t, lerr)
	assert.Empty(t, left)
	assertTotals(t, f, "o1", "0", "0")
}

func TestUpdateItem_TotalsWriteFailureRollsBack(t *testing.T) {
	orders := newMockOrderRepo(testOrder("o1"))
	items := newMockItemRepo(testItem(1, "o1", 1, "19.99", ItemStatusPending))
	errWrite := errors.New("totals write failed")
	orders.totalsErr = errWrite
	f := newFixture(orders, items)

	qty := 3
	_, err := f.svc.UpdateItem(context.Background(), 1, ItemPatch{Quantity: &qty})

	require.ErrorIs(t, err, errWrite)
	// Fresh read: the item update rolled back with the totals write.
	it, gerr := f.items.Get(context.Background(), 1)
	require.NoError(t, gerr)
	assert.Equal(t, 1, it.Quantity)
	assert.True(t, money("19.99").Equal(it.Subtotal), "got %s", it.Subtotal)
	assertTotals(t, f, "o1", "0", "0")
}

func TestCreateItem_UpdatesTotals(t *testing.T) {
	f := newFixture(newMockOrderRepo(testOrder("o1")), newMockItemRepo())

	item, err := f.svc.CreateItem(context.Background(), CreateItemRequest{
		OrderID:         "o1",
		CreateItemInput: CreateItemInput{VariantID: "v1", Quantity: 1, UnitPrice: money("25.50")},
	})

	require.NoError(t, err)
	assert.Equal(t, ItemStatusPending, item.Status)
	assert.True(t, money("25.50").Equal(item.Subtotal))
	assertTotals(t, f, "o1", "25.50", "25.50")
}

func TestCreateItem_OrderNotFound(t *testing.T) {
	f := newFixture(newMockOrderRepo(), newMockItemRepo())

	_, err := f.svc.CreateItem(context.Background(), CreateItemRequest{
		OrderID:         "missing",
		CreateItemInput: CreateItemInput{VariantID: "v1", Quantity: 1, UnitPrice: money("1.00")},
	})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateItem_QuantityRecomputesSubtotal(t *testing.T) {
	f := newFixture(
		newMockOrderRepo(testOrder("o1")),
		newMockItemRepo(testItem(1, "o1", 1, "19.99", ItemStatusPending)),
	)

	qty := 3
	item, err := f.svc.UpdateItem(context.Background(), 1, ItemPatch{Quantity: &qty})

	require.NoError(t, err)
	assert.True(t, money("59.97").Equal(item.Subtotal), "got %s", item.Subtotal)
	assertTotals(t, f, "o1", "59.97", "59.97")
}

func TestUpdateItem_CancelExcludesFromBilled(t *testing.T) {
	f := newFixture(
		newMockOrderRepo(testOrder("o1")),
		newMockItemRepo(
			testItem(1, "o1", 2, "10.00", ItemStatusPending),
			testItem(2, "o1", 1, "5.00", ItemStatusCompleted),
		),
	)

	cancelled := ItemStatusCancelled
	_, err := f.svc.UpdateItem(context.Background(), 1, ItemPatch{Status: &cancelled})

	require.NoError(t, err)
	// Gross keeps the cancelled line, billed drops it.
	assertTotals(t, f, "o1", "25.00", "5.00")
}

func TestUpdateItem_ReassignRecalculatesBothOrders(t *testing.T) {
	f := newFixture(
		newMockOrderRepo(testOrder("o1"), testOrder("o2")),
		newMockItemRepo(
			testItem(1, "o1", 1, "10.00", ItemStatusPending),
			testItem(2, "o1", 1, "7.50", ItemStatusPending),
		),
	)

	target := "o2"
	item, err := f.svc.UpdateItem(context.Background(), 1, ItemPatch{OrderID: &target})

	require.NoError(t, err)
	assert.Equal(t, "o2", item.OrderID)
	assertTotals(t, f, "o1", "7.50", "7.50")
	assertTotals(t, f, "o2", "10.00", "10.00")
}

func TestUpdateItem_ReassignToMissingOrder(t *testing.T) {
	f := newFixture(
		newMockOrderRepo(testOrder("o1")),
		newMockItemRepo(testItem(1, "o1", 1, "10.00", ItemStatusPending)),
	)

	target := "missing"
	_, err := f.svc.UpdateItem(context.Background(), 1, ItemPatch{OrderID: &target})

	require.ErrorIs(t, err, ErrNotFound)
	// The item stays on its original order.
	it, getErr := f.items.Get(context.Background(), 1)
	require.NoError(t, getErr)
	assert.Equal(t, "o1", it.OrderID)
}

func TestUpdateItem_VariantOnlyChangeSkipsRecalc(t *testing.T) {
	f := newFixture(
		newMockOrderRepo(testOrder("o1")),
		newMockItemRepo(testItem(1, "o1", 1, "10.00", ItemStatusPending)),
	)

	variant := "v2"
	item, err := f.svc.UpdateItem(context.Background(), 1, ItemPatch{VariantID: &variant})

	require.NoError(t, err)
	assert.Equal(t, "v2", item.VariantID)
	assert.Equal(t, 0, f.orders.totalsCalls)
}

func TestUpdateItem_SameValuesSkipRecalc(t *testing.T) {
	f := newFixture(
		newMockOrderRepo(testOrder("o1")),
		newMockItemRepo(testItem(1, "o1", 2, "10.00", ItemStatusPending)),
	)

	qty := 2
	price := money("10.00")
	_, err := f.svc.UpdateItem(context.Background(), 1, ItemPatch{Quantity: &qty, UnitPrice: &price})

	require.NoError(t, err)
	assert.Equal(t, 0, f.orders.totalsCalls)
}

func TestUpdateItem_EmptyPatch(t *testing.T) {
	f := newFixture(newMockOrderRepo(), newMockItemRepo())

	_, err := f.svc.UpdateItem(context.Background(), 1, ItemPatch{})
	require.ErrorIs(t, err, ErrNoFields)
}

func TestUpdateItem_InvalidQuantity(t *testing.T) {
	f := newFixture(newMockOrderRepo(), newMockItemRepo())

	qty := -2
	_, err := f.svc.UpdateItem(context.Background(), 1, ItemPatch{Quantity: &qty})

	var iqErr *InvalidQuantityError
	require.ErrorAs(t, err, &iqErr)
	assert.Equal(t, -2, iqErr.Quantity)
}

func TestDeleteItem_LastItemZeroesTotals(t *testing.T) {
	o := testOrder("o1")
	o.TotalPrice = money("25.50")
	o.TotalBilledPrice = money("25.50")
	f := newFixture(
		newMockOrderRepo(o),
		newMockItemRepo(testItem(1, "o1", 1, "25.50", ItemStatusPending)),
	)

	require.NoError(t, f.svc.DeleteItem(context.Background(), 1))
	assertTotals(t, f, "o1", "0", "0")
}

func TestDeleteItem_NotFound(t *testing.T) {
	f := newFixture(newMockOrderRepo(), newMockItemRepo())

	err := f.svc.DeleteItem(context.Background(), 42)
	require.ErrorIs(t, err, ErrItemNotFound)
}

func TestUpdateOrder_HeaderOnly(t *testing.T) {
	o := testOrder("o1")
	o.TotalPrice = money("10.00")
	o.TotalBilledPrice = money("10.00")
	f := newFixture(newMockOrderRepo(o), newMockItemRepo())

	status := StatusCompleted
	updated, err := f.svc.UpdateOrder(context.Background(), "o1", OrderPatch{Status: &status})

	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, updated.Status)
	// Header updates never touch the derived totals.
	assertTotals(t, f, "o1", "10.00", "10.00")
	assert.Equal(t, 0, f.orders.totalsCalls)
}

func TestUpdateOrder_UnknownStatus(t *testing.T) {
	f := newFixture(newMockOrderRepo(testOrder("o1")), newMockItemRepo())

	status := Status("SHIPPED")
	_, err := f.svc.UpdateOrder(context.Background(), "o1", OrderPatch{Status: &status})

	var stErr *InvalidStatusError
	require.ErrorAs(t, err, &stErr)
}

func TestDeleteOrder_RemovesItems(t *testing.T) {
	f := newFixture(
		newMockOrderRepo(testOrder("o1")),
		newMockItemRepo(
			testItem(1, "o1", 1, "10.00", ItemStatusPending),
			testItem(2, "o1", 2, "5.00", ItemStatusCompleted),
		),
	)

	require.NoError(t, f.svc.DeleteOrder(context.Background(), "o1"))

	_, err := f.orders.Get(context.Background(), "o1")
	require.ErrorIs(t, err, ErrNotFound)
	remaining, err := f.items.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestGetOrder_IncludesItems(t *testing.T) {
	f := newFixture(
		newMockOrderRepo(testOrder("o1")),
		newMockItemRepo(
			testItem(1, "o1", 1, "10.00", ItemStatusPending),
			testItem(2, "o2", 1, "99.00", ItemStatusPending),
		),
	)

	o, err := f.svc.GetOrder(context.Background(), "o1")
	require.NoError(t, err)
	require.Len(t, o.Items, 1)
	assert.Equal(t, int64(1), o.Items[0].ID)
}
