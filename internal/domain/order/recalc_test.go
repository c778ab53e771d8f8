package order

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubtotal_Rounding(t *testing.T) {
	tests := []struct {
		name     string
		quantity int
		price    string
		want     string
	}{
		{"exact cents", 3, "19.99", "59.97"},
		{"rounds half up", 3, "0.335", "1.01"},
		{"rounds down", 3, "0.334", "1"},
		{"zero price", 10, "0", "0"},
		{"single unit", 1, "25.50", "25.50"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Subtotal(tt.quantity, money(tt.price))
			assert.True(t, money(tt.want).Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestRecalculate_BilledExcludesNonBillable(t *testing.T) {
	orders := newMockOrderRepo(testOrder("o1"))
	items := newMockItemRepo(
		testItem(1, "o1", 1, "10.00", ItemStatusPending),
		testItem(2, "o1", 1, "20.00", ItemStatusProcessing),
		testItem(3, "o1", 1, "30.00", ItemStatusCompleted),
		testItem(4, "o1", 1, "40.00", ItemStatusCancelled),
		testItem(5, "o1", 1, "50.00", ItemStatusRefunded),
		testItem(6, "o1", 1, "60.00", ItemStatusReturned),
		testItem(7, "o1", 1, "70.00", ItemStatusBackordered),
	)
	r := NewRecalculator(orders, items)

	gross, billed, err := r.Recalculate(context.Background(), "o1")

	require.NoError(t, err)
	assert.True(t, money("280.00").Equal(gross), "got %s", gross)
	assert.True(t, money("60.00").Equal(billed), "got %s", billed)
}

func TestRecalculate_Idempotent(t *testing.T) {
	orders := newMockOrderRepo(testOrder("o1"))
	items := newMockItemRepo(testItem(1, "o1", 3, "19.99", ItemStatusPending))
	r := NewRecalculator(orders, items)

	g1, b1, err := r.Recalculate(context.Background(), "o1")
	require.NoError(t, err)
	g2, b2, err := r.Recalculate(context.Background(), "o1")
	require.NoError(t, err)

	assert.True(t, g1.Equal(g2))
	assert.True(t, b1.Equal(b2))
	assert.True(t, money("59.97").Equal(g1), "got %s", g1)
}

func TestRecalculate_EmptyOrder(t *testing.T) {
	orders := newMockOrderRepo(testOrder("o1"))
	r := NewRecalculator(orders, newMockItemRepo())

	gross, billed, err := r.Recalculate(context.Background(), "o1")

	require.NoError(t, err)
	assert.True(t, decimal.Zero.Equal(gross))
	assert.True(t, decimal.Zero.Equal(billed))
}

func TestRecalculate_DeletedOrderNoOps(t *testing.T) {
	orders := newMockOrderRepo()
	items := newMockItemRepo(testItem(1, "gone", 1, "10.00", ItemStatusPending))
	r := NewRecalculator(orders, items)

	_, _, err := r.Recalculate(context.Background(), "gone")

	require.NoError(t, err)
	assert.Equal(t, 1, orders.totalsCalls)
}
