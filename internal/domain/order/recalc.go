package order

import (
	"context"

	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Recalculator re-derives an order's totals from its current line items.
// It owns no data: it reads through the item repository and writes through
// the order repository, always inside the caller's transaction so it
// observes the mutation that triggered it.
type Recalculator struct {
	orders Repository
	items  ItemRepository
}

// NewRecalculator creates a Recalculator over the given repositories.
func NewRecalculator(orders Repository, items ItemRepository) *Recalculator {
	return &Recalculator{orders: orders, items: items}
}

// Recalculate reads every item of the order and writes back the gross total
// (sum of all subtotals) and the billed total (sum over billable statuses),
// both rounded to 2 decimal places. Running it twice with no intervening
// item change yields identical totals. When the order row has been deleted
// concurrently, the totals write no-ops and no error is returned.
func (r *Recalculator) Recalculate(ctx context.Context, orderID string) (gross, billed decimal.Decimal, err error) {
	items, err := r.items.ListByOrder(ctx, orderID)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	gross = decimal.Zero
	billed = decimal.Zero
	for _, item := range items {
		gross = gross.Add(item.Subtotal)
		if item.Status.Billable() {
			billed = billed.Add(item.Subtotal)
		}
	}
	gross = gross.Round(2)
	billed = billed.Round(2)

	if err := r.orders.UpdateTotals(ctx, orderID, gross, billed); err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	zctx.From(ctx).Debug("Order totals recalculated",
		zap.String("order_id", orderID),
		zap.String("gross", gross.String()),
		zap.String("billed", billed.String()),
	)
	return gross, billed, nil
}
