//go:build integration

package integration

import (
	"context"
	"net/http"
	"strconv"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/retail-backoffice/internal/domain/catalog"
	"github.com/xenking/retail-backoffice/internal/storage/postgres"
)

type orderDTO struct {
	OrderID          string          `json:"order_id"`
	EmployeeID       int64           `json:"employee_id"`
	Status           string          `json:"status"`
	TotalPrice       decimal.Decimal `json:"total_price"`
	TotalBilledPrice decimal.Decimal `json:"total_billed_price"`
	Items            []itemDTO       `json:"items"`
}

type itemDTO struct {
	OrderItemID int64           `json:"order_item_id"`
	OrderID     string          `json:"order_id"`
	VariantID   string          `json:"variant_id"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Status      string          `json:"status"`
}

// createVariant inserts a catalog model and variant directly, returning the
// variant ID for use in order items.
func createVariant(t *testing.T, price string) string {
	t.Helper()
	ctx := context.Background()

	models := postgres.NewModelRepository(pool)
	variants := postgres.NewVariantRepository(pool)

	model := &catalog.ProductModel{
		ID:        uuid.New().String(),
		Name:      "Test Model " + uuid.New().String()[:8],
		BasePrice: decimal.RequireFromString(price),
	}
	require.NoError(t, models.Create(ctx, model))

	v := &catalog.ProductVariant{
		ID:      uuid.New().String(),
		ModelID: model.ID,
		SKU:     "SKU-" + uuid.New().String()[:8],
		Price:   decimal.RequireFromString(price),
	}
	require.NoError(t, variants.Create(ctx, v))
	return v.ID
}

func createOrder(t *testing.T, token string, body map[string]any) orderDTO {
	t.Helper()

	resp := doReq(t, http.MethodPost, "/api/saleOrders", token, body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	env, o := decodeEnvelope[orderDTO](t, resp)
	require.Equal(t, "success", env.Status)
	return o
}

func getOrder(t *testing.T, token, id string) orderDTO {
	t.Helper()

	resp := doReq(t, http.MethodGet, "/api/saleOrders/"+id, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_, o := decodeEnvelope[orderDTO](t, resp)
	return o
}

func assertMoney(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}

func TestCreateOrder_WithItems(t *testing.T) {
	token := superadminToken(t)
	variantID := createVariant(t, "19.99")

	o := createOrder(t, token, map[string]any{
		"employee_id": superadminID,
		"items": []map[string]any{
			{"variant_id": variantID, "quantity": 3, "unit_price": "19.99"},
		},
	})

	assert.Equal(t, "PENDING", o.Status)
	assertMoney(t, "59.97", o.TotalPrice)
	assertMoney(t, "59.97", o.TotalBilledPrice)
	require.Len(t, o.Items, 1)
	assertMoney(t, "59.97", o.Items[0].Subtotal)
}

func TestCreateOrder_TotalsNotClientWritable(t *testing.T) {
	token := superadminToken(t)

	o := createOrder(t, token, map[string]any{
		"employee_id": superadminID,
	})
	assertMoney(t, "0", o.TotalPrice)

	// Updating totals directly is rejected.
	resp := doReq(t, http.MethodPatch, "/api/saleOrders/"+o.OrderID, token, map[string]any{
		"total_price": "999.99",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAddItem_RecalculatesTotals(t *testing.T) {
	token := superadminToken(t)
	variantID := createVariant(t, "25.50")

	o := createOrder(t, token, map[string]any{"employee_id": superadminID})
	assertMoney(t, "0", o.TotalPrice)

	resp := doReq(t, http.MethodPost, "/api/saleOrderItems", token, map[string]any{
		"order_id":   o.OrderID,
		"variant_id": variantID,
		"quantity":   1,
		"unit_price": "25.50",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	_, item := decodeEnvelope[itemDTO](t, resp)
	assertMoney(t, "25.50", item.Subtotal)

	got := getOrder(t, token, o.OrderID)
	assertMoney(t, "25.50", got.TotalPrice)
	assertMoney(t, "25.50", got.TotalBilledPrice)
}

func TestCancelItem_ExcludedFromBilledTotal(t *testing.T) {
	token := superadminToken(t)
	variantID := createVariant(t, "10.00")

	o := createOrder(t, token, map[string]any{
		"employee_id": superadminID,
		"items": []map[string]any{
			{"variant_id": variantID, "quantity": 2, "unit_price": "10.00"},
			{"variant_id": variantID, "quantity": 1, "unit_price": "5.00"},
		},
	})
	assertMoney(t, "25.00", o.TotalBilledPrice)

	itemID := o.Items[0].OrderItemID
	resp := doReq(t, http.MethodPatch, "/api/saleOrderItems/"+itoa(itemID), token, map[string]any{
		"status": "CANCELLED",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	got := getOrder(t, token, o.OrderID)
	assertMoney(t, "25.00", got.TotalPrice)
	assertMoney(t, "5.00", got.TotalBilledPrice)
}

func TestReassignItem_RecalculatesBothOrders(t *testing.T) {
	token := superadminToken(t)
	variantID := createVariant(t, "10.00")

	src := createOrder(t, token, map[string]any{
		"employee_id": superadminID,
		"items": []map[string]any{
			{"variant_id": variantID, "quantity": 1, "unit_price": "10.00"},
			{"variant_id": variantID, "quantity": 1, "unit_price": "7.50"},
		},
	})
	dst := createOrder(t, token, map[string]any{"employee_id": superadminID})

	moved := src.Items[0].OrderItemID
	resp := doReq(t, http.MethodPatch, "/api/saleOrderItems/"+itoa(moved), token, map[string]any{
		"order_id": dst.OrderID,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	gotSrc := getOrder(t, token, src.OrderID)
	gotDst := getOrder(t, token, dst.OrderID)
	assertMoney(t, "7.50", gotSrc.TotalPrice)
	assertMoney(t, "10.00", gotDst.TotalPrice)
}

func TestDeleteLastItem_ZeroesTotals(t *testing.T) {
	token := superadminToken(t)
	variantID := createVariant(t, "25.50")

	o := createOrder(t, token, map[string]any{
		"employee_id": superadminID,
		"items": []map[string]any{
			{"variant_id": variantID, "quantity": 1, "unit_price": "25.50"},
		},
	})
	assertMoney(t, "25.50", o.TotalPrice)

	resp := doReq(t, http.MethodDelete, "/api/saleOrderItems/"+itoa(o.Items[0].OrderItemID), token, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	got := getOrder(t, token, o.OrderID)
	assertMoney(t, "0", got.TotalPrice)
	assertMoney(t, "0", got.TotalBilledPrice)
}

func TestCreateOrder_UnknownVariantRollsBack(t *testing.T) {
	token := superadminToken(t)
	variantID := createVariant(t, "10.00")

	before := countOrders(t, token)

	resp := doReq(t, http.MethodPost, "/api/saleOrders", token, map[string]any{
		"employee_id": superadminID,
		"items": []map[string]any{
			{"variant_id": variantID, "quantity": 1, "unit_price": "10.00"},
			{"variant_id": uuid.New().String(), "quantity": 1, "unit_price": "5.00"},
		},
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	// No partial order survives the failure.
	assert.Equal(t, before, countOrders(t, token))
}

func TestItemSubtotal_NotClientWritable(t *testing.T) {
	token := superadminToken(t)
	variantID := createVariant(t, "10.00")

	o := createOrder(t, token, map[string]any{
		"employee_id": superadminID,
		"items": []map[string]any{
			{"variant_id": variantID, "quantity": 1, "unit_price": "10.00"},
		},
	})

	resp := doReq(t, http.MethodPatch, "/api/saleOrderItems/"+itoa(o.Items[0].OrderItemID), token, map[string]any{
		"subtotal": "999.99",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateItem_InvalidQuantity(t *testing.T) {
	token := superadminToken(t)
	variantID := createVariant(t, "10.00")
	o := createOrder(t, token, map[string]any{"employee_id": superadminID})

	resp := doReq(t, http.MethodPost, "/api/saleOrderItems", token, map[string]any{
		"order_id":   o.OrderID,
		"variant_id": variantID,
		"quantity":   0,
		"unit_price": "10.00",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDeleteOrder_RemovesItems(t *testing.T) {
	token := superadminToken(t)
	variantID := createVariant(t, "10.00")

	o := createOrder(t, token, map[string]any{
		"employee_id": superadminID,
		"items": []map[string]any{
			{"variant_id": variantID, "quantity": 1, "unit_price": "10.00"},
		},
	})
	itemID := o.Items[0].OrderItemID

	resp := doReq(t, http.MethodDelete, "/api/saleOrders/"+o.OrderID, token, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = doReq(t, http.MethodGet, "/api/saleOrders/"+o.OrderID, token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = doReq(t, http.MethodGet, "/api/saleOrderItems/"+itoa(itemID), token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func countOrders(t *testing.T, token string) int {
	t.Helper()

	resp := doReq(t, http.MethodGet, "/api/saleOrders", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_, orders := decodeEnvelope[[]orderDTO](t, resp)
	return len(orders)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
