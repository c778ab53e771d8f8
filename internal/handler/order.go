package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/xenking/retail-backoffice/internal/domain/order"
)

type orderItemResponse struct {
	OrderItemID int64            `json:"order_item_id"`
	OrderID     string           `json:"order_id"`
	VariantID   string           `json:"variant_id"`
	Quantity    int              `json:"quantity"`
	UnitPrice   decimal.Decimal  `json:"unit_price"`
	Subtotal    decimal.Decimal  `json:"subtotal"`
	Status      order.ItemStatus `json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

type orderResponse struct {
	OrderID          string              `json:"order_id"`
	EmployeeID       int64               `json:"employee_id"`
	CustomerID       *string             `json:"customer_id"`
	OrderDate        time.Time           `json:"order_date"`
	Status           order.Status        `json:"status"`
	TotalPrice       decimal.Decimal     `json:"total_price"`
	TotalBilledPrice decimal.Decimal     `json:"total_billed_price"`
	CustomerName     string              `json:"customer_name,omitempty"`
	CustomerEmail    string              `json:"customer_email,omitempty"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
	Items            []orderItemResponse `json:"items,omitempty"`
}

func toItemResponse(item *order.Item) orderItemResponse {
	return orderItemResponse{
		OrderItemID: item.ID,
		OrderID:     item.OrderID,
		VariantID:   item.VariantID,
		Quantity:    item.Quantity,
		UnitPrice:   item.UnitPrice,
		Subtotal:    item.Subtotal,
		Status:      item.Status,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
}

func toOrderResponse(o *order.Order) orderResponse {
	resp := orderResponse{
		OrderID:          o.ID,
		EmployeeID:       o.EmployeeID,
		CustomerID:       o.CustomerID,
		OrderDate:        o.OrderDate,
		Status:           o.Status,
		TotalPrice:       o.TotalPrice,
		TotalBilledPrice: o.TotalBilledPrice,
		CustomerName:     o.CustomerName,
		CustomerEmail:    o.CustomerEmail,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
	}
	for i := range o.Items {
		resp.Items = append(resp.Items, toItemResponse(&o.Items[i]))
	}
	return resp
}

type createOrderItemInput struct {
	VariantID string           `json:"variant_id"`
	Quantity  *int             `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
	Status    string           `json:"status"`
}

type createOrderRequest struct {
	EmployeeID    *int64                 `json:"employee_id"`
	CustomerID    *string                `json:"customer_id"`
	Status        string                 `json:"status"`
	CustomerName  string                 `json:"customer_name"`
	CustomerEmail string                 `json:"customer_email"`
	OrderDate     *time.Time             `json:"order_date"`
	Items         []createOrderItemInput `json:"items"`
}

// CreateSaleOrder creates an order, inserts its initial items, and responds
// with the recalculated totals.
func (h *Handler) CreateSaleOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := decode(r, &req); err != nil {
		respondFail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.EmployeeID == nil {
		respondFail(w, http.StatusBadRequest, "employee_id is required")
		return
	}

	items := make([]order.CreateItemInput, 0, len(req.Items))
	for _, in := range req.Items {
		if in.VariantID == "" || in.Quantity == nil || in.UnitPrice == nil {
			respondFail(w, http.StatusBadRequest, "variant_id, quantity, and unit_price are required for each item")
			return
		}
		items = append(items, order.CreateItemInput{
			VariantID: in.VariantID,
			Quantity:  *in.Quantity,
			UnitPrice: *in.UnitPrice,
			Status:    order.ItemStatus(in.Status),
		})
	}

	o, err := h.orders.CreateOrder(r.Context(), order.CreateOrderRequest{
		EmployeeID:    *req.EmployeeID,
		CustomerID:    req.CustomerID,
		Status:        order.Status(req.Status),
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		OrderDate:     req.OrderDate,
		Items:         items,
	})
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	resp := toOrderResponse(o)
	respondSuccess(w, http.StatusCreated, "Sale order created successfully.", resp)
}

// ListSaleOrders returns all sale orders without their items.
func (h *Handler) ListSaleOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListOrders(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	out := make([]orderResponse, len(orders))
	for i := range orders {
		out[i] = toOrderResponse(&orders[i])
	}
	respondList(w, "Sale orders retrieved successfully.", out, len(out))
}

// GetSaleOrder returns a single order with its items.
func (h *Handler) GetSaleOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.GetOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, "Sale order retrieved successfully.", toOrderResponse(o))
}

type updateOrderRequest struct {
	EmployeeID    *int64           `json:"employee_id"`
	CustomerID    *string          `json:"customer_id"`
	Status        *string          `json:"status"`
	CustomerName  *string          `json:"customer_name"`
	CustomerEmail *string          `json:"customer_email"`
	OrderDate     *time.Time       `json:"order_date"`
	TotalPrice    *decimal.Decimal `json:"total_price"`
	TotalBilled   *decimal.Decimal `json:"total_billed_price"`
}

// UpdateSaleOrder applies a partial update to an order's header fields.
// Totals are derived state and cannot be written by clients.
func (h *Handler) UpdateSaleOrder(w http.ResponseWriter, r *http.Request) {
	var req updateOrderRequest
	if err := decode(r, &req); err != nil {
		respondFail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.TotalPrice != nil || req.TotalBilled != nil {
		respondFail(w, http.StatusBadRequest, "Totals cannot be updated directly. They are calculated from the order's items.")
		return
	}

	patch := order.OrderPatch{
		EmployeeID:    req.EmployeeID,
		CustomerID:    req.CustomerID,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		OrderDate:     req.OrderDate,
	}
	if req.Status != nil {
		s := order.Status(*req.Status)
		patch.Status = &s
	}

	o, err := h.orders.UpdateOrder(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, "Sale order updated successfully.", toOrderResponse(o))
}

// DeleteSaleOrder removes an order and all of its items.
func (h *Handler) DeleteSaleOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.orders.DeleteOrder(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type createItemRequest struct {
	OrderID   string           `json:"order_id"`
	VariantID string           `json:"variant_id"`
	Quantity  *int             `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
	Status    string           `json:"status"`
}

// CreateSaleOrderItem inserts a line item and recalculates its order's
// totals in the same transaction.
func (h *Handler) CreateSaleOrderItem(w http.ResponseWriter, r *http.Request) {
	var req createItemRequest
	if err := decode(r, &req); err != nil {
		respondFail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.OrderID == "" || req.VariantID == "" || req.Quantity == nil || req.UnitPrice == nil {
		respondFail(w, http.StatusBadRequest, "Order ID, variant ID, quantity, and unit price are required.")
		return
	}

	item, err := h.orders.CreateItem(r.Context(), order.CreateItemRequest{
		OrderID: req.OrderID,
		CreateItemInput: order.CreateItemInput{
			VariantID: req.VariantID,
			Quantity:  *req.Quantity,
			UnitPrice: *req.UnitPrice,
			Status:    order.ItemStatus(req.Status),
		},
	})
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusCreated, "Sale order item created successfully.", toItemResponse(item))
}

// ListSaleOrderItems returns all line items.
func (h *Handler) ListSaleOrderItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.orders.ListItems(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	out := make([]orderItemResponse, len(items))
	for i := range items {
		out[i] = toItemResponse(&items[i])
	}
	respondList(w, "Sale order items retrieved successfully.", out, len(out))
}

// GetSaleOrderItem returns a single line item.
func (h *Handler) GetSaleOrderItem(w http.ResponseWriter, r *http.Request) {
	id, ok := parseItemID(w, r)
	if !ok {
		return
	}
	item, err := h.orders.GetItem(r.Context(), id)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, "Sale order item retrieved successfully.", toItemResponse(item))
}

type updateItemRequest struct {
	OrderID   *string          `json:"order_id"`
	VariantID *string          `json:"variant_id"`
	Quantity  *int             `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
	Status    *string          `json:"status"`
	Subtotal  *decimal.Decimal `json:"subtotal"`
}

// UpdateSaleOrderItem applies a partial update to a line item. The subtotal
// is derived from quantity and unit price and cannot be supplied by clients.
// If the item moved between orders, both orders' totals are recalculated.
func (h *Handler) UpdateSaleOrderItem(w http.ResponseWriter, r *http.Request) {
	id, ok := parseItemID(w, r)
	if !ok {
		return
	}
	var req updateItemRequest
	if err := decode(r, &req); err != nil {
		respondFail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Subtotal != nil {
		respondFail(w, http.StatusBadRequest, "Subtotal cannot be updated directly. It is calculated from quantity and unit price.")
		return
	}

	patch := order.ItemPatch{
		OrderID:   req.OrderID,
		VariantID: req.VariantID,
		Quantity:  req.Quantity,
		UnitPrice: req.UnitPrice,
	}
	if req.Status != nil {
		s := order.ItemStatus(*req.Status)
		patch.Status = &s
	}

	item, err := h.orders.UpdateItem(r.Context(), id, patch)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, "Sale order item updated successfully.", toItemResponse(item))
}

// DeleteSaleOrderItem removes a line item and recalculates its order's
// totals in the same transaction.
func (h *Handler) DeleteSaleOrderItem(w http.ResponseWriter, r *http.Request) {
	id, ok := parseItemID(w, r)
	if !ok {
		return
	}
	if err := h.orders.DeleteItem(r.Context(), id); err != nil {
		respondDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseItemID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondFail(w, http.StatusBadRequest, "invalid item id")
		return 0, false
	}
	return id, true
}
