package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/xenking/retail-backoffice/internal/domain/catalog"
)

type categoryResponse struct {
	CategoryID int64     `json:"category_id"`
	Name       string    `json:"name"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func toCategoryResponse(c *catalog.Category) categoryResponse {
	return categoryResponse{
		CategoryID: c.ID,
		Name:       c.Name,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}

// CreateCategory registers a product category.
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decode(r, &req); err != nil {
		respondFail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		respondFail(w, http.StatusBadRequest, "Category name is required.")
		return
	}

	c := &catalog.Category{Name: req.Name}
	if err := h.categories.Create(r.Context(), c); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusCreated, "Category created successfully.", toCategoryResponse(c))
}

// ListCategories returns all categories.
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.List(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	out := make([]categoryResponse, 0, len(categories))
	for i := range categories {
		out = append(out, toCategoryResponse(&categories[i]))
	}
	respondList(w, "Categories retrieved successfully.", out, len(out))
}

// GetCategory returns a single category by id.
func (h *Handler) GetCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	c, err := h.categories.Get(r.Context(), id)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, "Category retrieved successfully.", toCategoryResponse(c))
}

// UpdateCategory renames a category.
func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var req struct {
		Name string `json:"name"`
	}
	if err := decode(r, &req); err != nil {
		respondFail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		respondFail(w, http.StatusBadRequest, "Category name is required.")
		return
	}

	c, err := h.categories.Get(r.Context(), id)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	c.Name = req.Name
	if err := h.categories.Update(r.Context(), c); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, "Category updated successfully.", toCategoryResponse(c))
}

// DeleteCategory removes a category.
func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := h.categories.Delete(r.Context(), id); err != nil {
		respondDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type attributeResponse struct {
	AttributeID int64     `json:"attribute_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toAttributeResponse(a *catalog.Attribute) attributeResponse {
	return attributeResponse{
		AttributeID: a.ID,
		Name:        a.Name,
		Description: a.Description,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

type attributeRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// CreateAttribute registers a product attribute.
func (h *Handler) CreateAttribute(w http.ResponseWriter, r *http.Request) {
	var req attributeRequest
	if err := decode(r, &req); err != nil {
		respondFail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == nil || *req.Name == "" {
		respondFail(w, http.StatusBadRequest, "Attribute name is required.")
		return
	}

	a := &catalog.Attribute{Name: *req.Name}
	if req.Description != nil {
		a.Description = *req.Description
	}
	if err := h.attributes.Create(r.Context(), a); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusCreated, "Attribute created successfully.", toAttributeResponse(a))
}

// ListAttributes returns all attributes.
func (h *Handler) ListAttributes(w http.ResponseWriter, r *http.Request) {
	attributes, err := h.attributes.List(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	out := make([]attributeResponse, 0, len(attributes))
	for i := range attributes {
		out = append(out, toAttributeResponse(&attributes[i]))
	}
	respondList(w, "Attributes retrieved successfully.", out, len(out))
}

// GetAttribute returns a single attribute by id.
func (h *Handler) GetAttribute(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	a, err := h.attributes.Get(r.Context(), id)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, "Attribute retrieved successfully.", toAttributeResponse(a))
}

// UpdateAttribute applies a partial update to an attribute.
func (h *Handler) UpdateAttribute(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var req attributeRequest
	if err := decode(r, &req); err != nil {
		respondFail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	a, err := h.attributes.Get(r.Context(), id)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	if req.Name != nil {
		a.Name = *req.Name
	}
	if req.Description != nil {
		a.Description = *req.Description
	}
	if err := h.attributes.Update(r.Context(), a); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, "Attribute updated successfully.", toAttributeResponse(a))
}

// DeleteAttribute removes an attribute.
func (h *Handler) DeleteAttribute(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := h.attributes.Delete(r.Context(), id); err != nil {
		respondDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type attributeValueResponse struct {
	AttributeValueID int64           `json:"attribute_value_id"`
	AttributeID      int64           `json:"attribute_id"`
	Value            string          `json:"value"`
	PriceModifier    decimal.Decimal `json:"price_modifier"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

func toAttributeValueResponse(v *catalog.AttributeValue) attributeValueResponse {
	return attributeValueResponse{
		AttributeValueID: v.ID,
		AttributeID:      v.AttributeID,
		Value:            v.Value,
		PriceModifier:    v.PriceModifier,
		CreatedAt:        v.CreatedAt,
		UpdatedAt:        v.UpdatedAt,
	}
}

type attributeValueRequest struct {
	AttributeID   *int64           `json:"attribute_id"`
	Value         *string          `json:"value"`
	PriceModifier *decimal.Decimal `json:"price_modifier"`
}

// CreateAttributeValue registers a concrete value for an attribute.
func (h *Handler) CreateAttributeValue(w http.ResponseWriter, r *http.Request) {
	var req attributeValueRequest
	if err := decode(r, &req); err != nil {
		respondFail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.AttributeID == nil || req.Value == nil || *req.Value == "" {
		respondFail(w, http.StatusBadRequest, "Attribute id and value are required.")
		return
	}

	v := &catalog.AttributeValue{AttributeID: *req.AttributeID, Value: *req.Value}
	if req.PriceModifier != nil {
		v.PriceModifier = *req.PriceModifier
	}
	if err := h.attributeValues.Create(r.Context(), v); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusCreated, "Attribute value created successfully.", toAttributeValueResponse(v))
}

// ListAttributeValues returns all attribute values.
func (h *Handler) ListAttributeValues(w http.ResponseWriter, r *http.Request) {
	values, err := h.attributeValues.List(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	out := make([]attributeValueResponse, 0, len(values))
	for i := range values {
		out = append(out, toAttributeValueResponse(&values[i]))
	}
	respondList(w, "Attribute values retrieved successfully.", out, len(out))
}

// GetAttributeValue returns a single attribute value by id.
func (h *Handler) GetAttributeValue(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	v, err := h.attributeValues.Get(r.Context(), id)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, "Attribute value retrieved successfully.", toAttributeValueResponse(v))
}

// UpdateAttributeValue applies a partial update to an attribute value.
func (h *Handler) UpdateAttributeValue(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var req attributeValueRequest
	if err := decode(r, &req); err != nil {
		respondFail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	v, err := h.attributeValues.Get(r.Context(), id)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	if req.AttributeID != nil {
		v.AttributeID = *req.AttributeID
	}
	if req.Value != nil {
		v.Value = *req.Value
	}
	if req.PriceModifier != nil {
		v.PriceModifier = *req.PriceModifier
	}
	if err := h.attributeValues.Update(r.Context(), v); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, "Attribute value updated successfully.", toAttributeValueResponse(v))
}

// DeleteAttributeValue removes an attribute value.
func (h *Handler) DeleteAttributeValue(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := h.attributeValues.Delete(r.Context(), id); err != nil {
		respondDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type productModelResponse struct {
	ModelID      string          `json:"model_id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	CategoryID   *int64          `json:"category_id"`
	Brand        string          `json:"brand"`
	BaseImageURL string          `json:"base_image_url"`
	BasePrice    decimal.Decimal `json:"base_price"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func toProductModelResponse(m *catalog.ProductModel) productModelResponse {
	return productModelResponse{
		ModelID:      m.ID,
		Name:         m.Name,
		Description:  m.Description,
		CategoryID:   m.CategoryID,
		Brand:        m.Brand,
		BaseImageURL: m.BaseImageURL,
		BasePrice:    m.BasePrice,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

type productModelRequest struct {
	Name         *string          `json:"name"`
	Description  *string          `json:"description"`
	CategoryID   *int64           `json:"category_id"`
	Brand        *string          `json:"brand"`
	BaseImageURL *string          `json:"base_image_url"`
	BasePrice    *decimal.Decimal `json:"base_price"`
}

// CreateProductModel registers an abstract product.
func (h *Handler) CreateProductModel(w http.ResponseWriter, r *http.Request) {
	var req productModelRequest
	if err := decode(r, &req); err != nil {
		respondFail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == nil || *req.Name == "" || req.BasePrice == nil {
		respondFail(w, http.StatusBadRequest, "Model name and base price are required.")
		return
	}
	if req.BasePrice.IsNegative() {
		respondFail(w, http.StatusBadRequest, "Base price must not be negative.")
		return
	}

	m := &catalog.ProductModel{
		ID:         uuid.New().String(),
		Name:       *req.Name,
		CategoryID: req.CategoryID,
		BasePrice:  *req.BasePrice,
	}
	if req.Description != nil {
		m.Description = *req.Description
	}
	if req.Brand != nil {
		m.Brand = *req.Brand
	}
	if req.BaseImageURL != nil {
		m.BaseImageURL = *req.BaseImageURL
	}
	if err := h.models.Create(r.Context(), m); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusCreated, "Product model created successfully.", toProductModelResponse(m))
}

// ListProductModels returns all product models.
func (h *Handler) ListProductModels(w http.ResponseWriter, r *http.Request) {
	models, err := h.models.List(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	out := make([]productModelResponse, 0, len(models))
	for i := range models {
		out = append(out, toProductModelResponse(&models[i]))
	}
	respondList(w, "Product models retrieved successfully.", out, len(out))
}

// GetProductModel returns a single product model by id.
func (h *Handler) GetProductModel(w http.ResponseWriter, r *http.Request) {
	m, err := h.models.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, "Product model retrieved successfully.", toProductModelResponse(m))
}

// UpdateProductModel applies a partial update to a product model.
func (h *Handler) UpdateProductModel(w http.ResponseWriter, r *http.Request) {
	var req productModelRequest
	if err := decode(r, &req); err != nil {
		respondFail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.BasePrice != nil && req.BasePrice.IsNegative() {
		respondFail(w, http.StatusBadRequest, "Base price must not be negative.")
		return
	}

	m, err := h.models.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	if req.Name != nil {
		m.Name = *req.Name
	}
	if req.Description != nil {
		m.Description = *req.Description
	}
	if req.CategoryID != nil {
		m.CategoryID = req.CategoryID
	}
	if req.Brand != nil {
		m.Brand = *req.Brand
	}
	if req.BaseImageURL != nil {
		m.BaseImageURL = *req.BaseImageURL
	}
	if req.BasePrice != nil {
		m.BasePrice = *req.BasePrice
	}
	if err := h.models.Update(r.Context(), m); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, "Product model updated successfully.", toProductModelResponse(m))
}

// DeleteProductModel removes a product model.
func (h *Handler) DeleteProductModel(w http.ResponseWriter, r *http.Request) {
	if err := h.models.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type productVariantResponse struct {
	VariantID     string          `json:"variant_id"`
	ModelID       string          `json:"model_id"`
	SKU           string          `json:"sku"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity"`
	ImageURL      string          `json:"image_url"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func toProductVariantResponse(v *catalog.ProductVariant) productVariantResponse {
	return productVariantResponse{
		VariantID:     v.ID,
		ModelID:       v.ModelID,
		SKU:           v.SKU,
		Price:         v.Price,
		StockQuantity: v.StockQuantity,
		ImageURL:      v.ImageURL,
		CreatedAt:     v.CreatedAt,
		UpdatedAt:     v.UpdatedAt,
	}
}

type productVariantRequest struct {
	ModelID       *string          `json:"model_id"`
	SKU           *string          `json:"sku"`
	Price         *decimal.Decimal `json:"price"`
	StockQuantity *int             `json:"stock_quantity"`
	ImageURL      *string          `json:"image_url"`
}

// CreateProductVariant registers a sellable SKU of a product model.
func (h *Handler) CreateProductVariant(w http.ResponseWriter, r *http.Request) {
	var req productVariantRequest
	if err := decode(r, &req); err != nil {
		respondFail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ModelID == nil || req.SKU == nil || *req.SKU == "" || req.Price == nil {
		respondFail(w, http.StatusBadRequest, "Model id, SKU and price are required.")
		return
	}
	if req.Price.IsNegative() {
		respondFail(w, http.StatusBadRequest, "Price must not be negative.")
		return
	}

	v := &catalog.ProductVariant{
		ID:      uuid.New().String(),
		ModelID: *req.ModelID,
		SKU:     *req.SKU,
		Price:   *req.Price,
	}
	if req.StockQuantity != nil {
		v.StockQuantity = *req.StockQuantity
	}
	if req.ImageURL != nil {
		v.ImageURL = *req.ImageURL
	}
	if err := h.variants.Create(r.Context(), v); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusCreated, "Product variant created successfully.", toProductVariantResponse(v))
}

// ListProductVariants returns all product variants.
func (h *Handler) ListProductVariants(w http.ResponseWriter, r *http.Request) {
	variants, err := h.variants.List(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	out := make([]productVariantResponse, 0, len(variants))
	for i := range variants {
		out = append(out, toProductVariantResponse(&variants[i]))
	}
	respondList(w, "Product variants retrieved successfully.", out, len(out))
}

// GetProductVariant returns a single product variant by id.
func (h *Handler) GetProductVariant(w http.ResponseWriter, r *http.Request) {
	v, err := h.variants.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, "Product variant retrieved successfully.", toProductVariantResponse(v))
}

// UpdateProductVariant applies a partial update to a product variant.
//
// Changing a variant's price never touches existing sale order items: the
// unit price is snapshotted onto each item when it is created.
func (h *Handler) UpdateProductVariant(w http.ResponseWriter, r *http.Request) {
	var req productVariantRequest
	if err := decode(r, &req); err != nil {
		respondFail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Price != nil && req.Price.IsNegative() {
		respondFail(w, http.StatusBadRequest, "Price must not be negative.")
		return
	}

	v, err := h.variants.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	if req.ModelID != nil {
		v.ModelID = *req.ModelID
	}
	if req.SKU != nil {
		v.SKU = *req.SKU
	}
	if req.Price != nil {
		v.Price = *req.Price
	}
	if req.StockQuantity != nil {
		v.StockQuantity = *req.StockQuantity
	}
	if req.ImageURL != nil {
		v.ImageURL = *req.ImageURL
	}
	if err := h.variants.Update(r.Context(), v); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, "Product variant updated successfully.", toProductVariantResponse(v))
}

// DeleteProductVariant removes a product variant.
func (h *Handler) DeleteProductVariant(w http.ResponseWriter, r *http.Request) {
	if err := h.variants.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
