// Package handler exposes the back-office API over HTTP. Handlers decode the
// request, delegate to the domain layer, and wrap results in the response
// envelope {status, message, data, meta}.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/retail-backoffice/internal/domain/auth"
	"github.com/xenking/retail-backoffice/internal/domain/catalog"
	"github.com/xenking/retail-backoffice/internal/domain/order"
	"github.com/xenking/retail-backoffice/internal/domain/party"
)

// Handler carries the domain dependencies of all HTTP endpoints.
type Handler struct {
	orders *order.Service
	tokens *auth.Issuer

	roles           party.RoleRepository
	employees       party.EmployeeRepository
	customers       party.CustomerRepository
	addresses       party.AddressRepository
	categories      catalog.CategoryRepository
	attributes      catalog.AttributeRepository
	attributeValues catalog.AttributeValueRepository
	models          catalog.ModelRepository
	variants        catalog.VariantRepository
}

// New constructs a Handler with the required domain dependencies.
func New(
	orders *order.Service,
	tokens *auth.Issuer,
	roles party.RoleRepository,
	employees party.EmployeeRepository,
	customers party.CustomerRepository,
	addresses party.AddressRepository,
	categories catalog.CategoryRepository,
	attributes catalog.AttributeRepository,
	attributeValues catalog.AttributeValueRepository,
	models catalog.ModelRepository,
	variants catalog.VariantRepository,
) *Handler {
	return &Handler{
		orders:          orders,
		tokens:          tokens,
		roles:           roles,
		employees:       employees,
		customers:       customers,
		addresses:       addresses,
		categories:      categories,
		attributes:      attributes,
		attributeValues: attributeValues,
		models:          models,
		variants:        variants,
	}
}

// envelope is the uniform response body of every endpoint.
type envelope struct {
	Status  string         `json:"status"`
	Message string         `json:"message"`
	Data    any            `json:"data"`
	Meta    map[string]any `json:"meta"`
}

func writeJSON(w http.ResponseWriter, code int, env envelope) {
	if env.Meta == nil {
		env.Meta = map[string]any{}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(env)
}

func respondSuccess(w http.ResponseWriter, code int, message string, data any) {
	writeJSON(w, code, envelope{Status: "success", Message: message, Data: data})
}

func respondList(w http.ResponseWriter, message string, data any, total int) {
	writeJSON(w, http.StatusOK, envelope{
		Status:  "success",
		Message: message,
		Data:    data,
		Meta:    map[string]any{"total": total},
	})
}

func respondFail(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, envelope{Status: "fail", Message: message})
}

func decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errors.Wrap(err, "decode request body")
	}
	return nil
}

// respondDomainError maps domain errors to envelope responses. Unclassified
// errors are logged and reported as an opaque 500: by the time a store or
// recalculation failure reaches here, the transaction has already rolled
// back, so there is no partial state to explain to the client.
func respondDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		iqErr *order.InvalidQuantityError
		upErr *order.InvalidUnitPriceError
		stErr *order.InvalidStatusError
	)
	switch {
	case errors.As(err, &iqErr), errors.As(err, &upErr), errors.As(err, &stErr),
		errors.Is(err, order.ErrNoFields):
		respondFail(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, order.ErrNotFound),
		errors.Is(err, order.ErrItemNotFound),
		errors.Is(err, order.ErrEmployeeNotFound),
		errors.Is(err, order.ErrCustomerNotFound),
		errors.Is(err, order.ErrVariantNotFound),
		errors.Is(err, party.ErrRoleNotFound),
		errors.Is(err, party.ErrEmployeeNotFound),
		errors.Is(err, party.ErrCustomerNotFound),
		errors.Is(err, party.ErrAddressNotFound),
		errors.Is(err, catalog.ErrCategoryNotFound),
		errors.Is(err, catalog.ErrAttributeNotFound),
		errors.Is(err, catalog.ErrAttributeValueNotFound),
		errors.Is(err, catalog.ErrModelNotFound),
		errors.Is(err, catalog.ErrVariantNotFound):
		respondFail(w, http.StatusNotFound, err.Error())
	case errors.Is(err, party.ErrDuplicate), errors.Is(err, catalog.ErrDuplicate):
		respondFail(w, http.StatusConflict, err.Error())
	default:
		zctx.From(r.Context()).Error("Request failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, envelope{
			Status:  "error",
			Message: "internal server error",
		})
	}
}
