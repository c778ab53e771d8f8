package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/xenking/retail-backoffice/internal/domain/party"
)

// Routes builds the API router. All routes except registration and login
// require a valid token; write access to back-office resources is limited
// to staff roles.
func (h *Handler) Routes() http.Handler {
	staff := RequireRole(party.RoleSuperadmin, party.RoleAdmin, party.RoleStaff)
	admins := RequireRole(party.RoleSuperadmin, party.RoleAdmin)
	superadmin := RequireRole(party.RoleSuperadmin)

	r := chi.NewRouter()

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.RegisterCustomer)
		r.Post("/login", h.LoginCustomer)
		r.Post("/employees/login", h.LoginEmployee)
		r.With(h.Authenticate, admins).Post("/employees/register", h.RegisterEmployee)
	})

	r.Group(func(r chi.Router) {
		r.Use(h.Authenticate)

		r.Route("/roles", func(r chi.Router) {
			r.Use(superadmin)
			r.Post("/", h.CreateRole)
			r.Get("/", h.ListRoles)
			r.Get("/{id}", h.GetRole)
			r.Delete("/{id}", h.DeleteRole)
		})

		r.Route("/employees", func(r chi.Router) {
			r.Use(admins)
			r.Get("/", h.ListEmployees)
			r.Get("/{id}", h.GetEmployee)
			r.Patch("/{id}", h.UpdateEmployee)
			r.Delete("/{id}", h.DeleteEmployee)
		})

		r.Route("/customers", func(r chi.Router) {
			r.Use(staff)
			r.Get("/", h.ListCustomers)
			r.Get("/{id}", h.GetCustomer)
			r.Patch("/{id}", h.UpdateCustomer)
			r.Delete("/{id}", h.DeleteCustomer)
		})

		r.Route("/addresses", func(r chi.Router) {
			r.Use(staff)
			r.Post("/", h.CreateAddress)
			r.Get("/", h.ListAddresses)
			r.Get("/{id}", h.GetAddress)
			r.Patch("/{id}", h.UpdateAddress)
			r.Delete("/{id}", h.DeleteAddress)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", h.ListCategories)
			r.Get("/{id}", h.GetCategory)
			r.With(staff).Post("/", h.CreateCategory)
			r.With(staff).Patch("/{id}", h.UpdateCategory)
			r.With(staff).Delete("/{id}", h.DeleteCategory)
		})

		r.Route("/attributes", func(r chi.Router) {
			r.Get("/", h.ListAttributes)
			r.Get("/{id}", h.GetAttribute)
			r.With(staff).Post("/", h.CreateAttribute)
			r.With(staff).Patch("/{id}", h.UpdateAttribute)
			r.With(staff).Delete("/{id}", h.DeleteAttribute)
		})

		r.Route("/attributeValues", func(r chi.Router) {
			r.Get("/", h.ListAttributeValues)
			r.Get("/{id}", h.GetAttributeValue)
			r.With(staff).Post("/", h.CreateAttributeValue)
			r.With(staff).Patch("/{id}", h.UpdateAttributeValue)
			r.With(staff).Delete("/{id}", h.DeleteAttributeValue)
		})

		r.Route("/productModels", func(r chi.Router) {
			r.Get("/", h.ListProductModels)
			r.Get("/{id}", h.GetProductModel)
			r.With(staff).Post("/", h.CreateProductModel)
			r.With(staff).Patch("/{id}", h.UpdateProductModel)
			r.With(staff).Delete("/{id}", h.DeleteProductModel)
		})

		r.Route("/productVariants", func(r chi.Router) {
			r.Get("/", h.ListProductVariants)
			r.Get("/{id}", h.GetProductVariant)
			r.With(staff).Post("/", h.CreateProductVariant)
			r.With(staff).Patch("/{id}", h.UpdateProductVariant)
			r.With(staff).Delete("/{id}", h.DeleteProductVariant)
		})

		r.Route("/saleOrders", func(r chi.Router) {
			r.Use(staff)
			r.Post("/", h.CreateSaleOrder)
			r.Get("/", h.ListSaleOrders)
			r.Get("/{id}", h.GetSaleOrder)
			r.Patch("/{id}", h.UpdateSaleOrder)
			r.Delete("/{id}", h.DeleteSaleOrder)
		})

		r.Route("/saleOrderItems", func(r chi.Router) {
			r.Use(staff)
			r.Post("/", h.CreateSaleOrderItem)
			r.Get("/", h.ListSaleOrderItems)
			r.Get("/{id}", h.GetSaleOrderItem)
			r.Patch("/{id}", h.UpdateSaleOrderItem)
			r.Delete("/{id}", h.DeleteSaleOrderItem)
		})
	})

	return r
}
