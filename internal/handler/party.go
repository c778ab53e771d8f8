package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/xenking/retail-backoffice/internal/domain/party"
)

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondFail(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

type roleResponse struct {
	RoleID    int64     `json:"role_id"`
	RoleName  string    `json:"role_name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toRoleResponse(role *party.Role) roleResponse {
	return roleResponse{
		RoleID:    role.ID,
		RoleName:  string(role.Name),
		CreatedAt: role.CreatedAt,
		UpdatedAt: role.UpdatedAt,
	}
}

// CreateRole registers a new authorization role.
func (h *Handler) CreateRole(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RoleName string `json:"role_name"`
	}
	if err := decode(r, &req); err != nil {
		respondFail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	name := party.RoleName(req.RoleName)
	if !name.Valid() {
		respondFail(w, http.StatusBadRequest, "Unknown role name.")
		return
	}

	role := &party.Role{Name: name}
	if err := h.roles.Create(r.Context(), role); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusCreated, "Role created successfully.", toRoleResponse(role))
}

// ListRoles returns all roles.
func (h *Handler) ListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.roles.List(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	out := make([]roleResponse, 0, len(roles))
	for i := range roles {
		out = append(out, toRoleResponse(&roles[i]))
	}
	respondList(w, "Roles retrieved successfully.", out, len(out))
}

// GetRole returns a single role by id.
func (h *Handler) GetRole(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	role, err := h.roles.Get(r.Context(), id)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, "Role retrieved successfully.", toRoleResponse(role))
}

// DeleteRole removes a role.
func (h *Handler) DeleteRole(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := h.roles.Delete(r.Context(), id); err != nil {
		respondDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type employeeResponse struct {
	EmployeeID  int64     `json:"employee_id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	PhoneNumber string    `json:"phone_number"`
	HireDate    time.Time `json:"hire_date"`
	JobTitle    string    `json:"job_title"`
	RoleID      int64     `json:"role_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toEmployeeResponse(e *party.Employee) employeeResponse {
	return employeeResponse{
		EmployeeID:  e.ID,
		Username:    e.Username,
		Email:       e.Email,
		FirstName:   e.FirstName,
		LastName:    e.LastName,
		PhoneNumber: e.PhoneNumber,
		HireDate:    e.HireDate,
		JobTitle:    e.JobTitle,
		RoleID:      e.RoleID,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

// ListEmployees returns all employees. Password hashes never leave the server.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.employees.List(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	out := make([]employeeResponse, 0, len(employees))
	for i := range employees {
		out = append(out, toEmployeeResponse(&employees[i]))
	}
	respondList(w, "Employees retrieved successfully.", out, len(out))
}

// GetEmployee returns a single employee by id.
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	e, err := h.employees.Get(r.Context(), id)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, "Employee retrieved successfully.", toEmployeeResponse(e))
}

type updateEmployeeRequest struct {
	Email       *string `json:"email"`
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	PhoneNumber *string `json:"phone_number"`
	JobTitle    *string `json:"job_title"`
	RoleID      *int64  `json:"role_id"`
	Password    *string `json:"password"`
}

// UpdateEmployee applies a partial update to an employee profile.
func (h *Handler) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var req updateEmployeeRequest
	if err := decode(r, &req); err != nil {
		respondFail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	e, err := h.employees.Get(r.Context(), id)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	if req.Email != nil {
		e.Email = *req.Email
	}
	if req.FirstName != nil {
		e.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		e.LastName = *req.LastName
	}
	if req.PhoneNumber != nil {
		e.PhoneNumber = *req.PhoneNumber
	}
	if req.JobTitle != nil {
		e.JobTitle = *req.JobTitle
	}
	if req.RoleID != nil {
		if _, err := h.roles.Get(r.Context(), *req.RoleID); err != nil {
			respondDomainError(w, r, err)
			return
		}
		e.RoleID = *req.RoleID
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			respondDomainError(w, r, err)
			return
		}
		e.PasswordHash = string(hash)
	}

	if err := h.employees.Update(r.Context(), e); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, "Employee updated successfully.", toEmployeeResponse(e))
}

// DeleteEmployee removes an employee.
func (h *Handler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := h.employees.Delete(r.Context(), id); err != nil {
		respondDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type customerResponse struct {
	CustomerID    string    `json:"customer_id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	PhoneNumber   string    `json:"phone_number"`
	LoyaltyPoints int       `json:"loyalty_points"`
	RoleID        int64     `json:"role_id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func toCustomerResponse(c *party.Customer) customerResponse {
	return customerResponse{
		CustomerID:    c.ID,
		Username:      c.Username,
		Email:         c.Email,
		FirstName:     c.FirstName,
		LastName:      c.LastName,
		PhoneNumber:   c.PhoneNumber,
		LoyaltyPoints: c.LoyaltyPoints,
		RoleID:        c.RoleID,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

// ListCustomers returns all registered customers.
func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.customers.List(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	out := make([]customerResponse, 0, len(customers))
	for i := range customers {
		out = append(out, toCustomerResponse(&customers[i]))
	}
	respondList(w, "Customers retrieved successfully.", out, len(out))
}

// GetCustomer returns a single customer by id.
func (h *Handler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	c, err := h.customers.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, "Customer retrieved successfully.", toCustomerResponse(c))
}

type updateCustomerRequest struct {
	Email         *string `json:"email"`
	FirstName     *string `json:"first_name"`
	LastName      *string `json:"last_name"`
	PhoneNumber   *string `json:"phone_number"`
	LoyaltyPoints *int    `json:"loyalty_points"`
	Password      *string `json:"password"`
}

// UpdateCustomer applies a partial update to a customer profile.
func (h *Handler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	var req updateCustomerRequest
	if err := decode(r, &req); err != nil {
		respondFail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.customers.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	if req.Email != nil {
		c.Email = *req.Email
	}
	if req.FirstName != nil {
		c.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		c.LastName = *req.LastName
	}
	if req.PhoneNumber != nil {
		c.PhoneNumber = *req.PhoneNumber
	}
	if req.LoyaltyPoints != nil {
		c.LoyaltyPoints = *req.LoyaltyPoints
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			respondDomainError(w, r, err)
			return
		}
		c.PasswordHash = string(hash)
	}

	if err := h.customers.Update(r.Context(), c); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, "Customer updated successfully.", toCustomerResponse(c))
}

// DeleteCustomer removes a customer account.
func (h *Handler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	if err := h.customers.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type addressResponse struct {
	AddressID     int64     `json:"address_id"`
	AddressLine1  string    `json:"address_line1"`
	AddressLine2  string    `json:"address_line2"`
	City          string    `json:"city"`
	StateProvince string    `json:"state_province"`
	PostalCode    string    `json:"postal_code"`
	Country       string    `json:"country"`
	CustomerID    string    `json:"customer_id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func toAddressResponse(a *party.Address) addressResponse {
	return addressResponse{
		AddressID:     a.ID,
		AddressLine1:  a.AddressLine1,
		AddressLine2:  a.AddressLine2,
		City:          a.City,
		StateProvince: a.StateProvince,
		PostalCode:    a.PostalCode,
		Country:       a.Country,
		CustomerID:    a.CustomerID,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

type addressRequest struct {
	AddressLine1  *string `json:"address_line1"`
	AddressLine2  *string `json:"address_line2"`
	City          *string `json:"city"`
	StateProvince *string `json:"state_province"`
	PostalCode    *string `json:"postal_code"`
	Country       *string `json:"country"`
	CustomerID    *string `json:"customer_id"`
}

// CreateAddress registers a postal address for a customer.
func (h *Handler) CreateAddress(w http.ResponseWriter, r *http.Request) {
	var req addressRequest
	if err := decode(r, &req); err != nil {
		respondFail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.AddressLine1 == nil || req.City == nil || req.PostalCode == nil ||
		req.Country == nil || req.CustomerID == nil {
		respondFail(w, http.StatusBadRequest, "Missing required fields.")
		return
	}

	a := &party.Address{
		AddressLine1: *req.AddressLine1,
		City:         *req.City,
		PostalCode:   *req.PostalCode,
		Country:      *req.Country,
		CustomerID:   *req.CustomerID,
	}
	if req.AddressLine2 != nil {
		a.AddressLine2 = *req.AddressLine2
	}
	if req.StateProvince != nil {
		a.StateProvince = *req.StateProvince
	}

	if err := h.addresses.Create(r.Context(), a); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusCreated, "Address created successfully.", toAddressResponse(a))
}

// ListAddresses returns all addresses, optionally filtered by customer.
func (h *Handler) ListAddresses(w http.ResponseWriter, r *http.Request) {
	var (
		addresses []party.Address
		err       error
	)
	if customerID := r.URL.Query().Get("customer_id"); customerID != "" {
		addresses, err = h.addresses.ListByCustomer(r.Context(), customerID)
	} else {
		addresses, err = h.addresses.List(r.Context())
	}
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	out := make([]addressResponse, 0, len(addresses))
	for i := range addresses {
		out = append(out, toAddressResponse(&addresses[i]))
	}
	respondList(w, "Addresses retrieved successfully.", out, len(out))
}

// GetAddress returns a single address by id.
func (h *Handler) GetAddress(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	a, err := h.addresses.Get(r.Context(), id)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, "Address retrieved successfully.", toAddressResponse(a))
}

// UpdateAddress applies a partial update to an address.
func (h *Handler) UpdateAddress(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var req addressRequest
	if err := decode(r, &req); err != nil {
		respondFail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	a, err := h.addresses.Get(r.Context(), id)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	if req.AddressLine1 != nil {
		a.AddressLine1 = *req.AddressLine1
	}
	if req.AddressLine2 != nil {
		a.AddressLine2 = *req.AddressLine2
	}
	if req.City != nil {
		a.City = *req.City
	}
	if req.StateProvince != nil {
		a.StateProvince = *req.StateProvince
	}
	if req.PostalCode != nil {
		a.PostalCode = *req.PostalCode
	}
	if req.Country != nil {
		a.Country = *req.Country
	}
	if req.CustomerID != nil {
		a.CustomerID = *req.CustomerID
	}

	if err := h.addresses.Update(r.Context(), a); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, "Address updated successfully.", toAddressResponse(a))
}

// DeleteAddress removes an address.
func (h *Handler) DeleteAddress(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := h.addresses.Delete(r.Context(), id); err != nil {
		respondDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
