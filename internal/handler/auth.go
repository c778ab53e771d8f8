package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/xenking/retail-backoffice/internal/domain/auth"
	"github.com/xenking/retail-backoffice/internal/domain/party"
)

type claimsKey struct{}

// ClaimsFromContext extracts the verified token claims from the context.
func ClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(*auth.Claims)
	return c, ok
}

type registerRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	PhoneNumber string `json:"phone_number"`
	JobTitle    string `json:"job_title"` // employees only
	RoleID      *int64 `json:"role_id"`   // employees only
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type principalResponse struct {
	ID       any    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// RegisterCustomer creates a customer account with the CUSTOMER role.
func (h *Handler) RegisterCustomer(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decode(r, &req); err != nil {
		respondFail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" || req.Email == "" || req.PhoneNumber == "" {
		respondFail(w, http.StatusBadRequest, "Missing required fields.")
		return
	}

	role, err := h.roles.GetByName(r.Context(), party.RoleCustomer)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondDomainError(w, r, errors.Wrap(err, "hash password"))
		return
	}

	c := &party.Customer{
		ID:           uuid.New().String(),
		Username:     req.Username,
		PasswordHash: string(hash),
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PhoneNumber:  req.PhoneNumber,
		RoleID:       role.ID,
	}
	if err := h.customers.Create(r.Context(), c); err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondSuccess(w, http.StatusCreated, "Customer registered successfully.", principalResponse{
		ID: c.ID, Username: c.Username, Email: c.Email, Role: string(role.Name),
	})
}

// RegisterEmployee creates an employee account. Restricted to admins by the
// route configuration.
func (h *Handler) RegisterEmployee(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decode(r, &req); err != nil {
		respondFail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" || req.Email == "" ||
		req.PhoneNumber == "" || req.JobTitle == "" || req.RoleID == nil {
		respondFail(w, http.StatusBadRequest, "Missing required fields.")
		return
	}

	role, err := h.roles.Get(r.Context(), *req.RoleID)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondDomainError(w, r, errors.Wrap(err, "hash password"))
		return
	}

	e := &party.Employee{
		Username:     req.Username,
		PasswordHash: string(hash),
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PhoneNumber:  req.PhoneNumber,
		HireDate:     time.Now().UTC(),
		JobTitle:     req.JobTitle,
		RoleID:       role.ID,
	}
	if err := h.employees.Create(r.Context(), e); err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondSuccess(w, http.StatusCreated, "Employee registered successfully.", principalResponse{
		ID: e.ID, Username: e.Username, Email: e.Email, Role: string(role.Name),
	})
}

// LoginEmployee authenticates an employee and issues an access token.
func (h *Handler) LoginEmployee(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(r, &req); err != nil {
		respondFail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		respondFail(w, http.StatusBadRequest, "Username and password are required.")
		return
	}

	e, err := h.employees.GetByUsername(r.Context(), req.Username)
	if err != nil {
		if errors.Is(err, party.ErrEmployeeNotFound) {
			respondFail(w, http.StatusUnauthorized, "Invalid credentials.")
			return
		}
		respondDomainError(w, r, err)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(e.PasswordHash), []byte(req.Password)) != nil {
		respondFail(w, http.StatusUnauthorized, "Invalid credentials.")
		return
	}

	role, err := h.roles.Get(r.Context(), e.RoleID)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	token, err := h.tokens.Issue(strconv.FormatInt(e.ID, 10), e.Username, string(role.Name), auth.KindEmployee)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, "Login successful.", map[string]any{
		"token": token,
		"user":  principalResponse{ID: e.ID, Username: e.Username, Email: e.Email, Role: string(role.Name)},
	})
}

// LoginCustomer authenticates a customer and issues an access token.
func (h *Handler) LoginCustomer(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(r, &req); err != nil {
		respondFail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		respondFail(w, http.StatusBadRequest, "Username and password are required.")
		return
	}

	c, err := h.customers.GetByUsername(r.Context(), req.Username)
	if err != nil {
		if errors.Is(err, party.ErrCustomerNotFound) {
			respondFail(w, http.StatusUnauthorized, "Invalid credentials.")
			return
		}
		respondDomainError(w, r, err)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(req.Password)) != nil {
		respondFail(w, http.StatusUnauthorized, "Invalid credentials.")
		return
	}

	role, err := h.roles.Get(r.Context(), c.RoleID)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	token, err := h.tokens.Issue(c.ID, c.Username, string(role.Name), auth.KindCustomer)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, "Login successful.", map[string]any{
		"token": token,
		"user":  principalResponse{ID: c.ID, Username: c.Username, Email: c.Email, Role: string(role.Name)},
	})
}

// Authenticate verifies the Bearer token and stores its claims in the
// request context.
func (h *Handler) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			respondFail(w, http.StatusUnauthorized, "Missing or malformed Authorization header.")
			return
		}

		claims, err := h.tokens.Verify(token)
		if err != nil {
			respondFail(w, http.StatusUnauthorized, "Invalid or expired token.")
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole rejects requests whose token role is not in the allowed set.
func RequireRole(roles ...party.RoleName) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		allowed[string(role)] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				respondFail(w, http.StatusUnauthorized, "Authentication required.")
				return
			}
			if _, ok := allowed[claims.Role]; !ok {
				respondFail(w, http.StatusForbidden, "Insufficient permissions.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
