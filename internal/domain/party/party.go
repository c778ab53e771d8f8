// Package party holds the people-side entities of the back office: roles,
// employees, customers, and customer addresses.
package party

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// Sentinel errors for party operations.
var (
	ErrRoleNotFound     = errors.New("role not found")
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrCustomerNotFound = errors.New("customer not found")
	ErrAddressNotFound  = errors.New("address not found")
	ErrDuplicate        = errors.New("username or email already in use")
)

// RoleName is one of the fixed system roles.
type RoleName string

const (
	RoleSuperadmin RoleName = "SUPERADMIN"
	RoleAdmin      RoleName = "ADMIN"
	RoleStaff      RoleName = "STAFF"
	RoleCustomer   RoleName = "CUSTOMER"
)

// Valid reports whether n is a known role name.
func (n RoleName) Valid() bool {
	switch n {
	case RoleSuperadmin, RoleAdmin, RoleStaff, RoleCustomer:
		return true
	}
	return false
}

// Role is an authorization role assigned to employees and customers.
type Role struct {
	ID        int64
	Name      RoleName
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Employee is a back-office user who places sale orders.
type Employee struct {
	ID           int64
	Username     string
	PasswordHash string
	Email        string
	FirstName    string
	LastName     string
	PhoneNumber  string
	HireDate     time.Time
	JobTitle     string
	RoleID       int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Customer is a registered buyer. Walk-in customers have no Customer row;
// their name and email live on the sale order itself.
type Customer struct {
	ID            string
	Username      string
	PasswordHash  string
	Email         string
	FirstName     string
	LastName      string
	PhoneNumber   string
	LoyaltyPoints int
	RoleID        int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Address is a customer's postal address.
type Address struct {
	ID            int64
	AddressLine1  string
	AddressLine2  string
	City          string
	StateProvince string
	PostalCode    string
	Country       string
	CustomerID    string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// RoleRepository defines persistence operations for roles.
type RoleRepository interface {
	Create(ctx context.Context, r *Role) error
	Get(ctx context.Context, id int64) (*Role, error)
	GetByName(ctx context.Context, name RoleName) (*Role, error)
	List(ctx context.Context) ([]Role, error)
	Delete(ctx context.Context, id int64) error
}

// EmployeeRepository defines persistence operations for employees.
type EmployeeRepository interface {
	Create(ctx context.Context, e *Employee) error
	Get(ctx context.Context, id int64) (*Employee, error)
	GetByUsername(ctx context.Context, username string) (*Employee, error)
	List(ctx context.Context) ([]Employee, error)
	Update(ctx context.Context, e *Employee) error
	Delete(ctx context.Context, id int64) error
}

// CustomerRepository defines persistence operations for customers.
type CustomerRepository interface {
	Create(ctx context.Context, c *Customer) error
	Get(ctx context.Context, id string) (*Customer, error)
	GetByUsername(ctx context.Context, username string) (*Customer, error)
	List(ctx context.Context) ([]Customer, error)
	Update(ctx context.Context, c *Customer) error
	Delete(ctx context.Context, id string) error
}

// AddressRepository defines persistence operations for customer addresses.
type AddressRepository interface {
	Create(ctx context.Context, a *Address) error
	Get(ctx context.Context, id int64) (*Address, error)
	List(ctx context.Context) ([]Address, error)
	ListByCustomer(ctx context.Context, customerID string) ([]Address, error)
	Update(ctx context.Context, a *Address) error
	Delete(ctx context.Context, id int64) error
}
