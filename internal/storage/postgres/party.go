package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/retail-backoffice/internal/domain/order"
	"github.com/xenking/retail-backoffice/internal/domain/party"
)

var (
	_ party.RoleRepository     = (*RoleRepository)(nil)
	_ party.EmployeeRepository = (*EmployeeRepository)(nil)
	_ party.CustomerRepository = (*CustomerRepository)(nil)
	_ party.AddressRepository  = (*AddressRepository)(nil)
	_ order.EmployeeDirectory  = (*EmployeeRepository)(nil)
	_ order.CustomerDirectory  = (*CustomerRepository)(nil)
)

// RoleRepository implements party.RoleRepository.
type RoleRepository struct {
	pool *pgxpool.Pool
}

// NewRoleRepository returns a RoleRepository that uses the given pool.
func NewRoleRepository(pool *pgxpool.Pool) *RoleRepository {
	return &RoleRepository{pool: pool}
}

func (r *RoleRepository) Create(ctx context.Context, role *party.Role) error {
	err := queryEngine(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO roles (role_name) VALUES ($1)
		RETURNING role_id, created_at, updated_at`,
		role.Name,
	).Scan(&role.ID, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return party.ErrDuplicate
		}
		return fmt.Errorf("creating role: %w", err)
	}
	return nil
}

func (r *RoleRepository) Get(ctx context.Context, id int64) (*party.Role, error) {
	var role party.Role
	err := queryEngine(ctx, r.pool).QueryRow(ctx, `
		SELECT role_id, role_name, created_at, updated_at FROM roles WHERE role_id = $1`, id,
	).Scan(&role.ID, &role.Name, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, party.ErrRoleNotFound
		}
		return nil, fmt.Errorf("getting role %d: %w", id, err)
	}
	return &role, nil
}

func (r *RoleRepository) GetByName(ctx context.Context, name party.RoleName) (*party.Role, error) {
	var role party.Role
	err := queryEngine(ctx, r.pool).QueryRow(ctx, `
		SELECT role_id, role_name, created_at, updated_at FROM roles WHERE role_name = $1`, name,
	).Scan(&role.ID, &role.Name, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, party.ErrRoleNotFound
		}
		return nil, fmt.Errorf("getting role %q: %w", name, err)
	}
	return &role, nil
}

func (r *RoleRepository) List(ctx context.Context) ([]party.Role, error) {
	rows, err := queryEngine(ctx, r.pool).Query(ctx, `
		SELECT role_id, role_name, created_at, updated_at FROM roles ORDER BY role_id`)
	if err != nil {
		return nil, fmt.Errorf("listing roles: %w", err)
	}
	defer rows.Close()

	var out []party.Role
	for rows.Next() {
		var role party.Role
		if err := rows.Scan(&role.ID, &role.Name, &role.CreatedAt, &role.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning role: %w", err)
		}
		out = append(out, role)
	}
	return out, rows.Err()
}

func (r *RoleRepository) Delete(ctx context.Context, id int64) error {
	tag, err := queryEngine(ctx, r.pool).Exec(ctx, `DELETE FROM roles WHERE role_id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting role %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return party.ErrRoleNotFound
	}
	return nil
}

const employeeColumns = `employee_id, username, password_hash, email,
	COALESCE(first_name, ''), COALESCE(last_name, ''), phone_number,
	hire_date, job_title, role_id, created_at, updated_at`

// EmployeeRepository implements party.EmployeeRepository and doubles as the
// order service's employee reference checker.
type EmployeeRepository struct {
	pool *pgxpool.Pool
}

// NewEmployeeRepository returns an EmployeeRepository that uses the given pool.
func NewEmployeeRepository(pool *pgxpool.Pool) *EmployeeRepository {
	return &EmployeeRepository{pool: pool}
}

func (r *EmployeeRepository) Create(ctx context.Context, e *party.Employee) error {
	err := queryEngine(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO employees (username, password_hash, email, first_name, last_name,
			phone_number, hire_date, job_title, role_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING employee_id, created_at, updated_at`,
		e.Username, e.PasswordHash, e.Email, e.FirstName, e.LastName,
		e.PhoneNumber, e.HireDate, e.JobTitle, e.RoleID,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return party.ErrDuplicate
		case isForeignKeyViolation(err):
			return party.ErrRoleNotFound
		}
		return fmt.Errorf("creating employee: %w", err)
	}
	return nil
}

func (r *EmployeeRepository) Get(ctx context.Context, id int64) (*party.Employee, error) {
	row := queryEngine(ctx, r.pool).QueryRow(ctx,
		`SELECT `+employeeColumns+` FROM employees WHERE employee_id = $1`, id)

	e, err := scanEmployee(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, party.ErrEmployeeNotFound
		}
		return nil, fmt.Errorf("getting employee %d: %w", id, err)
	}
	return e, nil
}

func (r *EmployeeRepository) GetByUsername(ctx context.Context, username string) (*party.Employee, error) {
	row := queryEngine(ctx, r.pool).QueryRow(ctx,
		`SELECT `+employeeColumns+` FROM employees WHERE username = $1`, username)

	e, err := scanEmployee(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, party.ErrEmployeeNotFound
		}
		return nil, fmt.Errorf("getting employee %q: %w", username, err)
	}
	return e, nil
}

func (r *EmployeeRepository) List(ctx context.Context) ([]party.Employee, error) {
	rows, err := queryEngine(ctx, r.pool).Query(ctx,
		`SELECT `+employeeColumns+` FROM employees ORDER BY employee_id`)
	if err != nil {
		return nil, fmt.Errorf("listing employees: %w", err)
	}
	defer rows.Close()

	var out []party.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning employee: %w", err)
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

func (r *EmployeeRepository) Update(ctx context.Context, e *party.Employee) error {
	tag, err := queryEngine(ctx, r.pool).Exec(ctx, `
		UPDATE employees SET
			username = $2, password_hash = $3, email = $4, first_name = $5,
			last_name = $6, phone_number = $7, hire_date = $8, job_title = $9,
			role_id = $10, updated_at = now()
		WHERE employee_id = $1`,
		e.ID, e.Username, e.PasswordHash, e.Email, e.FirstName,
		e.LastName, e.PhoneNumber, e.HireDate, e.JobTitle, e.RoleID)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return party.ErrDuplicate
		case isForeignKeyViolation(err):
			return party.ErrRoleNotFound
		}
		return fmt.Errorf("updating employee %d: %w", e.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return party.ErrEmployeeNotFound
	}
	return nil
}

func (r *EmployeeRepository) Delete(ctx context.Context, id int64) error {
	tag, err := queryEngine(ctx, r.pool).Exec(ctx,
		`DELETE FROM employees WHERE employee_id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting employee %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return party.ErrEmployeeNotFound
	}
	return nil
}

// EmployeeExists reports whether an employee with the given ID exists.
func (r *EmployeeRepository) EmployeeExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := queryEngine(ctx, r.pool).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM employees WHERE employee_id = $1)`, id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking employee %d: %w", id, err)
	}
	return exists, nil
}

func scanEmployee(row pgx.Row) (*party.Employee, error) {
	var e party.Employee
	err := row.Scan(
		&e.ID, &e.Username, &e.PasswordHash, &e.Email,
		&e.FirstName, &e.LastName, &e.PhoneNumber,
		&e.HireDate, &e.JobTitle, &e.RoleID, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

const customerColumns = `customer_id, username, password_hash, email,
	COALESCE(first_name, ''), COALESCE(last_name, ''), phone_number,
	loyalty_points, role_id, created_at, updated_at`

// CustomerRepository implements party.CustomerRepository and doubles as the
// order service's customer reference checker.
type CustomerRepository struct {
	pool *pgxpool.Pool
}

// NewCustomerRepository returns a CustomerRepository that uses the given pool.
func NewCustomerRepository(pool *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{pool: pool}
}

func (r *CustomerRepository) Create(ctx context.Context, c *party.Customer) error {
	err := queryEngine(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO customers (customer_id, username, password_hash, email,
			first_name, last_name, phone_number, loyalty_points, role_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`,
		c.ID, c.Username, c.PasswordHash, c.Email,
		c.FirstName, c.LastName, c.PhoneNumber, c.LoyaltyPoints, c.RoleID,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return party.ErrDuplicate
		case isForeignKeyViolation(err):
			return party.ErrRoleNotFound
		}
		return fmt.Errorf("creating customer: %w", err)
	}
	return nil
}

func (r *CustomerRepository) Get(ctx context.Context, id string) (*party.Customer, error) {
	row := queryEngine(ctx, r.pool).QueryRow(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE customer_id = $1`, id)

	c, err := scanCustomer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, party.ErrCustomerNotFound
		}
		return nil, fmt.Errorf("getting customer %q: %w", id, err)
	}
	return c, nil
}

func (r *CustomerRepository) GetByUsername(ctx context.Context, username string) (*party.Customer, error) {
	row := queryEngine(ctx, r.pool).QueryRow(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE username = $1`, username)

	c, err := scanCustomer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, party.ErrCustomerNotFound
		}
		return nil, fmt.Errorf("getting customer %q: %w", username, err)
	}
	return c, nil
}

func (r *CustomerRepository) List(ctx context.Context) ([]party.Customer, error) {
	rows, err := queryEngine(ctx, r.pool).Query(ctx,
		`SELECT `+customerColumns+` FROM customers ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("listing customers: %w", err)
	}
	defer rows.Close()

	var out []party.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning customer: %w", err)
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (r *CustomerRepository) Update(ctx context.Context, c *party.Customer) error {
	tag, err := queryEngine(ctx, r.pool).Exec(ctx, `
		UPDATE customers SET
			username = $2, password_hash = $3, email = $4, first_name = $5,
			last_name = $6, phone_number = $7, loyalty_points = $8,
			role_id = $9, updated_at = now()
		WHERE customer_id = $1`,
		c.ID, c.Username, c.PasswordHash, c.Email, c.FirstName,
		c.LastName, c.PhoneNumber, c.LoyaltyPoints, c.RoleID)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return party.ErrDuplicate
		case isForeignKeyViolation(err):
			return party.ErrRoleNotFound
		}
		return fmt.Errorf("updating customer %q: %w", c.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return party.ErrCustomerNotFound
	}
	return nil
}

func (r *CustomerRepository) Delete(ctx context.Context, id string) error {
	tag, err := queryEngine(ctx, r.pool).Exec(ctx,
		`DELETE FROM customers WHERE customer_id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting customer %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return party.ErrCustomerNotFound
	}
	return nil
}

// CustomerExists reports whether a customer with the given ID exists.
func (r *CustomerRepository) CustomerExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := queryEngine(ctx, r.pool).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM customers WHERE customer_id = $1)`, id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking customer %q: %w", id, err)
	}
	return exists, nil
}

func scanCustomer(row pgx.Row) (*party.Customer, error) {
	var c party.Customer
	err := row.Scan(
		&c.ID, &c.Username, &c.PasswordHash, &c.Email,
		&c.FirstName, &c.LastName, &c.PhoneNumber,
		&c.LoyaltyPoints, &c.RoleID, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

const addressColumns = `address_id, address_line_1, COALESCE(address_line_2, ''),
	city, state_province, postal_code, country, customer_id, created_at, updated_at`

// AddressRepository implements party.AddressRepository.
type AddressRepository struct {
	pool *pgxpool.Pool
}

// NewAddressRepository returns an AddressRepository that uses the given pool.
func NewAddressRepository(pool *pgxpool.Pool) *AddressRepository {
	return &AddressRepository{pool: pool}
}

func (r *AddressRepository) Create(ctx context.Context, a *party.Address) error {
	err := queryEngine(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO addresses (address_line_1, address_line_2, city, state_province,
			postal_code, country, customer_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING address_id, created_at, updated_at`,
		a.AddressLine1, a.AddressLine2, a.City, a.StateProvince,
		a.PostalCode, a.Country, a.CustomerID,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return party.ErrCustomerNotFound
		}
		return fmt.Errorf("creating address: %w", err)
	}
	return nil
}

func (r *AddressRepository) Get(ctx context.Context, id int64) (*party.Address, error) {
	row := queryEngine(ctx, r.pool).QueryRow(ctx,
		`SELECT `+addressColumns+` FROM addresses WHERE address_id = $1`, id)

	a, err := scanAddress(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, party.ErrAddressNotFound
		}
		return nil, fmt.Errorf("getting address %d: %w", id, err)
	}
	return a, nil
}

func (r *AddressRepository) List(ctx context.Context) ([]party.Address, error) {
	rows, err := queryEngine(ctx, r.pool).Query(ctx,
		`SELECT `+addressColumns+` FROM addresses ORDER BY address_id`)
	if err != nil {
		return nil, fmt.Errorf("listing addresses: %w", err)
	}
	defer rows.Close()

	return collectAddresses(rows)
}

func (r *AddressRepository) ListByCustomer(ctx context.Context, customerID string) ([]party.Address, error) {
	rows, err := queryEngine(ctx, r.pool).Query(ctx,
		`SELECT `+addressColumns+` FROM addresses WHERE customer_id = $1 ORDER BY address_id`,
		customerID)
	if err != nil {
		return nil, fmt.Errorf("listing addresses of customer %q: %w", customerID, err)
	}
	defer rows.Close()

	return collectAddresses(rows)
}

func (r *AddressRepository) Update(ctx context.Context, a *party.Address) error {
	tag, err := queryEngine(ctx, r.pool).Exec(ctx, `
		UPDATE addresses SET
			address_line_1 = $2, address_line_2 = $3, city = $4, state_province = $5,
			postal_code = $6, country = $7, customer_id = $8, updated_at = now()
		WHERE address_id = $1`,
		a.ID, a.AddressLine1, a.AddressLine2, a.City, a.StateProvince,
		a.PostalCode, a.Country, a.CustomerID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return party.ErrCustomerNotFound
		}
		return fmt.Errorf("updating address %d: %w", a.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return party.ErrAddressNotFound
	}
	return nil
}

func (r *AddressRepository) Delete(ctx context.Context, id int64) error {
	tag, err := queryEngine(ctx, r.pool).Exec(ctx,
		`DELETE FROM addresses WHERE address_id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting address %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return party.ErrAddressNotFound
	}
	return nil
}

func scanAddress(row pgx.Row) (*party.Address, error) {
	var a party.Address
	err := row.Scan(
		&a.ID, &a.AddressLine1, &a.AddressLine2, &a.City, &a.StateProvince,
		&a.PostalCode, &a.Country, &a.CustomerID, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func collectAddresses(rows pgx.Rows) ([]party.Address, error) {
	var out []party.Address
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning address: %w", err)
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}
