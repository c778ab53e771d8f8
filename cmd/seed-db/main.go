// Command seed-db creates the fixed system roles, a superadmin account, and a
// small demo catalog so a fresh deployment is usable immediately.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/xenking/retail-backoffice/internal/domain/catalog"
	"github.com/xenking/retail-backoffice/internal/domain/party"
	"github.com/xenking/retail-backoffice/internal/storage/postgres"
)

func main() {
	var (
		databaseURL   string
		adminPassword string
		withCatalog   bool
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&adminPassword, "admin-password", "", "superadmin password (or BACKOFFICE_SEED_ADMIN_PASSWORD env)")
	flag.BoolVar(&withCatalog, "with-catalog", true, "seed a small demo catalog")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if adminPassword == "" {
		adminPassword = os.Getenv("BACKOFFICE_SEED_ADMIN_PASSWORD")
	}
	if adminPassword == "" {
		slog.Error("admin password is required: set --admin-password or BACKOFFICE_SEED_ADMIN_PASSWORD")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, adminPassword, withCatalog); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, adminPassword string, withCatalog bool) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	roles := postgres.NewRoleRepository(pool)

	if err := seedRoles(ctx, roles); err != nil {
		return errors.Wrap(err, "seed roles")
	}

	if err := seedSuperadmin(ctx, roles, postgres.NewEmployeeRepository(pool), adminPassword); err != nil {
		return errors.Wrap(err, "seed superadmin")
	}

	if withCatalog {
		if err := seedCatalog(ctx, pool); err != nil {
			return errors.Wrap(err, "seed catalog")
		}
	}

	return nil
}

func seedRoles(ctx context.Context, roles party.RoleRepository) error {
	for _, name := range []party.RoleName{
		party.RoleSuperadmin,
		party.RoleAdmin,
		party.RoleStaff,
		party.RoleCustomer,
	} {
		if _, err := roles.GetByName(ctx, name); err == nil {
			continue
		} else if !errors.Is(err, party.ErrRoleNotFound) {
			return err
		}

		if err := roles.Create(ctx, &party.Role{Name: name}); err != nil {
			return errors.Wrapf(err, "create role %s", name)
		}

		slog.Info("created role", slog.String("name", string(name)))
	}

	return nil
}

func seedSuperadmin(ctx context.Context, roles party.RoleRepository, employees party.EmployeeRepository, password string) error {
	const username = "superadmin"

	if _, err := employees.GetByUsername(ctx, username); err == nil {
		slog.Info("superadmin already exists, skipping")
		return nil
	} else if !errors.Is(err, party.ErrEmployeeNotFound) {
		return err
	}

	role, err := roles.GetByName(ctx, party.RoleSuperadmin)
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(err, "hash password")
	}

	e := &party.Employee{
		Username:     username,
		PasswordHash: string(hash),
		Email:        "superadmin@example.com",
		FirstName:    "Super",
		LastName:     "Admin",
		PhoneNumber:  "+10000000000",
		HireDate:     time.Now().UTC(),
		JobTitle:     "System Administrator",
		RoleID:       role.ID,
	}
	if err := employees.Create(ctx, e); err != nil {
		return err
	}

	slog.Info("created superadmin", slog.Int64("employee_id", e.ID))

	return nil
}

func seedCatalog(ctx context.Context, pool *pgxpool.Pool) error {
	models := postgres.NewModelRepository(pool)

	existing, err := models.List(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		slog.Info("catalog already seeded, skipping", slog.Int("models", len(existing)))
		return nil
	}

	categories := postgres.NewCategoryRepository(pool)
	variants := postgres.NewVariantRepository(pool)

	category := &catalog.Category{Name: "Electronics"}
	if err := categories.Create(ctx, category); err != nil && !errors.Is(err, catalog.ErrDuplicate) {
		return errors.Wrap(err, "create category")
	}

	model := &catalog.ProductModel{
		ID:          uuid.New().String(),
		Name:        "Aurora Wireless Headphones",
		Description: "Over-ear wireless headphones with active noise cancellation.",
		CategoryID:  &category.ID,
		Brand:       "Aurora",
		BasePrice:   decimal.NewFromFloat(129.99),
	}
	if err := models.Create(ctx, model); err != nil {
		return errors.Wrap(err, "create product model")
	}

	slog.Info("created product model", slog.String("id", model.ID), slog.String("name", model.Name))

	demo := []catalog.ProductVariant{
		{SKU: "AUR-HP-BLK", Price: decimal.NewFromFloat(129.99), StockQuantity: 50},
		{SKU: "AUR-HP-WHT", Price: decimal.NewFromFloat(134.99), StockQuantity: 35},
		{SKU: "AUR-HP-RED", Price: decimal.NewFromFloat(139.99), StockQuantity: 20},
	}
	for _, v := range demo {
		v.ID = uuid.New().String()
		v.ModelID = model.ID
		if err := variants.Create(ctx, &v); err != nil {
			return errors.Wrapf(err, "create variant %s", v.SKU)
		}

		slog.Info("created product variant", slog.String("sku", v.SKU))
	}

	return nil
}
