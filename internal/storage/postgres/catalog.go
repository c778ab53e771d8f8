package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/retail-backoffice/internal/domain/catalog"
	"github.com/xenking/retail-backoffice/internal/domain/order"
)

var (
	_ catalog.CategoryRepository       = (*CategoryRepository)(nil)
	_ catalog.AttributeRepository      = (*AttributeRepository)(nil)
	_ catalog.AttributeValueRepository = (*AttributeValueRepository)(nil)
	_ catalog.ModelRepository          = (*ModelRepository)(nil)
	_ catalog.VariantRepository        = (*VariantRepository)(nil)
	_ order.VariantCatalog             = (*VariantRepository)(nil)
)

// CategoryRepository implements catalog.CategoryRepository.
type CategoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository returns a CategoryRepository that uses the given pool.
func NewCategoryRepository(pool *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

func (r *CategoryRepository) Create(ctx context.Context, c *catalog.Category) error {
	err := queryEngine(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO categories (name) VALUES ($1)
		RETURNING category_id, created_at, updated_at`,
		c.Name,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return catalog.ErrDuplicate
		}
		return fmt.Errorf("creating category: %w", err)
	}
	return nil
}

func (r *CategoryRepository) Get(ctx context.Context, id int64) (*catalog.Category, error) {
	var c catalog.Category
	err := queryEngine(ctx, r.pool).QueryRow(ctx, `
		SELECT category_id, name, created_at, updated_at
		FROM categories WHERE category_id = $1`, id,
	).Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("getting category %d: %w", id, err)
	}
	return &c, nil
}

func (r *CategoryRepository) List(ctx context.Context) ([]catalog.Category, error) {
	rows, err := queryEngine(ctx, r.pool).Query(ctx, `
		SELECT category_id, name, created_at, updated_at
		FROM categories ORDER BY category_id`)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	defer rows.Close()

	var out []catalog.Category
	for rows.Next() {
		var c catalog.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *CategoryRepository) Update(ctx context.Context, c *catalog.Category) error {
	tag, err := queryEngine(ctx, r.pool).Exec(ctx, `
		UPDATE categories SET name = $2, updated_at = now() WHERE category_id = $1`,
		c.ID, c.Name)
	if err != nil {
		if isUniqueViolation(err) {
			return catalog.ErrDuplicate
		}
		return fmt.Errorf("updating category %d: %w", c.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrCategoryNotFound
	}
	return nil
}

func (r *CategoryRepository) Delete(ctx context.Context, id int64) error {
	tag, err := queryEngine(ctx, r.pool).Exec(ctx,
		`DELETE FROM categories WHERE category_id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting category %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrCategoryNotFound
	}
	return nil
}

// AttributeRepository implements catalog.AttributeRepository.
type AttributeRepository struct {
	pool *pgxpool.Pool
}

// NewAttributeRepository returns an AttributeRepository that uses the given pool.
func NewAttributeRepository(pool *pgxpool.Pool) *AttributeRepository {
	return &AttributeRepository{pool: pool}
}

func (r *AttributeRepository) Create(ctx context.Context, a *catalog.Attribute) error {
	err := queryEngine(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO attributes (name, description) VALUES ($1, $2)
		RETURNING attribute_id, created_at, updated_at`,
		a.Name, a.Description,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return catalog.ErrDuplicate
		}
		return fmt.Errorf("creating attribute: %w", err)
	}
	return nil
}

func (r *AttributeRepository) Get(ctx context.Context, id int64) (*catalog.Attribute, error) {
	var a catalog.Attribute
	err := queryEngine(ctx, r.pool).QueryRow(ctx, `
		SELECT attribute_id, name, COALESCE(description, ''), created_at, updated_at
		FROM attributes WHERE attribute_id = $1`, id,
	).Scan(&a.ID, &a.Name, &a.Description, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrAttributeNotFound
		}
		return nil, fmt.Errorf("getting attribute %d: %w", id, err)
	}
	return &a, nil
}

func (r *AttributeRepository) List(ctx context.Context) ([]catalog.Attribute, error) {
	rows, err := queryEngine(ctx, r.pool).Query(ctx, `
		SELECT attribute_id, name, COALESCE(description, ''), created_at, updated_at
		FROM attributes ORDER BY attribute_id`)
	if err != nil {
		return nil, fmt.Errorf("listing attributes: %w", err)
	}
	defer rows.Close()

	var out []catalog.Attribute
	for rows.Next() {
		var a catalog.Attribute
		if err := rows.Scan(&a.ID, &a.Name, &a.Description, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning attribute: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *AttributeRepository) Update(ctx context.Context, a *catalog.Attribute) error {
	tag, err := queryEngine(ctx, r.pool).Exec(ctx, `
		UPDATE attributes SET name = $2, description = $3, updated_at = now()
		WHERE attribute_id = $1`,
		a.ID, a.Name, a.Description)
	if err != nil {
		if isUniqueViolation(err) {
			return catalog.ErrDuplicate
		}
		return fmt.Errorf("updating attribute %d: %w", a.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrAttributeNotFound
	}
	return nil
}

func (r *AttributeRepository) Delete(ctx context.Context, id int64) error {
	tag, err := queryEngine(ctx, r.pool).Exec(ctx,
		`DELETE FROM attributes WHERE attribute_id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting attribute %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrAttributeNotFound
	}
	return nil
}

// AttributeValueRepository implements catalog.AttributeValueRepository.
type AttributeValueRepository struct {
	pool *pgxpool.Pool
}

// NewAttributeValueRepository returns an AttributeValueRepository that uses
// the given pool.
func NewAttributeValueRepository(pool *pgxpool.Pool) *AttributeValueRepository {
	return &AttributeValueRepository{pool: pool}
}

func (r *AttributeValueRepository) Create(ctx context.Context, v *catalog.AttributeValue) error {
	err := queryEngine(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO attribute_values (attribute_id, value, price_modifier)
		VALUES ($1, $2, $3)
		RETURNING attribute_value_id, created_at, updated_at`,
		v.AttributeID, v.Value, v.PriceModifier,
	).Scan(&v.ID, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return catalog.ErrDuplicate
		case isForeignKeyViolation(err):
			return catalog.ErrAttributeNotFound
		}
		return fmt.Errorf("creating attribute value: %w", err)
	}
	return nil
}

func (r *AttributeValueRepository) Get(ctx context.Context, id int64) (*catalog.AttributeValue, error) {
	var v catalog.AttributeValue
	err := queryEngine(ctx, r.pool).QueryRow(ctx, `
		SELECT attribute_value_id, attribute_id, value, price_modifier, created_at, updated_at
		FROM attribute_values WHERE attribute_value_id = $1`, id,
	).Scan(&v.ID, &v.AttributeID, &v.Value, &v.PriceModifier, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrAttributeValueNotFound
		}
		return nil, fmt.Errorf("getting attribute value %d: %w", id, err)
	}
	return &v, nil
}

func (r *AttributeValueRepository) List(ctx context.Context) ([]catalog.AttributeValue, error) {
	rows, err := queryEngine(ctx, r.pool).Query(ctx, `
		SELECT attribute_value_id, attribute_id, value, price_modifier, created_at, updated_at
		FROM attribute_values ORDER BY attribute_value_id`)
	if err != nil {
		return nil, fmt.Errorf("listing attribute values: %w", err)
	}
	defer rows.Close()

	var out []catalog.AttributeValue
	for rows.Next() {
		var v catalog.AttributeValue
		if err := rows.Scan(&v.ID, &v.AttributeID, &v.Value, &v.PriceModifier, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning attribute value: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *AttributeValueRepository) Update(ctx context.Context, v *catalog.AttributeValue) error {
	tag, err := queryEngine(ctx, r.pool).Exec(ctx, `
		UPDATE attribute_values SET attribute_id = $2, value = $3, price_modifier = $4, updated_at = now()
		WHERE attribute_value_id = $1`,
		v.ID, v.AttributeID, v.Value, v.PriceModifier)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return catalog.ErrDuplicate
		case isForeignKeyViolation(err):
			return catalog.ErrAttributeNotFound
		}
		return fmt.Errorf("updating attribute value %d: %w", v.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrAttributeValueNotFound
	}
	return nil
}

func (r *AttributeValueRepository) Delete(ctx context.Context, id int64) error {
	tag, err := queryEngine(ctx, r.pool).Exec(ctx,
		`DELETE FROM attribute_values WHERE attribute_value_id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting attribute value %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrAttributeValueNotFound
	}
	return nil
}

const modelColumns = `model_id, name, COALESCE(description, ''), category_id,
	COALESCE(brand, ''), COALESCE(base_image_url, ''), base_price, created_at, updated_at`

// ModelRepository implements catalog.ModelRepository.
type ModelRepository struct {
	pool *pgxpool.Pool
}

// NewModelRepository returns a ModelRepository that uses the given pool.
func NewModelRepository(pool *pgxpool.Pool) *ModelRepository {
	return &ModelRepository{pool: pool}
}

func (r *ModelRepository) Create(ctx context.Context, m *catalog.ProductModel) error {
	err := queryEngine(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO product_models (model_id, name, description, category_id, brand, base_image_url, base_price)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`,
		m.ID, m.Name, m.Description, m.CategoryID, m.Brand, m.BaseImageURL, m.BasePrice,
	).Scan(&m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return catalog.ErrDuplicate
		case isForeignKeyViolation(err):
			return catalog.ErrCategoryNotFound
		}
		return fmt.Errorf("creating product model: %w", err)
	}
	return nil
}

func (r *ModelRepository) Get(ctx context.Context, id string) (*catalog.ProductModel, error) {
	row := queryEngine(ctx, r.pool).QueryRow(ctx,
		`SELECT `+modelColumns+` FROM product_models WHERE model_id = $1`, id)

	m, err := scanModel(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrModelNotFound
		}
		return nil, fmt.Errorf("getting product model %q: %w", id, err)
	}
	return m, nil
}

func (r *ModelRepository) List(ctx context.Context) ([]catalog.ProductModel, error) {
	rows, err := queryEngine(ctx, r.pool).Query(ctx,
		`SELECT `+modelColumns+` FROM product_models ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing product models: %w", err)
	}
	defer rows.Close()

	var out []catalog.ProductModel
	for rows.Next() {
		m, err := scanModel(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning product model: %w", err)
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

func (r *ModelRepository) Update(ctx context.Context, m *catalog.ProductModel) error {
	tag, err := queryEngine(ctx, r.pool).Exec(ctx, `
		UPDATE product_models SET
			name = $2, description = $3, category_id = $4, brand = $5,
			base_image_url = $6, base_price = $7, updated_at = now()
		WHERE model_id = $1`,
		m.ID, m.Name, m.Description, m.CategoryID, m.Brand, m.BaseImageURL, m.BasePrice)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return catalog.ErrDuplicate
		case isForeignKeyViolation(err):
			return catalog.ErrCategoryNotFound
		}
		return fmt.Errorf("updating product model %q: %w", m.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrModelNotFound
	}
	return nil
}

func (r *ModelRepository) Delete(ctx context.Context, id string) error {
	tag, err := queryEngine(ctx, r.pool).Exec(ctx,
		`DELETE FROM product_models WHERE model_id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting product model %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrModelNotFound
	}
	return nil
}

func scanModel(row pgx.Row) (*catalog.ProductModel, error) {
	var m catalog.ProductModel
	err := row.Scan(
		&m.ID, &m.Name, &m.Description, &m.CategoryID,
		&m.Brand, &m.BaseImageURL, &m.BasePrice, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

const variantColumns = `variant_id, model_id, sku, price, stock_quantity,
	COALESCE(variant_image_url, ''), created_at, updated_at`

// VariantRepository implements catalog.VariantRepository and doubles as the
// order service's variant reference checker.
type VariantRepository struct {
	pool *pgxpool.Pool
}

// NewVariantRepository returns a VariantRepository that uses the given pool.
func NewVariantRepository(pool *pgxpool.Pool) *VariantRepository {
	return &VariantRepository{pool: pool}
}

func (r *VariantRepository) Create(ctx context.Context, v *catalog.ProductVariant) error {
	err := queryEngine(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO product_variants (variant_id, model_id, sku, price, stock_quantity, variant_image_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`,
		v.ID, v.ModelID, v.SKU, v.Price, v.StockQuantity, v.ImageURL,
	).Scan(&v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return catalog.ErrDuplicate
		case isForeignKeyViolation(err):
			return catalog.ErrModelNotFound
		}
		return fmt.Errorf("creating product variant: %w", err)
	}
	return nil
}

func (r *VariantRepository) Get(ctx context.Context, id string) (*catalog.ProductVariant, error) {
	row := queryEngine(ctx, r.pool).QueryRow(ctx,
		`SELECT `+variantColumns+` FROM product_variants WHERE variant_id = $1`, id)

	v, err := scanVariant(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrVariantNotFound
		}
		return nil, fmt.Errorf("getting product variant %q: %w", id, err)
	}
	return v, nil
}

func (r *VariantRepository) List(ctx context.Context) ([]catalog.ProductVariant, error) {
	rows, err := queryEngine(ctx, r.pool).Query(ctx,
		`SELECT `+variantColumns+` FROM product_variants ORDER BY sku`)
	if err != nil {
		return nil, fmt.Errorf("listing product variants: %w", err)
	}
	defer rows.Close()

	var out []catalog.ProductVariant
	for rows.Next() {
		v, err := scanVariant(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning product variant: %w", err)
		}
		out = append(out, *v)
	}
	return out, rows.Err()
}

func (r *VariantRepository) Update(ctx context.Context, v *catalog.ProductVariant) error {
	tag, err := queryEngine(ctx, r.pool).Exec(ctx, `
		UPDATE product_variants SET
			model_id = $2, sku = $3, price = $4, stock_quantity = $5,
			variant_image_url = $6, updated_at = now()
		WHERE variant_id = $1`,
		v.ID, v.ModelID, v.SKU, v.Price, v.StockQuantity, v.ImageURL)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return catalog.ErrDuplicate
		case isForeignKeyViolation(err):
			return catalog.ErrModelNotFound
		}
		return fmt.Errorf("updating product variant %q: %w", v.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrVariantNotFound
	}
	return nil
}

func (r *VariantRepository) Delete(ctx context.Context, id string) error {
	tag, err := queryEngine(ctx, r.pool).Exec(ctx,
		`DELETE FROM product_variants WHERE variant_id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting product variant %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrVariantNotFound
	}
	return nil
}

// VariantExists reports whether a variant with the given ID exists. Used by
// the order service for referential checks before item writes.
func (r *VariantRepository) VariantExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := queryEngine(ctx, r.pool).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM product_variants WHERE variant_id = $1)`, id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking product variant %q: %w", id, err)
	}
	return exists, nil
}

func scanVariant(row pgx.Row) (*catalog.ProductVariant, error) {
	var v catalog.ProductVariant
	err := row.Scan(
		&v.ID, &v.ModelID, &v.SKU, &v.Price, &v.StockQuantity,
		&v.ImageURL, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
