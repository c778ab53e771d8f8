// Package catalog holds the product catalog entities: categories, attributes
// and their values, product models, and the sellable product variants.
package catalog

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Sentinel errors for catalog operations.
var (
	ErrCategoryNotFound       = errors.New("category not found")
	ErrAttributeNotFound      = errors.New("attribute not found")
	ErrAttributeValueNotFound = errors.New("attribute value not found")
	ErrModelNotFound          = errors.New("product model not found")
	ErrVariantNotFound        = errors.New("product variant not found")
	ErrDuplicate              = errors.New("duplicate catalog entry")
)

// Category groups product models.
type Category struct {
	ID        int64
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Attribute is a named product characteristic (e.g. "color", "storage").
type Attribute struct {
	ID          int64
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// AttributeValue is a concrete value of an attribute with an optional price
// modifier applied on top of a model's base price.
type AttributeValue struct {
	ID            int64
	AttributeID   int64
	Value         string
	PriceModifier decimal.Decimal
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ProductModel is an abstract product; variants are its sellable forms.
type ProductModel struct {
	ID           string
	Name         string
	Description  string
	CategoryID   *int64
	Brand        string
	BaseImageURL string
	BasePrice    decimal.Decimal
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ProductVariant is a sellable SKU of a product model.
type ProductVariant struct {
	ID            string
	ModelID       string
	SKU           string
	Price         decimal.Decimal
	StockQuantity int
	ImageURL      string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CategoryRepository defines persistence operations for categories.
type CategoryRepository interface {
	Create(ctx context.Context, c *Category) error
	Get(ctx context.Context, id int64) (*Category, error)
	List(ctx context.Context) ([]Category, error)
	Update(ctx context.Context, c *Category) error
	Delete(ctx context.Context, id int64) error
}

// AttributeRepository defines persistence operations for attributes.
type AttributeRepository interface {
	Create(ctx context.Context, a *Attribute) error
	Get(ctx context.Context, id int64) (*Attribute, error)
	List(ctx context.Context) ([]Attribute, error)
	Update(ctx context.Context, a *Attribute) error
	Delete(ctx context.Context, id int64) error
}

// AttributeValueRepository defines persistence operations for attribute values.
type AttributeValueRepository interface {
	Create(ctx context.Context, v *AttributeValue) error
	Get(ctx context.Context, id int64) (*AttributeValue, error)
	List(ctx context.Context) ([]AttributeValue, error)
	Update(ctx context.Context, v *AttributeValue) error
	Delete(ctx context.Context, id int64) error
}

// ModelRepository defines persistence operations for product models.
type ModelRepository interface {
	Create(ctx context.Context, m *ProductModel) error
	Get(ctx context.Context, id string) (*ProductModel, error)
	List(ctx context.Context) ([]ProductModel, error)
	Update(ctx context.Context, m *ProductModel) error
	Delete(ctx context.Context, id string) error
}

// VariantRepository defines persistence operations for product variants.
type VariantRepository interface {
	Create(ctx context.Context, v *ProductVariant) error
	Get(ctx context.Context, id string) (*ProductVariant, error)
	List(ctx context.Context) ([]ProductVariant, error)
	Update(ctx context.Context, v *ProductVariant) error
	Delete(ctx context.Context, id string) error
}
