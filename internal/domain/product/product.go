package product

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Sentinel errors for catalog operations.
var (
	// ErrNotFound is returned when a requested product does not exist.
	ErrNotFound = errors.New("product not found")
	// ErrSKUExists is returned when a product with the same SKU is already
	// registered. The database unique constraint on sku is the source of
	// truth; the pre-check in Service.Create only gives a friendlier
	// fast path.
	ErrSKUExists = errors.New("sku already exists")

	ErrEmptyName     = errors.New("product name required")
	ErrEmptySKU      = errors.New("product sku required")
	ErrNegativePrice = errors.New("price must not be negative")
	ErrEmptyImage    = errors.New("product image required")
)

// Product is a catalog item registered by an authenticated user.
// Products are immutable after creation and are never deleted.
type Product struct {
	ID        string
	Name      string
	SKU       string
	Price     decimal.Decimal
	ImageURL  string
	CreatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Repository defines persistence operations for the product catalog.
type Repository interface {
	// Create persists a new product. It returns ErrSKUExists when the
	// sku unique constraint is violated.
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, id string) (*Product, error)
	// FindBySKU returns ErrNotFound when no product carries the sku.
	FindBySKU(ctx context.Context, sku string) (*Product, error)
	// List returns all products in insertion order.
	List(ctx context.Context) ([]Product, error)
}

// ImageStore persists an uploaded product image and returns its public URL.
type ImageStore interface {
	Upload(ctx context.Context, data []byte, contentType, filename string) (string, error)
}
