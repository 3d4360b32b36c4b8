package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Sentinel errors for order validation and lookup.
var (
	// ErrNotFound is returned when a requested order does not exist.
	ErrNotFound = errors.New("order not found")

	ErrEmptyItems      = errors.New("items required")
	ErrEmptyClientName = errors.New("client name required")
)

// ProductNotFoundError indicates a line item references a product that does
// not exist in the catalog.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return "product " + e.ProductID + " not found"
}

// InvalidQuantityError indicates a line item has a quantity below 1.
type InvalidQuantityError struct {
	ProductID string
}

func (e *InvalidQuantityError) Error() string {
	return "quantity must be at least 1 for product " + e.ProductID
}

// OrderItem is a line item embedded in an order. Name, SKU, Price and
// ImageURL are copied from the referenced product at the moment the item is
// written, so a later catalog change never alters an existing order.
type OrderItem struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	SKU       string          `json:"sku"`
	Price     decimal.Decimal `json:"price"`
	ImageURL  string          `json:"image_url"`
	Quantity  int             `json:"quantity"`
}

// Order is a customer order composed of snapshotted line items.
// Total always equals the sum of item price times quantity.
type Order struct {
	ID         string
	ClientName string
	Items      []OrderItem
	Total      decimal.Decimal
	CreatedBy  string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Repository defines persistence operations for orders.
type Repository interface {
	// Create persists a new order and fills in CreatedAt/UpdatedAt.
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	// Update replaces client name, items, total and updated_at of an
	// existing order.
	Update(ctx context.Context, o *Order) error
	// SumTotalsSince returns the sum of order totals created at or after
	// the given instant, reading only the persisted total column.
	SumTotalsSince(ctx context.Context, since time.Time) (decimal.Decimal, error)
	// HighestTotal returns the order with the maximum total. Ties break
	// by earliest created_at, then smallest id, so the result is stable.
	// Returns ErrNotFound when no orders exist.
	HighestTotal(ctx context.Context) (*Order, error)
}
