package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/xenking/orderdesk/internal/domain/product"
)

// lastMonthWindow is the trailing reporting window. A fixed 30-day window
// is used instead of calendar-month boundaries.
const lastMonthWindow = 30 * 24 * time.Hour

// Catalog resolves product identifiers at snapshot time.
type Catalog interface {
	GetByID(ctx context.Context, id string) (*product.Product, error)
}

// ItemRequest references a product and a quantity in an incoming order.
type ItemRequest struct {
	ProductID string
	Quantity  int
}

// CreateRequest holds the input for placing an order.
type CreateRequest struct {
	ClientName string
	Items      []ItemRequest
	CreatedBy  string
}

// UpdateRequest is a partial order patch. Nil fields are left untouched;
// a non-nil Items slice fully replaces the existing items.
type UpdateRequest struct {
	ClientName *string
	Items      []ItemRequest
}

// Service encapsulates order composition, mutation and aggregation logic.
type Service struct {
	catalog Catalog
	orders  Repository
}

// NewService creates an order Service with the required dependencies.
func NewService(catalog Catalog, orders Repository) *Service {
	return &Service{
		catalog: catalog,
		orders:  orders,
	}
}

// Create resolves every requested item against the catalog, snapshots the
// product fields into order items, computes the total and persists the
// order. Any resolution failure aborts the whole operation before the
// order is written.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Order, error) {
	if req.ClientName == "" {
		return nil, ErrEmptyClientName
	}

	items, total, err := s.snapshotItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	o := &Order{
		ID:         uuid.New().String(),
		ClientName: req.ClientName,
		Items:      items,
		Total:      total,
		CreatedBy:  req.CreatedBy,
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, errors.Wrap(err, "create order")
	}

	return o, nil
}

// GetByID returns a single order. A malformed identifier is reported the
// same way as an absent one.
func (s *Service) GetByID(ctx context.Context, id string) (*Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	return s.orders.GetByID(ctx, id)
}

// Update applies a partial patch to an existing order. A present items
// list fully replaces the stored one: every item is re-snapshotted from
// the current catalog state and the total is recomputed. The returned
// order is re-read after the write so the caller observes committed state.
func (s *Service) Update(ctx context.Context, id string, req UpdateRequest) (*Order, error) {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.ClientName == nil && req.Items == nil {
		return existing, nil
	}

	if req.ClientName != nil {
		existing.ClientName = *req.ClientName
	}
	if req.Items != nil {
		items, total, err := s.snapshotItems(ctx, req.Items)
		if err != nil {
			return nil, err
		}
		existing.Items = items
		existing.Total = total
	}

	if err := s.orders.Update(ctx, existing); err != nil {
		return nil, errors.Wrap(err, "update order")
	}

	return s.orders.GetByID(ctx, id)
}

// LastMonthTotal sums the totals of all orders created within the trailing
// 30-day window ending now. It returns zero when no orders match.
func (s *Service) LastMonthTotal(ctx context.Context) (decimal.Decimal, error) {
	since := time.Now().Add(-lastMonthWindow)
	return s.orders.SumTotalsSince(ctx, since)
}

// HighestOrder returns the order with the maximum total across all time.
func (s *Service) HighestOrder(ctx context.Context) (*Order, error) {
	return s.orders.HighestTotal(ctx)
}

// snapshotItems resolves each requested item in order, copies the product
// fields into an OrderItem, and accumulates the total.
func (s *Service) snapshotItems(ctx context.Context, reqs []ItemRequest) ([]OrderItem, decimal.Decimal, error) {
	if len(reqs) == 0 {
		return nil, decimal.Zero, ErrEmptyItems
	}

	items := make([]OrderItem, 0, len(reqs))
	total := decimal.Zero
	for _, req := range reqs {
		if req.Quantity < 1 {
			return nil, decimal.Zero, &InvalidQuantityError{ProductID: req.ProductID}
		}

		p, err := s.catalog.GetByID(ctx, req.ProductID)
		if err != nil {
			if errors.Is(err, product.ErrNotFound) {
				return nil, decimal.Zero, &ProductNotFoundError{ProductID: req.ProductID}
			}
			return nil, decimal.Zero, errors.Wrapf(err, "get product %s", req.ProductID)
		}

		items = append(items, OrderItem{
			ProductID: p.ID,
			Name:      p.Name,
			SKU:       p.SKU,
			Price:     p.Price,
			ImageURL:  p.ImageURL,
			Quantity:  req.Quantity,
		})
		total = total.Add(p.Price.Mul(decimal.NewFromInt(int64(req.Quantity))))
	}

	return items, total.Round(2), nil
}
