package product

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateRequest holds the input for registering a product.
type CreateRequest struct {
	Name        string
	SKU         string
	Price       decimal.Decimal
	Image       []byte
	ContentType string
	// Filename is the caller-supplied upload name. Only its extension is
	// used; it never becomes a storage key.
	Filename  string
	CreatedBy string
}

// Service encapsulates catalog business logic.
type Service struct {
	products Repository
	images   ImageStore
}

// NewService creates a catalog Service with the required dependencies.
func NewService(products Repository, images ImageStore) *Service {
	return &Service{
		products: products,
		images:   images,
	}
}

// Create registers a new product. The SKU uniqueness check runs before the
// image is stored so a duplicate registration causes no object-store write.
// Two racing creates may both pass the check; the loser surfaces the
// repository's ErrSKUExists from the unique constraint.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Product, error) {
	if err := validateCreate(req); err != nil {
		return nil, err
	}

	_, err := s.products.FindBySKU(ctx, req.SKU)
	switch {
	case err == nil:
		return nil, ErrSKUExists
	case !errors.Is(err, ErrNotFound):
		return nil, errors.Wrap(err, "check sku")
	}

	imageURL, err := s.images.Upload(ctx, req.Image, req.ContentType, req.Filename)
	if err != nil {
		return nil, errors.Wrap(err, "store image")
	}

	p := &Product{
		ID:        uuid.New().String(),
		Name:      req.Name,
		SKU:       req.SKU,
		Price:     req.Price,
		ImageURL:  imageURL,
		CreatedBy: req.CreatedBy,
	}
	if err := s.products.Create(ctx, p); err != nil {
		return nil, err
	}

	return p, nil
}

// GetByID returns a single product. A structurally invalid identifier is
// reported the same way as an absent one.
func (s *Service) GetByID(ctx context.Context, id string) (*Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	return s.products.GetByID(ctx, id)
}

// List returns every product in the catalog in insertion order.
func (s *Service) List(ctx context.Context) ([]Product, error) {
	return s.products.List(ctx)
}

func validateCreate(req CreateRequest) error {
	if req.Name == "" {
		return ErrEmptyName
	}
	if req.SKU == "" {
		return ErrEmptySKU
	}
	if req.Price.IsNegative() {
		return ErrNegativePrice
	}
	if len(req.Image) == 0 {
		return ErrEmptyImage
	}
	return nil
}
