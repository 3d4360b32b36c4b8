package product

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mock implementations ---

type mockProductRepo struct {
	byID      map[string]*Product
	bySKU     map[string]*Product
	createErr error
}

func newProductRepo(products ...Product) *mockProductRepo {
	m := &mockProductRepo{
		byID:  make(map[string]*Product),
		bySKU: make(map[string]*Product),
	}
	for i := range products {
		m.byID[products[i].ID] = &products[i]
		m.bySKU[products[i].SKU] = &products[i]
	}
	return m
}

func (m *mockProductRepo) Create(_ context.Context, p *Product) error {
	if m.createErr != nil {
		return m.createErr
	}
	if _, ok := m.bySKU[p.SKU]; ok {
		return ErrSKUExists
	}
	stored := *p
	m.byID[p.ID] = &stored
	m.bySKU[p.SKU] = &stored
	return nil
}

func (m *mockProductRepo) GetByID(_ context.Context, id string) (*Product, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

func (m *mockProductRepo) FindBySKU(_ context.Context, sku string) (*Product, error) {
	p, ok := m.bySKU[sku]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

func (m *mockProductRepo) List(_ context.Context) ([]Product, error) {
	out := make([]Product, 0, len(m.byID))
	for _, p := range m.byID {
		out = append(out, *p)
	}
	return out, nil
}

type mockImageStore struct {
	url     string
	err     error
	uploads int
}

func (m *mockImageStore) Upload(_ context.Context, _ []byte, _, _ string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.uploads++
	return m.url, nil
}

// --- Helpers ---

func validCreateRequest() CreateRequest {
	return CreateRequest{
		Name:        "Widget",
		SKU:         "W-1",
		Price:       decimal.RequireFromString("10.00"),
		Image:       []byte("fake-png-bytes"),
		ContentType: "image/png",
		Filename:    "widget.png",
		CreatedBy:   "user-1",
	}
}

// --- Tests ---

func TestCreate_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*CreateRequest)
		wantErr error
	}{
		{"empty name", func(r *CreateRequest) { r.Name = "" }, ErrEmptyName},
		{"empty sku", func(r *CreateRequest) { r.SKU = "" }, ErrEmptySKU},
		{"negative price", func(r *CreateRequest) { r.Price = decimal.RequireFromString("-0.01") }, ErrNegativePrice},
		{"missing image", func(r *CreateRequest) { r.Image = nil }, ErrEmptyImage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			images := &mockImageStore{url: "https://cdn.example.com/x.png"}
			svc := NewService(newProductRepo(), images)

			req := validCreateRequest()
			tt.mutate(&req)

			_, err := svc.Create(context.Background(), req)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, images.uploads, "invalid request must not reach the image store")
		})
	}
}

func TestCreate_Success(t *testing.T) {
	images := &mockImageStore{url: "https://cdn.example.com/w.png"}
	repo := newProductRepo()
	svc := NewService(repo, images)

	p, err := svc.Create(context.Background(), validCreateRequest())
	require.NoError(t, err)

	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "Widget", p.Name)
	assert.Equal(t, "W-1", p.SKU)
	assert.True(t, decimal.RequireFromString("10.00").Equal(p.Price))
	assert.Equal(t, "https://cdn.example.com/w.png", p.ImageURL)
	assert.Equal(t, "user-1", p.CreatedBy)
	assert.Equal(t, 1, images.uploads)

	stored, err := repo.FindBySKU(context.Background(), "W-1")
	require.NoError(t, err)
	assert.Equal(t, p.ID, stored.ID)
}

func TestCreate_DuplicateSKU(t *testing.T) {
	existing := Product{
		ID:    "11111111-1111-4111-8111-111111111111",
		Name:  "Widget",
		SKU:   "W-1",
		Price: decimal.RequireFromString("10.00"),
	}
	images := &mockImageStore{url: "https://cdn.example.com/w.png"}
	svc := NewService(newProductRepo(existing), images)

	// Same SKU with entirely different fields still conflicts.
	req := validCreateRequest()
	req.Name = "Deluxe Widget"
	req.Price = decimal.RequireFromString("99.00")

	_, err := svc.Create(context.Background(), req)
	require.ErrorIs(t, err, ErrSKUExists)
	assert.Zero(t, images.uploads, "duplicate registration must not store an image")
}

func TestCreate_SKUCheckError(t *testing.T) {
	images := &mockImageStore{url: "https://cdn.example.com/w.png"}
	svc := NewService(&failingSKURepo{inner: newProductRepo()}, images)

	_, err := svc.Create(context.Background(), validCreateRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "check sku")
	assert.Zero(t, images.uploads)
}

// failingSKURepo fails the SKU lookup with a non-sentinel error.
type failingSKURepo struct {
	inner *mockProductRepo
}

func (f *failingSKURepo) Create(ctx context.Context, p *Product) error { return f.inner.Create(ctx, p) }
func (f *failingSKURepo) GetByID(ctx context.Context, id string) (*Product, error) {
	return f.inner.GetByID(ctx, id)
}
func (f *failingSKURepo) FindBySKU(_ context.Context, _ string) (*Product, error) {
	return nil, errors.New("connection reset")
}
func (f *failingSKURepo) List(ctx context.Context) ([]Product, error) { return f.inner.List(ctx) }

func TestCreate_ImageStoreError(t *testing.T) {
	repo := newProductRepo()
	images := &mockImageStore{err: errors.New("bucket unavailable")}
	svc := NewService(repo, images)

	_, err := svc.Create(context.Background(), validCreateRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store image")
	assert.Empty(t, repo.byID, "failed upload must not create the product")
}

func TestCreate_RepoCreateError(t *testing.T) {
	repo := newProductRepo()
	repo.createErr = ErrSKUExists
	images := &mockImageStore{url: "https://cdn.example.com/w.png"}
	svc := NewService(repo, images)

	// Simulates losing the race between the SKU pre-check and the insert.
	_, err := svc.Create(context.Background(), validCreateRequest())
	require.ErrorIs(t, err, ErrSKUExists)
}

func TestGetByID_MalformedID(t *testing.T) {
	svc := NewService(newProductRepo(), &mockImageStore{})

	_, err := svc.GetByID(context.Background(), "not-a-uuid")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGetByID_Missing(t *testing.T) {
	svc := NewService(newProductRepo(), &mockImageStore{})

	_, err := svc.GetByID(context.Background(), "22222222-2222-4222-8222-222222222222")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGetByID_Found(t *testing.T) {
	existing := Product{
		ID:    "11111111-1111-4111-8111-111111111111",
		Name:  "Widget",
		SKU:   "W-1",
		Price: decimal.RequireFromString("10.00"),
	}
	svc := NewService(newProductRepo(existing), &mockImageStore{})

	p, err := svc.GetByID(context.Background(), existing.ID)
	require.NoError(t, err)
	assert.Equal(t, "W-1", p.SKU)
}

func TestAllowedDuplicateFields(t *testing.T) {
	existing := Product{
		ID:    "11111111-1111-4111-8111-111111111111",
		Name:  "Widget",
		SKU:   "W-1",
		Price: decimal.RequireFromString("10.00"),
	}
	images := &mockImageStore{url: "https://cdn.example.com/w2.png"}
	svc := NewService(newProductRepo(existing), images)

	// Same name and price under a different SKU is a distinct product.
	req := validCreateRequest()
	req.SKU = "W-2"

	p, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "W-2", p.SKU)
	assert.Equal(t, "Widget", p.Name)
}
