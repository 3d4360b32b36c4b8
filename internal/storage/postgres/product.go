package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/orderdesk/internal/domain/product"
)

const (
	createProductSQL = `INSERT INTO products (id, name, sku, price, image_url, created_by)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING created_at, updated_at`

	getProductByIDSQL = `SELECT id, name, sku, price, image_url, created_by, created_at, updated_at
	FROM products WHERE id = $1`

	findProductBySKUSQL = `SELECT id, name, sku, price, image_url, created_by, created_at, updated_at
	FROM products WHERE sku = $1`

	listProductsSQL = `SELECT id, name, sku, price, image_url, created_by, created_at, updated_at
	FROM products ORDER BY created_at, id`
)

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository backed by PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// Create persists a new product. The sku unique constraint is the race
// backstop for concurrent duplicate registrations; its violation surfaces
// as product.ErrSKUExists.
func (r *ProductRepository) Create(ctx context.Context, p *product.Product) error {
	err := r.pool.QueryRow(ctx, createProductSQL,
		p.ID, p.Name, p.SKU, p.Price, p.ImageURL, p.CreatedBy,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return product.ErrSKUExists
		}
		return fmt.Errorf("creating product %q: %w", p.ID, err)
	}
	return nil
}

// GetByID returns a single product by its identifier. It returns
// product.ErrNotFound when no matching row exists.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*product.Product, error) {
	return r.queryOne(ctx, getProductByIDSQL, id)
}

// FindBySKU returns the product carrying the given sku, or
// product.ErrNotFound.
func (r *ProductRepository) FindBySKU(ctx context.Context, sku string) (*product.Product, error) {
	return r.queryOne(ctx, findProductBySKUSQL, sku)
}

// List returns all products in insertion order.
func (r *ProductRepository) List(ctx context.Context) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, listProductsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	defer rows.Close()

	products := []product.Product{}
	for rows.Next() {
		var p product.Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, fmt.Errorf("scanning product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return products, nil
}

func (r *ProductRepository) queryOne(ctx context.Context, sql, arg string) (*product.Product, error) {
	var p product.Product
	err := scanProduct(r.pool.QueryRow(ctx, sql, arg), &p)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, fmt.Errorf("getting product %q: %w", arg, err)
	}
	return &p, nil
}

func scanProduct(row pgx.Row, p *product.Product) error {
	return row.Scan(
		&p.ID, &p.Name, &p.SKU, &p.Price, &p.ImageURL,
		&p.CreatedBy, &p.CreatedAt, &p.UpdatedAt,
	)
}
