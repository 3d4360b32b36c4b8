package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/xenking/orderdesk/internal/domain/order"
)

const (
	createOrderSQL = `INSERT INTO orders (id, client_name, items, total, created_by)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING created_at, updated_at`

	getOrderByIDSQL = `SELECT id, client_name, items, total, created_by, created_at, updated_at
	FROM orders WHERE id = $1`

	updateOrderSQL = `UPDATE orders
	SET client_name = $2, items = $3, total = $4, updated_at = now()
	WHERE id = $1`

	sumTotalsSinceSQL = `SELECT COALESCE(SUM(total), 0) FROM orders WHERE created_at >= $1`

	highestTotalSQL = `SELECT id, client_name, items, total, created_by, created_at, updated_at
	FROM orders ORDER BY total DESC, created_at ASC, id ASC LIMIT 1`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL. Order
// items live in a JSONB column on the orders row, so every write of an
// order is a single-document update.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists a new order and fills in its timestamps.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	itemsJSON, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("marshaling order items: %w", err)
	}

	err = r.pool.QueryRow(ctx, createOrderSQL,
		o.ID, o.ClientName, itemsJSON, o.Total, o.CreatedBy,
	).Scan(&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating order %q: %w", o.ID, err)
	}
	return nil
}

// GetByID returns a single order. It returns order.ErrNotFound when no
// matching row exists.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*order.Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx, getOrderByIDSQL, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}
	return o, nil
}

// Update replaces the mutable columns of an existing order. Last write wins
// for concurrent updates of the same row.
func (r *OrderRepository) Update(ctx context.Context, o *order.Order) error {
	itemsJSON, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("marshaling order items: %w", err)
	}

	tag, err := r.pool.Exec(ctx, updateOrderSQL,
		o.ID, o.ClientName, itemsJSON, o.Total,
	)
	if err != nil {
		return fmt.Errorf("updating order %q: %w", o.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

// SumTotalsSince sums order totals created at or after the given instant.
// Only the total column is read; item data never leaves the database.
func (r *OrderRepository) SumTotalsSince(ctx context.Context, since time.Time) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.pool.QueryRow(ctx, sumTotalsSinceSQL, since).Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("summing order totals: %w", err)
	}
	return sum, nil
}

// HighestTotal returns the order with the maximum total. Ties break by
// earliest created_at, then smallest id.
func (r *OrderRepository) HighestTotal(ctx context.Context) (*order.Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx, highestTotalSQL))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting highest order: %w", err)
	}
	return o, nil
}

func scanOrder(row pgx.Row) (*order.Order, error) {
	var (
		o         order.Order
		itemsJSON []byte
	)
	err := row.Scan(
		&o.ID, &o.ClientName, &itemsJSON, &o.Total,
		&o.CreatedBy, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(itemsJSON, &o.Items); err != nil {
		return nil, fmt.Errorf("unmarshaling order items: %w", err)
	}
	return &o, nil
}
