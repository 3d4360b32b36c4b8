// Package report exposes read-only aggregation over the order ledger,
// keeping the reporting surface separate from the mutating order API.
package report

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/xenking/orderdesk/internal/domain/order"
)

// OrderStats is the subset of the order service the reporting layer reads.
type OrderStats interface {
	LastMonthTotal(ctx context.Context) (decimal.Decimal, error)
	HighestOrder(ctx context.Context) (*order.Order, error)
}

// Service delegates reporting queries to the order ledger. It holds no
// state of its own and fails exactly as the delegated calls do.
type Service struct {
	orders OrderStats
}

// NewService creates a reporting Service over the given order stats source.
func NewService(orders OrderStats) *Service {
	return &Service{orders: orders}
}

// LastMonthTotal returns the sum of order totals in the trailing 30-day window.
func (s *Service) LastMonthTotal(ctx context.Context) (decimal.Decimal, error) {
	return s.orders.LastMonthTotal(ctx)
}

// HighestOrder returns the order with the maximum total.
func (s *Service) HighestOrder(ctx context.Context) (*order.Order, error) {
	return s.orders.HighestOrder(ctx)
}
