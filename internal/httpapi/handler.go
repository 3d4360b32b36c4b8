// Package httpapi exposes the catalog, order and reporting services over
// HTTP. Handlers only parse requests, delegate to the domain services and
// map domain errors to status codes; no business logic lives here.
package httpapi

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xenking/orderdesk/internal/domain/auth"
	"github.com/xenking/orderdesk/internal/domain/order"
	"github.com/xenking/orderdesk/internal/domain/product"
	"github.com/xenking/orderdesk/internal/domain/report"
)

// HandlerConfig holds non-dependency configuration for the Handler.
type HandlerConfig struct {
	// MaxUploadBytes bounds the multipart body of product registrations.
	MaxUploadBytes int64
}

// Handler wires the HTTP surface to the domain services.
type Handler struct {
	products       *product.Service
	orders         *order.Service
	reports        *report.Service
	authn          *auth.Authenticator
	maxUploadBytes int64
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	cfg HandlerConfig,
	products *product.Service,
	orders *order.Service,
	reports *report.Service,
	authn *auth.Authenticator,
) *Handler {
	maxUpload := cfg.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = 5 << 20
	}
	return &Handler{
		products:       products,
		orders:         orders,
		reports:        reports,
		authn:          authn,
		maxUploadBytes: maxUpload,
	}
}

// Routes returns the API route table. Every route requires a valid bearer
// token; Authenticate wraps the whole mux rather than each handler.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/products", h.createProduct)
	mux.HandleFunc("GET /api/products", h.listProducts)
	mux.HandleFunc("GET /api/products/{id}", h.getProduct)

	mux.HandleFunc("POST /api/orders", h.createOrder)
	mux.HandleFunc("GET /api/orders/{id}", h.getOrder)
	mux.HandleFunc("PATCH /api/orders/{id}", h.updateOrder)

	mux.HandleFunc("GET /api/stats/last-month-total", h.lastMonthTotal)
	mux.HandleFunc("GET /api/stats/highest-order", h.highestOrder)

	return h.Authenticate(mux)
}

// Wire types. Money crosses the wire as float64, matching what API
// consumers expect from the JSON number type; decimals stay exact
// internally.

type productResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	SKU       string    `json:"sku"`
	Price     float64   `json:"price"`
	ImageURL  string    `json:"imageUrl"`
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type orderItemResponse struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	SKU       string  `json:"sku"`
	Price     float64 `json:"price"`
	ImageURL  string  `json:"imageUrl"`
	Quantity  int     `json:"quantity"`
}

type orderResponse struct {
	ID         string              `json:"id"`
	ClientName string              `json:"clientName"`
	Items      []orderItemResponse `json:"items"`
	Total      float64             `json:"total"`
	CreatedBy  string              `json:"createdBy"`
	CreatedAt  time.Time           `json:"createdAt"`
	UpdatedAt  time.Time           `json:"updatedAt"`
}

type totalResponse struct {
	Total float64 `json:"total"`
}

func toProductResponse(p *product.Product) productResponse {
	return productResponse{
		ID:        p.ID,
		Name:      p.Name,
		SKU:       p.SKU,
		Price:     p.Price.InexactFloat64(),
		ImageURL:  p.ImageURL,
		CreatedBy: p.CreatedBy,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func toOrderResponse(o *order.Order) orderResponse {
	items := make([]orderItemResponse, len(o.Items))
	for i, it := range o.Items {
		items[i] = orderItemResponse{
			ProductID: it.ProductID,
			Name:      it.Name,
			SKU:       it.SKU,
			Price:     it.Price.InexactFloat64(),
			ImageURL:  it.ImageURL,
			Quantity:  it.Quantity,
		}
	}
	return orderResponse{
		ID:         o.ID,
		ClientName: o.ClientName,
		Items:      items,
		Total:      o.Total.InexactFloat64(),
		CreatedBy:  o.CreatedBy,
		CreatedAt:  o.CreatedAt,
		UpdatedAt:  o.UpdatedAt,
	}
}

func toTotalResponse(total decimal.Decimal) totalResponse {
	return totalResponse{Total: total.InexactFloat64()}
}
