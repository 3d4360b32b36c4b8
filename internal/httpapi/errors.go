package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/orderdesk/internal/domain/auth"
	"github.com/xenking/orderdesk/internal/domain/order"
	"github.com/xenking/orderdesk/internal/domain/product"
	"github.com/xenking/orderdesk/internal/objectstore"
)

// errorResponse is the JSON body for every failed request.
type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Code: status, Message: message})
}

// writeDomainError maps a domain error to a status code and JSON body.
// Unclassified errors are logged and reported as 500 without leaking
// internals to the client.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch status, ok := classify(err); {
	case ok:
		writeError(w, status, err.Error())
	default:
		zctx.From(r.Context()).Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// classify resolves a domain error to its HTTP status. The second return is
// false for errors outside the taxonomy.
func classify(err error) (int, bool) {
	var (
		pnfErr *order.ProductNotFoundError
		iqErr  *order.InvalidQuantityError
	)
	switch {
	case errors.Is(err, product.ErrNotFound),
		errors.Is(err, order.ErrNotFound):
		return http.StatusNotFound, true
	case errors.As(err, &pnfErr):
		// A missing product inside an order payload is a bad reference,
		// not a missing resource.
		return http.StatusUnprocessableEntity, true
	case errors.As(err, &iqErr),
		errors.Is(err, order.ErrEmptyItems),
		errors.Is(err, order.ErrEmptyClientName),
		errors.Is(err, product.ErrEmptyName),
		errors.Is(err, product.ErrEmptySKU),
		errors.Is(err, product.ErrNegativePrice),
		errors.Is(err, product.ErrEmptyImage):
		return http.StatusUnprocessableEntity, true
	case errors.Is(err, product.ErrSKUExists):
		return http.StatusConflict, true
	case errors.Is(err, objectstore.ErrStorage):
		return http.StatusBadGateway, true
	case errors.Is(err, auth.ErrUnauthorized):
		return http.StatusUnauthorized, true
	}
	return 0, false
}
