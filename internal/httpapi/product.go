package httpapi

import (
	"io"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/xenking/orderdesk/internal/domain/product"
)

// createProduct registers a product from a multipart form with fields
// name, sku, price and a file part named image.
func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	price, err := decimal.NewFromString(r.FormValue("price"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid price")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "image file is required")
		return
	}
	defer file.Close()

	image, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "reading image file")
		return
	}

	p, err := h.products.Create(r.Context(), product.CreateRequest{
		Name:        r.FormValue("name"),
		SKU:         r.FormValue("sku"),
		Price:       price,
		Image:       image,
		ContentType: header.Header.Get("Content-Type"),
		Filename:    header.Filename,
		CreatedBy:   UserIDFromContext(r.Context()),
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toProductResponse(p))
}

// listProducts returns every product in the catalog.
func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	out := make([]productResponse, len(products))
	for i := range products {
		out[i] = toProductResponse(&products[i])
	}
	writeJSON(w, http.StatusOK, out)
}

// getProduct returns a single product by ID.
func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(p))
}
