package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/xenking/orderdesk/internal/domain/order"
)

type orderItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type createOrderRequest struct {
	ClientName string             `json:"clientName"`
	Items      []orderItemRequest `json:"items"`
}

// updateOrderRequest is a partial patch. Pointer fields distinguish an
// absent field from an explicitly empty one.
type updateOrderRequest struct {
	ClientName *string             `json:"clientName"`
	Items      *[]orderItemRequest `json:"items"`
}

// createOrder places a new order for the authenticated user.
func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	o, err := h.orders.Create(r.Context(), order.CreateRequest{
		ClientName: req.ClientName,
		Items:      toItemRequests(req.Items),
		CreatedBy:  UserIDFromContext(r.Context()),
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toOrderResponse(o))
}

// getOrder returns a single order by ID.
func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

// updateOrder applies a partial patch to an order. An empty clientName is
// rejected here, before the domain call, so the service can apply a present
// clientName unconditionally.
func (h *Handler) updateOrder(w http.ResponseWriter, r *http.Request) {
	var req updateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ClientName != nil && *req.ClientName == "" {
		writeError(w, http.StatusUnprocessableEntity, "clientName must not be empty")
		return
	}

	patch := order.UpdateRequest{ClientName: req.ClientName}
	if req.Items != nil {
		// A present-but-empty list is a full replacement request and is
		// rejected by the service, same as an empty create.
		patch.Items = make([]order.ItemRequest, 0, len(*req.Items))
		for _, it := range *req.Items {
			patch.Items = append(patch.Items, order.ItemRequest{
				ProductID: it.ProductID,
				Quantity:  it.Quantity,
			})
		}
	}

	o, err := h.orders.Update(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

func toItemRequests(items []orderItemRequest) []order.ItemRequest {
	out := make([]order.ItemRequest, len(items))
	for i, it := range items {
		out[i] = order.ItemRequest{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
		}
	}
	return out
}
