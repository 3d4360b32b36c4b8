package httpapi

import "net/http"

// lastMonthTotal returns the sum of order totals in the trailing 30-day
// window, zero when no orders match.
func (h *Handler) lastMonthTotal(w http.ResponseWriter, r *http.Request) {
	total, err := h.reports.LastMonthTotal(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTotalResponse(total))
}

// highestOrder returns the order with the maximum total ever placed.
func (h *Handler) highestOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.reports.HighestOrder(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}
