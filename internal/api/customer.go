package api

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/promo-orders/internal/domain/customer"
)

func (h *Handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.customers.List(r.Context())
	if err != nil {
		zctx.From(r.Context()).Error("list customers", zap.Error(err))
		respondError(w, r, http.StatusInternalServerError, "Could not list customers")
		return
	}

	resp := make([]*customerResponse, len(customers))
	for i := range customers {
		resp[i] = toCustomerResponse(&customers[i])
	}
	respondSuccess(w, r, http.StatusOK, "Success", resp)
}

func (h *Handler) getCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		respondError(w, r, http.StatusNotFound, "Customer not found")
		return
	}

	c, err := h.customers.Find(r.Context(), id)
	if err != nil {
		if errors.Is(err, customer.ErrNotFound) {
			respondError(w, r, http.StatusNotFound, "Customer not found")
			return
		}
		zctx.From(r.Context()).Error("get customer", zap.Int64("customer_id", id), zap.Error(err))
		respondError(w, r, http.StatusInternalServerError, "Could not load customer")
		return
	}
	respondSuccess(w, r, http.StatusOK, "Success", toCustomerResponse(c))
}
