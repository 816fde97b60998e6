package api

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/promo-orders/internal/domain/order"
)

func (h *Handler) calculateDiscounts(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		respondError(w, r, http.StatusNotFound, "Order not found")
		return
	}

	summary, err := h.discounts.CalculateDiscounts(r.Context(), id)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			respondError(w, r, http.StatusNotFound, "Order not found")
			return
		}
		zctx.From(r.Context()).Error("calculate discounts", zap.Int64("order_id", id), zap.Error(err))
		respondError(w, r, http.StatusInternalServerError, "Could not calculate discounts")
		return
	}
	respondSuccess(w, r, http.StatusOK, "Success", summary)
}
