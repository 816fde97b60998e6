package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/promo-orders/internal/domain/order"
)

type createOrderRequest struct {
	CustomerID int64                    `json:"customer_id"`
	Items      []createOrderItemRequest `json:"items"`
}

type createOrderItemRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListOrders(r.Context())
	if err != nil {
		zctx.From(r.Context()).Error("list orders", zap.Error(err))
		respondError(w, r, http.StatusInternalServerError, "Could not list orders")
		return
	}

	resp := make([]*orderResponse, len(orders))
	for i := range orders {
		resp[i] = toOrderResponse(&orders[i])
	}
	respondSuccess(w, r, http.StatusOK, "Success", resp)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		respondError(w, r, http.StatusNotFound, "Order not found")
		return
	}

	o, err := h.orders.GetOrder(r.Context(), id)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			respondError(w, r, http.StatusNotFound, "Order not found")
			return
		}
		zctx.From(r.Context()).Error("get order", zap.Int64("order_id", id), zap.Error(err))
		respondError(w, r, http.StatusInternalServerError, "Could not load order")
		return
	}
	respondSuccess(w, r, http.StatusOK, "Success", toOrderResponse(o))
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	lines := make([]order.LineInput, len(req.Items))
	for i, item := range req.Items {
		lines[i] = order.LineInput{ProductID: item.ProductID, Quantity: item.Quantity}
	}

	o, err := h.orders.CreateOrder(r.Context(), req.CustomerID, lines)
	if err != nil {
		var verr *order.ValidationError
		if errors.As(err, &verr) {
			respondValidation(w, r, verr.Message, map[string]string{verr.Field: verr.Message})
			return
		}
		zctx.From(r.Context()).Error("create order", zap.Error(err))
		respondError(w, r, http.StatusBadRequest, "Could not create order")
		return
	}
	respondSuccess(w, r, http.StatusCreated, "Order created successfully", toOrderResponse(o))
}

func (h *Handler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		respondError(w, r, http.StatusNotFound, "Order not found")
		return
	}

	deleted, err := h.orders.DeleteOrder(r.Context(), id)
	if err != nil {
		zctx.From(r.Context()).Error("delete order", zap.Int64("order_id", id), zap.Error(err))
		respondError(w, r, http.StatusInternalServerError, "Could not delete order")
		return
	}
	if !deleted {
		respondError(w, r, http.StatusNotFound, "Order not found")
		return
	}
	respondSuccess(w, r, http.StatusOK, "Order deleted successfully", nil)
}
