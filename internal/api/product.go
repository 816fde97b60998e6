package api

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/promo-orders/internal/domain/product"
)

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		zctx.From(r.Context()).Error("list products", zap.Error(err))
		respondError(w, r, http.StatusInternalServerError, "Could not list products")
		return
	}

	resp := make([]*productResponse, len(products))
	for i := range products {
		resp[i] = toProductResponse(&products[i])
	}
	respondSuccess(w, r, http.StatusOK, "Success", resp)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		respondError(w, r, http.StatusNotFound, "Product not found")
		return
	}

	p, err := h.products.Find(r.Context(), id)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			respondError(w, r, http.StatusNotFound, "Product not found")
			return
		}
		zctx.From(r.Context()).Error("get product", zap.Int64("product_id", id), zap.Error(err))
		respondError(w, r, http.StatusInternalServerError, "Could not load product")
		return
	}
	respondSuccess(w, r, http.StatusOK, "Success", toProductResponse(p))
}
