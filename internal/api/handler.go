// Package api exposes the HTTP surface: routing, request decoding, and the
// response envelopes the service answers with.
package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/xenking/promo-orders/internal/domain/customer"
	"github.com/xenking/promo-orders/internal/domain/discount"
	"github.com/xenking/promo-orders/internal/domain/order"
	"github.com/xenking/promo-orders/internal/domain/product"
)

// Handler delegates every endpoint to the injected services and repositories
// and maps results to response envelopes.
type Handler struct {
	orders    *order.Service
	discounts *discount.Engine
	products  product.Repository
	customers customer.Repository
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	orders *order.Service,
	discounts *discount.Engine,
	products product.Repository,
	customers customer.Repository,
) *Handler {
	return &Handler{
		orders:    orders,
		discounts: discounts,
		products:  products,
		customers: customers,
	}
}

// Routes builds the API router.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Route("/orders", func(r chi.Router) {
		r.Get("/", h.listOrders)
		r.Post("/", h.createOrder)
		r.Get("/{id}", h.getOrder)
		r.Delete("/{id}", h.deleteOrder)
		r.Get("/{id}/discounts", h.calculateDiscounts)
	})

	r.Route("/customers", func(r chi.Router) {
		r.Get("/", h.listCustomers)
		r.Get("/{id}", h.getCustomer)
	})

	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.listProducts)
		r.Get("/{id}", h.getProduct)
	})

	return r
}

// idParam parses the {id} route parameter. Non-numeric IDs behave like
// missing resources.
func idParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}
