package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/xenking/promo-orders/internal/domain/customer"
	"github.com/xenking/promo-orders/internal/domain/order"
	"github.com/xenking/promo-orders/internal/domain/product"
)

// Response DTOs. Monetary fields are decimal.Decimal, which serializes as a
// quoted decimal string.

type customerResponse struct {
	ID      int64           `json:"id"`
	Name    string          `json:"name"`
	Since   time.Time       `json:"since"`
	Revenue decimal.Decimal `json:"revenue"`
}

type productResponse struct {
	ID         int64           `json:"id"`
	SKU        string          `json:"sku"`
	Name       string          `json:"name"`
	CategoryID int64           `json:"category_id"`
	Price      decimal.Decimal `json:"price"`
	Stock      int             `json:"stock"`
}

type orderItemResponse struct {
	ID        int64            `json:"id"`
	OrderID   int64            `json:"order_id"`
	ProductID int64            `json:"product_id"`
	Quantity  int              `json:"quantity"`
	UnitPrice decimal.Decimal  `json:"unit_price"`
	Total     decimal.Decimal  `json:"total"`
	Product   *productResponse `json:"product,omitempty"`
}

type orderResponse struct {
	ID         int64               `json:"id"`
	CustomerID int64               `json:"customer_id"`
	Total      decimal.Decimal     `json:"total"`
	CreatedAt  time.Time           `json:"created_at"`
	Customer   *customerResponse   `json:"customer,omitempty"`
	Items      []orderItemResponse `json:"items"`
}

func toCustomerResponse(c *customer.Customer) *customerResponse {
	if c == nil {
		return nil
	}
	return &customerResponse{ID: c.ID, Name: c.Name, Since: c.Since, Revenue: c.Revenue}
}

func toProductResponse(p *product.Product) *productResponse {
	if p == nil {
		return nil
	}
	return &productResponse{
		ID:         p.ID,
		SKU:        p.SKU,
		Name:       p.Name,
		CategoryID: p.CategoryID,
		Price:      p.Price,
		Stock:      p.Stock,
	}
}

func toOrderResponse(o *order.Order) *orderResponse {
	items := make([]orderItemResponse, len(o.Items))
	for i := range o.Items {
		item := &o.Items[i]
		items[i] = orderItemResponse{
			ID:        item.ID,
			OrderID:   item.OrderID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Total:     item.Total,
			Product:   toProductResponse(item.Product),
		}
	}
	return &orderResponse{
		ID:         o.ID,
		CustomerID: o.CustomerID,
		Total:      o.Total,
		CreatedAt:  o.CreatedAt,
		Customer:   toCustomerResponse(o.Customer),
		Items:      items,
	}
}
