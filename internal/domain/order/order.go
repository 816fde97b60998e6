package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/promo-orders/internal/domain/customer"
	"github.com/xenking/promo-orders/internal/domain/product"
)

// ErrNotFound is returned when a requested order does not exist.
var ErrNotFound = errors.New("order not found")

// Order is a customer purchase. Total is fixed at creation time as the sum
// of the item line totals and is never recomputed afterwards.
type Order struct {
	ID         int64
	CustomerID int64
	Total      decimal.Decimal
	CreatedAt  time.Time

	// Populated by the eager-loading queries.
	Items    []Item
	Customer *customer.Customer
}

// Item is a single order line. UnitPrice is a snapshot of the product price
// at the moment the order was placed and does not drift with later catalog
// price changes.
type Item struct {
	ID        int64
	OrderID   int64
	ProductID int64
	Quantity  int
	UnitPrice decimal.Decimal
	Total     decimal.Decimal

	// Populated by the eager-loading queries.
	Product *product.Product
}

// ValidationError is a business-rule rejection detected before any write
// happens. Field names the request field the message belongs to.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Repository defines persistence operations for orders and their items.
type Repository interface {
	// ListWithRelations returns all orders with items, each item's product,
	// and the owning customer eager-loaded.
	ListWithRelations(ctx context.Context) ([]Order, error)
	// FindWithRelations returns one order eager-loaded the same way, or
	// ErrNotFound.
	FindWithRelations(ctx context.Context, id int64) (*Order, error)
	// Create inserts the order shell and fills in ID and CreatedAt.
	Create(ctx context.Context, o *Order) error
	// CreateItem inserts one order line and fills in its ID.
	CreateItem(ctx context.Context, item *Item) error
	UpdateTotal(ctx context.Context, id int64, total decimal.Decimal) (bool, error)
	// Delete removes the order and, by cascade, its items. Returns false
	// when the order does not exist.
	Delete(ctx context.Context, id int64) (bool, error)
}
