package product

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Well-known category IDs consumed by the discount rules. Products in other
// categories carry no special pricing behaviour.
const (
	CategoryTools      int64 = 1
	CategoryElectrical int64 = 2
)

// Category classifies products. It exists purely as a grouping key for the
// discount rules.
type Category struct {
	ID   int64
	Name string
}

// Product is a catalog item available for purchase.
type Product struct {
	ID         int64
	SKU        string
	Name       string
	CategoryID int64
	Price      decimal.Decimal
	Stock      int
}

// Repository defines persistence operations for the product catalog.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	Find(ctx context.Context, id int64) (*Product, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
	// HasEnoughStock reports whether the product exists and has at least
	// quantity units in stock. Inside a transaction the underlying row stays
	// locked until commit.
	HasEnoughStock(ctx context.Context, id int64, quantity int) (bool, error)
	// UpdateStock decrements the product's stock by quantity. Returns false
	// when the product is missing or the decrement would drive stock negative.
	UpdateStock(ctx context.Context, id int64, quantity int) (bool, error)
}
