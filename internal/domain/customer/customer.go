package customer

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested customer does not exist.
var ErrNotFound = errors.New("customer not found")

// Customer is a buyer. Revenue accumulates the totals of every order the
// customer places and never decreases under normal operation.
type Customer struct {
	ID      int64
	Name    string
	Since   time.Time
	Revenue decimal.Decimal
}

// Repository defines persistence operations for customers.
type Repository interface {
	List(ctx context.Context) ([]Customer, error)
	Find(ctx context.Context, id int64) (*Customer, error)
	Create(ctx context.Context, c *Customer) error
	Update(ctx context.Context, c *Customer) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
	// AddRevenue atomically increments the customer's cumulative revenue.
	// Returns false when the customer does not exist.
	AddRevenue(ctx context.Context, id int64, amount decimal.Decimal) (bool, error)
}
