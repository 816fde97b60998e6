package order

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/promo-orders/internal/domain/customer"
	"github.com/xenking/promo-orders/internal/domain/product"
)

// TxRunner executes fn inside a single storage transaction. Repository calls
// made with the context passed to fn share that transaction; any error from
// fn rolls the whole unit back.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// LineInput is one requested order line.
type LineInput struct {
	ProductID int64
	Quantity  int
}

// Service encapsulates the order assembly business logic: validation, the
// transactional creation path with stock decrement and customer revenue
// accrual, and existence-checked deletion.
type Service struct {
	orders    Repository
	products  product.Repository
	customers customer.Repository
	tx        TxRunner
}

// NewService creates an order Service with the required domain dependencies.
func NewService(
	orders Repository,
	products product.Repository,
	customers customer.Repository,
	tx TxRunner,
) *Service {
	return &Service{
		orders:    orders,
		products:  products,
		customers: customers,
		tx:        tx,
	}
}

// ListOrders returns every order with relations eager-loaded.
func (s *Service) ListOrders(ctx context.Context) ([]Order, error) {
	return s.orders.ListWithRelations(ctx)
}

// GetOrder returns one order with relations eager-loaded, or ErrNotFound.
func (s *Service) GetOrder(ctx context.Context, id int64) (*Order, error) {
	return s.orders.FindWithRelations(ctx, id)
}

// CreateOrder validates the request and, inside one transaction, creates the
// order with price-snapshot items, decrements product stock, and accrues the
// total onto the customer's revenue. All validation happens before any write,
// so a ValidationError is always side-effect free. Any later failure rolls
// the whole unit back.
func (s *Service) CreateOrder(ctx context.Context, customerID int64, lines []LineInput) (*Order, error) {
	if len(lines) == 0 {
		return nil, &ValidationError{Field: "items", Message: "At least one item is required."}
	}
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, &ValidationError{
				Field:   "items",
				Message: fmt.Sprintf("Quantity must be greater than 0 for product %d.", line.ProductID),
			}
		}
	}

	var created *Order
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.customers.Find(ctx, customerID); err != nil {
			if errors.Is(err, customer.ErrNotFound) {
				return &ValidationError{Field: "customer_id", Message: "The selected customer does not exist."}
			}
			return errors.Wrap(err, "find customer")
		}

		// Stock checks lock the product rows for the rest of the transaction,
		// so a concurrent order on the same product cannot slip between the
		// check and the decrement.
		for _, line := range lines {
			ok, err := s.products.HasEnoughStock(ctx, line.ProductID, line.Quantity)
			if err != nil {
				return errors.Wrapf(err, "check stock for product %d", line.ProductID)
			}
			if ok {
				continue
			}
			p, err := s.products.Find(ctx, line.ProductID)
			if err != nil {
				if errors.Is(err, product.ErrNotFound) {
					return &ValidationError{
						Field:   "items",
						Message: fmt.Sprintf("The selected product %d does not exist.", line.ProductID),
					}
				}
				return errors.Wrapf(err, "find product %d", line.ProductID)
			}
			return &ValidationError{
				Field:   "items",
				Message: fmt.Sprintf("The product '%s' does not have enough stock.", p.Name),
			}
		}

		o := &Order{CustomerID: customerID, Total: decimal.Zero}
		if err := s.orders.Create(ctx, o); err != nil {
			return errors.Wrap(err, "create order")
		}

		total := decimal.Zero
		for _, line := range lines {
			p, err := s.products.Find(ctx, line.ProductID)
			if err != nil {
				return errors.Wrapf(err, "find product %d", line.ProductID)
			}

			lineTotal := p.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
			item := &Item{
				OrderID:   o.ID,
				ProductID: p.ID,
				Quantity:  line.Quantity,
				UnitPrice: p.Price,
				Total:     lineTotal,
			}
			if err := s.orders.CreateItem(ctx, item); err != nil {
				return errors.Wrapf(err, "create item for product %d", p.ID)
			}

			ok, err := s.products.UpdateStock(ctx, p.ID, line.Quantity)
			if err != nil {
				return errors.Wrapf(err, "decrement stock for product %d", p.ID)
			}
			if !ok {
				return errors.Errorf("stock for product %q changed during checkout", p.Name)
			}

			total = total.Add(lineTotal)
		}

		if ok, err := s.orders.UpdateTotal(ctx, o.ID, total); err != nil {
			return errors.Wrap(err, "update order total")
		} else if !ok {
			return errors.Errorf("order %d vanished during checkout", o.ID)
		}

		if ok, err := s.customers.AddRevenue(ctx, customerID, total); err != nil {
			return errors.Wrap(err, "accrue customer revenue")
		} else if !ok {
			return errors.Errorf("customer %d vanished during checkout", customerID)
		}

		loaded, err := s.orders.FindWithRelations(ctx, o.ID)
		if err != nil {
			return errors.Wrap(err, "load created order")
		}
		created = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// DeleteOrder removes an order and its items. A missing order is reported as
// false, not as an error.
func (s *Service) DeleteOrder(ctx context.Context, id int64) (bool, error) {
	return s.orders.Delete(ctx, id)
}
