package discount

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/xenking/promo-orders/internal/domain/order"
)

// Summary is the full discount breakdown for one order.
type Summary struct {
	OrderID         int64           `json:"orderId"`
	Discounts       []Result        `json:"discounts"`
	TotalDiscount   decimal.Decimal `json:"totalDiscount"`
	DiscountedTotal decimal.Decimal `json:"discountedTotal"`
}

// Engine threads an order's total through the registered rule chain. The
// rule list is fixed at construction; Register appends to it. Rules are
// sequential and order-sensitive: each sees the subtotal left by its
// predecessors, and every rule is evaluated even when earlier rules fired.
type Engine struct {
	orders order.Repository
	rules  []Rule
}

// NewEngine creates an Engine over the given repository and rule chain.
func NewEngine(orders order.Repository, rules ...Rule) *Engine {
	return &Engine{orders: orders, rules: rules}
}

// Register appends a rule to the end of the chain.
func (e *Engine) Register(r Rule) {
	e.rules = append(e.rules, r)
}

// CalculateDiscounts eager-loads the order in a single consistent read and
// applies every rule in registration order. It is a pure read path: calling
// it twice on an unchanged order yields identical results. Returns
// order.ErrNotFound when the order does not exist.
func (e *Engine) CalculateDiscounts(ctx context.Context, orderID int64) (*Summary, error) {
	o, err := e.orders.FindWithRelations(ctx, orderID)
	if err != nil {
		return nil, err
	}

	subtotal := o.Total
	totalDiscount := decimal.Zero
	discounts := make([]Result, 0, len(e.rules))

	for _, rule := range e.rules {
		res := rule.Apply(o, subtotal)
		if res == nil {
			continue
		}
		discounts = append(discounts, *res)
		subtotal = res.NewSubtotal
		totalDiscount = totalDiscount.Add(res.DiscountAmount)
	}

	return &Summary{
		OrderID:         o.ID,
		Discounts:       discounts,
		TotalDiscount:   totalDiscount.Round(2),
		DiscountedTotal: subtotal.Round(2),
	}, nil
}
