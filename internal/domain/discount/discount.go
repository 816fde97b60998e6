// Package discount implements the promotional pricing engine: an ordered
// chain of independent rules applied to an order, each consuming the running
// subtotal left by the previous rule.
package discount

import (
	"github.com/shopspring/decimal"

	"github.com/xenking/promo-orders/internal/domain/order"
)

// Result is one itemized discount produced by a single rule application.
// Amounts serialize as decimal strings on the API boundary.
type Result struct {
	Reason         string          `json:"discountReason"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	NewSubtotal    decimal.Decimal `json:"subtotal"`
}

// Rule is a single promotional condition. Apply receives the order with its
// items and each item's product eager-loaded, plus the subtotal remaining
// after all prior rules. It returns nil when the rule does not fire. Rules
// never mutate the order.
type Rule interface {
	Apply(o *order.Order, subtotal decimal.Decimal) *Result
	Reason() string
}

// DefaultRules returns the rule chain in its fixed evaluation order. The
// order is significant: each rule sees the subtotal as reduced by the rules
// before it.
func DefaultRules() []Rule {
	return []Rule{
		NewCategoryQuantity(),
		NewCategoryMultipleItems(),
		NewTotalAmount(),
	}
}
