package discount

import (
	"github.com/shopspring/decimal"

	"github.com/xenking/promo-orders/internal/domain/order"
)

// ReasonTenPercentOverThousand tags the order-total threshold discount.
const ReasonTenPercentOverThousand = "10_PERCENT_OVER_1000"

var (
	totalThreshold = decimal.NewFromInt(1000)
	tenPercent     = decimal.RequireFromString("0.1")
)

// TotalAmount discounts 10% of the subtotal when it is at or above 1000. The
// threshold is checked against the subtotal as reduced by prior rules, not
// the original order total.
type TotalAmount struct{}

// NewTotalAmount returns the total-amount rule.
func NewTotalAmount() *TotalAmount {
	return &TotalAmount{}
}

func (r *TotalAmount) Apply(_ *order.Order, subtotal decimal.Decimal) *Result {
	if subtotal.LessThan(totalThreshold) {
		return nil
	}
	amount := subtotal.Mul(tenPercent).Round(2)
	return &Result{
		Reason:         r.Reason(),
		DiscountAmount: amount,
		NewSubtotal:    subtotal.Sub(amount),
	}
}

func (r *TotalAmount) Reason() string {
	return ReasonTenPercentOverThousand
}
