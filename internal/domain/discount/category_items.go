package discount

import (
	"github.com/shopspring/decimal"

	"github.com/xenking/promo-orders/internal/domain/order"
	"github.com/xenking/promo-orders/internal/domain/product"
)

// ReasonCategoryOneTwentyOff tags the cheapest-Tools-item discount.
const ReasonCategoryOneTwentyOff = "CATEGORY_1_20_PERCENT_OFF"

var twentyPercent = decimal.RequireFromString("0.2")

// CategoryMultipleItems fires when an order holds two or more distinct Tools
// (category 1) line items: the line with the lowest unit price gets 20% off
// its full line value. On a unit-price tie the first line encountered wins.
type CategoryMultipleItems struct{}

// NewCategoryMultipleItems returns the category-multiple-items rule.
func NewCategoryMultipleItems() *CategoryMultipleItems {
	return &CategoryMultipleItems{}
}

func (r *CategoryMultipleItems) Apply(o *order.Order, subtotal decimal.Decimal) *Result {
	var cheapest *order.Item
	count := 0
	for i := range o.Items {
		item := &o.Items[i]
		if item.Product == nil || item.Product.CategoryID != product.CategoryTools {
			continue
		}
		count++
		if cheapest == nil || item.UnitPrice.LessThan(cheapest.UnitPrice) {
			cheapest = item
		}
	}

	if count < 2 {
		return nil
	}

	lineValue := cheapest.UnitPrice.Mul(decimal.NewFromInt(int64(cheapest.Quantity)))
	amount := lineValue.Mul(twentyPercent).Round(2)
	return &Result{
		Reason:         r.Reason(),
		DiscountAmount: amount,
		NewSubtotal:    subtotal.Sub(amount),
	}
}

func (r *CategoryMultipleItems) Reason() string {
	return ReasonCategoryOneTwentyOff
}
