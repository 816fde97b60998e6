package discount

import (
	"github.com/shopspring/decimal"

	"github.com/xenking/promo-orders/internal/domain/order"
	"github.com/xenking/promo-orders/internal/domain/product"
)

// ReasonBuyFiveGetOne tags the "buy 5 get 1 free" discount on Electrical items.
const ReasonBuyFiveGetOne = "BUY_5_GET_1"

// freeUnitBatch is the quantity that earns one free unit.
const freeUnitBatch = 6

// CategoryQuantity grants one free unit for every complete batch of six units
// on a single Electrical (category 2) line item. Discounts for qualifying
// items are rounded independently and summed.
type CategoryQuantity struct{}

// NewCategoryQuantity returns the category-quantity rule.
func NewCategoryQuantity() *CategoryQuantity {
	return &CategoryQuantity{}
}

func (r *CategoryQuantity) Apply(o *order.Order, subtotal decimal.Decimal) *Result {
	amount := decimal.Zero
	for i := range o.Items {
		item := &o.Items[i]
		if item.Product == nil || item.Product.CategoryID != product.CategoryElectrical {
			continue
		}
		if item.Quantity < freeUnitBatch {
			continue
		}
		freeUnits := int64(item.Quantity / freeUnitBatch)
		amount = amount.Add(item.UnitPrice.Mul(decimal.NewFromInt(freeUnits)).Round(2))
	}

	if !amount.IsPositive() {
		return nil
	}
	return &Result{
		Reason:         r.Reason(),
		DiscountAmount: amount,
		NewSubtotal:    subtotal.Sub(amount),
	}
}

func (r *CategoryQuantity) Reason() string {
	return ReasonBuyFiveGetOne
}
