package discount

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/promo-orders/internal/domain/order"
	"github.com/xenking/promo-orders/internal/domain/product"
)

// --- Helpers ---

func newItem(categoryID int64, unitPrice string, quantity int) order.Item {
	price := decimal.RequireFromString(unitPrice)
	return order.Item{
		Quantity:  quantity,
		UnitPrice: price,
		Total:     price.Mul(decimal.NewFromInt(int64(quantity))),
		Product:   &product.Product{CategoryID: categoryID, Price: price},
	}
}

func newOrder(items ...order.Item) *order.Order {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Total)
	}
	return &order.Order{ID: 1, Total: total, Items: items}
}

func assertDecimalEqual(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got),
		"want %s, got %s", want, got.String())
}

// --- CategoryQuantity ---

func TestCategoryQuantity_BelowBatchSize(t *testing.T) {
	o := newOrder(newItem(product.CategoryElectrical, "10.00", 5))
	res := NewCategoryQuantity().Apply(o, o.Total)
	assert.Nil(t, res)
}

func TestCategoryQuantity_OneFreeUnit(t *testing.T) {
	o := newOrder(newItem(product.CategoryElectrical, "10.00", 6))

	res := NewCategoryQuantity().Apply(o, o.Total)

	require.NotNil(t, res)
	assert.Equal(t, ReasonBuyFiveGetOne, res.Reason)
	assertDecimalEqual(t, "10.00", res.DiscountAmount)
	assertDecimalEqual(t, "50.00", res.NewSubtotal)
}

func TestCategoryQuantity_FreeUnitsScaleWithBatches(t *testing.T) {
	tests := []struct {
		name     string
		quantity int
		want     string
	}{
		{"eleven units one batch", 11, "10.00"},
		{"twelve units two batches", 12, "20.00"},
		{"seventeen units two batches", 17, "20.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := newOrder(newItem(product.CategoryElectrical, "10.00", tt.quantity))
			res := NewCategoryQuantity().Apply(o, o.Total)
			require.NotNil(t, res)
			assertDecimalEqual(t, tt.want, res.DiscountAmount)
		})
	}
}

func TestCategoryQuantity_IgnoresOtherCategories(t *testing.T) {
	o := newOrder(newItem(product.CategoryTools, "10.00", 12))
	res := NewCategoryQuantity().Apply(o, o.Total)
	assert.Nil(t, res)
}

func TestCategoryQuantity_SumsPerItemRoundedDiscounts(t *testing.T) {
	o := newOrder(
		newItem(product.CategoryElectrical, "3.333", 6),
		newItem(product.CategoryElectrical, "7.777", 12),
	)

	res := NewCategoryQuantity().Apply(o, o.Total)

	// 3.333*1 -> 3.33 and 7.777*2 -> 15.55, rounded independently.
	require.NotNil(t, res)
	assertDecimalEqual(t, "18.88", res.DiscountAmount)
}

// --- CategoryMultipleItems ---

func TestCategoryMultipleItems_SingleToolsLine(t *testing.T) {
	o := newOrder(
		newItem(product.CategoryTools, "10.00", 3),
		newItem(product.CategoryElectrical, "5.00", 1),
	)
	res := NewCategoryMultipleItems().Apply(o, o.Total)
	assert.Nil(t, res)
}

func TestCategoryMultipleItems_CheapestLineGetsTwentyOff(t *testing.T) {
	o := newOrder(
		newItem(product.CategoryTools, "10.00", 1),
		newItem(product.CategoryTools, "8.00", 3),
	)

	res := NewCategoryMultipleItems().Apply(o, o.Total)

	// Cheapest unit price is 8.00, its line value 24.00, 20% off is 4.80.
	require.NotNil(t, res)
	assert.Equal(t, ReasonCategoryOneTwentyOff, res.Reason)
	assertDecimalEqual(t, "4.80", res.DiscountAmount)
	assertDecimalEqual(t, "29.20", res.NewSubtotal)
}

func TestCategoryMultipleItems_TieBreaksOnFirstLine(t *testing.T) {
	o := newOrder(
		newItem(product.CategoryTools, "10.00", 5),
		newItem(product.CategoryTools, "10.00", 1),
	)

	res := NewCategoryMultipleItems().Apply(o, o.Total)

	// Equal unit prices: the first line (quantity 5, value 50.00) wins.
	require.NotNil(t, res)
	assertDecimalEqual(t, "10.00", res.DiscountAmount)
}

func TestCategoryMultipleItems_IgnoresNonToolsLines(t *testing.T) {
	o := newOrder(
		newItem(product.CategoryTools, "10.00", 1),
		newItem(product.CategoryElectrical, "1.00", 1),
		newItem(product.CategoryElectrical, "2.00", 1),
	)
	res := NewCategoryMultipleItems().Apply(o, o.Total)
	assert.Nil(t, res)
}

// --- TotalAmount ---

func TestTotalAmount_BelowThreshold(t *testing.T) {
	o := newOrder(newItem(product.CategoryTools, "999.99", 1))
	res := NewTotalAmount().Apply(o, o.Total)
	assert.Nil(t, res)
}

func TestTotalAmount_AtThreshold(t *testing.T) {
	o := newOrder(newItem(product.CategoryTools, "1000.00", 1))

	res := NewTotalAmount().Apply(o, o.Total)

	require.NotNil(t, res)
	assert.Equal(t, ReasonTenPercentOverThousand, res.Reason)
	assertDecimalEqual(t, "100.00", res.DiscountAmount)
	assertDecimalEqual(t, "900.00", res.NewSubtotal)
}

func TestTotalAmount_UsesRunningSubtotalNotOrderTotal(t *testing.T) {
	o := newOrder(newItem(product.CategoryTools, "1050.00", 1))

	// A prior rule already brought the subtotal under the threshold.
	res := NewTotalAmount().Apply(o, decimal.RequireFromString("990.00"))

	assert.Nil(t, res)
}
