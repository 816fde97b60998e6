package order

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/promo-orders/internal/domain/customer"
	"github.com/xenking/promo-orders/internal/domain/product"
)

// --- Mock implementations ---

type mockCustomerRepo struct {
	byID    map[int64]*customer.Customer
	revenue map[int64]decimal.Decimal
}

func (m *mockCustomerRepo) List(_ context.Context) ([]customer.Customer, error) { return nil, nil }

func (m *mockCustomerRepo) Find(_ context.Context, id int64) (*customer.Customer, error) {
	c, ok := m.byID[id]
	if !ok {
		return nil, customer.ErrNotFound
	}
	return c, nil
}

func (m *mockCustomerRepo) Create(_ context.Context, _ *customer.Customer) error { return nil }

func (m *mockCustomerRepo) Update(_ context.Context, _ *customer.Customer) (bool, error) {
	return true, nil
}

func (m *mockCustomerRepo) Delete(_ context.Context, _ int64) (bool, error) { return true, nil }

func (m *mockCustomerRepo) AddRevenue(_ context.Context, id int64, amount decimal.Decimal) (bool, error) {
	if _, ok := m.byID[id]; !ok {
		return false, nil
	}
	if m.revenue == nil {
		m.revenue = make(map[int64]decimal.Decimal)
	}
	m.revenue[id] = m.revenue[id].Add(amount)
	return true, nil
}

type mockProductRepo struct {
	byID map[int64]*product.Product
}

func (m *mockProductRepo) List(_ context.Context) ([]product.Product, error) { return nil, nil }

func (m *mockProductRepo) Find(_ context.Context, id int64) (*product.Product, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	return p, nil
}

func (m *mockProductRepo) Create(_ context.Context, _ *product.Product) error { return nil }

func (m *mockProductRepo) Update(_ context.Context, _ *product.Product) (bool, error) {
	return true, nil
}

func (m *mockProductRepo) Delete(_ context.Context, _ int64) (bool, error) { return true, nil }

func (m *mockProductRepo) HasEnoughStock(_ context.Context, id int64, quantity int) (bool, error) {
	p, ok := m.byID[id]
	return ok && p.Stock >= quantity, nil
}

func (m *mockProductRepo) UpdateStock(_ context.Context, id int64, quantity int) (bool, error) {
	p, ok := m.byID[id]
	if !ok || p.Stock < quantity {
		return false, nil
	}
	p.Stock -= quantity
	return true, nil
}

type mockOrderRepo struct {
	nextID  int64
	orders  map[int64]*Order
	items   map[int64][]Item
	deleted []int64
}

func newMockOrderRepo() *mockOrderRepo {
	return &mockOrderRepo{
		nextID: 1,
		orders: make(map[int64]*Order),
		items:  make(map[int64][]Item),
	}
}

func (m *mockOrderRepo) ListWithRelations(_ context.Context) ([]Order, error) { return nil, nil }

func (m *mockOrderRepo) FindWithRelations(_ context.Context, id int64) (*Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	loaded := *o
	loaded.Items = m.items[id]
	return &loaded, nil
}

func (m *mockOrderRepo) Create(_ context.Context, o *Order) error {
	o.ID = m.nextID
	m.nextID++
	stored := *o
	m.orders[o.ID] = &stored
	return nil
}

func (m *mockOrderRepo) CreateItem(_ context.Context, item *Item) error {
	item.ID = m.nextID
	m.nextID++
	m.items[item.OrderID] = append(m.items[item.OrderID], *item)
	return nil
}

func (m *mockOrderRepo) UpdateTotal(_ context.Context, id int64, total decimal.Decimal) (bool, error) {
	o, ok := m.orders[id]
	if !ok {
		return false, nil
	}
	o.Total = total
	return true, nil
}

func (m *mockOrderRepo) Delete(_ context.Context, id int64) (bool, error) {
	if _, ok := m.orders[id]; !ok {
		return false, nil
	}
	delete(m.orders, id)
	delete(m.items, id)
	m.deleted = append(m.deleted, id)
	return true, nil
}

// mockTxRunner just runs fn; rollbacks are asserted by checking that no
// repository writes happened before the error.
type mockTxRunner struct {
	calls int
}

func (m *mockTxRunner) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	return fn(ctx)
}

// --- Helpers ---

func newTestProduct(id int64, name string, price string, stock int) *product.Product {
	return &product.Product{
		ID:         id,
		SKU:        name,
		Name:       name,
		CategoryID: product.CategoryTools,
		Price:      decimal.RequireFromString(price),
		Stock:      stock,
	}
}

type fixture struct {
	svc       *Service
	orders    *mockOrderRepo
	products  *mockProductRepo
	customers *mockCustomerRepo
	tx        *mockTxRunner
}

func newFixture(products ...*product.Product) *fixture {
	byID := make(map[int64]*product.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	f := &fixture{
		orders:   newMockOrderRepo(),
		products: &mockProductRepo{byID: byID},
		customers: &mockCustomerRepo{byID: map[int64]*customer.Customer{
			1: {ID: 1, Name: "Acme Construction"},
		}},
		tx: &mockTxRunner{},
	}
	f.svc = NewService(f.orders, f.products, f.customers, f.tx)
	return f
}

// --- Tests ---

func TestCreateOrder_EmptyItems(t *testing.T) {
	f := newFixture()

	_, err := f.svc.CreateOrder(context.Background(), 1, nil)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "items", verr.Field)
	assert.Equal(t, "At least one item is required.", verr.Message)
	assert.Zero(t, f.tx.calls)
}

func TestCreateOrder_ZeroQuantity(t *testing.T) {
	f := newFixture(newTestProduct(10, "Hammer", "19.99", 5))

	_, err := f.svc.CreateOrder(context.Background(), 1, []LineInput{
		{ProductID: 10, Quantity: 0},
	})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "items", verr.Field)
	assert.Equal(t, "Quantity must be greater than 0 for product 10.", verr.Message)
	assert.Zero(t, f.tx.calls)
}

func TestCreateOrder_CustomerNotFound(t *testing.T) {
	f := newFixture(newTestProduct(10, "Hammer", "19.99", 5))

	_, err := f.svc.CreateOrder(context.Background(), 99, []LineInput{
		{ProductID: 10, Quantity: 1},
	})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "customer_id", verr.Field)
	assert.Equal(t, "The selected customer does not exist.", verr.Message)
	assert.Empty(t, f.orders.orders)
}

func TestCreateOrder_ProductNotFound(t *testing.T) {
	f := newFixture()

	_, err := f.svc.CreateOrder(context.Background(), 1, []LineInput{
		{ProductID: 77, Quantity: 1},
	})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "items", verr.Field)
	assert.Equal(t, "The selected product 77 does not exist.", verr.Message)
	assert.Empty(t, f.orders.orders)
}

func TestCreateOrder_InsufficientStock(t *testing.T) {
	f := newFixture(newTestProduct(10, "Hammer", "19.99", 2))

	_, err := f.svc.CreateOrder(context.Background(), 1, []LineInput{
		{ProductID: 10, Quantity: 3},
	})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "items", verr.Field)
	assert.Equal(t, "The product 'Hammer' does not have enough stock.", verr.Message)
	// No order shell, no stock change.
	assert.Empty(t, f.orders.orders)
	assert.Equal(t, 2, f.products.byID[10].Stock)
}

func TestCreateOrder_StockValidatedBeforeAnyWrite(t *testing.T) {
	f := newFixture(
		newTestProduct(10, "Hammer", "19.99", 5),
		newTestProduct(11, "Wrench", "24.50", 1),
	)

	_, err := f.svc.CreateOrder(context.Background(), 1, []LineInput{
		{ProductID: 10, Quantity: 2},
		{ProductID: 11, Quantity: 5},
	})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	// The valid first line must not have been written either.
	assert.Empty(t, f.orders.orders)
	assert.Equal(t, 5, f.products.byID[10].Stock)
}

func TestCreateOrder_Success(t *testing.T) {
	f := newFixture(
		newTestProduct(10, "Hammer", "19.99", 5),
		newTestProduct(11, "Wrench", "24.50", 10),
	)

	o, err := f.svc.CreateOrder(context.Background(), 1, []LineInput{
		{ProductID: 10, Quantity: 2},
		{ProductID: 11, Quantity: 3},
	})

	require.NoError(t, err)
	require.NotNil(t, o)
	assert.Equal(t, int64(1), o.CustomerID)

	// 2*19.99 + 3*24.50 = 39.98 + 73.50 = 113.48
	assert.True(t, decimal.RequireFromString("113.48").Equal(o.Total),
		"want 113.48, got %s", o.Total.String())
	require.Len(t, o.Items, 2)
	assert.True(t, decimal.RequireFromString("19.99").Equal(o.Items[0].UnitPrice))
	assert.True(t, decimal.RequireFromString("39.98").Equal(o.Items[0].Total))

	// Stock decremented, revenue accrued.
	assert.Equal(t, 3, f.products.byID[10].Stock)
	assert.Equal(t, 7, f.products.byID[11].Stock)
	assert.True(t, decimal.RequireFromString("113.48").Equal(f.customers.revenue[1]))
	assert.Equal(t, 1, f.tx.calls)
}

func TestCreateOrder_UnitPriceIsSnapshot(t *testing.T) {
	p := newTestProduct(10, "Hammer", "19.99", 5)
	f := newFixture(p)

	o, err := f.svc.CreateOrder(context.Background(), 1, []LineInput{
		{ProductID: 10, Quantity: 1},
	})
	require.NoError(t, err)

	p.Price = decimal.RequireFromString("99.99")

	got, err := f.svc.GetOrder(context.Background(), o.ID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("19.99").Equal(got.Items[0].UnitPrice))
}

func TestDeleteOrder(t *testing.T) {
	f := newFixture(newTestProduct(10, "Hammer", "19.99", 5))

	o, err := f.svc.CreateOrder(context.Background(), 1, []LineInput{
		{ProductID: 10, Quantity: 1},
	})
	require.NoError(t, err)

	ok, err := f.svc.DeleteOrder(context.Background(), o.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.svc.DeleteOrder(context.Background(), o.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGetOrder_NotFound(t *testing.T) {
	f := newFixture()

	_, err := f.svc.GetOrder(context.Background(), 42)

	require.ErrorIs(t, err, ErrNotFound)
}
