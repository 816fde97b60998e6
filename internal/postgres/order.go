package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/xenking/promo-orders/internal/domain/customer"
	"github.com/xenking/promo-orders/internal/domain/order"
	"github.com/xenking/promo-orders/internal/domain/product"
)

const (
	listOrdersSQL = `SELECT o.id, o.customer_id, o.total, o.created_at,
			c.id, c.name, c.since, c.revenue
		FROM orders o
		JOIN customers c ON c.id = o.customer_id
		ORDER BY o.id`

	findOrderSQL = `SELECT o.id, o.customer_id, o.total, o.created_at,
			c.id, c.name, c.since, c.revenue
		FROM orders o
		JOIN customers c ON c.id = o.customer_id
		WHERE o.id = $1`

	orderItemsSQL = `SELECT i.id, i.order_id, i.product_id, i.quantity, i.unit_price, i.total,
			p.id, p.sku, p.name, p.category_id, p.price, p.stock
		FROM order_items i
		JOIN products p ON p.id = i.product_id
		WHERE i.order_id = ANY($1)
		ORDER BY i.id`

	createOrderSQL = `INSERT INTO orders (customer_id, total)
		VALUES ($1, $2) RETURNING id, created_at`

	createOrderItemSQL = `INSERT INTO order_items (order_id, product_id, quantity, unit_price, total)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`

	updateOrderTotalSQL = `UPDATE orders SET total = $2 WHERE id = $1`

	deleteOrderSQL = `DELETE FROM orders WHERE id = $1`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL. Items
// cascade on order deletion via the schema's foreign key.
type OrderRepository struct {
	db *DB
}

// NewOrderRepository returns an OrderRepository that uses the given DB.
func NewOrderRepository(db *DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) ListWithRelations(ctx context.Context) ([]order.Order, error) {
	rows, err := r.db.q(ctx).Query(ctx, listOrdersSQL)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}

	orders, err := pgx.CollectRows(rows, scanOrderWithCustomer)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	if len(orders) == 0 {
		return orders, nil
	}

	ids := make([]int64, len(orders))
	byID := make(map[int64]*order.Order, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
		byID[orders[i].ID] = &orders[i]
	}

	if err := r.loadItems(ctx, ids, byID); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *OrderRepository) FindWithRelations(ctx context.Context, id int64) (*order.Order, error) {
	rows, err := r.db.q(ctx).Query(ctx, findOrderSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting order %d: %w", id, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrderWithCustomer)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %d: %w", id, err)
	}

	if err := r.loadItems(ctx, []int64{o.ID}, map[int64]*order.Order{o.ID: &o}); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	err := r.db.q(ctx).QueryRow(ctx, createOrderSQL, o.CustomerID, o.Total).
		Scan(&o.ID, &o.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return customer.ErrNotFound
		}
		return fmt.Errorf("creating order for customer %d: %w", o.CustomerID, err)
	}
	return nil
}

func (r *OrderRepository) CreateItem(ctx context.Context, item *order.Item) error {
	err := r.db.q(ctx).QueryRow(ctx, createOrderItemSQL,
		item.OrderID, item.ProductID, item.Quantity, item.UnitPrice, item.Total,
	).Scan(&item.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return product.ErrNotFound
		}
		return fmt.Errorf("creating item for order %d: %w", item.OrderID, err)
	}
	return nil
}

func (r *OrderRepository) UpdateTotal(ctx context.Context, id int64, total decimal.Decimal) (bool, error) {
	tag, err := r.db.q(ctx).Exec(ctx, updateOrderTotalSQL, id, total)
	if err != nil {
		return false, fmt.Errorf("updating total for order %d: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *OrderRepository) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.db.q(ctx).Exec(ctx, deleteOrderSQL, id)
	if err != nil {
		return false, fmt.Errorf("deleting order %d: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

// loadItems fetches the items (with their products) for all given order IDs
// in one query and attaches them to the owning orders.
func (r *OrderRepository) loadItems(ctx context.Context, ids []int64, byID map[int64]*order.Order) error {
	rows, err := r.db.q(ctx).Query(ctx, orderItemsSQL, ids)
	if err != nil {
		return fmt.Errorf("loading order items: %w", err)
	}

	items, err := pgx.CollectRows(rows, scanItemWithProduct)
	if err != nil {
		return fmt.Errorf("loading order items: %w", err)
	}

	for i := range items {
		o, ok := byID[items[i].OrderID]
		if !ok {
			continue
		}
		o.Items = append(o.Items, items[i])
	}
	return nil
}

func scanOrderWithCustomer(row pgx.CollectableRow) (order.Order, error) {
	var (
		o order.Order
		c customer.Customer
	)
	err := row.Scan(
		&o.ID, &o.CustomerID, &o.Total, &o.CreatedAt,
		&c.ID, &c.Name, &c.Since, &c.Revenue,
	)
	o.Customer = &c
	return o, err
}

func scanItemWithProduct(row pgx.CollectableRow) (order.Item, error) {
	var (
		item order.Item
		p    product.Product
	)
	err := row.Scan(
		&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.UnitPrice, &item.Total,
		&p.ID, &p.SKU, &p.Name, &p.CategoryID, &p.Price, &p.Stock,
	)
	item.Product = &p
	return item, err
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation
}
