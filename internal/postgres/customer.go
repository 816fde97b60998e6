package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/xenking/promo-orders/internal/domain/customer"
)

const (
	listCustomersSQL = `SELECT id, name, since, revenue FROM customers ORDER BY id`

	findCustomerSQL = `SELECT id, name, since, revenue FROM customers WHERE id = $1`

	createCustomerSQL = `INSERT INTO customers (name, since, revenue)
		VALUES ($1, $2, $3) RETURNING id`

	updateCustomerSQL = `UPDATE customers SET name = $2, since = $3 WHERE id = $1`

	deleteCustomerSQL = `DELETE FROM customers WHERE id = $1`

	addRevenueSQL = `UPDATE customers SET revenue = revenue + $2 WHERE id = $1`
)

var _ customer.Repository = (*CustomerRepository)(nil)

// CustomerRepository implements customer.Repository backed by PostgreSQL.
type CustomerRepository struct {
	db *DB
}

// NewCustomerRepository returns a CustomerRepository that uses the given DB.
func NewCustomerRepository(db *DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

func (r *CustomerRepository) List(ctx context.Context) ([]customer.Customer, error) {
	rows, err := r.db.q(ctx).Query(ctx, listCustomersSQL)
	if err != nil {
		return nil, fmt.Errorf("listing customers: %w", err)
	}
	return pgx.CollectRows(rows, scanCustomer)
}

func (r *CustomerRepository) Find(ctx context.Context, id int64) (*customer.Customer, error) {
	rows, err := r.db.q(ctx).Query(ctx, findCustomerSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting customer %d: %w", id, err)
	}

	c, err := pgx.CollectExactlyOneRow(rows, scanCustomer)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, customer.ErrNotFound
		}
		return nil, fmt.Errorf("getting customer %d: %w", id, err)
	}
	return &c, nil
}

func (r *CustomerRepository) Create(ctx context.Context, c *customer.Customer) error {
	err := r.db.q(ctx).QueryRow(ctx, createCustomerSQL, c.Name, c.Since, c.Revenue).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("creating customer %q: %w", c.Name, err)
	}
	return nil
}

func (r *CustomerRepository) Update(ctx context.Context, c *customer.Customer) (bool, error) {
	tag, err := r.db.q(ctx).Exec(ctx, updateCustomerSQL, c.ID, c.Name, c.Since)
	if err != nil {
		return false, fmt.Errorf("updating customer %d: %w", c.ID, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *CustomerRepository) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.db.q(ctx).Exec(ctx, deleteCustomerSQL, id)
	if err != nil {
		return false, fmt.Errorf("deleting customer %d: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

// AddRevenue increments the customer's cumulative revenue as a single SQL
// update, so concurrent accruals cannot lose each other's writes.
func (r *CustomerRepository) AddRevenue(ctx context.Context, id int64, amount decimal.Decimal) (bool, error) {
	tag, err := r.db.q(ctx).Exec(ctx, addRevenueSQL, id, amount)
	if err != nil {
		return false, fmt.Errorf("accruing revenue for customer %d: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanCustomer(row pgx.CollectableRow) (customer.Customer, error) {
	var c customer.Customer
	err := row.Scan(&c.ID, &c.Name, &c.Since, &c.Revenue)
	return c, err
}
