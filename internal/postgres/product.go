package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/xenking/promo-orders/internal/domain/product"
)

const (
	listProductsSQL = `SELECT id, sku, name, category_id, price, stock
		FROM products ORDER BY id`

	findProductSQL = `SELECT id, sku, name, category_id, price, stock
		FROM products WHERE id = $1`

	createProductSQL = `INSERT INTO products (sku, name, category_id, price, stock)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`

	updateProductSQL = `UPDATE products
		SET sku = $2, name = $3, category_id = $4, price = $5, stock = $6
		WHERE id = $1`

	deleteProductSQL = `DELETE FROM products WHERE id = $1`

	// FOR UPDATE keeps the row locked for the rest of the enclosing
	// transaction, serializing concurrent checkouts on the same product.
	hasEnoughStockSQL = `SELECT stock >= $2 FROM products WHERE id = $1 FOR UPDATE`

	// The stock guard makes the decrement a no-op instead of violating the
	// non-negative constraint when a concurrent order got there first.
	updateStockSQL = `UPDATE products SET stock = stock - $2
		WHERE id = $1 AND stock >= $2`
)

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository backed by PostgreSQL.
type ProductRepository struct {
	db *DB
}

// NewProductRepository returns a ProductRepository that uses the given DB.
func NewProductRepository(db *DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) List(ctx context.Context) ([]product.Product, error) {
	rows, err := r.db.q(ctx).Query(ctx, listProductsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

func (r *ProductRepository) Find(ctx context.Context, id int64) (*product.Product, error) {
	rows, err := r.db.q(ctx).Query(ctx, findProductSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting product %d: %w", id, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, fmt.Errorf("getting product %d: %w", id, err)
	}
	return &p, nil
}

func (r *ProductRepository) Create(ctx context.Context, p *product.Product) error {
	err := r.db.q(ctx).QueryRow(ctx, createProductSQL,
		p.SKU, p.Name, p.CategoryID, p.Price, p.Stock,
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("creating product %q: %w", p.SKU, err)
	}
	return nil
}

func (r *ProductRepository) Update(ctx context.Context, p *product.Product) (bool, error) {
	tag, err := r.db.q(ctx).Exec(ctx, updateProductSQL,
		p.ID, p.SKU, p.Name, p.CategoryID, p.Price, p.Stock,
	)
	if err != nil {
		return false, fmt.Errorf("updating product %d: %w", p.ID, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *ProductRepository) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.db.q(ctx).Exec(ctx, deleteProductSQL, id)
	if err != nil {
		return false, fmt.Errorf("deleting product %d: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *ProductRepository) HasEnoughStock(ctx context.Context, id int64, quantity int) (bool, error) {
	var enough bool
	err := r.db.q(ctx).QueryRow(ctx, hasEnoughStockSQL, id, quantity).Scan(&enough)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("checking stock for product %d: %w", id, err)
	}
	return enough, nil
}

func (r *ProductRepository) UpdateStock(ctx context.Context, id int64, quantity int) (bool, error) {
	tag, err := r.db.q(ctx).Exec(ctx, updateStockSQL, id, quantity)
	if err != nil {
		return false, fmt.Errorf("decrementing stock for product %d: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanProduct(row pgx.CollectableRow) (product.Product, error) {
	var p product.Product
	err := row.Scan(&p.ID, &p.SKU, &p.Name, &p.CategoryID, &p.Price, &p.Stock)
	return p, err
}
