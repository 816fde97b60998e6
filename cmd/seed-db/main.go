package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/promo-orders/internal/postgres"
)

type seedProduct struct {
	sku        string
	name       string
	categoryID int64
	price      string
	stock      int
}

type seedCustomer struct {
	name    string
	since   string
	revenue string
}

var demoProducts = []seedProduct{
	{sku: "TL-HAMMER", name: "Claw Hammer", categoryID: 1, price: "19.99", stock: 120},
	{sku: "TL-WRENCH", name: "Adjustable Wrench", categoryID: 1, price: "24.50", stock: 80},
	{sku: "TL-SAW", name: "Hand Saw", categoryID: 1, price: "32.00", stock: 45},
	{sku: "EL-SWITCH", name: "Wall Switch", categoryID: 2, price: "4.75", stock: 500},
	{sku: "EL-SOCKET", name: "Power Socket", categoryID: 2, price: "6.20", stock: 350},
	{sku: "EL-CABLE", name: "Copper Cable 10m", categoryID: 2, price: "18.90", stock: 200},
}

var demoCustomers = []seedCustomer{
	{name: "Acme Construction", since: "2019-03-14", revenue: "15230.40"},
	{name: "Volt & Sons Electric", since: "2021-07-01", revenue: "4821.75"},
	{name: "Hardware Haven", since: "2023-11-20", revenue: "0.00"},
}

func main() {
	var databaseURL string

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL string) error {
	slog.Info("connecting to database")

	db, err := postgres.New(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer db.Close()

	slog.Info("running migrations")

	if err := db.RunMigrations(ctx); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedProducts(ctx, db); err != nil {
		return errors.Wrap(err, "seed products")
	}

	if err := seedCustomers(ctx, db); err != nil {
		return errors.Wrap(err, "seed customers")
	}

	return nil
}

const upsertProductSQL = `
INSERT INTO products (sku, name, category_id, price, stock)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (sku) DO UPDATE SET
	name = EXCLUDED.name,
	category_id = EXCLUDED.category_id,
	price = EXCLUDED.price,
	stock = EXCLUDED.stock`

func seedProducts(ctx context.Context, db *postgres.DB) error {
	slog.Info("upserting products", slog.Int("count", len(demoProducts)))

	for _, p := range demoProducts {
		price, err := decimal.NewFromString(p.price)
		if err != nil {
			return errors.Wrapf(err, "parse price for product %s", p.sku)
		}

		if _, err := db.Pool().Exec(ctx, upsertProductSQL, p.sku, p.name, p.categoryID, price, p.stock); err != nil {
			return errors.Wrapf(err, "upsert product %s", p.sku)
		}

		slog.Info("upserted product", slog.String("sku", p.sku), slog.String("name", p.name))
	}

	return nil
}

const insertCustomerSQL = `
INSERT INTO customers (name, since, revenue)
SELECT $1, $2, $3
WHERE NOT EXISTS (SELECT 1 FROM customers WHERE name = $1)`

func seedCustomers(ctx context.Context, db *postgres.DB) error {
	slog.Info("inserting customers", slog.Int("count", len(demoCustomers)))

	for _, c := range demoCustomers {
		since, err := time.Parse("2006-01-02", c.since)
		if err != nil {
			return errors.Wrapf(err, "parse since date for customer %s", c.name)
		}
		revenue, err := decimal.NewFromString(c.revenue)
		if err != nil {
			return errors.Wrapf(err, "parse revenue for customer %s", c.name)
		}

		if _, err := db.Pool().Exec(ctx, insertCustomerSQL, c.name, since, revenue); err != nil {
			return errors.Wrapf(err, "insert customer %s", c.name)
		}

		slog.Info("inserted customer", slog.String("name", c.name))
	}

	return nil
}
