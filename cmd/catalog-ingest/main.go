package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/bits"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/promo-orders/internal/postgres"
)

const (
	bloomCapacity = 50_000_000
	bloomFPR      = 0.001
	numFeeds      = 3
	progressEvery = 5_000_000
	minSKULen     = 4
	maxSKULen     = 24
)

// record is one parsed catalog line: sku|name|category_id|price|stock.
type record struct {
	sku        string
	name       string
	categoryID int64
	price      decimal.Decimal
	stock      int
}

// fileResult holds candidate records found in a single feed during pass 2.
type fileResult struct {
	records map[string]record
	masks   map[string]uint
}

func main() {
	var (
		dataDir     string
		databaseURL string
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing catalogN.gz feed files")
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

	if err := run(ctx, dataDir, databaseURL); err != nil {
		slog.Error("catalog ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("catalog ingest completed successfully")
}

func run(ctx context.Context, dataDir, databaseURL string) error {
	files := make([]string, numFeeds)
	for i := range numFeeds {
		files[i] = filepath.Join(dataDir, fmt.Sprintf("catalog%d.gz", i+1))
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			return errors.Wrapf(err, "check file %s", f)
		}
	}

	// Pass 1: build one bloom filter of SKUs per feed, concurrently.
	slog.Info("pass 1: building bloom filters", slog.Int("feeds", numFeeds))

	filters, err := buildBloomFilters(ctx, files)
	if err != nil {
		return errors.Wrap(err, "build bloom filters")
	}

	// Pass 2: collect records whose SKU appears in 2+ supplier feeds.
	slog.Info("pass 2: collecting confirmed records")

	confirmed, err := findConfirmedRecords(ctx, files, filters)
	if err != nil {
		return errors.Wrap(err, "find confirmed records")
	}

	slog.Info("confirmed records found", slog.Int("count", len(confirmed)))

	if len(confirmed) == 0 {
		slog.Info("no confirmed records to insert")
		return nil
	}

	slog.Info("connecting to database")

	db, err := postgres.New(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer db.Close()

	if err := db.RunMigrations(ctx); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := writeProducts(ctx, db, confirmed); err != nil {
		return errors.Wrap(err, "write products to database")
	}

	return nil
}

// buildBloomFilters creates one bloom filter per feed, concurrently.
func buildBloomFilters(ctx context.Context, files []string) ([]*bloom.BloomFilter, error) {
	filters := make([]*bloom.BloomFilter, len(files))

	g, ctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(buildFilterForFeed(ctx, i, f, filters))
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return filters, nil
}

func buildFilterForFeed(ctx context.Context, idx int, path string, filters []*bloom.BloomFilter) func() error {
	return func() error {
		filter := bloom.NewWithEstimates(bloomCapacity, bloomFPR)
		var count uint64

		if err := streamGzFile(ctx, path, func(line string) {
			sku, ok := skuOf(line)
			if !ok {
				return
			}
			filter.AddString(sku)
			count++
			if count%progressEvery == 0 {
				slog.Info("pass 1 progress",
					slog.Int("feed", idx+1),
					slog.Uint64("lines", count),
				)
			}
		}); err != nil {
			return errors.Wrapf(err, "build filter for feed %d", idx+1)
		}

		slog.Info("pass 1 complete",
			slog.Int("feed", idx+1),
			slog.Uint64("total_lines", count),
		)

		filters[idx] = filter
		return nil
	}
}

// findConfirmedRecords re-streams each feed and checks SKUs against OTHER
// feeds' bloom filters. A record is confirmed if its SKU appears in 2 or
// more feeds.
func findConfirmedRecords(ctx context.Context, files []string, filters []*bloom.BloomFilter) ([]record, error) {
	results := make([]fileResult, len(files))

	g, ctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(findCandidatesInFeed(ctx, i, f, filters, results))
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Merge bitmasks from all feeds. The lowest-index feed wins when records
	// for the same SKU differ between suppliers.
	merged := make(map[string]uint)
	recordBySKU := make(map[string]record)
	for i := len(results) - 1; i >= 0; i-- {
		for sku, mask := range results[i].masks {
			merged[sku] |= mask
			recordBySKU[sku] = results[i].records[sku]
		}
	}

	var confirmed []record
	for sku, mask := range merged {
		if bits.OnesCount(mask) >= 2 {
			confirmed = append(confirmed, recordBySKU[sku])
		}
	}

	return confirmed, nil
}

func findCandidatesInFeed(
	ctx context.Context,
	idx int,
	path string,
	filters []*bloom.BloomFilter,
	results []fileResult,
) func() error {
	return func() error {
		records := make(map[string]record)
		masks := make(map[string]uint)
		fileBit := uint(1) << uint(idx)
		var count uint64

		if err := streamGzFile(ctx, path, func(line string) {
			rec, ok := parseLine(line)
			if !ok {
				return
			}

			count++
			if count%progressEvery == 0 {
				slog.Info("pass 2 progress",
					slog.Int("feed", idx+1),
					slog.Uint64("lines", count),
				)
			}

			// Check if this SKU appears in any OTHER feed's bloom filter.
			for j, f := range filters {
				if j == idx {
					continue
				}
				if f.TestString(rec.sku) {
					masks[rec.sku] = fileBit | (uint(1) << uint(j))
					records[rec.sku] = rec
					break
				}
			}
		}); err != nil {
			return errors.Wrapf(err, "scan feed %d for candidates", idx+1)
		}

		slog.Info("pass 2 complete",
			slog.Int("feed", idx+1),
			slog.Uint64("total_lines", count),
			slog.Int("candidates", len(records)),
		)

		results[idx] = fileResult{records: records, masks: masks}
		return nil
	}
}

// skuOf extracts and validates the SKU field without parsing the full line.
func skuOf(line string) (string, bool) {
	sku, _, ok := strings.Cut(line, "|")
	if !ok || len(sku) < minSKULen || len(sku) > maxSKULen {
		return "", false
	}
	return sku, true
}

// parseLine parses one `sku|name|category_id|price|stock` line. Malformed
// lines are skipped rather than failing the whole feed.
func parseLine(line string) (record, bool) {
	parts := strings.SplitN(line, "|", 5)
	if len(parts) != 5 {
		return record{}, false
	}
	sku := parts[0]
	if len(sku) < minSKULen || len(sku) > maxSKULen || parts[1] == "" {
		return record{}, false
	}
	categoryID, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil || categoryID <= 0 {
		return record{}, false
	}
	price, err := decimal.NewFromString(parts[3])
	if err != nil || price.IsNegative() {
		return record{}, false
	}
	stock, err := strconv.Atoi(parts[4])
	if err != nil || stock < 0 {
		return record{}, false
	}
	return record{
		sku:        sku,
		name:       parts[1],
		categoryID: categoryID,
		price:      price,
		stock:      stock,
	}, true
}

// streamGzFile opens a gzip-compressed file and calls fn for each line.
func streamGzFile(ctx context.Context, path string, fn func(line string)) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return errors.Wrapf(err, "create gzip reader for %s", path)
	}
	defer func() { _ = gz.Close() }()

	scanner := bufio.NewScanner(gz)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		fn(scanner.Text())
	}

	if err := scanner.Err(); err != nil {
		return errors.Wrapf(err, "scan %s", path)
	}

	return nil
}

const ensureCategorySQL = `
INSERT INTO categories (id, name)
VALUES ($1, $2)
ON CONFLICT (id) DO NOTHING`

const upsertProductSQL = `
INSERT INTO products (sku, name, category_id, price, stock)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (sku) DO UPDATE SET
	name = EXCLUDED.name,
	category_id = EXCLUDED.category_id,
	price = EXCLUDED.price,
	stock = EXCLUDED.stock`

// writeProducts upserts all confirmed catalog records into the database.
func writeProducts(ctx context.Context, db *postgres.DB, records []record) error {
	slog.Info("writing products to database", slog.Int("count", len(records)))

	seen := make(map[int64]bool)
	for _, r := range records {
		if !seen[r.categoryID] {
			name := fmt.Sprintf("Category %d", r.categoryID)
			if _, err := db.Pool().Exec(ctx, ensureCategorySQL, r.categoryID, name); err != nil {
				return errors.Wrapf(err, "ensure category %d", r.categoryID)
			}
			seen[r.categoryID] = true
		}
	}

	for i, r := range records {
		if _, err := db.Pool().Exec(ctx, upsertProductSQL, r.sku, r.name, r.categoryID, r.price, r.stock); err != nil {
			return errors.Wrapf(err, "upsert product %s", r.sku)
		}

		if (i+1)%100 == 0 || i+1 == len(records) {
			slog.Info("write progress", slog.Int("written", i+1), slog.Int("total", len(records)))
		}
	}

	return nil
}
