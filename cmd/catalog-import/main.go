// Command catalog-import bulk-loads products into the catalog from one or
// more JSON files (optionally gzip-compressed). Files are processed
// concurrently; products are upserted by SKU so re-running an import is
// safe.
package main

import (
	"context"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/orderdesk/internal/storage/postgres"
)

const (
	maxConcurrentFiles = 3
	progressEvery      = 10_000
	decodeBufSize      = 1 << 20
)

const upsertProductSQL = `INSERT INTO products (id, name, sku, price, image_url, created_by)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (sku) DO UPDATE SET name = EXCLUDED.name, price = EXCLUDED.price,
		image_url = EXCLUDED.image_url, updated_at = now()`

func main() {
	var (
		databaseURL string
		createdBy   string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&createdBy, "created-by", "catalog-import", "creator recorded on imported products")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	files := flag.Args()
	if len(files) == 0 {
		slog.Error("at least one products file is required")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, createdBy, files); err != nil {
		slog.Error("catalog import failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("catalog import completed successfully")
}

func run(ctx context.Context, databaseURL, createdBy string, files []string) error {
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			return errors.Wrapf(err, "check file %s", f)
		}
	}

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	var imported atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFiles)
	for _, file := range files {
		g.Go(func() error {
			n, err := importFile(ctx, pool, file, createdBy)
			if err != nil {
				return errors.Wrapf(err, "import %s", file)
			}
			imported.Add(n)
			slog.Info("file imported", slog.String("file", file), slog.Int64("products", n))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	slog.Info("import finished", slog.Int64("products", imported.Load()))
	return nil
}

// importFile streams one JSON array of products into the database. Files
// ending in .gz are decompressed on the fly.
func importFile(ctx context.Context, pool *pgxpool.Pool, path, createdBy string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, errors.Wrap(err, "open")
	}
	defer f.Close()

	var reader io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := pgzip.NewReader(f)
		if err != nil {
			return 0, errors.Wrap(err, "open gzip")
		}
		defer gz.Close()
		reader = gz
	}

	var count int64
	d := jx.Decode(reader, decodeBufSize)
	err = d.Arr(func(d *jx.Decoder) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		p, err := decodeProduct(d)
		if err != nil {
			return err
		}
		if p.SKU == "" || p.Name == "" {
			return errors.Errorf("product %d: name and sku are required", count)
		}

		_, err = pool.Exec(ctx, upsertProductSQL,
			uuid.New().String(), p.Name, p.SKU, p.Price, p.ImageURL, createdBy,
		)
		if err != nil {
			return errors.Wrapf(err, "upsert product %s", p.SKU)
		}

		count++
		if count%progressEvery == 0 {
			slog.Info("progress", slog.String("file", path), slog.Int64("products", count))
		}
		return nil
	})
	if err != nil {
		return count, err
	}
	return count, nil
}

type importedProduct struct {
	Name     string
	SKU      string
	Price    decimal.Decimal
	ImageURL string
}

// decodeProduct reads a single product object from the stream.
func decodeProduct(d *jx.Decoder) (importedProduct, error) {
	var p importedProduct
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "name":
			v, err := d.Str()
			if err != nil {
				return err
			}
			p.Name = v
		case "sku":
			v, err := d.Str()
			if err != nil {
				return err
			}
			p.SKU = v
		case "price":
			n, err := d.Num()
			if err != nil {
				return err
			}
			// Num keeps the quotes of string-encoded numbers.
			price, err := decimal.NewFromString(strings.Trim(n.String(), `"`))
			if err != nil {
				return errors.Wrap(err, "parse price")
			}
			p.Price = price
		case "imageUrl":
			v, err := d.Str()
			if err != nil {
				return err
			}
			p.ImageURL = v
		default:
			return d.Skip()
		}
		return nil
	})
	return p, err
}
