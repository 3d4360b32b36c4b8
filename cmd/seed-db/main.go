// Command seed-db applies migrations and seeds an auth token plus optional
// demo products. It is used by local development and the integration stack.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/xenking/orderdesk/internal/domain/auth"
	"github.com/xenking/orderdesk/internal/storage/postgres"
)

const (
	upsertTokenSQL = `INSERT INTO auth_tokens (id, token_hash, user_id, name, active)
	VALUES ($1, $2, $3, $4, TRUE)
	ON CONFLICT (token_hash) DO UPDATE SET user_id = EXCLUDED.user_id, active = TRUE`

	upsertProductSQL = `INSERT INTO products (id, name, sku, price, image_url, created_by)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (sku) DO UPDATE SET name = EXCLUDED.name, price = EXCLUDED.price,
		image_url = EXCLUDED.image_url, updated_at = now()`
)

type productJSON struct {
	Name     string          `json:"name"`
	SKU      string          `json:"sku"`
	Price    decimal.Decimal `json:"price"`
	ImageURL string          `json:"imageUrl"`
}

func main() {
	var (
		databaseURL  string
		token        string
		tokenPepper  string
		tokenUserID  string
		productsFile string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&token, "token", "", "auth token to seed (or ORDERDESK_SEED_TOKEN env)")
	flag.StringVar(&tokenPepper, "token-pepper", "", "HMAC pepper for token hashing (or ORDERDESK_TOKEN_PEPPER env)")
	flag.StringVar(&tokenUserID, "token-user", "seed-user", "user ID the seeded token resolves to")
	flag.StringVar(&productsFile, "products-file", "", "optional path to a demo products JSON file")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if token == "" {
		token = os.Getenv("ORDERDESK_SEED_TOKEN")
	}
	if token == "" {
		slog.Error("token is required: set --token or ORDERDESK_SEED_TOKEN")
		os.Exit(1)
	}
	if tokenPepper == "" {
		tokenPepper = os.Getenv("ORDERDESK_TOKEN_PEPPER")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, token, tokenPepper, tokenUserID, productsFile); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, token, pepper, userID, productsFile string) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedToken(ctx, pool, token, pepper, userID); err != nil {
		return errors.Wrap(err, "seed token")
	}

	if productsFile != "" {
		if err := seedProducts(ctx, pool, productsFile, userID); err != nil {
			return errors.Wrap(err, "seed products")
		}
	}

	return nil
}

func seedToken(ctx context.Context, pool *pgxpool.Pool, token, pepper, userID string) error {
	hash := auth.HashToken(token, []byte(pepper))

	_, err := pool.Exec(ctx, upsertTokenSQL, uuid.New().String(), hash, userID, "seed token")
	if err != nil {
		return err
	}

	slog.Info("seeded auth token", slog.String("user", userID))
	return nil
}

func seedProducts(ctx context.Context, pool *pgxpool.Pool, path, userID string) error {
	slog.Info("reading products file", slog.String("path", path))

	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "read products file")
	}

	var products []productJSON
	if err := json.Unmarshal(data, &products); err != nil {
		return errors.Wrap(err, "parse products JSON")
	}

	slog.Info("upserting products", slog.Int("count", len(products)))

	for _, p := range products {
		_, err := pool.Exec(ctx, upsertProductSQL,
			uuid.New().String(), p.Name, p.SKU, p.Price, p.ImageURL, userID,
		)
		if err != nil {
			return errors.Wrapf(err, "upsert product %s", p.SKU)
		}

		slog.Info("upserted product", slog.String("sku", p.SKU), slog.String("name", p.Name))
	}

	return nil
}
