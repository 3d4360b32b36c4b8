package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/orderdesk/internal/domain/auth"
)

const findTokenByHashSQL = `SELECT id, token_hash, user_id, name
	FROM auth_tokens WHERE token_hash = $1 AND active = TRUE`

var _ auth.Repository = (*TokenRepository)(nil)

// TokenRepository provides auth token lookups backed by PostgreSQL.
type TokenRepository struct {
	pool *pgxpool.Pool
}

// NewTokenRepository returns a TokenRepository that uses the given pool.
func NewTokenRepository(pool *pgxpool.Pool) *TokenRepository {
	return &TokenRepository{pool: pool}
}

// FindByHash looks up an active token by its HMAC-SHA256 hash.
func (r *TokenRepository) FindByHash(ctx context.Context, hash string) (*auth.TokenInfo, error) {
	var info auth.TokenInfo
	err := r.pool.QueryRow(ctx, findTokenByHashSQL, hash).Scan(
		&info.ID, &info.TokenHash, &info.UserID, &info.Name,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("auth token not found: %w", err)
		}
		return nil, fmt.Errorf("finding auth token by hash: %w", err)
	}
	return &info, nil
}
