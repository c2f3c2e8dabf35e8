package idempotency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alanyang/prompt-vault/internal/domain/record"
	portidem "github.com/alanyang/prompt-vault/internal/port/idempotency"
)

// Repository stores create responses per (user, Idempotency-Key).
type Repository struct {
	pool *pgxpool.Pool
	ttl  time.Duration
}

// New returns a store whose keys expire after ttl. Zero keeps them forever.
func New(pool *pgxpool.Pool, ttl time.Duration) *Repository {
	return &Repository{pool: pool, ttl: ttl}
}

func (r *Repository) Check(ctx context.Context, owner record.UserID, key string) (portidem.Response, bool, error) {
	query := `SELECT status_code, body, etag, created_at FROM idempotency_keys
		WHERE user_id = $1 AND idempotency_key = $2`

	var (
		resp    portidem.Response
		created time.Time
	)
	err := r.pool.QueryRow(ctx, query, owner, key).Scan(&resp.StatusCode, &resp.Body, &resp.ETag, &created)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return portidem.Response{}, false, nil
		}
		return portidem.Response{}, false, fmt.Errorf("checking idempotency key: %w", err)
	}
	if r.ttl > 0 && time.Since(created) > r.ttl {
		return portidem.Response{}, false, nil
	}
	return resp, true, nil
}

// Save keeps the first response for a key; an expired entry is replaced.
func (r *Repository) Save(ctx context.Context, owner record.UserID, key string, resp portidem.Response) error {
	query := `
		INSERT INTO idempotency_keys (user_id, idempotency_key, status_code, body, etag, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (user_id, idempotency_key) DO UPDATE
			SET status_code = EXCLUDED.status_code, body = EXCLUDED.body, etag = EXCLUDED.etag,
				created_at = EXCLUDED.created_at
			WHERE $6::bigint > 0 AND idempotency_keys.created_at < NOW() - make_interval(secs => $6::bigint)`

	_, err := r.pool.Exec(ctx, query, owner, key, resp.StatusCode, resp.Body, resp.ETag, int64(r.ttl/time.Second))
	if err != nil {
		return fmt.Errorf("storing idempotency key: %w", err)
	}
	return nil
}

// Purge deletes expired keys and reports how many were removed.
func (r *Repository) Purge(ctx context.Context) (int64, error) {
	if r.ttl <= 0 {
		return 0, nil
	}
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM idempotency_keys WHERE created_at < NOW() - make_interval(secs => $1::bigint)`,
		int64(r.ttl/time.Second))
	if err != nil {
		return 0, fmt.Errorf("purging idempotency keys: %w", err)
	}
	return tag.RowsAffected(), nil
}
