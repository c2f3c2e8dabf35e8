package user

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alanyang/prompt-vault/internal/adapter/postgres"
	"github.com/alanyang/prompt-vault/internal/domain/record"
	domainuser "github.com/alanyang/prompt-vault/internal/domain/user"
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Ensure returns the user row for id, creating it on first sight. The no-op
// DO UPDATE makes RETURNING yield the existing row on conflict.
func (r *Repository) Ensure(ctx context.Context, id record.UserID) (domainuser.User, error) {
	now := record.Now()
	query := `
		INSERT INTO users (id, created_at, updated_at, version)
		VALUES ($1, $2, $2, 1)
		ON CONFLICT (id) DO UPDATE SET id = EXCLUDED.id
		RETURNING id, created_at, updated_at, deleted_at, version`

	var u domainuser.User
	err := r.pool.QueryRow(ctx, query, id, now).Scan(
		&u.ID, &u.CreatedAt, &u.UpdatedAt, &u.DeletedAt, &u.Version,
	)
	if err != nil {
		return domainuser.User{}, postgres.Classify("ensuring user", err)
	}
	return u, nil
}
