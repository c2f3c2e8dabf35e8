//go:build integration

package testutil

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/alanyang/prompt-vault/internal/adapter/postgres"
	"github.com/alanyang/prompt-vault/internal/domain/record"
)

// SetupTestDB connects to the test database and applies the embedded
// migrations. It skips the test if TEST_DATABASE_URL is not set.
// Every test shares the database, so isolate by a fresh user from NewUser.
func SetupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	pool, err := postgres.Connect(ctx, url)
	if err != nil {
		t.Fatalf("connect to test DB: %v", err)
	}
	if err := postgres.Migrate(ctx, pool); err != nil {
		pool.Close()
		t.Fatalf("migrate test DB: %v", err)
	}

	t.Cleanup(func() { pool.Close() })
	return pool
}

// NewUser inserts a user row with a random subject and returns its id.
func NewUser(t *testing.T, pool *pgxpool.Pool) record.UserID {
	t.Helper()
	id := record.UserID("test|" + uuid.NewString())
	now := record.Now()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO users (id, created_at, updated_at, version) VALUES ($1, $2, $2, 1)`, id, now)
	require.NoError(t, err)
	return id
}
