//go:build integration

package redis_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rediscache "github.com/alanyang/prompt-vault/internal/adapter/redis"
	"github.com/alanyang/prompt-vault/internal/domain/record"
	domainuser "github.com/alanyang/prompt-vault/internal/domain/user"
)

func connect(t *testing.T) *rediscache.UserCache {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	c, err := rediscache.Connect(context.Background(), rediscache.Options{Addr: addr, DB: 15})
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestUserCache_RoundTrip(t *testing.T) {
	c := connect(t)
	ctx := context.Background()
	u := domainuser.User{ID: record.UserID("redis|" + string(record.NewID())), Email: "a@example.com"}
	t.Cleanup(func() { c.Forget(ctx, u.ID) })

	_, ok, err := c.Lookup(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Remember(ctx, u, time.Minute))
	got, ok, err := c.Lookup(ctx, u.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, u.Email, got.Email)

	require.NoError(t, c.Forget(ctx, u.ID))
	_, ok, err = c.Lookup(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUserCache_Expires(t *testing.T) {
	c := connect(t)
	ctx := context.Background()
	u := domainuser.User{ID: record.UserID("redis|" + string(record.NewID()))}

	require.NoError(t, c.Remember(ctx, u, 50*time.Millisecond))
	assert.Eventually(t, func() bool {
		_, ok, err := c.Lookup(ctx, u.ID)
		return err == nil && !ok
	}, 2*time.Second, 20*time.Millisecond)
}

func TestConnect_Unreachable(t *testing.T) {
	_, err := rediscache.Connect(context.Background(), rediscache.Options{Addr: "127.0.0.1:1"})
	assert.Error(t, err)
}
