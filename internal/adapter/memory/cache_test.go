package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainuser "github.com/alanyang/prompt-vault/internal/domain/user"
)

func TestUserCache_RememberLookupForget(t *testing.T) {
	ctx := context.Background()
	c := NewUserCache()

	_, ok, err := c.Lookup(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, ok)

	u := domainuser.User{ID: "u1", Email: "a@example.com"}
	require.NoError(t, c.Remember(ctx, u, time.Minute))

	got, ok, err := c.Lookup(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, u, got)

	require.NoError(t, c.Forget(ctx, "u1"))
	_, ok, _ = c.Lookup(ctx, "u1")
	assert.False(t, ok)
}

func TestUserCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c := NewUserCache()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Remember(ctx, domainuser.User{ID: "u1"}, time.Minute))

	now = now.Add(30 * time.Second)
	_, ok, _ := c.Lookup(ctx, "u1")
	assert.True(t, ok)

	now = now.Add(31 * time.Second)
	_, ok, _ = c.Lookup(ctx, "u1")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}
