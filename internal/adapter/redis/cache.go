// Package redis shares the seen-users cache between server processes.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/alanyang/prompt-vault/internal/domain/record"
	domainuser "github.com/alanyang/prompt-vault/internal/domain/user"
)

const keyPrefix = "prompt-vault:user:"

type Options struct {
	Addr     string
	Password string
	DB       int
}

// UserCache implements port/cache.UserCache on Redis, one JSON value per user.
type UserCache struct {
	inner *goredis.Client
}

// Connect dials Redis and verifies the connection.
func Connect(ctx context.Context, opts Options) (*UserCache, error) {
	if opts.Addr == "" {
		return nil, errors.New("redis address required")
	}
	client := goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging redis at %s: %w", opts.Addr, err)
	}
	return New(client), nil
}

func New(client *goredis.Client) *UserCache {
	return &UserCache{inner: client}
}

func (c *UserCache) Lookup(ctx context.Context, id record.UserID) (domainuser.User, bool, error) {
	raw, err := c.inner.Get(ctx, key(id)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return domainuser.User{}, false, nil
	}
	if err != nil {
		return domainuser.User{}, false, fmt.Errorf("redis get user %s: %w", id, err)
	}

	var u domainuser.User
	if err := json.Unmarshal(raw, &u); err != nil {
		// A value we cannot read is treated as a miss and overwritten later.
		return domainuser.User{}, false, nil
	}
	return u, true, nil
}

func (c *UserCache) Remember(ctx context.Context, u domainuser.User, ttl time.Duration) error {
	raw, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("marshaling user: %w", err)
	}
	if err := c.inner.Set(ctx, key(u.ID), raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis set user %s: %w", u.ID, err)
	}
	return nil
}

func (c *UserCache) Forget(ctx context.Context, id record.UserID) error {
	if err := c.inner.Del(ctx, key(id)).Err(); err != nil {
		return fmt.Errorf("redis del user %s: %w", id, err)
	}
	return nil
}

func (c *UserCache) Close() error {
	return c.inner.Close()
}

func key(id record.UserID) string {
	return keyPrefix + string(id)
}
