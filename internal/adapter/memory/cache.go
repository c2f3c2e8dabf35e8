package memory

import (
	"context"
	"sync"
	"time"

	"github.com/alanyang/prompt-vault/internal/domain/record"
	domainuser "github.com/alanyang/prompt-vault/internal/domain/user"
)

type cacheEntry struct {
	user      domainuser.User
	expiresAt time.Time
}

// UserCache is a process-local port/cache.UserCache.
type UserCache struct {
	mu      sync.RWMutex
	entries map[record.UserID]cacheEntry
	now     func() time.Time
}

func NewUserCache() *UserCache {
	return &UserCache{
		entries: make(map[record.UserID]cacheEntry),
		now:     time.Now,
	}
}

func (c *UserCache) Lookup(_ context.Context, id record.UserID) (domainuser.User, bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[id]
	c.mu.RUnlock()

	if !ok {
		return domainuser.User{}, false, nil
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		if cur, still := c.entries[id]; still && cur.expiresAt.Equal(entry.expiresAt) {
			delete(c.entries, id)
		}
		c.mu.Unlock()
		return domainuser.User{}, false, nil
	}
	return entry.user, true, nil
}

func (c *UserCache) Remember(_ context.Context, u domainuser.User, ttl time.Duration) error {
	c.mu.Lock()
	c.entries[u.ID] = cacheEntry{user: u, expiresAt: c.now().Add(ttl)}
	c.mu.Unlock()
	return nil
}

func (c *UserCache) Forget(_ context.Context, id record.UserID) error {
	c.mu.Lock()
	delete(c.entries, id)
	c.mu.Unlock()
	return nil
}

// Len reports the number of entries, expired ones included.
func (c *UserCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
