package cache

import (
	"context"
	"time"

	"github.com/alanyang/prompt-vault/internal/domain/record"
	domainuser "github.com/alanyang/prompt-vault/internal/domain/user"
)

// UserCache remembers users whose row is known to exist, so the guard can
// skip the upsert on most requests. A miss is (zero, false, nil).
type UserCache interface {
	Lookup(ctx context.Context, id record.UserID) (domainuser.User, bool, error)
	Remember(ctx context.Context, u domainuser.User, ttl time.Duration) error
	Forget(ctx context.Context, id record.UserID) error
}
