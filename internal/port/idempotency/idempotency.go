package idempotency

import (
	"context"

	"github.com/alanyang/prompt-vault/internal/domain/record"
)

// Response is the stored outcome of the first request made with a key.
type Response struct {
	StatusCode int
	Body       []byte
	ETag       string
}

// Store keeps create responses keyed by (owner, Idempotency-Key).
type Store interface {
	// Check returns the stored response and whether the key was seen.
	Check(ctx context.Context, owner record.UserID, key string) (Response, bool, error)
	// Save records resp for key. A concurrent first write wins.
	Save(ctx context.Context, owner record.UserID, key string, resp Response) error
}
