package auth

import (
	"context"
	"time"
)

// Claims is the verified content of a bearer credential.
type Claims struct {
	Subject   string
	Email     string
	ExpiresAt time.Time
}

// Authenticator verifies signature, issuer, audience and expiry of a bearer
// credential. Any returned error means the credential must not be trusted.
type Authenticator interface {
	Verify(ctx context.Context, token string) (Claims, error)
}
