package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alanyang/prompt-vault/internal/domain/record"
	domainuser "github.com/alanyang/prompt-vault/internal/domain/user"
	portauth "github.com/alanyang/prompt-vault/internal/port/auth"
	portcache "github.com/alanyang/prompt-vault/internal/port/cache"
	portuser "github.com/alanyang/prompt-vault/internal/port/user"
)

// Service is the ownership guard: it turns a bearer credential into the
// owner id every store call is scoped to.
type Service struct {
	verifier portauth.Authenticator
	users    portuser.Repository
	cache    portcache.UserCache
	ttl      time.Duration
}

func NewService(verifier portauth.Authenticator, users portuser.Repository, cache portcache.UserCache, ttl time.Duration) *Service {
	return &Service{verifier: verifier, users: users, cache: cache, ttl: ttl}
}

// Resolve verifies credential and returns its subject.
func (s *Service) Resolve(ctx context.Context, credential string) (record.UserID, error) {
	claims, err := s.claims(ctx, credential)
	if err != nil {
		return "", err
	}
	return record.UserID(claims.Subject), nil
}

// CurrentUser resolves credential and makes sure the user row exists.
// A soft-deleted user is treated as unauthenticated.
func (s *Service) CurrentUser(ctx context.Context, credential string) (domainuser.User, error) {
	claims, err := s.claims(ctx, credential)
	if err != nil {
		return domainuser.User{}, err
	}
	id := record.UserID(claims.Subject)

	if s.cache != nil {
		u, ok, err := s.cache.Lookup(ctx, id)
		if err != nil {
			slog.WarnContext(ctx, "user cache lookup failed", "user_id", id, "error", err)
		}
		if ok {
			u.Email = claims.Email
			return u, nil
		}
	}

	u, err := s.users.Ensure(ctx, id)
	if err != nil {
		return domainuser.User{}, fmt.Errorf("ensure user: %w", err)
	}
	if !u.Active() {
		return domainuser.User{}, fmt.Errorf("user %s is deleted: %w", id, record.ErrUnauthenticated)
	}

	if s.cache != nil {
		if err := s.cache.Remember(ctx, u, s.ttl); err != nil {
			slog.WarnContext(ctx, "user cache store failed", "user_id", id, "error", err)
		}
	}
	u.Email = claims.Email
	return u, nil
}

func (s *Service) claims(ctx context.Context, credential string) (portauth.Claims, error) {
	token := strings.TrimSpace(credential)
	if token == "" || strings.ContainsAny(token, " \t") {
		return portauth.Claims{}, fmt.Errorf("missing or malformed credential: %w", record.ErrUnauthenticated)
	}
	claims, err := s.verifier.Verify(ctx, token)
	if err != nil {
		return portauth.Claims{}, fmt.Errorf("%w: %v", record.ErrUnauthenticated, err)
	}
	if claims.Subject == "" {
		return portauth.Claims{}, fmt.Errorf("token has no subject: %w", record.ErrUnauthenticated)
	}
	return claims, nil
}
