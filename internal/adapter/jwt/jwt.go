// Package jwt verifies and mints HS256 bearer tokens in the shape issued by
// Supabase Auth.
package jwt

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	portauth "github.com/alanyang/prompt-vault/internal/port/auth"
)

// DefaultAudience is the aud claim Supabase puts on user access tokens.
const DefaultAudience = "authenticated"

type claims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

type Authenticator struct {
	secret   []byte
	audience string
	issuer   string
	now      func() time.Time
}

// New returns an authenticator for secret. An empty audience falls back to
// DefaultAudience; an empty issuer is not checked.
func New(secret, audience, issuer string) (*Authenticator, error) {
	if secret == "" {
		return nil, errors.New("jwt secret required")
	}
	if audience == "" {
		audience = DefaultAudience
	}
	return &Authenticator{secret: []byte(secret), audience: audience, issuer: issuer, now: time.Now}, nil
}

func (a *Authenticator) Verify(_ context.Context, token string) (portauth.Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(a.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}

	var c claims
	_, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}, opts...)
	if err != nil {
		return portauth.Claims{}, fmt.Errorf("verifying token: %w", err)
	}

	out := portauth.Claims{Subject: c.Subject, Email: c.Email}
	if c.ExpiresAt != nil {
		out.ExpiresAt = c.ExpiresAt.Time
	}
	return out, nil
}

// Issue mints a token for subject. It exists for local development and
// tests; production tokens come from the identity provider.
func (a *Authenticator) Issue(subject, email string, ttl time.Duration) (string, error) {
	if subject == "" {
		return "", errors.New("subject required")
	}
	now := a.now()
	c := claims{
		Email: email,
		Role:  DefaultAudience,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			Audience:  jwt.ClaimStrings{a.audience},
			Issuer:    a.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}
