package record

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PageRequest asks for one page of a listing. Size 0 means DefaultPageSize;
// sizes above MaxPageSize are clamped.
type PageRequest struct {
	Size  int
	Token string
}

// Page is one slice of an ordered listing. NextToken is empty at end of data.
// Total is the size of the whole listing, not of this page.
type Page[T any] struct {
	Items     []T    `json:"items"`
	NextToken string `json:"next_token,omitempty"`
	Total     int64  `json:"total"`
}

// Cursor is the last-seen position in a (created_at DESC, id DESC) listing.
type Cursor struct {
	CreatedAt time.Time
	ID        ID
}

// Limit returns the effective page size.
func (p PageRequest) Limit() (int, error) {
	switch {
	case p.Size < 0:
		return 0, fmt.Errorf("%w: page size must not be negative", ErrValidation)
	case p.Size == 0:
		return DefaultPageSize, nil
	case p.Size > MaxPageSize:
		return MaxPageSize, nil
	}
	return p.Size, nil
}

// Cursor decodes the page token, returning nil for the first page.
func (p PageRequest) Cursor() (*Cursor, error) {
	if p.Token == "" {
		return nil, nil
	}
	c, err := DecodeCursor(p.Token)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func EncodeCursor(c Cursor) string {
	raw := strconv.FormatInt(c.CreatedAt.UnixMicro(), 10) + "." + string(c.ID)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

func DecodeCursor(token string) (Cursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, fmt.Errorf("%w: malformed page token", ErrValidation)
	}
	micros, id, ok := strings.Cut(string(raw), ".")
	if !ok {
		return Cursor{}, fmt.Errorf("%w: malformed page token", ErrValidation)
	}
	us, err := strconv.ParseInt(micros, 10, 64)
	if err != nil {
		return Cursor{}, fmt.Errorf("%w: malformed page token", ErrValidation)
	}
	parsed, ok := ParseID(id)
	if !ok {
		return Cursor{}, fmt.Errorf("%w: malformed page token", ErrValidation)
	}
	return Cursor{CreatedAt: time.UnixMicro(us).UTC(), ID: parsed}, nil
}

// EncodeVersionCursor and DecodeVersionCursor page through a single record's
// revisions, which are ordered by version alone.
func EncodeVersionCursor(version int64) string {
	return base64.RawURLEncoding.EncodeToString([]byte("v" + strconv.FormatInt(version, 10)))
}

func DecodeVersionCursor(token string) (int64, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil || len(raw) < 2 || raw[0] != 'v' {
		return 0, fmt.Errorf("%w: malformed page token", ErrValidation)
	}
	v, err := strconv.ParseInt(string(raw[1:]), 10, 64)
	if err != nil || v < 1 {
		return 0, fmt.Errorf("%w: malformed page token", ErrValidation)
	}
	return v, nil
}

// Trim cuts a limit+1 fetch down to limit items and derives the next token
// from the last kept item.
func Trim[T any](items []T, limit int, next func(T) string) Page[T] {
	if items == nil {
		items = []T{}
	}
	if len(items) <= limit {
		return Page[T]{Items: items}
	}
	items = items[:limit]
	return Page[T]{Items: items, NextToken: next(items[len(items)-1])}
}

// CursorOf returns the listing position of e.
func CursorOf[T Entity](e T) string {
	return EncodeCursor(Cursor{CreatedAt: e.Meta().CreatedAt, ID: e.Key()})
}
