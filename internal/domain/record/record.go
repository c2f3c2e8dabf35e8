package record

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ID is the primary key of a stored record: a UUIDv7 in canonical form.
// The leading 48 bits are a millisecond timestamp, so lexicographic order
// of IDs follows generation order.
type ID string

// UserID is the opaque subject issued by the identity provider.
type UserID string

// NewID returns a fresh, time-sortable identifier.
func NewID() ID {
	return ID(uuid.Must(uuid.NewV7()).String())
}

// ParseID reports whether s is a well-formed record identifier.
func ParseID(s string) (ID, bool) {
	u, err := uuid.Parse(s)
	if err != nil || u.Version() != 7 {
		return "", false
	}
	return ID(u.String()), true
}

// Lifecycle is embedded by value in every stored entity.
type Lifecycle struct {
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
	Version   int64      `json:"version"`
}

func (l Lifecycle) Meta() Lifecycle { return l }

// Active is false once the record has been soft-deleted.
func (l Lifecycle) Active() bool { return l.DeletedAt == nil }

// Entity is the capability the versioned store needs from a record kind.
type Entity interface {
	Key() ID
	Owner() UserID
	Meta() Lifecycle
}

// Now returns the current instant at the precision the store persists.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// Ref parses a caller-supplied identifier. A malformed id cannot name any
// record, so it is reported as ErrNotFound.
func Ref(kind, s string) (ID, error) {
	id, ok := ParseID(s)
	if !ok {
		return "", fmt.Errorf("%s %q: %w", kind, s, ErrNotFound)
	}
	return id, nil
}

// CheckVersion rejects expected versions no record can carry.
func CheckVersion(expected int64) error {
	if expected < 1 {
		return fmt.Errorf("%w: version must be at least 1", ErrValidation)
	}
	return nil
}

// CheckOwner rejects calls made without an authenticated owner.
func CheckOwner(owner UserID) error {
	if owner == "" {
		return ErrUnauthenticated
	}
	return nil
}
