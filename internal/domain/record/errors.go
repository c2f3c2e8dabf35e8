package record

import "errors"

// Error kinds surfaced by every operation. Callers classify with errors.Is;
// each layer adds context with %w.
var (
	ErrUnauthenticated  = errors.New("unauthenticated")
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrVersionConflict  = errors.New("version conflict")
	ErrValidation       = errors.New("validation failed")
	ErrStoreUnavailable = errors.New("store unavailable")
)

// IsKnown reports whether err already carries one of the kinds above.
func IsKnown(err error) bool {
	for _, k := range []error{
		ErrUnauthenticated, ErrNotFound, ErrConflict,
		ErrVersionConflict, ErrValidation, ErrStoreUnavailable,
	} {
		if errors.Is(err, k) {
			return true
		}
	}
	return false
}

// Retryable is true only for infrastructure failures. Mutations must be
// retried from a fresh read, since the outcome of the failed attempt is unknown.
func Retryable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}
