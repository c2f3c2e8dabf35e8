package user

import "github.com/alanyang/prompt-vault/internal/domain/record"

// User mirrors an identity-provider subject. Rows are created on first
// authenticated request and never hard-deleted.
type User struct {
	ID    record.UserID `json:"user_id"`
	Email string        `json:"email,omitempty"`
	record.Lifecycle
}
