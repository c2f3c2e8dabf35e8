package user

import (
	"context"

	"github.com/alanyang/prompt-vault/internal/domain/record"
	domainuser "github.com/alanyang/prompt-vault/internal/domain/user"
)

type Repository interface {
	// Ensure returns the user row for id, creating it on first sight.
	Ensure(ctx context.Context, id record.UserID) (domainuser.User, error)
}
