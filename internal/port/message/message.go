package message

import (
	"context"

	domainmessage "github.com/alanyang/prompt-vault/internal/domain/message"
	"github.com/alanyang/prompt-vault/internal/domain/record"
)

// Repository is the versioned, owner-scoped storage of messages.
type Repository interface {
	// Create fails with record.ErrValidation when the draft references a
	// persona that is not an active persona of owner.
	Create(ctx context.Context, owner record.UserID, d domainmessage.Draft) (domainmessage.Message, error)
	Get(ctx context.Context, owner record.UserID, id record.ID) (domainmessage.Message, error)
	List(ctx context.Context, owner record.UserID, f domainmessage.Filter, page record.PageRequest) (record.Page[domainmessage.Message], error)
	Update(ctx context.Context, owner record.UserID, id record.ID, expected int64, p domainmessage.Patch) (domainmessage.Message, error)
	SoftDelete(ctx context.Context, owner record.UserID, id record.ID, expected int64) error

	// History lists the revisions of an active message, newest first.
	History(ctx context.Context, owner record.UserID, id record.ID, page record.PageRequest) (record.Page[domainmessage.Revision], error)
}
