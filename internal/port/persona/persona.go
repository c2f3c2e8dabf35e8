package persona

import (
	"context"

	domainpersona "github.com/alanyang/prompt-vault/internal/domain/persona"
	"github.com/alanyang/prompt-vault/internal/domain/record"
)

// Repository is the versioned, owner-scoped storage of personas.
// Every method takes the owner explicitly; records of other owners are
// reported as record.ErrNotFound.
type Repository interface {
	Create(ctx context.Context, owner record.UserID, d domainpersona.Draft) (domainpersona.Persona, error)
	Get(ctx context.Context, owner record.UserID, id record.ID) (domainpersona.Persona, error)
	List(ctx context.Context, owner record.UserID, page record.PageRequest) (record.Page[domainpersona.Persona], error)

	// Update applies p if the stored version equals expected.
	Update(ctx context.Context, owner record.UserID, id record.ID, expected int64, p domainpersona.Patch) (domainpersona.Persona, error)

	// SoftDelete marks the persona deleted and clears references to it from
	// the owner's active messages in the same transaction.
	SoftDelete(ctx context.Context, owner record.UserID, id record.ID, expected int64) error
}
