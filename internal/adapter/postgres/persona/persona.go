package persona

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alanyang/prompt-vault/internal/adapter/postgres/store"
	domainpersona "github.com/alanyang/prompt-vault/internal/domain/persona"
	"github.com/alanyang/prompt-vault/internal/domain/record"
)

// Repository implements port/persona.Repository.
type Repository struct {
	store *store.Store[domainpersona.Persona]
}

// New builds the repository. onDelete runs in the soft-delete transaction
// with the deleted persona; message references are cleared through it.
func New(pool *pgxpool.Pool, onDelete store.TxHook[domainpersona.Persona]) *Repository {
	return &Repository{store: store.New(pool, store.Table[domainpersona.Persona]{
		Name:         "personas",
		Kind:         "persona",
		Columns:      []string{"name", "description", "prompt"},
		Values:       values,
		Scan:         scan,
		OnSoftDelete: onDelete,
	})}
}

func values(p domainpersona.Persona) []any {
	return []any{p.Name, p.Description, p.Prompt}
}

func scan(row pgx.Row) (domainpersona.Persona, error) {
	var p domainpersona.Persona
	err := row.Scan(
		&p.ID, &p.UserID, &p.Name, &p.Description, &p.Prompt,
		&p.CreatedAt, &p.UpdatedAt, &p.DeletedAt, &p.Version,
	)
	return p, err
}

func (r *Repository) Create(ctx context.Context, owner record.UserID, d domainpersona.Draft) (domainpersona.Persona, error) {
	p, err := r.store.Insert(ctx, owner, d.Persona(), nil)
	if err != nil {
		return domainpersona.Persona{}, fmt.Errorf("create persona %q: %w", d.Name, err)
	}
	return p, nil
}

func (r *Repository) Get(ctx context.Context, owner record.UserID, id record.ID) (domainpersona.Persona, error) {
	return r.store.Get(ctx, owner, id)
}

func (r *Repository) List(ctx context.Context, owner record.UserID, page record.PageRequest) (record.Page[domainpersona.Persona], error) {
	return r.store.List(ctx, owner, nil, page)
}

func (r *Repository) Update(ctx context.Context, owner record.UserID, id record.ID, expected int64, patch domainpersona.Patch) (domainpersona.Persona, error) {
	return r.store.Update(ctx, owner, id, expected,
		func(_ context.Context, _ pgx.Tx, cur domainpersona.Persona) (domainpersona.Persona, error) {
			return patch.Apply(cur), nil
		})
}

func (r *Repository) SoftDelete(ctx context.Context, owner record.UserID, id record.ID, expected int64) error {
	_, err := r.store.SoftDelete(ctx, owner, id, expected)
	return err
}
