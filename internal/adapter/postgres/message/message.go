package message

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alanyang/prompt-vault/internal/adapter/postgres"
	"github.com/alanyang/prompt-vault/internal/adapter/postgres/store"
	domainmessage "github.com/alanyang/prompt-vault/internal/domain/message"
	domainpersona "github.com/alanyang/prompt-vault/internal/domain/persona"
	"github.com/alanyang/prompt-vault/internal/domain/record"
)

// Repository implements port/message.Repository.
type Repository struct {
	pool  *pgxpool.Pool
	store *store.Store[domainmessage.Message]
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{
		pool: pool,
		store: store.New(pool, store.Table[domainmessage.Message]{
			Name:    "messages",
			Kind:    "message",
			Columns: []string{"persona_id", "type", "title", "content", "summary", "starred"},
			Values:  values,
			Scan:    scan,
			Archive: archive,
		}),
	}
}

func values(m domainmessage.Message) []any {
	return []any{m.PersonaID, string(m.Type), m.Title, m.Content, m.Summary, m.Starred}
}

func scan(row pgx.Row) (domainmessage.Message, error) {
	var m domainmessage.Message
	err := row.Scan(
		&m.ID, &m.UserID, &m.PersonaID, &m.Type, &m.Title, &m.Content, &m.Summary, &m.Starred,
		&m.CreatedAt, &m.UpdatedAt, &m.DeletedAt, &m.Version,
	)
	return m, err
}

const revisionColumns = `message_id, version, user_id, persona_id, type, title, content, summary, starred,
	created_at, updated_at, deleted_at, archived_at`

func archive(ctx context.Context, tx pgx.Tx, m domainmessage.Message, at time.Time) error {
	query := `INSERT INTO message_revisions (` + revisionColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`

	_, err := tx.Exec(ctx, query,
		m.ID, m.Version, m.UserID, m.PersonaID, string(m.Type), m.Title, m.Content, m.Summary, m.Starred,
		m.CreatedAt, m.UpdatedAt, m.DeletedAt, at,
	)
	return err
}

// DetachPersona clears the reference to p on its owner's active messages.
// It runs inside the persona's soft-delete transaction; every cleared message
// is archived and counts as a mutation.
func DetachPersona(ctx context.Context, tx pgx.Tx, p domainpersona.Persona, at time.Time) error {
	_, err := tx.Exec(ctx, `
		SELECT id FROM messages
		WHERE user_id = $1 AND persona_id = $2 AND deleted_at IS NULL
		FOR UPDATE`, p.UserID, p.ID)
	if err != nil {
		return fmt.Errorf("locking messages of persona %s: %w", p.ID, err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO message_revisions (`+revisionColumns+`)
		SELECT id, version, user_id, persona_id, type, title, content, summary, starred,
			created_at, updated_at, deleted_at, $3
		FROM messages
		WHERE user_id = $1 AND persona_id = $2 AND deleted_at IS NULL`, p.UserID, p.ID, at)
	if err != nil {
		return fmt.Errorf("archiving messages of persona %s: %w", p.ID, err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE messages SET
			persona_id = NULL,
			updated_at = GREATEST($3::timestamptz, updated_at + interval '1 microsecond'),
			version = version + 1
		WHERE user_id = $1 AND persona_id = $2 AND deleted_at IS NULL`, p.UserID, p.ID, at)
	if err != nil {
		return fmt.Errorf("clearing persona %s on messages: %w", p.ID, err)
	}
	return nil
}

// checkPersona holds a share lock on the referenced persona so it cannot be
// deleted before the message write commits. Callers take it before any
// message row lock, the same order as a persona delete followed by
// DetachPersona.
func checkPersona(ctx context.Context, tx pgx.Tx, owner record.UserID, id *record.ID) error {
	if id == nil {
		return nil
	}
	var one int
	err := tx.QueryRow(ctx, `
		SELECT 1 FROM personas
		WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL
		FOR SHARE`, *id, owner).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: persona_id %s is not an active persona", record.ErrValidation, *id)
	}
	return err
}

func (r *Repository) Create(ctx context.Context, owner record.UserID, d domainmessage.Draft) (domainmessage.Message, error) {
	return r.store.Insert(ctx, owner, d.Message(),
		func(ctx context.Context, tx pgx.Tx, m domainmessage.Message) error {
			return checkPersona(ctx, tx, owner, m.PersonaID)
		})
}

func (r *Repository) Get(ctx context.Context, owner record.UserID, id record.ID) (domainmessage.Message, error) {
	return r.store.Get(ctx, owner, id)
}

func (r *Repository) List(ctx context.Context, owner record.UserID, f domainmessage.Filter, page record.PageRequest) (record.Page[domainmessage.Message], error) {
	var conds []store.Cond
	if f.Type != nil {
		conds = append(conds, store.Cond{Column: "type", Value: string(*f.Type)})
	}
	if f.Starred != nil {
		conds = append(conds, store.Cond{Column: "starred", Value: *f.Starred})
	}
	if f.PersonaID != nil {
		conds = append(conds, store.Cond{Column: "persona_id", Value: *f.PersonaID})
	}
	if f.Unlinked {
		conds = append(conds, store.Cond{Column: "persona_id"})
	}
	return r.store.List(ctx, owner, conds, page)
}

func (r *Repository) Update(ctx context.Context, owner record.UserID, id record.ID, expected int64, p domainmessage.Patch) (domainmessage.Message, error) {
	var check func(ctx context.Context, tx pgx.Tx) error
	if p.LinksPersona() {
		check = func(ctx context.Context, tx pgx.Tx) error {
			return checkPersona(ctx, tx, owner, p.PersonaID)
		}
	}
	return r.store.UpdateChecked(ctx, owner, id, expected, check,
		func(_ context.Context, _ pgx.Tx, cur domainmessage.Message) (domainmessage.Message, error) {
			return p.Apply(cur), nil
		})
}

func (r *Repository) SoftDelete(ctx context.Context, owner record.UserID, id record.ID, expected int64) error {
	_, err := r.store.SoftDelete(ctx, owner, id, expected)
	return err
}

func (r *Repository) History(ctx context.Context, owner record.UserID, id record.ID, page record.PageRequest) (record.Page[domainmessage.Revision], error) {
	limit, err := page.Limit()
	if err != nil {
		return record.Page[domainmessage.Revision]{}, err
	}
	if _, err := r.store.Get(ctx, owner, id); err != nil {
		return record.Page[domainmessage.Revision]{}, err
	}

	var total int64
	err = r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM message_revisions
		WHERE message_id = $1 AND user_id = $2`, id, owner).Scan(&total)
	if err != nil {
		return record.Page[domainmessage.Revision]{}, postgres.Classify("counting message revisions", err)
	}

	query := `SELECT ` + revisionColumns + ` FROM message_revisions
		WHERE message_id = $1 AND user_id = $2`
	args := []any{id, owner}
	if page.Token != "" {
		before, err := record.DecodeVersionCursor(page.Token)
		if err != nil {
			return record.Page[domainmessage.Revision]{}, err
		}
		query += " AND version < $3"
		args = append(args, before)
	}
	query += fmt.Sprintf(" ORDER BY version DESC LIMIT %d", limit+1)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return record.Page[domainmessage.Revision]{}, postgres.Classify("listing message revisions", err)
	}
	defer rows.Close()

	var revs []domainmessage.Revision
	for rows.Next() {
		var rv domainmessage.Revision
		if err := rows.Scan(
			&rv.ID, &rv.Version, &rv.UserID, &rv.PersonaID, &rv.Type, &rv.Title, &rv.Content,
			&rv.Summary, &rv.Starred, &rv.CreatedAt, &rv.UpdatedAt, &rv.DeletedAt, &rv.ArchivedAt,
		); err != nil {
			return record.Page[domainmessage.Revision]{}, postgres.Classify("scanning message revision", err)
		}
		revs = append(revs, rv)
	}
	if err := rows.Err(); err != nil {
		return record.Page[domainmessage.Revision]{}, postgres.Classify("listing message revisions", err)
	}
	out := record.Trim(revs, limit, func(rv domainmessage.Revision) string {
		return record.EncodeVersionCursor(rv.Version)
	})
	out.Total = total
	return out, nil
}
