// Package store is the versioned, owner-scoped, soft-delete record store
// shared by every record kind.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alanyang/prompt-vault/internal/adapter/postgres"
	"github.com/alanyang/prompt-vault/internal/domain/record"
)

// TxHook runs inside the transaction of a mutation.
type TxHook[T record.Entity] func(ctx context.Context, tx pgx.Tx, v T, at time.Time) error

// Table describes how one record kind maps onto its table. Columns lists the
// kind-specific columns only; id, user_id and the lifecycle columns are
// handled by the store. Scan reads a row selected in the order
// id, user_id, Columns..., created_at, updated_at, deleted_at, version.
type Table[T record.Entity] struct {
	Name    string
	Kind    string
	Columns []string
	Values  func(T) []any
	Scan    func(pgx.Row) (T, error)

	// Archive receives the row as it was before an update or soft delete.
	Archive TxHook[T]
	// OnSoftDelete receives the row after it has been marked deleted.
	OnSoftDelete TxHook[T]
}

// Cond is an equality predicate on a trusted column name. A nil Value
// matches NULL.
type Cond struct {
	Column string
	Value  any
}

type Store[T record.Entity] struct {
	pool  *pgxpool.Pool
	table Table[T]
	cols  string
}

func New[T record.Entity](pool *pgxpool.Pool, table Table[T]) *Store[T] {
	all := append([]string{"id", "user_id"}, table.Columns...)
	all = append(all, "created_at", "updated_at", "deleted_at", "version")
	return &Store[T]{pool: pool, table: table, cols: strings.Join(all, ", ")}
}

// Columns is the select list matching Table.Scan.
func (s *Store[T]) Columns() string { return s.cols }

// Insert stores v as a new active record of owner. check, when non-nil, runs
// first in the same transaction.
func (s *Store[T]) Insert(ctx context.Context, owner record.UserID, v T, check func(ctx context.Context, tx pgx.Tx, v T) error) (T, error) {
	op := "inserting " + s.table.Kind
	id := record.NewID()
	now := record.Now()

	n := len(s.table.Columns)
	placeholders := make([]string, 0, n+4)
	for i := 1; i <= n+4; i++ {
		placeholders = append(placeholders, fmt.Sprintf("$%d", i))
	}
	query := fmt.Sprintf(`
		INSERT INTO %s (id, user_id, %s, created_at, updated_at, version)
		VALUES (%s, 1)
		RETURNING %s`,
		s.table.Name, strings.Join(s.table.Columns, ", "),
		strings.Join(placeholders, ", "), s.cols)

	args := []any{id, owner}
	args = append(args, s.table.Values(v)...)
	args = append(args, now, now)

	var created T
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if check != nil {
			if err := check(ctx, tx, v); err != nil {
				return err
			}
		}
		var err error
		created, err = s.table.Scan(tx.QueryRow(ctx, query, args...))
		return err
	})
	if err != nil {
		var zero T
		return zero, postgres.Classify(op, err)
	}
	return created, nil
}

// Get returns an active record of owner. Absent, deleted and foreign records
// are all ErrNotFound.
func (s *Store[T]) Get(ctx context.Context, owner record.UserID, id record.ID) (T, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s
		WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL`, s.cols, s.table.Name)

	v, err := s.table.Scan(s.pool.QueryRow(ctx, query, id, owner))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			var zero T
			return zero, fmt.Errorf("%s %s: %w", s.table.Kind, id, record.ErrNotFound)
		}
		var zero T
		return zero, postgres.Classify("querying "+s.table.Kind, err)
	}
	return v, nil
}

// List returns one page of owner's active records matching every cond,
// newest first. Total counts every match regardless of the page position.
func (s *Store[T]) List(ctx context.Context, owner record.UserID, conds []Cond, page record.PageRequest) (record.Page[T], error) {
	op := "listing " + s.table.Kind
	limit, err := page.Limit()
	if err != nil {
		return record.Page[T]{}, err
	}
	cursor, err := page.Cursor()
	if err != nil {
		return record.Page[T]{}, err
	}

	where := "user_id = $1 AND deleted_at IS NULL"
	args := []any{owner}
	argIdx := 2

	for _, c := range conds {
		if c.Value == nil {
			where += fmt.Sprintf(" AND %s IS NULL", c.Column)
			continue
		}
		where += fmt.Sprintf(" AND %s = $%d", c.Column, argIdx)
		args = append(args, c.Value)
		argIdx++
	}

	var total int64
	var items []T
	err = pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}, func(tx pgx.Tx) error {
		countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s`, s.table.Name, where)
		if err := tx.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
			return fmt.Errorf("counting: %w", err)
		}

		query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s`, s.cols, s.table.Name, where)
		pageArgs := args
		idx := argIdx
		if cursor != nil {
			query += fmt.Sprintf(" AND (created_at, id) < ($%d, $%d)", idx, idx+1)
			pageArgs = append(pageArgs, cursor.CreatedAt, cursor.ID)
			idx += 2
		}
		query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d", idx)
		pageArgs = append(pageArgs, limit+1)

		rows, err := tx.Query(ctx, query, pageArgs...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			v, err := s.table.Scan(rows)
			if err != nil {
				return fmt.Errorf("scanning: %w", err)
			}
			items = append(items, v)
		}
		return rows.Err()
	})
	if err != nil {
		return record.Page[T]{}, postgres.Classify(op, err)
	}
	out := record.Trim(items, limit, record.CursorOf[T])
	out.Total = total
	return out, nil
}

// Update applies a mutation to the record at the expected version. apply
// receives the current row and returns the new kind fields.
func (s *Store[T]) Update(ctx context.Context, owner record.UserID, id record.ID, expected int64, apply func(ctx context.Context, tx pgx.Tx, cur T) (T, error)) (T, error) {
	return s.UpdateChecked(ctx, owner, id, expected, nil, apply)
}

// UpdateChecked is Update with a check that runs in the same transaction
// before the row is locked. Locks taken by check are therefore always
// acquired ahead of the record's own row lock.
func (s *Store[T]) UpdateChecked(ctx context.Context, owner record.UserID, id record.ID, expected int64, check func(ctx context.Context, tx pgx.Tx) error, apply func(ctx context.Context, tx pgx.Tx, cur T) (T, error)) (T, error) {
	op := "updating " + s.table.Kind
	now := record.Now()

	sets := make([]string, 0, len(s.table.Columns))
	for i, col := range s.table.Columns {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, i+5))
	}
	query := fmt.Sprintf(`
		UPDATE %s SET %s,
			updated_at = GREATEST($4::timestamptz, updated_at + interval '1 microsecond'),
			version = version + 1
		WHERE id = $1 AND user_id = $2 AND version = $3 AND deleted_at IS NULL
		RETURNING %s`,
		s.table.Name, strings.Join(sets, ", "), s.cols)

	var updated T
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if check != nil {
			if err := check(ctx, tx); err != nil {
				return err
			}
		}
		cur, err := s.lock(ctx, tx, owner, id, expected)
		if err != nil {
			return err
		}
		next, err := apply(ctx, tx, cur)
		if err != nil {
			return err
		}
		if s.table.Archive != nil {
			if err := s.table.Archive(ctx, tx, cur, now); err != nil {
				return fmt.Errorf("archiving %s: %w", s.table.Kind, err)
			}
		}

		args := []any{id, owner, expected, now}
		args = append(args, s.table.Values(next)...)
		updated, err = s.table.Scan(tx.QueryRow(ctx, query, args...))
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%s %s: %w", s.table.Kind, id, record.ErrVersionConflict)
		}
		return err
	})
	if err != nil {
		var zero T
		return zero, postgres.Classify(op, err)
	}
	return updated, nil
}

// SoftDelete marks the record deleted at the expected version and returns
// its final state.
func (s *Store[T]) SoftDelete(ctx context.Context, owner record.UserID, id record.ID, expected int64) (T, error) {
	op := "deleting " + s.table.Kind
	now := record.Now()

	query := fmt.Sprintf(`
		UPDATE %s SET
			deleted_at = $4,
			updated_at = GREATEST($4::timestamptz, updated_at + interval '1 microsecond'),
			version = version + 1
		WHERE id = $1 AND user_id = $2 AND version = $3 AND deleted_at IS NULL
		RETURNING %s`, s.table.Name, s.cols)

	var deleted T
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		cur, err := s.lock(ctx, tx, owner, id, expected)
		if err != nil {
			return err
		}
		if s.table.Archive != nil {
			if err := s.table.Archive(ctx, tx, cur, now); err != nil {
				return fmt.Errorf("archiving %s: %w", s.table.Kind, err)
			}
		}

		deleted, err = s.table.Scan(tx.QueryRow(ctx, query, id, owner, expected, now))
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%s %s: %w", s.table.Kind, id, record.ErrVersionConflict)
		}
		if err != nil {
			return err
		}
		if s.table.OnSoftDelete != nil {
			return s.table.OnSoftDelete(ctx, tx, deleted, now)
		}
		return nil
	})
	if err != nil {
		var zero T
		return zero, postgres.Classify(op, err)
	}
	return deleted, nil
}

// lock takes the row lock and checks the preconditions shared by Update and
// SoftDelete: missing, then stale version, then already deleted.
func (s *Store[T]) lock(ctx context.Context, tx pgx.Tx, owner record.UserID, id record.ID, expected int64) (T, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1 AND user_id = $2 FOR UPDATE`, s.cols, s.table.Name)

	var zero T
	cur, err := s.table.Scan(tx.QueryRow(ctx, query, id, owner))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return zero, fmt.Errorf("%s %s: %w", s.table.Kind, id, record.ErrNotFound)
		}
		return zero, err
	}
	meta := cur.Meta()
	if meta.Version != expected {
		return zero, fmt.Errorf("%s %s at version %d, expected %d: %w",
			s.table.Kind, id, meta.Version, expected, record.ErrVersionConflict)
	}
	if !meta.Active() {
		return zero, fmt.Errorf("%s %s: %w", s.table.Kind, id, record.ErrNotFound)
	}
	return cur, nil
}
