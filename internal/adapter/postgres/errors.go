package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/alanyang/prompt-vault/internal/domain/record"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
)

// Classify maps a driver error onto the record error kinds. Errors that
// already carry a kind pass through; everything the database did not reject
// on content grounds is reported as record.ErrStoreUnavailable.
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if record.IsKnown(err) {
		return fmt.Errorf("%s: %w", op, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return fmt.Errorf("%s: %w: %s", op, record.ErrConflict, pgErr.ConstraintName)
		case codeForeignKeyViolation, codeCheckViolation:
			return fmt.Errorf("%s: %w: %s", op, record.ErrValidation, pgErr.ConstraintName)
		}
	}
	return fmt.Errorf("%s: %w: %w", op, record.ErrStoreUnavailable, err)
}
