package postgres

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"billcraft/internal/core/apperror"
)

// PostgreSQL error codes this layer translates.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// MapError translates low-level pgx errors into application errors so
// services can branch on error codes instead of SQLSTATE strings.
//
//   - unique violations become Duplicate errors, with the violated column
//     derived from the constraint name
//   - foreign key violations become Conflict errors (e.g. deleting a
//     quotation that an invoice still references)
//
// Everything else is returned unchanged.
func MapError(err error, entity string) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgUniqueViolation:
		return apperror.NewDuplicate(entity, constraintField(pgErr.ConstraintName), duplicateValue(pgErr.Detail)).
			WithCause(err)
	case pgForeignKeyViolation:
		return apperror.NewConflict(entity + " is referenced by another record").
			WithDetail("constraint", pgErr.ConstraintName).
			WithCause(err)
	default:
		return err
	}
}

// constraintField guesses the violated column from a constraint named in the
// uq_<table>_<column> convention used by the migrations.
func constraintField(constraint string) string {
	for _, field := range []string{"number", "email", "name"} {
		if strings.Contains(constraint, field) {
			return field
		}
	}
	return constraint
}

// duplicateValue extracts the offending value from the PG detail line,
// which looks like: Key (number)=(INV-2026-0001) already exists.
func duplicateValue(detail string) string {
	start := strings.LastIndex(detail, ")=(")
	if start < 0 {
		return ""
	}
	rest := detail[start+3:]
	end := strings.Index(rest, ")")
	if end < 0 {
		return rest
	}
	return rest[:end]
}
