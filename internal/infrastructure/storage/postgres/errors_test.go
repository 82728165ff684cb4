package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"billcraft/internal/core/apperror"
)

func TestMapError_UniqueViolation(t *testing.T) {
	pgErr := &pgconn.PgError{
		Code:           pgUniqueViolation,
		ConstraintName: "uq_doc_invoices_number",
		Detail:         "Key (number)=(INV-2026-0001) already exists.",
	}

	err := MapError(fmt.Errorf("insert doc_invoices: %w", pgErr), "invoice")
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeDuplicate, appErr.Code)
	assert.Equal(t, "number", appErr.Details["field"])
	assert.Equal(t, "INV-2026-0001", appErr.Details["value"])
}

func TestMapError_ForeignKeyViolation(t *testing.T) {
	pgErr := &pgconn.PgError{
		Code:           pgForeignKeyViolation,
		ConstraintName: "fk_doc_invoices_quotation",
	}

	err := MapError(pgErr, "quotation")
	assert.True(t, apperror.IsConflict(err))
}

func TestMapError_PassthroughAndNil(t *testing.T) {
	assert.NoError(t, MapError(nil, "invoice"))

	plain := errors.New("connection refused")
	assert.Equal(t, plain, MapError(plain, "invoice"))
}
