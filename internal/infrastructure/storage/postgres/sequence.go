package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// SequenceQuerier routes numbering queries through the transaction manager,
// so a number allocated while creating a document shares its transaction and
// is released by a rollback.
type SequenceQuerier struct {
	txManager *TxManager
}

// NewSequenceQuerier wraps the transaction manager for the numerator.
func NewSequenceQuerier(txManager *TxManager) *SequenceQuerier {
	return &SequenceQuerier{txManager: txManager}
}

func (q *SequenceQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return q.txManager.GetQuerier(ctx).QueryRow(ctx, sql, args...)
}
