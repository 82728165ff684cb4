// Package catalog_repo provides PostgreSQL implementations for catalog
// repositories.
package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"billcraft/internal/core/apperror"
	"billcraft/internal/core/id"
	"billcraft/internal/domain/catalogs/client"
	"billcraft/internal/infrastructure/storage/postgres"
)

const clientsTable = "cat_clients"

// ClientRepo implements client.Repository.
type ClientRepo struct {
	txManager *postgres.TxManager
	cols      []string
}

// Compile-time interface check.
var _ client.Repository = (*ClientRepo)(nil)

// NewClientRepo creates a new client repository.
func NewClientRepo(txManager *postgres.TxManager) *ClientRepo {
	return &ClientRepo{
		txManager: txManager,
		cols:      postgres.ExtractDBColumns[client.Client](),
	}
}

func (r *ClientRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// GetByID retrieves a client by ID.
func (r *ClientRepo) GetByID(ctx context.Context, clientID id.ID) (*client.Client, error) {
	q := r.builder().
		Select(r.cols...).
		From(clientsTable).
		Where(squirrel.Eq{"id": clientID})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var c client.Client
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &c, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("client", clientID.String())
		}
		return nil, fmt.Errorf("get client: %w", err)
	}

	return &c, nil
}

// Exists reports whether a client with the given ID exists.
func (r *ClientRepo) Exists(ctx context.Context, clientID id.ID) (bool, error) {
	var exists bool
	err := r.txManager.GetQuerier(ctx).
		QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM "+clientsTable+" WHERE id = $1)", clientID).
		Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check client exists: %w", err)
	}
	return exists, nil
}
