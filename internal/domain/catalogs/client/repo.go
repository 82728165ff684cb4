package client

import (
	"context"

	"billcraft/internal/core/id"
)

// Repository defines the read operations billing documents need.
type Repository interface {
	// GetByID retrieves a client snapshot, NotFound if absent.
	GetByID(ctx context.Context, clientID id.ID) (*Client, error)

	// Exists checks the reference without hydrating the row.
	Exists(ctx context.Context, clientID id.ID) (bool, error)
}
