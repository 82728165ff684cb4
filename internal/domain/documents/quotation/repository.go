package quotation

import (
	"context"

	"billcraft/internal/core/id"
	"billcraft/internal/domain"
)

// Repository defines persistence operations for quotation documents.
// Multi-row operations are expected to run inside a transaction provided
// by tx.Manager through the context.
type Repository interface {
	// Header operations
	Create(ctx context.Context, doc *Quotation) error
	GetByID(ctx context.Context, docID id.ID) (*Quotation, error)
	GetByNumber(ctx context.Context, number string) (*Quotation, error)
	Update(ctx context.Context, doc *Quotation) error
	Delete(ctx context.Context, docID id.ID) error

	// Row lock for status transitions and item replacement
	GetForUpdate(ctx context.Context, docID id.ID) (*Quotation, error)

	// Item operations
	GetItems(ctx context.Context, docID id.ID) ([]Item, error)
	SaveItems(ctx context.Context, docID id.ID, items []Item) error

	// List retrieves headers with denormalized client name, newest first.
	List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Quotation], error)
}
