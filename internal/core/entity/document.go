package entity

import (
	"context"
	"time"

	"billcraft/internal/core/apperror"
	"billcraft/internal/core/id"
	"billcraft/internal/core/status"
	"billcraft/internal/core/types"
)

// Document is the shared header of the two billing documents
// (quotation and invoice): identity, client reference, status and totals.
type Document struct {
	BaseDocument

	// Number is the public reference (auto-generated, unique per kind,
	// immutable once assigned)
	Number string `db:"number" json:"number"`

	// Status is the current lifecycle state, guarded by the status machine
	Status status.Status `db:"status" json:"status"`

	// IssueDate is the business date of the document
	IssueDate time.Time `db:"issue_date" json:"issueDate"`

	// ClientID references the billed client (required)
	ClientID id.ID `db:"client_id" json:"clientId"`

	// ProjectID optionally ties the document to a project
	ProjectID *id.ID `db:"project_id" json:"projectId,omitempty"`

	// Totals, persisted as computed by the totals calculator.
	// subtotal == Σ(item.total); total == subtotal + tax - discount, ≥ 0.
	Subtotal       types.Money `db:"subtotal" json:"subtotal"`
	TaxRate        types.Money `db:"tax_rate" json:"taxRate"`
	TaxAmount      types.Money `db:"tax_amount" json:"taxAmount"`
	DiscountAmount types.Money `db:"discount_amount" json:"discountAmount"`
	Total          types.Money `db:"total" json:"total"`

	// Notes is free-form text shown on the rendered document
	Notes string `db:"notes" json:"notes,omitempty"`
}

// NewDocument creates a new document header in the initial state.
func NewDocument(clientID id.ID) Document {
	return Document{
		BaseDocument: NewBaseDocument(),
		Status:       status.Initial,
		IssueDate:    time.Now().UTC(),
		ClientID:     clientID,
	}
}

// Validate implements Validatable.
func (d *Document) Validate(ctx context.Context) error {
	if id.IsNil(d.ClientID) {
		return apperror.NewValidation("client is required").
			WithDetail("field", "clientId")
	}

	if d.IssueDate.IsZero() {
		return apperror.NewValidation("issue date is required").
			WithDetail("field", "issueDate")
	}

	if d.Total.IsNegative() {
		return apperror.NewValidation("total must not be negative").
			WithDetail("field", "total")
	}

	return nil
}

// CanEdit checks whether items and header fields may still be changed.
// Only draft documents are editable; sent and later states are frozen.
func (d *Document) CanEdit(kind status.Kind) error {
	if d.Status != status.Initial {
		return apperror.NewConflict("only draft documents can be edited").
			WithDetail("kind", string(kind)).
			WithDetail("status", string(d.Status))
	}
	return nil
}
