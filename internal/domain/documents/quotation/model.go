// Package quotation provides the Quotation document: a priced offer that a
// client can approve or reject before it becomes an invoice.
package quotation

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"billcraft/internal/core/apperror"
	"billcraft/internal/core/entity"
	"billcraft/internal/core/id"
	"billcraft/internal/core/status"
	"billcraft/internal/core/types"
	"billcraft/internal/domain/totals"
)

// Quotation represents a quotation document with its line items.
type Quotation struct {
	entity.Document

	// ValidUntil is the offer expiry date shown on the document
	ValidUntil *time.Time `db:"valid_until" json:"validUntil,omitempty"`

	// ClientName is denormalized for lists; populated by the repository
	ClientName string `db:"-" json:"clientName,omitempty"`

	// Items is the ordered table part
	Items []Item `db:"-" json:"items"`
}

// Item is one priced row of a quotation.
type Item struct {
	LineID      id.ID           `db:"line_id" json:"lineId"`
	LineNo      int             `db:"line_no" json:"lineNo"`
	Description string          `db:"description" json:"description"`
	Unit        string          `db:"unit" json:"unit"`
	Quantity    decimal.Decimal `db:"quantity" json:"quantity"`
	UnitPrice   types.Money     `db:"unit_price" json:"unitPrice"`
	Total       types.Money     `db:"total" json:"total"`
}

// New creates a draft quotation for a client.
func New(clientID id.ID) *Quotation {
	return &Quotation{
		Document: entity.NewDocument(clientID),
		Items:    make([]Item, 0),
	}
}

// AddItem appends a priced row; the line total is rounded to the minor unit.
func (q *Quotation) AddItem(description, unit string, quantity decimal.Decimal, unitPrice types.Money) {
	q.Items = append(q.Items, Item{
		LineID:      id.New(),
		LineNo:      len(q.Items) + 1,
		Description: description,
		Unit:        unit,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		Total:       totals.LineTotal(totals.Line{Quantity: quantity, UnitPrice: unitPrice}),
	})
}

// Lines exposes the items in the calculator's neutral shape.
func (q *Quotation) Lines() []totals.Line {
	lines := make([]totals.Line, len(q.Items))
	for i, it := range q.Items {
		lines[i] = totals.Line{Quantity: it.Quantity, UnitPrice: it.UnitPrice}
	}
	return lines
}

// ApplyTotals writes the computed money block onto the header.
func (q *Quotation) ApplyTotals(t totals.Totals) {
	q.Subtotal = t.Subtotal
	q.TaxAmount = t.TaxAmount
	q.DiscountAmount = t.DiscountAmount
	q.Total = t.Total
}

// Validate implements entity.Validatable.
func (q *Quotation) Validate(ctx context.Context) error {
	if err := q.Document.Validate(ctx); err != nil {
		return err
	}

	if len(q.Items) == 0 {
		return apperror.NewValidation("at least one line item is required").
			WithDetail("field", "items")
	}

	for i, it := range q.Items {
		if strings.TrimSpace(it.Description) == "" {
			return apperror.NewValidation("description is required").
				WithDetail("field", "items").
				WithDetail("position", i+1)
		}
		if !it.Quantity.IsPositive() {
			return apperror.NewValidation("quantity must be positive").
				WithDetail("field", "items").
				WithDetail("position", i+1)
		}
		if it.UnitPrice.IsNegative() {
			return apperror.NewValidation("unit price must not be negative").
				WithDetail("field", "items").
				WithDetail("position", i+1)
		}
	}

	return nil
}

// IsApproved reports whether the quotation can spawn an invoice.
func (q *Quotation) IsApproved() bool {
	return q.Status == status.QuotationApproved
}
