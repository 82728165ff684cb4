// Package invoice provides the Invoice document: the billable counterpart
// of an approved quotation, carrying due and paid dates.
package invoice

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

// Invoice represents an invoice document with its line items.
type Invoice struct {
	entity.Document

	// DueDate is the payment deadline shown on the document
	DueDate *time.Time `db:"due_date" json:"dueDate,omitempty"`

	// PaidDate is stamped when the invoice enters the paid state
	PaidDate *time.Time `db:"paid_date" json:"paidDate,omitempty"`

	// QuotationID back-references the originating quotation, if any
	QuotationID *id.ID `db:"quotation_id" json:"quotationId,omitempty"`

	// ClientName is denormalized for lists; populated by the repository
	ClientName string `db:"-" json:"clientName,omitempty"`

	// Items is the ordered table part
	Items []Item `db:"-" json:"items"`
}

// Item is one priced row of an invoice. Invoices carry no unit label.
type Item struct {
	LineID      id.ID           `db:"line_id" json:"lineId"`
	LineNo      int             `db:"line_no" json:"lineNo"`
	Description string          `db:"description" json:"description"`
	Quantity    decimal.Decimal `db:"quantity" json:"quantity"`
	UnitPrice   types.Money     `db:"unit_price" json:"unitPrice"`
	Total       types.Money     `db:"total" json:"total"`
}

// New creates a draft invoice for a client.
func New(clientID id.ID) *Invoice {
	return &Invoice{
		Document: entity.NewDocument(clientID),
		Items:    make([]Item, 0),
	}
}

// AddItem appends a priced row; the line total is rounded to the minor unit.
func (inv *Invoice) AddItem(description string, quantity decimal.Decimal, unitPrice types.Money) {
	inv.Items = append(inv.Items, Item{
		LineID:      id.New(),
		LineNo:      len(inv.Items) + 1,
		Description: description,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		Total:       totals.LineTotal(totals.Line{Quantity: quantity, UnitPrice: unitPrice}),
	})
}

// Lines exposes the items in the calculator's neutral shape.
func (inv *Invoice) Lines() []totals.Line {
	lines := make([]totals.Line, len(inv.Items))
	for i, it := range inv.Items {
		lines[i] = totals.Line{Quantity: it.Quantity, UnitPrice: it.UnitPrice}
	}
	return lines
}

// ApplyTotals writes the computed money block onto the header.
func (inv *Invoice) ApplyTotals(t totals.Totals) {
	inv.Subtotal = t.Subtotal
	inv.TaxAmount = t.TaxAmount
	inv.DiscountAmount = t.DiscountAmount
	inv.Total = t.Total
}

// MarkPaid stamps the paid date. The only status transition with a side
// effect on another field.
func (inv *Invoice) MarkPaid(at time.Time) {
	inv.Status = status.InvoicePaid
	paidAt := at.UTC()
	inv.PaidDate = &paidAt
}

// Validate implements entity.Validatable.
func (inv *Invoice) Validate(ctx context.Context) error {
	if err := inv.Document.Validate(ctx); err != nil {
		return err
	}

	if len(inv.Items) == 0 {
		return apperror.NewValidation("at least one line item is required").
			WithDetail("field", "items")
	}

	for i, it := range inv.Items {
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
