package pdf

import (
	"billcraft/internal/domain/catalogs/client"
	"billcraft/internal/domain/documents/invoice"
	"billcraft/internal/domain/documents/quotation"
)

// FromQuotation builds the renderer view of a hydrated quotation.
func FromQuotation(q *quotation.Quotation, c *client.Client) Document {
	doc := Document{
		Kind:           "Quotation",
		Number:         q.Number,
		Status:         string(q.Status),
		IssueDate:      q.IssueDate,
		Client:         partyFromClient(c),
		ShowUnit:       true,
		Subtotal:       q.Subtotal,
		TaxRate:        q.TaxRate,
		TaxAmount:      q.TaxAmount,
		DiscountAmount: q.DiscountAmount,
		Total:          q.Total,
		Notes:          q.Notes,
	}

	if q.ValidUntil != nil {
		doc.ExtraDates = append(doc.ExtraDates, DateField{Label: "Valid until", Date: *q.ValidUntil})
	}

	doc.Items = make([]Line, len(q.Items))
	for i, it := range q.Items {
		doc.Items[i] = Line{
			Description: it.Description,
			Unit:        it.Unit,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Total:       it.Total,
		}
	}

	return doc
}

// FromInvoice builds the renderer view of a hydrated invoice.
func FromInvoice(inv *invoice.Invoice, c *client.Client) Document {
	doc := Document{
		Kind:           "Invoice",
		Number:         inv.Number,
		Status:         string(inv.Status),
		IssueDate:      inv.IssueDate,
		Client:         partyFromClient(c),
		ShowUnit:       false,
		Subtotal:       inv.Subtotal,
		TaxRate:        inv.TaxRate,
		TaxAmount:      inv.TaxAmount,
		DiscountAmount: inv.DiscountAmount,
		Total:          inv.Total,
		Notes:          inv.Notes,
	}

	if inv.DueDate != nil {
		doc.ExtraDates = append(doc.ExtraDates, DateField{Label: "Due", Date: *inv.DueDate})
	}
	if inv.PaidDate != nil {
		doc.ExtraDates = append(doc.ExtraDates, DateField{Label: "Paid", Date: *inv.PaidDate})
	}

	doc.Items = make([]Line, len(inv.Items))
	for i, it := range inv.Items {
		doc.Items[i] = Line{
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Total:       it.Total,
		}
	}

	return doc
}

func partyFromClient(c *client.Client) Party {
	if c == nil {
		return Party{}
	}
	return Party{
		Name:    c.Name,
		Company: deref(c.Company),
		Address: deref(c.Address),
		Email:   deref(c.Email),
		Phone:   deref(c.Phone),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
