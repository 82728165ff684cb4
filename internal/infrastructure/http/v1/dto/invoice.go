package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"billcraft/internal/core/apperror"
	"billcraft/internal/core/id"
	"billcraft/internal/domain/documents/invoice"
	"billcraft/internal/domain/totals"
)

// CreateInvoiceRequest creates an invoice with its items.
type CreateInvoiceRequest struct {
	ClientID        string           `json:"client_id" binding:"required"`
	ProjectID       *string          `json:"project_id"`
	Items           []ItemRequest    `json:"items" binding:"required"`
	TaxRate         *decimal.Decimal `json:"tax_rate"`
	DiscountPercent *decimal.Decimal `json:"discount_percent"`
	DiscountAmount  *decimal.Decimal `json:"discount_amount"`
	Notes           string           `json:"notes"`
	DueDate         *time.Time       `json:"due_date"`
}

// Discount resolves the requested discount mode.
func (r *CreateInvoiceRequest) Discount() (totals.Discount, error) {
	return resolveDiscount(r.DiscountPercent, r.DiscountAmount)
}

// ToEntity converts the request into a domain invoice.
func (r *CreateInvoiceRequest) ToEntity() (*invoice.Invoice, error) {
	clientID, err := id.Parse(r.ClientID)
	if err != nil {
		return nil, apperror.NewValidation("invalid client_id").WithDetail("field", "client_id")
	}

	inv := invoice.New(clientID)
	if r.ProjectID != nil {
		projectID, err := id.Parse(*r.ProjectID)
		if err != nil {
			return nil, apperror.NewValidation("invalid project_id").WithDetail("field", "project_id")
		}
		inv.ProjectID = &projectID
	}
	if r.TaxRate != nil {
		inv.TaxRate = *r.TaxRate
	}
	inv.Notes = r.Notes
	inv.DueDate = r.DueDate

	for _, it := range r.Items {
		inv.AddItem(it.Description, it.Quantity, it.UnitPrice)
	}

	return inv, nil
}

// UpdateInvoiceHeaderRequest patches mutable header fields.
type UpdateInvoiceHeaderRequest struct {
	IssueDate *time.Time `json:"issue_date"`
	DueDate   *time.Time `json:"due_date"`
	Notes     *string    `json:"notes"`
}

// InvoiceItems converts replace-items rows into domain items.
func (r *ReplaceItemsRequest) InvoiceItems() []invoice.Item {
	items := make([]invoice.Item, len(r.Items))
	for i, it := range r.Items {
		items[i] = invoice.Item{
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
		}
	}
	return items
}

// InvoiceResponse is the API shape of an invoice.
type InvoiceResponse struct {
	ID             string          `json:"id"`
	Number         string          `json:"number"`
	Status         string          `json:"status"`
	IssueDate      time.Time       `json:"issueDate"`
	DueDate        *time.Time      `json:"dueDate,omitempty"`
	PaidDate       *time.Time      `json:"paidDate,omitempty"`
	QuotationID    *string         `json:"quotationId,omitempty"`
	ClientID       string          `json:"clientId"`
	ClientName     string          `json:"clientName,omitempty"`
	ProjectID      *string         `json:"projectId,omitempty"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	TaxRate        decimal.Decimal `json:"taxRate"`
	TaxAmount      decimal.Decimal `json:"taxAmount"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	Total          decimal.Decimal `json:"total"`
	Notes          string          `json:"notes,omitempty"`
	Version        int             `json:"version"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
	Items          []ItemResponse  `json:"items,omitempty"`
}

// FromInvoice maps a domain invoice to its response shape.
func FromInvoice(inv *invoice.Invoice) InvoiceResponse {
	resp := InvoiceResponse{
		ID:             inv.ID.String(),
		Number:         inv.Number,
		Status:         string(inv.Status),
		IssueDate:      inv.IssueDate,
		DueDate:        inv.DueDate,
		PaidDate:       inv.PaidDate,
		ClientID:       inv.ClientID.String(),
		ClientName:     inv.ClientName,
		Subtotal:       inv.Subtotal,
		TaxRate:        inv.TaxRate,
		TaxAmount:      inv.TaxAmount,
		DiscountAmount: inv.DiscountAmount,
		Total:          inv.Total,
		Notes:          inv.Notes,
		Version:        inv.Version,
		CreatedAt:      inv.CreatedAt,
		UpdatedAt:      inv.UpdatedAt,
	}
	if inv.QuotationID != nil {
		s := inv.QuotationID.String()
		resp.QuotationID = &s
	}
	if inv.ProjectID != nil {
		s := inv.ProjectID.String()
		resp.ProjectID = &s
	}
	for _, it := range inv.Items {
		resp.Items = append(resp.Items, ItemResponse{
			LineID:      it.LineID.String(),
			LineNo:      it.LineNo,
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Total:       it.Total,
		})
	}
	return resp
}

// FromInvoiceList maps a list page to response shapes (headers only).
func FromInvoiceList(items []*invoice.Invoice) []InvoiceResponse {
	out := make([]InvoiceResponse, len(items))
	for i, inv := range items {
		out[i] = FromInvoice(inv)
	}
	return out
}
