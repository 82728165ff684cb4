package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"billcraft/internal/core/apperror"
	"billcraft/internal/core/id"
	"billcraft/internal/domain/documents/quotation"
	"billcraft/internal/domain/totals"
)

// --- Requests ---

// ItemRequest is one line item in a create/replace request.
type ItemRequest struct {
	Description string          `json:"description" binding:"required"`
	Unit        string          `json:"unit"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// CreateQuotationRequest creates a quotation with its items.
type CreateQuotationRequest struct {
	ClientID        string           `json:"client_id" binding:"required"`
	ProjectID       *string          `json:"project_id"`
	Items           []ItemRequest    `json:"items" binding:"required"`
	TaxRate         *decimal.Decimal `json:"tax_rate"`
	DiscountPercent *decimal.Decimal `json:"discount_percent"`
	DiscountAmount  *decimal.Decimal `json:"discount_amount"`
	Notes           string           `json:"notes"`
	ValidUntil      *time.Time       `json:"valid_until"`
}

// Discount resolves the requested discount mode; percent and absolute are
// mutually exclusive.
func (r *CreateQuotationRequest) Discount() (totals.Discount, error) {
	return resolveDiscount(r.DiscountPercent, r.DiscountAmount)
}

// ToEntity converts the request into a domain quotation.
func (r *CreateQuotationRequest) ToEntity() (*quotation.Quotation, error) {
	clientID, err := id.Parse(r.ClientID)
	if err != nil {
		return nil, apperror.NewValidation("invalid client_id").WithDetail("field", "client_id")
	}

	q := quotation.New(clientID)
	if r.ProjectID != nil {
		projectID, err := id.Parse(*r.ProjectID)
		if err != nil {
			return nil, apperror.NewValidation("invalid project_id").WithDetail("field", "project_id")
		}
		q.ProjectID = &projectID
	}
	if r.TaxRate != nil {
		q.TaxRate = *r.TaxRate
	}
	q.Notes = r.Notes
	q.ValidUntil = r.ValidUntil

	for _, it := range r.Items {
		q.AddItem(it.Description, it.Unit, it.Quantity, it.UnitPrice)
	}

	return q, nil
}

// UpdateQuotationHeaderRequest patches mutable header fields.
type UpdateQuotationHeaderRequest struct {
	IssueDate  *time.Time `json:"issue_date"`
	ValidUntil *time.Time `json:"valid_until"`
	Notes      *string    `json:"notes"`
}

// ReplaceItemsRequest replaces the item set of a document.
type ReplaceItemsRequest struct {
	Items           []ItemRequest    `json:"items" binding:"required"`
	DiscountPercent *decimal.Decimal `json:"discount_percent"`
	DiscountAmount  *decimal.Decimal `json:"discount_amount"`
}

// Discount resolves the requested discount mode.
func (r *ReplaceItemsRequest) Discount() (totals.Discount, error) {
	return resolveDiscount(r.DiscountPercent, r.DiscountAmount)
}

// QuotationItems converts the request rows into domain items.
func (r *ReplaceItemsRequest) QuotationItems() []quotation.Item {
	items := make([]quotation.Item, len(r.Items))
	for i, it := range r.Items {
		items[i] = quotation.Item{
			Description: it.Description,
			Unit:        it.Unit,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
		}
	}
	return items
}

// SetStatusRequest requests a status transition.
type SetStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// resolveDiscount maps the two optional discount fields onto one mode.
func resolveDiscount(percent, amount *decimal.Decimal) (totals.Discount, error) {
	switch {
	case percent != nil && amount != nil:
		return totals.Discount{}, apperror.NewValidation("discount_percent and discount_amount are mutually exclusive")
	case percent != nil:
		return totals.PercentDiscount(*percent), nil
	case amount != nil:
		return totals.AbsoluteDiscount(*amount), nil
	default:
		return totals.NoDiscount(), nil
	}
}

// --- Responses ---

// ItemResponse is one line item of a document response.
type ItemResponse struct {
	LineID      string          `json:"lineId"`
	LineNo      int             `json:"lineNo"`
	Description string          `json:"description"`
	Unit        string          `json:"unit,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Total       decimal.Decimal `json:"total"`
}

// QuotationResponse is the API shape of a quotation.
type QuotationResponse struct {
	ID             string          `json:"id"`
	Number         string          `json:"number"`
	Status         string          `json:"status"`
	IssueDate      time.Time       `json:"issueDate"`
	ValidUntil     *time.Time      `json:"validUntil,omitempty"`
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

// FromQuotation maps a domain quotation to its response shape.
func FromQuotation(q *quotation.Quotation) QuotationResponse {
	resp := QuotationResponse{
		ID:             q.ID.String(),
		Number:         q.Number,
		Status:         string(q.Status),
		IssueDate:      q.IssueDate,
		ValidUntil:     q.ValidUntil,
		ClientID:       q.ClientID.String(),
		ClientName:     q.ClientName,
		Subtotal:       q.Subtotal,
		TaxRate:        q.TaxRate,
		TaxAmount:      q.TaxAmount,
		DiscountAmount: q.DiscountAmount,
		Total:          q.Total,
		Notes:          q.Notes,
		Version:        q.Version,
		CreatedAt:      q.CreatedAt,
		UpdatedAt:      q.UpdatedAt,
	}
	if q.ProjectID != nil {
		s := q.ProjectID.String()
		resp.ProjectID = &s
	}
	for _, it := range q.Items {
		resp.Items = append(resp.Items, ItemResponse{
			LineID:      it.LineID.String(),
			LineNo:      it.LineNo,
			Description: it.Description,
			Unit:        it.Unit,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Total:       it.Total,
		})
	}
	return resp
}

// FromQuotationList maps a list page to response shapes (headers only).
func FromQuotationList(items []*quotation.Quotation) []QuotationResponse {
	out := make([]QuotationResponse, len(items))
	for i, q := range items {
		out[i] = FromQuotation(q)
	}
	return out
}
