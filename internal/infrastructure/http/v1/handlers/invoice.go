package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"billcraft/internal/core/status"
	"billcraft/internal/domain/documents/invoice"
	"billcraft/internal/infrastructure/http/v1/dto"
	"billcraft/internal/infrastructure/pdf"
)

// InvoiceHandler handles invoice endpoints.
type InvoiceHandler struct {
	*BaseHandler
	service  *invoice.Service
	renderer *pdf.Renderer
}

// NewInvoiceHandler creates a new invoice handler.
func NewInvoiceHandler(base *BaseHandler, service *invoice.Service, renderer *pdf.Renderer) *InvoiceHandler {
	return &InvoiceHandler{
		BaseHandler: base,
		service:     service,
		renderer:    renderer,
	}
}

// RegisterRoutes registers invoice routes on the group.
func (h *InvoiceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.PATCH("/:id", h.UpdateHeader)
	rg.PUT("/:id/items", h.ReplaceItems)
	rg.PUT("/:id/status", h.SetStatus)
	rg.POST("/:id/detach", h.Detach)
	rg.GET("/:id/download", h.Download)
	rg.DELETE("/:id", h.Delete)
}

// Create handles POST /invoices.
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req dto.CreateInvoiceRequest
	if !h.BindJSON(c, &req) {
		return
	}

	discount, err := req.Discount()
	if err != nil {
		h.Error(c, err)
		return
	}

	doc, err := req.ToEntity()
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Create(c.Request.Context(), doc, discount); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, "invoice created", dto.FromInvoice(doc))
}

// List handles GET /invoices.
func (h *InvoiceHandler) List(c *gin.Context) {
	filter, ok := h.ListFilter(c, status.KindInvoice)
	if !ok {
		return
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, "invoices", dto.ListResponse{
		Items:      dto.FromInvoiceList(result.Items),
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// Get handles GET /invoices/:id.
func (h *InvoiceHandler) Get(c *gin.Context) {
	docID, ok := h.ParseID(c)
	if !ok {
		return
	}

	doc, err := h.service.GetByID(c.Request.Context(), docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, "invoice", dto.FromInvoice(doc))
}

// UpdateHeader handles PATCH /invoices/:id.
func (h *InvoiceHandler) UpdateHeader(c *gin.Context) {
	docID, ok := h.ParseID(c)
	if !ok {
		return
	}

	var req dto.UpdateInvoiceHeaderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc, err := h.service.UpdateHeader(c.Request.Context(), docID, invoice.HeaderPatch{
		IssueDate: req.IssueDate,
		DueDate:   req.DueDate,
		Notes:     req.Notes,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, "invoice updated", dto.FromInvoice(doc))
}

// ReplaceItems handles PUT /invoices/:id/items.
func (h *InvoiceHandler) ReplaceItems(c *gin.Context) {
	docID, ok := h.ParseID(c)
	if !ok {
		return
	}

	var req dto.ReplaceItemsRequest
	if !h.BindJSON(c, &req) {
		return
	}

	discount, err := req.Discount()
	if err != nil {
		h.Error(c, err)
		return
	}

	doc, err := h.service.ReplaceItems(c.Request.Context(), docID, req.InvoiceItems(), discount)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, "items replaced", dto.FromInvoice(doc))
}

// SetStatus handles PUT /invoices/:id/status.
func (h *InvoiceHandler) SetStatus(c *gin.Context) {
	docID, ok := h.ParseID(c)
	if !ok {
		return
	}

	var req dto.SetStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc, err := h.service.SetStatus(c.Request.Context(), docID, status.Status(req.Status))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, "status updated", dto.FromInvoice(doc))
}

// Detach handles POST /invoices/:id/detach.
// Clears the back-reference to the originating quotation so that quotation
// can be deleted.
func (h *InvoiceHandler) Detach(c *gin.Context) {
	docID, ok := h.ParseID(c)
	if !ok {
		return
	}

	doc, err := h.service.DetachQuotation(c.Request.Context(), docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, "quotation reference cleared", dto.FromInvoice(doc))
}

// Download handles GET /invoices/:id/download.
// Streams the rendered PDF; no envelope.
func (h *InvoiceHandler) Download(c *gin.Context) {
	docID, ok := h.ParseID(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	doc, err := h.service.GetByID(ctx, docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	cl, err := h.service.GetClient(ctx, doc)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Number+".pdf"))
	c.Status(http.StatusOK)

	if err := h.renderer.Render(pdf.FromInvoice(doc, cl), c.Writer); err != nil {
		h.Error(c, err)
	}
}

// Delete handles DELETE /invoices/:id.
func (h *InvoiceHandler) Delete(c *gin.Context) {
	docID, ok := h.ParseID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), docID); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, "invoice deleted", nil)
}
