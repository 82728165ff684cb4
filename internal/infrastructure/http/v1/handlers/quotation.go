package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"billcraft/internal/core/status"
	"billcraft/internal/domain/documents/invoice"
	"billcraft/internal/domain/documents/quotation"
	"billcraft/internal/infrastructure/http/v1/dto"
	"billcraft/internal/infrastructure/pdf"
)

// QuotationHandler handles quotation endpoints.
type QuotationHandler struct {
	*BaseHandler
	service  *quotation.Service
	invoices *invoice.Service
	renderer *pdf.Renderer
}

// NewQuotationHandler creates a new quotation handler.
func NewQuotationHandler(
	base *BaseHandler,
	service *quotation.Service,
	invoices *invoice.Service,
	renderer *pdf.Renderer,
) *QuotationHandler {
	return &QuotationHandler{
		BaseHandler: base,
		service:     service,
		invoices:    invoices,
		renderer:    renderer,
	}
}

// RegisterRoutes registers quotation routes on the group.
func (h *QuotationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.PATCH("/:id", h.UpdateHeader)
	rg.PUT("/:id/items", h.ReplaceItems)
	rg.PUT("/:id/status", h.SetStatus)
	rg.POST("/:id/convert", h.Convert)
	rg.GET("/:id/download", h.Download)
	rg.DELETE("/:id", h.Delete)
}

// Create handles POST /quotations.
func (h *QuotationHandler) Create(c *gin.Context) {
	var req dto.CreateQuotationRequest
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

	h.Created(c, "quotation created", dto.FromQuotation(doc))
}

// List handles GET /quotations.
func (h *QuotationHandler) List(c *gin.Context) {
	filter, ok := h.ListFilter(c, status.KindQuotation)
	if !ok {
		return
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, "quotations", dto.ListResponse{
		Items:      dto.FromQuotationList(result.Items),
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// Get handles GET /quotations/:id.
func (h *QuotationHandler) Get(c *gin.Context) {
	docID, ok := h.ParseID(c)
	if !ok {
		return
	}

	doc, err := h.service.GetByID(c.Request.Context(), docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, "quotation", dto.FromQuotation(doc))
}

// UpdateHeader handles PATCH /quotations/:id.
func (h *QuotationHandler) UpdateHeader(c *gin.Context) {
	docID, ok := h.ParseID(c)
	if !ok {
		return
	}

	var req dto.UpdateQuotationHeaderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc, err := h.service.UpdateHeader(c.Request.Context(), docID, quotation.HeaderPatch{
		IssueDate:  req.IssueDate,
		ValidUntil: req.ValidUntil,
		Notes:      req.Notes,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, "quotation updated", dto.FromQuotation(doc))
}

// ReplaceItems handles PUT /quotations/:id/items.
func (h *QuotationHandler) ReplaceItems(c *gin.Context) {
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

	doc, err := h.service.ReplaceItems(c.Request.Context(), docID, req.QuotationItems(), discount)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, "items replaced", dto.FromQuotation(doc))
}

// SetStatus handles PUT /quotations/:id/status.
func (h *QuotationHandler) SetStatus(c *gin.Context) {
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

	h.OK(c, "status updated", dto.FromQuotation(doc))
}

// Convert handles POST /quotations/:id/convert.
// Creates a draft invoice from an approved quotation.
func (h *QuotationHandler) Convert(c *gin.Context) {
	docID, ok := h.ParseID(c)
	if !ok {
		return
	}

	doc, err := h.service.GetByID(c.Request.Context(), docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	inv, err := h.invoices.CreateFromQuotation(c.Request.Context(), doc)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, "invoice created from quotation", dto.FromInvoice(inv))
}

// Download handles GET /quotations/:id/download.
// Streams the rendered PDF; no envelope.
func (h *QuotationHandler) Download(c *gin.Context) {
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

	if err := h.renderer.Render(pdf.FromQuotation(doc, cl), c.Writer); err != nil {
		h.Error(c, err)
	}
}

// Delete handles DELETE /quotations/:id.
func (h *QuotationHandler) Delete(c *gin.Context) {
	docID, ok := h.ParseID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), docID); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, "quotation deleted", nil)
}
