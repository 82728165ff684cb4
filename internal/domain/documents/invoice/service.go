package invoice

import (
	"context"
	"fmt"
	"time"

	"billcraft/internal/core/apperror"
	"billcraft/internal/core/id"
	"billcraft/internal/core/numerator"
	"billcraft/internal/core/status"
	"billcraft/internal/core/tx"
	"billcraft/internal/domain"
	"billcraft/internal/domain/catalogs/client"
	"billcraft/internal/domain/documents/quotation"
	"billcraft/internal/domain/totals"
	"billcraft/pkg/logger"
)

// Numbering: invoices use a gap-free year-scoped sequence.
var numberingConfig = numerator.Config{
	Prefix:   "INV",
	Mode:     numerator.ModeSequential,
	PadWidth: 4,
}

// maxNumberAttempts bounds number-collision retries.
const maxNumberAttempts = 3

// defaultPaymentTerm is applied when a converted quotation carries no due date.
const defaultPaymentTerm = 30 * 24 * time.Hour

// HeaderPatch carries the mutable header fields for partial updates.
// Nil fields are left untouched.
type HeaderPatch struct {
	IssueDate *time.Time
	DueDate   *time.Time
	Notes     *string
}

// Service provides business operations for invoice documents.
type Service struct {
	repo      Repository
	clients   client.Repository
	numerator numerator.Generator
	txManager tx.Manager
	hooks     *domain.HookRegistry[*Invoice]
}

// NewService creates a new invoice service.
func NewService(
	repo Repository,
	clients client.Repository,
	gen numerator.Generator,
	txManager tx.Manager,
) *Service {
	return &Service{
		repo:      repo,
		clients:   clients,
		numerator: gen,
		txManager: txManager,
		hooks:     domain.NewHookRegistry[*Invoice](),
	}
}

// Hooks returns the hook registry for registering callbacks.
func (s *Service) Hooks() *domain.HookRegistry[*Invoice] {
	return s.hooks
}

// Create validates the document, computes its totals and persists the header
// together with its items in one transaction. The document number is
// allocated inside the transaction so a rollback releases it.
func (s *Service) Create(ctx context.Context, doc *Invoice, discount totals.Discount) error {
	if err := s.hooks.RunBeforeCreate(ctx, doc); err != nil {
		return err
	}

	if err := doc.Validate(ctx); err != nil {
		return err
	}

	ok, err := s.clients.Exists(ctx, doc.ClientID)
	if err != nil {
		return fmt.Errorf("check client: %w", err)
	}
	if !ok {
		return apperror.NewValidation("client does not exist").
			WithDetail("field", "clientId")
	}

	computed, err := totals.Compute(doc.Lines(), doc.TaxRate, discount)
	if err != nil {
		return err
	}
	doc.ApplyTotals(computed)

	if err := s.persistNew(ctx, doc); err != nil {
		return err
	}

	if err := s.hooks.RunAfterCreate(ctx, doc); err != nil {
		logger.Warn(ctx, "after-create hook failed", "error", err)
	}

	logger.Info(ctx, "invoice created",
		"id", doc.ID,
		"number", doc.Number,
		"total", doc.Total)

	return nil
}

// CreateFromQuotation converts an approved quotation into a draft invoice,
// copying its items, tax rate and discount and recording the back-reference.
func (s *Service) CreateFromQuotation(ctx context.Context, q *quotation.Quotation) (*Invoice, error) {
	if !q.IsApproved() {
		return nil, apperror.NewConflict("only approved quotations can be converted").
			WithDetail("quotation_id", q.ID.String()).
			WithDetail("status", string(q.Status))
	}

	doc := New(q.ClientID)
	doc.ProjectID = q.ProjectID
	doc.TaxRate = q.TaxRate
	doc.Notes = q.Notes
	quotationID := q.ID
	doc.QuotationID = &quotationID

	due := doc.IssueDate.Add(defaultPaymentTerm)
	doc.DueDate = &due

	for _, it := range q.Items {
		doc.AddItem(it.Description, it.Quantity, it.UnitPrice)
	}

	// Carry the quotation's discount over as the absolute amount it
	// resolved to, so the invoice reconciles to the same total.
	if err := s.Create(ctx, doc, totals.AbsoluteDiscount(q.DiscountAmount)); err != nil {
		return nil, err
	}

	logger.Info(ctx, "quotation converted to invoice",
		"quotation_id", q.ID,
		"invoice_id", doc.ID,
		"number", doc.Number)

	return doc, nil
}

// persistNew runs the create transaction, retrying with a fresh number on a
// number collision up to maxNumberAttempts.
func (s *Service) persistNew(ctx context.Context, doc *Invoice) error {
	var lastErr error

	for attempt := 1; attempt <= maxNumberAttempts; attempt++ {
		err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
			number, err := s.numerator.Next(ctx, numberingConfig, doc.IssueDate)
			if err != nil {
				return fmt.Errorf("generate number: %w", err)
			}
			doc.Number = number

			if err := s.repo.Create(ctx, doc); err != nil {
				return err
			}
			return s.repo.SaveItems(ctx, doc.ID, doc.Items)
		})
		if err == nil {
			return nil
		}
		if !isNumberCollision(err) {
			return err
		}
		lastErr = err
		logger.Warn(ctx, "invoice number collision, retrying",
			"number", doc.Number,
			"attempt", attempt)
	}

	return apperror.NewNumberAllocation(string(status.KindInvoice), maxNumberAttempts, lastErr)
}

// isNumberCollision detects the unique violation on the number column.
func isNumberCollision(err error) bool {
	appErr, ok := apperror.AsAppError(err)
	return ok && appErr.Code == apperror.CodeDuplicate && appErr.Details["field"] == "number"
}

// GetByID retrieves an invoice with its items.
func (s *Service) GetByID(ctx context.Context, docID id.ID) (*Invoice, error) {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}

	items, err := s.repo.GetItems(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("get items: %w", err)
	}
	doc.Items = items

	return doc, nil
}

// GetClient loads the client snapshot for rendering.
func (s *Service) GetClient(ctx context.Context, doc *Invoice) (*client.Client, error) {
	return s.clients.GetByID(ctx, doc.ClientID)
}

// UpdateHeader applies a partial header update under the row lock.
func (s *Service) UpdateHeader(ctx context.Context, docID id.ID, patch HeaderPatch) (*Invoice, error) {
	var doc *Invoice
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		doc, err = s.repo.GetForUpdate(ctx, docID)
		if err != nil {
			return err
		}

		if patch.IssueDate != nil {
			doc.IssueDate = *patch.IssueDate
		}
		if patch.DueDate != nil {
			doc.DueDate = patch.DueDate
		}
		if patch.Notes != nil {
			doc.Notes = *patch.Notes
		}

		if err := doc.Validate(ctx); err != nil {
			return err
		}

		return s.repo.Update(ctx, doc)
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// ReplaceItems swaps the full item set and recomputes the header totals in
// the same transaction, so totals are never observed inconsistent with items.
func (s *Service) ReplaceItems(ctx context.Context, docID id.ID, items []Item, discount totals.Discount) (*Invoice, error) {
	var doc *Invoice
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		doc, err = s.repo.GetForUpdate(ctx, docID)
		if err != nil {
			return err
		}

		if err := doc.CanEdit(status.KindInvoice); err != nil {
			return err
		}

		doc.Items = normalizeItems(items)
		if err := doc.Validate(ctx); err != nil {
			return err
		}

		computed, err := totals.Compute(doc.Lines(), doc.TaxRate, discount)
		if err != nil {
			return err
		}
		doc.ApplyTotals(computed)

		if err := s.repo.SaveItems(ctx, doc.ID, doc.Items); err != nil {
			return err
		}
		return s.repo.Update(ctx, doc)
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// normalizeItems renumbers lines and assigns ids to rows that lack one.
func normalizeItems(items []Item) []Item {
	out := make([]Item, len(items))
	for i, it := range items {
		if id.IsNil(it.LineID) {
			it.LineID = id.New()
		}
		it.LineNo = i + 1
		it.Total = totals.LineTotal(totals.Line{Quantity: it.Quantity, UnitPrice: it.UnitPrice})
		out[i] = it
	}
	return out
}

// SetStatus applies a lifecycle transition under the row lock. Entering paid
// stamps the paid date in the same transaction. Two concurrent transitions
// serialize on the row lock; the loser is re-evaluated against the winner's
// committed status and rejected if the move is no longer legal.
func (s *Service) SetStatus(ctx context.Context, docID id.ID, target status.Status) (*Invoice, error) {
	var doc *Invoice
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		doc, err = s.repo.GetForUpdate(ctx, docID)
		if err != nil {
			return err
		}

		if err := status.Check(status.KindInvoice, doc.Status, target); err != nil {
			return err
		}

		if target == status.InvoicePaid {
			doc.MarkPaid(time.Now())
		} else {
			doc.Status = target
		}

		return s.repo.Update(ctx, doc)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "invoice status changed",
		"id", doc.ID,
		"status", doc.Status)

	return doc, nil
}

// DetachQuotation clears the back-reference to the originating quotation so
// the quotation becomes deletable.
func (s *Service) DetachQuotation(ctx context.Context, docID id.ID) (*Invoice, error) {
	var doc *Invoice
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		doc, err = s.repo.GetForUpdate(ctx, docID)
		if err != nil {
			return err
		}

		doc.QuotationID = nil
		return s.repo.Update(ctx, doc)
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Delete removes the invoice; items cascade.
func (s *Service) Delete(ctx context.Context, docID id.ID) error {
	if err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Delete(ctx, docID)
	}); err != nil {
		return err
	}

	logger.Info(ctx, "invoice deleted", "id", docID)
	return nil
}

// List retrieves invoice headers with filtering, newest first by default.
func (s *Service) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Invoice], error) {
	return s.repo.List(ctx, filter)
}
