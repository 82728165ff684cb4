package quotation

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
	"billcraft/internal/domain/totals"
	"billcraft/pkg/logger"
)

// Numbering: quotations use a random 4-digit suffix; the store's unique
// constraint is the collision arbiter.
var numberingConfig = numerator.Config{
	Prefix:   "QUO",
	Mode:     numerator.ModeRandom,
	PadWidth: 4,
}

// maxNumberAttempts bounds number-collision retries.
const maxNumberAttempts = 3

// HeaderPatch carries the mutable header fields for partial updates.
// Nil fields are left untouched.
type HeaderPatch struct {
	IssueDate  *time.Time
	ValidUntil *time.Time
	Notes      *string
}

// Service provides business operations for quotation documents.
type Service struct {
	repo      Repository
	clients   client.Repository
	numerator numerator.Generator
	txManager tx.Manager
	hooks     *domain.HookRegistry[*Quotation]
}

// NewService creates a new quotation service.
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
		hooks:     domain.NewHookRegistry[*Quotation](),
	}
}

// Hooks returns the hook registry for registering callbacks.
func (s *Service) Hooks() *domain.HookRegistry[*Quotation] {
	return s.hooks
}

// Create validates the document, computes its totals and persists the header
// together with its items in one transaction. The document number is
// allocated inside the transaction so a rollback releases it.
func (s *Service) Create(ctx context.Context, doc *Quotation, discount totals.Discount) error {
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

	logger.Info(ctx, "quotation created",
		"id", doc.ID,
		"number", doc.Number,
		"total", doc.Total)

	return nil
}

// persistNew runs the create transaction, retrying with a fresh number on a
// number collision up to maxNumberAttempts.
func (s *Service) persistNew(ctx context.Context, doc *Quotation) error {
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
		logger.Warn(ctx, "quotation number collision, retrying",
			"number", doc.Number,
			"attempt", attempt)
	}

	return apperror.NewNumberAllocation(string(status.KindQuotation), maxNumberAttempts, lastErr)
}

// isNumberCollision detects the unique violation on the number column.
func isNumberCollision(err error) bool {
	appErr, ok := apperror.AsAppError(err)
	return ok && appErr.Code == apperror.CodeDuplicate && appErr.Details["field"] == "number"
}

// GetByID retrieves a quotation with its items.
func (s *Service) GetByID(ctx context.Context, docID id.ID) (*Quotation, error) {
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
func (s *Service) GetClient(ctx context.Context, doc *Quotation) (*client.Client, error) {
	return s.clients.GetByID(ctx, doc.ClientID)
}

// UpdateHeader applies a partial header update under the row lock.
func (s *Service) UpdateHeader(ctx context.Context, docID id.ID, patch HeaderPatch) (*Quotation, error) {
	var doc *Quotation
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		doc, err = s.repo.GetForUpdate(ctx, docID)
		if err != nil {
			return err
		}

		if patch.IssueDate != nil {
			doc.IssueDate = *patch.IssueDate
		}
		if patch.ValidUntil != nil {
			doc.ValidUntil = patch.ValidUntil
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
func (s *Service) ReplaceItems(ctx context.Context, docID id.ID, items []Item, discount totals.Discount) (*Quotation, error) {
	var doc *Quotation
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		doc, err = s.repo.GetForUpdate(ctx, docID)
		if err != nil {
			return err
		}

		if err := doc.CanEdit(status.KindQuotation); err != nil {
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

// SetStatus applies a lifecycle transition under the row lock. A concurrent
// transition commits first and this one is re-evaluated against its result.
func (s *Service) SetStatus(ctx context.Context, docID id.ID, target status.Status) (*Quotation, error) {
	var doc *Quotation
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		doc, err = s.repo.GetForUpdate(ctx, docID)
		if err != nil {
			return err
		}

		if err := status.Check(status.KindQuotation, doc.Status, target); err != nil {
			return err
		}

		doc.Status = target
		return s.repo.Update(ctx, doc)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "quotation status changed",
		"id", doc.ID,
		"status", doc.Status)

	return doc, nil
}

// Delete removes the quotation; items cascade. A dependent invoice still
// referencing it surfaces as Conflict from the store's FK constraint.
func (s *Service) Delete(ctx context.Context, docID id.ID) error {
	if err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Delete(ctx, docID)
	}); err != nil {
		return err
	}

	logger.Info(ctx, "quotation deleted", "id", docID)
	return nil
}

// List retrieves quotation headers with filtering, newest first by default.
func (s *Service) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Quotation], error) {
	return s.repo.List(ctx, filter)
}
