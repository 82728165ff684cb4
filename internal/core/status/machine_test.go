package status

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"billcraft/internal/core/apperror"
)

func TestCanTransition_Quotation(t *testing.T) {
	assert.True(t, CanTransition(KindQuotation, QuotationDraft, QuotationSent))
	assert.True(t, CanTransition(KindQuotation, QuotationSent, QuotationApproved))
	assert.True(t, CanTransition(KindQuotation, QuotationSent, QuotationRejected))

	// No implicit reversals
	assert.False(t, CanTransition(KindQuotation, QuotationApproved, QuotationDraft))
	assert.False(t, CanTransition(KindQuotation, QuotationSent, QuotationDraft))
	assert.False(t, CanTransition(KindQuotation, QuotationDraft, QuotationApproved))

	// Expiry is driven by the scheduler, not this engine
	assert.False(t, CanTransition(KindQuotation, QuotationSent, QuotationExpired))
}

func TestCanTransition_Invoice(t *testing.T) {
	assert.True(t, CanTransition(KindInvoice, InvoiceDraft, InvoiceSent))
	assert.True(t, CanTransition(KindInvoice, InvoiceSent, InvoicePaid))
	assert.True(t, CanTransition(KindInvoice, InvoiceDraft, InvoiceCancelled))
	assert.True(t, CanTransition(KindInvoice, InvoiceSent, InvoiceCancelled))
	assert.True(t, CanTransition(KindInvoice, InvoiceOverdue, InvoicePaid))

	assert.False(t, CanTransition(KindInvoice, InvoicePaid, InvoiceSent))
	assert.False(t, CanTransition(KindInvoice, InvoiceDraft, InvoicePaid))
	assert.False(t, CanTransition(KindInvoice, InvoiceCancelled, InvoiceSent))
	assert.False(t, CanTransition(KindInvoice, InvoiceSent, InvoiceOverdue))
}

func TestCheck_UnknownStatusIsValidation(t *testing.T) {
	err := Check(KindInvoice, InvoiceDraft, Status("bogus"))
	appErr, ok := apperror.AsAppError(err)
	assert.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)

	// Quotation-only status on an invoice is equally unknown
	err = Check(KindInvoice, InvoiceSent, QuotationApproved)
	appErr, ok = apperror.AsAppError(err)
	assert.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestCheck_IllegalTransitionIsConflict(t *testing.T) {
	err := Check(KindInvoice, InvoicePaid, InvoiceSent)
	appErr, ok := apperror.AsAppError(err)
	assert.True(t, ok)
	assert.Equal(t, apperror.CodeIllegalTransition, appErr.Code)
	assert.Equal(t, 409, appErr.HTTPStatus)
}

func TestCheck_Legal(t *testing.T) {
	assert.NoError(t, Check(KindQuotation, QuotationDraft, QuotationSent))
	assert.NoError(t, Check(KindInvoice, InvoiceSent, InvoicePaid))
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, IsTerminal(KindQuotation, QuotationApproved))
	assert.True(t, IsTerminal(KindQuotation, QuotationRejected))
	assert.True(t, IsTerminal(KindInvoice, InvoicePaid))
	assert.True(t, IsTerminal(KindInvoice, InvoiceCancelled))
	assert.False(t, IsTerminal(KindInvoice, InvoiceOverdue))
	assert.False(t, IsTerminal(KindQuotation, QuotationDraft))
}
