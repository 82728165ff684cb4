// Package status encodes the document status lifecycles as explicit
// transition tables, one per document kind. Every status write is checked
// here before it reaches storage.
package status

import (
	"billcraft/internal/core/apperror"
)

// Kind discriminates the two document lifecycles.
type Kind string

const (
	KindQuotation Kind = "quotation"
	KindInvoice   Kind = "invoice"
)

// Status is a lifecycle state of a document.
type Status string

// Quotation states.
const (
	QuotationDraft    Status = "draft"
	QuotationSent     Status = "sent"
	QuotationApproved Status = "approved"
	QuotationRejected Status = "rejected"
	QuotationExpired  Status = "expired"
)

// Invoice states.
const (
	InvoiceDraft     Status = "draft"
	InvoiceSent      Status = "sent"
	InvoicePaid      Status = "paid"
	InvoiceOverdue   Status = "overdue"
	InvoiceCancelled Status = "cancelled"
)

// Initial is the state every new document starts in.
const Initial Status = "draft"

// Transition tables. "expired" and "overdue" are passive states driven by
// date comparison in an external scheduler; they are accepted as current
// states when loading but are never legal targets of a human-driven Apply.
var quotationTransitions = map[Status][]Status{
	QuotationDraft: {QuotationSent},
	QuotationSent:  {QuotationApproved, QuotationRejected},
	// approved/rejected/expired are terminal for human-driven transitions
}

var invoiceTransitions = map[Status][]Status{
	InvoiceDraft: {InvoiceSent, InvoiceCancelled},
	InvoiceSent:  {InvoicePaid, InvoiceCancelled},
	// overdue behaves like sent: payment or cancellation may still arrive
	InvoiceOverdue: {InvoicePaid, InvoiceCancelled},
}

var quotationStatuses = map[Status]struct{}{
	QuotationDraft: {}, QuotationSent: {}, QuotationApproved: {},
	QuotationRejected: {}, QuotationExpired: {},
}

var invoiceStatuses = map[Status]struct{}{
	InvoiceDraft: {}, InvoiceSent: {}, InvoicePaid: {},
	InvoiceOverdue: {}, InvoiceCancelled: {},
}

// Valid reports whether s belongs to the fixed status set of kind.
// Unknown statuses are a validation problem (400), not a conflict.
func Valid(kind Kind, s Status) bool {
	switch kind {
	case KindQuotation:
		_, ok := quotationStatuses[s]
		return ok
	case KindInvoice:
		_, ok := invoiceStatuses[s]
		return ok
	default:
		return false
	}
}

// CanTransition reports whether from→to is a legal human-driven transition.
func CanTransition(kind Kind, from, to Status) bool {
	var table map[Status][]Status
	switch kind {
	case KindQuotation:
		table = quotationTransitions
	case KindInvoice:
		table = invoiceTransitions
	default:
		return false
	}

	for _, allowed := range table[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Check validates a transition and returns a structured error when it is
// illegal. Target statuses outside the kind's set are a validation error;
// legal statuses reached from the wrong state are a conflict.
func Check(kind Kind, from, to Status) error {
	if !Valid(kind, to) {
		return apperror.NewValidation("unknown status").
			WithDetail("kind", string(kind)).
			WithDetail("status", string(to))
	}

	if !CanTransition(kind, from, to) {
		return apperror.NewIllegalTransition(string(kind), string(from), string(to))
	}

	return nil
}

// IsTerminal reports whether no human-driven transition leaves s.
func IsTerminal(kind Kind, s Status) bool {
	switch kind {
	case KindQuotation:
		return len(quotationTransitions[s]) == 0
	case KindInvoice:
		return len(invoiceTransitions[s]) == 0
	default:
		return true
	}
}
