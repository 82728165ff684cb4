// Package numerator provides domain contracts for document auto-numbering.
// Implementations live in the infrastructure layer.
package numerator

import (
	"context"
	"time"
)

// Generator produces public document numbers.
//
// A generated number is only a candidate: uniqueness is enforced by the
// store's constraint at insert time, and callers retry with a fresh number
// on collision (bounded, see the document services).
type Generator interface {
	// Next generates the next document number for the given period.
	// Pattern: PREFIX-YEAR-XXXX (e.g. INV-2026-0001).
	Next(ctx context.Context, cfg Config, period time.Time) (string, error)
}
