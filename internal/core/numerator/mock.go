package numerator

import (
	"context"
	"fmt"
	"time"
)

// MockGenerator is a test implementation of Generator.
// Use in unit tests to avoid database dependencies.
type MockGenerator struct {
	NextFunc func(ctx context.Context, cfg Config, period time.Time) (string, error)

	// Calls counts invocations (useful for retry assertions).
	Calls int
}

// Next implements Generator.
func (m *MockGenerator) Next(ctx context.Context, cfg Config, period time.Time) (string, error) {
	m.Calls++
	if m.NextFunc != nil {
		return m.NextFunc(ctx, cfg, period)
	}
	return fmt.Sprintf("%s-%d-%04d", cfg.Prefix, period.Year(), m.Calls), nil
}

// Ensure compile-time interface compliance.
var _ Generator = (*MockGenerator)(nil)
