// Package numerator implements document auto-numbering on PostgreSQL.
package numerator

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	core "billcraft/internal/core/numerator"
)

// Querier interface for database operations.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Service provides document numbering backed by the sys_sequences table
// for sequential mode and a local PRNG for random-suffix mode.
type Service struct {
	querier Querier

	randMu sync.Mutex
	rand   *rand.Rand
}

// New creates a numerator service over the given querier (pool or tx).
func New(querier Querier) *Service {
	return &Service{
		querier: querier,
		rand:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Next generates the next document number per cfg.
// Pattern: PREFIX-YEAR-XXXX.
func (s *Service) Next(ctx context.Context, cfg core.Config, period time.Time) (string, error) {
	if s == nil {
		return "", fmt.Errorf("numerator service is not initialized")
	}

	var num int64
	var err error

	switch cfg.Mode {
	case core.ModeRandom:
		num = s.randomSuffix(cfg)
	case core.ModeSequential:
		fallthrough
	default:
		num, err = s.nextSequential(ctx, cfg.Prefix, period)
	}

	if err != nil {
		return "", err
	}

	return formatNumber(cfg, period, num), nil
}

// nextSequential fetches the next number from the DB using UPSERT + RETURNING.
// current_val is the value handed out, so the sequence is gap-free as long
// as the surrounding insert commits; a rolled-back insert releases nothing,
// but sequential mode trades that for no duplicate numbers ever.
func (s *Service) nextSequential(ctx context.Context, prefix string, period time.Time) (int64, error) {
	var num int64
	err := s.querier.QueryRow(ctx, `
        INSERT INTO sys_sequences (sequence_type, year, current_val)
        VALUES ($1, $2, 1)
        ON CONFLICT (sequence_type, year) DO UPDATE SET current_val = sys_sequences.current_val + 1
        RETURNING current_val
	`, prefix, period.Year()).Scan(&num)
	if err != nil {
		return 0, fmt.Errorf("next sequential: %w", err)
	}
	return num, nil
}

// randomSuffix returns a suffix in [1, 10^PadWidth).
func (s *Service) randomSuffix(cfg core.Config) int64 {
	width := cfg.PadWidth
	if width <= 0 {
		width = 4
	}
	max := int64(1)
	for i := 0; i < width; i++ {
		max *= 10
	}

	s.randMu.Lock()
	defer s.randMu.Unlock()
	return 1 + s.rand.Int63n(max-1)
}

// formatNumber creates the final number string.
func formatNumber(cfg core.Config, period time.Time, num int64) string {
	padWidth := cfg.PadWidth
	if padWidth == 0 {
		padWidth = 4
	}
	return fmt.Sprintf("%s-%s-%0*d", cfg.Prefix, period.Format("2006"), padWidth, num)
}

// ParseNumber extracts the numeric suffix from a formatted number.
// Returns -1 if parsing fails.
func ParseNumber(formatted string) int64 {
	var num int64
	if _, err := fmt.Sscanf(formatted, "%*[^-]-%*d-%d", &num); err == nil {
		return num
	}
	return -1
}

// Ensure compile-time interface compliance.
var _ core.Generator = (*Service)(nil)
