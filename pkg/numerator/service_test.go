package numerator

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	core "billcraft/internal/core/numerator"
)

// Mock objects
type mockRow struct {
	val int64
	err error
}

func (m *mockRow) Scan(dest ...any) error {
	if m.err != nil {
		return m.err
	}
	if len(dest) > 0 {
		if ptr, ok := dest[0].(*int64); ok {
			*ptr = m.val
		}
	}
	return nil
}

type mockQuerier struct {
	mu           sync.Mutex
	currentValue int64 // simulates DB sequence value
	calls        int
}

func (m *mockQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentValue++
	m.calls++
	return &mockRow{val: m.currentValue}
}

func TestNext_Sequential(t *testing.T) {
	q := &mockQuerier{}
	svc := New(q)
	ctx := context.Background()
	cfg := core.DefaultConfig("INV")
	period := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	num, err := svc.Next(ctx, cfg, period)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "INV-2026-0001" {
		t.Errorf("expected INV-2026-0001, got %s", num)
	}

	num, err = svc.Next(ctx, cfg, period)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "INV-2026-0002" {
		t.Errorf("expected INV-2026-0002, got %s", num)
	}

	if q.calls != 2 {
		t.Errorf("expected 2 DB calls, got %d", q.calls)
	}
}

func TestNext_Random(t *testing.T) {
	q := &mockQuerier{}
	svc := New(q)
	ctx := context.Background()
	cfg := core.Config{Prefix: "QUO", Mode: core.ModeRandom, PadWidth: 4}
	period := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 50; i++ {
		num, err := svc.Next(ctx, cfg, period)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(num) != len("QUO-2026-0000") {
			t.Errorf("unexpected number shape: %s", num)
		}
		if suffix := ParseNumber(num); suffix < 1 || suffix > 9999 {
			t.Errorf("suffix out of range: %s", num)
		}
	}

	// Random mode never touches the database
	if q.calls != 0 {
		t.Errorf("expected 0 DB calls, got %d", q.calls)
	}
}

func TestParseNumber(t *testing.T) {
	if got := ParseNumber("INV-2026-0042"); got != 42 {
		t.Errorf("expected 42, got %d", got)
	}
	if got := ParseNumber("garbage"); got != -1 {
		t.Errorf("expected -1, got %d", got)
	}
}
