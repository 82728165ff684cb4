package numerator

// Mode defines the numbering generation mode.
type Mode int

const (
	// ModeSequential uses INSERT ... ON CONFLICT ... RETURNING for every
	// number. Guarantees sequential numbers without gaps. Suitable for
	// invoices and other accounting documents.
	ModeSequential Mode = iota

	// ModeRandom appends a random 4-digit suffix. No database round-trip;
	// collisions are caught by the store's unique constraint and retried.
	// Suitable for quotations.
	ModeRandom
)

// Config holds numbering configuration.
type Config struct {
	// Prefix added to all numbers (e.g. "INV", "QUO")
	Prefix string

	// Mode selects sequential or random suffix generation
	Mode Mode

	// PadWidth is the minimum suffix width (default 4)
	PadWidth int
}

// DefaultConfig returns year-scoped sequential numbering.
func DefaultConfig(prefix string) Config {
	return Config{
		Prefix:   prefix,
		Mode:     ModeSequential,
		PadWidth: 4,
	}
}
