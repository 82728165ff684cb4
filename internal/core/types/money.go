// Package types provides common type aliases and monetary helpers.
package types

import (
	"github.com/shopspring/decimal"
)

// MinorDigits is the number of decimal places of the currency's minor unit.
const MinorDigits = 2

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point errors; every amount that
// leaves a computation is rounded to MinorDigits with RoundMoney.
type Money = decimal.Decimal

// NewMoneyFromString creates a Money value from a string.
// This is the preferred method for monetary values.
func NewMoneyFromString(s string) (Money, error) {
	return decimal.NewFromString(s)
}

// MustMoney creates a Money value from a string, panics on error.
// Use only for constants and tests.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Zero returns zero Money value.
func Zero() Money {
	return decimal.Zero
}

// RoundMoney rounds to the currency's minor unit using round-half-up.
// decimal.Round rounds half away from zero, which is half-up for the
// non-negative amounts this core deals in.
func RoundMoney(m Money) Money {
	return m.Round(MinorDigits)
}

// Percent applies a percentage rate to a base amount and rounds the result.
// Percent(100.00, 16) == 16.00
func Percent(base Money, rate decimal.Decimal) Money {
	return RoundMoney(base.Mul(rate).Div(decimal.NewFromInt(100)))
}

// FormatAmount renders an amount with exactly MinorDigits decimal places.
func FormatAmount(m Money) string {
	return m.StringFixed(MinorDigits)
}
