// Package totals computes document totals from line items.
// Pure arithmetic over decimals, no I/O.
package totals

import (
	"github.com/shopspring/decimal"

	"billcraft/internal/core/apperror"
	"billcraft/internal/core/types"
)

// Line is the minimal priced input for totals computation.
type Line struct {
	Quantity  decimal.Decimal
	UnitPrice types.Money
}

// DiscountMode selects how the discount input is interpreted.
type DiscountMode int

const (
	// DiscountNone applies no discount.
	DiscountNone DiscountMode = iota

	// DiscountPercent interprets Value as a percentage of the subtotal.
	DiscountPercent

	// DiscountAbsolute interprets Value as a literal amount.
	DiscountAbsolute
)

// Discount is a percentage or an absolute amount, never both.
type Discount struct {
	Mode  DiscountMode
	Value decimal.Decimal
}

// NoDiscount is the zero discount.
func NoDiscount() Discount {
	return Discount{Mode: DiscountNone}
}

// PercentDiscount builds a percentage discount.
func PercentDiscount(rate decimal.Decimal) Discount {
	return Discount{Mode: DiscountPercent, Value: rate}
}

// AbsoluteDiscount builds an absolute discount.
func AbsoluteDiscount(amount types.Money) Discount {
	return Discount{Mode: DiscountAbsolute, Value: amount}
}

// Totals is the computed money block persisted on a document header.
type Totals struct {
	Subtotal       types.Money
	TaxAmount      types.Money
	DiscountAmount types.Money
	Total          types.Money
}

// LineTotal computes a single line's total, rounded to the minor unit.
func LineTotal(l Line) types.Money {
	return types.RoundMoney(l.Quantity.Mul(l.UnitPrice))
}

// Compute derives subtotal, tax, discount and grand total from the lines.
//
//	subtotal = Σ round(quantity_i × unit_price_i)
//	tax      = round(subtotal × taxRate / 100)
//	discount = round(subtotal × rate / 100)   (or the literal absolute value)
//	total    = subtotal + tax − discount, must stay ≥ 0
//
// Every intermediate is rounded half-up to two decimal places; no binary
// floating point is involved. A discount pushing the total below zero is a
// validation failure, never a silent clamp.
func Compute(lines []Line, taxRate decimal.Decimal, discount Discount) (Totals, error) {
	if len(lines) == 0 {
		return Totals{}, apperror.NewValidation("at least one line item is required").
			WithDetail("field", "items")
	}

	if taxRate.IsNegative() {
		return Totals{}, apperror.NewValidation("tax rate must not be negative").
			WithDetail("field", "taxRate")
	}

	subtotal := types.Zero()
	for i, l := range lines {
		if !l.Quantity.IsPositive() {
			return Totals{}, apperror.NewValidation("quantity must be positive").
				WithDetail("field", "items").
				WithDetail("position", i+1)
		}
		if l.UnitPrice.IsNegative() {
			return Totals{}, apperror.NewValidation("unit price must not be negative").
				WithDetail("field", "items").
				WithDetail("position", i+1)
		}
		subtotal = subtotal.Add(LineTotal(l))
	}

	tax := types.Percent(subtotal, taxRate)

	var disc types.Money
	switch discount.Mode {
	case DiscountPercent:
		if discount.Value.IsNegative() {
			return Totals{}, apperror.NewValidation("discount rate must not be negative").
				WithDetail("field", "discount")
		}
		disc = types.Percent(subtotal, discount.Value)
	case DiscountAbsolute:
		if discount.Value.IsNegative() {
			return Totals{}, apperror.NewValidation("discount amount must not be negative").
				WithDetail("field", "discount")
		}
		disc = types.RoundMoney(discount.Value)
	default:
		disc = types.Zero()
	}

	total := subtotal.Add(tax).Sub(disc)
	if total.IsNegative() {
		return Totals{}, apperror.NewValidation("discount exceeds document total").
			WithDetail("field", "discount").
			WithDetail("unclamped_total", types.FormatAmount(total))
	}

	return Totals{
		Subtotal:       subtotal,
		TaxAmount:      tax,
		DiscountAmount: disc,
		Total:          total,
	}, nil
}
