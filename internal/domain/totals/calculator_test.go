package totals

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"billcraft/internal/core/apperror"
	"billcraft/internal/core/types"
)

func line(qty, price string) Line {
	return Line{
		Quantity:  decimal.RequireFromString(qty),
		UnitPrice: types.MustMoney(price),
	}
}

func TestCompute_ReferenceCase(t *testing.T) {
	// Two sofas at 15000, 16% tax, no discount.
	got, err := Compute(
		[]Line{line("2", "15000")},
		decimal.NewFromInt(16),
		NoDiscount(),
	)
	require.NoError(t, err)

	assert.Equal(t, "30000.00", types.FormatAmount(got.Subtotal))
	assert.Equal(t, "4800.00", types.FormatAmount(got.TaxAmount))
	assert.Equal(t, "0.00", types.FormatAmount(got.DiscountAmount))
	assert.Equal(t, "34800.00", types.FormatAmount(got.Total))
}

func TestCompute_PerLineRounding(t *testing.T) {
	// Each line rounds before summing: 3 × 0.335 = 1.005 → 1.01 per line.
	got, err := Compute(
		[]Line{line("3", "0.335"), line("3", "0.335")},
		decimal.Zero,
		NoDiscount(),
	)
	require.NoError(t, err)
	assert.Equal(t, "2.02", types.FormatAmount(got.Subtotal))
	assert.Equal(t, "2.02", types.FormatAmount(got.Total))
}

func TestCompute_PercentDiscount(t *testing.T) {
	got, err := Compute(
		[]Line{line("1", "200")},
		decimal.NewFromInt(10),
		PercentDiscount(decimal.NewFromInt(25)),
	)
	require.NoError(t, err)
	assert.Equal(t, "200.00", types.FormatAmount(got.Subtotal))
	assert.Equal(t, "20.00", types.FormatAmount(got.TaxAmount))
	assert.Equal(t, "50.00", types.FormatAmount(got.DiscountAmount))
	assert.Equal(t, "170.00", types.FormatAmount(got.Total))
}

func TestCompute_AbsoluteDiscount(t *testing.T) {
	got, err := Compute(
		[]Line{line("4", "12.50")},
		decimal.Zero,
		AbsoluteDiscount(types.MustMoney("10")),
	)
	require.NoError(t, err)
	assert.Equal(t, "50.00", types.FormatAmount(got.Subtotal))
	assert.Equal(t, "10.00", types.FormatAmount(got.DiscountAmount))
	assert.Equal(t, "40.00", types.FormatAmount(got.Total))
}

func TestCompute_DiscountExceedingTotalRejected(t *testing.T) {
	_, err := Compute(
		[]Line{line("1", "100")},
		decimal.NewFromInt(16),
		AbsoluteDiscount(types.MustMoney("200")),
	)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestCompute_InvalidItemNamesPosition(t *testing.T) {
	_, err := Compute(
		[]Line{line("1", "10"), line("0", "10"), line("2", "10")},
		decimal.Zero,
		NoDiscount(),
	)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, 2, appErr.Details["position"])

	_, err = Compute(
		[]Line{line("1", "10"), line("1", "-5")},
		decimal.Zero,
		NoDiscount(),
	)
	require.Error(t, err)
	appErr, ok = apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, 2, appErr.Details["position"])
}

func TestCompute_EmptyItemsRejected(t *testing.T) {
	_, err := Compute(nil, decimal.Zero, NoDiscount())
	require.Error(t, err)
	assert.True(t, apperror.IsAppError(err))
}

func TestCompute_TotalsInvariant(t *testing.T) {
	cases := [][]Line{
		{line("1", "0.01")},
		{line("7", "3.99"), line("2.5", "10.40")},
		{line("1000", "999.99")},
	}
	for _, lines := range cases {
		got, err := Compute(lines, decimal.NewFromInt(19), PercentDiscount(decimal.NewFromInt(5)))
		require.NoError(t, err)
		want := got.Subtotal.Add(got.TaxAmount).Sub(got.DiscountAmount)
		assert.True(t, got.Total.Equal(want), "total must reconcile")
		assert.False(t, got.Total.IsNegative())
	}
}
