package pdf

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"billcraft/internal/core/types"
)

func sampleDocument() Document {
	return Document{
		Kind:      "Quotation",
		Number:    "QUO-2026-0042",
		Status:    "draft",
		IssueDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Client: Party{
			Name:    "Acme GmbH",
			Address: "1 Main Street",
			Email:   "billing@acme.example",
		},
		ShowUnit: true,
		Items: []Line{
			{Description: "Sofa", Unit: "pcs", Quantity: decimal.NewFromInt(2), UnitPrice: types.MustMoney("15000"), Total: types.MustMoney("30000")},
		},
		Subtotal:  types.MustMoney("30000"),
		TaxRate:   decimal.NewFromInt(16),
		TaxAmount: types.MustMoney("4800"),
		Total:     types.MustMoney("34800"),
		Notes:     "Delivery within 4 weeks.",
	}
}

func TestRender_ProducesPDF(t *testing.T) {
	r := NewRenderer(DefaultConfig())

	var buf bytes.Buffer
	require.NoError(t, r.Render(sampleDocument(), &buf))

	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")), "output should start with PDF magic")
	assert.Greater(t, buf.Len(), 1000)
}

func TestRender_Deterministic(t *testing.T) {
	r := NewRenderer(DefaultConfig())

	var first, second bytes.Buffer
	require.NoError(t, r.Render(sampleDocument(), &first))
	require.NoError(t, r.Render(sampleDocument(), &second))

	assert.Equal(t, first.Bytes(), second.Bytes(), "identical input must produce identical bytes")
}

func TestRender_LongTablePaginates(t *testing.T) {
	doc := sampleDocument()
	doc.Items = nil
	for i := 0; i < 60; i++ {
		doc.Items = append(doc.Items, Line{
			Description: "Row",
			Unit:        "pcs",
			Quantity:    decimal.NewFromInt(1),
			UnitPrice:   types.MustMoney("10"),
			Total:       types.MustMoney("10"),
		})
	}

	r := NewRenderer(DefaultConfig())
	var short, long bytes.Buffer
	require.NoError(t, r.Render(sampleDocument(), &short))
	require.NoError(t, r.Render(doc, &long))

	// The 60-row table must spill onto at least one extra page.
	assert.Greater(t, bytes.Count(long.Bytes(), []byte("/Page")), bytes.Count(short.Bytes(), []byte("/Page")))
}

func TestRender_DiscountRowOnlyWhenPositive(t *testing.T) {
	r := NewRenderer(DefaultConfig())

	withDiscount := sampleDocument()
	withDiscount.DiscountAmount = types.MustMoney("500")
	withDiscount.Total = types.MustMoney("34300")

	var plain, discounted bytes.Buffer
	require.NoError(t, r.Render(sampleDocument(), &plain))
	require.NoError(t, r.Render(withDiscount, &discounted))

	// Different totals blocks must yield different output.
	assert.NotEqual(t, plain.Bytes(), discounted.Bytes())
}
