package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"billcraft/internal/core/entity"
	"billcraft/internal/core/id"
)

type mockDocument struct {
	entity.BaseDocument
	Number string `db:"number" json:"number"`
	Notes  string `db:"notes" json:"notes"`
	Hidden string `db:"-" json:"hidden"`
}

func TestExtractDBColumns(t *testing.T) {
	cols := ExtractDBColumns[mockDocument]()

	expectedCols := []string{
		"id", "version", "created_at", "updated_at", "number", "notes",
	}

	for _, expected := range expectedCols {
		assert.Contains(t, cols, expected)
	}
	assert.NotContains(t, cols, "-")
	assert.NotContains(t, cols, "hidden")
}

func TestStructToMap(t *testing.T) {
	now := time.Now().UTC()
	doc := mockDocument{
		BaseDocument: entity.BaseDocument{
			BaseEntity: entity.BaseEntity{
				ID:      id.New(),
				Version: 5,
			},
			CreatedAt: now,
			UpdatedAt: now,
		},
		Number: "QUO-2026-7777",
		Notes:  "delivery in two weeks",
		Hidden: "not persisted",
	}

	m := StructToMap(doc)

	assert.Equal(t, doc.ID, m["id"])
	assert.Equal(t, 5, m["version"])
	assert.Equal(t, now, m["created_at"])
	assert.Equal(t, "QUO-2026-7777", m["number"])
	assert.Equal(t, "delivery in two weeks", m["notes"])
	assert.NotContains(t, m, "hidden")
}

func TestStructToMap_Pointer(t *testing.T) {
	doc := &mockDocument{Number: "INV-2026-0003"}

	m := StructToMap(doc)

	assert.Equal(t, "INV-2026-0003", m["number"])
}
