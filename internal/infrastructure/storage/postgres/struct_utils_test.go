package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gelateria/internal/domain/product"
)

type embeddedBase struct {
	ID      string `db:"id"`
	Version int    `db:"version"`
}

type taggedEntity struct {
	embeddedBase
	Name    string  `db:"name"`
	Price   float64 `db:"price"`
	Skipped string  `db:"-"`
	NoTag   string
}

func TestExtractDBColumns(t *testing.T) {
	cols := ExtractDBColumns[*taggedEntity]()
	assert.Equal(t, []string{"id", "version", "name", "price"}, cols)
}

func TestExtractDBColumnsProduct(t *testing.T) {
	cols := ExtractDBColumns[*product.Product]()
	assert.Contains(t, cols, "id")
	assert.Contains(t, cols, "version")
	assert.Contains(t, cols, "price")
	assert.Contains(t, cols, "stock")
	assert.NotContains(t, cols, "")
}

func TestStructToMap(t *testing.T) {
	e := &taggedEntity{
		embeddedBase: embeddedBase{ID: "abc", Version: 3},
		Name:         "Casquinha",
		Price:        7.5,
		Skipped:      "never",
		NoTag:        "never",
	}

	m := StructToMap(e)
	assert.Equal(t, map[string]any{
		"id":      "abc",
		"version": 3,
		"name":    "Casquinha",
		"price":   7.5,
	}, m)
}

func TestStructToMapNonStruct(t *testing.T) {
	assert.Nil(t, StructToMap(42))
}

func TestParseOrderBy(t *testing.T) {
	r := &baseRepo[*taggedEntity]{
		cols:         ExtractDBColumns[*taggedEntity](),
		defaultOrder: "name",
	}

	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"", "name ASC", false},
		{"name", "name ASC", false},
		{"+price", "price ASC", false},
		{"-price", "price DESC", false},
		{"missing", "", true},
		{"name; DROP TABLE products", "", true},
	}

	for _, tt := range tests {
		got, err := r.parseOrderBy(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.in)
			continue
		}
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}
}
