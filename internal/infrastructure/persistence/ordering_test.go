package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaleOrder(t *testing.T) {
	tests := []struct {
		name    string
		by, dir string
		column  string
		desc    bool
	}{
		{"defaults", "", "", "created_at", true},
		{"alias", "date", "asc", "sale_date", false},
		{"case and spaces", "  TOTAL ", " ASC ", "total", false},
		{"unknown column", "user_id", "asc", "created_at", false},
		{"injected column", "total; DROP TABLE sales", "desc", "created_at", true},
		{"injected direction", "status", "asc; DROP TABLE sales", "status", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := saleOrder(tt.by, tt.dir)
			require.Len(t, order.Columns, 2)
			assert.Equal(t, tt.column, order.Columns[0].Column.Name)
			assert.Equal(t, tt.desc, order.Columns[0].Desc)
			assert.Equal(t, "id", order.Columns[1].Column.Name)
			assert.Equal(t, tt.desc, order.Columns[1].Desc)
		})
	}
}
