package persistence

import (
	"strings"

	"gorm.io/gorm/clause"
)

// saleOrderColumns maps the sort keys accepted from clients to sales
// columns. Anything else falls back to created_at.
var saleOrderColumns = map[string]string{
	"created_at": "created_at",
	"updated_at": "updated_at",
	"sale_date":  "sale_date",
	"date":       "sale_date",
	"total":      "total",
	"status":     "status",
}

// saleOrder builds the ORDER BY for sale listings. Column names never come
// from the request; id breaks ties so pages stay stable.
func saleOrder(orderBy, orderDir string) clause.OrderBy {
	column, ok := saleOrderColumns[strings.ToLower(strings.TrimSpace(orderBy))]
	if !ok {
		column = "created_at"
	}
	desc := !strings.EqualFold(strings.TrimSpace(orderDir), "asc")

	return clause.OrderBy{Columns: []clause.OrderByColumn{
		{Column: clause.Column{Table: "sales", Name: column}, Desc: desc},
		{Column: clause.Column{Table: "sales", Name: "id"}, Desc: desc},
	}}
}
