package paginator

import (
	"fmt"
	"strings"
)

// sortColumns maps the external sort names to their meta-aggregation
// column, per spec §4.F step 3.
var sortColumns = map[string]string{
	"price": "sell_price",
	"name":  "style_name",
	"brand": "brand_name",
	"code":  "style_code",
}

// OrderBy renders the ORDER BY clause (without the leading "ORDER BY")
// for the meta-aggregation result set, following the sort-mode table
// of spec §4.F step 3. hasQuery controls whether relevance_score DESC
// is prepended ahead of "newest".
func OrderBy(sort, order string, hasQuery bool) string {
	order = strings.ToUpper(order)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}

	switch sort {
	case "best":
		return "is_best DESC, is_recommended DESC, custom_display_order ASC, product_type_priority ASC, created_at DESC"
	case "recommended":
		return "is_recommended DESC, is_best DESC, custom_display_order ASC, product_type_priority ASC, created_at DESC"
	case "price", "name", "brand", "code":
		column := sortColumns[sort]
		return fmt.Sprintf("%s %s, product_type_priority ASC", column, order)
	default:
		prefix := ""
		if hasQuery {
			prefix = "relevance_score DESC, "
		}
		return prefix + "custom_display_order ASC, product_type_priority ASC, created_at DESC"
	}
}

// FetchLimit computes the over-fetch size for strict (colour/price)
// filters, per spec §4.F step 3: min(multiplier*limit, cap) when
// strictFilters is set, else the plain limit.
func FetchLimit(limit int, strictFilters bool, multiplier, overfetchCap int) int {
	if !strictFilters {
		return limit
	}
	fetch := limit * multiplier
	if fetch > overfetchCap {
		return overfetchCap
	}
	return fetch
}

// Offset computes the zero-based row offset for a 1-indexed page.
func Offset(page, limit int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * limit
}
