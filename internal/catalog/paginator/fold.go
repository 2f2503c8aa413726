// fold.go implements the pure, DB-independent parts of the paginator:
// folding hydrated SKU rows into items (spec §4.F step 6), and the
// post-SQL safety filter with total compensation (spec §4.F step 7,
// Design Note 3).
package paginator

import (
	"sort"

	"github.com/brandeduk/catalog-search/internal/catalog/model"
)

// sizeOrder gives the canonical XS..5XL ordering; sizes outside this
// table sort after it, lexically.
var sizeOrder = map[string]int{
	"XXS": 0, "XS": 1, "S": 2, "M": 3, "L": 4, "XL": 5,
	"XXL": 6, "2XL": 6, "XXXL": 7, "3XL": 7, "4XL": 8, "5XL": 9,
}

// SKURow is one hydrated row from the batched SKU query (spec §4.F
// step 5): products JOIN styles JOIN brands JOIN sizes JOIN tags LEFT
// JOIN product_markup_overrides, already DISTINCT ON (style_code,
// colour_name).
type SKURow struct {
	StyleCode     string
	StyleName     string
	BrandName     string
	ColourName    string
	ColourMain    string
	ColourThumb   string
	Size          string
	SinglePrice   float64
	CartonPrice   *float64
	SellPrice     float64
	MarkupOverride *float64
	Customization []string
	DisplayOrder  *int
}

// FoldRows groups hydrated rows by style code into listing items,
// matching spec §4.F step 6: first colour's image wins, sizes are
// deduped and canonically ordered, sellPrice = MIN(sell_price).
func FoldRows(rows []SKURow) []model.Item {
	order := make([]string, 0)
	byStyle := make(map[string]*model.Item)
	colourSeen := make(map[string]map[string]bool)
	sizeSeen := make(map[string]map[string]bool)
	overrideByStyle := make(map[string]*float64)
	cartonByStyle := make(map[string]*float64)

	for _, r := range rows {
		item, ok := byStyle[r.StyleCode]
		if !ok {
			item = &model.Item{
				Code:         r.StyleCode,
				Name:         r.StyleName,
				Brand:        r.BrandName,
				Price:        r.SellPrice,
				DisplayOrder: r.DisplayOrder,
			}
			byStyle[r.StyleCode] = item
			colourSeen[r.StyleCode] = make(map[string]bool)
			sizeSeen[r.StyleCode] = make(map[string]bool)
			order = append(order, r.StyleCode)
		} else if r.SellPrice < item.Price {
			item.Price = r.SellPrice
		}

		if !colourSeen[r.StyleCode][r.ColourName] {
			colourSeen[r.StyleCode][r.ColourName] = true
			item.Colors = append(item.Colors, model.ColorVariant{
				Name: r.ColourName, Main: r.ColourMain, Thumb: r.ColourThumb,
			})
			if item.Image == "" {
				item.Image = r.ColourMain
			}
		}

		if r.Size != "" && !sizeSeen[r.StyleCode][r.Size] {
			sizeSeen[r.StyleCode][r.Size] = true
			item.Sizes = append(item.Sizes, r.Size)
		}

		for _, c := range r.Customization {
			if !containsString(item.Customization, c) {
				item.Customization = append(item.Customization, c)
			}
		}

		if r.CartonPrice != nil {
			cartonByStyle[r.StyleCode] = r.CartonPrice
		}
		if r.MarkupOverride != nil {
			overrideByStyle[r.StyleCode] = r.MarkupOverride
		}
	}

	items := make([]model.Item, 0, len(order))
	for _, code := range order {
		item := byStyle[code]
		sort.SliceStable(item.Sizes, func(i, j int) bool {
			ri, rj := sizeRank(item.Sizes[i]), sizeRank(item.Sizes[j])
			if ri != rj {
				return ri < rj
			}
			return item.Sizes[i] < item.Sizes[j]
		})
		item.CartonPrice = cartonByStyle[code]
		items = append(items, *item)
	}
	return items
}

func sizeRank(s string) int {
	if r, ok := sizeOrder[s]; ok {
		return r
	}
	return len(sizeOrder) + 1
}

func containsString(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}

// SafetyFilterResult is the outcome of applying the post-SQL safety
// filter (spec §4.F step 7, Design Note 3).
type SafetyFilterResult struct {
	Items           []model.Item
	CompensatedTotal int
}

// ApplySafetyFilter drops items whose sell_price falls outside
// [priceMin, priceMax] and items whose colour set is empty after
// colour filtering, then compensates total by the observed drop
// ratio so pagination remains honest when strict filters prune more
// than the relational predicate anticipated.
func ApplySafetyFilter(items []model.Item, priceMin, priceMax *float64, requireNonEmptyColours bool, rawTotal int) SafetyFilterResult {
	before := len(items)
	kept := make([]model.Item, 0, before)

	for _, item := range items {
		if priceMin != nil && item.Price < *priceMin {
			continue
		}
		if priceMax != nil && item.Price > *priceMax {
			continue
		}
		if requireNonEmptyColours && len(item.Colors) == 0 {
			continue
		}
		kept = append(kept, item)
	}

	total := rawTotal
	if before > 0 && len(kept) < before {
		ratio := float64(len(kept)) / float64(before)
		total = int(float64(rawTotal) * ratio)
	}

	return SafetyFilterResult{Items: kept, CompensatedTotal: total}
}
