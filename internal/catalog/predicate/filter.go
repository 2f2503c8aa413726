package predicate

import (
	"fmt"
	"strings"

	"github.com/brandeduk/catalog-search/internal/catalog/model"
)

// scalarColumns maps the scalar filter dimensions with a precomputed
// slug column to that column, per spec §4.E's table.
var scalarColumns = map[string]string{
	"gender":   "gender_slug",
	"ageGroup": "age_group_slug",
	"tag":      "tag_slug",
}

// scalarDisplayNameColumns maps the scalar filter dimensions that only
// have a plain display-name column (spec §3's data model: primary_colour,
// colour_shade — no precomputed slug) to that column. Matched the same
// way BuildBrandFilter matches brand_name, per §4.G's "generating a
// slug when only a display name exists, e.g. brand -> lower+hyphenate".
var scalarDisplayNameColumns = map[string]string{
	"primaryColour": "primary_colour",
	"colourShade":   "colour_shade",
}

// arrayColumns maps the array-overlap filter dimensions to their
// projection column, per spec §4.E's table.
var arrayColumns = map[string]string{
	"sleeve":         "sleeve_slugs",
	"neckline":       "neckline_slugs",
	"fabric":         "fabric_slugs",
	"size":           "size_slugs",
	"style":          "style_slugs",
	"colour":         "colour_slugs",
	"weight":         "weight_slugs",
	"fit":            "fit_slugs",
	"feature":        "feature_slugs",
	"effect":         "effect_slugs",
	"accreditations": "accreditation_slugs",
	"sector":         "sector_slugs",
	"sport":          "sport_slugs",
}

// BuildFilters appends every active filter dimension from f to b,
// following spec §4.E. priceMin/priceMax are not emitted here: they
// apply to the aggregated MIN(sell_price) per style, so callers add
// them separately with BuildPriceHaving. The implicit sku_status='Live'
// clause is added first so it benefits the partial index.
func BuildFilters(b *Builder, f model.Filters) {
	b.Add(RawPredicate("sku_status = 'Live'"))

	if f.Brand != nil {
		BuildBrandFilter(b, *f.Brand)
	}
	if f.ProductType != nil {
		BuildProductTypeFilter(b, *f.ProductType)
	}

	for dim, column := range scalarColumns {
		if v := scalarValue(f, dim); v != nil {
			b.Add(Eq(column, strings.ToLower(*v)))
		}
	}

	for dim, column := range scalarDisplayNameColumns {
		if v := scalarValue(f, dim); v != nil {
			buildDisplayNameSlugFilter(b, column, *v)
		}
	}

	for dim, column := range arrayColumns {
		if vs := arrayValue(f, dim); len(vs) > 0 {
			b.Add(Overlap(column, foldAll(vs)))
		}
	}

	if len(f.Flag) > 0 {
		b.Add(RawPredicate(
			"flag_ids && (SELECT array_agg(id) FROM special_flags WHERE slug = ANY(%d))",
			foldAll(f.Flag),
		))
	}

	if len(f.CategoryIDs) > 0 {
		b.Add(Overlap("category_ids", f.CategoryIDs))
	}

	if f.IsBestSeller != nil && *f.IsBestSeller {
		b.Add(RawPredicate("is_best = true"))
	}
	if f.IsRecommended != nil && *f.IsRecommended {
		b.Add(RawPredicate("is_recommended = true"))
	}
}

// BuildBrandFilter matches case-folded against the brand name, or the
// name with spaces replaced by hyphens, per spec §4.E.
func BuildBrandFilter(b *Builder, brand string) {
	buildDisplayNameSlugFilter(b, "brand_name", brand)
}

// buildDisplayNameSlugFilter matches value against a display-name
// column two ways: case-folded as-is, or case-folded with spaces
// replaced by hyphens, so callers can filter on either the raw display
// name or its lower+hyphenate slug form (spec §4.G).
func buildDisplayNameSlugFilter(b *Builder, column, value string) {
	folded := strings.ToLower(strings.TrimSpace(value))
	hyphenated := strings.ReplaceAll(folded, " ", "-")
	nameParam := b.AddArg(folded)
	hyphenParam := b.AddArg(hyphenated)
	b.Add(RawPredicate(fmt.Sprintf(
		"(LOWER(%s) = $%d OR LOWER(REPLACE(%s, ' ', '-')) = $%d)", column, nameParam, column, hyphenParam,
	)))
}

// BuildProductTypeFilter joins to product_types on a normalized name
// (hyphens/spaces stripped), canonicalizing the "tshirt(s)" shorthand
// to "tshirts" per spec §4.E.
func BuildProductTypeFilter(b *Builder, productType string) {
	normalized := normalizeProductType(productType)
	param := b.AddArg(normalized)
	b.Add(RawPredicate(fmt.Sprintf(
		"LOWER(REPLACE(REPLACE(product_type_name, '-', ''), ' ', '')) = $%d", param,
	)))
}

func normalizeProductType(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "-", "")
	s = strings.ReplaceAll(s, " ", "")
	switch s {
	case "tshirt", "tshirts":
		return "tshirts"
	}
	return s
}

// BuildPriceHaving emits priceMin/priceMax as a HAVING predicate on
// the aggregated MIN(sell_price), per spec §4.F step 2.
func BuildPriceHaving(b *Builder, priceMin, priceMax *float64) {
	if priceMin == nil && priceMax == nil {
		return
	}
	var min, max any
	if priceMin != nil {
		min = *priceMin
	}
	if priceMax != nil {
		max = *priceMax
	}
	b.Add(HavingRange("MIN(sell_price)", min, max))
}

func scalarValue(f model.Filters, dim string) *string {
	switch dim {
	case "gender":
		return f.Gender
	case "ageGroup":
		return f.AgeGroup
	case "tag":
		return f.Tag
	case "primaryColour":
		return f.PrimaryColour
	case "colourShade":
		return f.ColourShade
	}
	return nil
}

func arrayValue(f model.Filters, dim string) []string {
	switch dim {
	case "sleeve":
		return f.Sleeve
	case "neckline":
		return f.Neckline
	case "fabric":
		return f.Fabric
	case "size":
		return f.Size
	case "style":
		return f.Style
	case "colour":
		return f.Colour
	case "weight":
		return f.Weight
	case "fit":
		return f.Fit
	case "feature":
		return f.Feature
	case "effect":
		return f.Effect
	case "accreditations":
		return f.Accreditations
	case "sector":
		return f.Sector
	case "sport":
		return f.Sport
	}
	return nil
}

func foldAll(vs []string) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = strings.ToLower(v)
	}
	return out
}
