// Package paginator implements the Paginator & Hydrator (spec
// component F): the two-CTE filtered-style-set/meta-aggregation plan,
// total & price-range computation, batched SKU hydration, folding, the
// post-SQL safety filter, and markup/quantity-break application.
// Grounded on the teacher's dynamic WHERE-building style
// (internal/handlers/handlers.go GetProducts) generalized onto the
// predicate package, and on the two-phase "rank then hydrate" shape
// from spec.md §9 Design Note 2.
package paginator

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brandeduk/catalog-search/internal/catalog/model"
	"github.com/brandeduk/catalog-search/internal/catalog/predicate"
	"github.com/brandeduk/catalog-search/internal/catalog/pricing"
	"github.com/brandeduk/catalog-search/internal/config"
)

// Querier is the subset of pgxpool.Pool the paginator needs, so tests
// can substitute a fake without a live database.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var _ Querier = (*pgxpool.Pool)(nil)

// Service executes the full listing plan against the relational
// projection.
type Service struct {
	db       Querier
	weights  config.RelevanceWeights
	cfg      config.Config
	schedule []pricing.Tier
}

// New builds a paginator Service.
func New(db Querier, cfg *config.Config, schedule []pricing.Tier) *Service {
	return &Service{db: db, weights: cfg.Weights, cfg: *cfg, schedule: schedule}
}

// metaRow is one row of the meta-aggregation result (spec §4.F
// step 2), scanned directly from the second CTE.
type metaRow struct {
	StyleCode           string
	StyleName           string
	SellPrice           float64
	BrandName           string
	DisplayOrder        *int
	RelevanceScore       float64
}

// buildPlan renders the WHERE/HAVING predicates shared across the
// page, total and price-range queries, per spec §4.F steps 1-2.
func buildPlan(f model.Filters, w config.RelevanceWeights, colourSlugs, fabricSlugs, necklineSlugs, sleeveSlugs, styleSlugs []string) (b *predicate.Builder, hasRelevance bool, relevanceSelect string) {
	b = predicate.New(1)
	predicate.BuildFilters(b, f)

	search := predicate.BuildSearch(b, w, f.Query, colourSlugs, fabricSlugs, necklineSlugs, sleeveSlugs, styleSlugs)
	if search.Condition != "" {
		b.Add(predicate.RawPredicate(search.Condition))
	}

	predicate.BuildPriceHaving(b, f.PriceMin, f.PriceMax)

	relevanceSelect = "0 AS relevance_score"
	if search.HasRelevance {
		relevanceSelect = search.RelevanceSelect + " AS relevance_score"
	}

	return b, search.HasRelevance, relevanceSelect
}

// strictFilters reports whether colour or price filters are active,
// triggering the over-fetch and safety-filter discipline of spec §4.F
// steps 3 and 7.
func strictFilters(f model.Filters) bool {
	return len(f.Colour) > 0 || f.PriceMin != nil || f.PriceMax != nil
}

// FetchStyles runs the filtered-style-set and meta-aggregation CTEs
// and returns the page of style codes in sorted order, per spec §4.F
// steps 1-3.
func (s *Service) FetchStyles(ctx context.Context, f model.Filters, colourSlugs, fabricSlugs, necklineSlugs, sleeveSlugs, styleSlugs []string) ([]metaRow, error) {
	b, hasRelevance, relevanceSelect := buildPlan(f, s.weights, colourSlugs, fabricSlugs, necklineSlugs, sleeveSlugs, styleSlugs)

	where := b.Where()
	if where == "" {
		where = "TRUE"
	}
	having := b.HavingClause()
	havingClause := ""
	if having != "" {
		havingClause = "HAVING " + having
	}

	strict := strictFilters(f)
	fetchLimit := FetchLimit(f.Limit, strict, s.cfg.StrictOverfetchMultiplier, s.cfg.StrictOverfetchCap)
	offset := Offset(f.Page, f.Limit)
	orderBy := OrderBy(f.Sort, f.Order, hasRelevance)

	limitParam := b.AddArg(fetchLimit)
	offsetParam := b.AddArg(offset)

	sql := fmt.Sprintf(`
WITH base AS (
  SELECT style_code, style_name, sell_price, brand_name, custom_display_order,
         product_type_priority, created_at, is_best, is_recommended,
         %s
  FROM search_projection
  WHERE %s
),
meta AS (
  SELECT style_code,
         MIN(style_name) AS style_name,
         MIN(sell_price) AS sell_price,
         MIN(brand_name) AS brand_name,
         MIN(custom_display_order) AS custom_display_order,
         MIN(product_type_priority) AS product_type_priority,
         MIN(created_at) AS created_at,
         BOOL_OR(is_best) AS is_best,
         BOOL_OR(is_recommended) AS is_recommended,
         MAX(relevance_score) AS relevance_score
  FROM base
  GROUP BY style_code
  %s
)
SELECT style_code, style_name, sell_price, brand_name, custom_display_order, relevance_score
FROM meta
ORDER BY %s
LIMIT $%d OFFSET $%d
`, relevanceSelect, where, havingClause, orderBy, limitParam, offsetParam)

	rows, err := s.db.Query(ctx, sql, b.Args()...)
	if err != nil {
		return nil, fmt.Errorf("fetch styles: %w", err)
	}
	defer rows.Close()

	var out []metaRow
	for rows.Next() {
		var m metaRow
		if err := rows.Scan(&m.StyleCode, &m.StyleName, &m.SellPrice, &m.BrandName, &m.DisplayOrder, &m.RelevanceScore); err != nil {
			return nil, fmt.Errorf("scan style row: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// FetchTotalAndPriceRange runs the total-count and price-range CTEs
// over the same filtered style set, per spec §4.F step 4. The listing
// handler calls it on every listing-cache miss; total and price range
// are not cached separately from the listing response.
func (s *Service) FetchTotalAndPriceRange(ctx context.Context, f model.Filters, colourSlugs, fabricSlugs, necklineSlugs, sleeveSlugs, styleSlugs []string) (int, model.PriceRange, error) {
	b, _, relevanceSelect := buildPlan(f, s.weights, colourSlugs, fabricSlugs, necklineSlugs, sleeveSlugs, styleSlugs)

	where := b.Where()
	if where == "" {
		where = "TRUE"
	}
	having := b.HavingClause()
	havingClause := ""
	if having != "" {
		havingClause = "HAVING " + having
	}

	sql := fmt.Sprintf(`
WITH base AS (
  SELECT style_code, sell_price, %s
  FROM search_projection
  WHERE %s
),
meta AS (
  SELECT style_code, MIN(sell_price) AS sell_price
  FROM base
  GROUP BY style_code
  %s
)
SELECT COUNT(*), COALESCE(MIN(sell_price), 0), COALESCE(MAX(sell_price), 0) FROM meta
`, relevanceSelect, where, havingClause)

	var total int
	var min, max float64
	if err := s.db.QueryRow(ctx, sql, b.Args()...).Scan(&total, &min, &max); err != nil {
		return 0, model.PriceRange{}, fmt.Errorf("fetch total and price range: %w", err)
	}
	return total, model.PriceRange{Min: min, Max: max}, nil
}

// HydratePage runs the batched SKU hydration query for the given page
// of style codes, per spec §4.F step 5: a dynamic row cap clamps
// between 500 and 10,000 based on the number of styles.
func (s *Service) HydratePage(ctx context.Context, styleCodes []string, colourFilter []string) ([]SKURow, error) {
	if len(styleCodes) == 0 {
		return nil, nil
	}

	b := predicate.New(1)
	b.Add(predicate.Any("style_code", styleCodes))
	if len(colourFilter) > 0 {
		b.Add(predicate.Overlap("colour_slugs", colourFilter))
	}

	rowCap := clamp(len(styleCodes)*50, 500, 10000)
	limitParam := b.AddArg(rowCap)

	sql := fmt.Sprintf(`
SELECT DISTINCT ON (p.style_code, p.colour_name)
  p.style_code, p.style_name, br.name AS brand_name,
  p.colour_name, p.colour_main_image, p.colour_thumb_image, sz.size_name,
  p.single_price, p.carton_price, p.sell_price,
  mo.markup_override, p.customization, p.display_order
FROM products p
JOIN styles st ON st.style_code = p.style_code
JOIN brands br ON br.id = p.brand_id
JOIN sizes sz ON sz.id = p.size_id
LEFT JOIN tags tg ON tg.id = p.tag_id
LEFT JOIN product_markup_overrides mo ON mo.style_code = p.style_code
WHERE %s
ORDER BY p.style_code, p.colour_name, sz.size_order
LIMIT $%d
`, b.Where(), limitParam)

	rows, err := s.db.Query(ctx, sql, b.Args()...)
	if err != nil {
		return nil, fmt.Errorf("hydrate page: %w", err)
	}
	defer rows.Close()

	var out []SKURow
	for rows.Next() {
		var r SKURow
		if err := rows.Scan(&r.StyleCode, &r.StyleName, &r.BrandName, &r.ColourName, &r.ColourMain,
			&r.ColourThumb, &r.Size, &r.SinglePrice, &r.CartonPrice, &r.SellPrice,
			&r.MarkupOverride, &r.Customization, &r.DisplayOrder); err != nil {
			return nil, fmt.Errorf("scan sku row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// FetchPriceOverrides loads the per-product quantity-break overrides
// named by the data model (product_price_overrides: style_code,
// min_qty, max_qty, discount_percent — spec.md:48) for the given style
// codes, keyed by style code for BuildBreaks to overlay onto the
// global schedule (spec.md step 8).
func (s *Service) FetchPriceOverrides(ctx context.Context, styleCodes []string) (map[string][]pricing.Override, error) {
	if len(styleCodes) == 0 {
		return nil, nil
	}

	sql := `
SELECT style_code, min_qty, max_qty, discount_percent
FROM product_price_overrides
WHERE style_code = ANY($1)
`
	rows, err := s.db.Query(ctx, sql, styleCodes)
	if err != nil {
		return nil, fmt.Errorf("fetch price overrides: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]pricing.Override)
	for rows.Next() {
		var code string
		var o pricing.Override
		if err := rows.Scan(&code, &o.MinQty, &o.MaxQty, &o.Discount); err != nil {
			return nil, fmt.Errorf("scan price override: %w", err)
		}
		out[code] = append(out[code], o)
	}
	return out, rows.Err()
}

// ApplyMarkup fills in MarkupTier/MarkupSource/PriceBreaks for each
// item, per spec §4.F step 8. breakOverrides holds each style's
// product_price_overrides rows, keyed by style code; a style with no
// override rows falls back to the plain global schedule.
func (s *Service) ApplyMarkup(items []model.Item, basePrices map[string]float64, overrides map[string]*float64, breakOverrides map[string][]pricing.Override) {
	for i := range items {
		code := items[i].Code
		base := basePrices[code]
		override := overrides[code]

		tier, source := pricing.ResolveMarkupTier(items[i].Price, base, override)
		items[i].MarkupTier = tier
		items[i].MarkupSource = source
		items[i].PriceBreaks = pricing.BuildBreaks(s.schedule, breakOverrides[code], base)
	}
}

func clamp(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
