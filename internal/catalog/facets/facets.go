// Package facets implements the Facet Aggregator (spec component G):
// a UNION-ALL-shaped set of per-dimension count queries dispatched
// concurrently and bounded by a fan-out limit, directly grounded on
// the goroutine/channel dispatch and UNNEST-based tag counting in
// other_examples/e825095e_marmotdata-marmot__internal-core-search-facets.go.go,
// promoted here to a bounded golang.org/x/sync/errgroup fan-out per
// spec §5 ("dispatches six-eighteen in parallel").
package facets

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/errgroup"

	"github.com/brandeduk/catalog-search/internal/catalog/model"
	"github.com/brandeduk/catalog-search/internal/catalog/predicate"
	"github.com/brandeduk/catalog-search/internal/metrics"
)

// Querier is the subset of pgxpool.Pool the aggregator needs.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// scalarColumn and arrayColumn mirror predicate's filter-dimension
// column maps, but for the projection columns counted by each
// dimension's facet query (spec §4.G). Only dimensions with a
// precomputed slug column belong here; primaryColour/colourShade/brand
// have no such column and are handled by displayNameColumn instead.
var scalarColumn = map[string]string{
	"gender":   "gender_slug",
	"ageGroup": "age_group_slug",
	"tag":      "tag_slug",
}

// displayNameColumn names the projection column for scalar dimensions
// that only have a display name, no precomputed slug (spec §4.G:
// "generating a slug when only a display name exists, e.g. brand ->
// lower+hyphenate"). Their facet query computes the slug in SQL and
// groups by it instead of joining a lookup table.
var displayNameColumn = map[string]string{
	"primaryColour": "primary_colour",
	"colourShade":   "colour_shade",
	"brand":         "brand_name",
}

var arrayColumn = map[string]string{
	"sleeve":        "sleeve_slugs",
	"neckline":      "neckline_slugs",
	"fabric":        "fabric_slugs",
	"size":          "size_slugs",
	"style":         "style_slugs",
	"feature":       "feature_slugs",
	"effect":        "effect_slugs",
	"accreditation": "accreditation_slugs",
	"sector":        "sector_slugs",
	"sport":         "sport_slugs",
	"weight":        "weight_slugs",
	"fit":           "fit_slugs",
}

// lookupJoin names the join table for each precomputed-slug scalar/
// array dimension, used to resolve slug -> name.
var lookupJoin = map[string]string{
	"gender": "genders", "ageGroup": "age_groups", "tag": "tags",
	"sleeve": "sleeve_types", "neckline": "neckline_types", "fabric": "fabric_types",
	"size": "sizes", "style": "style_keywords", "feature": "features",
	"effect": "effects", "accreditation": "accreditations", "sector": "sectors",
	"sport": "sports", "weight": "weights", "fit": "fit_types",
}

// Aggregator runs the facet counting plan against a Querier.
type Aggregator struct {
	db           Querier
	fanOutLimit  int
	crossFilter  bool
}

// New builds an Aggregator. fanOutLimit bounds concurrent per-dimension
// dispatch (spec §5); crossFilter controls whether a dimension's own
// predicate is excluded from its own count (spec §9, Open Question 1).
func New(db Querier, fanOutLimit int, crossFilter bool) *Aggregator {
	if fanOutLimit <= 0 {
		fanOutLimit = 12
	}
	return &Aggregator{db: db, fanOutLimit: fanOutLimit, crossFilter: crossFilter}
}

// Aggregate runs one facet subquery per dimension in model.Dimensions,
// bounded by the fan-out limit, and returns the full FacetResponse —
// every dimension is always present, even with an empty array.
func (a *Aggregator) Aggregate(ctx context.Context, f model.Filters) (model.FacetResponse, error) {
	response := make(model.FacetResponse, len(model.Dimensions))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.fanOutLimit)

	for _, dim := range model.Dimensions {
		dim := dim
		g.Go(func() error {
			values, err := a.countDimension(gctx, dim, f)
			if err != nil {
				return fmt.Errorf("facet dimension %s: %w", dim, err)
			}
			mu.Lock()
			response[dim] = values
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, dim := range model.Dimensions {
		if response[dim] == nil {
			response[dim] = []model.FacetValue{}
		}
	}

	return response, nil
}

// countDimension builds and runs the facet count query for one
// dimension, excluding that dimension's own predicate from the WHERE
// clause when crossFilter is enabled (spec §9, Open Question 1).
func (a *Aggregator) countDimension(ctx context.Context, dim string, f model.Filters) ([]model.FacetValue, error) {
	timer := metrics.FacetSubqueryDuration.WithLabelValues(dim)
	stop := startTimer(timer)
	defer stop()

	filtered := f
	if a.crossFilter {
		filtered = withoutDimension(f, dim)
	}

	b := predicate.New(1)
	predicate.BuildFilters(b, filtered)

	where := b.Where()
	if where == "" {
		where = "TRUE"
	}

	var sql string
	if scalarCol, ok := scalarColumn[dim]; ok {
		sql = fmt.Sprintf(`
SELECT l.slug, l.name, COUNT(DISTINCT sp.style_code) AS cnt
FROM search_projection sp
JOIN %s l ON l.slug = sp.%s
WHERE %s
GROUP BY l.slug, l.name
ORDER BY cnt DESC
LIMIT 50`, lookupJoin[dim], scalarCol, where)
	} else if nameCol, ok := displayNameColumn[dim]; ok {
		sql = fmt.Sprintf(`
SELECT LOWER(REPLACE(sp.%s, ' ', '-')) AS slug, sp.%s AS name, COUNT(DISTINCT sp.style_code) AS cnt
FROM search_projection sp
WHERE %s AND sp.%s IS NOT NULL
GROUP BY sp.%s
ORDER BY cnt DESC
LIMIT 50`, nameCol, nameCol, where, nameCol, nameCol)
	} else if arrCol, ok := arrayColumn[dim]; ok {
		orderClause := "cnt DESC"
		if dim == "size" {
			orderClause = "l.size_order NULLS LAST, cnt DESC"
		}
		sql = fmt.Sprintf(`
SELECT l.slug, l.name, COUNT(DISTINCT sp.style_code) AS cnt
FROM search_projection sp, UNNEST(sp.%s) AS slug_val
JOIN %s l ON l.slug = slug_val
WHERE %s
GROUP BY l.slug, l.name%s
ORDER BY %s
LIMIT 50`, arrCol, lookupJoin[dim], where, sizeOrderColumn(dim), orderClause)
	} else {
		return []model.FacetValue{}, nil
	}

	rows, err := a.db.Query(ctx, sql, b.Args()...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var values []model.FacetValue
	for rows.Next() {
		var v model.FacetValue
		if err := rows.Scan(&v.Slug, &v.Name, &v.Count); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if dim != "size" {
		sort.SliceStable(values, func(i, j int) bool { return values[i].Count > values[j].Count })
	}
	return values, nil
}

// sizeOrderColumn adds l.size_order to the GROUP BY for the size
// dimension, since it's referenced in that dimension's ORDER BY.
func sizeOrderColumn(dim string) string {
	if dim == "size" {
		return ", l.size_order"
	}
	return ""
}

// withoutDimension returns a copy of f with the named dimension's own
// filter cleared, so its facet counts reflect every other active
// filter but not itself (spec §9, Open Question 1, cross-filter mode).
func withoutDimension(f model.Filters, dim string) model.Filters {
	out := f
	switch dim {
	case "gender":
		out.Gender = nil
	case "ageGroup":
		out.AgeGroup = nil
	case "tag":
		out.Tag = nil
	case "primaryColour":
		out.PrimaryColour = nil
	case "colourShade":
		out.ColourShade = nil
	case "brand":
		out.Brand = nil
	case "sleeve":
		out.Sleeve = nil
	case "neckline":
		out.Neckline = nil
	case "fabric":
		out.Fabric = nil
	case "size":
		out.Size = nil
	case "style":
		out.Style = nil
	case "feature":
		out.Feature = nil
	case "effect":
		out.Effect = nil
	case "accreditation":
		out.Accreditations = nil
	case "sector":
		out.Sector = nil
	case "sport":
		out.Sport = nil
	case "weight":
		out.Weight = nil
	case "fit":
		out.Fit = nil
	}
	return out
}

func startTimer(o interface{ Observe(float64) }) func() {
	start := time.Now()
	return func() {
		o.Observe(time.Since(start).Seconds())
	}
}
