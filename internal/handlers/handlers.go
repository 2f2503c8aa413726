// Package handlers exposes the catalog search core's external
// interfaces (spec §6): listing, facets, product detail, the admin
// cache-invalidate trigger, and a liveness probe. Query-param parsing
// follows the teacher's c.Query/c.QueryInt pattern
// (internal/handlers/handlers.go GetProducts), generalized across the
// full filter surface of spec §4.E.
package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/brandeduk/catalog-search/internal/apperr"
	"github.com/brandeduk/catalog-search/internal/cache"
	"github.com/brandeduk/catalog-search/internal/catalog/esaccel"
	"github.com/brandeduk/catalog-search/internal/catalog/facets"
	"github.com/brandeduk/catalog-search/internal/catalog/lookup"
	"github.com/brandeduk/catalog-search/internal/catalog/model"
	"github.com/brandeduk/catalog-search/internal/catalog/paginator"
	"github.com/brandeduk/catalog-search/internal/catalog/queryparser"
	"github.com/brandeduk/catalog-search/internal/catalog/synonym"
	"github.com/brandeduk/catalog-search/internal/config"
	"github.com/brandeduk/catalog-search/internal/logging"
)

// Handlers bundles everything the HTTP layer needs to serve the
// catalog search endpoints.
type Handlers struct {
	cfg        *config.Config
	cache      cache.Cache
	paginator  *paginator.Service
	aggregator *facets.Aggregator
	parser     *queryparser.Parser
	lookup     *lookup.Cache
	synonym    *synonym.Resolver
	es         *esaccel.Accelerator
}

// New builds a Handlers bundle. es may be nil, which keeps the
// Postgres tsvector path as the sole search path (spec §4.D, §9).
func New(cfg *config.Config, c cache.Cache, p *paginator.Service, agg *facets.Aggregator, parser *queryparser.Parser, lookupCache *lookup.Cache, synonymResolver *synonym.Resolver, es *esaccel.Accelerator) *Handlers {
	return &Handlers{cfg: cfg, cache: c, paginator: p, aggregator: agg, parser: parser, lookup: lookupCache, synonym: synonymResolver, es: es}
}

// parseFilters reads the full §4.E filter surface plus §6's listing
// params from the request's query string.
func parseFilters(c *fiber.Ctx, defaultLimit, maxLimit int) (model.Filters, error) {
	f := model.Filters{
		Query: c.Query("q"),
		Sort:  c.Query("sort", "newest"),
		Order: c.Query("order", "ASC"),
		Page:  c.QueryInt("page", 1),
		Limit: c.QueryInt("limit", defaultLimit),
	}

	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > maxLimit {
		return f, apperr.Invalid("limit must be between 1 and " + strconv.Itoa(maxLimit))
	}

	switch strings.ToUpper(f.Order) {
	case "ASC", "DESC":
	default:
		return f, apperr.Invalid("order must be ASC or DESC")
	}

	switch f.Sort {
	case "newest", "price", "name", "brand", "code", "best", "recommended":
	default:
		return f, apperr.Invalid("unknown sort: " + f.Sort)
	}

	if brand := c.Query("brand"); brand != "" {
		f.Brand = &brand
	}
	if pt := c.Query("productType"); pt != "" {
		f.ProductType = &pt
	}
	if g := c.Query("gender"); g != "" {
		f.Gender = &g
	}
	if ag := c.Query("ageGroup"); ag != "" {
		f.AgeGroup = &ag
	}
	if tag := c.Query("tag"); tag != "" {
		f.Tag = &tag
	}
	if pc := c.Query("primaryColour"); pc != "" {
		f.PrimaryColour = &pc
	}
	if cs := c.Query("colourShade"); cs != "" {
		f.ColourShade = &cs
	}

	f.Sleeve = splitCSV(c.Query("sleeve"))
	f.Neckline = splitCSV(c.Query("neckline"))
	f.Fabric = splitCSV(c.Query("fabric"))
	f.Size = splitCSV(c.Query("size"))
	f.Style = splitCSV(c.Query("style"))
	f.Colour = splitCSV(c.Query("colour"))
	f.Weight = splitCSV(c.Query("weight"))
	f.Fit = splitCSV(c.Query("fit"))
	f.Feature = splitCSV(c.Query("feature"))
	f.Effect = splitCSV(c.Query("effect"))
	f.Accreditations = splitCSV(c.Query("accreditations"))
	f.Sector = splitCSV(c.Query("sector"))
	f.Sport = splitCSV(c.Query("sport"))
	f.Flag = splitCSV(c.Query("flag"))

	if priceMin := c.Query("priceMin"); priceMin != "" {
		v, err := strconv.ParseFloat(priceMin, 64)
		if err != nil {
			return f, apperr.Invalid("priceMin must be numeric")
		}
		f.PriceMin = &v
	}
	if priceMax := c.Query("priceMax"); priceMax != "" {
		v, err := strconv.ParseFloat(priceMax, 64)
		if err != nil {
			return f, apperr.Invalid("priceMax must be numeric")
		}
		f.PriceMax = &v
	}
	if v := c.Query("isBestSeller"); v != "" {
		b := v == "true"
		f.IsBestSeller = &b
	}
	if v := c.Query("isRecommended"); v != "" {
		b := v == "true"
		f.IsRecommended = &b
	}

	return f, nil
}

func splitCSV(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// applyParsedQuery folds the query parser's output into f. A detected
// style code replaces the search text (the free-text tokens are
// dropped from f.Query), but is additive, not exclusive: brand/productType/dimension hits merge into
// their filters the same as when no style code is present, unless the
// caller already specified one explicitly.
func applyParsedQuery(f model.Filters, parsed model.ParsedQuery) model.Filters {
	if f.Brand == nil {
		f.Brand = parsed.Brand
	}
	if f.ProductType == nil {
		f.ProductType = parsed.ProductType
	}
	f.Sport = mergeUnique(f.Sport, parsed.Sports)
	f.Fit = mergeUnique(f.Fit, parsed.Fits)
	f.Sleeve = mergeUnique(f.Sleeve, parsed.Sleeves)
	f.Neckline = mergeUnique(f.Neckline, parsed.Necklines)
	f.Fabric = mergeUnique(f.Fabric, parsed.Fabrics)
	f.Sector = mergeUnique(f.Sector, parsed.Sectors)
	f.Colour = mergeUnique(f.Colour, parsed.Colours)
	f.Feature = mergeUnique(f.Feature, parsed.Features)

	if parsed.StyleCode != nil {
		f.Query = *parsed.StyleCode
	} else {
		f.Query = strings.Join(parsed.FreeText, " ")
	}
	return f
}

func mergeUnique(a, b []string) []string {
	seen := make(map[string]bool, len(a))
	for _, v := range a {
		seen[v] = true
	}
	out := append([]string{}, a...)
	for _, v := range b {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// writeError renders an apperr-compatible error as the §7 JSON
// envelope with its mapped HTTP status.
func writeError(c *fiber.Ctx, err error) error {
	status := apperr.HTTPStatus(err)
	envelope := apperr.ToEnvelope(err)
	logging.FromCtx(c).Warn().Err(err).Int("status", status).Msg("request failed")
	return c.Status(status).JSON(envelope)
}
