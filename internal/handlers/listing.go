package handlers

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/brandeduk/catalog-search/internal/apperr"
	"github.com/brandeduk/catalog-search/internal/cache"
	"github.com/brandeduk/catalog-search/internal/catalog/esaccel"
	"github.com/brandeduk/catalog-search/internal/catalog/model"
	"github.com/brandeduk/catalog-search/internal/catalog/paginator"
	"github.com/brandeduk/catalog-search/internal/catalog/pricing"
	"github.com/brandeduk/catalog-search/internal/logging"
	"github.com/brandeduk/catalog-search/internal/metrics"
)

// Listing serves the catalog listing endpoint (spec §6): parses and
// merges filters, checks the listing cache, and on a miss runs the
// full rank-then-hydrate plan (spec §4.F) before caching the result.
func (h *Handlers) Listing(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), h.cfg.ListingDeadline)
	defer cancel()

	f, err := parseFilters(c, h.cfg.DefaultPageLimit, h.cfg.MaxPageLimit)
	if err != nil {
		return writeError(c, err)
	}

	parsed := h.parseQuery(f.Query)
	f = applyParsedQuery(f, parsed)

	key := h.cacheKey(cache.KindListing, f, f.Page, f.Limit)

	var resp model.ListingResponse
	if err := h.cache.Get(ctx, key, &resp); err == nil {
		metrics.CacheHits.WithLabelValues(string(cache.KindListing)).Inc()
		return c.JSON(resp)
	}
	metrics.CacheMisses.WithLabelValues(string(cache.KindListing)).Inc()

	rankOrder, err := h.rankedStyleCodes(ctx, c, f, parsed)
	if err != nil {
		return writeError(c, apperr.Upstream(err))
	}

	skuRows, err := h.paginator.HydratePage(ctx, rankOrder, f.Colour)
	if err != nil {
		return writeError(c, apperr.Upstream(err))
	}

	items := paginator.FoldRows(skuRows)
	items = reorderItems(items, rankOrder)

	total, priceRange, err := h.paginator.FetchTotalAndPriceRange(ctx, f, parsed.Colours, parsed.Fabrics, parsed.Necklines, parsed.Sleeves, nil)
	if err != nil {
		return writeError(c, apperr.Upstream(err))
	}

	requireColours := len(f.Colour) > 0
	safety := paginator.ApplySafetyFilter(items, f.PriceMin, f.PriceMax, requireColours, total)
	items = safety.Items
	total = safety.CompensatedTotal

	basePrices, overrides := basePricesAndOverrides(skuRows)
	breakOverrides, err := h.paginator.FetchPriceOverrides(ctx, rankOrder)
	if err != nil {
		return writeError(c, apperr.Upstream(err))
	}
	h.paginator.ApplyMarkup(items, basePrices, overrides, breakOverrides)

	resp = model.ListingResponse{Items: items, Total: total, PriceRange: priceRange}
	_ = h.cache.Set(ctx, key, resp, h.cfg.ListingCacheTTL)

	return c.JSON(resp)
}

// parseQuery runs the query parser on f.Query when non-empty; an empty
// query or a nil parser (e.g. in tests that wire Handlers without one)
// yields a zero-value ParsedQuery.
func (h *Handlers) parseQuery(query string) model.ParsedQuery {
	if strings.TrimSpace(query) == "" || h.parser == nil {
		return model.ParsedQuery{}
	}
	return h.parser.Parse(query)
}

// rankedStyleCodes resolves the page's ranked style codes. When the ES
// accelerator is configured and the request carries free text, it's
// tried first; any failure falls back to the Postgres tsvector plan,
// mirroring the teacher's searchProductsES -> getProductsDB fallback
// shape (internal/handlers/products.go). ES is never the only path.
func (h *Handlers) rankedStyleCodes(ctx context.Context, c *fiber.Ctx, f model.Filters, parsed model.ParsedQuery) ([]string, error) {
	if h.es != nil && strings.TrimSpace(f.Query) != "" {
		q := esaccel.Query{Text: f.Query, Sort: f.Sort, Page: f.Page, Limit: f.Limit, PriceMin: f.PriceMin, PriceMax: f.PriceMax}
		if f.Brand != nil {
			q.Brand = *f.Brand
		}
		if f.ProductType != nil {
			q.ProductType = *f.ProductType
		}
		result, err := h.es.Search(ctx, q)
		if err == nil {
			codes := make([]string, len(result.Hits))
			for i, hit := range result.Hits {
				codes[i] = hit.StyleCode
			}
			return codes, nil
		}
		logging.FromCtx(c).Warn().Err(err).Msg("elasticsearch search failed, falling back to postgres")
	}

	styles, err := h.paginator.FetchStyles(ctx, f, parsed.Colours, parsed.Fabrics, parsed.Necklines, parsed.Sleeves, nil)
	if err != nil {
		return nil, err
	}
	codes := make([]string, len(styles))
	for i, m := range styles {
		codes[i] = m.StyleCode
	}
	return codes, nil
}

// reorderItems restores the relevance/sort order FetchStyles computed,
// since HydratePage's DISTINCT ON hydration query returns rows ordered
// by style_code/colour_name, not by rank. A style with no hydrated
// rows (e.g. dropped between the two queries) is skipped and counted
// as an invariant violation rather than surfaced to the caller.
func reorderItems(items []model.Item, order []string) []model.Item {
	byCode := make(map[string]model.Item, len(items))
	for _, it := range items {
		byCode[it.Code] = it
	}
	out := make([]model.Item, 0, len(order))
	for _, code := range order {
		if it, ok := byCode[code]; ok {
			out = append(out, it)
		} else {
			metrics.InvariantDrops.WithLabelValues("missing_hydration").Inc()
		}
	}
	return out
}

// basePricesAndOverrides collects each style's base price (single or
// carton, whichever the pricing rules prefer) and per-product markup
// override from the hydrated SKU rows, for ApplyMarkup.
func basePricesAndOverrides(rows []paginator.SKURow) (map[string]float64, map[string]*float64) {
	base := make(map[string]float64)
	overrides := make(map[string]*float64)
	for _, r := range rows {
		if _, ok := base[r.StyleCode]; !ok {
			base[r.StyleCode] = pricing.BasePrice(r.SinglePrice, r.CartonPrice)
		}
		if r.MarkupOverride != nil {
			overrides[r.StyleCode] = r.MarkupOverride
		}
	}
	return base, overrides
}
