package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/brandeduk/catalog-search/internal/apperr"
	"github.com/brandeduk/catalog-search/internal/cache"
	"github.com/brandeduk/catalog-search/internal/catalog/model"
	"github.com/brandeduk/catalog-search/internal/metrics"
)

// Facets serves the facet aggregation endpoint (spec §6, §4.G): the
// same filter surface as Listing (sort/order/page/limit are parsed and
// validated the same way but don't affect counts; sort and order are
// part of the cache key), cached separately under its own longer TTL since
// facet counts change far less often than the page of items.
func (h *Handlers) Facets(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), h.cfg.FacetDeadline)
	defer cancel()

	f, err := parseFilters(c, h.cfg.DefaultPageLimit, h.cfg.MaxPageLimit)
	if err != nil {
		return writeError(c, err)
	}

	parsed := h.parseQuery(f.Query)
	f = applyParsedQuery(f, parsed)

	key := h.cacheKey(cache.KindAggregations, f, 0, 0)

	var resp model.FacetResponse
	if err := h.cache.Get(ctx, key, &resp); err == nil {
		metrics.CacheHits.WithLabelValues(string(cache.KindAggregations)).Inc()
		return c.JSON(resp)
	}
	metrics.CacheMisses.WithLabelValues(string(cache.KindAggregations)).Inc()

	resp, err = h.aggregator.Aggregate(ctx, f)
	if err != nil {
		return writeError(c, apperr.Upstream(err))
	}

	_ = h.cache.Set(ctx, key, resp, h.cfg.AggregationCacheTTL)

	return c.JSON(resp)
}
