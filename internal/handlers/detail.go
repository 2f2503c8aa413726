package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/brandeduk/catalog-search/internal/apperr"
	"github.com/brandeduk/catalog-search/internal/cache"
	"github.com/brandeduk/catalog-search/internal/catalog/model"
	"github.com/brandeduk/catalog-search/internal/metrics"
)

// Detail serves the product detail endpoint (spec §6), grounded on the
// teacher's GetProductBySlug (internal/handlers/handlers.go): a single
// path param, 404 when the style code doesn't resolve to any row.
func (h *Handlers) Detail(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), h.cfg.DetailDeadline)
	defer cancel()

	code := c.Params("code")
	if code == "" {
		return writeError(c, apperr.Invalid("code is required"))
	}

	key := h.cacheKey(cache.KindDetail, model.Filters{}, 0, 0, "code:"+code)

	var resp model.Detail
	if err := h.cache.Get(ctx, key, &resp); err == nil {
		metrics.CacheHits.WithLabelValues(string(cache.KindDetail)).Inc()
		return c.JSON(resp)
	}
	metrics.CacheMisses.WithLabelValues(string(cache.KindDetail)).Inc()

	rows, err := h.paginator.FetchDetail(ctx, code)
	if err != nil {
		return writeError(c, apperr.Upstream(err))
	}

	breakOverrides, err := h.paginator.FetchPriceOverrides(ctx, []string{code})
	if err != nil {
		return writeError(c, apperr.Upstream(err))
	}

	detail := h.paginator.FoldDetail(rows, breakOverrides[code])
	if detail == nil {
		return writeError(c, apperr.NotFound("product not found"))
	}

	_ = h.cache.Set(ctx, key, *detail, h.cfg.DetailCacheTTL)

	return c.JSON(detail)
}
