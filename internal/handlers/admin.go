package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/brandeduk/catalog-search/internal/cache"
)

// InvalidateCache serves the admin cache-invalidate trigger (spec §6):
// evicts every cached listing/aggregation/count/price-range/detail
// entry, then forces an out-of-band refresh of the lookup dictionary
// and synonym snapshots so the next request sees fresh dimension data
// without waiting for their background refresh interval.
func (h *Handlers) InvalidateCache(c *fiber.Ctx) error {
	ctx := c.Context()

	kinds := []cache.Kind{
		cache.KindListing, cache.KindAggregations, cache.KindCount,
		cache.KindPriceRange, cache.KindDetail,
	}
	for _, kind := range kinds {
		_ = h.cache.InvalidateByPrefix(ctx, h.prefixFor(kind))
	}

	var lookupErr, synonymErr error
	if h.lookup != nil {
		lookupErr = h.lookup.Refresh(ctx)
	}
	if h.synonym != nil {
		synonymErr = h.synonym.Refresh(ctx)
	}

	return c.JSON(fiber.Map{
		"invalidated":  kinds,
		"lookupError":  errString(lookupErr),
		"synonymError": errString(synonymErr),
	})
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
