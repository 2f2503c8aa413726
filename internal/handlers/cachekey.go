package handlers

import (
	"strconv"

	"github.com/brandeduk/catalog-search/internal/cache"
	"github.com/brandeduk/catalog-search/internal/catalog/model"
)

// filtersForCache flattens Filters into the raw map cache.Normalize
// expects: one entry per active dimension, plus sort/order so two
// requests that differ only in ordering never collide (spec §4.H).
func filtersForCache(f model.Filters) map[string][]string {
	raw := make(map[string][]string)

	addScalar := func(key string, v *string) {
		if v != nil {
			raw[key] = []string{*v}
		}
	}
	addScalar("brand", f.Brand)
	addScalar("productType", f.ProductType)
	addScalar("gender", f.Gender)
	addScalar("ageGroup", f.AgeGroup)
	addScalar("tag", f.Tag)
	addScalar("primaryColour", f.PrimaryColour)
	addScalar("colourShade", f.ColourShade)

	addArray := func(key string, v []string) {
		if len(v) > 0 {
			raw[key] = v
		}
	}
	addArray("sleeve", f.Sleeve)
	addArray("neckline", f.Neckline)
	addArray("fabric", f.Fabric)
	addArray("size", f.Size)
	addArray("style", f.Style)
	addArray("colour", f.Colour)
	addArray("weight", f.Weight)
	addArray("fit", f.Fit)
	addArray("feature", f.Feature)
	addArray("effect", f.Effect)
	addArray("accreditations", f.Accreditations)
	addArray("sector", f.Sector)
	addArray("sport", f.Sport)
	addArray("flag", f.Flag)

	if len(f.CategoryIDs) > 0 {
		ids := make([]string, len(f.CategoryIDs))
		for i, id := range f.CategoryIDs {
			ids[i] = strconv.Itoa(id)
		}
		raw["categoryIds"] = ids
	}

	if f.PriceMin != nil {
		raw["priceMin"] = []string{strconv.FormatFloat(*f.PriceMin, 'f', -1, 64)}
	}
	if f.PriceMax != nil {
		raw["priceMax"] = []string{strconv.FormatFloat(*f.PriceMax, 'f', -1, 64)}
	}
	if f.IsBestSeller != nil {
		raw["isBestSeller"] = []string{strconv.FormatBool(*f.IsBestSeller)}
	}
	if f.IsRecommended != nil {
		raw["isRecommended"] = []string{strconv.FormatBool(*f.IsRecommended)}
	}
	if f.Query != "" {
		raw["q"] = []string{f.Query}
	}
	raw["sort"] = []string{f.Sort}
	raw["order"] = []string{f.Order}

	return raw
}

// cacheKey builds the final Redis key: the service-wide cache prefix
// (config.Config.CachePrefix) followed by the stable hashed key from
// cache.Key.
func (h *Handlers) cacheKey(kind cache.Kind, f model.Filters, page, limit int, extra ...string) string {
	normalized := cache.Normalize(filtersForCache(f))
	return h.cfg.CachePrefix + ":" + cache.Key(kind, normalized, page, limit, extra...)
}

// prefixFor builds the scan prefix used by the admin cache-invalidate
// trigger for one cache kind.
func (h *Handlers) prefixFor(kind cache.Kind) string {
	return h.cfg.CachePrefix + ":" + string(kind) + ":"
}
