// Package pricing implements the markup-tier resolution and
// quantity-break schedule arithmetic of spec §4.F step 8. This is
// closed-form arithmetic with no I/O; the teacher repo has no
// equivalent pricing module to ground it on, so it is built directly
// on the standard library (math, sort) per the justification in
// DESIGN.md.
package pricing

import (
	"math"
	"sort"

	"github.com/brandeduk/catalog-search/internal/catalog/model"
)

// Tier is one entry of the global quantity-break schedule, covering
// the inclusive quantity range MinQty..MaxQty. MaxQty == nil means
// unbounded (the final tier).
type Tier struct {
	MinQty     int
	MaxQty     *int
	Discount   float64 // fraction off base price, e.g. 0.10 = 10% off
	Percentage float64 // the discount as a percentage, surfaced to callers
}

// Override replaces a tier's discount for one product, keyed by the
// same (min_qty, max_qty) pair as the global schedule.
type Override struct {
	MinQty   int
	MaxQty   *int
	Discount float64
}

// Round2 rounds to 2 decimal places using standard half-up rounding,
// matching currency display conventions.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ResolveMarkupTier picks the markup tier for a product: an explicit
// per-product override takes precedence; otherwise it's derived from
// sellPrice/basePrice - 1, per spec §4.F step 8.
func ResolveMarkupTier(sellPrice, basePrice float64, overrideTier *float64) (float64, model.MarkupSource) {
	if overrideTier != nil {
		return *overrideTier, model.MarkupSourceOverride
	}
	if basePrice <= 0 {
		return 0, model.MarkupSourceGlobal
	}
	return (sellPrice - basePrice) / basePrice, model.MarkupSourceGlobal
}

// BasePrice picks cartonPrice when present, else singlePrice, per
// spec §4.F step 8 ("basePrice = cartonPrice ?? singlePrice").
func BasePrice(singlePrice float64, cartonPrice *float64) float64 {
	if cartonPrice != nil {
		return *cartonPrice
	}
	return singlePrice
}

// BuildBreaks overlays per-product overrides onto the global schedule
// and renders the resulting []model.PriceBreak, each priced at
// round2(base * (1 - discount)).
func BuildBreaks(schedule []Tier, overrides []Override, base float64) []model.PriceBreak {
	merged := make([]Tier, len(schedule))
	copy(merged, schedule)

	for _, o := range overrides {
		for i, t := range merged {
			if t.MinQty == o.MinQty && equalMax(t.MaxQty, o.MaxQty) {
				merged[i].Discount = o.Discount
				merged[i].Percentage = o.Discount * 100
			}
		}
	}

	sort.Slice(merged, func(i, j int) bool { return merged[i].MinQty < merged[j].MinQty })

	breaks := make([]model.PriceBreak, 0, len(merged))
	for _, t := range merged {
		breaks = append(breaks, model.PriceBreak{
			Min:        t.MinQty,
			Max:        t.MaxQty,
			Price:      Round2(base * (1 - t.Discount)),
			Percentage: t.Percentage,
		})
	}
	return breaks
}

func equalMax(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// DefaultSchedule is the global quantity-break schedule used when no
// tenant-specific schedule is configured: flat discount bands widening
// with volume, a reasonable default shape for merchandise pricing.
func DefaultSchedule() []Tier {
	tier := func(min int, max *int, discount float64) Tier {
		return Tier{MinQty: min, MaxQty: max, Discount: discount, Percentage: discount * 100}
	}
	ptr := func(n int) *int { return &n }
	return []Tier{
		tier(1, ptr(11), 0),
		tier(12, ptr(23), 0.05),
		tier(24, ptr(49), 0.10),
		tier(50, ptr(99), 0.15),
		tier(100, ptr(249), 0.20),
		tier(250, nil, 0.25),
	}
}
