// Package model holds the shared domain types for the catalog search
// core: filters, parsed query intent, listing/facet/detail response
// shapes, matching spec §3 (data model) and §6 (external interfaces).
package model

// Filters is the full filter surface accepted by both the listing and
// facet endpoints (spec §4.E, §6).
type Filters struct {
	Query string

	Brand         *string
	ProductType   *string
	Gender        *string
	AgeGroup      *string
	Tag           *string
	PrimaryColour *string
	ColourShade   *string

	Sleeve         []string
	Neckline       []string
	Fabric         []string
	Size           []string
	Style          []string
	Colour         []string
	Weight         []string
	Fit            []string
	Feature        []string
	Effect         []string
	Accreditations []string
	Sector         []string
	Sport          []string
	Flag           []string
	CategoryIDs    []int

	PriceMin *float64
	PriceMax *float64

	IsBestSeller  *bool
	IsRecommended *bool

	Sort  string
	Order string
	Page  int
	Limit int
}

// ParsedQuery is the structured intent produced by the query parser
// (component C), before being merged into Filters for predicate
// building.
type ParsedQuery struct {
	Brand       *string
	ProductType *string
	Sports      []string
	Fits        []string
	Sleeves     []string
	Necklines   []string
	Fabrics     []string
	Sectors     []string
	Colours     []string
	Features    []string
	StyleCode   *string
	FreeText    []string
}

// MarkupSource distinguishes whether a product's markup came from a
// per-product override or the global schedule (spec §9, Open Question 3).
type MarkupSource string

const (
	MarkupSourceOverride MarkupSource = "override"
	MarkupSourceGlobal   MarkupSource = "global"
)

// PriceBreak is a single quantity-break tier (spec §3, §4.F.8).
type PriceBreak struct {
	Min        int     `json:"min"`
	Max        *int    `json:"max"` // nil means unbounded (the final tier)
	Price      float64 `json:"price"`
	Percentage float64 `json:"percentage"`
}

// ColorVariant is one colour's presentation within a listing item.
type ColorVariant struct {
	Name  string `json:"name"`
	Main  string `json:"main"`
	Thumb string `json:"thumb"`
}

// Item is a single row of the listing response (spec §6).
type Item struct {
	Code          string         `json:"code"`
	Name          string         `json:"name"`
	Brand         string         `json:"brand"`
	Price         float64        `json:"price"`
	CartonPrice   *float64       `json:"carton_price,omitempty"`
	Image         string         `json:"image"`
	Colors        []ColorVariant `json:"colors"`
	Sizes         []string       `json:"sizes"`
	Customization []string       `json:"customization"`
	PriceBreaks   []PriceBreak   `json:"priceBreaks"`
	MarkupTier    float64        `json:"markup_tier"`
	MarkupSource  MarkupSource   `json:"markup_source"`
	DisplayOrder  *int           `json:"display_order,omitempty"`

	RelevanceScore float64 `json:"-"`
}

// PriceRange is the min/max sell price across the current filtered set.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// ListingResponse is the full response shape for the listing endpoint.
type ListingResponse struct {
	Items      []Item     `json:"items"`
	Total      int        `json:"total"`
	PriceRange PriceRange `json:"priceRange"`
}

// FacetValue is one value within a facet dimension's array (spec §4.G).
type FacetValue struct {
	Slug  string `json:"slug"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// FacetResponse maps filter_type to its sorted facet array. Every
// dimension named in spec §4.G is always present, even when empty.
type FacetResponse map[string][]FacetValue

// ImageRef is one image entry in the detail response.
type ImageRef struct {
	URL  string `json:"url"`
	Type string `json:"type"` // "main" | "thumb"
}

// Details holds the free-text detail fields of the detail endpoint.
type Details struct {
	Fit    string `json:"fit"`
	Fabric string `json:"fabric"`
	Weight string `json:"weight"`
	Care   string `json:"care"`
}

// Detail is the full response shape for the detail endpoint (spec §6).
type Detail struct {
	Code          string       `json:"code"`
	Name          string       `json:"name"`
	Brand         string       `json:"brand"`
	ProductType   string       `json:"productType"`
	Price         float64      `json:"price"`
	BasePrice     float64      `json:"basePrice"`
	SellPrice     float64      `json:"sell_price"`
	CartonPrice   *float64     `json:"carton_price,omitempty"`
	MarkupTier    float64      `json:"markup_tier"`
	MarkupSource  MarkupSource `json:"markup_source"`
	PriceBreaks   []PriceBreak `json:"priceBreaks"`
	Colors        []ColorVariant `json:"colors"`
	Sizes         []string     `json:"sizes"`
	Images        []ImageRef   `json:"images"`
	Description   string       `json:"description"`
	Details       Details      `json:"details"`
	Customization []string     `json:"customization"`
}

// Dimensions lists every facet dimension name in the fixed order the
// facet aggregator runs them (spec §4.G).
var Dimensions = []string{
	"gender", "ageGroup", "tag", "primaryColour", "colourShade", "brand",
	"sleeve", "neckline", "fabric", "size", "style", "feature", "effect",
	"accreditation", "sector", "sport", "weight", "fit",
}

// ScalarDimensions are the dimensions counted by GROUP BY a scalar slug
// column rather than array unnest (spec §4.G).
var ScalarDimensions = map[string]bool{
	"gender": true, "ageGroup": true, "tag": true, "primaryColour": true,
	"colourShade": true, "brand": true,
}
