package handlers

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/brandeduk/catalog-search/internal/catalog/model"
)

func newParseFiltersApp(defaultLimit, maxLimit int) *fiber.App {
	app := fiber.New()
	app.Get("/products", func(c *fiber.Ctx) error {
		f, err := parseFilters(c, defaultLimit, maxLimit)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(f)
	})
	return app
}

func TestParseFiltersAppliesDefaults(t *testing.T) {
	app := newParseFiltersApp(24, 200)

	req := httptest.NewRequest("GET", "/products", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	var f model.Filters
	require.NoError(t, decodeJSON(resp, &f))
	require.Equal(t, "newest", f.Sort)
	require.Equal(t, "ASC", f.Order)
	require.Equal(t, 1, f.Page)
	require.Equal(t, 24, f.Limit)
}

func TestParseFiltersRejectsUnknownSort(t *testing.T) {
	app := newParseFiltersApp(24, 200)

	req := httptest.NewRequest("GET", "/products?sort=bogus", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, 400, resp.StatusCode)
}

func TestParseFiltersRejectsOutOfRangeLimit(t *testing.T) {
	app := newParseFiltersApp(24, 200)

	req := httptest.NewRequest("GET", "/products?limit=0", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, 400, resp.StatusCode)
}

func TestParseFiltersSplitsArrayDimensionsOnComma(t *testing.T) {
	app := newParseFiltersApp(24, 200)

	req := httptest.NewRequest("GET", "/products?colour=black,navy,%20red", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	var f model.Filters
	require.NoError(t, decodeJSON(resp, &f))
	require.Equal(t, []string{"black", "navy", "red"}, f.Colour)
}

func TestParseFiltersRejectsInvalidPrice(t *testing.T) {
	app := newParseFiltersApp(24, 200)

	req := httptest.NewRequest("GET", "/products?priceMin=abc", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, 400, resp.StatusCode)
}

func TestApplyParsedQueryPrefersExplicitFilterOverParsed(t *testing.T) {
	explicitBrand := "adidas"
	parsedBrand := "nike"
	f := model.Filters{Brand: &explicitBrand}
	parsed := model.ParsedQuery{Brand: &parsedBrand, FreeText: []string{"tee"}}

	out := applyParsedQuery(f, parsed)
	require.Equal(t, "adidas", *out.Brand)
	require.Equal(t, "tee", out.Query)
}

func TestApplyParsedQueryStyleCodeIsAdditiveNotExclusive(t *testing.T) {
	code := "TJ30"
	parsedBrand := "nike"
	f := model.Filters{Query: "nike TJ30"}
	parsed := model.ParsedQuery{StyleCode: &code, Brand: &parsedBrand, Colours: []string{"black"}}

	out := applyParsedQuery(f, parsed)
	require.Equal(t, "TJ30", out.Query)
	require.NotNil(t, out.Brand)
	require.Equal(t, "nike", *out.Brand)
	require.Equal(t, []string{"black"}, out.Colour)
}

func TestApplyParsedQueryMergesArrayDimensionsWithoutDuplicates(t *testing.T) {
	f := model.Filters{Colour: []string{"black"}}
	parsed := model.ParsedQuery{Colours: []string{"black", "navy"}}

	out := applyParsedQuery(f, parsed)
	require.Equal(t, []string{"black", "navy"}, out.Colour)
}

func TestFiltersForCacheOmitsEmptyDimensions(t *testing.T) {
	brand := "nike"
	f := model.Filters{Brand: &brand, Sort: "newest", Order: "ASC"}

	raw := filtersForCache(f)
	require.Equal(t, []string{"nike"}, raw["brand"])
	_, hasColour := raw["colour"]
	require.False(t, hasColour)
}
