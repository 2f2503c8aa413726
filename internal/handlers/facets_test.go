package handlers

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/brandeduk/catalog-search/internal/catalog/facets"
	"github.com/brandeduk/catalog-search/internal/catalog/model"
)

type fakeFacetQuerier struct {
	values []model.FacetValue
}

func (f *fakeFacetQuerier) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return &fakeFacetRows{values: f.values, idx: -1}, nil
}

type fakeFacetRows struct {
	values []model.FacetValue
	idx    int
}

func (r *fakeFacetRows) Next() bool { r.idx++; return r.idx < len(r.values) }
func (r *fakeFacetRows) Scan(dest ...any) error {
	v := r.values[r.idx]
	*dest[0].(*string) = v.Slug
	*dest[1].(*string) = v.Name
	*dest[2].(*int) = v.Count
	return nil
}
func (r *fakeFacetRows) Close()                                       {}
func (r *fakeFacetRows) Err() error                                   { return nil }
func (r *fakeFacetRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeFacetRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeFacetRows) Values() ([]any, error)                       { return nil, nil }
func (r *fakeFacetRows) RawValues() [][]byte                          { return nil }
func (r *fakeFacetRows) Conn() *pgx.Conn                              { return nil }

func TestFacetsReturnsEveryDimension(t *testing.T) {
	q := &fakeFacetQuerier{values: []model.FacetValue{{Slug: "mens", Name: "Mens", Count: 3}}}
	agg := facets.New(q, 4, true)
	h := New(testConfig(), newFakeCacheAdapter(), nil, agg, nil, nil, nil, nil)

	app := fiber.New()
	h.RegisterRoutes(app)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/products/facets", nil))
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	var facetResp model.FacetResponse
	require.NoError(t, decodeJSON(resp, &facetResp))
	for _, dim := range model.Dimensions {
		require.NotNil(t, facetResp[dim], "dimension %s missing", dim)
	}
	require.Len(t, facetResp["gender"], 1)
}

func TestFacetsRejectsInvalidFilters(t *testing.T) {
	agg := facets.New(&fakeFacetQuerier{}, 4, true)
	h := New(testConfig(), newFakeCacheAdapter(), nil, agg, nil, nil, nil, nil)

	app := fiber.New()
	h.RegisterRoutes(app)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/products/facets?sort=bogus", nil))
	require.NoError(t, err)
	require.Equal(t, 400, resp.StatusCode)
}
