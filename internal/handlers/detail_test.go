package handlers

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/brandeduk/catalog-search/internal/cache"
	"github.com/brandeduk/catalog-search/internal/catalog/model"
	"github.com/brandeduk/catalog-search/internal/catalog/paginator"
	"github.com/brandeduk/catalog-search/internal/catalog/pricing"
	"github.com/brandeduk/catalog-search/internal/config"
)

// detailRowFixture is one row this fake querier returns for FetchDetail,
// in the column order paginator.FetchDetail scans.
type detailRowFixture struct {
	styleCode, styleName, brandName, colourName, colourMain, colourThumb, size string
	singlePrice, sellPrice                                                     float64
	productType, description, fit, fabric, weight, care                       string
}

type fakeDetailQuerier struct {
	rows []detailRowFixture
}

func (f *fakeDetailQuerier) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if strings.Contains(sql, "product_price_overrides") {
		return &fakeDetailRows{idx: -1}, nil
	}
	return &fakeDetailRows{rows: f.rows, idx: -1}, nil
}

func (f *fakeDetailQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}

type fakeDetailRows struct {
	rows []detailRowFixture
	idx  int
}

func (r *fakeDetailRows) Next() bool { r.idx++; return r.idx < len(r.rows) }
func (r *fakeDetailRows) Scan(dest ...any) error {
	row := r.rows[r.idx]
	*dest[0].(*string) = row.styleCode
	*dest[1].(*string) = row.styleName
	*dest[2].(*string) = row.brandName
	*dest[3].(*string) = row.colourName
	*dest[4].(*string) = row.colourMain
	*dest[5].(*string) = row.colourThumb
	*dest[6].(*string) = row.size
	*dest[7].(*float64) = row.singlePrice
	*dest[8].(**float64) = nil
	*dest[9].(*float64) = row.sellPrice
	*dest[10].(**float64) = nil
	*dest[11].(*[]string) = nil
	*dest[12].(**int) = nil
	*dest[13].(*string) = row.productType
	*dest[14].(*string) = row.description
	*dest[15].(*string) = row.fit
	*dest[16].(*string) = row.fabric
	*dest[17].(*string) = row.weight
	*dest[18].(*string) = row.care
	return nil
}
func (r *fakeDetailRows) Close()                                       {}
func (r *fakeDetailRows) Err() error                                   { return nil }
func (r *fakeDetailRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeDetailRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeDetailRows) Values() ([]any, error)                       { return nil, nil }
func (r *fakeDetailRows) RawValues() [][]byte                          { return nil }
func (r *fakeDetailRows) Conn() *pgx.Conn                              { return nil }

// fakeCache is an always-miss, no-op Cache implementation so handler
// tests never need a live Redis instance.
type fakeCache struct{}

func newFakeCacheAdapter() *fakeCache { return &fakeCache{} }

func (c *fakeCache) Get(ctx context.Context, key string, dest any) error {
	return cache.ErrMiss
}
func (c *fakeCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	return nil
}
func (c *fakeCache) InvalidateByPrefix(ctx context.Context, prefix string) error { return nil }

func testConfig() *config.Config {
	return &config.Config{
		CachePrefix:         "catalog",
		DefaultPageLimit:    24,
		MaxPageLimit:        200,
		ListingCacheTTL:     60_000_000_000,
		AggregationCacheTTL: 60_000_000_000,
		DetailCacheTTL:      60_000_000_000,
		ListingDeadline:     5_000_000_000,
		DetailDeadline:      5_000_000_000,
		FacetDeadline:       5_000_000_000,
	}
}

func TestDetailReturns404WhenStyleNotFound(t *testing.T) {
	q := &fakeDetailQuerier{}
	svc := paginator.New(q, testConfig(), pricing.DefaultSchedule())
	h := New(testConfig(), newFakeCacheAdapter(), svc, nil, nil, nil, nil, nil)

	app := fiber.New()
	h.RegisterRoutes(app)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/products/missing", nil))
	require.NoError(t, err)
	require.Equal(t, 404, resp.StatusCode)
}

func TestDetailReturnsFoldedResponse(t *testing.T) {
	q := &fakeDetailQuerier{rows: []detailRowFixture{
		{styleCode: "TJ30", styleName: "Classic Tee", brandName: "Nike", colourName: "Black",
			colourMain: "main.jpg", colourThumb: "thumb.jpg", size: "M", singlePrice: 10, sellPrice: 15,
			productType: "T-Shirt", description: "A classic tee.", fit: "Regular", fabric: "Cotton", weight: "Light", care: "Wash cold"},
	}}
	svc := paginator.New(q, testConfig(), pricing.DefaultSchedule())
	h := New(testConfig(), newFakeCacheAdapter(), svc, nil, nil, nil, nil, nil)

	app := fiber.New()
	h.RegisterRoutes(app)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/products/TJ30", nil))
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	var detail model.Detail
	require.NoError(t, decodeJSON(resp, &detail))
	require.Equal(t, "TJ30", detail.Code)
	require.Equal(t, "A classic tee.", detail.Description)
}

func TestHealthzReturnsOK(t *testing.T) {
	h := New(testConfig(), newFakeCacheAdapter(), nil, nil, nil, nil, nil, nil)
	app := fiber.New()
	h.RegisterRoutes(app)

	resp, err := app.Test(httptest.NewRequest("GET", "/internal/healthz", nil))
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)
}
