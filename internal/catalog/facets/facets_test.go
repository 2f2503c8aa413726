package facets

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/brandeduk/catalog-search/internal/catalog/model"
)

func TestWithoutDimensionClearsOnlyNamedDimension(t *testing.T) {
	gender := "mens"
	brand := "nike"
	f := model.Filters{Gender: &gender, Brand: &brand, Sleeve: []string{"long"}}

	out := withoutDimension(f, "gender")
	if out.Gender != nil {
		t.Error("expected Gender cleared")
	}
	if out.Brand == nil || *out.Brand != "nike" {
		t.Error("expected Brand untouched")
	}
	if len(out.Sleeve) != 1 {
		t.Error("expected Sleeve untouched")
	}
}

// fakeRows and fakeQuerier let Aggregate run without a live database.
type fakeQuerier struct {
	values []model.FacetValue
}

func (f *fakeQuerier) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return &fakeRows{values: f.values, idx: -1}, nil
}

type fakeRows struct {
	values []model.FacetValue
	idx    int
}

func (r *fakeRows) Next() bool                        { r.idx++; return r.idx < len(r.values) }
func (r *fakeRows) Scan(dest ...any) error {
	v := r.values[r.idx]
	*dest[0].(*string) = v.Slug
	*dest[1].(*string) = v.Name
	*dest[2].(*int) = v.Count
	return nil
}
func (r *fakeRows) Close()                                   {}
func (r *fakeRows) Err() error                               { return nil }
func (r *fakeRows) CommandTag() pgconn.CommandTag            { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) Values() ([]any, error)                   { return nil, nil }
func (r *fakeRows) RawValues() [][]byte                      { return nil }
func (r *fakeRows) Conn() *pgx.Conn                          { return nil }

func TestAggregateReturnsEveryDimension(t *testing.T) {
	q := &fakeQuerier{values: []model.FacetValue{{Slug: "mens", Name: "Mens", Count: 5}}}
	a := New(q, 4, true)

	resp, err := a.Aggregate(context.Background(), model.Filters{})
	if err != nil {
		t.Fatalf("Aggregate error: %v", err)
	}
	for _, dim := range model.Dimensions {
		if resp[dim] == nil {
			t.Errorf("dimension %s missing from response", dim)
		}
	}
	if len(resp["gender"]) != 1 || resp["gender"][0].Slug != "mens" {
		t.Errorf("gender facet = %+v", resp["gender"])
	}
}
