package predicate

import (
	"strings"
	"testing"

	"github.com/brandeduk/catalog-search/internal/catalog/model"
)

func TestBuildFiltersAddsImplicitLiveClauseFirst(t *testing.T) {
	b := New(1)
	BuildFilters(b, model.Filters{})

	where := b.Where()
	if !strings.HasPrefix(where, "sku_status = 'Live'") {
		t.Fatalf("Where() = %q, want prefix sku_status = 'Live'", where)
	}
}

func TestBuildFiltersScalarDimension(t *testing.T) {
	b := New(1)
	gender := "Mens"
	BuildFilters(b, model.Filters{Gender: &gender})

	if !strings.Contains(b.Where(), "gender_slug = $") {
		t.Errorf("Where() = %q, want gender_slug predicate", b.Where())
	}
	args := b.Args()
	if args[len(args)-1] != "mens" {
		t.Errorf("last arg = %v, want folded 'mens'", args[len(args)-1])
	}
}

func TestBuildFiltersArrayDimension(t *testing.T) {
	b := New(1)
	BuildFilters(b, model.Filters{Sleeve: []string{"Long-Sleeve"}})

	if !strings.Contains(b.Where(), "sleeve_slugs && $") {
		t.Errorf("Where() = %q, want sleeve_slugs overlap", b.Where())
	}
}

func TestBuildFiltersGeneratesSlugForDisplayNameOnlyColumns(t *testing.T) {
	b := New(1)
	colour := "Dark Navy"
	BuildFilters(b, model.Filters{PrimaryColour: &colour})

	where := b.Where()
	if !strings.Contains(where, "LOWER(primary_colour) = $") || !strings.Contains(where, "REPLACE(primary_colour, ' ', '-')) = $") {
		t.Errorf("Where() = %q, want a generated slug match against primary_colour", where)
	}
	args := b.Args()
	found := false
	for _, a := range args {
		if a == "dark-navy" {
			found = true
		}
	}
	if !found {
		t.Errorf("args = %v, want hyphenated slug 'dark-navy'", args)
	}
}

func TestBuildBrandFilterMatchesNameOrHyphenated(t *testing.T) {
	b := New(1)
	BuildBrandFilter(b, "Under Armour")

	where := b.Where()
	if !strings.Contains(where, "LOWER(brand_name) = $1") || !strings.Contains(where, "REPLACE(brand_name, ' ', '-')) = $2") {
		t.Errorf("Where() = %q", where)
	}
	args := b.Args()
	if args[0] != "under armour" || args[1] != "under-armour" {
		t.Errorf("args = %v, want [under armour, under-armour]", args)
	}
}

func TestNormalizeProductTypeCanonicalizesTshirtShorthand(t *testing.T) {
	cases := map[string]string{
		"tshirt":  "tshirts",
		"T-Shirt": "tshirts",
		"t shirt": "tshirts",
		"Hoodie":  "hoodie",
	}
	for in, want := range cases {
		if got := normalizeProductType(in); got != want {
			t.Errorf("normalizeProductType(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBuildPriceHavingOmittedWhenNoBounds(t *testing.T) {
	b := New(1)
	BuildPriceHaving(b, nil, nil)
	if b.HavingClause() != "" {
		t.Errorf("HavingClause() = %q, want empty", b.HavingClause())
	}
}

func TestBuildPriceHavingBothBounds(t *testing.T) {
	b := New(1)
	min, max := 10.0, 50.0
	BuildPriceHaving(b, &min, &max)
	want := "MIN(sell_price) >= $1 AND MIN(sell_price) <= $2"
	if got := b.HavingClause(); got != want {
		t.Errorf("HavingClause() = %q, want %q", got, want)
	}
}
