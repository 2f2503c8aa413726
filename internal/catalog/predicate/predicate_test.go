package predicate

import "testing"

func TestBuilderRendersScalarAndOverlap(t *testing.T) {
	b := New(1)
	b.Add(Eq("p.brand", "nike"))
	b.Add(Overlap("p.sleeve_types", []string{"long-sleeve"}))

	want := "p.brand = $1 AND p.sleeve_types && $2"
	if got := b.Where(); got != want {
		t.Errorf("Where() = %q, want %q", got, want)
	}
	if len(b.Args()) != 2 {
		t.Fatalf("Args() len = %d, want 2", len(b.Args()))
	}
}

func TestBuilderSkipsAddIfFalse(t *testing.T) {
	b := New(1)
	b.AddIf(false, Eq("p.brand", "nike"))
	b.AddIf(true, Eq("p.gender", "mens"))

	want := "p.gender = $1"
	if got := b.Where(); got != want {
		t.Errorf("Where() = %q, want %q", got, want)
	}
}

func TestBuilderRendersTwoSidedRange(t *testing.T) {
	b := New(1)
	b.Add(RangeBetween("p.sell_price", 10.0, 50.0))

	want := "p.sell_price >= $1 AND p.sell_price <= $2"
	if got := b.Where(); got != want {
		t.Errorf("Where() = %q, want %q", got, want)
	}
}

func TestBuilderRendersOneSidedRange(t *testing.T) {
	b := New(1)
	b.Add(RangeBetween("p.sell_price", nil, 50.0))

	want := "p.sell_price <= $1"
	if got := b.Where(); got != want {
		t.Errorf("Where() = %q, want %q", got, want)
	}
}

func TestBuilderParamNumberingContinuesAcrossSections(t *testing.T) {
	b := New(1)
	b.Add(Eq("p.brand", "nike"))
	b.Add(HavingRange("COUNT(*)", 1, nil))

	if got := b.Where(); got != "p.brand = $1" {
		t.Errorf("Where() = %q", got)
	}
	if got := b.HavingClause(); got != "COUNT(*) >= $2" {
		t.Errorf("HavingClause() = %q", got)
	}
	if n := b.NextParam(); n != 3 {
		t.Errorf("NextParam() = %d, want 3", n)
	}
}

func TestBuilderRendersRawPredicate(t *testing.T) {
	b := New(1)
	b.Add(Eq("p.brand", "nike"))
	b.Add(RawPredicate("p.code IN (SELECT code FROM featured WHERE campaign_id = %d)", 42))

	want := "p.brand = $1 AND p.code IN (SELECT code FROM featured WHERE campaign_id = $2)"
	if got := b.Where(); got != want {
		t.Errorf("Where() = %q, want %q", got, want)
	}
}

func TestBuilderAddArgContinuesNumbering(t *testing.T) {
	b := New(1)
	b.Add(Eq("p.brand", "nike"))
	limitParam := b.AddArg(24)
	offsetParam := b.AddArg(0)

	if limitParam != 2 || offsetParam != 3 {
		t.Errorf("limitParam=%d offsetParam=%d, want 2,3", limitParam, offsetParam)
	}
	if len(b.Args()) != 3 {
		t.Fatalf("Args() len = %d, want 3", len(b.Args()))
	}
}
