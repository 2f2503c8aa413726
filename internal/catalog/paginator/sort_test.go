package paginator

import "testing"

func TestOrderByDefaultPrependsRelevanceWhenQueryPresent(t *testing.T) {
	got := OrderBy("newest", "", true)
	want := "relevance_score DESC, custom_display_order ASC, product_type_priority ASC, created_at DESC"
	if got != want {
		t.Errorf("OrderBy = %q, want %q", got, want)
	}
}

func TestOrderByDefaultOmitsRelevanceWithoutQuery(t *testing.T) {
	got := OrderBy("newest", "", false)
	want := "custom_display_order ASC, product_type_priority ASC, created_at DESC"
	if got != want {
		t.Errorf("OrderBy = %q, want %q", got, want)
	}
}

func TestOrderByPriceUsesRequestedDirection(t *testing.T) {
	got := OrderBy("price", "desc", false)
	want := "sell_price DESC, product_type_priority ASC"
	if got != want {
		t.Errorf("OrderBy = %q, want %q", got, want)
	}
}

func TestOrderByBestPrioritizesBestThenRecommended(t *testing.T) {
	got := OrderBy("best", "", false)
	if got[:17] != "is_best DESC, is_" {
		t.Errorf("OrderBy(best) = %q", got)
	}
}

func TestFetchLimitAppliesMultiplierAndCap(t *testing.T) {
	if got := FetchLimit(24, true, 3, 200); got != 72 {
		t.Errorf("FetchLimit = %d, want 72", got)
	}
	if got := FetchLimit(100, true, 3, 200); got != 200 {
		t.Errorf("FetchLimit = %d, want capped at 200", got)
	}
	if got := FetchLimit(24, false, 3, 200); got != 24 {
		t.Errorf("FetchLimit = %d, want plain limit 24", got)
	}
}

func TestOffset(t *testing.T) {
	if got := Offset(1, 24); got != 0 {
		t.Errorf("Offset(1,24) = %d, want 0", got)
	}
	if got := Offset(3, 24); got != 48 {
		t.Errorf("Offset(3,24) = %d, want 48", got)
	}
	if got := Offset(0, 24); got != 0 {
		t.Errorf("Offset(0,24) = %d, want 0 (clamped to page 1)", got)
	}
}
