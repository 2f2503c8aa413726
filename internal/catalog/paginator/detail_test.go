package paginator

import (
	"testing"

	"github.com/brandeduk/catalog-search/internal/catalog/pricing"
)

func TestFoldDetailBuildsFullResponse(t *testing.T) {
	override := 0.35
	rows := []DetailRow{
		{
			SKURow: SKURow{
				StyleCode: "TJ30", StyleName: "Classic Tee", BrandName: "TruJoy",
				ColourName: "Black", ColourMain: "black-main.jpg", ColourThumb: "black-thumb.jpg",
				Size: "M", SinglePrice: 10, SellPrice: 13.5, MarkupOverride: &override,
			},
			ProductType: "t-shirt", Description: "A classic tee.",
			Fit: "Regular", Fabric: "Cotton", Weight: "180gsm", Care: "Machine wash",
		},
		{
			SKURow: SKURow{
				StyleCode: "TJ30", StyleName: "Classic Tee", BrandName: "TruJoy",
				ColourName: "Black", ColourMain: "black-main.jpg", ColourThumb: "black-thumb.jpg",
				Size: "L", SinglePrice: 10, SellPrice: 13.5, MarkupOverride: &override,
			},
			ProductType: "t-shirt", Description: "A classic tee.",
			Fit: "Regular", Fabric: "Cotton", Weight: "180gsm", Care: "Machine wash",
		},
	}

	s := &Service{schedule: nil}
	detail := s.FoldDetail(rows, nil)
	if detail == nil {
		t.Fatal("expected non-nil detail")
	}
	if detail.Code != "TJ30" || detail.Brand != "TruJoy" || detail.ProductType != "t-shirt" {
		t.Errorf("detail identity wrong: %+v", detail)
	}
	if len(detail.Sizes) != 2 {
		t.Errorf("Sizes = %v, want 2 entries", detail.Sizes)
	}
	if detail.MarkupSource != "override" || detail.MarkupTier != 0.35 {
		t.Errorf("markup = %v/%v, want override/0.35", detail.MarkupSource, detail.MarkupTier)
	}
	if len(detail.Images) != 2 {
		t.Errorf("Images = %v, want 2 entries (main+thumb)", detail.Images)
	}
	if detail.Description != "A classic tee." {
		t.Errorf("Description = %q", detail.Description)
	}
}

func TestFoldDetailReturnsNilForEmptyRows(t *testing.T) {
	s := &Service{}
	if got := s.FoldDetail(nil, nil); got != nil {
		t.Errorf("expected nil, got %+v", got)
	}
}

func TestFoldDetailAppliesPriceOverrides(t *testing.T) {
	rows := []DetailRow{
		{
			SKURow: SKURow{
				StyleCode: "TJ30", StyleName: "Classic Tee", BrandName: "TruJoy",
				ColourName: "Black", Size: "M", SinglePrice: 10, SellPrice: 10,
			},
			ProductType: "t-shirt",
		},
	}
	schedule := []pricing.Tier{
		{MinQty: 1, MaxQty: intPtr(11), Discount: 0, Percentage: 0},
		{MinQty: 12, MaxQty: nil, Discount: 0.05, Percentage: 5},
	}
	overrides := []pricing.Override{{MinQty: 12, MaxQty: nil, Discount: 0.20}}

	s := &Service{schedule: schedule}
	detail := s.FoldDetail(rows, overrides)
	if detail == nil {
		t.Fatal("expected non-nil detail")
	}
	if len(detail.PriceBreaks) != 2 {
		t.Fatalf("PriceBreaks = %+v, want 2 entries", detail.PriceBreaks)
	}
	if detail.PriceBreaks[1].Percentage != 20 {
		t.Errorf("overridden break percentage = %v, want 20 (override, not global 5)", detail.PriceBreaks[1].Percentage)
	}
}

func intPtr(n int) *int { return &n }
