package paginator

import (
	"testing"

	"github.com/brandeduk/catalog-search/internal/catalog/model"
)

func TestFoldRowsGroupsByStyleAndKeepsMinSellPrice(t *testing.T) {
	rows := []SKURow{
		{StyleCode: "AD002", StyleName: "Classic Polo", BrandName: "Gildan", ColourName: "Red", ColourMain: "red.jpg", Size: "M", SellPrice: 12.0},
		{StyleCode: "AD002", StyleName: "Classic Polo", BrandName: "Gildan", ColourName: "Red", ColourMain: "red.jpg", Size: "L", SellPrice: 11.5},
		{StyleCode: "AD002", StyleName: "Classic Polo", BrandName: "Gildan", ColourName: "Navy", ColourMain: "navy.jpg", Size: "M", SellPrice: 12.0},
	}

	items := FoldRows(rows)
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	item := items[0]
	if item.Price != 11.5 {
		t.Errorf("Price = %v, want 11.5 (min across rows)", item.Price)
	}
	if len(item.Colors) != 2 {
		t.Errorf("Colors = %v, want 2 distinct colours", item.Colors)
	}
	if len(item.Sizes) != 2 {
		t.Errorf("Sizes = %v, want 2 distinct sizes", item.Sizes)
	}
	if item.Image != "red.jpg" {
		t.Errorf("Image = %q, want first colour's main image", item.Image)
	}
}

func TestFoldRowsOrdersSizesCanonically(t *testing.T) {
	rows := []SKURow{
		{StyleCode: "X1", ColourName: "Black", Size: "XL", SellPrice: 10},
		{StyleCode: "X1", ColourName: "Black", Size: "S", SellPrice: 10},
		{StyleCode: "X1", ColourName: "Black", Size: "M", SellPrice: 10},
	}
	items := FoldRows(rows)
	want := []string{"S", "M", "XL"}
	for i, s := range want {
		if items[0].Sizes[i] != s {
			t.Errorf("Sizes = %v, want %v", items[0].Sizes, want)
		}
	}
}

func TestFoldRowsPreservesStyleOrder(t *testing.T) {
	rows := []SKURow{
		{StyleCode: "B1", ColourName: "Black", Size: "M", SellPrice: 10},
		{StyleCode: "A1", ColourName: "Black", Size: "M", SellPrice: 10},
	}
	items := FoldRows(rows)
	if items[0].Code != "B1" || items[1].Code != "A1" {
		t.Errorf("order = [%s,%s], want [B1,A1] (input order preserved)", items[0].Code, items[1].Code)
	}
}

func TestApplySafetyFilterDropsOutOfRangePriceAndCompensatesTotal(t *testing.T) {
	min, max := 5.0, 10.0
	items := []model.Item{
		{Code: "A", Price: 6.0},
		{Code: "B", Price: 20.0},
		{Code: "C", Price: 8.0},
		{Code: "D", Price: 9.0},
	}

	result := ApplySafetyFilter(items, &min, &max, false, 40)
	if len(result.Items) != 3 {
		t.Fatalf("kept items = %d, want 3", len(result.Items))
	}
	if result.CompensatedTotal != 30 {
		t.Errorf("CompensatedTotal = %d, want 30 (40 * 3/4)", result.CompensatedTotal)
	}
}

func TestApplySafetyFilterDropsEmptyColourSet(t *testing.T) {
	items := []model.Item{
		{Code: "A", Colors: []model.ColorVariant{{Name: "Red"}}},
		{Code: "B", Colors: nil},
	}
	result := ApplySafetyFilter(items, nil, nil, true, 2)
	if len(result.Items) != 1 || result.Items[0].Code != "A" {
		t.Fatalf("expected only A to survive, got %+v", result.Items)
	}
}
