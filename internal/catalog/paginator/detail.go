// detail.go implements the product detail lookup (spec §6 detail
// endpoint): a single style's full SKU hydration plus style-level
// description/fit/fabric/weight/care, grounded on the teacher's
// GetProductBySlug (internal/handlers/handlers.go): one primary query,
// 404 surfaced by the caller when zero rows come back.
package paginator

import (
	"context"
	"fmt"

	"github.com/brandeduk/catalog-search/internal/catalog/model"
	"github.com/brandeduk/catalog-search/internal/catalog/pricing"
)

// DetailRow is one hydrated SKU row for the detail endpoint, extending
// SKURow with the style-level fields only the detail view needs.
type DetailRow struct {
	SKURow
	ProductType string
	Description string
	Fit         string
	Fabric      string
	Weight      string
	Care        string
}

// FetchDetail hydrates every SKU row for one style code plus its
// style-level description/details. An empty result means "not found";
// callers surface that as a 404.
func (s *Service) FetchDetail(ctx context.Context, styleCode string) ([]DetailRow, error) {
	sql := `
SELECT p.style_code, p.style_name, br.name AS brand_name,
       p.colour_name, p.colour_main_image, p.colour_thumb_image, sz.size_name,
       p.single_price, p.carton_price, p.sell_price,
       mo.markup_override, p.customization, p.display_order,
       st.product_type_name, st.description, st.fit, st.fabric, st.weight, st.care
FROM products p
JOIN styles st ON st.style_code = p.style_code
JOIN brands br ON br.id = p.brand_id
JOIN sizes sz ON sz.id = p.size_id
LEFT JOIN product_markup_overrides mo ON mo.style_code = p.style_code
WHERE p.style_code = $1
ORDER BY p.colour_name, sz.size_order
`
	rows, err := s.db.Query(ctx, sql, styleCode)
	if err != nil {
		return nil, fmt.Errorf("fetch detail: %w", err)
	}
	defer rows.Close()

	var out []DetailRow
	for rows.Next() {
		var r DetailRow
		if err := rows.Scan(&r.StyleCode, &r.StyleName, &r.BrandName, &r.ColourName, &r.ColourMain,
			&r.ColourThumb, &r.Size, &r.SinglePrice, &r.CartonPrice, &r.SellPrice,
			&r.MarkupOverride, &r.Customization, &r.DisplayOrder,
			&r.ProductType, &r.Description, &r.Fit, &r.Fabric, &r.Weight, &r.Care); err != nil {
			return nil, fmt.Errorf("scan detail row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// FoldDetail folds DetailRows for one style into the full Detail
// response shape (spec §6), applying markup the same way ApplyMarkup
// does for listing items. overrides holds the style's
// product_price_overrides rows, if any (see FetchPriceOverrides).
func (s *Service) FoldDetail(rows []DetailRow, overrides []pricing.Override) *model.Detail {
	if len(rows) == 0 {
		return nil
	}

	skuRows := make([]SKURow, len(rows))
	for i, r := range rows {
		skuRows[i] = r.SKURow
	}
	items := FoldRows(skuRows)
	if len(items) == 0 {
		return nil
	}
	item := items[0]

	first := rows[0]
	base := pricing.BasePrice(first.SinglePrice, first.CartonPrice)
	tier, source := pricing.ResolveMarkupTier(item.Price, base, first.MarkupOverride)

	images := make([]model.ImageRef, 0, len(item.Colors)*2)
	for _, col := range item.Colors {
		if col.Main != "" {
			images = append(images, model.ImageRef{URL: col.Main, Type: "main"})
		}
		if col.Thumb != "" {
			images = append(images, model.ImageRef{URL: col.Thumb, Type: "thumb"})
		}
	}

	return &model.Detail{
		Code:          item.Code,
		Name:          item.Name,
		Brand:         item.Brand,
		ProductType:   first.ProductType,
		Price:         item.Price,
		BasePrice:     base,
		SellPrice:     item.Price,
		CartonPrice:   item.CartonPrice,
		MarkupTier:    tier,
		MarkupSource:  source,
		PriceBreaks:   pricing.BuildBreaks(s.schedule, overrides, base),
		Colors:        item.Colors,
		Sizes:         item.Sizes,
		Images:        images,
		Description:   first.Description,
		Details: model.Details{
			Fit:    first.Fit,
			Fabric: first.Fabric,
			Weight: first.Weight,
			Care:   first.Care,
		},
		Customization: item.Customization,
	}
}
