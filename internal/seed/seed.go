package seed

import (
	"context"
	"fmt"

	"vietfood/internal/catalog"
	"vietfood/internal/domain"
)

var (
	noodles = &domain.Category{Slug: "noodles", NameJa: "麺類", NameVi: "Mì & Phở"}
	sauces  = &domain.Category{Slug: "sauces", NameJa: "調味料", NameVi: "Gia vị"}
	snacks  = &domain.Category{Slug: "snacks", NameJa: "お菓子", NameVi: "Đồ ăn vặt"}
	drinks  = &domain.Category{Slug: "drinks", NameJa: "飲み物", NameVi: "Đồ uống"}
)

// Products is the demo grocery catalog.
func Products() []domain.Product {
	return []domain.Product{
		{
			SKU:           "VN-PHO-001",
			Slug:          "pho-bo-instant",
			NameJa:        "インスタントフォー（牛肉）",
			NameVi:        "Phở bò ăn liền",
			DescriptionJa: "本場の味のインスタントフォー",
			DescriptionVi: "Phở bò ăn liền hương vị truyền thống",
			Price:         450,
			StockQuantity: 120,
			IsActive:      true,
			Category:      noodles,
			ImageURLs:     []string{"/images/products/pho-bo.jpg"},
		},
		{
			SKU:           "VN-BUN-001",
			Slug:          "bun-kho",
			NameJa:        "ブン（乾麺）",
			NameVi:        "Bún khô",
			Price:         380,
			StockQuantity: 80,
			IsActive:      true,
			Category:      noodles,
		},
		{
			SKU:           "VN-NM-001",
			Slug:          "nuoc-mam-phu-quoc",
			NameJa:        "ヌックマム（フーコック産）",
			NameVi:        "Nước mắm Phú Quốc",
			DescriptionJa: "フーコック島の伝統的な魚醤",
			DescriptionVi: "Nước mắm truyền thống đảo Phú Quốc",
			Price:         800,
			StockQuantity: 60,
			IsActive:      true,
			Category:      sauces,
			ImageURLs:     []string{"/images/products/nuoc-mam.jpg"},
			Variants: []domain.Variant{
				{Name: "容量", Value: "500ml", StockQuantity: 40, IsActive: true},
				{Name: "容量", Value: "1L", PriceModifier: 600, StockQuantity: 20, IsActive: true},
			},
		},
		{
			SKU:           "VN-TUONG-001",
			Slug:          "tuong-ot",
			NameJa:        "チリソース",
			NameVi:        "Tương ớt",
			Price:         350,
			StockQuantity: 50,
			IsActive:      true,
			Category:      sauces,
			Variants: []domain.Variant{
				{Name: "辛さ", Value: "中辛", StockQuantity: 30, IsActive: true},
				{Name: "辛さ", Value: "激辛", PriceModifier: 50, StockQuantity: 20, IsActive: true},
			},
		},
		{
			SKU:           "VN-BANH-001",
			Slug:          "banh-da-lon",
			NameJa:        "バインダーロン",
			NameVi:        "Bánh da lợn",
			Price:         600,
			StockQuantity: 15,
			IsActive:      true,
			Category:      snacks,
		},
		{
			SKU:           "VN-CAFE-001",
			Slug:          "ca-phe-g7",
			NameJa:        "ベトナムコーヒー G7",
			NameVi:        "Cà phê G7",
			Price:         1200,
			StockQuantity: 40,
			IsActive:      true,
			Category:      drinks,
			Variants: []domain.Variant{
				{Name: "タイプ", Value: "3in1", StockQuantity: 25, IsActive: true},
				{Name: "タイプ", Value: "ブラック", PriceModifier: -100, StockQuantity: 15, IsActive: true},
			},
		},
	}
}

// Apply writes the demo catalog. It is idempotent because writers upsert by SKU.
func Apply(ctx context.Context, w catalog.Writer) (int, error) {
	products := Products()
	for _, p := range products {
		if _, err := w.Upsert(ctx, p); err != nil {
			return 0, fmt.Errorf("upsert product %s: %w", p.SKU, err)
		}
	}
	return len(products), nil
}
