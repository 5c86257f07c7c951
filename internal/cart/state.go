package cart

import "vietfood/internal/domain"

// ProductSnapshot is the product data captured when the line item was added.
// It is not re-validated against the live catalog.
type ProductSnapshot struct {
	ID            string `json:"id"`
	SKU           string `json:"sku"`
	NameJa        string `json:"nameJa"`
	NameVi        string `json:"nameVi"`
	Price         int64  `json:"price"`
	StockQuantity int    `json:"stockQuantity"`
	ImageURL      string `json:"imageUrl,omitempty"`
	CategoryJa    string `json:"categoryJa,omitempty"`
	CategoryVi    string `json:"categoryVi,omitempty"`
}

type VariantSnapshot struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Value         string `json:"value"`
	PriceModifier int64  `json:"priceModifier"`
	StockQuantity int    `json:"stockQuantity"`
}

// LineItem is one (product, variant) pairing in the cart. An empty VariantID
// means the product itself was added.
type LineItem struct {
	ID        string           `json:"id"`
	ProductID string           `json:"productId"`
	VariantID string           `json:"productVariantId,omitempty"`
	Quantity  int              `json:"quantity"`
	Product   ProductSnapshot  `json:"product"`
	Variant   *VariantSnapshot `json:"productVariant,omitempty"`
}

// UnitPrice is the product price plus the variant modifier, if any.
func (li LineItem) UnitPrice() int64 {
	price := li.Product.Price
	if li.Variant != nil {
		price += li.Variant.PriceModifier
	}
	return price
}

// Total is UnitPrice times Quantity.
func (li LineItem) Total() int64 {
	return li.UnitPrice() * int64(li.Quantity)
}

// StockSnapshot is the last known purchasable quantity for the line.
func (li LineItem) StockSnapshot() int {
	if li.Variant != nil {
		return li.Variant.StockQuantity
	}
	return li.Product.StockQuantity
}

func (li LineItem) matches(productID, variantID string) bool {
	return li.ProductID == productID && li.VariantID == variantID
}

// State is the cart as seen by consumers. TotalItems and TotalAmount are
// always derived from Items; IsLoading and Error are never persisted.
type State struct {
	Items       []LineItem `json:"items"`
	TotalItems  int        `json:"totalItems"`
	TotalAmount int64      `json:"totalAmount"`
	IsLoading   bool       `json:"isLoading"`
	Error       string     `json:"error,omitempty"`
}

func (s State) clone() State {
	s.Items = cloneItems(s.Items)
	return s
}

func cloneItems(items []LineItem) []LineItem {
	out := make([]LineItem, len(items))
	for i, item := range items {
		if item.Variant != nil {
			v := *item.Variant
			item.Variant = &v
		}
		out[i] = item
	}
	return out
}

func withItems(s State, items []LineItem) State {
	s.Items = items
	s.TotalItems, s.TotalAmount = totals(items)
	return s
}

func totals(items []LineItem) (int, int64) {
	var count int
	var amount int64
	for _, item := range items {
		count += item.Quantity
		amount += item.Total()
	}
	return count, amount
}

func findItem(items []LineItem, productID, variantID string) (LineItem, bool) {
	for _, item := range items {
		if item.matches(productID, variantID) {
			return item, true
		}
	}
	return LineItem{}, false
}

func snapshotProduct(p *domain.Product) ProductSnapshot {
	snap := ProductSnapshot{
		ID:            p.ID,
		SKU:           p.SKU,
		NameJa:        p.NameJa,
		NameVi:        p.NameVi,
		Price:         p.Price,
		StockQuantity: p.StockQuantity,
		ImageURL:      p.PrimaryImage(),
	}
	if p.Category != nil {
		snap.CategoryJa = p.Category.NameJa
		snap.CategoryVi = p.Category.NameVi
	}
	return snap
}

func snapshotVariant(v *domain.Variant) *VariantSnapshot {
	if v == nil {
		return nil
	}
	return &VariantSnapshot{
		ID:            v.ID,
		Name:          v.Name,
		Value:         v.Value,
		PriceModifier: v.PriceModifier,
		StockQuantity: v.StockQuantity,
	}
}
