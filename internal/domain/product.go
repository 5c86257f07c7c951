package domain

import "time"

// Product is a catalog entry. Prices are integral yen.
type Product struct {
	ID            string    `json:"id"`
	SKU           string    `json:"sku"`
	Slug          string    `json:"slug,omitempty"`
	NameJa        string    `json:"nameJa"`
	NameVi        string    `json:"nameVi"`
	DescriptionJa string    `json:"descriptionJa,omitempty"`
	DescriptionVi string    `json:"descriptionVi,omitempty"`
	Price         int64     `json:"price"`
	StockQuantity int       `json:"stockQuantity"`
	IsActive      bool      `json:"isActive"`
	Category      *Category `json:"category,omitempty"`
	ImageURLs     []string  `json:"images,omitempty"`
	Variants      []Variant `json:"variants"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Variant is a purchasable option of a product, e.g. a bottle size.
type Variant struct {
	ID            string `json:"id"`
	ProductID     string `json:"productId,omitempty"`
	Name          string `json:"name"`
	Value         string `json:"value"`
	PriceModifier int64  `json:"priceModifier"`
	StockQuantity int    `json:"stockQuantity"`
	IsActive      bool   `json:"isActive"`
}

// Variant returns the variant with the given id regardless of its active flag.
func (p *Product) Variant(id string) (*Variant, bool) {
	for i := range p.Variants {
		if p.Variants[i].ID == id {
			return &p.Variants[i], true
		}
	}
	return nil, false
}

// ActiveVariant returns the variant with the given id only when it is active.
func (p *Product) ActiveVariant(id string) (*Variant, bool) {
	v, ok := p.Variant(id)
	if !ok || !v.IsActive {
		return nil, false
	}
	return v, true
}

// WithActiveVariants returns a copy of p listing only its active variants.
func (p Product) WithActiveVariants() Product {
	active := make([]Variant, 0, len(p.Variants))
	for _, v := range p.Variants {
		if v.IsActive {
			active = append(active, v)
		}
	}
	p.Variants = active
	return p
}

// PrimaryImage returns the first image url or an empty string.
func (p *Product) PrimaryImage() string {
	if len(p.ImageURLs) == 0 {
		return ""
	}
	return p.ImageURLs[0]
}
