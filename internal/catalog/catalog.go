// Package catalog resolves products and their variants for the cart and the
// product endpoints.
package catalog

import (
	"context"

	"vietfood/internal/domain"
)

// Reader is what the cart and the HTTP layer need from a catalog.
// FetchProduct satisfies cart.ProductLookup.
type Reader interface {
	FetchProduct(ctx context.Context, id string) (*domain.Product, error)
	FetchBySlug(ctx context.Context, slug string) (*domain.Product, error)
	ListActive(ctx context.Context) ([]domain.Product, error)
}

// Writer inserts or updates a product, its category and its variants, keyed
// by SKU. Used by the seed and importer commands.
type Writer interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

func cloneProduct(p domain.Product) domain.Product {
	if p.Category != nil {
		c := *p.Category
		p.Category = &c
	}
	p.ImageURLs = append([]string(nil), p.ImageURLs...)
	p.Variants = append([]domain.Variant(nil), p.Variants...)
	return p
}
