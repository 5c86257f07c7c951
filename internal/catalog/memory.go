package catalog

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"vietfood/internal/domain"
)

// Memory is an in-process catalog, used for demos and tests.
type Memory struct {
	mu       sync.RWMutex
	products map[string]domain.Product
	bySKU    map[string]string
}

func NewMemory(products ...domain.Product) *Memory {
	m := &Memory{
		products: make(map[string]domain.Product),
		bySKU:    make(map[string]string),
	}
	for _, p := range products {
		if _, err := m.Upsert(context.Background(), p); err != nil {
			panic(err)
		}
	}
	return m
}

func (m *Memory) FetchProduct(_ context.Context, id string) (*domain.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := cloneProduct(p)
	return &out, nil
}

func (m *Memory) FetchBySlug(_ context.Context, slug string) (*domain.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.products {
		if p.Slug == slug {
			out := cloneProduct(p)
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *Memory) ListActive(_ context.Context) ([]domain.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Product, 0, len(m.products))
	for _, p := range m.products {
		if p.IsActive {
			out = append(out, cloneProduct(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
	return out, nil
}

// Upsert keys products by SKU. Missing ids are generated.
func (m *Memory) Upsert(_ context.Context, product domain.Product) (*domain.Product, error) {
	if product.SKU == "" {
		return nil, fmt.Errorf("%w: sku is required", domain.ErrInvalidInput)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.bySKU[product.SKU]; ok {
		if product.ID != "" && product.ID != existing {
			return nil, fmt.Errorf("catalog: id mismatch for sku=%s existing_id=%s import_id=%s", product.SKU, existing, product.ID)
		}
		product.ID = existing
		product.CreatedAt = m.products[existing].CreatedAt
	}
	if product.ID == "" {
		product.ID = uuid.NewString()
	}
	p := cloneProduct(product)
	for i := range p.Variants {
		if p.Variants[i].ID == "" {
			p.Variants[i].ID = uuid.NewString()
		}
		p.Variants[i].ProductID = p.ID
	}
	m.products[p.ID] = p
	m.bySKU[p.SKU] = p.ID

	out := cloneProduct(p)
	return &out, nil
}

// SetStock overwrites the stock of a product or, when variantID is set, of
// one of its variants.
func (m *Memory) SetStock(id, variantID string, stock int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return domain.ErrNotFound
	}
	p = cloneProduct(p)
	if variantID == "" {
		p.StockQuantity = stock
	} else {
		v, ok := p.Variant(variantID)
		if !ok {
			return domain.ErrNotFound
		}
		v.StockQuantity = stock
	}
	m.products[id] = p
	return nil
}
