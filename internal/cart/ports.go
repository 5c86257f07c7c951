package cart

import (
	"context"

	"vietfood/internal/domain"
)

// ProductLookup fetches live product data including all variants.
// Implementations return an error wrapping domain.ErrNotFound for unknown ids.
type ProductLookup interface {
	FetchProduct(ctx context.Context, productID string) (*domain.Product, error)
}

// Snapshot is the persisted form of a cart. Totals are not stored.
type Snapshot struct {
	Items []LineItem `json:"items"`
}

// Storage persists cart snapshots. Load returns nil, nil when nothing was saved.
type Storage interface {
	Load(ctx context.Context) (*Snapshot, error)
	Save(ctx context.Context, snap Snapshot) error
}
