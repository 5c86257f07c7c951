package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"vietfood/internal/domain"
)

type Postgres struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) *Postgres {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Postgres{pool: pool, logger: logger}
}

const productColumns = `
SELECT p.id::text, p.sku, p.slug, p.name_ja, p.name_vi,
       COALESCE(p.description_ja, ''), COALESCE(p.description_vi, ''),
       p.price, p.stock_quantity, p.is_active, p.image_urls, p.created_at,
       c.id::text, c.slug, c.name_ja, c.name_vi
FROM products p
LEFT JOIN categories c ON c.id = p.category_id
`

func scanProduct(row pgx.Row) (domain.Product, error) {
	var p domain.Product
	var catID, catSlug, catJa, catVi *string
	err := row.Scan(&p.ID, &p.SKU, &p.Slug, &p.NameJa, &p.NameVi,
		&p.DescriptionJa, &p.DescriptionVi,
		&p.Price, &p.StockQuantity, &p.IsActive, &p.ImageURLs, &p.CreatedAt,
		&catID, &catSlug, &catJa, &catVi)
	if err != nil {
		return domain.Product{}, err
	}
	if catID != nil {
		p.Category = &domain.Category{ID: *catID, Slug: deref(catSlug), NameJa: deref(catJa), NameVi: deref(catVi)}
	}
	p.Variants = []domain.Variant{}
	return p, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// FetchProduct returns the product with its variants. Inactive products are
// returned as stored; callers decide what inactive means.
func (r *Postgres) FetchProduct(ctx context.Context, id string) (*domain.Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		r.logger.Debug("catalog: fetch with non-uuid id", zap.String("id", id))
		return nil, domain.ErrNotFound
	}
	return r.fetchOne(ctx, productColumns+`WHERE p.id = $1`, id)
}

func (r *Postgres) FetchBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	return r.fetchOne(ctx, productColumns+`WHERE p.slug = $1`, slug)
}

func (r *Postgres) fetchOne(ctx context.Context, q string, arg string) (*domain.Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx, q, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug("catalog: product not found", zap.String("key", arg))
			return nil, domain.ErrNotFound
		}
		r.logger.Error("catalog: fetch product", zap.String("key", arg), zap.Error(err))
		return nil, err
	}
	byProduct, err := r.variants(ctx, []string{p.ID})
	if err != nil {
		return nil, err
	}
	if vs, ok := byProduct[p.ID]; ok {
		p.Variants = vs
	}
	return &p, nil
}

func (r *Postgres) ListActive(ctx context.Context) ([]domain.Product, error) {
	rows, err := r.pool.Query(ctx, productColumns+`WHERE p.is_active ORDER BY p.created_at DESC, p.sku`)
	if err != nil {
		r.logger.Error("catalog: list products", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var (
		result []domain.Product
		ids    []string
	)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
		ids = append(ids, p.ID)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("catalog: list rows", zap.Error(err))
		return nil, err
	}
	if len(ids) == 0 {
		return []domain.Product{}, nil
	}

	byProduct, err := r.variants(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range result {
		if vs, ok := byProduct[result[i].ID]; ok {
			result[i].Variants = vs
		}
	}
	r.logger.Debug("catalog: listed products", zap.Int("count", len(result)))
	return result, nil
}

func (r *Postgres) variants(ctx context.Context, productIDs []string) (map[string][]domain.Variant, error) {
	const q = `
SELECT id::text, product_id::text, name, value, price_modifier, stock_quantity, is_active
FROM product_variants
WHERE product_id::text = ANY($1)
ORDER BY product_id, price_modifier, name, value
`
	rows, err := r.pool.Query(ctx, q, productIDs)
	if err != nil {
		r.logger.Error("catalog: load variants", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]domain.Variant)
	for rows.Next() {
		var v domain.Variant
		if err := rows.Scan(&v.ID, &v.ProductID, &v.Name, &v.Value, &v.PriceModifier, &v.StockQuantity, &v.IsActive); err != nil {
			return nil, err
		}
		out[v.ProductID] = append(out[v.ProductID], v)
	}
	return out, rows.Err()
}

// Upsert writes the category (by slug), the product (by SKU) and its variants
// (by name and value) in one transaction.
func (r *Postgres) Upsert(ctx context.Context, product domain.Product) (*domain.Product, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	res := cloneProduct(product)

	var categoryID *string
	if product.Category != nil && product.Category.Slug != "" {
		const cq = `
INSERT INTO categories (slug, name_ja, name_vi)
VALUES ($1, $2, $3)
ON CONFLICT (slug) DO UPDATE SET name_ja = EXCLUDED.name_ja, name_vi = EXCLUDED.name_vi
RETURNING id::text
`
		var id string
		if err := tx.QueryRow(ctx, cq, product.Category.Slug, product.Category.NameJa, product.Category.NameVi).Scan(&id); err != nil {
			r.logger.Error("catalog: upsert category", zap.String("slug", product.Category.Slug), zap.Error(err))
			return nil, err
		}
		categoryID = &id
		res.Category.ID = id
	}

	images := product.ImageURLs
	if images == nil {
		images = []string{}
	}
	const pq = `
INSERT INTO products (id, sku, slug, name_ja, name_vi, description_ja, description_vi, price, stock_quantity, is_active, category_id, image_urls)
VALUES (COALESCE(NULLIF($1, '')::uuid, gen_random_uuid()), $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''), $8, $9, $10, $11::uuid, $12)
ON CONFLICT (sku) DO UPDATE SET
    slug = EXCLUDED.slug,
    name_ja = EXCLUDED.name_ja,
    name_vi = EXCLUDED.name_vi,
    description_ja = EXCLUDED.description_ja,
    description_vi = EXCLUDED.description_vi,
    price = EXCLUDED.price,
    stock_quantity = EXCLUDED.stock_quantity,
    is_active = EXCLUDED.is_active,
    category_id = EXCLUDED.category_id,
    image_urls = EXCLUDED.image_urls
RETURNING id::text, created_at
`
	err = tx.QueryRow(ctx, pq,
		product.ID,
		product.SKU,
		product.Slug,
		product.NameJa,
		product.NameVi,
		product.DescriptionJa,
		product.DescriptionVi,
		product.Price,
		product.StockQuantity,
		product.IsActive,
		categoryID,
		images,
	).Scan(&res.ID, &res.CreatedAt)
	if err != nil {
		r.logger.Error("catalog: upsert product", zap.String("sku", product.SKU), zap.Error(err))
		return nil, err
	}
	if product.ID != "" && res.ID != product.ID {
		return nil, fmt.Errorf("catalog: id mismatch for sku=%s existing_id=%s import_id=%s", product.SKU, res.ID, product.ID)
	}

	const vq = `
INSERT INTO product_variants (product_id, name, value, price_modifier, stock_quantity, is_active)
VALUES ($1::uuid, $2, $3, $4, $5, $6)
ON CONFLICT (product_id, name, value) DO UPDATE SET
    price_modifier = EXCLUDED.price_modifier,
    stock_quantity = EXCLUDED.stock_quantity,
    is_active = EXCLUDED.is_active
RETURNING id::text
`
	for i, v := range product.Variants {
		if err := tx.QueryRow(ctx, vq, res.ID, v.Name, v.Value, v.PriceModifier, v.StockQuantity, v.IsActive).Scan(&res.Variants[i].ID); err != nil {
			r.logger.Error("catalog: upsert variant", zap.String("sku", product.SKU), zap.String("variant", v.Name+"/"+v.Value), zap.Error(err))
			return nil, err
		}
		res.Variants[i].ProductID = res.ID
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	r.logger.Info("catalog: upserted product", zap.String("sku", res.SKU), zap.String("id", res.ID), zap.Int("variants", len(res.Variants)))
	return &res, nil
}
