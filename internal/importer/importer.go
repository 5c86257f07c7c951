package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"vietfood/internal/catalog"
	"vietfood/internal/domain"
)

// CSVImporter reads catalog CSV exports and inserts or updates products.
//
// A row with a sku starts a new product. Rows without one attach their
// variant and image columns to the product above them.
type CSVImporter struct {
	reader *csv.Reader
	writer catalog.Writer
	logger *zap.Logger
}

func NewCSVImporter(r io.Reader, w catalog.Writer, logger *zap.Logger) *CSVImporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	return &CSVImporter{
		reader: csvr,
		writer: w,
		logger: logger,
	}
}

// Run parses CSV rows and upserts products grouped by sku.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)

	var (
		current  *domain.Product
		imported int
		line     = 1
	)

	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return imported, fmt.Errorf("read row %d: %w", line, err)
		}

		r := row{record: record, index: index}
		if r.get("sku") != "" {
			if current != nil {
				if err := i.save(ctx, current); err != nil {
					return imported, err
				}
				imported++
			}
			current, err = r.product()
			if err != nil {
				return imported, fmt.Errorf("row %d: %w", line, err)
			}
			continue
		}

		if current == nil {
			i.logger.Warn("importer: continuation row without product", zap.Int("line", line))
			continue
		}
		// Continuation rows carry extra variants and images.
		if err := r.attach(current); err != nil {
			return imported, fmt.Errorf("row %d: %w", line, err)
		}
	}

	if current != nil {
		if err := i.save(ctx, current); err != nil {
			return imported, err
		}
		imported++
	}

	i.logger.Info("importer: finished", zap.Int("imported", imported))
	return imported, nil
}

func (i *CSVImporter) save(ctx context.Context, p *domain.Product) error {
	if p.NameJa == "" || p.Slug == "" || p.Price <= 0 {
		return fmt.Errorf("%w: product %q is missing name.ja, slug or price", domain.ErrInvalidInput, p.SKU)
	}
	if p.ID != "" {
		if _, err := uuid.Parse(p.ID); err != nil {
			return fmt.Errorf("%w: invalid id for sku %q: %s", domain.ErrInvalidInput, p.SKU, p.ID)
		}
	}
	if _, err := i.writer.Upsert(ctx, *p); err != nil {
		return fmt.Errorf("upsert product %q: %w", p.SKU, err)
	}
	i.logger.Debug("importer: saved product", zap.String("sku", p.SKU), zap.Int("variants", len(p.Variants)))
	return nil
}

type row struct {
	record []string
	index  map[string]int
}

func (r row) get(key string) string {
	pos, ok := r.index[key]
	if !ok || pos >= len(r.record) {
		return ""
	}
	return strings.TrimSpace(r.record[pos])
}

func (r row) integer(key string) (int64, error) {
	v := r.get(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", domain.ErrInvalidInput, key, v)
	}
	return n, nil
}

func (r row) product() (*domain.Product, error) {
	price, err := r.integer("price")
	if err != nil {
		return nil, err
	}
	stock, err := r.integer("stock")
	if err != nil {
		return nil, err
	}
	p := &domain.Product{
		ID:            r.get("id"),
		SKU:           r.get("sku"),
		Slug:          r.get("slug"),
		NameJa:        r.get("name.ja"),
		NameVi:        r.get("name.vi"),
		DescriptionJa: r.get("description.ja"),
		DescriptionVi: r.get("description.vi"),
		Price:         price,
		StockQuantity: int(stock),
		IsActive:      !strings.EqualFold(r.get("active"), "false"),
	}
	if slug := r.get("category"); slug != "" {
		p.Category = &domain.Category{
			Slug:   slug,
			NameJa: firstNonEmpty(r.get("category.ja"), slug),
			NameVi: firstNonEmpty(r.get("category.vi"), slug),
		}
	}
	if err := r.attach(p); err != nil {
		return nil, err
	}
	return p, nil
}

func (r row) attach(p *domain.Product) error {
	if img := r.get("image"); img != "" {
		p.ImageURLs = append(p.ImageURLs, img)
	}
	name, value := r.get("variant.name"), r.get("variant.value")
	if name == "" && value == "" {
		return nil
	}
	if name == "" || value == "" {
		return fmt.Errorf("%w: variant for %q needs both name and value", domain.ErrInvalidInput, p.SKU)
	}
	modifier, err := r.integer("variant.priceModifier")
	if err != nil {
		return err
	}
	stock, err := r.integer("variant.stock")
	if err != nil {
		return err
	}
	p.Variants = append(p.Variants, domain.Variant{
		Name:          name,
		Value:         value,
		PriceModifier: modifier,
		StockQuantity: int(stock),
		IsActive:      true,
	})
	return nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	return idx
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
