package cart

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// StockReport lists line items whose current stock is below their quantity.
type StockReport struct {
	HasOutOfStock   bool     `json:"hasOutOfStock"`
	OutOfStockItems []string `json:"outOfStockItems"`
}

// CheckStock re-fetches every line and reports, in cart order, the Japanese
// names of those that can no longer be fulfilled. Nothing is removed or
// clamped. A line whose lookup fails is logged and left out of the report.
func (c *Cart) CheckStock(ctx context.Context) StockReport {
	items := c.State().Items
	short := make([]bool, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.stockCheckConcurrency)
	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			available, err := c.currentStock(gctx, item)
			if err != nil {
				c.logger.Warn("stock check failed for item",
					zap.String("line_item_id", item.ID),
					zap.String("product_id", item.ProductID),
					zap.Error(err),
				)
				return nil
			}
			short[i] = available < item.Quantity
			return nil
		})
	}
	_ = g.Wait()

	report := StockReport{OutOfStockItems: []string{}}
	for i, item := range items {
		if short[i] {
			report.OutOfStockItems = append(report.OutOfStockItems, item.Product.NameJa)
		}
	}
	report.HasOutOfStock = len(report.OutOfStockItems) > 0
	return report
}

// currentStock treats a variant that has disappeared from the product or
// been deactivated as having no stock.
func (c *Cart) currentStock(ctx context.Context, item LineItem) (int, error) {
	if c.lookup == nil {
		return 0, &LookupError{ProductID: item.ProductID, Err: errNoLookup}
	}
	product, err := c.lookup.FetchProduct(ctx, item.ProductID)
	if err != nil {
		return 0, err
	}
	if product == nil {
		return 0, &NotFoundError{ProductID: item.ProductID}
	}
	if item.VariantID == "" {
		return product.StockQuantity, nil
	}
	variant, ok := product.ActiveVariant(item.VariantID)
	if !ok {
		return 0, nil
	}
	return variant.StockQuantity, nil
}
