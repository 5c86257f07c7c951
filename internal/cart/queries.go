package cart

// ShippingCost is the shipping for the current subtotal.
func (c *Cart) ShippingCost() int64 {
	return ShippingCost(c.subtotal())
}

func (c *Cart) FinalTotal() int64 {
	return FinalTotal(c.subtotal())
}

func (c *Cart) AmountForFreeShipping() int64 {
	return AmountForFreeShipping(c.subtotal())
}

func (c *Cart) TaxIncludedAmount() int64 {
	return TaxIncludedAmount(c.subtotal())
}

func (c *Cart) subtotal() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.TotalAmount
}

func (c *Cart) lineFor(productID, variantID string) (LineItem, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return findItem(c.state.Items, productID, variantID)
}

// ItemQuantity is the quantity held for (productID, variantID), 0 if absent.
func (c *Cart) ItemQuantity(productID, variantID string) int {
	item, _ := c.lineFor(productID, variantID)
	return item.Quantity
}

func (c *Cart) IsInCart(productID, variantID string) bool {
	_, ok := c.lineFor(productID, variantID)
	return ok
}

// ItemID returns the line item id for (productID, variantID).
func (c *Cart) ItemID(productID, variantID string) (string, bool) {
	item, ok := c.lineFor(productID, variantID)
	return item.ID, ok
}

// ItemTotal is unit price times quantity for (productID, variantID), 0 if absent.
func (c *Cart) ItemTotal(productID, variantID string) int64 {
	item, ok := c.lineFor(productID, variantID)
	if !ok {
		return 0
	}
	return item.Total()
}

type Stats struct {
	ItemCount   int   `json:"itemCount"`
	TotalItems  int   `json:"totalItems"`
	TotalAmount int64 `json:"totalAmount"`
	IsEmpty     bool  `json:"isEmpty"`
}

func (c *Cart) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		ItemCount:   len(c.state.Items),
		TotalItems:  c.state.TotalItems,
		TotalAmount: c.state.TotalAmount,
		IsEmpty:     len(c.state.Items) == 0,
	}
}

// ItemsByCategory groups lines by Japanese category name.
func (c *Cart) ItemsByCategory() map[string][]LineItem {
	items := c.State().Items
	grouped := make(map[string][]LineItem)
	for _, item := range items {
		grouped[item.Product.CategoryJa] = append(grouped[item.Product.CategoryJa], item)
	}
	return grouped
}

type ExportItem struct {
	ProductID  string `json:"productId"`
	VariantID  string `json:"productVariantId,omitempty"`
	Quantity   int    `json:"quantity"`
	UnitPrice  int64  `json:"unitPrice"`
	TotalPrice int64  `json:"totalPrice"`
}

type Summary struct {
	TotalItems            int   `json:"totalItems"`
	Subtotal              int64 `json:"subtotal"`
	Tax                   int64 `json:"tax"`
	Shipping              int64 `json:"shipping"`
	Total                 int64 `json:"total"`
	FreeShippingThreshold int64 `json:"freeShippingThreshold"`
	AmountForFreeShipping int64 `json:"amountForFreeShipping"`
}

// Export is the order-ready view of the cart.
type Export struct {
	Items   []ExportItem `json:"items"`
	Summary Summary      `json:"summary"`
}

func SummaryOf(s State) Summary {
	return Summary{
		TotalItems:            s.TotalItems,
		Subtotal:              s.TotalAmount,
		Tax:                   Tax(s.TotalAmount),
		Shipping:              ShippingCost(s.TotalAmount),
		Total:                 FinalTotal(s.TotalAmount),
		FreeShippingThreshold: FreeShippingThreshold,
		AmountForFreeShipping: AmountForFreeShipping(s.TotalAmount),
	}
}

func (c *Cart) Export() Export {
	state := c.State()
	out := Export{Items: make([]ExportItem, 0, len(state.Items)), Summary: SummaryOf(state)}
	for _, item := range state.Items {
		out.Items = append(out.Items, ExportItem{
			ProductID:  item.ProductID,
			VariantID:  item.VariantID,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice(),
			TotalPrice: item.Total(),
		})
	}
	return out
}
