package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"vietfood/internal/domain"
)

type stubLookup struct {
	mu       sync.Mutex
	products map[string]*domain.Product
	errs     map[string]error
	calls    int

	// When set, FetchProduct signals entered and then waits for release.
	entered chan struct{}
	release chan struct{}
}

func newStubLookup(products ...*domain.Product) *stubLookup {
	s := &stubLookup{products: make(map[string]*domain.Product), errs: make(map[string]error)}
	for _, p := range products {
		s.products[p.ID] = p
	}
	return s
}

func (s *stubLookup) FetchProduct(ctx context.Context, productID string) (*domain.Product, error) {
	if s.entered != nil {
		s.entered <- struct{}{}
		select {
		case <-s.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if err, ok := s.errs[productID]; ok {
		return nil, err
	}
	p, ok := s.products[productID]
	if !ok {
		return nil, fmt.Errorf("product %s: %w", productID, domain.ErrNotFound)
	}
	cp := *p
	cp.Variants = append([]domain.Variant(nil), p.Variants...)
	return &cp, nil
}

func (s *stubLookup) setStock(productID string, stock int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[productID].StockQuantity = stock
}

type stubStorage struct {
	mu      sync.Mutex
	snap    *Snapshot
	loadErr error
	saveErr error
	saves   int
}

func (s *stubStorage) Load(_ context.Context) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return s.snap, nil
}

func (s *stubStorage) Save(_ context.Context, snap Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	if s.saveErr != nil {
		return s.saveErr
	}
	s.snap = &snap
	return nil
}

func (s *stubStorage) saved() *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

func sequentialIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("line-%d", n)
	}
}

func phoProduct() *domain.Product {
	return &domain.Product{
		ID:            "pho",
		SKU:           "VN-PHO-001",
		NameJa:        "フォー",
		NameVi:        "Phở",
		Price:         450,
		StockQuantity: 3,
		IsActive:      true,
		Category:      &domain.Category{ID: "noodles", NameJa: "麺類", NameVi: "Mì"},
		ImageURLs:     []string{"https://cdn.example.com/pho.jpg"},
	}
}

func fishSauceProduct() *domain.Product {
	return &domain.Product{
		ID:            "nuoc-mam",
		SKU:           "VN-NM-001",
		NameJa:        "ヌックマム",
		NameVi:        "Nước mắm",
		Price:         800,
		StockQuantity: 100,
		IsActive:      true,
		Category:      &domain.Category{ID: "sauces", NameJa: "調味料", NameVi: "Gia vị"},
		Variants: []domain.Variant{
			{ID: "500ml", Name: "容量", Value: "500ml", PriceModifier: 0, StockQuantity: 5, IsActive: true},
			{ID: "1l", Name: "容量", Value: "1L", PriceModifier: 600, StockQuantity: 2, IsActive: true},
			{ID: "2l", Name: "容量", Value: "2L", PriceModifier: 1400, StockQuantity: 9, IsActive: false},
		},
	}
}

func newTestCart(t *testing.T, lookup ProductLookup, storage Storage, opts ...Option) *Cart {
	t.Helper()
	opts = append([]Option{WithIDGenerator(sequentialIDs())}, opts...)
	return New(lookup, storage, opts...)
}

func TestAddToCartSuccess(t *testing.T) {
	ctx := context.Background()
	storage := &stubStorage{}
	c := newTestCart(t, newStubLookup(phoProduct()), storage)

	require.NoError(t, c.AddToCart(ctx, "pho", 2, ""))

	state := c.State()
	require.Len(t, state.Items, 1)
	item := state.Items[0]
	assert.Equal(t, "line-1", item.ID)
	assert.Equal(t, "pho", item.ProductID)
	assert.Equal(t, 2, item.Quantity)
	assert.Equal(t, "フォー", item.Product.NameJa)
	assert.Equal(t, "麺類", item.Product.CategoryJa)
	assert.Equal(t, 3, item.StockSnapshot())
	assert.Equal(t, 2, state.TotalItems)
	assert.Equal(t, int64(900), state.TotalAmount)
	assert.False(t, state.IsLoading)
	assert.Empty(t, state.Error)

	saved := storage.saved()
	require.NotNil(t, saved)
	assert.Len(t, saved.Items, 1)
}

func TestAddToCartMergesSameProduct(t *testing.T) {
	ctx := context.Background()
	lookup := newStubLookup(fishSauceProduct())
	c := newTestCart(t, lookup, &stubStorage{})

	require.NoError(t, c.AddToCart(ctx, "nuoc-mam", 2, "500ml"))
	require.NoError(t, c.AddToCart(ctx, "nuoc-mam", 3, "500ml"))

	state := c.State()
	require.Len(t, state.Items, 1)
	assert.Equal(t, 5, state.Items[0].Quantity)
	assert.Equal(t, "line-1", state.Items[0].ID)
}

func TestAddToCartVariantUsesModifierAndVariantStock(t *testing.T) {
	ctx := context.Background()
	c := newTestCart(t, newStubLookup(fishSauceProduct()), &stubStorage{})

	require.NoError(t, c.AddToCart(ctx, "nuoc-mam", 2, "1l"))
	state := c.State()
	require.Len(t, state.Items, 1)
	assert.Equal(t, int64(1400), state.Items[0].UnitPrice())
	assert.Equal(t, int64(2800), state.TotalAmount)
	assert.Equal(t, 2, state.Items[0].StockSnapshot())

	err := c.AddToCart(ctx, "nuoc-mam", 1, "1l")
	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 3, stockErr.Requested)
	assert.Equal(t, 2, stockErr.Available)
}

func TestAddToCartCountsExistingQuantityAgainstStock(t *testing.T) {
	ctx := context.Background()
	storage := &stubStorage{}
	c := newTestCart(t, newStubLookup(phoProduct()), storage)

	require.NoError(t, c.AddToCart(ctx, "pho", 2, ""))
	saves := storage.saves

	err := c.AddToCart(ctx, "pho", 2, "")
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	state := c.State()
	assert.Equal(t, 2, c.ItemQuantity("pho", ""))
	assert.Equal(t, MessagesJa.InsufficientStock, state.Error)
	assert.False(t, state.IsLoading)
	assert.Equal(t, saves, storage.saves, "failed add must not persist")
}

func TestAddToCartNotFound(t *testing.T) {
	ctx := context.Background()
	inactive := phoProduct()
	inactive.ID = "old-pho"
	inactive.IsActive = false

	tests := []struct {
		name      string
		productID string
		variantID string
	}{
		{name: "absent product", productID: "missing"},
		{name: "inactive product", productID: "old-pho"},
		{name: "unknown variant", productID: "nuoc-mam", variantID: "5l"},
		{name: "inactive variant", productID: "nuoc-mam", variantID: "2l"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCart(t, newStubLookup(fishSauceProduct(), inactive), &stubStorage{})
			err := c.AddToCart(ctx, tt.productID, 1, tt.variantID)

			var nf *NotFoundError
			require.ErrorAs(t, err, &nf)
			assert.ErrorIs(t, err, domain.ErrNotFound)
			state := c.State()
			assert.Empty(t, state.Items)
			assert.Equal(t, MessagesJa.NotFound, state.Error)
			assert.False(t, state.IsLoading)
		})
	}
}

func TestAddToCartLookupFailure(t *testing.T) {
	lookup := newStubLookup()
	lookup.errs["pho"] = errors.New("connection refused")
	c := newTestCart(t, lookup, &stubStorage{})

	err := c.AddToCart(context.Background(), "pho", 1, "")
	require.ErrorIs(t, err, domain.ErrLookupFailed)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, MessagesJa.LookupFailed, c.State().Error)
}

func TestAddToCartValidatesQuantity(t *testing.T) {
	lookup := newStubLookup(phoProduct())
	c := newTestCart(t, lookup, &stubStorage{})

	for _, qty := range []int{0, -1, 100} {
		err := c.AddToCart(context.Background(), "pho", qty, "")
		require.ErrorIs(t, err, domain.ErrInvalidInput, "quantity %d", qty)
	}
	assert.Zero(t, lookup.calls, "invalid quantities must not reach the lookup")
	assert.Equal(t, MessagesJa.InvalidQuantity, c.State().Error)
}

func TestAddToCartVietnameseMessages(t *testing.T) {
	c := newTestCart(t, newStubLookup(), &stubStorage{}, WithMessages(MessagesFor(LangVi)))
	_ = c.AddToCart(context.Background(), "missing", 1, "")
	assert.Equal(t, MessagesVi.NotFound, c.State().Error)
}

func TestSuccessfulAddClearsPreviousError(t *testing.T) {
	ctx := context.Background()
	c := newTestCart(t, newStubLookup(phoProduct()), &stubStorage{})

	require.Error(t, c.AddToCart(ctx, "missing", 1, ""))
	require.NotEmpty(t, c.State().Error)
	require.NoError(t, c.AddToCart(ctx, "pho", 1, ""))
	assert.Empty(t, c.State().Error)
}

func TestAddMultipleToCartAttemptsEveryEntry(t *testing.T) {
	ctx := context.Background()
	c := newTestCart(t, newStubLookup(phoProduct(), fishSauceProduct()), &stubStorage{})

	err := c.AddMultipleToCart(ctx, []AddRequest{
		{ProductID: "pho", Quantity: 1},
		{ProductID: "missing", Quantity: 1},
		{ProductID: "nuoc-mam", VariantID: "500ml", Quantity: 1},
		{ProductID: "pho", Quantity: 50},
	})
	require.ErrorIs(t, err, domain.ErrNotFound)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "missing", notFound.ProductID)

	assert.True(t, c.IsInCart("pho", ""))
	assert.True(t, c.IsInCart("nuoc-mam", "500ml"), "entries after a failure are still added")
	assert.Equal(t, 2, c.State().TotalItems)
	assert.Equal(t, MessagesJa.InsufficientStock, c.State().Error, "the last failure's message is kept")
}

func TestAddMultipleToCartAllSucceed(t *testing.T) {
	ctx := context.Background()
	c := newTestCart(t, newStubLookup(phoProduct(), fishSauceProduct()), &stubStorage{})

	require.NoError(t, c.AddMultipleToCart(ctx, []AddRequest{
		{ProductID: "pho", Quantity: 2},
		{ProductID: "nuoc-mam", VariantID: "1l", Quantity: 1},
	}))
	assert.Equal(t, 3, c.State().TotalItems)
	assert.Empty(t, c.State().Error)
}

func TestUpdateRemoveClear(t *testing.T) {
	ctx := context.Background()
	storage := &stubStorage{}
	c := newTestCart(t, newStubLookup(phoProduct(), fishSauceProduct()), storage)
	require.NoError(t, c.AddToCart(ctx, "pho", 1, ""))
	require.NoError(t, c.AddToCart(ctx, "nuoc-mam", 1, "500ml"))

	id, ok := c.ItemID("pho", "")
	require.True(t, ok)
	c.UpdateQuantity(ctx, id, 3)
	assert.Equal(t, 3, c.ItemQuantity("pho", ""))
	assert.Equal(t, int64(1350), c.ItemTotal("pho", ""))

	c.UpdateQuantity(ctx, id, 0)
	assert.False(t, c.IsInCart("pho", ""))
	assert.Len(t, storage.saved().Items, 1)

	fishID, _ := c.ItemID("nuoc-mam", "500ml")
	c.RemoveFromCart(ctx, fishID)
	state := c.State()
	assert.Empty(t, state.Items)
	assert.Zero(t, state.TotalItems)

	require.NoError(t, c.AddToCart(ctx, "pho", 1, ""))
	c.ClearCart(ctx)
	assert.True(t, c.Stats().IsEmpty)
	assert.Empty(t, storage.saved().Items)
}

func TestStorageFailureDoesNotRollBack(t *testing.T) {
	storage := &stubStorage{saveErr: errors.New("disk full")}
	c := newTestCart(t, newStubLookup(phoProduct()), storage)

	require.NoError(t, c.AddToCart(context.Background(), "pho", 1, ""))
	state := c.State()
	assert.Len(t, state.Items, 1)
	assert.Empty(t, state.Error, "storage failures are not surfaced")
	assert.Positive(t, storage.saves)
}

func TestLoadHydratesAndRecomputesTotals(t *testing.T) {
	storage := &stubStorage{snap: &Snapshot{Items: []LineItem{
		{ID: "a", ProductID: "pho", Quantity: 2, Product: ProductSnapshot{ID: "pho", Price: 450}},
		{ID: "b", ProductID: "nuoc-mam", VariantID: "1l", Quantity: 1, Product: ProductSnapshot{ID: "nuoc-mam", Price: 800}, Variant: &VariantSnapshot{ID: "1l", PriceModifier: 600}},
	}}}
	c := newTestCart(t, newStubLookup(), storage)

	require.NoError(t, c.Load(context.Background()))
	state := c.State()
	assert.Equal(t, 3, state.TotalItems)
	assert.Equal(t, int64(2300), state.TotalAmount)
	assert.Zero(t, storage.saves, "hydration does not write back")
}

func TestLoadEmptyStorage(t *testing.T) {
	c := newTestCart(t, newStubLookup(), &stubStorage{})
	require.NoError(t, c.Load(context.Background()))
	assert.True(t, c.Stats().IsEmpty)
}

func TestLoadFailureSetsError(t *testing.T) {
	storage := &stubStorage{loadErr: errors.New("corrupt json")}
	c := newTestCart(t, newStubLookup(), storage)

	err := c.Load(context.Background())
	require.Error(t, err)
	assert.Equal(t, MessagesJa.LoadFailed, c.State().Error)
}

func TestCheckStockReportsShortLinesInOrder(t *testing.T) {
	defer goleak.VerifyNone(t)
	ctx := context.Background()

	pho := phoProduct()
	broken := phoProduct()
	broken.ID = "banh-mi"
	broken.NameJa = "バインミー"
	broken.StockQuantity = 10
	lookup := newStubLookup(pho, fishSauceProduct(), broken)
	c := newTestCart(t, lookup, &stubStorage{}, WithStockCheckConcurrency(2))

	require.NoError(t, c.AddToCart(ctx, "pho", 3, ""))
	require.NoError(t, c.AddToCart(ctx, "nuoc-mam", 2, "1l"))
	require.NoError(t, c.AddToCart(ctx, "nuoc-mam", 1, "500ml"))
	require.NoError(t, c.AddToCart(ctx, "banh-mi", 5, ""))

	lookup.setStock("pho", 1)
	lookup.mu.Lock()
	fish := lookup.products["nuoc-mam"]
	fish.Variants = fish.Variants[:1] // the 1L variant disappears
	lookup.errs["banh-mi"] = errors.New("timeout")
	lookup.mu.Unlock()

	report := c.CheckStock(ctx)
	assert.True(t, report.HasOutOfStock)
	assert.Equal(t, []string{"フォー", "ヌックマム"}, report.OutOfStockItems)

	assert.Equal(t, 3, c.ItemQuantity("pho", ""), "check stock never clamps")
	assert.Equal(t, 5, c.ItemQuantity("banh-mi", ""), "failed lookups are not reported")
}

func TestCheckStockAllAvailable(t *testing.T) {
	ctx := context.Background()
	c := newTestCart(t, newStubLookup(phoProduct()), &stubStorage{}, WithMessages(MessagesVi))
	require.NoError(t, c.AddToCart(ctx, "pho", 1, ""))

	report := c.CheckStock(ctx)
	assert.False(t, report.HasOutOfStock)
	assert.Empty(t, report.OutOfStockItems)

	c.ClearCart(ctx)
	assert.Empty(t, c.CheckStock(ctx).OutOfStockItems)
}

func TestCheckStockReportsDeactivatedVariant(t *testing.T) {
	ctx := context.Background()
	lookup := newStubLookup(fishSauceProduct())
	c := newTestCart(t, lookup, &stubStorage{})
	require.NoError(t, c.AddToCart(ctx, "nuoc-mam", 2, "500ml"))

	lookup.mu.Lock()
	lookup.products["nuoc-mam"].Variants[0].IsActive = false
	lookup.mu.Unlock()

	report := c.CheckStock(ctx)
	assert.True(t, report.HasOutOfStock)
	assert.Equal(t, []string{"ヌックマム"}, report.OutOfStockItems)
}

func TestCheckStockAndCategoriesUseJapaneseNames(t *testing.T) {
	ctx := context.Background()
	lookup := newStubLookup(phoProduct())
	c := newTestCart(t, lookup, &stubStorage{}, WithMessages(MessagesVi))
	require.NoError(t, c.AddToCart(ctx, "pho", 2, ""))
	lookup.setStock("pho", 1)

	assert.Equal(t, []string{"フォー"}, c.CheckStock(ctx).OutOfStockItems)

	grouped := c.ItemsByCategory()
	assert.Len(t, grouped["麺類"], 1)
	assert.NotContains(t, grouped, "Mì")
}

// ClearCart dispatched while an AddToCart lookup is in flight does not cancel
// the add: when the lookup resolves, its AddItem is applied to the cleared
// cart. This is the current behaviour, kept on purpose; whether a stale
// response should be dropped is an open design question.
func TestClearDuringAddStillAppliesStaleResponse(t *testing.T) {
	defer goleak.VerifyNone(t)
	ctx := context.Background()

	lookup := newStubLookup(phoProduct())
	c := newTestCart(t, lookup, &stubStorage{})

	lookup.entered = make(chan struct{})
	lookup.release = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		done <- c.AddToCart(ctx, "pho", 1, "")
	}()

	<-lookup.entered
	assert.True(t, c.State().IsLoading)
	c.ClearCart(ctx)
	close(lookup.release)

	require.NoError(t, <-done)
	state := c.State()
	assert.Len(t, state.Items, 1)
	assert.Equal(t, 1, state.TotalItems)
}

func TestConcurrentAddsKeepTotalsConsistent(t *testing.T) {
	defer goleak.VerifyNone(t)
	ctx := context.Background()

	p := phoProduct()
	p.StockQuantity = 1000
	c := newTestCart(t, newStubLookup(p, fishSauceProduct()), &stubStorage{})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = c.AddToCart(ctx, "pho", 2, "")
		}()
	}
	wg.Wait()

	state := c.State()
	require.Len(t, state.Items, 1)
	assert.Equal(t, 40, state.TotalItems)
	assert.Equal(t, int64(40*450), state.TotalAmount)
}

func TestDerivedGetters(t *testing.T) {
	ctx := context.Background()
	c := newTestCart(t, newStubLookup(phoProduct(), fishSauceProduct()), &stubStorage{})
	require.NoError(t, c.AddToCart(ctx, "pho", 2, ""))
	require.NoError(t, c.AddToCart(ctx, "nuoc-mam", 1, "1l"))

	// 900 + 1400
	assert.Equal(t, int64(500), c.ShippingCost())
	assert.Equal(t, int64(2700), c.AmountForFreeShipping())
	assert.Equal(t, int64(2300+230+500), c.FinalTotal())
	assert.Equal(t, int64(2530), c.TaxIncludedAmount())

	stats := c.Stats()
	assert.Equal(t, Stats{ItemCount: 2, TotalItems: 3, TotalAmount: 2300}, stats)

	grouped := c.ItemsByCategory()
	assert.Len(t, grouped["麺類"], 1)
	assert.Len(t, grouped["調味料"], 1)

	export := c.Export()
	require.Len(t, export.Items, 2)
	assert.Equal(t, ExportItem{ProductID: "nuoc-mam", VariantID: "1l", Quantity: 1, UnitPrice: 1400, TotalPrice: 1400}, export.Items[1])
	assert.Equal(t, Summary{
		TotalItems:            3,
		Subtotal:              2300,
		Tax:                   230,
		Shipping:              500,
		Total:                 3030,
		FreeShippingThreshold: 5000,
		AmountForFreeShipping: 2700,
	}, export.Summary)

	assert.Zero(t, c.ItemQuantity("missing", ""))
	assert.Zero(t, c.ItemTotal("missing", ""))
	_, ok := c.ItemID("pho", "500ml")
	assert.False(t, ok)
}

func TestStateReturnsCopy(t *testing.T) {
	ctx := context.Background()
	c := newTestCart(t, newStubLookup(fishSauceProduct()), &stubStorage{})
	require.NoError(t, c.AddToCart(ctx, "nuoc-mam", 1, "1l"))

	state := c.State()
	state.Items[0].Quantity = 42
	state.Items[0].Variant.PriceModifier = 0

	again := c.State()
	assert.Equal(t, 1, again.Items[0].Quantity)
	assert.Equal(t, int64(600), again.Items[0].Variant.PriceModifier)
}
