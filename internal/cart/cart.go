package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"vietfood/internal/domain"
)

const defaultStockCheckConcurrency = 4

var errNoLookup = errors.New("product lookup not configured")

// Cart bridges the pure reducer to the product lookup and the storage.
// One Cart is built per shopper session and passed to whoever needs it.
//
// Transitions are serialized by a mutex, but lookups run outside it: a
// mutation dispatched while AddToCart is waiting on the lookup is applied
// immediately, and the AddToCart result is applied afterwards against
// whatever the cart holds by then.
type Cart struct {
	mu    sync.Mutex
	state State

	lookup   ProductLookup
	storage  Storage
	logger   *zap.Logger
	newID    func() string
	messages Messages

	stockCheckConcurrency int
}

type Option func(*Cart)

func WithLogger(logger *zap.Logger) Option {
	return func(c *Cart) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithIDGenerator overrides how new line item ids are minted.
func WithIDGenerator(fn func() string) Option {
	return func(c *Cart) {
		if fn != nil {
			c.newID = fn
		}
	}
}

func WithMessages(m Messages) Option {
	return func(c *Cart) { c.messages = m }
}

// WithStockCheckConcurrency bounds the number of lookups CheckStock runs at once.
func WithStockCheckConcurrency(n int) Option {
	return func(c *Cart) {
		if n > 0 {
			c.stockCheckConcurrency = n
		}
	}
}

func New(lookup ProductLookup, storage Storage, opts ...Option) *Cart {
	c := &Cart{
		state:                 State{Items: []LineItem{}},
		lookup:                lookup,
		storage:               storage,
		logger:                zap.NewNop(),
		newID:                 uuid.NewString,
		messages:              MessagesJa,
		stockCheckConcurrency: defaultStockCheckConcurrency,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns a copy of the current state.
func (c *Cart) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Messages returns the localised catalog the cart writes into State.Error.
func (c *Cart) Messages() Messages {
	return c.messages
}

// Load hydrates the cart from storage. A failure leaves the cart as it was
// and records the load error message.
func (c *Cart) Load(ctx context.Context) error {
	if c.storage == nil {
		return nil
	}
	snap, err := c.storage.Load(ctx)
	if err != nil {
		c.logger.Error("failed to load cart from storage", zap.Error(err))
		c.Dispatch(ctx, SetError{Message: c.messages.LoadFailed})
		return fmt.Errorf("load cart: %w", err)
	}
	if snap == nil {
		return nil
	}
	c.mu.Lock()
	c.state = Reduce(c.state, SetItems{Items: snap.Items})
	c.mu.Unlock()
	c.logger.Debug("cart hydrated", zap.Int("items", len(snap.Items)))
	return nil
}

// Dispatch applies an action and persists the items when they may have changed.
func (c *Cart) Dispatch(ctx context.Context, action Action) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.applyLocked(ctx, action)
	return c.state.clone()
}

func (c *Cart) applyLocked(ctx context.Context, action Action) {
	c.state = Reduce(c.state, action)
	if affectsItems(action) {
		c.persistLocked(ctx)
	}
}

// persistLocked is best effort: a failed save is logged and the in-memory
// state is kept.
func (c *Cart) persistLocked(ctx context.Context) {
	if c.storage == nil {
		return
	}
	snap := Snapshot{Items: cloneItems(c.state.Items)}
	if err := c.storage.Save(ctx, snap); err != nil {
		c.logger.Warn("failed to save cart to storage", zap.Error(err), zap.Int("items", len(snap.Items)))
	}
}

// AddToCart validates the product against live stock and adds it. On failure
// the error is both returned and recorded in State().Error; items are left
// untouched.
func (c *Cart) AddToCart(ctx context.Context, productID string, quantity int, variantID string) error {
	if err := validateQuantity(quantity, MinQuantity); err != nil {
		return c.fail(ctx, productID, err)
	}

	c.Dispatch(ctx, SetError{})
	c.Dispatch(ctx, SetLoading{Loading: true})

	product, variant, err := c.resolve(ctx, productID, variantID)
	if err != nil {
		return c.fail(ctx, productID, err)
	}

	available := product.StockQuantity
	if variant != nil {
		available = variant.StockQuantity
	}

	c.mu.Lock()
	existing := 0
	if item, ok := findItem(c.state.Items, productID, variantID); ok {
		existing = item.Quantity
	}
	if available < quantity+existing {
		c.mu.Unlock()
		return c.fail(ctx, productID, &InsufficientStockError{
			ProductID: productID,
			VariantID: variantID,
			Requested: quantity + existing,
			Available: available,
		})
	}
	c.applyLocked(ctx, AddItem{
		LineItemID: c.newID(),
		ProductID:  productID,
		VariantID:  variantID,
		Quantity:   quantity,
		Product:    snapshotProduct(product),
		Variant:    snapshotVariant(variant),
	})
	c.applyLocked(ctx, SetLoading{Loading: false})
	c.mu.Unlock()

	c.logger.Info("added to cart",
		zap.String("product_id", productID),
		zap.String("variant_id", variantID),
		zap.Int("quantity", quantity),
	)
	return nil
}

// AddRequest is one entry for AddMultipleToCart.
type AddRequest struct {
	ProductID string `json:"productId"`
	VariantID string `json:"productVariantId,omitempty"`
	Quantity  int    `json:"quantity"`
}

// AddMultipleToCart attempts every entry in order. Successful entries stay in
// the cart; the failures are joined into the returned error.
func (c *Cart) AddMultipleToCart(ctx context.Context, reqs []AddRequest) error {
	var errs []error
	for _, req := range reqs {
		if err := c.AddToCart(ctx, req.ProductID, req.Quantity, req.VariantID); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (c *Cart) UpdateQuantity(ctx context.Context, lineItemID string, quantity int) {
	c.Dispatch(ctx, UpdateQuantity{LineItemID: lineItemID, Quantity: quantity})
}

func (c *Cart) RemoveFromCart(ctx context.Context, lineItemID string) {
	c.Dispatch(ctx, RemoveItem{LineItemID: lineItemID})
}

func (c *Cart) ClearCart(ctx context.Context) {
	c.Dispatch(ctx, ClearCart{})
}

func (c *Cart) resolve(ctx context.Context, productID, variantID string) (*domain.Product, *domain.Variant, error) {
	if c.lookup == nil {
		return nil, nil, &LookupError{ProductID: productID, Err: errNoLookup}
	}
	product, err := c.lookup.FetchProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, &NotFoundError{ProductID: productID, VariantID: variantID}
		}
		return nil, nil, &LookupError{ProductID: productID, Err: err}
	}
	if product == nil || !product.IsActive {
		return nil, nil, &NotFoundError{ProductID: productID, VariantID: variantID}
	}
	if variantID == "" {
		return product, nil, nil
	}
	variant, ok := product.ActiveVariant(variantID)
	if !ok {
		return nil, nil, &NotFoundError{ProductID: productID, VariantID: variantID}
	}
	return product, variant, nil
}

func (c *Cart) fail(ctx context.Context, productID string, err error) error {
	c.logger.Warn("failed to add to cart", zap.String("product_id", productID), zap.Error(err))
	c.Dispatch(ctx, SetError{Message: c.messages.For(err)})
	return err
}
