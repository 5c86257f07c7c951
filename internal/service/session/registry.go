// Package session keeps one cart per shopper session.
package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"vietfood/internal/cart"
)

// StorageFactory returns the cart storage bound to one session.
type StorageFactory func(sessionID string) cart.Storage

type entry struct {
	ready    chan struct{}
	cart     *cart.Cart
	lastUsed time.Time
}

// Registry lazily builds and hydrates a cart for each session id. Carts not
// touched for longer than the idle TTL are dropped by Sweep; their stored
// snapshot survives and is reloaded on the next Get.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*entry

	lookup   cart.ProductLookup
	storage  StorageFactory
	logger   *zap.Logger
	idleTTL  time.Duration
	cartOpts []cart.Option
	now      func() time.Time
}

// NewRegistry builds a registry. An idleTTL <= 0 disables eviction.
func NewRegistry(lookup cart.ProductLookup, storage StorageFactory, logger *zap.Logger, idleTTL time.Duration, opts ...cart.Option) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		entries:  make(map[string]*entry),
		lookup:   lookup,
		storage:  storage,
		logger:   logger,
		idleTTL:  idleTTL,
		cartOpts: opts,
		now:      time.Now,
	}
}

// Get returns the cart for a session, loading it from storage the first time.
// A failed load still yields a usable, empty cart; the failure is reported
// through its state. Loading happens outside the registry lock, so only
// callers for the same session wait on it.
func (r *Registry) Get(ctx context.Context, sessionID string) *cart.Cart {
	r.mu.Lock()
	if e, ok := r.entries[sessionID]; ok {
		e.lastUsed = r.now()
		r.mu.Unlock()
		<-e.ready
		return e.cart
	}
	e := &entry{ready: make(chan struct{}), lastUsed: r.now()}
	r.entries[sessionID] = e
	r.mu.Unlock()

	e.cart = r.build(ctx, sessionID)
	close(e.ready)
	return e.cart
}

func (r *Registry) build(ctx context.Context, sessionID string) *cart.Cart {
	var store cart.Storage
	if r.storage != nil {
		store = r.storage(sessionID)
	}
	logger := r.logger.With(zap.String("session_id", sessionID))
	opts := append([]cart.Option{cart.WithLogger(logger)}, r.cartOpts...)
	c := cart.New(r.lookup, store, opts...)
	if err := c.Load(ctx); err != nil {
		logger.Warn("session cart started empty", zap.Error(err))
	}
	return c
}

// Forget drops the in-memory cart; the stored snapshot is left alone.
func (r *Registry) Forget(sessionID string) {
	r.mu.Lock()
	delete(r.entries, sessionID)
	r.mu.Unlock()
}

// Sweep forgets every loaded cart idle for longer than the idle TTL and
// returns how many were dropped.
func (r *Registry) Sweep() int {
	if r.idleTTL <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.idleTTL)

	r.mu.Lock()
	evicted := 0
	for id, e := range r.entries {
		select {
		case <-e.ready:
		default:
			continue
		}
		if e.lastUsed.Before(cutoff) {
			delete(r.entries, id)
			evicted++
		}
	}
	r.mu.Unlock()

	if evicted > 0 {
		r.logger.Debug("evicted idle carts", zap.Int("count", evicted))
	}
	return evicted
}

// Run sweeps every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	if r.idleTTL <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
