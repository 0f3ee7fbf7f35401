package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/aaravmahajanofficial/storefront-checkout/internal/metrics"
	"github.com/aaravmahajanofficial/storefront-checkout/internal/models"
	repository "github.com/aaravmahajanofficial/storefront-checkout/internal/repositories"
)

type HydrationState int

const (
	Uninitialized HydrationState = iota
	Hydrating
	Ready
)

func (s HydrationState) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Hydrating:
		return "hydrating"
	case Ready:
		return "ready"
	}

	return "unknown"
}

// PersistenceAdapter mirrors a CartStore into a CartRecordStore. It hydrates
// the cart once and only then starts writing, so an empty cart never
// overwrites a saved one before it has been read.
type PersistenceAdapter struct {
	store  repository.CartRecordStore
	logger *slog.Logger

	mu      sync.Mutex
	state   HydrationState
	ctx     context.Context
	version uint64

	async        bool
	writeTimeout time.Duration
	wg           sync.WaitGroup

	writeMu sync.Mutex
	started uint64
}

type PersistenceOption func(*PersistenceAdapter)

// WithAsyncWrites moves writes off the caller's goroutine. Each write gets its
// own deadline and is not cancelled with the request.
func WithAsyncWrites(timeout time.Duration) PersistenceOption {
	return func(a *PersistenceAdapter) {
		a.async = true
		a.writeTimeout = timeout
	}
}

func NewPersistenceAdapter(store repository.CartRecordStore, logger *slog.Logger, opts ...PersistenceOption) *PersistenceAdapter {
	if logger == nil {
		logger = slog.Default()
	}

	a := &PersistenceAdapter{store: store, logger: logger, ctx: context.Background()}
	for _, opt := range opts {
		opt(a)
	}

	return a
}

func (a *PersistenceAdapter) State() HydrationState {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.state
}

// Hydrate loads the saved cart into cart and starts mirroring. Only the first
// call does anything. A missing or unreadable record leaves the cart as it is.
func (a *PersistenceAdapter) Hydrate(ctx context.Context, cart *CartStore) {
	a.mu.Lock()
	if a.state != Uninitialized {
		a.mu.Unlock()
		return
	}
	a.state = Hydrating
	a.mu.Unlock()

	items, err := a.store.Load(ctx)

	switch {
	case err == nil:
		cart.Restore(items)
		a.logger.Debug("Cart hydrated", slog.Int("lines", len(items)))
	case errors.Is(err, repository.ErrRecordNotFound):
		a.logger.Debug("No saved cart")
	default:
		metrics.CartPersistenceFailuresTotal.WithLabelValues("load").Inc()
		a.logger.Warn("Discarding unreadable cart record", slog.String("error", err.Error()))
	}

	a.mu.Lock()
	a.ctx = ctx
	a.state = Ready
	a.mu.Unlock()

	cart.OnChange(a.mirror)
}

// Discard starts mirroring without reading the saved record. It is used when
// the record is known to predate an order that emptied the cart.
func (a *PersistenceAdapter) Discard(ctx context.Context, cart *CartStore) {
	a.mu.Lock()
	if a.state != Uninitialized {
		a.mu.Unlock()
		return
	}
	a.ctx = ctx
	a.state = Ready
	a.mu.Unlock()

	a.logger.Debug("Ignoring cart record saved before the last order")
	cart.OnChange(a.mirror)
}

// Wait blocks until in-flight asynchronous writes have finished.
func (a *PersistenceAdapter) Wait() {
	a.wg.Wait()
}

func (a *PersistenceAdapter) mirror(items []models.CartLineItem) {
	a.mu.Lock()
	if a.state != Ready {
		a.mu.Unlock()
		return
	}
	a.version++
	version, ctx := a.version, a.ctx
	a.mu.Unlock()

	if !a.async {
		a.write(ctx, version, items)
		return
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()

		writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.writeTimeout)
		defer cancel()

		a.write(writeCtx, version, items)
	}()
}

func (a *PersistenceAdapter) write(ctx context.Context, version uint64, items []models.CartLineItem) {
	a.writeMu.Lock()
	defer a.writeMu.Unlock()

	// A newer state has already been attempted. It stays the latest even if
	// its save failed.
	if version <= a.started {
		return
	}
	a.started = version

	if err := a.store.Save(ctx, items); err != nil {
		metrics.CartPersistenceFailuresTotal.WithLabelValues("save").Inc()
		a.logger.Error("Failed to save cart record", slog.String("error", err.Error()), slog.Uint64("version", version))
	}
}
