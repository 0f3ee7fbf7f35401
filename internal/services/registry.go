package service

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// CheckoutRegistry holds the in-progress checkout of each session. Idle
// checkouts expire and the oldest are evicted once the registry is full.
type CheckoutRegistry struct {
	sessions *expirable.LRU[string, *Checkout]
	carts    *CartLocks
}

func NewCheckoutRegistry(size int, ttl time.Duration) *CheckoutRegistry {
	return &CheckoutRegistry{
		sessions: expirable.NewLRU[string, *Checkout](size, nil, ttl),
		carts:    NewCartLocks(),
	}
}

func (r *CheckoutRegistry) Get(sessionID string) (*Checkout, bool) {
	return r.sessions.Get(sessionID)
}

func (r *CheckoutRegistry) Put(sessionID string, checkout *Checkout) {
	r.sessions.Add(sessionID, checkout)
}

func (r *CheckoutRegistry) Remove(sessionID string) {
	r.sessions.Remove(sessionID)
}

func (r *CheckoutRegistry) IsSubmitting(sessionID string) bool {
	checkout, ok := r.sessions.Peek(sessionID)
	return ok && checkout.IsSubmitting()
}

// LockCart takes the session's cart lock for a change to the cart. While an
// order is being placed it fails at once instead of waiting for the order.
func (r *CheckoutRegistry) LockCart(ctx context.Context, sessionID string) (*CartLease, error) {
	return r.carts.Acquire(ctx, sessionID, func() error {
		if r.IsSubmitting(sessionID) {
			return submissionInProgressError()
		}
		return nil
	})
}
