package service

import (
	"context"
	"fmt"
	"time"

	"github.com/aaravmahajanofficial/storefront-checkout/internal/cache"
)

const ShippingDraftForm = "checkout-shipping"

// DraftStore keeps half-filled form state, scoped by form and by owner
// (usually the session), so a buyer can pick up where they left off.
type DraftStore struct {
	cache cache.Cache
	ttl   time.Duration
}

func NewDraftStore(c cache.Cache, ttl time.Duration) *DraftStore {
	return &DraftStore{cache: c, ttl: ttl}
}

func (d *DraftStore) Save(ctx context.Context, form, scope string, value any) error {
	if err := d.cache.Set(ctx, draftKey(form, scope), value, d.ttl); err != nil {
		return fmt.Errorf("failed to save %s draft: %w", form, err)
	}

	return nil
}

// Load reports whether a draft was found and decodes it into dest.
func (d *DraftStore) Load(ctx context.Context, form, scope string, dest any) (bool, error) {
	found, err := d.cache.Get(ctx, draftKey(form, scope), dest)
	if err != nil {
		return false, fmt.Errorf("failed to load %s draft: %w", form, err)
	}

	return found, nil
}

func (d *DraftStore) Clear(ctx context.Context, form, scope string) error {
	if err := d.cache.Delete(ctx, draftKey(form, scope)); err != nil {
		return fmt.Errorf("failed to clear %s draft: %w", form, err)
	}

	return nil
}

func draftKey(form, scope string) string {
	return cache.Key(cache.DraftKeyPrefix, form+":"+scope)
}
