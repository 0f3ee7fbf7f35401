package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aaravmahajanofficial/storefront-checkout/internal/cache"
	"github.com/aaravmahajanofficial/storefront-checkout/internal/models"
)

// SessionCartStore keeps the cart server-side in the shared cache, keyed by
// the storefront session.
type SessionCartStore struct {
	cache cache.Cache
	key   string
	ttl   time.Duration
}

func NewSessionCartStore(c cache.Cache, sessionID string, ttl time.Duration) *SessionCartStore {
	return &SessionCartStore{cache: c, key: cache.Key(cache.CartKeyPrefix, sessionID), ttl: ttl}
}

func (s *SessionCartStore) Load(ctx context.Context) ([]models.CartLineItem, error) {
	var raw json.RawMessage

	found, err := s.cache.Get(ctx, s.key, &raw)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart record: %w", err)
	}

	if !found {
		return nil, ErrRecordNotFound
	}

	return DecodeRecord(raw)
}

func (s *SessionCartStore) Save(ctx context.Context, items []models.CartLineItem) error {
	data, err := EncodeRecord(items)
	if err != nil {
		return err
	}

	return s.cache.Set(ctx, s.key, json.RawMessage(data), s.ttl)
}
