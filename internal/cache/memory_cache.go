package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aaravmahajanofficial/storefront-checkout/internal/config"
	lru "github.com/hashicorp/golang-lru/v2"
)

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// memoryCache is the single-instance fallback used when Redis is not
// configured. Values are stored JSON-encoded so both backends behave alike.
type memoryCache struct {
	entries *lru.Cache[string, memoryEntry]
	cfg     *config.CacheConfig
	now     func() time.Time
}

func NewMemoryCache(cfg *config.CacheConfig) (Cache, error) {
	entries, err := lru.New[string, memoryEntry](cfg.MemoryMaxEntries)
	if err != nil {
		return nil, fmt.Errorf("failed to create memory cache: %w", err)
	}

	return &memoryCache{entries: entries, cfg: cfg, now: time.Now}, nil
}

func (m *memoryCache) Get(_ context.Context, key string, value any) (bool, error) {
	entry, ok := m.entries.Get(key)
	if !ok {
		return false, nil
	}

	if !m.now().Before(entry.expiresAt) {
		m.entries.Remove(key)
		return false, nil
	}

	if err := json.Unmarshal(entry.data, value); err != nil {
		return false, fmt.Errorf("failed to unmarshal cache data for key %s: %w", key, err)
	}

	return true, nil
}

func (m *memoryCache) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value for key %s: %w", key, err)
	}

	if ttl <= 0 {
		ttl = m.cfg.DefaultTTL
	}

	m.entries.Add(key, memoryEntry{data: data, expiresAt: m.now().Add(ttl)})

	return nil
}

func (m *memoryCache) Delete(_ context.Context, key string) error {
	m.entries.Remove(key)
	return nil
}

func (m *memoryCache) Close() error {
	m.entries.Purge()
	return nil
}
