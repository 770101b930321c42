package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gel-tracker/internal/core/cache"
	"gel-tracker/internal/features/tracking/domain"
)

const resultKeyPrefix = "result:"

// ResultCache stores completed lookups as JSON in a cache.Cache.
type ResultCache struct {
	store cache.Cache
}

// NewResultCache creates a new ResultCache.
func NewResultCache(store cache.Cache) *ResultCache {
	return &ResultCache{store: store}
}

// Get returns the cached result for trackingCode, or nil on a miss.
func (c *ResultCache) Get(ctx context.Context, trackingCode string) (*domain.ScrapeResult, error) {
	data, err := c.store.Get(ctx, resultKeyPrefix+trackingCode)
	if errors.Is(err, cache.ErrCacheMiss) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var result domain.ScrapeResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to decode cached result: %w", err)
	}
	return &result, nil
}

// Save stores result for trackingCode. The cached flag and the page snippet
// are never persisted.
func (c *ResultCache) Save(ctx context.Context, trackingCode string, result *domain.ScrapeResult, ttl time.Duration) error {
	stored := *result
	stored.Cached = false
	stored.RawTextSnippet = ""

	data, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	return c.store.Set(ctx, resultKeyPrefix+trackingCode, data, ttl)
}
