package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const searchCacheKeyPrefix = "positions:search:"

// SearchCache caches position search results in Redis. Reference data changes
// only on administrative reseeding, so a short TTL keeps staleness bounded
// without any invalidation machinery.
type SearchCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSearchCache(client *redis.Client, ttl time.Duration) *SearchCache {
	return &SearchCache{client: client, ttl: ttl}
}

func (c *SearchCache) key(filter SearchFilter) string {
	level := ""
	if filter.Level != nil {
		level = string(*filter.Level)
	}
	return searchCacheKeyPrefix + strings.ToLower(strings.Join([]string{filter.Country, level, filter.FreeText}, "|"))
}

// Get returns the cached results for a filter, or (nil, false) on a miss.
// Redis failures degrade to a miss; the cache is an optimization, not a
// source of truth.
func (c *SearchCache) Get(ctx context.Context, filter SearchFilter) ([]*Position, bool) {
	raw, err := c.client.Get(ctx, c.key(filter)).Bytes()
	if err != nil {
		return nil, false
	}
	var results []*Position
	if err := json.Unmarshal(raw, &results); err != nil {
		return nil, false
	}
	return results, true
}

func (c *SearchCache) Set(ctx context.Context, filter SearchFilter, results []*Position) error {
	raw, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("marshal search results: %w", err)
	}
	return c.client.Set(ctx, c.key(filter), raw, c.ttl).Err()
}
