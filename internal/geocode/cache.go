package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// cacheTTL bounds staleness of cached lookups; imports refresh daily at most.
const cacheTTL = 24 * time.Hour

// Cache is an optional Redis read-through cache for reverse lookups. A nil
// *Cache is valid and disables caching; Redis errors degrade to the DB path.
type Cache struct {
	rdb *redis.Client
}

// NewCache connects to Redis from a URL, or returns nil when url is empty.
func NewCache(url string) (*Cache, error) {
	if url == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return &Cache{rdb: redis.NewClient(opts)}, nil
}

// key rounds coordinates to 4 decimal places (~11 m), enough for boundary
// containment to be stable.
func key(lat, lon float64) string {
	return fmt.Sprintf("revgeo:%.4f:%.4f", lat, lon)
}

func (c *Cache) Get(ctx context.Context, lat, lon float64) (*ReverseResponse, bool) {
	if c == nil {
		return nil, false
	}
	data, err := c.rdb.Get(ctx, key(lat, lon)).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("[geocode] cache read error: %v", err)
		}
		return nil, false
	}
	var resp ReverseResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, false
	}
	return &resp, true
}

func (c *Cache) Set(ctx context.Context, lat, lon float64, resp *ReverseResponse) {
	if c == nil {
		return
	}
	data, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key(lat, lon), data, cacheTTL).Err(); err != nil {
		log.Printf("[geocode] cache write error: %v", err)
	}
}
