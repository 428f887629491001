package ratetable

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/quotelab/backend-quotes/internal/pricing"
)

// Cache keeps decoded rate-table snapshots in Redis so the quoting hot path
// rarely touches Postgres. Snapshots are immutable per version, so cached
// entries never need invalidation; only the "latest" pointer has a TTL.
type Cache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewCache constructs a snapshot cache. A nil client degrades every
// operation to a miss.
func NewCache(client *redis.Client, prefix string, ttl time.Duration) *Cache {
	return &Cache{client: client, prefix: prefix, ttl: ttl}
}

func (c *Cache) versionKey(version int64) string {
	return fmt.Sprintf("%s:ratetable:v%d", c.prefix, version)
}

func (c *Cache) latestKey() string {
	return fmt.Sprintf("%s:ratetable:latest", c.prefix)
}

// GetVersion returns the cached snapshot for a version, or nil on a miss.
func (c *Cache) GetVersion(ctx context.Context, version int64) (*pricing.Table, error) {
	if c == nil || c.client == nil {
		return nil, nil
	}
	data, err := c.client.Get(ctx, c.versionKey(version)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	var table pricing.Table
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, err
	}
	return &table, nil
}

// LatestVersion returns the cached latest-version pointer, or 0 on a miss.
func (c *Cache) LatestVersion(ctx context.Context) (int64, error) {
	if c == nil || c.client == nil {
		return 0, nil
	}
	version, err := c.client.Get(ctx, c.latestKey()).Int64()
	if err != nil {
		if err == redis.Nil {
			return 0, nil
		}
		return 0, err
	}
	return version, nil
}

// Store caches a snapshot under its version and refreshes the latest
// pointer when the snapshot is newer than what the pointer records.
func (c *Cache) Store(ctx context.Context, table *pricing.Table) error {
	if c == nil || c.client == nil || table == nil {
		return nil
	}
	data, err := json.Marshal(table)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, c.versionKey(table.Version), data, 0).Err(); err != nil {
		return err
	}
	current, err := c.LatestVersion(ctx)
	if err != nil {
		return err
	}
	if table.Version >= current {
		return c.client.Set(ctx, c.latestKey(), table.Version, c.ttl).Err()
	}
	return nil
}
