// Package qcache caches search results in Redis, keyed by the query terms
// and limit. Concurrent identical lookups are collapsed through singleflight
// so only one of them computes. Every index mutation invalidates the whole
// keyspace; correctness beats cache efficiency for a corpus this small.
package qcache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/kgoto/aliasearch/pkg/config"
	"github.com/kgoto/aliasearch/pkg/metrics"
	pkgredis "github.com/kgoto/aliasearch/pkg/redis"
	"golang.org/x/sync/singleflight"
)

const keyPrefix = "search:"

type Cache struct {
	client  *pkgredis.Client
	cfg     config.RedisConfig
	group   singleflight.Group
	logger  *slog.Logger
	metrics *metrics.Metrics
	hits    atomic.Int64
	misses  atomic.Int64
}

func New(client *pkgredis.Client, cfg config.RedisConfig, m *metrics.Metrics) *Cache {
	return &Cache{
		client:  client,
		cfg:     cfg,
		logger:  slog.Default().With("component", "query-cache"),
		metrics: m,
	}
}

// GetOrCompute returns the cached result for the query, or runs compute and
// stores its result. The second return reports a cache hit.
func (c *Cache) GetOrCompute(ctx context.Context, terms []string, limit int, compute func() ([]string, error)) ([]string, bool, error) {
	key := c.buildKey(terms, limit)

	if names, ok := c.get(ctx, key); ok {
		c.hit()
		return names, true, nil
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		names, err := compute()
		if err != nil {
			return nil, err
		}
		c.set(ctx, key, names)
		return names, nil
	})
	if err != nil {
		return nil, false, err
	}
	c.miss()
	return v.([]string), false, nil
}

// Invalidate drops every cached search result.
func (c *Cache) Invalidate(ctx context.Context) {
	deleted, err := c.client.FlushByPattern(ctx, keyPrefix+"*")
	if err != nil {
		c.logger.Error("cache invalidation failed", "error", err)
		return
	}
	if deleted > 0 {
		c.logger.Debug("query cache invalidated", "keys", deleted)
	}
}

// Stats returns the hit and miss counters.
func (c *Cache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *Cache) get(ctx context.Context, key string) ([]string, bool) {
	data, err := c.client.Get(ctx, key)
	if err != nil {
		if !pkgredis.IsNilError(err) {
			c.logger.Error("cache get failed", "key", key, "error", err)
		}
		return nil, false
	}
	var names []string
	if err := json.Unmarshal([]byte(data), &names); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		return nil, false
	}
	return names, true
}

func (c *Cache) set(ctx context.Context, key string, names []string) {
	data, err := json.Marshal(names)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, key, data, c.cfg.CacheTTL); err != nil {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

func (c *Cache) hit() {
	c.hits.Add(1)
	if c.metrics != nil {
		c.metrics.CacheHitsTotal.Inc()
	}
}

func (c *Cache) miss() {
	c.misses.Add(1)
	if c.metrics != nil {
		c.metrics.CacheMissesTotal.Inc()
	}
}

func (c *Cache) buildKey(terms []string, limit int) string {
	sum := sha256.Sum256([]byte(strings.Join(terms, "\x00")))
	return fmt.Sprintf("%s%x:%d", keyPrefix, sum[:8], limit)
}
