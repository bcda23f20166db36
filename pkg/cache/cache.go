// Package cache stores encoded parse results keyed by the raw address text.
// Parsing is deterministic for a loaded catalog, so entries only expire to
// bound memory or to pick up a reloaded catalog.
package cache

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/bastiangx/addrserve/pkg/config"
)

// Cache is safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte)
	Stats() Stats
	Close() error
}

// Stats counts lookups since the cache was created.
type Stats struct {
	Hits    int64  `msgpack:"hits" json:"hits"`
	Misses  int64  `msgpack:"misses" json:"misses"`
	Entries int    `msgpack:"entries" json:"entries"`
	Backend string `msgpack:"backend" json:"backend"`
}

type counters struct {
	hits   atomic.Int64
	misses atomic.Int64
}

func (c *counters) record(hit bool) {
	if hit {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
}

// New returns the cache described by cfg, or nil when caching is disabled.
func New(ctx context.Context, cfg config.CacheConfig) (Cache, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	ttl := time.Duration(cfg.TTLSeconds) * time.Second
	switch cfg.Backend {
	case config.CacheMemory, "":
		return NewLRU(cfg.Size, ttl), nil
	case config.CacheRedis:
		rc, err := OpenRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, ttl)
		if err != nil {
			return nil, err
		}
		return rc, nil
	}
	return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
}
