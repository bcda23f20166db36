package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "addrserve:parse:"

// Redis shares parse results between server processes.
type Redis struct {
	rc  *redis.Client
	ttl time.Duration
	counters
}

// OpenRedis connects to addr and checks it answers.
func OpenRedis(ctx context.Context, addr, password string, db int, ttl time.Duration) (*Redis, error) {
	if addr == "" {
		return nil, errors.New("redis address is empty")
	}
	rc := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	if err := rc.Ping(ctx).Err(); err != nil {
		rc.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	log.Debugf("Redis cache connected: addr=%s db=%d", addr, db)
	return NewRedis(rc, ttl), nil
}

// NewRedis wraps an existing client.
func NewRedis(rc *redis.Client, ttl time.Duration) *Redis {
	return &Redis{rc: rc, ttl: ttl}
}

func (c *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	b, err := c.rc.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warnf("Redis get failed: %v", err)
		}
		c.record(false)
		return nil, false
	}
	c.record(true)
	return b, true
}

// Set stores value. Failures are logged; the cache is best effort.
func (c *Redis) Set(ctx context.Context, key string, value []byte) {
	if err := c.rc.Set(ctx, keyPrefix+key, value, c.ttl).Err(); err != nil {
		log.Warnf("Redis set failed: %v", err)
	}
}

func (c *Redis) Stats() Stats {
	return Stats{
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Entries: -1,
		Backend: "redis",
	}
}

func (c *Redis) Close() error { return c.rc.Close() }
