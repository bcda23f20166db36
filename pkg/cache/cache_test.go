package cache

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/bastiangx/addrserve/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRUEviction(t *testing.T) {
	ctx := context.Background()
	c := NewLRU(2, 0)

	c.Set(ctx, "a", []byte("1"))
	c.Set(ctx, "b", []byte("2"))
	_, ok := c.Get(ctx, "a") // a becomes most recent
	require.True(t, ok)
	c.Set(ctx, "c", []byte("3"))

	_, ok = c.Get(ctx, "b")
	assert.False(t, ok, "least recently used entry is evicted")
	v, ok := c.Get(ctx, "a")
	assert.True(t, ok)
	assert.Equal(t, []byte("1"), v)

	c.Set(ctx, "a", []byte("9"))
	v, _ = c.Get(ctx, "a")
	assert.Equal(t, []byte("9"), v)

	stats := c.Stats()
	assert.Equal(t, 2, stats.Entries)
	assert.Equal(t, int64(3), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, "memory", stats.Backend)
}

func TestLRUExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewLRU(8, time.Minute)
	c.now = func() time.Time { return now }

	c.Set(ctx, "k", []byte("v"))
	_, ok := c.Get(ctx, "k")
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	_, ok = c.Get(ctx, "k")
	assert.False(t, ok)
	assert.Zero(t, c.Stats().Entries, "expired entries are dropped on read")
}

func TestLRUConcurrent(t *testing.T) {
	ctx := context.Background()
	c := NewLRU(64, time.Hour)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				key := fmt.Sprintf("k%d", i%100)
				c.Set(ctx, key, []byte{byte(g)})
				c.Get(ctx, key)
			}
		}(g)
	}
	wg.Wait()
	stats := c.Stats()
	assert.LessOrEqual(t, stats.Entries, 64)
	assert.Equal(t, int64(8*500), stats.Hits+stats.Misses)
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	c, err := New(ctx, config.CacheConfig{Enabled: false})
	require.NoError(t, err)
	assert.Nil(t, c)

	c, err = New(ctx, config.CacheConfig{Enabled: true, Backend: config.CacheMemory, Size: 4})
	require.NoError(t, err)
	assert.IsType(t, &LRU{}, c)

	_, err = New(ctx, config.CacheConfig{Enabled: true, Backend: "memcached"})
	assert.Error(t, err)

	_, err = New(ctx, config.CacheConfig{Enabled: true, Backend: config.CacheRedis})
	assert.Error(t, err, "redis needs an address")
}

func TestRedis(t *testing.T) {
	addr := os.Getenv(config.EnvRedisAddr)
	if addr == "" {
		t.Skip("set " + config.EnvRedisAddr + " to run against Redis")
	}
	ctx := context.Background()
	c, err := OpenRedis(ctx, addr, os.Getenv(config.EnvRedisPass), 0, time.Minute)
	require.NoError(t, err)
	defer c.Close()

	key := fmt.Sprintf("test-%d", time.Now().UnixNano())
	_, ok := c.Get(ctx, key)
	assert.False(t, ok)

	c.Set(ctx, key, []byte("value"))
	v, ok := c.Get(ctx, key)
	assert.True(t, ok)
	assert.Equal(t, []byte("value"), v)

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
}
