package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// LRU is an in-process cache with a fixed capacity and per-entry TTL.
type LRU struct {
	mu    sync.Mutex
	cap   int
	ttl   time.Duration
	order *list.List
	items map[string]*list.Element
	now   func() time.Time
	counters
}

type entry struct {
	key     string
	value   []byte
	expires time.Time
}

// NewLRU returns an LRU holding at most capacity entries. A ttl <= 0 keeps
// entries until they are evicted.
func NewLRU(capacity int, ttl time.Duration) *LRU {
	if capacity <= 0 {
		capacity = 1
	}
	return &LRU{
		cap:   capacity,
		ttl:   ttl,
		order: list.New(),
		items: make(map[string]*list.Element, capacity),
		now:   time.Now,
	}
}

func (c *LRU) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.items[key]; ok {
		it := e.Value.(*entry)
		if it.expires.IsZero() || c.now().Before(it.expires) {
			c.order.MoveToFront(e)
			c.record(true)
			return it.value, true
		}
		c.order.Remove(e)
		delete(c.items, key)
	}
	c.record(false)
	return nil, false
}

func (c *LRU) Set(_ context.Context, key string, value []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var expires time.Time
	if c.ttl > 0 {
		expires = c.now().Add(c.ttl)
	}
	if e, ok := c.items[key]; ok {
		e.Value = &entry{key: key, value: value, expires: expires}
		c.order.MoveToFront(e)
		return
	}
	c.items[key] = c.order.PushFront(&entry{key: key, value: value, expires: expires})
	for c.order.Len() > c.cap {
		back := c.order.Back()
		delete(c.items, back.Value.(*entry).key)
		c.order.Remove(back)
	}
}

func (c *LRU) Stats() Stats {
	c.mu.Lock()
	n := c.order.Len()
	c.mu.Unlock()
	return Stats{
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Entries: n,
		Backend: "memory",
	}
}

func (c *LRU) Close() error { return nil }
