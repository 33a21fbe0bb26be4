// Package cache provides the bounded in-memory response cache used by
// the orchestrator. Entries are evicted least-recently-used when the
// cache is full and lazily expired after a fixed TTL.
package cache

import (
	"container/list"
	"sync"
	"sync/atomic"
	"time"

	"github.com/quillworks/quill-gateway/internal/types"
)

const (
	DefaultCapacity = 100
	DefaultTTL      = time.Hour
)

type entry struct {
	key       string
	response  *types.Response
	expiresAt time.Time
}

// Cache is an exact-match LRU response cache with per-entry TTL.
// Safe for concurrent use. Only successful responses are stored, so a
// transient failure never poisons subsequent identical requests.
type Cache struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	order    *list.List // front = most recently used
	items    map[string]*list.Element
	now      func() time.Time

	hits   atomic.Int64
	misses atomic.Int64
}

func New(capacity int, ttl time.Duration) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		capacity: capacity,
		ttl:      ttl,
		order:    list.New(),
		items:    make(map[string]*list.Element),
		now:      time.Now,
	}
}

// Get returns the cached response for key, refreshing its recency.
// An expired entry counts as a miss; it is removed on observation
// rather than by a background sweep.
func (c *Cache) Get(key string) (*types.Response, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		c.misses.Add(1)
		return nil, false
	}

	ent := el.Value.(*entry)
	if c.now().After(ent.expiresAt) {
		c.order.Remove(el)
		delete(c.items, key)
		c.misses.Add(1)
		return nil, false
	}

	c.order.MoveToFront(el)
	c.hits.Add(1)
	return ent.response, true
}

// Set stores a successful response under key, evicting the
// least-recently-used entry if the cache is full. Error responses are
// ignored.
func (c *Cache) Set(key string, resp *types.Response) {
	if resp == nil || resp.Failed() {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	expires := c.now().Add(c.ttl)
	if el, ok := c.items[key]; ok {
		ent := el.Value.(*entry)
		ent.response = resp
		ent.expiresAt = expires
		c.order.MoveToFront(el)
		return
	}

	if c.order.Len() >= c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.items, oldest.Value.(*entry).key)
		}
	}

	el := c.order.PushFront(&entry{key: key, response: resp, expiresAt: expires})
	c.items[key] = el
}

// Len returns the number of entries currently held, expired or not.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Stats holds cache performance counters.
type Stats struct {
	Entries int64
	Hits    int64
	Misses  int64
}

func (c *Cache) Stats() Stats {
	return Stats{
		Entries: int64(c.Len()),
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
	}
}
