package cache

import (
	"container/list"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tripwise-ai/tripwise/pkg/infra/prometheus"
)

const DefaultMaxEntries = 10_000

// Stats are process-wide monotonic counters; there is no reset operation.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
	Sets      uint64
}

type entry struct {
	namespace string
	key       string
	value     interface{}
	expiresAt time.Time
}

// Cache is a namespaced key/value store with per-entry TTL and a bounded
// capacity. Eviction removes the least-recently-(re)inserted entry: a Set
// pushes its entry to the back of the order, and so does a Get hit, so the
// front of the list is always the logically oldest key.
type Cache struct {
	maxEntries int
	now        func() time.Time

	mu      sync.Mutex
	entries map[string]*list.Element
	order   *list.List

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
	sets      atomic.Uint64
}

type Opts struct {
	TimeProvider func() time.Time
	MaxEntries   int
}

func New(opts *Opts) *Cache {
	now := time.Now
	maxEntries := DefaultMaxEntries
	if opts != nil {
		if opts.TimeProvider != nil {
			now = opts.TimeProvider
		}
		if opts.MaxEntries > 0 {
			maxEntries = opts.MaxEntries
		}
	}
	return &Cache{
		maxEntries: maxEntries,
		now:        now,
		entries:    make(map[string]*list.Element),
		order:      list.New(),
	}
}

func compositeKey(namespace, key string) string {
	return namespace + "\x00" + key
}

// Get returns the value stored under (namespace, key). An expired entry is
// treated exactly like a miss and removed. A hit re-inserts the entry at the
// back of the eviction order.
func (c *Cache) Get(namespace, key string) (interface{}, bool) {
	ck := compositeKey(namespace, key)

	c.mu.Lock()
	el, ok := c.entries[ck]
	if !ok {
		c.mu.Unlock()
		c.misses.Add(1)
		prometheus.CacheOperations.WithLabelValues("miss").Inc()
		return nil, false
	}
	e, ok := el.Value.(*entry)
	if !ok || c.now().After(e.expiresAt) {
		c.order.Remove(el)
		delete(c.entries, ck)
		c.mu.Unlock()
		c.misses.Add(1)
		prometheus.CacheOperations.WithLabelValues("miss").Inc()
		return nil, false
	}
	c.order.MoveToBack(el)
	value := e.value
	c.mu.Unlock()

	c.hits.Add(1)
	prometheus.CacheOperations.WithLabelValues("hit").Inc()
	return value, true
}

// Set stores value under (namespace, key) for ttl. When the store is full it
// evicts from the front of the order until there is room.
func (c *Cache) Set(namespace, key string, value interface{}, ttl time.Duration) {
	ck := compositeKey(namespace, key)
	expiresAt := c.now().Add(ttl)

	c.mu.Lock()
	if el, ok := c.entries[ck]; ok {
		if e, ok := el.Value.(*entry); ok {
			e.value = value
			e.expiresAt = expiresAt
		}
		c.order.MoveToBack(el)
		c.mu.Unlock()
		c.sets.Add(1)
		prometheus.CacheOperations.WithLabelValues("set").Inc()
		return
	}

	for len(c.entries) >= c.maxEntries {
		c.evictOldestLocked()
	}

	el := c.order.PushBack(&entry{
		namespace: namespace,
		key:       key,
		value:     value,
		expiresAt: expiresAt,
	})
	c.entries[ck] = el
	c.mu.Unlock()

	c.sets.Add(1)
	prometheus.CacheOperations.WithLabelValues("set").Inc()
}

// ClearNamespace drops every entry in namespace and returns how many were
// removed.
func (c *Cache) ClearNamespace(namespace string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for ck, el := range c.entries {
		if strings.HasPrefix(ck, namespace+"\x00") {
			c.order.Remove(el)
			delete(c.entries, ck)
			removed++
		}
	}
	return removed
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) Stats() Stats {
	return Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
		Sets:      c.sets.Load(),
	}
}

func (c *Cache) evictOldestLocked() {
	el := c.order.Front()
	if el == nil {
		return
	}
	if e, ok := el.Value.(*entry); ok {
		delete(c.entries, compositeKey(e.namespace, e.key))
	}
	c.order.Remove(el)
	c.evictions.Add(1)
	prometheus.CacheOperations.WithLabelValues("eviction").Inc()
}
