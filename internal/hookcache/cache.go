package hookcache

import (
	"container/list"
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/crackerjack-go/crackerjack/internal/issue"
)

// Store is the persistence boundary a Cache may optionally delegate to once
// an entry falls out of (or is absent from) the in-memory tier. A nil Store
// makes the cache purely in-memory, bounded by TTL+LRU alone.
type Store interface {
	Get(ctx context.Context, key string) (*issue.CacheEntry, error)
	Put(ctx context.Context, entry *issue.CacheEntry) error
	Delete(ctx context.Context, key string) error
}

// Cache is the Hook Orchestrator's exclusively-owned content-addressed
// result cache: an in-memory map checked first, falling back to a
// persistent Store, with TTL expiry and LRU eviction bounding memory
// growth. Mutated only by the orchestrator (spec.md §5).
type Cache struct {
	mu         sync.Mutex
	entries    map[string]*list.Element // key -> node in lru
	lru        *list.List               // front = most recently used
	maxEntries int
	defaultTTL time.Duration
	store      Store
	log        *slog.Logger
}

type node struct {
	key   string
	entry *issue.CacheEntry
}

// New builds an in-memory+optional-persistent Cache. maxEntries <= 0 means
// unbounded (LRU eviction disabled); defaultTTL <= 0 means entries never
// expire by time (only by LRU pressure or explicit invalidation).
func New(maxEntries int, defaultTTL time.Duration, store Store) *Cache {
	return &Cache{
		entries:    make(map[string]*list.Element),
		lru:        list.New(),
		maxEntries: maxEntries,
		defaultTTL: defaultTTL,
		store:      store,
		log:        slog.Default(),
	}
}

// WithLogger attaches a logger used for write-event tracing; by default the
// cache logs through slog.Default().
func (c *Cache) WithLogger(log *slog.Logger) *Cache {
	if log != nil {
		c.log = log
	}
	return c
}

// Get returns the cached HookResult for key if present and unexpired. A
// miss in memory falls through to the persistent store (if configured);
// store corruption is treated as a miss per spec.md §7, not an error.
func (c *Cache) Get(ctx context.Context, key string) (issue.HookResult, bool) {
	now := time.Now()

	c.mu.Lock()
	if el, ok := c.entries[key]; ok {
		n := el.Value.(*node)
		if !n.entry.Expired(now) {
			c.lru.MoveToFront(el)
			result := n.entry.Result
			c.mu.Unlock()
			return result, true
		}
		c.removeLocked(el)
	}
	c.mu.Unlock()

	if c.store == nil {
		return issue.HookResult{}, false
	}

	entry, err := c.store.Get(ctx, key)
	if err != nil || entry == nil {
		return issue.HookResult{}, false
	}
	if entry.Expired(now) {
		_ = c.store.Delete(ctx, key)
		return issue.HookResult{}, false
	}

	c.mu.Lock()
	c.insertLocked(key, entry)
	c.mu.Unlock()

	return entry.Result, true
}

// Put inserts or refreshes the cached result for key. Per spec.md §4.3, the
// orchestrator never calls Put for a Timeout, HungKilled, or parse-failed
// result — Put itself does not re-check that policy, it trusts the caller.
func (c *Cache) Put(ctx context.Context, key, hookName string, result issue.HookResult, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	entry := &issue.CacheEntry{
		Key:       key,
		Hook:      hookName,
		CreatedAt: time.Now(),
		TTL:       ttl,
		Result:    result,
	}

	c.mu.Lock()
	c.insertLocked(key, entry)
	c.mu.Unlock()

	// debugID correlates this write across the in-memory insert and the
	// persistent store round-trip in log output; it is not part of the
	// cache key or the stored entry itself.
	debugID := uuid.NewString()
	c.log.Debug("hookcache put", "debug_id", debugID, "hook", hookName, "key", key, "status", result.Status)

	if c.store != nil {
		if err := c.store.Put(ctx, entry); err != nil {
			c.log.Debug("hookcache store put failed", "debug_id", debugID, "error", err)
		}
	}
}

// Invalidate removes key from both tiers unconditionally.
func (c *Cache) Invalidate(ctx context.Context, key string) {
	c.mu.Lock()
	if el, ok := c.entries[key]; ok {
		c.removeLocked(el)
	}
	c.mu.Unlock()

	if c.store != nil {
		_ = c.store.Delete(ctx, key)
	}
}

// Len reports how many entries currently sit in the in-memory tier.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) insertLocked(key string, entry *issue.CacheEntry) {
	if el, ok := c.entries[key]; ok {
		el.Value.(*node).entry = entry
		c.lru.MoveToFront(el)
		return
	}

	el := c.lru.PushFront(&node{key: key, entry: entry})
	c.entries[key] = el

	if c.maxEntries > 0 {
		for len(c.entries) > c.maxEntries {
			oldest := c.lru.Back()
			if oldest == nil {
				break
			}
			c.removeLocked(oldest)
		}
	}
}

func (c *Cache) removeLocked(el *list.Element) {
	n := el.Value.(*node)
	delete(c.entries, n.key)
	c.lru.Remove(el)
}
