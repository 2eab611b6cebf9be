// Package cardcache stores previously resolved cards so repeat submissions
// skip the remote lookup.
//
// The whole cache is one JSON blob under a single storage key, keyed inside
// by lowercased card name. The cache is best-effort by contract: a store
// that cannot be read behaves like an empty cache, and failed writes are
// swallowed. The system stays correct without it, just slower.
package cardcache

import (
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/mtgproxy/proxygen/internal/cards"
	"github.com/mtgproxy/proxygen/internal/storage"
)

// StorageKey is the single logical key the serialized cache lives under.
const StorageKey = "mtg-proxy-card-cache"

// DefaultTTL is how long a cached record stays fresh. Expiry is checked
// lazily at read time; there is no background sweep.
const DefaultTTL = 24 * time.Hour

// entry pairs a card record with the time it was cached.
type entry struct {
	Card     cards.Card `json:"card"`
	CachedAt time.Time  `json:"cachedAt"`
}

// Cache is a TTL-bounded card store over a persistence substrate. All
// methods are safe for concurrent use.
type Cache struct {
	store  storage.Store
	logger *slog.Logger
	ttl    time.Duration
	now    func() time.Time

	mu sync.Mutex
	// mem shadows the persisted blob so one resolution run does not
	// re-read the store per lookup. Writes go through it; Invalidate
	// drops it.
	mem    map[string]entry
	loaded bool
}

// Option configures a Cache.
type Option func(*Cache)

// WithTTL overrides the freshness window.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) { c.ttl = ttl }
}

// WithClock overrides the time source. Tests use it to cross the TTL
// boundary deterministically.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// New creates a cache over the given store.
func New(store storage.Store, logger *slog.Logger, opts ...Option) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Cache{
		store:  store,
		logger: logger,
		ttl:    DefaultTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetMany returns the fresh cached records for the given names, keyed by
// lowercased name. Missing and expired entries are simply omitted; expired
// entries are purged on the way out.
func (c *Cache) GetMany(names []string) map[string]cards.Card {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.load()

	hits := make(map[string]cards.Card)
	purged := false
	now := c.now()

	for _, name := range names {
		key := strings.ToLower(name)
		e, ok := c.mem[key]
		if !ok {
			continue
		}
		if now.Sub(e.CachedAt) > c.ttl {
			delete(c.mem, key)
			purged = true
			continue
		}
		hits[key] = e.Card
	}

	if purged {
		c.persist()
	}

	return hits
}

// Put stores the given cards, overwriting existing entries for the same
// names and refreshing their timestamps. Quantity is call-site-specific and
// is stripped before storing.
func (c *Cache) Put(resolved []cards.ResolvedCard) {
	if len(resolved) == 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.load()

	now := c.now()
	for _, r := range resolved {
		c.mem[strings.ToLower(r.Name)] = entry{Card: r.Card, CachedAt: now}
	}

	c.persist()
}

// Invalidate drops the in-memory shadow so the next access re-reads the
// store. Used between independent test scenarios.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mem = nil
	c.loaded = false
}

// load populates the shadow from the store. Unreadable or corrupt state is
// treated as an empty cache.
func (c *Cache) load() {
	if c.loaded {
		return
	}
	c.mem = make(map[string]entry)
	c.loaded = true

	raw, ok, err := c.store.Get(StorageKey)
	if err != nil {
		c.logger.Warn("card cache read failed, starting empty", "error", err)
		return
	}
	if !ok {
		return
	}
	if err := json.Unmarshal(raw, &c.mem); err != nil {
		c.logger.Warn("card cache corrupt, starting empty", "error", err)
		c.mem = make(map[string]entry)
	}
}

// persist writes the shadow back to the store. Failures are swallowed.
func (c *Cache) persist() {
	raw, err := json.Marshal(c.mem)
	if err != nil {
		c.logger.Warn("card cache serialization failed", "error", err)
		return
	}
	if err := c.store.Set(StorageKey, raw); err != nil {
		c.logger.Warn("card cache write failed", "error", err)
	}
}
