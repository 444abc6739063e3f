// Package cache provides a bounded, concurrency-safe, in-memory
// key/value cache with recency-based eviction and optional TTL expiry.
//
// Entries live in a hash index plus an intrusive doubly linked list
// ordered from most to least recently used; both lookups and evictions
// are amortized O(1). When the cache is full, inserting a new key evicts
// from the least-recent end.
//
// # Strategies
//
// Two store designs are available through Options.Strategy.
// StrategyLocked, the default, guards each store with a single RWMutex:
// reads that promote take the write lock, reads that do not (Contains,
// Peek, Keys, Len) share the read lock. StrategyConcurrent indexes
// entries in a sync.Map and guards only list surgery with a narrow
// mutex, so Get resolves misses, Contains and Len without blocking.
// The locked design is the safer default; the concurrent one pays off
// on read-heavy workloads with many cores.
//
// # Construction
//
//	c, err := cache.New(cache.Options[string, int]{Capacity: 1024})
//	if err != nil {
//		...
//	}
//	defer c.Close()
//
//	c.Set("answer", 42)
//	if v, ok := c.Get("answer"); ok {
//		...
//	}
//
// NewSharded spreads entries over many locked stores by key hash for
// lower lock contention; MustNew and MustNewSharded panic instead of
// returning an error, for configurations known good at compile time.
//
// # Expiry
//
// Options.DefaultTTL applies a lifetime to every Set and Add;
// SetWithTTL overrides it per entry. Expired entries are dropped lazily
// when Get touches them and in bulk by a background sweeper goroutine
// that runs every Options.SweepInterval. Shutdown (or Close) stops the
// sweeper and drains an in-flight pass before returning.
//
// # Policies
//
// Eviction order is pluggable through Options.Policy: policy/lru keeps
// classic least-recently-used order, policy/fifo evicts in pure
// insertion order, and policy/twoq adds scan resistance with a
// probationary queue. The zero value means LRU.
//
// # Observability
//
// Per-cache counters are always collected and returned by Stats. An
// Options.Metrics sink receives hit, miss, eviction and size signals as
// they happen; metrics/prom adapts the sink to Prometheus. OnEvict
// observes evicted entries, outside all cache locks.
package cache
