package cache

import (
	"context"
	"time"
)

// Cache is a bounded, in-memory key/value cache with recency-based
// eviction and optional TTL expiry. All methods are safe for concurrent
// use; the typical cost of an operation is amortized O(1).
//
// Methods taking a key panic on a nil interface-typed key, and Set, Add
// and SetWithTTL panic on a nil interface-typed value. Zero values of
// concrete key and value types are always valid.
type Cache[K comparable, V any] interface {
	// Get returns the value for k and whether it was present. A hit
	// counts as a use and promotes the entry per the eviction policy.
	// An entry whose TTL has passed is removed and reported as a miss.
	Get(k K) (V, bool)

	// Set inserts or updates k with v, applying DefaultTTL if one is
	// configured. Updating promotes the entry; inserting may evict from
	// the least-recent end to keep the resident count within capacity.
	Set(k K, v V)

	// SetWithTTL is Set with a per-entry TTL. A non-positive ttl stores
	// the entry without an expiry deadline.
	SetWithTTL(k K, v V, ttl time.Duration)

	// Add inserts k only if it is absent, and reports whether it
	// inserted. A resident entry whose TTL has passed counts as absent.
	Add(k K, v V) bool

	// Remove deletes k and returns the removed value, if any. Removal
	// is not an eviction: OnEvict does not fire and no eviction is
	// counted.
	Remove(k K) (V, bool)

	// Contains reports whether k is resident with an unexpired TTL. It
	// never promotes, and it leaves expired entries for the sweep.
	Contains(k K) bool

	// Peek returns the value for k without promoting it. Like Contains
	// it treats expired entries as absent without removing them.
	Peek(k K) (V, bool)

	// Keys returns the resident keys ordered from most to least
	// recently used. With more than one shard the order holds within
	// each shard only. Expired entries the sweep has not collected yet
	// are included, matching Len.
	Keys() []K

	// Len returns the number of resident entries, including expired
	// entries not yet collected.
	Len() int

	// Capacity returns the configured capacity bound.
	Capacity() int

	// Clear removes every entry and resets policy state. OnEvict does
	// not fire.
	Clear()

	// Stats returns a snapshot of the operation counters, aggregated
	// across shards.
	Stats() Stats

	// GetOrLoad returns the cached value for k, or fetches it through
	// Options.Loader on a miss and caches the result. Concurrent loads
	// of one key collapse into a single Loader call whose outcome every
	// waiter shares; a waiter whose ctx ends first gets ctx.Err().
	// Without a Loader it returns ErrNoLoader.
	GetOrLoad(ctx context.Context, k K) (V, error)

	// Shutdown stops the background sweeper and marks the cache closed;
	// operations on a closed cache are no-ops. It waits, bounded by
	// ctx, for an in-flight sweep to finish and returns ctx.Err() if
	// the bound lapses first. Calling it again returns nil.
	Shutdown(ctx context.Context) error

	// Close is Shutdown without a deadline.
	Close() error
}
