package cache

import (
	"context"
	"time"

	"github.com/akgit4713/lrucache/policy"
)

// Strategy selects how a store synchronizes its key index and recency
// list.
type Strategy int

const (
	// StrategyLocked guards the index and the list with one RWMutex.
	// Get takes the write lock, because promotion mutates the list, so
	// reads serialize against each other; Contains, Peek, Keys and Len
	// share the read lock. The simplest design and the default.
	StrategyLocked Strategy = iota

	// StrategyConcurrent indexes entries in a sync.Map so lookups never
	// block, and guards only list surgery with a dedicated mutex.
	// Writes and promotions serialize on that narrow lock; lookups,
	// Contains and Len stay lock-free.
	StrategyConcurrent
)

// EvictReason tells an OnEvict callback or a Metrics sink why an entry
// left the cache.
type EvictReason int

const (
	// EvictCapacity marks an entry removed from the least-recent end to
	// honor the capacity bound.
	EvictCapacity EvictReason = iota
	// EvictTTL marks an expired entry, removed lazily on access or by
	// the background sweep.
	EvictTTL
	// EvictPolicy marks an entry named as victim by the eviction policy,
	// such as a 2Q probation overflow.
	EvictPolicy
)

// String returns the stable label used in logs and metrics.
func (r EvictReason) String() string {
	switch r {
	case EvictCapacity:
		return "capacity"
	case EvictTTL:
		return "ttl"
	case EvictPolicy:
		return "policy"
	default:
		return "unknown"
	}
}

// Metrics receives cache observability signals. Implementations must be
// safe for concurrent use; the cache never calls them while holding a
// lock. Size reports the cache-wide resident count after mutating
// operations. NoopMetrics is the default.
type Metrics interface {
	Hit()
	Miss()
	Evict(reason EvictReason)
	Size(entries int)
}

// Clock supplies the time used for TTL decisions, in UnixNano. Override
// it in tests for deterministic expiry.
type Clock interface {
	NowUnixNano() int64
}

// Logger is the minimal sink for the cache's own diagnostics, currently
// only the sweeper's callback-panic reports. *log.Logger satisfies it.
type Logger interface {
	Printf(format string, args ...any)
}

// Options configures a cache. Capacity is required; every other field
// has a working zero value:
//
//	Strategy       zero value is StrategyLocked
//	Policy         nil means LRU
//	Metrics        nil means NoopMetrics
//	Logger         nil means log.Default()
//	Clock          nil means time.Now
//	SweepInterval  zero inherits DefaultTTL
type Options[K comparable, V any] struct {
	// Capacity bounds the number of resident entries. Must be positive.
	Capacity int

	// Strategy picks the store synchronization design.
	Strategy Strategy

	// Policy chooses the eviction order.
	Policy policy.Policy[K, V]

	// DefaultTTL is applied by Set and Add when no per-entry TTL is
	// given. Zero means entries do not expire.
	DefaultTTL time.Duration

	// SweepInterval is how often the background sweep collects expired
	// entries. Zero inherits DefaultTTL; if both are zero no sweeper
	// runs and expired entries are only dropped lazily on access.
	SweepInterval time.Duration

	// Loader fetches a missing value for GetOrLoad. Concurrent loads of
	// the same key are coalesced into one call.
	Loader func(ctx context.Context, k K) (V, error)

	// OnEvict observes capacity, policy and TTL evictions. It does not
	// fire for explicit Remove or Clear. It runs outside all cache locks
	// and may be called from the sweeper goroutine.
	OnEvict func(k K, v V, reason EvictReason)

	// Metrics receives hit, miss, evict and size signals.
	Metrics Metrics

	// Logger receives sweeper diagnostics.
	Logger Logger

	// Clock overrides the TTL time source.
	Clock Clock
}
