package cache

// pair is an evicted key/value captured under a store lock and delivered
// to callbacks after the lock is released.
type pair[K comparable, V any] struct {
	key    K
	val    V
	reason EvictReason
}

// store is one synchronization domain of the cache: the key index, the
// recency list, the policy tracker and the hot counters behind one of
// the two locking designs. The facade routes operations here and owns
// everything above: TTL resolution, the sweeper, the loader, and
// cache-wide size reporting.
//
// Deadlines arrive pre-computed as absolute UnixNano values, zero for
// no expiry.
type store[K comparable, V any] interface {
	get(k K) (V, bool)
	set(k K, v V, exp int64)
	add(k K, v V, exp int64) bool
	remove(k K) (V, bool)
	contains(k K) bool
	peek(k K) (V, bool)
	appendKeys(dst []K) []K
	len() int
	clear()
	// collectExpired removes every entry whose deadline has passed and
	// returns the removed pairs; the caller delivers any callbacks.
	collectExpired() []pair[K, V]
	stats() Stats
}

// storeBase carries what both store designs share: the capacity bound,
// the resolved options, and the padded counters.
type storeBase[K comparable, V any] struct {
	cap int
	opt Options[K, V]
	counters
}

func (b *storeBase[K, V]) now() int64 { return b.opt.Clock.NowUnixNano() }

// The helpers below touch the Metrics sink, so stores call them only
// after releasing their locks. The padded counters themselves are
// atomic and lock-agnostic.

func (b *storeBase[K, V]) hit() {
	b.hits.Add(1)
	b.opt.Metrics.Hit()
}

func (b *storeBase[K, V]) miss() {
	b.misses.Add(1)
	b.opt.Metrics.Miss()
}

func (b *storeBase[K, V]) evicted(r EvictReason) {
	if r == EvictTTL {
		b.expirations.Add(1)
	} else {
		b.evictions.Add(1)
	}
	b.opt.Metrics.Evict(r)
}

// notify fires the OnEvict callback for each pair, in eviction order.
func (b *storeBase[K, V]) notify(evs ...pair[K, V]) {
	cb := b.opt.OnEvict
	if cb == nil {
		return
	}
	for _, e := range evs {
		cb(e.key, e.val, e.reason)
	}
}

func (b *storeBase[K, V]) stats() Stats { return b.snapshot() }
