package util

import "runtime"

// MaxShards bounds automatic shard sizing. Past a few hundred shards the
// per-shard maps stop paying for themselves.
const MaxShards = 256

// DefaultShardCount picks a shard count for callers that did not choose
// one: twice GOMAXPROCS, rounded up to a power of two and clamped to
// MaxShards. The factor of two keeps shards mostly uncontended even when
// goroutines outnumber Ps.
func DefaultShardCount() int {
	n := 2 * runtime.GOMAXPROCS(0)
	if n < 1 {
		n = 1
	}
	p := NextPowerOfTwo(uint64(n))
	if p > MaxShards {
		return MaxShards
	}
	return int(p)
}

// ShardIndex maps a key hash to a shard in [0, shards). When shards is a
// power of two this is a mask; otherwise it falls back to modulo.
func ShardIndex(hash uint64, shards int) int {
	if shards <= 1 {
		return 0
	}
	if IsPowerOfTwo(uint64(shards)) {
		return int(hash & uint64(shards-1))
	}
	return int(hash % uint64(shards))
}
