package cache

import "github.com/akgit4713/lrucache/internal/util"

// Stats is a point-in-time snapshot of a cache's operation counters.
//
// Evictions counts entries removed to satisfy the capacity bound or an
// admission policy. Expirations counts entries removed because their TTL
// passed, whether lazily on access or by the background sweep. Explicit
// Remove and Clear update neither.
type Stats struct {
	Hits        uint64
	Misses      uint64
	Evictions   uint64
	Expirations uint64
}

// add accumulates o into s, used when aggregating shard snapshots.
func (s *Stats) add(o Stats) {
	s.Hits += o.Hits
	s.Misses += o.Misses
	s.Evictions += o.Evictions
	s.Expirations += o.Expirations
}

// counters are a store's hot counters, one cache line apiece so shards
// hammering their own numbers do not false-share.
type counters struct {
	_           util.CacheLinePad
	hits        util.PaddedAtomicUint64
	misses      util.PaddedAtomicUint64
	evictions   util.PaddedAtomicUint64
	expirations util.PaddedAtomicUint64
}

func (c *counters) snapshot() Stats {
	return Stats{
		Hits:        c.hits.Load(),
		Misses:      c.misses.Load(),
		Evictions:   c.evictions.Load(),
		Expirations: c.expirations.Load(),
	}
}
