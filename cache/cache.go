package cache

import (
	"context"
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/akgit4713/lrucache/internal/singleflight"
	"github.com/akgit4713/lrucache/internal/util"
	"github.com/akgit4713/lrucache/policy/lru"
)

var (
	// ErrInvalidCapacity is returned when Options.Capacity is not
	// positive.
	ErrInvalidCapacity = errors.New("cache: capacity must be greater than zero")

	// ErrInvalidTTL is returned when Options.DefaultTTL is negative.
	ErrInvalidTTL = errors.New("cache: default TTL must not be negative")

	// ErrInvalidSweepInterval is returned when Options.SweepInterval is
	// negative.
	ErrInvalidSweepInterval = errors.New("cache: sweep interval must not be negative")

	// ErrInvalidStrategy is returned for a Strategy value the package
	// does not know.
	ErrInvalidStrategy = errors.New("cache: unknown strategy")

	// ErrShardedStrategy is returned by NewSharded for any strategy but
	// StrategyLocked: shards are small enough that the coarse lock per
	// shard is the better design.
	ErrShardedStrategy = errors.New("cache: sharded caches require the locked strategy")

	// ErrNoLoader is returned by GetOrLoad when no Loader is configured.
	ErrNoLoader = errors.New("cache: no loader configured")

	// ErrClosed is returned by GetOrLoad after Shutdown or Close.
	ErrClosed = errors.New("cache: closed")
)

// realClock is the default time source.
type realClock struct{}

func (realClock) NowUnixNano() int64 { return time.Now().UnixNano() }

// cache is the facade behind the Cache interface. It resolves options,
// routes operations to one store, or hashes across several when sharded,
// owns the sweeper lifecycle, and coalesces loads.
type cache[K comparable, V any] struct {
	stores   []store[K, V] // length 1, or a power of two when sharded
	hash     func(K) uint64
	capacity int // as configured, before shard splitting
	opt      Options[K, V]

	closed atomic.Bool
	sf     singleflight.Group[K, V]

	sweepCancel context.CancelFunc // nil when no sweeper runs
	sweepWG     sync.WaitGroup
}

var _ Cache[string, int] = (*cache[string, int])(nil)

// New builds a single-store cache from opt. The zero Options values are
// documented on the Options type; only Capacity is mandatory.
func New[K comparable, V any](opt Options[K, V]) (Cache[K, V], error) {
	opt, err := resolve(opt)
	if err != nil {
		return nil, err
	}

	c := &cache[K, V]{capacity: opt.Capacity, opt: opt}
	switch opt.Strategy {
	case StrategyLocked:
		c.stores = []store[K, V]{newLockedStore(opt.Capacity, opt)}
	case StrategyConcurrent:
		c.stores = []store[K, V]{newConcurrentStore(opt.Capacity, opt)}
	default:
		return nil, ErrInvalidStrategy
	}

	if opt.SweepInterval > 0 {
		c.startSweeper(opt.SweepInterval)
	}
	return c, nil
}

// MustNew is New for configurations known good at compile time; it
// panics on invalid Options.
func MustNew[K comparable, V any](opt Options[K, V]) Cache[K, V] {
	c, err := New(opt)
	if err != nil {
		panic(err)
	}
	return c
}

// NewSharded splits the capacity across independent locked stores
// selected by key hash, cutting lock contention roughly by the shard
// count. shards is rounded up to a power of two; values below one pick
// an automatic count from GOMAXPROCS. Recency order and eviction hold
// per shard, not globally, and when the capacity does not divide evenly
// the effective bound can exceed Capacity by up to shards-1 entries.
//
// Keys must be a type util.HashKey supports: string, any integer,
// [16]byte, [32]byte, or fmt.Stringer.
func NewSharded[K comparable, V any](shards int, opt Options[K, V]) (Cache[K, V], error) {
	opt, err := resolve(opt)
	if err != nil {
		return nil, err
	}
	switch opt.Strategy {
	case StrategyLocked:
	case StrategyConcurrent:
		return nil, ErrShardedStrategy
	default:
		return nil, ErrInvalidStrategy
	}

	if shards <= 0 {
		shards = util.DefaultShardCount()
	}
	n := int(util.NextPowerOfTwo(uint64(shards)))
	if n > util.MaxShards {
		n = util.MaxShards
	}

	c := &cache[K, V]{capacity: opt.Capacity, opt: opt, hash: util.HashKey[K]}
	perShard := (opt.Capacity + n - 1) / n
	c.stores = make([]store[K, V], n)
	for i := range c.stores {
		c.stores[i] = newLockedStore(perShard, opt)
	}

	if opt.SweepInterval > 0 {
		c.startSweeper(opt.SweepInterval)
	}
	return c, nil
}

// MustNewSharded is NewSharded that panics on invalid Options.
func MustNewSharded[K comparable, V any](shards int, opt Options[K, V]) Cache[K, V] {
	c, err := NewSharded(shards, opt)
	if err != nil {
		panic(err)
	}
	return c
}

// resolve validates opt and fills in the documented defaults.
func resolve[K comparable, V any](opt Options[K, V]) (Options[K, V], error) {
	if opt.Capacity <= 0 {
		return opt, ErrInvalidCapacity
	}
	if opt.DefaultTTL < 0 {
		return opt, ErrInvalidTTL
	}
	if opt.SweepInterval < 0 {
		return opt, ErrInvalidSweepInterval
	}
	if opt.Policy == nil {
		opt.Policy = lru.New[K, V]()
	}
	if opt.Metrics == nil {
		opt.Metrics = NoopMetrics{}
	}
	if opt.Logger == nil {
		opt.Logger = log.Default()
	}
	if opt.Clock == nil {
		opt.Clock = realClock{}
	}
	if opt.SweepInterval == 0 {
		opt.SweepInterval = opt.DefaultTTL
	}
	return opt, nil
}

func (c *cache[K, V]) storeFor(k K) store[K, V] {
	if len(c.stores) == 1 {
		return c.stores[0]
	}
	return c.stores[util.ShardIndex(c.hash(k), len(c.stores))]
}

// deadline converts a relative ttl to an absolute UnixNano deadline;
// non-positive ttl means no expiry.
func (c *cache[K, V]) deadline(ttl time.Duration) int64 {
	if ttl <= 0 {
		return 0
	}
	return c.opt.Clock.NowUnixNano() + int64(ttl)
}

// reportSize pushes the resident count to the Metrics sink. The noop
// check keeps Len off the hot path when nobody is listening.
func (c *cache[K, V]) reportSize() {
	if _, noop := c.opt.Metrics.(NoopMetrics); noop {
		return
	}
	c.opt.Metrics.Size(c.Len())
}

func rejectNilKey[K comparable](k K) {
	if any(k) == nil {
		panic("cache: nil key")
	}
}

func rejectNilValue[V any](v V) {
	if any(v) == nil {
		panic("cache: nil value")
	}
}

func (c *cache[K, V]) Get(k K) (V, bool) {
	rejectNilKey(k)
	if c.closed.Load() {
		var zero V
		return zero, false
	}
	return c.storeFor(k).get(k)
}

func (c *cache[K, V]) Set(k K, v V) {
	c.SetWithTTL(k, v, c.opt.DefaultTTL)
}

func (c *cache[K, V]) SetWithTTL(k K, v V, ttl time.Duration) {
	rejectNilKey(k)
	rejectNilValue(v)
	if c.closed.Load() {
		return
	}
	c.storeFor(k).set(k, v, c.deadline(ttl))
	c.reportSize()
}

func (c *cache[K, V]) Add(k K, v V) bool {
	rejectNilKey(k)
	rejectNilValue(v)
	if c.closed.Load() {
		return false
	}
	ok := c.storeFor(k).add(k, v, c.deadline(c.opt.DefaultTTL))
	if ok {
		c.reportSize()
	}
	return ok
}

func (c *cache[K, V]) Remove(k K) (V, bool) {
	rejectNilKey(k)
	if c.closed.Load() {
		var zero V
		return zero, false
	}
	v, ok := c.storeFor(k).remove(k)
	if ok {
		c.reportSize()
	}
	return v, ok
}

func (c *cache[K, V]) Contains(k K) bool {
	rejectNilKey(k)
	if c.closed.Load() {
		return false
	}
	return c.storeFor(k).contains(k)
}

func (c *cache[K, V]) Peek(k K) (V, bool) {
	rejectNilKey(k)
	if c.closed.Load() {
		var zero V
		return zero, false
	}
	return c.storeFor(k).peek(k)
}

func (c *cache[K, V]) Keys() []K {
	if c.closed.Load() {
		return nil
	}
	keys := make([]K, 0, c.Len())
	for _, s := range c.stores {
		keys = s.appendKeys(keys)
	}
	return keys
}

func (c *cache[K, V]) Len() int {
	total := 0
	for _, s := range c.stores {
		total += s.len()
	}
	return total
}

func (c *cache[K, V]) Capacity() int { return c.capacity }

func (c *cache[K, V]) Clear() {
	if c.closed.Load() {
		return
	}
	for _, s := range c.stores {
		s.clear()
	}
	c.reportSize()
}

func (c *cache[K, V]) Stats() Stats {
	var total Stats
	for _, s := range c.stores {
		total.add(s.stats())
	}
	return total
}

func (c *cache[K, V]) GetOrLoad(ctx context.Context, k K) (V, error) {
	rejectNilKey(k)
	var zero V
	if c.closed.Load() {
		return zero, ErrClosed
	}
	if v, ok := c.Get(k); ok {
		return v, nil
	}
	if c.opt.Loader == nil {
		return zero, ErrNoLoader
	}
	return c.sf.Do(ctx, k, func() (V, error) {
		// Another flight may have stored the value between our miss and
		// becoming the leader.
		if v, ok := c.Get(k); ok {
			return v, nil
		}
		v, err := c.opt.Loader(ctx, k)
		if err != nil {
			return zero, err
		}
		c.Set(k, v)
		return v, nil
	})
}

func (c *cache[K, V]) Shutdown(ctx context.Context) error {
	c.closed.Store(true)
	if c.sweepCancel == nil {
		return nil
	}
	c.sweepCancel()

	done := make(chan struct{})
	go func() {
		c.sweepWG.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *cache[K, V]) Close() error {
	return c.Shutdown(context.Background())
}
