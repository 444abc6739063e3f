package cache

import (
	"context"
	"time"
)

// The sweeper is the cache's only background goroutine. It wakes on a
// ticker, asks every store to collect its expired entries, and delivers
// the OnEvict callbacks. Shutdown cancels its context and waits for the
// in-flight pass to drain.

func (c *cache[K, V]) startSweeper(interval time.Duration) {
	ctx, cancel := context.WithCancel(context.Background())
	c.sweepCancel = cancel
	c.sweepWG.Add(1)
	go c.sweepLoop(ctx, interval)
}

func (c *cache[K, V]) sweepLoop(ctx context.Context, interval time.Duration) {
	defer c.sweepWG.Done()

	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			c.sweep()
		}
	}
}

// sweep runs one expiry pass over every store. Callbacks run isolated: a
// panicking OnEvict is logged and must not kill the loop, or the cache
// would silently stop expiring.
func (c *cache[K, V]) sweep() {
	removed := 0
	for _, s := range c.stores {
		evs := s.collectExpired()
		removed += len(evs)
		if cb := c.opt.OnEvict; cb != nil {
			for _, e := range evs {
				c.safeEvictCallback(cb, e)
			}
		}
	}
	if removed > 0 {
		c.reportSize()
	}
}

func (c *cache[K, V]) safeEvictCallback(cb func(K, V, EvictReason), e pair[K, V]) {
	defer func() {
		if r := recover(); r != nil {
			c.opt.Logger.Printf("cache: OnEvict panicked during sweep (key=%v): %v", e.key, r)
		}
	}()
	cb(e.key, e.val, e.reason)
}
