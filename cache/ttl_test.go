package cache

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestExpiryDeadlines(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		strategy Strategy
		ttl      time.Duration
		advance  time.Duration
		wantHit  bool
	}{
		"locked entry survives before its deadline": {
			strategy: StrategyLocked,
			ttl:      500 * time.Millisecond,
			advance:  300 * time.Millisecond,
			wantHit:  true,
		},
		"locked entry expires past its deadline": {
			strategy: StrategyLocked,
			ttl:      500 * time.Millisecond,
			advance:  600 * time.Millisecond,
			wantHit:  false,
		},
		"concurrent entry survives before its deadline": {
			strategy: StrategyConcurrent,
			ttl:      500 * time.Millisecond,
			advance:  300 * time.Millisecond,
			wantHit:  true,
		},
		"concurrent entry expires past its deadline": {
			strategy: StrategyConcurrent,
			ttl:      500 * time.Millisecond,
			advance:  600 * time.Millisecond,
			wantHit:  false,
		},
		"zero ttl never expires": {
			strategy: StrategyLocked,
			ttl:      0,
			advance:  365 * 24 * time.Hour,
			wantHit:  true,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			r := require.New(t)

			clk := newFakeClock()
			c := mustCache(t, Options[string, string]{
				Capacity: 8,
				Strategy: tc.strategy,
				Clock:    clk,
			})

			c.SetWithTTL("k", "v", tc.ttl)
			clk.advance(tc.advance)

			v, ok := c.Get("k")
			r.Equal(tc.wantHit, ok)
			if tc.wantHit {
				r.Equal("v", v)
				r.Equal(1, c.Len())
			} else {
				// The lazy path removed the entry on contact.
				r.Zero(c.Len())
				r.Equal(uint64(1), c.Stats().Expirations)
			}
		})
	}
}

func TestDefaultTTLAndOverrides(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		set     func(c Cache[string, int])
		advance time.Duration
		wantHit bool
	}{
		"set inherits the default ttl": {
			set:     func(c Cache[string, int]) { c.Set("k", 1) },
			advance: 2 * time.Minute,
			wantHit: false,
		},
		"set stays within the default ttl": {
			set:     func(c Cache[string, int]) { c.Set("k", 1) },
			advance: 30 * time.Second,
			wantHit: true,
		},
		"add inherits the default ttl": {
			set:     func(c Cache[string, int]) { c.Add("k", 1) },
			advance: 2 * time.Minute,
			wantHit: false,
		},
		"per-entry ttl shortens the default": {
			set:     func(c Cache[string, int]) { c.SetWithTTL("k", 1, time.Second) },
			advance: 30 * time.Second,
			wantHit: false,
		},
		"per-entry ttl outlives the default": {
			set:     func(c Cache[string, int]) { c.SetWithTTL("k", 1, time.Hour) },
			advance: 30 * time.Minute,
			wantHit: true,
		},
		"non-positive per-entry ttl disables expiry": {
			set:     func(c Cache[string, int]) { c.SetWithTTL("k", 1, 0) },
			advance: 365 * 24 * time.Hour,
			wantHit: true,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			r := require.New(t)

			clk := newFakeClock()
			c := mustCache(t, Options[string, int]{
				Capacity:   8,
				DefaultTTL: time.Minute,
				Clock:      clk,
			})

			tc.set(c)
			clk.advance(tc.advance)

			_, ok := c.Get("k")
			r.Equal(tc.wantHit, ok)
		})
	}
}

func TestContainsAndPeekLeaveExpiredEntries(t *testing.T) {
	t.Parallel()
	r := require.New(t)

	clk := newFakeClock()
	c := mustCache(t, Options[string, int]{Capacity: 8, Clock: clk})

	c.SetWithTTL("k", 1, time.Second)
	clk.advance(2 * time.Second)

	r.False(c.Contains("k"))
	_, ok := c.Peek("k")
	r.False(ok)

	// Neither call collected the entry; it is still resident.
	r.Equal(1, c.Len())
	r.Zero(c.Stats().Expirations)

	// Get does collect it.
	_, ok = c.Get("k")
	r.False(ok)
	r.Zero(c.Len())
	r.Equal(uint64(1), c.Stats().Expirations)
}

func TestAddTreatsExpiredEntryAsAbsent(t *testing.T) {
	t.Parallel()

	for name, strat := range strategies {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			r := require.New(t)

			clk := newFakeClock()
			c := mustCache(t, Options[string, int]{
				Capacity: 8,
				Strategy: strat,
				Clock:    clk,
			})

			c.SetWithTTL("k", 1, time.Second)
			r.False(c.Add("k", 2), "live entry must block Add")

			clk.advance(2 * time.Second)
			r.True(c.Add("k", 2), "expired entry must not block Add")

			v, ok := c.Get("k")
			r.True(ok)
			r.Equal(2, v)
			r.Equal(1, c.Len())
			checkConsistent(t, c)
		})
	}
}

func TestSweeperCollectsWithoutAccess(t *testing.T) {
	t.Parallel()

	for name, strat := range strategies {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			r := require.New(t)

			var mu sync.Mutex
			var reasons []EvictReason
			c := mustCache(t, Options[string, int]{
				Capacity:      32,
				Strategy:      strat,
				DefaultTTL:    20 * time.Millisecond,
				SweepInterval: 5 * time.Millisecond,
				OnEvict: func(_ string, _ int, reason EvictReason) {
					mu.Lock()
					reasons = append(reasons, reason)
					mu.Unlock()
				},
			})

			for i := 0; i < 10; i++ {
				c.Set(fmt.Sprintf("k%d", i), i)
			}
			r.Equal(10, c.Len())

			// No reads happen; only the sweeper can drain the cache.
			r.Eventually(func() bool { return c.Len() == 0 },
				2*time.Second, 5*time.Millisecond, "sweeper never collected the expired entries")

			mu.Lock()
			defer mu.Unlock()
			r.Len(reasons, 10)
			for _, reason := range reasons {
				r.Equal(EvictTTL, reason)
			}
			r.Equal(uint64(10), c.Stats().Expirations)
		})
	}
}

func TestShutdownWaitsForInFlightSweep(t *testing.T) {
	t.Parallel()
	r := require.New(t)

	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	c := mustCache(t, Options[string, int]{
		Capacity:      8,
		DefaultTTL:    time.Millisecond,
		SweepInterval: time.Millisecond,
		OnEvict: func(string, int, EvictReason) {
			once.Do(func() { close(entered) })
			<-release
		},
	})

	c.Set("k", 1)
	<-entered // a sweep is now stuck inside the callback

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	r.ErrorIs(c.Shutdown(ctx), context.DeadlineExceeded)

	// Once the callback returns, the drain completes.
	close(release)
	r.NoError(c.Close())
}

func TestShutdownIdempotent(t *testing.T) {
	t.Parallel()
	r := require.New(t)

	c := mustCache(t, Options[string, int]{
		Capacity:      8,
		DefaultTTL:    time.Hour,
		SweepInterval: time.Hour,
	})

	r.NoError(c.Shutdown(context.Background()))
	r.NoError(c.Shutdown(context.Background()))
	r.NoError(c.Close())

	// Without a sweeper there is nothing to drain.
	plain := mustCache(t, Options[string, int]{Capacity: 8})
	r.NoError(plain.Shutdown(context.Background()))
}

// logRecorder captures the cache's diagnostic output.
type logRecorder struct {
	mu    sync.Mutex
	lines []string
}

func (l *logRecorder) Printf(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

func (l *logRecorder) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.lines...)
}

func TestSweeperSurvivesPanickingCallback(t *testing.T) {
	t.Parallel()
	r := require.New(t)

	logs := &logRecorder{}
	c := mustCache(t, Options[string, int]{
		Capacity:      8,
		DefaultTTL:    10 * time.Millisecond,
		SweepInterval: 5 * time.Millisecond,
		Logger:        logs,
		OnEvict: func(k string, _ int, _ EvictReason) {
			if k == "bad" {
				panic("callback exploded")
			}
		},
	})

	c.Set("bad", 1)
	r.Eventually(func() bool { return c.Len() == 0 },
		2*time.Second, 5*time.Millisecond)

	// The panic was contained and logged.
	found := false
	for _, line := range logs.all() {
		if strings.Contains(line, "OnEvict panicked") && strings.Contains(line, "callback exploded") {
			found = true
		}
	}
	r.True(found, "panic report missing from log: %v", logs.all())

	// The sweeper is still alive and collects later entries.
	c.Set("good", 2)
	r.Eventually(func() bool { return c.Len() == 0 },
		2*time.Second, 5*time.Millisecond, "sweeper died after the panic")
}
