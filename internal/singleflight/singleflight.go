// Package singleflight coalesces concurrent loads of the same key so the
// load function runs at most once while every caller shares its result.
package singleflight

import (
	"context"
	"sync"
)

// flight carries the result of one in-progress load. val and err are
// written exactly once, before ready is closed, so any read that follows
// <-ready observes the published values.
type flight[V any] struct {
	ready chan struct{}
	val   V
	err   error
}

func (f *flight[V]) wait(ctx context.Context) (V, error) {
	select {
	case <-f.ready:
		return f.val, f.err
	case <-ctx.Done():
		var zero V
		return zero, ctx.Err()
	}
}

// Group deduplicates concurrent Do calls by key. The zero value is ready
// to use.
type Group[K comparable, V any] struct {
	mu       sync.Mutex
	inFlight map[K]*flight[V]
}

// Do returns the result of fn for key, running fn at most once across
// concurrent callers. The first caller becomes the leader and executes
// fn; the rest wait for the shared result. A follower whose ctx is
// cancelled stops waiting and gets ctx.Err(), but the leader keeps
// running, so fn must capture its own context if the work itself is to
// be cancellable.
func (g *Group[K, V]) Do(ctx context.Context, key K, fn func() (V, error)) (V, error) {
	g.mu.Lock()
	if g.inFlight == nil {
		g.inFlight = make(map[K]*flight[V])
	}
	if f, ok := g.inFlight[key]; ok {
		g.mu.Unlock()
		return f.wait(ctx)
	}
	f := &flight[V]{ready: make(chan struct{})}
	g.inFlight[key] = f
	g.mu.Unlock()

	f.val, f.err = fn()
	close(f.ready)

	g.mu.Lock()
	delete(g.inFlight, key)
	g.mu.Unlock()

	return f.val, f.err
}
