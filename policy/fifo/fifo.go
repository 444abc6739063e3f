// Package fifo provides an insertion-order eviction policy: entries are
// evicted strictly in the order they were added and reads never promote.
// Useful when scan-heavy workloads would churn an LRU list for no gain.
package fifo

import "github.com/akgit4713/lrucache/policy"

type factory[K comparable, V any] struct{}

// New returns a Policy that produces per-store FIFO trackers.
func New[K comparable, V any]() policy.Policy[K, V] { return factory[K, V]{} }

func (factory[K, V]) New(h policy.Hooks[K, V]) policy.Tracker[K, V] {
	return &tracker[K, V]{h: h}
}

type tracker[K comparable, V any] struct {
	h policy.Hooks[K, V]
}

// OnAdd places the new entry at the front; with no promotions the tail is
// always the oldest insertion.
func (t *tracker[K, V]) OnAdd(n policy.Node[K, V]) policy.Node[K, V] {
	t.h.PushFront(n)
	return nil
}

// OnGet is a no-op: access does not change eviction order under FIFO.
func (t *tracker[K, V]) OnGet(policy.Node[K, V]) {}

// OnUpdate keeps the original insertion slot; overwriting a value is not
// a re-insertion.
func (t *tracker[K, V]) OnUpdate(policy.Node[K, V]) {}

func (t *tracker[K, V]) OnRemove(policy.Node[K, V]) {}

func (t *tracker[K, V]) Reset() {}
