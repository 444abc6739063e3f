// Package lru provides the default least-recently-used eviction policy:
// every access moves the entry to the most-recent end of the list, so the
// tail is always the coldest entry.
package lru

import "github.com/akgit4713/lrucache/policy"

type factory[K comparable, V any] struct{}

// New returns a Policy that produces per-store LRU trackers.
func New[K comparable, V any]() policy.Policy[K, V] { return factory[K, V]{} }

func (factory[K, V]) New(h policy.Hooks[K, V]) policy.Tracker[K, V] {
	return &tracker[K, V]{h: h}
}

// tracker keeps no state of its own; recency order lives entirely in the
// store's list.
type tracker[K comparable, V any] struct {
	h policy.Hooks[K, V]
}

// OnAdd admits at the most-recent end. LRU never names a victim; the
// store's capacity check evicts from the tail.
func (t *tracker[K, V]) OnAdd(n policy.Node[K, V]) policy.Node[K, V] {
	t.h.PushFront(n)
	return nil
}

// OnGet promotes the entry.
func (t *tracker[K, V]) OnGet(n policy.Node[K, V]) { t.h.MoveToFront(n) }

// OnUpdate treats an overwrite as a use.
func (t *tracker[K, V]) OnUpdate(n policy.Node[K, V]) { t.h.MoveToFront(n) }

func (t *tracker[K, V]) OnRemove(policy.Node[K, V]) {}

func (t *tracker[K, V]) Reset() {}
