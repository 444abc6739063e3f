// Package policy defines the pluggable eviction-policy contract used by
// the cache stores. A Policy is a factory that produces one Tracker per
// store; the Tracker observes entry lifecycle events and steers the
// store's recency list through the Hooks it was bound to.
package policy

// Node is the view of a cache entry a policy works with: the key plus a
// pointer to the value for in-place inspection. The value may only be
// touched while the owning store's lock is held.
type Node[K comparable, V any] interface {
	Key() K
	Value() *V
}

// Hooks are the O(1) recency-list operations a store exposes to its
// Tracker. Every hook call happens with the store's list already locked.
// Hooks move nodes within the list; the key index stays with the store.
type Hooks[K comparable, V any] interface {
	// PushFront links a newly admitted node at the most-recent end.
	PushFront(Node[K, V])
	// MoveToFront relinks an existing node at the most-recent end.
	MoveToFront(Node[K, V])
	// Remove unlinks the node from the list.
	Remove(Node[K, V])
	// Back reports the least-recent node, or nil when the list is empty.
	Back() Node[K, V]
	// Len reports the number of linked nodes.
	Len() int
}

// Tracker is a per-store policy instance. Calls arrive serialized under
// the store's list lock.
//
// OnAdd admits a new node and may name a victim the store should evict
// immediately (admission-limited policies such as 2Q use this). OnGet and
// OnUpdate record an access; most policies promote here. OnRemove tells
// the policy a node is leaving so it can drop its own bookkeeping; the
// actual unlink and index delete stay with the store. Reset discards all
// policy state and is called when the store is cleared.
type Tracker[K comparable, V any] interface {
	OnAdd(Node[K, V]) (evict Node[K, V])
	OnGet(Node[K, V])
	OnUpdate(Node[K, V])
	OnRemove(Node[K, V])
	Reset()
}

// Policy builds store-local Tracker instances bound to that store's
// Hooks. A single Policy value may serve many stores; each Tracker it
// returns must be independent.
type Policy[K comparable, V any] interface {
	New(Hooks[K, V]) Tracker[K, V]
}
