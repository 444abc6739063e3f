package cache

import "sync/atomic"

// node is one cache entry: the key/value payload plus the intrusive links
// that place it in a store's recency list.
type node[K comparable, V any] struct {
	key K
	val V

	// Recency links. Only the store's lock may touch these.
	prev *node[K, V]
	next *node[K, V]

	// Absolute expiry deadline in UnixNano; zero means the entry never
	// expires. Atomic so the concurrent store can test expiry without
	// taking its list lock.
	exp atomic.Int64

	// dead is set, under the store's lock, the moment the node is
	// unlinked. A goroutine that loaded the node from the index before
	// the unlink can then tell it is holding a removed entry. Removal is
	// terminal: a later Set of the same key builds a fresh node.
	dead atomic.Bool
}

// Key returns the entry's key (policy.Node).
func (n *node[K, V]) Key() K { return n.key }

// Value returns a pointer to the stored value (policy.Node). Only read
// or write through it while the owning store's lock is held.
func (n *node[K, V]) Value() *V { return &n.val }

// expiredAt reports whether the node's deadline, if any, has passed.
func expiredAt[K comparable, V any](n *node[K, V], now int64) bool {
	exp := n.exp.Load()
	return exp != 0 && now > exp
}
