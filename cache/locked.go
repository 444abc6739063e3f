package cache

import (
	"sync"

	"github.com/akgit4713/lrucache/policy"
)

// lockedStore is the coarse design: one RWMutex guards the index and the
// recency list together. get takes the write lock because promotion
// mutates the list; the read lock serves only operations that leave
// recency alone. Simple, predictable, and the default.
type lockedStore[K comparable, V any] struct {
	storeBase[K, V]

	mu   sync.RWMutex
	m    map[K]*node[K, V]
	list *recencyList[K, V]
	trk  policy.Tracker[K, V]
}

func newLockedStore[K comparable, V any](capacity int, opt Options[K, V]) *lockedStore[K, V] {
	s := &lockedStore[K, V]{
		storeBase: storeBase[K, V]{cap: capacity, opt: opt},
		m:         make(map[K]*node[K, V], capacity),
		list:      newRecencyList[K, V](),
	}
	s.trk = opt.Policy.New(lockedHooks[K, V]{s})
	return s
}

func (s *lockedStore[K, V]) get(k K) (V, bool) {
	var zero V

	s.mu.Lock()
	n, ok := s.m[k]
	if !ok {
		s.mu.Unlock()
		s.miss()
		return zero, false
	}
	if expiredAt(n, s.now()) {
		ev := s.evictLocked(n, EvictTTL)
		s.mu.Unlock()
		s.evicted(EvictTTL)
		s.miss()
		s.notify(ev)
		return zero, false
	}
	s.trk.OnGet(n)
	v := n.val
	s.mu.Unlock()

	s.hit()
	return v, true
}

func (s *lockedStore[K, V]) set(k K, v V, exp int64) {
	var evs []pair[K, V]

	s.mu.Lock()
	if n, ok := s.m[k]; ok {
		n.val = v
		n.exp.Store(exp)
		s.trk.OnUpdate(n)
		s.mu.Unlock()
		return
	}
	n := &node[K, V]{key: k, val: v}
	n.exp.Store(exp)
	s.m[k] = n
	if victim := s.trk.OnAdd(n); victim != nil {
		evs = append(evs, s.evictLocked(victim.(*node[K, V]), EvictPolicy))
	}
	evs = s.trimLocked(evs)
	s.mu.Unlock()

	s.finishEvictions(evs)
}

func (s *lockedStore[K, V]) add(k K, v V, exp int64) bool {
	var evs []pair[K, V]

	s.mu.Lock()
	if n, ok := s.m[k]; ok {
		if !expiredAt(n, s.now()) {
			s.mu.Unlock()
			return false
		}
		// The resident entry is expired, so it does not block the add.
		evs = append(evs, s.evictLocked(n, EvictTTL))
	}
	n := &node[K, V]{key: k, val: v}
	n.exp.Store(exp)
	s.m[k] = n
	if victim := s.trk.OnAdd(n); victim != nil {
		evs = append(evs, s.evictLocked(victim.(*node[K, V]), EvictPolicy))
	}
	evs = s.trimLocked(evs)
	s.mu.Unlock()

	s.finishEvictions(evs)
	return true
}

func (s *lockedStore[K, V]) remove(k K) (V, bool) {
	var zero V

	s.mu.Lock()
	n, ok := s.m[k]
	if !ok {
		s.mu.Unlock()
		return zero, false
	}
	s.trk.OnRemove(n)
	s.list.remove(n)
	delete(s.m, k)
	n.dead.Store(true)
	v := n.val
	s.mu.Unlock()

	return v, true
}

func (s *lockedStore[K, V]) contains(k K) bool {
	s.mu.RLock()
	n, ok := s.m[k]
	alive := ok && !expiredAt(n, s.now())
	s.mu.RUnlock()
	return alive
}

func (s *lockedStore[K, V]) peek(k K) (V, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.m[k]
	if !ok || expiredAt(n, s.now()) {
		var zero V
		return zero, false
	}
	return n.val, true
}

func (s *lockedStore[K, V]) appendKeys(dst []K) []K {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for n := s.list.head.next; n != s.list.tail; n = n.next {
		dst = append(dst, n.key)
	}
	return dst
}

func (s *lockedStore[K, V]) len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.list.len()
}

func (s *lockedStore[K, V]) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.m = make(map[K]*node[K, V], s.cap)
	s.list.reset()
	s.trk.Reset()
}

func (s *lockedStore[K, V]) collectExpired() []pair[K, V] {
	var evs []pair[K, V]

	s.mu.Lock()
	now := s.now()
	for n := s.list.head.next; n != s.list.tail; {
		next := n.next
		if expiredAt(n, now) {
			evs = append(evs, s.evictLocked(n, EvictTTL))
		}
		n = next
	}
	s.mu.Unlock()

	for _, e := range evs {
		s.evicted(e.reason)
	}
	return evs
}

// evictLocked unlinks n, drops it from the index and marks it dead.
// Callers hold s.mu and account for the returned pair once unlocked.
func (s *lockedStore[K, V]) evictLocked(n *node[K, V], reason EvictReason) pair[K, V] {
	s.trk.OnRemove(n)
	s.list.remove(n)
	delete(s.m, n.key)
	n.dead.Store(true)
	return pair[K, V]{key: n.key, val: n.val, reason: reason}
}

// trimLocked evicts from the least-recent end until the resident count is
// back within capacity. A loop rather than a single step: an admission
// policy may have let the count drift more than one over.
func (s *lockedStore[K, V]) trimLocked(evs []pair[K, V]) []pair[K, V] {
	for s.list.len() > s.cap {
		lru := s.list.back()
		if lru == nil {
			break
		}
		evs = append(evs, s.evictLocked(lru, EvictCapacity))
	}
	return evs
}

// finishEvictions runs the post-unlock half of an eviction batch:
// counters, metrics, then callbacks.
func (s *lockedStore[K, V]) finishEvictions(evs []pair[K, V]) {
	for _, e := range evs {
		s.evicted(e.reason)
	}
	s.notify(evs...)
}

// lockedHooks adapts the store's list to policy.Hooks. Calls arrive with
// s.mu already held.
type lockedHooks[K comparable, V any] struct {
	s *lockedStore[K, V]
}

func (h lockedHooks[K, V]) PushFront(n policy.Node[K, V]) {
	h.s.list.pushFront(n.(*node[K, V]))
}

func (h lockedHooks[K, V]) MoveToFront(n policy.Node[K, V]) {
	h.s.list.moveToFront(n.(*node[K, V]))
}

func (h lockedHooks[K, V]) Remove(n policy.Node[K, V]) {
	h.s.list.remove(n.(*node[K, V]))
}

func (h lockedHooks[K, V]) Back() policy.Node[K, V] {
	// The nil check matters: a typed nil *node wrapped in the interface
	// would not compare equal to nil at the policy side.
	if n := h.s.list.back(); n != nil {
		return n
	}
	return nil
}

func (h lockedHooks[K, V]) Len() int { return h.s.list.len() }
