package cache

import (
	"sync"

	"github.com/akgit4713/lrucache/internal/util"
	"github.com/akgit4713/lrucache/policy"
)

// concurrentStore is the fine-grained design: entries are indexed in a
// sync.Map so lookups never block, and a single mutex guards only list
// surgery plus the policy tracker. Writes and promotions serialize on
// that narrow lock; lookups, contains and len stay lock-free.
//
// Every index mutation happens with listMu held. That gives lock-free
// readers the one invariant they rely on: a node loaded from the index
// is either fully linked or already marked dead, never half-relinked.
type concurrentStore[K comparable, V any] struct {
	storeBase[K, V]

	index sync.Map // K -> *node[K, V]

	listMu sync.Mutex
	list   *recencyList[K, V]
	trk    policy.Tracker[K, V]

	// Resident count, maintained under listMu, read lock-free by len.
	count util.PaddedAtomicInt64
}

func newConcurrentStore[K comparable, V any](capacity int, opt Options[K, V]) *concurrentStore[K, V] {
	s := &concurrentStore[K, V]{
		storeBase: storeBase[K, V]{cap: capacity, opt: opt},
		list:      newRecencyList[K, V](),
	}
	s.trk = opt.Policy.New(concurrentHooks[K, V]{s})
	return s
}

func (s *concurrentStore[K, V]) get(k K) (V, bool) {
	var zero V

	got, ok := s.index.Load(k)
	if !ok {
		s.miss()
		return zero, false
	}
	n := got.(*node[K, V])

	s.listMu.Lock()
	if n.dead.Load() {
		// Evicted between the lock-free load and taking the lock.
		s.listMu.Unlock()
		s.miss()
		return zero, false
	}
	if expiredAt(n, s.now()) {
		ev := s.evictLocked(n, EvictTTL)
		s.listMu.Unlock()
		s.evicted(EvictTTL)
		s.miss()
		s.notify(ev)
		return zero, false
	}
	s.trk.OnGet(n)
	v := n.val
	s.listMu.Unlock()

	s.hit()
	return v, true
}

func (s *concurrentStore[K, V]) set(k K, v V, exp int64) {
	fresh := &node[K, V]{key: k, val: v}
	fresh.exp.Store(exp)

	var evs []pair[K, V]

	s.listMu.Lock()
	// LoadOrStore makes lookup-or-insert one atomic step, and holding
	// listMu makes a loaded node necessarily live: eviction deletes
	// from the index before releasing the lock.
	got, loaded := s.index.LoadOrStore(k, fresh)
	if loaded {
		n := got.(*node[K, V])
		n.val = v
		n.exp.Store(exp)
		s.trk.OnUpdate(n)
		s.listMu.Unlock()
		return
	}
	s.count.Add(1)
	if victim := s.trk.OnAdd(fresh); victim != nil {
		evs = append(evs, s.evictLocked(victim.(*node[K, V]), EvictPolicy))
	}
	evs = s.trimLocked(evs)
	s.listMu.Unlock()

	s.finishEvictions(evs)
}

func (s *concurrentStore[K, V]) add(k K, v V, exp int64) bool {
	var evs []pair[K, V]

	s.listMu.Lock()
	if got, ok := s.index.Load(k); ok {
		n := got.(*node[K, V])
		if !expiredAt(n, s.now()) {
			s.listMu.Unlock()
			return false
		}
		evs = append(evs, s.evictLocked(n, EvictTTL))
	}
	n := &node[K, V]{key: k, val: v}
	n.exp.Store(exp)
	s.index.Store(k, n)
	s.count.Add(1)
	if victim := s.trk.OnAdd(n); victim != nil {
		evs = append(evs, s.evictLocked(victim.(*node[K, V]), EvictPolicy))
	}
	evs = s.trimLocked(evs)
	s.listMu.Unlock()

	s.finishEvictions(evs)
	return true
}

func (s *concurrentStore[K, V]) remove(k K) (V, bool) {
	var zero V

	s.listMu.Lock()
	got, ok := s.index.LoadAndDelete(k)
	if !ok {
		s.listMu.Unlock()
		return zero, false
	}
	n := got.(*node[K, V])
	s.trk.OnRemove(n)
	s.list.remove(n)
	n.dead.Store(true)
	s.count.Add(-1)
	v := n.val
	s.listMu.Unlock()

	return v, true
}

// contains is entirely lock-free: index load plus two atomic reads.
func (s *concurrentStore[K, V]) contains(k K) bool {
	got, ok := s.index.Load(k)
	if !ok {
		return false
	}
	n := got.(*node[K, V])
	return !n.dead.Load() && !expiredAt(n, s.now())
}

func (s *concurrentStore[K, V]) peek(k K) (V, bool) {
	var zero V

	got, ok := s.index.Load(k)
	if !ok {
		return zero, false
	}
	n := got.(*node[K, V])

	// Values are written under listMu on update, so the snapshot is
	// taken under it too. No promotion.
	s.listMu.Lock()
	defer s.listMu.Unlock()
	if n.dead.Load() || expiredAt(n, s.now()) {
		return zero, false
	}
	return n.val, true
}

func (s *concurrentStore[K, V]) appendKeys(dst []K) []K {
	s.listMu.Lock()
	defer s.listMu.Unlock()

	for n := s.list.head.next; n != s.list.tail; n = n.next {
		dst = append(dst, n.key)
	}
	return dst
}

func (s *concurrentStore[K, V]) len() int {
	return int(s.count.Load())
}

func (s *concurrentStore[K, V]) clear() {
	s.listMu.Lock()
	defer s.listMu.Unlock()

	// Mark before dropping: lock-free readers may still hold these
	// nodes.
	for n := s.list.head.next; n != s.list.tail; n = n.next {
		s.index.Delete(n.key)
		n.dead.Store(true)
	}
	s.list.reset()
	s.trk.Reset()
	s.count.Store(0)
}

func (s *concurrentStore[K, V]) collectExpired() []pair[K, V] {
	var evs []pair[K, V]

	s.listMu.Lock()
	now := s.now()
	for n := s.list.head.next; n != s.list.tail; {
		next := n.next
		if expiredAt(n, now) {
			evs = append(evs, s.evictLocked(n, EvictTTL))
		}
		n = next
	}
	s.listMu.Unlock()

	for _, e := range evs {
		s.evicted(e.reason)
	}
	return evs
}

// evictLocked unlinks n, drops it from the index and marks it dead.
// Callers hold listMu and account for the returned pair once unlocked.
func (s *concurrentStore[K, V]) evictLocked(n *node[K, V], reason EvictReason) pair[K, V] {
	s.trk.OnRemove(n)
	s.list.remove(n)
	s.index.Delete(n.key)
	n.dead.Store(true)
	s.count.Add(-1)
	return pair[K, V]{key: n.key, val: n.val, reason: reason}
}

func (s *concurrentStore[K, V]) trimLocked(evs []pair[K, V]) []pair[K, V] {
	for s.list.len() > s.cap {
		lru := s.list.back()
		if lru == nil {
			break
		}
		evs = append(evs, s.evictLocked(lru, EvictCapacity))
	}
	return evs
}

func (s *concurrentStore[K, V]) finishEvictions(evs []pair[K, V]) {
	for _, e := range evs {
		s.evicted(e.reason)
	}
	s.notify(evs...)
}

// concurrentHooks adapts the store's list to policy.Hooks. Calls arrive
// with listMu already held.
type concurrentHooks[K comparable, V any] struct {
	s *concurrentStore[K, V]
}

func (h concurrentHooks[K, V]) PushFront(n policy.Node[K, V]) {
	h.s.list.pushFront(n.(*node[K, V]))
}

func (h concurrentHooks[K, V]) MoveToFront(n policy.Node[K, V]) {
	h.s.list.moveToFront(n.(*node[K, V]))
}

func (h concurrentHooks[K, V]) Remove(n policy.Node[K, V]) {
	h.s.list.remove(n.(*node[K, V]))
}

func (h concurrentHooks[K, V]) Back() policy.Node[K, V] {
	if n := h.s.list.back(); n != nil {
		return n
	}
	return nil
}

func (h concurrentHooks[K, V]) Len() int { return h.s.list.len() }
