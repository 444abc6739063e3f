// Package twoq implements the 2Q admission policy.
//
// New keys enter a probationary queue (A1in). Keys touched a second time
// graduate to the main queue, which the store's list orders by recency.
// Keys evicted from probation leave behind a key-only ghost record
// (A1out); a re-add that hits a ghost skips probation entirely. One-shot
// scans therefore wash through probation without displacing the hot
// working set.
package twoq

import (
	"container/list"

	"github.com/akgit4713/lrucache/policy"
)

// New returns a 2Q Policy. in bounds the probationary queue and ghosts
// bounds the key-only history; the classic sizing is in at 25% and ghosts
// at 50% of a store's capacity. These are per-store bounds, so pass
// per-shard sizes when the cache is sharded.
func New[K comparable, V any](in, ghosts int) policy.Policy[K, V] {
	if in < 1 {
		in = 1
	}
	if ghosts < 1 {
		ghosts = 1
	}
	return factory[K, V]{in: in, ghosts: ghosts}
}

type factory[K comparable, V any] struct {
	in     int
	ghosts int
}

func (f factory[K, V]) New(h policy.Hooks[K, V]) policy.Tracker[K, V] {
	return &tracker[K, V]{
		h:          h,
		capIn:      f.in,
		capGhost:   f.ghosts,
		in:         list.New(),
		inByNode:   make(map[policy.Node[K, V]]*list.Element),
		ghost:      list.New(),
		ghostByKey: make(map[K]*list.Element),
	}
}

// tracker is a per-store 2Q instance. All methods run under the store's
// list lock, which also guards the tracker's own queues.
type tracker[K comparable, V any] struct {
	h policy.Hooks[K, V]

	capIn    int
	capGhost int

	// A1in, front = youngest. Element values are policy.Node.
	in       *list.List
	inByNode map[policy.Node[K, V]]*list.Element

	// A1out, front = youngest. Element values are keys only.
	ghost      *list.List
	ghostByKey map[K]*list.Element
}

// OnAdd admits n. A ghost hit means the key already proved itself once,
// so it bypasses probation. Otherwise n joins A1in, and if probation now
// overflows its oldest node is handed back as the eviction victim.
func (t *tracker[K, V]) OnAdd(n policy.Node[K, V]) policy.Node[K, V] {
	if el, ok := t.ghostByKey[n.Key()]; ok {
		t.ghost.Remove(el)
		delete(t.ghostByKey, n.Key())
		t.h.PushFront(n)
		return nil
	}

	t.h.PushFront(n)
	t.inByNode[n] = t.in.PushFront(n)

	if t.in.Len() > t.capIn {
		if oldest := t.in.Back(); oldest != nil {
			return oldest.Value.(policy.Node[K, V])
		}
	}
	return nil
}

// OnGet graduates a probationary node into the main queue and promotes
// it.
func (t *tracker[K, V]) OnGet(n policy.Node[K, V]) {
	if el, ok := t.inByNode[n]; ok {
		t.in.Remove(el)
		delete(t.inByNode, n)
	}
	t.h.MoveToFront(n)
}

// OnUpdate counts as a use.
func (t *tracker[K, V]) OnUpdate(n policy.Node[K, V]) { t.OnGet(n) }

// OnRemove records a departing probationary key in the ghost queue so a
// prompt re-add can skip probation. Departures from the main queue leave
// no ghost.
func (t *tracker[K, V]) OnRemove(n policy.Node[K, V]) {
	el, ok := t.inByNode[n]
	if !ok {
		return
	}
	t.in.Remove(el)
	delete(t.inByNode, n)

	k := n.Key()
	if old, ok := t.ghostByKey[k]; ok {
		t.ghost.Remove(old)
	}
	t.ghostByKey[k] = t.ghost.PushFront(k)

	for t.ghost.Len() > t.capGhost {
		oldest := t.ghost.Back()
		if oldest == nil {
			break
		}
		delete(t.ghostByKey, oldest.Value.(K))
		t.ghost.Remove(oldest)
	}
}

// Reset drops both queues.
func (t *tracker[K, V]) Reset() {
	t.in.Init()
	t.ghost.Init()
	clear(t.inByNode)
	clear(t.ghostByKey)
}
