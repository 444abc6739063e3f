package twoq

import (
	"testing"

	"github.com/akgit4713/lrucache/policy"
)

type fakeNode struct {
	key string
	val int
}

func (n *fakeNode) Key() string { return n.key }
func (n *fakeNode) Value() *int { return &n.val }

// recorder implements policy.Hooks over a slice, front at index 0.
type recorder struct {
	order []policy.Node[string, int]
}

func (r *recorder) PushFront(n policy.Node[string, int]) {
	r.order = append([]policy.Node[string, int]{n}, r.order...)
}

func (r *recorder) MoveToFront(n policy.Node[string, int]) {
	r.Remove(n)
	r.PushFront(n)
}

func (r *recorder) Remove(n policy.Node[string, int]) {
	for i, o := range r.order {
		if o == n {
			r.order = append(r.order[:i], r.order[i+1:]...)
			return
		}
	}
}

func (r *recorder) Back() policy.Node[string, int] {
	if len(r.order) == 0 {
		return nil
	}
	return r.order[len(r.order)-1]
}

func (r *recorder) Len() int { return len(r.order) }

// evict mimics what a store does with a named victim: tell the tracker,
// then unlink.
func evict(trk policy.Tracker[string, int], rec *recorder, victim policy.Node[string, int]) {
	trk.OnRemove(victim)
	rec.Remove(victim)
}

func TestProbationOverflowNamesOldest(t *testing.T) {
	t.Parallel()
	rec := &recorder{}
	trk := New[string, int](2, 4).New(rec)

	n1 := &fakeNode{key: "k1"}
	n2 := &fakeNode{key: "k2"}
	n3 := &fakeNode{key: "k3"}

	if v := trk.OnAdd(n1); v != nil {
		t.Fatalf("first add named victim %v", v.Key())
	}
	if v := trk.OnAdd(n2); v != nil {
		t.Fatalf("second add named victim %v", v.Key())
	}
	v := trk.OnAdd(n3)
	if v == nil {
		t.Fatal("third add should overflow probation")
	}
	if v != n1 {
		t.Fatalf("victim = %s, want k1", v.Key())
	}
}

func TestSecondHitGraduates(t *testing.T) {
	t.Parallel()
	rec := &recorder{}
	trk := New[string, int](2, 4).New(rec)

	n1 := &fakeNode{key: "k1"}
	trk.OnAdd(n1)
	trk.OnGet(n1) // k1 leaves probation for the main queue

	n2 := &fakeNode{key: "k2"}
	n3 := &fakeNode{key: "k3"}
	if v := trk.OnAdd(n2); v != nil {
		t.Fatalf("add k2 named victim %v", v.Key())
	}
	if v := trk.OnAdd(n3); v != nil {
		t.Fatalf("add k3 named victim %v; probation had room", v.Key())
	}

	// Probation is full with k2 and k3; the graduated k1 is untouchable.
	n4 := &fakeNode{key: "k4"}
	v := trk.OnAdd(n4)
	if v == nil {
		t.Fatal("add k4 should overflow probation")
	}
	if v.Key() != "k2" {
		t.Fatalf("victim = %s, want k2", v.Key())
	}
}

func TestGhostHitSkipsProbation(t *testing.T) {
	t.Parallel()
	rec := &recorder{}
	trk := New[string, int](1, 4).New(rec)

	n1 := &fakeNode{key: "k1"}
	n2 := &fakeNode{key: "k2"}
	trk.OnAdd(n1)
	if v := trk.OnAdd(n2); v != n1 {
		t.Fatal("expected k1 to overflow probation")
	}
	evict(trk, rec, n1) // k1 becomes a ghost

	// The key returns: a fresh node, admitted straight to the main
	// queue, leaving probation (holding k2) untouched.
	n1again := &fakeNode{key: "k1"}
	if v := trk.OnAdd(n1again); v != nil {
		t.Fatalf("ghost re-add named victim %v", v.Key())
	}

	n3 := &fakeNode{key: "k3"}
	v := trk.OnAdd(n3)
	if v == nil || v.Key() != "k2" {
		t.Fatal("probation should overflow with k2, proving k1 bypassed it")
	}
}

func TestGhostHistoryIsBounded(t *testing.T) {
	t.Parallel()
	rec := &recorder{}
	trk := New[string, int](1, 2).New(rec)

	// Push three keys through probation; the ghost queue holds two, so
	// the record of k1 is gone.
	for _, k := range []string{"k1", "k2", "k3", "k4"} {
		if v := trk.OnAdd(&fakeNode{key: k}); v != nil {
			evict(trk, rec, v)
		}
	}

	// k1 is no ghost anymore: re-adding it lands in probation, which
	// still holds k4 and therefore overflows.
	n1again := &fakeNode{key: "k1"}
	v := trk.OnAdd(n1again)
	if v == nil || v.Key() != "k4" {
		t.Fatal("expected k1 back in probation, overflowing k4")
	}

	// k3 was ghosted recently; it still skips probation.
	evict(trk, rec, v)
	n3again := &fakeNode{key: "k3"}
	if v := trk.OnAdd(n3again); v != nil {
		t.Fatalf("recent ghost k3 re-entered probation, victim %v", v.Key())
	}
}

func TestMainQueueDeparturesLeaveNoGhost(t *testing.T) {
	t.Parallel()
	rec := &recorder{}
	trk := New[string, int](1, 4).New(rec)

	n1 := &fakeNode{key: "k1"}
	trk.OnAdd(n1)
	trk.OnGet(n1) // graduate
	evict(trk, rec, n1)

	// No ghost was written, so the key starts over in probation.
	n1again := &fakeNode{key: "k1"}
	if v := trk.OnAdd(n1again); v != nil {
		t.Fatalf("probation had room, victim %v", v.Key())
	}
	n2 := &fakeNode{key: "k2"}
	v := trk.OnAdd(n2)
	if v == nil || v.Key() != "k1" {
		t.Fatal("expected k1 to be probationary again and overflow")
	}
}

func TestResetDropsAllState(t *testing.T) {
	t.Parallel()
	rec := &recorder{}
	trk := New[string, int](1, 4).New(rec)

	n1 := &fakeNode{key: "k1"}
	n2 := &fakeNode{key: "k2"}
	trk.OnAdd(n1)
	if v := trk.OnAdd(n2); v != nil {
		evict(trk, rec, v) // ghosts k1
	}
	rec.Remove(n2)
	trk.Reset()

	// The ghost record of k1 is gone: it re-enters probation.
	n1again := &fakeNode{key: "k1"}
	if v := trk.OnAdd(n1again); v != nil {
		t.Fatalf("fresh tracker named victim %v", v.Key())
	}
	n3 := &fakeNode{key: "k3"}
	v := trk.OnAdd(n3)
	if v == nil || v.Key() != "k1" {
		t.Fatal("expected k1 in probation after Reset")
	}
}
