package cache

// recencyList is a doubly linked list ordered from most to least recently
// used, bounded by sentinel head and tail nodes so that insertion and
// removal never special-case the ends: head.next is the hottest entry,
// tail.prev the coldest, and an empty list is head linked straight to
// tail.
//
// The list is not safe for concurrent use; each store wraps it in its own
// locking discipline.
type recencyList[K comparable, V any] struct {
	head *node[K, V]
	tail *node[K, V]
	size int
}

func newRecencyList[K comparable, V any]() *recencyList[K, V] {
	l := &recencyList[K, V]{
		head: &node[K, V]{},
		tail: &node[K, V]{},
	}
	l.head.next = l.tail
	l.tail.prev = l.head
	return l
}

// pushFront links n immediately after the head sentinel. n must not be
// linked already.
func (l *recencyList[K, V]) pushFront(n *node[K, V]) {
	n.prev = l.head
	n.next = l.head.next
	l.head.next.prev = n
	l.head.next = n
	l.size++
}

// moveToFront relinks an already-linked n immediately after the head
// sentinel.
func (l *recencyList[K, V]) moveToFront(n *node[K, V]) {
	if l.head.next == n {
		return
	}
	n.prev.next = n.next
	n.next.prev = n.prev
	n.prev = l.head
	n.next = l.head.next
	l.head.next.prev = n
	l.head.next = n
}

// remove unlinks n and clears its links.
func (l *recencyList[K, V]) remove(n *node[K, V]) {
	n.prev.next = n.next
	n.next.prev = n.prev
	n.prev, n.next = nil, nil
	l.size--
}

// back returns the least recently used entry, or nil when the list is
// empty.
func (l *recencyList[K, V]) back() *node[K, V] {
	if l.size == 0 {
		return nil
	}
	return l.tail.prev
}

// len reports the number of linked entries.
func (l *recencyList[K, V]) len() int { return l.size }

// reset drops every entry by relinking the sentinels directly. The
// dropped nodes keep their stale links; callers mark them dead first if
// anything might still hold a reference.
func (l *recencyList[K, V]) reset() {
	l.head.next = l.tail
	l.tail.prev = l.head
	l.size = 0
}
