package debugstore

// ringBuffer is a fixed-capacity, overwrite-oldest container for the most
// recent values. All memory is allocated at construction; insert never
// allocates, never fails, and never evicts explicitly — a write into a full
// buffer silently replaces the logically oldest slot.
//
// The ring buffer is not safe for concurrent use. Synchronization is the
// responsibility of the guarding layer above it.
type ringBuffer[T any] struct {
	slots []slot[T] // fully allocated at construction
	head  int       // index for the next write, wraps modulo capacity
}

type slot[T any] struct {
	val T
	set bool
}

func newRingBuffer[T any](capacity int) *ringBuffer[T] {
	if capacity < 0 {
		capacity = 0
	}
	return &ringBuffer[T]{
		slots: make([]slot[T], capacity),
	}
}

// insert writes the value at the head cursor and advances it. A zero-capacity
// buffer accepts and discards everything.
func (rb *ringBuffer[T]) insert(val T) {
	// Safety first.
	if len(rb.slots) == 0 {
		return
	}

	// Write the value at the write cursor, overwriting any prior occupant.
	rb.slots[rb.head] = slot[T]{val: val, set: true}

	// Advance the write cursor.
	rb.head++
	if rb.head >= len(rb.slots) {
		rb.head -= len(rb.slots)
	}
}

// isFull reports whether the buffer has wrapped at least once. It checks the
// final slot rather than counting occupancy: the head cursor only returns to
// zero after writing that slot. A cheap heuristic, not a precise count.
func (rb *ringBuffer[T]) isFull() bool {
	if len(rb.slots) == 0 {
		return true
	}
	return rb.slots[len(rb.slots)-1].set
}

// size returns the number of occupied slots: the head cursor before the
// first wrap, the full capacity after.
func (rb *ringBuffer[T]) size() int {
	if rb.isFull() {
		return len(rb.slots)
	}
	return rb.head
}

// toOrdered returns the occupied slots in insertion order, oldest first,
// starting at the head cursor and cycling around. O(capacity).
func (rb *ringBuffer[T]) toOrdered() []T {
	vals := make([]T, 0, rb.size())
	for i := 0; i < len(rb.slots); i++ {
		cur := rb.head + i
		if cur >= len(rb.slots) {
			cur -= len(rb.slots)
		}
		if rb.slots[cur].set {
			vals = append(vals, rb.slots[cur].val)
		}
	}
	return vals
}
