package debugstore

// DrainBuffer is a bounded multi-producer multi-consumer queue that never
// blocks and never reports contention. It is the alternative storage
// discipline to the default guarded ring buffer: there is no lock to miss and
// therefore no miss counter, but every drain empties the buffer, so
// snapshots built over it are destructive rather than repeatable. A store
// uses it when constructed with [WithDrainStorage]; the two disciplines are
// never mixed within one store.
type DrainBuffer[T any] struct {
	ch chan T
}

// NewDrainBuffer returns an empty drain buffer with the given capacity.
func NewDrainBuffer[T any](capacity int) *DrainBuffer[T] {
	if capacity < 0 {
		capacity = 0
	}
	return &DrainBuffer[T]{
		ch: make(chan T, capacity),
	}
}

// ForcePush enqueues the value, discarding the oldest queued value to make
// room when the buffer is full. A zero-capacity buffer discards everything.
// With concurrent producers a push may take several eviction rounds; each
// round discards at most one value, and the call always returns.
func (db *DrainBuffer[T]) ForcePush(val T) {
	if cap(db.ch) == 0 {
		return
	}

	for {
		select {
		case db.ch <- val:
			return
		default:
		}

		// Full: evict the oldest value, then try again.
		select {
		case <-db.ch:
		default:
		}
	}
}

// Drain removes and returns all currently queued values, oldest first.
func (db *DrainBuffer[T]) Drain() []T {
	vals := make([]T, 0, len(db.ch))
	for {
		select {
		case val := <-db.ch:
			vals = append(vals, val)
		default:
			return vals
		}
	}
}

// Len reports the number of currently queued values. Approximate under
// concurrent pushes and drains.
func (db *DrainBuffer[T]) Len() int {
	return len(db.ch)
}
