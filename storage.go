package debugstore

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
)

// ErrLockTimeout is returned when the storage lock could not be acquired
// within the configured maximum wait. It is the only error in the package:
// every other unusual condition is a valid, silently handled state.
var ErrLockTimeout = errors.New("debugstore: timed out waiting for storage lock")

// guardedStorage wraps a ring buffer behind a lock with a bounded maximum
// wait, so that a caller on a latency-sensitive path is never stalled
// indefinitely by contention. A failed acquisition is counted and reported,
// never retried.
//
// The lock is a weighted semaphore of size one, acquired under a deadline
// context. The miss counter is an independently synchronized atomic, so
// reading it adds no contention to the lock itself.
type guardedStorage[T any] struct {
	sem     *semaphore.Weighted
	buf     *ringBuffer[T]
	maxWait time.Duration
	misses  atomic.Uint64
}

func newGuardedStorage[T any](capacity int, maxWait time.Duration) *guardedStorage[T] {
	return &guardedStorage[T]{
		sem:     semaphore.NewWeighted(1),
		buf:     newRingBuffer[T](capacity),
		maxWait: maxWait,
	}
}

// acquire takes the storage lock, waiting at most maxWait. On expiry it
// increments the miss counter exactly once and reports failure.
func (gs *guardedStorage[T]) acquire() bool {
	ctx, cancel := context.WithTimeout(context.Background(), gs.maxWait)
	defer cancel()

	if err := gs.sem.Acquire(ctx, 1); err != nil {
		gs.misses.Add(1)
		return false
	}

	return true
}

func (gs *guardedStorage[T]) release() {
	gs.sem.Release(1)
}

// insert writes the value into the ring buffer, or returns ErrLockTimeout
// without mutating anything.
func (gs *guardedStorage[T]) insert(val T) error {
	if !gs.acquire() {
		return ErrLockTimeout
	}
	defer gs.release()

	gs.buf.insert(val)

	return nil
}

// length reports the ring buffer's occupancy, subject to the same bounded
// acquisition discipline as insert.
func (gs *guardedStorage[T]) length() (int, error) {
	if !gs.acquire() {
		return 0, ErrLockTimeout
	}
	defer gs.release()

	return gs.buf.size(), nil
}

// lockMisses returns the failed-acquisition count. Lock-free read; always
// succeeds.
func (gs *guardedStorage[T]) lockMisses() uint64 {
	return gs.misses.Load()
}

// fold copies the buffer's ordered contents under the lock, releases it, and
// then applies combine left to right over the copy, starting from init. The
// copy keeps the critical section to a cheap slice build no matter what
// combine costs — combine formats strings and is not cheap.
//
// The second return value is false when the lock could not be acquired within
// the bound. Callers must treat that as "snapshot unavailable", not "empty".
// Fold never mutates the buffer: two consecutive folds with no intervening
// insert see equal sequences.
func fold[T, U any](gs *guardedStorage[T], init U, combine func(U, T) U) (U, bool) {
	if !gs.acquire() {
		return init, false
	}
	vals := gs.buf.toOrdered()
	gs.release()

	acc := init
	for _, val := range vals {
		acc = combine(acc, val)
	}

	return acc, true
}
