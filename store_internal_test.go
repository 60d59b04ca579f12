package debugstore

import (
	"testing"
	"time"
)

func TestSnapshotUnavailable(t *testing.T) {
	t.Parallel()

	epoch := time.UnixMilli(1_000_000)
	s := NewStore(
		WithMaxWait(5*time.Millisecond),
		WithClock(func() time.Time { return epoch }),
	)

	s.Record("y")

	// Hold the storage lock: the length probe and the fold both time out, so
	// the snapshot degrades to sentinels while the header still renders.
	if !s.guarded.acquire() {
		t.Fatal("couldn't take uncontended lock")
	}

	assertEqual(t, s.Snapshot(), "1,-1,0::-")
	assertEqual(t, s.LockMissCount(), uint64(2))

	s.guarded.release()

	assertEqual(t, s.Snapshot(), "1,1,0::ID:0,T:1000000,N:y")
	assertEqual(t, s.LockMissCount(), uint64(2))
}

func TestBeginReturnsIDUnderContention(t *testing.T) {
	t.Parallel()

	s := NewStore(WithMaxWait(5 * time.Millisecond))

	// Hold the storage lock: the start event's insert provably times out,
	// but the caller still gets a usable id.
	if !s.guarded.acquire() {
		t.Fatal("couldn't take uncontended lock")
	}

	id := s.Begin("x")
	if id == 0 {
		t.Fatal("Begin returned the zero sentinel")
	}
	assertEqual(t, s.LockMissCount(), uint64(1))

	s.guarded.release()

	assertEqual(t, s.Stats().TotalEntries, uint64(0))

	// The id from the dropped start still closes normally.
	s.End(id)

	events, ok := s.Events()
	assertEqual(t, ok, true)
	assertEqual(t, len(events), 1)
	assertEqual(t, events[0].Kind, KindDurationEnd)
	assertEqual(t, events[0].ID, id)
}
