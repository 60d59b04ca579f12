package debugstore

import (
	"errors"
	"testing"
	"time"
)

func TestGuardedStorageInsertAndFold(t *testing.T) {
	t.Parallel()

	gs := newGuardedStorage[int](3, 10*time.Millisecond)

	for i := 1; i <= 5; i++ {
		assertEqual(t, gs.insert(i), nil)
	}

	collect := func(acc []int, v int) []int { return append(acc, v) }

	have, ok := fold(gs, []int(nil), collect)
	assertEqual(t, ok, true)
	assertEqual(t, have, []int{3, 4, 5})

	n, err := gs.length()
	assertEqual(t, err, nil)
	assertEqual(t, n, 3)
	assertEqual(t, gs.lockMisses(), uint64(0))
}

func TestGuardedStorageFoldNonDestructive(t *testing.T) {
	t.Parallel()

	gs := newGuardedStorage[string](4, 10*time.Millisecond)

	gs.insert("a")
	gs.insert("b")
	gs.insert("c")

	collect := func(acc []string, v string) []string { return append(acc, v) }

	first, ok1 := fold(gs, []string(nil), collect)
	second, ok2 := fold(gs, []string(nil), collect)

	assertEqual(t, ok1, true)
	assertEqual(t, ok2, true)
	assertEqual(t, first, second)
}

func TestGuardedStorageLockTimeout(t *testing.T) {
	t.Parallel()

	gs := newGuardedStorage[int](8, 5*time.Millisecond)

	// Hold the lock so every operation below provably times out.
	if !gs.acquire() {
		t.Fatal("couldn't take uncontended lock")
	}

	if err := gs.insert(1); !errors.Is(err, ErrLockTimeout) {
		t.Fatalf("insert: want ErrLockTimeout, have %v", err)
	}
	assertEqual(t, gs.lockMisses(), uint64(1))

	if _, err := gs.length(); !errors.Is(err, ErrLockTimeout) {
		t.Fatalf("length: want ErrLockTimeout, have %v", err)
	}
	assertEqual(t, gs.lockMisses(), uint64(2))

	if _, ok := fold(gs, 0, func(acc, v int) int { return acc + v }); ok {
		t.Fatal("fold: want unavailable, have ok")
	}
	assertEqual(t, gs.lockMisses(), uint64(3))

	gs.release()

	// The timed-out insert mutated nothing.
	n, err := gs.length()
	assertEqual(t, err, nil)
	assertEqual(t, n, 0)

	// Misses only ever go up, and only on timeouts.
	assertEqual(t, gs.insert(2), nil)
	assertEqual(t, gs.lockMisses(), uint64(3))
}
