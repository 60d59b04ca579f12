package debugstore

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func assertEqual[T any](t *testing.T, have, want T) {
	t.Helper()
	if !cmp.Equal(have, want) {
		t.Fatal(cmp.Diff(have, want))
	}
}

func TestRingBufferOverwrite(t *testing.T) {
	t.Parallel()

	rb := newRingBuffer[string](3)

	assertEqual(t, rb.toOrdered(), []string{})
	assertEqual(t, rb.size(), 0)
	assertEqual(t, rb.isFull(), false)

	rb.insert("A")
	rb.insert("B")
	rb.insert("C")

	assertEqual(t, rb.toOrdered(), []string{"A", "B", "C"})
	assertEqual(t, rb.size(), 3)
	assertEqual(t, rb.isFull(), true)

	rb.insert("D")

	assertEqual(t, rb.toOrdered(), []string{"B", "C", "D"})
	assertEqual(t, rb.size(), 3)

	rb.insert("E")
	rb.insert("F")
	rb.insert("G")
	rb.insert("H")

	assertEqual(t, rb.toOrdered(), []string{"F", "G", "H"})
	assertEqual(t, rb.size(), 3)
}

func TestRingBufferExtraInserts(t *testing.T) {
	t.Parallel()

	// capacity + k inserts leave exactly the last capacity values, in order.
	for _, k := range []int{1, 2, 7, 100} {
		const capacity = 5

		rb := newRingBuffer[int](capacity)
		for i := 0; i < capacity+k; i++ {
			rb.insert(i)
		}

		want := []int{}
		for i := k; i < capacity+k; i++ {
			want = append(want, i)
		}

		assertEqual(t, rb.toOrdered(), want)
	}
}

func TestRingBufferZeroCapacity(t *testing.T) {
	t.Parallel()

	rb := newRingBuffer[int](0)

	rb.insert(1)
	rb.insert(2)

	assertEqual(t, rb.size(), 0)
	assertEqual(t, rb.toOrdered(), []int{})
	assertEqual(t, rb.isFull(), true)

	rb = newRingBuffer[int](-1) // clamped to 0

	rb.insert(1)

	assertEqual(t, rb.size(), 0)
}

func TestRingBufferSizeBeforeWrap(t *testing.T) {
	t.Parallel()

	rb := newRingBuffer[int](4)

	for i := 1; i <= 4; i++ {
		rb.insert(i)
		assertEqual(t, rb.size(), i)
	}

	// Once wrapped, size always reports capacity.
	rb.insert(5)
	assertEqual(t, rb.size(), 4)
	rb.insert(6)
	assertEqual(t, rb.size(), 4)
}
