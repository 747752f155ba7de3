package core

import (
	"slices"
	"testing"
)

func tcbWithKey(id ThreadID, key int64) *TCB {
	t := newTCB(id, 0, StateReady)
	t.key = key
	return t
}

// TestSchedulingQueue_Stability verifies key ordering with FIFO tie-break
// Given: A queue with mixed keys, some equal
// When: TCBs are popped
// Then: They come out by ascending key, in insertion order among equal keys
func TestSchedulingQueue_Stability(t *testing.T) {
	// Arrange
	q := NewSchedulingQueue()
	q.Insert(tcbWithKey(1, 5))
	q.Insert(tcbWithKey(2, 1))
	q.Insert(tcbWithKey(3, 5))
	q.Insert(tcbWithKey(4, 1))
	q.Insert(tcbWithKey(5, 3))

	// Act
	var got []ThreadID
	for !q.IsEmpty() {
		got = append(got, q.PopMin().ID())
	}

	// Assert
	want := []ThreadID{2, 4, 5, 1, 3}
	if !slices.Equal(got, want) {
		t.Fatalf("pop order = %v, want %v", got, want)
	}
}

// TestSchedulingQueue_PeekDoesNotRemove verifies PeekMin leaves the queue intact
func TestSchedulingQueue_PeekDoesNotRemove(t *testing.T) {
	q := NewSchedulingQueue()
	if q.PeekMin() != nil {
		t.Fatal("PeekMin on empty queue should be nil")
	}
	if q.PopMin() != nil {
		t.Fatal("PopMin on empty queue should be nil")
	}

	q.Insert(tcbWithKey(7, 2))
	q.Insert(tcbWithKey(8, 1))

	if got := q.PeekMin().ID(); got != 8 {
		t.Fatalf("PeekMin = %d, want 8", got)
	}
	if q.Len() != 2 {
		t.Fatalf("Len = %d, want 2", q.Len())
	}
}

// TestSchedulingQueue_FindAndRemove verifies id lookup and removal
// Given: A queue with three TCBs
// When: The middle one is found, then removed
// Then: Find does not remove it, Remove does, and the remaining order holds
func TestSchedulingQueue_FindAndRemove(t *testing.T) {
	// Arrange
	q := NewSchedulingQueue()
	q.Insert(tcbWithKey(1, 1))
	q.Insert(tcbWithKey(2, 2))
	q.Insert(tcbWithKey(3, 3))

	// Act and Assert - Find
	if got := q.Find(2); got == nil || got.ID() != 2 {
		t.Fatalf("Find(2) = %v, want thread 2", got)
	}
	if q.Len() != 3 {
		t.Fatalf("Len after Find = %d, want 3", q.Len())
	}
	if q.Find(9) != nil {
		t.Fatal("Find(9) should be nil")
	}

	// Act and Assert - Remove
	if got := q.Remove(2); got == nil || got.ID() != 2 {
		t.Fatalf("Remove(2) = %v, want thread 2", got)
	}
	if q.Remove(2) != nil {
		t.Fatal("second Remove(2) should be nil")
	}
	if got := q.IDs(); !slices.Equal(got, []ThreadID{1, 3}) {
		t.Fatalf("IDs = %v, want [1 3]", got)
	}
}

// TestSchedulingQueue_KeyCapturedAtInsert verifies later key changes do not reorder
func TestSchedulingQueue_KeyCapturedAtInsert(t *testing.T) {
	q := NewSchedulingQueue()
	a := tcbWithKey(1, 1)
	b := tcbWithKey(2, 2)
	q.Insert(a)
	q.Insert(b)

	a.key = 100

	if got := q.PopMin().ID(); got != 1 {
		t.Fatalf("PopMin = %d, want 1", got)
	}
}

// TestSchedulingQueue_ReinsertMovesBehindEquals verifies re-inserting re-keys in place
func TestSchedulingQueue_ReinsertMovesBehindEquals(t *testing.T) {
	q := NewSchedulingQueue()
	a := tcbWithKey(1, 0)
	q.Insert(a)
	q.Insert(tcbWithKey(2, 0))

	q.Insert(a)

	if q.Len() != 2 {
		t.Fatalf("Len = %d, want 2", q.Len())
	}
	if got := q.IDs(); !slices.Equal(got, []ThreadID{2, 1}) {
		t.Fatalf("IDs = %v, want [2 1]", got)
	}
}

// TestSchedulingQueue_IDsDoesNotMutate verifies IDs is a read-only view
func TestSchedulingQueue_IDsDoesNotMutate(t *testing.T) {
	q := NewSchedulingQueue()
	for i := range 5 {
		q.Insert(tcbWithKey(ThreadID(i+1), int64(5-i)))
	}

	first := q.IDs()
	second := q.IDs()

	if !slices.Equal(first, []ThreadID{5, 4, 3, 2, 1}) {
		t.Fatalf("IDs = %v, want [5 4 3 2 1]", first)
	}
	if !slices.Equal(first, second) {
		t.Fatalf("IDs changed between calls: %v vs %v", first, second)
	}
	if q.Len() != 5 {
		t.Fatalf("Len = %d, want 5", q.Len())
	}
	if got := q.Remove(3); got == nil {
		t.Fatal("Remove(3) after IDs should still find the thread")
	}
}
