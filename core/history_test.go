package core

import "testing"

// TestExecutionHistory_Capacity verifies old records are evicted first
// Given: A history with capacity 3
// When: Five records are added
// Then: Only the newest three remain, newest first
func TestExecutionHistory_Capacity(t *testing.T) {
	// Arrange
	h := newExecutionHistory(3)

	// Act
	for i := 1; i <= 5; i++ {
		h.Add(ThreadRecord{ID: ThreadID(i)})
	}

	// Assert
	got := h.Recent(0)
	if len(got) != 3 {
		t.Fatalf("len(Recent) = %d, want 3", len(got))
	}
	for i, want := range []ThreadID{5, 4, 3} {
		if got[i].ID != want {
			t.Fatalf("Recent[%d].ID = %d, want %d", i, got[i].ID, want)
		}
	}
	if limited := h.Recent(2); len(limited) != 2 || limited[0].ID != 5 {
		t.Fatalf("Recent(2) = %+v, want two records starting at 5", limited)
	}
	if last, ok := h.Last(); !ok || last.ID != 5 {
		t.Fatalf("Last = %+v/%v, want 5/true", last, ok)
	}
}

func TestExecutionHistory_Empty(t *testing.T) {
	h := newExecutionHistory(0)
	if h.capacity != DefaultHistoryCapacity {
		t.Fatalf("capacity = %d, want %d", h.capacity, DefaultHistoryCapacity)
	}
	if got := h.Recent(5); got != nil {
		t.Fatalf("Recent on empty = %v, want nil", got)
	}
	if _, ok := h.Last(); ok {
		t.Fatal("Last on empty should report false")
	}
}
