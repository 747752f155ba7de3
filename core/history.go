package core

import (
	"sync"

	"github.com/gammazero/deque"
)

// DefaultHistoryCapacity bounds how many finished-thread records are kept.
const DefaultHistoryCapacity = 100

type executionHistory struct {
	mu       sync.Mutex
	capacity int
	items    deque.Deque[ThreadRecord]
}

func newExecutionHistory(capacity int) *executionHistory {
	if capacity < 1 {
		capacity = DefaultHistoryCapacity
	}
	return &executionHistory{capacity: capacity}
}

func (h *executionHistory) Add(record ThreadRecord) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for h.items.Len() >= h.capacity {
		h.items.PopFront()
	}
	h.items.PushBack(record)
}

// Recent returns up to limit records, newest first. limit <= 0 returns all.
func (h *executionHistory) Recent(limit int) []ThreadRecord {
	h.mu.Lock()
	defer h.mu.Unlock()

	n := h.items.Len()
	if n == 0 {
		return nil
	}
	if limit <= 0 || limit > n {
		limit = n
	}

	out := make([]ThreadRecord, 0, limit)
	for i := range limit {
		out = append(out, h.items.At(n-1-i))
	}
	return out
}

func (h *executionHistory) Last() (ThreadRecord, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.items.Len() == 0 {
		return ThreadRecord{}, false
	}
	return h.items.Back(), true
}
