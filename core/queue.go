package core

import "container/heap"

const defaultQueueCap = 16

// =============================================================================
// SchedulingQueue: Min-Heap of TCBs with Stability (FIFO for equal keys)
// =============================================================================

type queueItem struct {
	tcb      *TCB
	key      int64
	sequence uint64 // For stability
	index    int    // For heap
}

// queueHeap implements heap.Interface
type queueHeap []*queueItem

func (h queueHeap) Len() int { return len(h) }

// Less orders by ascending key, then by insertion sequence (FIFO)
func (h queueHeap) Less(i, j int) bool {
	if h[i].key != h[j].key {
		return h[i].key < h[j].key
	}
	return h[i].sequence < h[j].sequence
}

func (h queueHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *queueHeap) Push(x any) {
	n := len(*h)
	item := x.(*queueItem)
	item.index = n
	*h = append(*h, item)
}

func (h *queueHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil // Avoid memory leak
	item.index = -1
	*h = old[0 : n-1]
	return item
}

// SchedulingQueue holds TCBs ordered by scheduling key, lowest first.
// The key is captured at insertion time.
//
// SchedulingQueue is not safe for concurrent use; the Runtime serializes
// every access.
type SchedulingQueue struct {
	pq           queueHeap
	byID         map[ThreadID]*queueItem
	nextSequence uint64
}

// NewSchedulingQueue creates an empty queue.
func NewSchedulingQueue() *SchedulingQueue {
	return &SchedulingQueue{
		pq:   make(queueHeap, 0, defaultQueueCap),
		byID: make(map[ThreadID]*queueItem),
	}
}

// Insert adds t keyed by its current scheduling key.
// A TCB already present is re-keyed and moved behind its equals.
func (q *SchedulingQueue) Insert(t *TCB) {
	if old, ok := q.byID[t.id]; ok {
		heap.Remove(&q.pq, old.index)
	}
	item := &queueItem{
		tcb:      t,
		key:      t.key,
		sequence: q.nextSequence,
	}
	q.nextSequence++
	q.byID[t.id] = item
	heap.Push(&q.pq, item)
}

// PeekMin returns the lowest-key TCB without removing it, or nil.
func (q *SchedulingQueue) PeekMin() *TCB {
	if len(q.pq) == 0 {
		return nil
	}
	return q.pq[0].tcb
}

// PopMin removes and returns the lowest-key TCB, or nil when empty.
func (q *SchedulingQueue) PopMin() *TCB {
	if len(q.pq) == 0 {
		return nil
	}
	item := heap.Pop(&q.pq).(*queueItem)
	delete(q.byID, item.tcb.id)
	return item.tcb
}

// Find returns the TCB with the given id without removing it, or nil.
func (q *SchedulingQueue) Find(id ThreadID) *TCB {
	if item, ok := q.byID[id]; ok {
		return item.tcb
	}
	return nil
}

// Remove removes and returns the TCB with the given id, or nil.
func (q *SchedulingQueue) Remove(id ThreadID) *TCB {
	item, ok := q.byID[id]
	if !ok {
		return nil
	}
	heap.Remove(&q.pq, item.index)
	delete(q.byID, id)
	return item.tcb
}

// Len returns the number of queued TCBs.
func (q *SchedulingQueue) Len() int {
	return len(q.pq)
}

// IsEmpty reports whether the queue holds no TCB.
func (q *SchedulingQueue) IsEmpty() bool {
	return q.Len() == 0
}

// IDs returns the queued ids in dequeue order. It does not modify the queue.
func (q *SchedulingQueue) IDs() []ThreadID {
	sorted := make([]ThreadID, 0, len(q.pq))
	// Pop copies so the live items keep their heap indexes.
	scratch := make(queueHeap, len(q.pq))
	for i, it := range q.pq {
		scratch[i] = &queueItem{tcb: it.tcb, key: it.key, sequence: it.sequence, index: i}
	}
	heap.Init(&scratch)
	for scratch.Len() > 0 {
		sorted = append(sorted, heap.Pop(&scratch).(*queueItem).tcb.id)
	}
	return sorted
}
