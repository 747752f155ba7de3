package core

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// DefaultStackSize is the stack reservation of every thread and of the
// scheduler context.
const DefaultStackSize = 2 << 20 // 2 MiB

// StackAllocator accounts stack reservations against an optional budget.
//
// Goroutine stacks are grown by the Go runtime, so a Stack does not pin
// memory; it is the owned resource that bounds how many contexts may exist
// and that must be released exactly once.
type StackAllocator struct {
	mu       sync.Mutex
	limit    int64
	inUse    int64
	live     int
	released int64
}

// NewStackAllocator creates an allocator. limit <= 0 means unlimited.
func NewStackAllocator(limit int64) *StackAllocator {
	return &StackAllocator{limit: limit}
}

// Allocate reserves size bytes.
func (a *StackAllocator) Allocate(size int) (*Stack, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: invalid stack size %d", ErrContext, size)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.limit > 0 && a.inUse+int64(size) > a.limit {
		return nil, fmt.Errorf("%w: %w: %d bytes in use, %d requested, limit %d",
			ErrContext, ErrStackExhausted, a.inUse, size, a.limit)
	}
	a.inUse += int64(size)
	a.live++
	return &Stack{size: size, owner: a}, nil
}

func (a *StackAllocator) free(size int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.inUse -= int64(size)
	a.live--
	a.released++
}

// InUse returns the bytes currently reserved.
func (a *StackAllocator) InUse() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.inUse
}

// Live returns the number of unreleased stacks.
func (a *StackAllocator) Live() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.live
}

// Released returns how many stacks have been released so far.
func (a *StackAllocator) Released() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.released
}

// Stack is a fixed-size reservation owned by one execution context.
type Stack struct {
	size     int
	owner    *StackAllocator
	released atomic.Bool
}

// Size returns the reserved size in bytes.
func (s *Stack) Size() int { return s.size }

// Release returns the reservation to its allocator. Only the first call has
// an effect; it reports whether this call released the stack.
func (s *Stack) Release() bool {
	if s == nil || !s.released.CompareAndSwap(false, true) {
		return false
	}
	s.owner.free(s.size)
	return true
}
