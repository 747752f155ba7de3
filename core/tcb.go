package core

import (
	"fmt"
	"time"
)

// ThreadID identifies a logical thread. Ids are assigned in increasing order
// starting at MainThreadID and are never reused.
type ThreadID int

const (
	// MainThreadID is reserved for the flow that first touched the runtime.
	MainThreadID ThreadID = 0

	// NoThread marks the absence of a thread.
	NoThread ThreadID = -1
)

// EntryFunc is the body of a logical thread. Its return value is kept in the
// thread's history record.
type EntryFunc func(arg any) any

// ThreadState is the scheduling state of a TCB.
type ThreadState int

const (
	StateReady ThreadState = iota
	StateRunning
	StateBlocked
	StateFinished
)

func (s ThreadState) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateRunning:
		return "running"
	case StateBlocked:
		return "blocked"
	case StateFinished:
		return "finished"
	default:
		return fmt.Sprintf("ThreadState(%d)", int(s))
	}
}

// allowedTransitions lists, per target state, the states it may be entered from.
var allowedTransitions = map[ThreadState][]ThreadState{
	StateReady:    {StateRunning, StateBlocked},
	StateRunning:  {StateReady},
	StateBlocked:  {StateRunning},
	StateFinished: {StateRunning},
}

// TCB is the thread control block of one logical thread.
//
// A TCB is held by exactly one owner at a time: the ready queue, the blocked
// queue, a semaphore's wait queue, or the runtime's running slot.
type TCB struct {
	id       ThreadID
	state    ThreadState
	key      int64
	priority int
	ctx      ExecutionContext
	waitedBy *TCB

	createdAt time.Time
	result    any
	panicked  bool
}

func newTCB(id ThreadID, priority int, state ThreadState) *TCB {
	return &TCB{
		id:        id,
		state:     state,
		key:       int64(priority),
		priority:  priority,
		createdAt: time.Now(),
	}
}

// ID returns the thread id.
func (t *TCB) ID() ThreadID { return t.id }

// State returns the current scheduling state.
func (t *TCB) State() ThreadState { return t.state }

// Key returns the current scheduling key.
func (t *TCB) Key() int64 { return t.key }

// WaitedBy returns the id of the joining thread, or NoThread.
func (t *TCB) WaitedBy() ThreadID {
	if t.waitedBy == nil {
		return NoThread
	}
	return t.waitedBy.id
}

func (t *TCB) transition(to ThreadState) error {
	for _, from := range allowedTransitions[to] {
		if t.state == from {
			t.state = to
			return nil
		}
	}
	return fmt.Errorf("%w: thread %d %s -> %s", ErrInvalidState, t.id, t.state, to)
}

func (t *TCB) markReady() error    { return t.transition(StateReady) }
func (t *TCB) markRunning() error  { return t.transition(StateRunning) }
func (t *TCB) markFinished() error { return t.transition(StateFinished) }

// markBlocked blocks a running thread and stores its elapsed run time as key.
func (t *TCB) markBlocked(elapsed int64) error {
	if err := t.transition(StateBlocked); err != nil {
		return err
	}
	t.key = elapsed
	return nil
}

// markYielded returns a running thread to ready with its elapsed run time as key.
func (t *TCB) markYielded(elapsed int64) error {
	if t.state != StateRunning {
		return fmt.Errorf("%w: thread %d yielded while %s", ErrInvalidState, t.id, t.state)
	}
	t.state = StateReady
	t.key = elapsed
	return nil
}

// setWaiter registers w as the single joiner of t.
func (t *TCB) setWaiter(w *TCB) error {
	if t.waitedBy != nil {
		return fmt.Errorf("%w: thread %d is already awaited by thread %d",
			ErrInvalidJoinTarget, t.id, t.waitedBy.id)
	}
	t.waitedBy = w
	return nil
}

// destroy releases the context and the stack it owns.
func (t *TCB) destroy() {
	if t.ctx != nil {
		t.ctx.Release()
		t.ctx = nil
	}
	t.waitedBy = nil
}
