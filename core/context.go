package core

import (
	"fmt"
	"sync"
)

// ExecutionContext is an opaque suspended flow of control. A context owns
// its stack; Release returns the stack and may be called more than once.
type ExecutionContext interface {
	Name() string
	Release()
}

// ContextSwitcher is the context-switch facility consumed by the Runtime.
type ContextSwitcher interface {
	// Current captures the calling flow so that others can switch back to it.
	Current(name string) (ExecutionContext, error)

	// Make builds a context that runs entry on first activation. When entry
	// returns, control passes one-way to successor. A nil successor links the
	// context to itself: it waits to be activated again and reruns entry.
	Make(name string, entry func(), successor ExecutionContext, stack *Stack) (ExecutionContext, error)

	// Swap suspends from and resumes to. It returns once from is resumed.
	Swap(from, to ExecutionContext) error

	// Set resumes to without suspending the caller. The caller must not touch
	// runtime state afterwards.
	Set(to ExecutionContext) error

	// Halt refuses further switches and releases the most recently
	// suspended flow with ErrHalted. Other suspended flows stay parked.
	Halt()
}

// =============================================================================
// GoroutineSwitcher: contexts backed by parked goroutines
// =============================================================================

// GoroutineSwitcher implements ContextSwitcher with one goroutine per
// context. Exactly one of them is unparked at a time; the hand-off is a
// channel send, so runtime state written before a switch is visible to the
// resumed flow.
type GoroutineSwitcher struct {
	halt     chan struct{}
	haltOnce sync.Once

	mu sync.Mutex
	// suspended holds flows parked in Swap, oldest first.
	suspended []*goroutineContext
}

// NewGoroutineSwitcher creates a switcher.
func NewGoroutineSwitcher() *GoroutineSwitcher {
	return &GoroutineSwitcher{halt: make(chan struct{})}
}

type goroutineContext struct {
	name      string
	entry     func()
	successor *goroutineContext
	stack     *Stack
	halt      <-chan struct{}

	// wake holds at most one pending resume; a resume that arrives before
	// the flow parks is not lost. A non-nil value ends the wait with that
	// error.
	wake chan error

	// started is only touched by the flow that activates the context.
	started bool
}

func (c *goroutineContext) Name() string { return c.name }

func (c *goroutineContext) Release() {
	c.stack.Release()
}

// Current implements ContextSwitcher.
func (s *GoroutineSwitcher) Current(name string) (ExecutionContext, error) {
	return &goroutineContext{
		name:    name,
		halt:    s.halt,
		wake:    make(chan error, 1),
		started: true,
	}, nil
}

// Make implements ContextSwitcher.
func (s *GoroutineSwitcher) Make(name string, entry func(), successor ExecutionContext, stack *Stack) (ExecutionContext, error) {
	if entry == nil {
		return nil, fmt.Errorf("%w: context %q has no entry point", ErrContext, name)
	}
	if stack == nil {
		return nil, fmt.Errorf("%w: context %q has no stack", ErrContext, name)
	}

	c := &goroutineContext{
		name:  name,
		entry: entry,
		stack: stack,
		halt:  s.halt,
		wake:  make(chan error, 1),
	}
	if successor != nil {
		succ, err := s.cast(successor)
		if err != nil {
			return nil, err
		}
		c.successor = succ
	}
	return c, nil
}

// Swap implements ContextSwitcher.
func (s *GoroutineSwitcher) Swap(from, to ExecutionContext) error {
	f, err := s.cast(from)
	if err != nil {
		return err
	}
	t, err := s.cast(to)
	if err != nil {
		return err
	}
	if s.halted() {
		return ErrHalted
	}

	s.mu.Lock()
	s.suspended = append(s.suspended, f)
	s.mu.Unlock()

	t.activate()
	err = f.park()
	s.forget(f)
	return err
}

// Set implements ContextSwitcher.
func (s *GoroutineSwitcher) Set(to ExecutionContext) error {
	t, err := s.cast(to)
	if err != nil {
		return err
	}
	if s.halted() {
		return ErrHalted
	}
	t.activate()
	return nil
}

// Halt implements ContextSwitcher. Only the most recently suspended flow is
// released, with ErrHalted; every other suspended flow stays parked so that
// no two flows ever run at once.
func (s *GoroutineSwitcher) Halt() {
	s.haltOnce.Do(func() {
		close(s.halt)

		s.mu.Lock()
		var last *goroutineContext
		if n := len(s.suspended); n > 0 {
			last = s.suspended[n-1]
			s.suspended = s.suspended[:n-1]
		}
		s.mu.Unlock()

		if last != nil {
			last.fail(ErrHalted)
		}
	})
}

// Suspended returns how many flows are parked in Swap.
func (s *GoroutineSwitcher) Suspended() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.suspended)
}

func (s *GoroutineSwitcher) forget(c *goroutineContext) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sc := range s.suspended {
		if sc == c {
			s.suspended = append(s.suspended[:i], s.suspended[i+1:]...)
			return
		}
	}
}

func (s *GoroutineSwitcher) halted() bool {
	select {
	case <-s.halt:
		return true
	default:
		return false
	}
}

func (s *GoroutineSwitcher) cast(c ExecutionContext) (*goroutineContext, error) {
	gc, ok := c.(*goroutineContext)
	if !ok || gc == nil {
		return nil, fmt.Errorf("%w: foreign or nil context %T", ErrContext, c)
	}
	if gc.halt != s.halt {
		return nil, fmt.Errorf("%w: context %q belongs to another switcher", ErrContext, gc.name)
	}
	return gc, nil
}

func (c *goroutineContext) activate() {
	if !c.started {
		c.started = true
		go c.run()
		return
	}
	select {
	case c.wake <- nil:
	default:
	}
}

// fail replaces any pending resume with err.
func (c *goroutineContext) fail(err error) {
	select {
	case <-c.wake:
	default:
	}
	c.wake <- err
}

func (c *goroutineContext) park() error {
	return <-c.wake
}

func (c *goroutineContext) run() {
	for {
		c.entry()
		if c.successor != nil {
			c.successor.activate()
			return
		}
		select {
		case <-c.halt:
			return
		default:
		}
		if err := c.park(); err != nil {
			return
		}
	}
}
