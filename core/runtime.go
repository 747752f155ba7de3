package core

import (
	"fmt"
	"runtime/debug"
	"sync"
	"time"
)

const identity = "go-cthread: cooperative user-level threads with aging priority scheduling, join and counting semaphores"

// Identify returns a static description of the runtime.
func Identify() string {
	return identity
}

// Runtime multiplexes logical threads onto one logical executor.
//
// The first call into a Runtime adopts the calling flow as the main thread
// (MainThreadID). From then on only the flow holding the running slot may
// call Yield, Join, SemWait and SemSignal; Create and SemInit follow the same
// rule. Stats, History, Self and Name are safe from any goroutine.
type Runtime struct {
	// mu guards the fields below. It is never held across a context switch.
	mu sync.Mutex

	name         string
	stackSize    int
	logger       Logger
	metrics      Metrics
	panicHandler PanicHandler
	fatalHandler FatalHandler
	clock        Clock
	switcher     ContextSwitcher
	stacks       *StackAllocator
	history      *executionHistory

	initialized bool
	halted      bool
	nextID      ThreadID

	running  *TCB
	ready    *SchedulingQueue
	blocked  *SchedulingQueue
	schedCtx ExecutionContext

	live     int
	created  int64
	finished int64
	switches int64
}

// NewRuntime creates a Runtime. It does not switch or adopt any flow until
// its first operation.
func NewRuntime(config *RuntimeConfig) *Runtime {
	if config == nil {
		config = DefaultRuntimeConfig()
	}

	r := &Runtime{
		name:         config.Name,
		stackSize:    config.StackSize,
		logger:       config.Logger,
		metrics:      config.Metrics,
		panicHandler: config.PanicHandler,
		fatalHandler: config.FatalHandler,
		clock:        config.Clock,
		switcher:     config.Switcher,
		stacks:       NewStackAllocator(config.MaxStackBytes),
		history:      newExecutionHistory(config.HistoryCapacity),
		nextID:       MainThreadID,
	}

	// Use defaults if not provided
	if r.name == "" {
		r.name = NewRuntimeName()
	}
	if r.stackSize <= 0 {
		r.stackSize = DefaultStackSize
	}
	if r.logger == nil {
		r.logger = NewNoOpLogger()
	}
	if r.metrics == nil {
		r.metrics = &NilMetrics{}
	}
	if r.panicHandler == nil {
		r.panicHandler = &DefaultPanicHandler{}
	}
	if r.fatalHandler == nil {
		r.fatalHandler = &DefaultFatalHandler{}
	}
	if r.clock == nil {
		r.clock = NewElapsedClock()
	}
	if r.switcher == nil {
		r.switcher = NewGoroutineSwitcher()
	}

	return r
}

// Name returns the runtime name used in logs and metrics.
func (r *Runtime) Name() string {
	return r.name
}

// Identify returns a static description of the runtime.
func (r *Runtime) Identify() string {
	return identity
}

// initLocked builds the main TCB, the queues and the scheduler context.
// Caller holds r.mu.
func (r *Runtime) initLocked() error {
	if r.halted {
		return ErrHalted
	}
	if r.initialized {
		return nil
	}

	mainCtx, err := r.switcher.Current("main")
	if err != nil {
		return fmt.Errorf("%w: capture main context: %w", ErrInitialization, err)
	}

	stack, err := r.stacks.Allocate(r.stackSize)
	if err != nil {
		mainCtx.Release()
		return fmt.Errorf("%w: scheduler stack: %w", ErrInitialization, err)
	}
	// The scheduler links to itself: every activation runs one pass.
	schedCtx, err := r.switcher.Make("scheduler", r.schedule, nil, stack)
	if err != nil {
		stack.Release()
		mainCtx.Release()
		return fmt.Errorf("%w: scheduler context: %w", ErrInitialization, err)
	}

	main := newTCB(r.nextID, 0, StateRunning)
	main.ctx = mainCtx
	r.nextID++

	r.running = main
	r.ready = NewSchedulingQueue()
	r.blocked = NewSchedulingQueue()
	r.schedCtx = schedCtx
	r.live = 1
	r.initialized = true

	r.logger.Debug("Runtime initialized",
		F("runtime", r.name),
		F("main_tid", main.id),
		F("stack_size", r.stackSize))

	r.clock.Start()
	return nil
}

// Init initializes the runtime without performing any other operation.
// Every operation initializes lazily, so calling Init is optional.
func (r *Runtime) Init() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.initLocked()
}

// Create makes a new thread running entry(arg) with the given base priority
// (lower runs sooner) and queues it as ready. It does not switch.
func (r *Runtime) Create(entry EntryFunc, arg any, priority int) (ThreadID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.initLocked(); err != nil {
		r.metrics.RecordOperationError(r.name, "create")
		return NoThread, err
	}
	if entry == nil {
		r.metrics.RecordOperationError(r.name, "create")
		return NoThread, fmt.Errorf("%w: nil entry function", ErrContext)
	}

	tcb := newTCB(r.nextID, priority, StateReady)

	stack, err := r.stacks.Allocate(r.stackSize)
	if err != nil {
		r.logger.Error("Couldn't allocate thread stack", F("error", err))
		r.metrics.RecordOperationError(r.name, "create")
		return NoThread, err
	}
	body := func() { r.runThread(tcb, entry, arg) }
	ctx, err := r.switcher.Make(fmt.Sprintf("thread-%d", tcb.id), body, r.schedCtx, stack)
	if err != nil {
		stack.Release()
		r.logger.Error("Couldn't make thread context", F("error", err))
		r.metrics.RecordOperationError(r.name, "create")
		return NoThread, fmt.Errorf("%w: create thread: %w", ErrContext, err)
	}
	tcb.ctx = ctx
	r.nextID++

	r.ready.Insert(tcb)
	r.live++
	r.created++

	r.logger.Debug("Created thread", F("tid", tcb.id), F("priority", priority))
	r.metrics.RecordThreadCreated(r.name)
	r.metrics.RecordQueueDepth(r.name, "ready", r.ready.Len())
	return tcb.id, nil
}

// runThread is the body of every thread context. A panic ends the thread
// like a normal return.
func (r *Runtime) runThread(tcb *TCB, entry EntryFunc, arg any) {
	defer func() {
		if rec := recover(); rec != nil {
			tcb.panicked = true
			r.logger.Error("Thread panicked", F("tid", tcb.id), F("panic", rec))
			r.metrics.RecordThreadPanic(r.name, rec)
			r.panicHandler.HandlePanic(r.name, tcb.id, rec, debug.Stack())
		}
	}()
	tcb.result = entry(arg)
}

// Yield gives up the executor. The caller is requeued as ready with its
// elapsed run time as key and resumes when the scheduler picks it again.
func (r *Runtime) Yield() error {
	r.mu.Lock()
	if err := r.initLocked(); err != nil {
		r.mu.Unlock()
		r.metrics.RecordOperationError(r.name, "yield")
		return err
	}

	cur := r.running
	if cur == nil {
		r.mu.Unlock()
		r.metrics.RecordOperationError(r.name, "yield")
		return ErrNoRunningThread
	}
	if err := cur.markYielded(r.clock.Stop()); err != nil {
		r.mu.Unlock()
		r.metrics.RecordOperationError(r.name, "yield")
		return err
	}

	r.logger.Debug("Moving running thread to ready", F("tid", cur.id), F("key", cur.key))
	r.ready.Insert(cur)
	r.running = nil
	r.metrics.RecordQueueDepth(r.name, "ready", r.ready.Len())
	r.mu.Unlock()

	if err := r.switchToScheduler(cur, "yield"); err != nil {
		r.mu.Lock()
		r.reclaimLocked(cur)
		r.mu.Unlock()
		return err
	}
	return nil
}

// reclaimLocked takes cur back out of the ready queue after a failed switch
// so that the caller keeps running instead of staying queued.
func (r *Runtime) reclaimLocked(cur *TCB) {
	if r.ready.Remove(cur.id) == nil {
		return
	}
	if err := cur.markRunning(); err != nil {
		r.logger.Error("Couldn't reclaim thread", F("tid", cur.id), F("error", err))
		return
	}
	if r.running == nil {
		r.running = cur
	}
	r.metrics.RecordQueueDepth(r.name, "ready", r.ready.Len())
}

// Join blocks the caller until thread id finishes.
//
// Only threads waiting in the ready queue can be joined: the main thread,
// unknown ids, threads that are blocked or waiting on a semaphore, and
// threads that already have a joiner are rejected with ErrInvalidJoinTarget
// and nothing changes.
func (r *Runtime) Join(id ThreadID) error {
	r.mu.Lock()
	if err := r.initLocked(); err != nil {
		r.mu.Unlock()
		r.metrics.RecordOperationError(r.name, "join")
		return err
	}

	if err := r.validateJoinLocked(id); err != nil {
		r.mu.Unlock()
		r.logger.Error("Rejected join", F("target", id), F("error", err))
		r.metrics.RecordOperationError(r.name, "join")
		return err
	}

	cur := r.running
	target := r.ready.Find(id)
	if err := target.setWaiter(cur); err != nil {
		r.mu.Unlock()
		r.logger.Error("Couldn't register joiner", F("tid", cur.id), F("target", id), F("error", err))
		r.metrics.RecordOperationError(r.name, "join")
		return err
	}
	if err := cur.markBlocked(r.clock.Stop()); err != nil {
		target.waitedBy = nil
		r.mu.Unlock()
		r.logger.Error("Couldn't block thread", F("tid", cur.id), F("error", err))
		r.metrics.RecordOperationError(r.name, "join")
		return err
	}

	r.logger.Debug("Thread waits for thread", F("tid", cur.id), F("target", id))
	r.blocked.Insert(cur)
	r.running = nil
	r.metrics.RecordQueueDepth(r.name, "blocked", r.blocked.Len())
	r.mu.Unlock()

	return r.switchToScheduler(cur, "join")
}

func (r *Runtime) validateJoinLocked(id ThreadID) error {
	if id == MainThreadID {
		return fmt.Errorf("%w: the main thread cannot be joined", ErrInvalidJoinTarget)
	}
	if r.running == nil {
		return ErrNoRunningThread
	}
	target := r.ready.Find(id)
	if target == nil {
		return fmt.Errorf("%w: thread %d is not ready", ErrInvalidJoinTarget, id)
	}
	if target.waitedBy != nil {
		return fmt.Errorf("%w: thread %d is already awaited by thread %d",
			ErrInvalidJoinTarget, id, target.waitedBy.id)
	}
	return nil
}

// switchToScheduler saves cur and hands the executor to the scheduler.
// It returns when cur is dispatched again.
func (r *Runtime) switchToScheduler(cur *TCB, reason string) error {
	r.metrics.RecordContextSwitch(r.name, reason)
	r.logger.Debug("Swapping context to scheduler", F("tid", cur.id), F("reason", reason))
	if err := r.switcher.Swap(cur.ctx, r.schedCtx); err != nil {
		r.logger.Error("Couldn't swap context", F("tid", cur.id), F("error", err))
		r.metrics.RecordOperationError(r.name, reason)
		return fmt.Errorf("%w: %s: %w", ErrContext, reason, err)
	}
	return nil
}

// Self returns the id of the running thread, or NoThread.
func (r *Runtime) Self() ThreadID {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running == nil {
		return NoThread
	}
	return r.running.id
}

// Stats returns a snapshot of the runtime state.
func (r *Runtime) Stats() RuntimeStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats := RuntimeStats{
		Name:        r.name,
		Initialized: r.initialized,
		Halted:      r.halted,
		Running:     NoThread,
		Live:        r.live,
		Created:     r.created,
		Finished:    r.finished,
		Switches:    r.switches,
		StackBytes:  r.stacks.InUse(),
		LiveStacks:  r.stacks.Live(),
	}
	if r.running != nil {
		stats.Running = r.running.id
	}
	if r.initialized {
		stats.Ready = r.ready.Len()
		stats.Blocked = r.blocked.Len()
		stats.ReadyQueue = r.ready.IDs()
	}
	return stats
}

// History returns up to limit records of finished threads, newest first.
func (r *Runtime) History(limit int) []ThreadRecord {
	return r.history.Recent(limit)
}

// LastFinished returns the record of the most recently reaped thread.
func (r *Runtime) LastFinished() (ThreadRecord, bool) {
	return r.history.Last()
}

func (r *Runtime) recordFinished(t *TCB) {
	now := time.Now()
	r.history.Add(ThreadRecord{
		ID:         t.id,
		Priority:   t.priority,
		CreatedAt:  t.createdAt,
		FinishedAt: now,
		Lifetime:   now.Sub(t.createdAt),
		JoinedBy:   t.WaitedBy(),
		Panicked:   t.panicked,
		Result:     t.result,
	})
	r.metrics.RecordThreadFinished(r.name, now.Sub(t.createdAt))
}
