package core

import "errors"

// Operation errors. Returned values wrap one of these; test with errors.Is.
var (
	// ErrInitialization reports that the runtime or the scheduler context
	// could not be built on first use.
	ErrInitialization = errors.New("cthread: runtime initialization failed")

	// ErrContext reports that an execution context could not be acquired,
	// constructed or switched.
	ErrContext = errors.New("cthread: execution context failure")

	// ErrStackExhausted reports that a stack reservation exceeds the
	// configured budget. It always travels wrapped together with ErrContext.
	ErrStackExhausted = errors.New("cthread: stack budget exhausted")

	// ErrInvalidJoinTarget reports a join on the main thread, on a thread
	// that is not ready, or on a thread that already has a joiner.
	ErrInvalidJoinTarget = errors.New("cthread: invalid join target")

	// ErrSchedulerStarvation reports an empty ready queue while no thread
	// is running. It only reaches the FatalHandler.
	ErrSchedulerStarvation = errors.New("cthread: no thread ready to run")

	// ErrSemaphoreProtocol reports a signal that found no waiter although
	// the counter said one should exist.
	ErrSemaphoreProtocol = errors.New("cthread: semaphore protocol violation")

	// ErrSemaphoreUninitialized reports use of a semaphore before SemInit.
	ErrSemaphoreUninitialized = errors.New("cthread: semaphore not initialized")

	// ErrNoRunningThread reports a suspending call made while no thread
	// holds the running slot.
	ErrNoRunningThread = errors.New("cthread: no running thread")

	// ErrInvalidState reports an illegal thread state transition.
	ErrInvalidState = errors.New("cthread: invalid thread state transition")

	// ErrHalted reports that the runtime stopped after a fatal scheduler
	// condition.
	ErrHalted = errors.New("cthread: runtime halted")
)
