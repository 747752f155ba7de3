package core

import (
	"fmt"
	"os"
	"time"
)

// =============================================================================
// PanicHandler: Interface for handling thread panics
// =============================================================================

// PanicHandler is called when a thread's entry function panics.
// The panicking thread is then treated as finished and reaped normally.
type PanicHandler interface {
	// HandlePanic is called when a thread panics.
	//
	// Parameters:
	// - runtimeName: The name of the runtime that owns the thread
	// - id: The id of the panicking thread
	// - panicInfo: The panic value recovered from the entry function
	// - stackTrace: The stack trace at the time of panic
	HandlePanic(runtimeName string, id ThreadID, panicInfo any, stackTrace []byte)
}

// DefaultPanicHandler provides a basic panic handler that logs to stdout.
type DefaultPanicHandler struct{}

// HandlePanic prints panic information to stdout.
func (h *DefaultPanicHandler) HandlePanic(runtimeName string, id ThreadID, panicInfo any, stackTrace []byte) {
	fmt.Printf("[Runtime %s] Thread %d panic: %v\nStack trace:\n%s", runtimeName, id, panicInfo, stackTrace)
}

// =============================================================================
// FatalHandler: Interface for unrecoverable scheduler conditions
// =============================================================================

// FatalHandler is called when the scheduler cannot make progress: the ready
// queue is empty while no thread runs, or dispatching a thread failed.
//
// The default handler terminates the process. A handler that returns leaves
// the runtime halted: the thread that suspended last wakes with ErrHalted,
// every other suspended thread stays parked for good, and later operations
// fail with ErrHalted.
type FatalHandler interface {
	HandleFatal(runtimeName string, err error)
}

// DefaultFatalHandler prints the error to stderr and exits with status 1.
type DefaultFatalHandler struct{}

// HandleFatal terminates the process.
func (h *DefaultFatalHandler) HandleFatal(runtimeName string, err error) {
	fmt.Fprintf(os.Stderr, "[Runtime %s] fatal: %v\nexiting with status 1\n", runtimeName, err)
	os.Exit(1)
}

// =============================================================================
// Metrics: Interface for observability and monitoring
// =============================================================================

// Metrics defines the interface for collecting runtime metrics.
// Implementations can send metrics to monitoring systems (Prometheus, StatsD, etc.).
//
// Methods are called from whichever goroutine currently carries the runtime
// and should be non-blocking.
type Metrics interface {
	// RecordThreadCreated records a successful Create.
	RecordThreadCreated(runtimeName string)

	// RecordThreadFinished records a thread reaped by the scheduler and how
	// long it existed.
	RecordThreadFinished(runtimeName string, lifetime time.Duration)

	// RecordThreadPanic records a thread whose entry function panicked.
	RecordThreadPanic(runtimeName string, panicInfo any)

	// RecordContextSwitch records a hand-off to the scheduler.
	// reason is one of "yield", "join", "wait" or "finish".
	RecordContextSwitch(runtimeName string, reason string)

	// RecordQueueDepth records the depth of the ready or blocked queue, or of
	// the wait queue ("semaphore") of the semaphore a thread just blocked on.
	RecordQueueDepth(runtimeName string, queue string, depth int)

	// RecordOperationError records an operation that returned an error.
	RecordOperationError(runtimeName string, op string)

	// RecordFatal records an unrecoverable scheduler condition.
	RecordFatal(runtimeName string, reason string)
}

// NilMetrics provides a no-op metrics implementation that does nothing.
// This is the default when no metrics interface is provided.
type NilMetrics struct{}

func (m *NilMetrics) RecordThreadCreated(runtimeName string)                          {}
func (m *NilMetrics) RecordThreadFinished(runtimeName string, lifetime time.Duration) {}
func (m *NilMetrics) RecordThreadPanic(runtimeName string, panicInfo any)             {}
func (m *NilMetrics) RecordContextSwitch(runtimeName string, reason string)           {}
func (m *NilMetrics) RecordQueueDepth(runtimeName string, queue string, depth int)    {}
func (m *NilMetrics) RecordOperationError(runtimeName string, op string)              {}
func (m *NilMetrics) RecordFatal(runtimeName string, reason string)                   {}

// =============================================================================
// RuntimeConfig: Configuration for Runtime
// =============================================================================

// RuntimeConfig holds configuration options for Runtime.
// All fields are optional; zero values are replaced by defaults in NewRuntime.
type RuntimeConfig struct {
	// Name labels the runtime in logs and metrics. Defaults to NewRuntimeName().
	Name string

	// StackSize is the stack reservation per thread. Defaults to DefaultStackSize.
	StackSize int

	// MaxStackBytes caps the sum of live stack reservations, the scheduler's
	// included. Zero means unlimited.
	MaxStackBytes int64

	// HistoryCapacity bounds the finished-thread history. Defaults to
	// DefaultHistoryCapacity.
	HistoryCapacity int

	// Logger defaults to NoOpLogger.
	Logger Logger

	// Metrics defaults to NilMetrics.
	Metrics Metrics

	// PanicHandler defaults to DefaultPanicHandler.
	PanicHandler PanicHandler

	// FatalHandler defaults to DefaultFatalHandler.
	FatalHandler FatalHandler

	// Clock measures elapsed run time for scheduling keys. Defaults to a
	// fresh ElapsedClock.
	Clock Clock

	// Switcher performs context transfers. Defaults to a fresh
	// GoroutineSwitcher.
	Switcher ContextSwitcher
}

// DefaultRuntimeConfig returns a config with default handlers.
func DefaultRuntimeConfig() *RuntimeConfig {
	return &RuntimeConfig{
		StackSize:       DefaultStackSize,
		HistoryCapacity: DefaultHistoryCapacity,
		Logger:          NewNoOpLogger(),
		Metrics:         &NilMetrics{},
		PanicHandler:    &DefaultPanicHandler{},
		FatalHandler:    &DefaultFatalHandler{},
	}
}
