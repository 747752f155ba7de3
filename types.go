package cthread

import "github.com/Swind/go-cthread/core"

// Re-export commonly used types from core package for convenience.
// This allows users to import only the cthread package for most use cases.

// ThreadID identifies a logical thread
type ThreadID = core.ThreadID

// EntryFunc is the body of a logical thread
type EntryFunc = core.EntryFunc

// Semaphore is a counting semaphore; initialize it with SemInit
type Semaphore = core.Semaphore

// Runtime is an independent scheduler with its own threads
type Runtime = core.Runtime

// RuntimeConfig configures a Runtime
type RuntimeConfig = core.RuntimeConfig

// RuntimeStats is a snapshot of a Runtime
type RuntimeStats = core.RuntimeStats

// ThreadRecord describes a finished thread
type ThreadRecord = core.ThreadRecord

// Clock measures run time between suspensions; it sets scheduling keys
type Clock = core.Clock

// ConstantClock charges a fixed cost per slice
type ConstantClock = core.ConstantClock

// Reserved thread ids
const (
	MainThreadID = core.MainThreadID
	NoThread     = core.NoThread
)

// DefaultStackSize is the stack reservation per thread
const DefaultStackSize = core.DefaultStackSize

// Errors returned by runtime operations
var (
	ErrInitialization         = core.ErrInitialization
	ErrContext                = core.ErrContext
	ErrStackExhausted         = core.ErrStackExhausted
	ErrInvalidJoinTarget      = core.ErrInvalidJoinTarget
	ErrSchedulerStarvation    = core.ErrSchedulerStarvation
	ErrSemaphoreProtocol      = core.ErrSemaphoreProtocol
	ErrSemaphoreUninitialized = core.ErrSemaphoreUninitialized
	ErrNoRunningThread        = core.ErrNoRunningThread
	ErrHalted                 = core.ErrHalted
)

// DefaultRuntimeConfig returns a config with default handlers
var DefaultRuntimeConfig = core.DefaultRuntimeConfig

// NewRuntime creates a Runtime independent of the global one.
// Use this for tests or to keep groups of threads apart.
func NewRuntime(config *RuntimeConfig) *Runtime {
	return core.NewRuntime(config)
}
