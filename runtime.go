package cthread

import (
	"sync"

	"github.com/Swind/go-cthread/core"
)

// =============================================================================
// Global Runtime Helper (Singleton)
// =============================================================================

var (
	globalRuntime *core.Runtime
	globalMu      sync.Mutex
)

// InitGlobalRuntime creates the global runtime with the given config.
// It is a no-op if the global runtime already exists. Calling it is optional:
// the package functions create a default runtime on first use.
func InitGlobalRuntime(config *RuntimeConfig) {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalRuntime != nil {
		return // Already initialized
	}
	globalRuntime = core.NewRuntime(config)
}

// GetGlobalRuntime returns the global runtime, creating it with
// DefaultRuntimeConfig if needed.
func GetGlobalRuntime() *Runtime {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalRuntime == nil {
		globalRuntime = core.NewRuntime(core.DefaultRuntimeConfig())
	}
	return globalRuntime
}

// Create starts a new thread running entry(arg) with the given base
// priority (lower runs sooner). The thread is queued as ready; the caller
// keeps running.
func Create(entry EntryFunc, arg any, priority int) (ThreadID, error) {
	return GetGlobalRuntime().Create(entry, arg, priority)
}

// Yield lets the scheduler run another ready thread.
func Yield() error {
	return GetGlobalRuntime().Yield()
}

// Join blocks the caller until thread id returns.
func Join(id ThreadID) error {
	return GetGlobalRuntime().Join(id)
}

// SemInit initializes sem with count.
func SemInit(sem *Semaphore, count int) error {
	return GetGlobalRuntime().SemInit(sem, count)
}

// SemWait decrements sem, blocking the caller if it becomes negative.
func SemWait(sem *Semaphore) error {
	return GetGlobalRuntime().SemWait(sem)
}

// SemSignal increments sem and readies one waiter if any.
func SemSignal(sem *Semaphore) error {
	return GetGlobalRuntime().SemSignal(sem)
}

// Self returns the id of the running thread.
func Self() ThreadID {
	return GetGlobalRuntime().Self()
}

// Stats returns a snapshot of the global runtime.
func Stats() RuntimeStats {
	return GetGlobalRuntime().Stats()
}

// History returns up to limit finished threads of the global runtime,
// newest first.
func History(limit int) []ThreadRecord {
	return GetGlobalRuntime().History(limit)
}

// Identify returns a static description of the library.
func Identify() string {
	return core.Identify()
}
