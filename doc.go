// Package cthread provides cooperative user-level threads for Go.
//
// Logical threads are multiplexed onto a single logical executor. A running
// thread keeps control until it yields, blocks on a join or a semaphore, or
// returns from its entry function. There is no preemption, so state shared
// between threads of one runtime needs no locks.
//
// # Quick Start
//
// The first call into the package adopts the calling goroutine as the main
// thread (id 0):
//
//	id, err := cthread.Create(func(arg any) any {
//		fmt.Println("hello from", arg)
//		return nil
//	}, "worker", 5)
//	if err != nil {
//		log.Fatal(err)
//	}
//	// Blocks main until the worker returns.
//	if err := cthread.Join(id); err != nil {
//		log.Fatal(err)
//	}
//
// # Scheduling
//
// Ready threads are picked by lowest scheduling key, first come first served
// among equal keys. A thread starts with its base priority as key; whenever
// it suspends, the key becomes the time it just spent running. Threads that
// ran briefly are therefore picked before threads that ran long.
//
// # Synchronization
//
// Join waits for a ready thread to finish; each thread accepts one joiner
// and the main thread cannot be joined. Semaphore is a counting semaphore:
// SemWait blocks while the counter is negative and SemSignal wakes the
// waiter with the lowest key without giving up the executor.
//
// # Fatal conditions
//
// If every thread is blocked the scheduler has nothing to run. The default
// FatalHandler then exits the process with status 1; see core.FatalHandler.
//
// For more details, see https://github.com/Swind/go-cthread
package cthread
