package core

import "fmt"

// Semaphore is a counting semaphore for threads of one Runtime.
//
// A negative count is the number of threads waiting. The zero value is
// uninitialized; call Runtime.SemInit before use. Count and Waiting must only
// be read by threads of the owning runtime.
type Semaphore struct {
	count   int
	waiters *SchedulingQueue
}

// Count returns the current counter value.
func (s *Semaphore) Count() int { return s.count }

// Waiting returns the number of threads blocked on the semaphore.
func (s *Semaphore) Waiting() int {
	if s.waiters == nil {
		return 0
	}
	return s.waiters.Len()
}

// SemInit sets the counter of sem to count and gives it an empty wait queue.
func (r *Runtime) SemInit(sem *Semaphore, count int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.initLocked(); err != nil {
		r.metrics.RecordOperationError(r.name, "sem_init")
		return err
	}
	if sem == nil {
		r.metrics.RecordOperationError(r.name, "sem_init")
		return fmt.Errorf("%w: nil semaphore", ErrSemaphoreUninitialized)
	}

	sem.count = count
	sem.waiters = NewSchedulingQueue()
	r.logger.Debug("Initialized semaphore", F("count", count))
	return nil
}

// SemWait decrements the counter and blocks the caller while it is negative.
func (r *Runtime) SemWait(sem *Semaphore) error {
	r.mu.Lock()
	if err := r.initLocked(); err != nil {
		r.mu.Unlock()
		r.metrics.RecordOperationError(r.name, "sem_wait")
		return err
	}
	if sem == nil || sem.waiters == nil {
		r.mu.Unlock()
		r.metrics.RecordOperationError(r.name, "sem_wait")
		return ErrSemaphoreUninitialized
	}
	cur := r.running
	if cur == nil {
		r.mu.Unlock()
		r.metrics.RecordOperationError(r.name, "sem_wait")
		return ErrNoRunningThread
	}

	sem.count--
	if sem.count >= 0 {
		r.mu.Unlock()
		return nil
	}

	if err := cur.markBlocked(r.clock.Stop()); err != nil {
		sem.count++
		r.mu.Unlock()
		r.metrics.RecordOperationError(r.name, "sem_wait")
		return err
	}
	r.logger.Debug("Blocking thread on semaphore", F("tid", cur.id), F("count", sem.count))
	sem.waiters.Insert(cur)
	r.running = nil
	r.metrics.RecordQueueDepth(r.name, "semaphore", sem.waiters.Len())
	r.mu.Unlock()

	return r.switchToScheduler(cur, "wait")
}

// SemSignal increments the counter and, if a thread is waiting, moves the
// lowest-key waiter to the ready queue. The caller keeps running.
//
// If the counter says a waiter exists but the queue is empty, SemSignal
// returns ErrSemaphoreProtocol and keeps the incremented counter.
func (r *Runtime) SemSignal(sem *Semaphore) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.initLocked(); err != nil {
		r.metrics.RecordOperationError(r.name, "sem_signal")
		return err
	}
	if sem == nil || sem.waiters == nil {
		r.metrics.RecordOperationError(r.name, "sem_signal")
		return ErrSemaphoreUninitialized
	}

	sem.count++
	if sem.count > 0 {
		return nil
	}

	next := sem.waiters.PopMin()
	if next == nil {
		r.logger.Error("No thread in semaphore queue", F("count", sem.count))
		r.metrics.RecordOperationError(r.name, "sem_signal")
		return fmt.Errorf("%w: count %d but no waiter", ErrSemaphoreProtocol, sem.count)
	}
	if err := next.markReady(); err != nil {
		sem.waiters.Insert(next)
		r.metrics.RecordOperationError(r.name, "sem_signal")
		return err
	}
	r.logger.Debug("Woke thread from semaphore", F("tid", next.id), F("count", sem.count))
	r.ready.Insert(next)
	r.metrics.RecordQueueDepth(r.name, "ready", r.ready.Len())
	return nil
}
