package core

import (
	"errors"
	"fmt"
)

// schedulerAction is the next step of one scheduler pass.
type schedulerAction int

const (
	// actionReap destroys the thread left in the running slot, if any.
	actionReap schedulerAction = iota
	// actionSelect pops the lowest-key ready thread.
	actionSelect
	// actionDispatch hands the executor to the selected thread.
	actionDispatch
	// actionIdle ends the pass; the scheduler context waits to be re-entered.
	actionIdle
)

func (a schedulerAction) String() string {
	switch a {
	case actionReap:
		return "reap"
	case actionSelect:
		return "select"
	case actionDispatch:
		return "dispatch"
	case actionIdle:
		return "idle"
	default:
		return fmt.Sprintf("schedulerAction(%d)", int(a))
	}
}

// schedule is the entry point of the scheduler context. It runs one pass
// every time a thread switches into the scheduler.
//
// Yield, Join and SemWait clear the running slot before switching here, so
// a thread still in the slot at the start of a pass has returned from its
// entry function.
func (r *Runtime) schedule() {
	r.logger.Debug("Running scheduler", F("runtime", r.name))

	action := actionReap
	var next *TCB
	for action != actionIdle {
		var err error
		action, next, err = r.step(action, next)
		if err != nil {
			r.fail(err)
			return
		}
	}
}

// step performs one scheduler action and returns the following one.
func (r *Runtime) step(action schedulerAction, next *TCB) (schedulerAction, *TCB, error) {
	switch action {
	case actionReap:
		r.mu.Lock()
		r.reapLocked()
		r.mu.Unlock()
		return actionSelect, nil, nil

	case actionSelect:
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.ready.IsEmpty() {
			return actionIdle, nil, ErrSchedulerStarvation
		}
		t := r.ready.PopMin()
		r.metrics.RecordQueueDepth(r.name, "ready", r.ready.Len())
		return actionDispatch, t, nil

	case actionDispatch:
		r.mu.Lock()
		if err := next.markRunning(); err != nil {
			r.mu.Unlock()
			return actionIdle, nil, err
		}
		r.running = next
		r.switches++
		ctx := next.ctx
		r.logger.Debug("Starting to run scheduled thread", F("tid", next.id), F("key", next.key))
		r.clock.Start()
		r.mu.Unlock()

		if err := r.switcher.Set(ctx); err != nil {
			return actionIdle, nil, fmt.Errorf("%w: dispatch thread %d: %w", ErrContext, next.id, err)
		}
		return actionIdle, nil, nil

	default:
		return actionIdle, nil, nil
	}
}

// reapLocked destroys the finished thread in the running slot and wakes its
// joiner. Caller holds r.mu.
func (r *Runtime) reapLocked() {
	done := r.running
	if done == nil {
		return
	}

	r.logger.Debug("Thread just finished", F("tid", done.id))
	r.metrics.RecordContextSwitch(r.name, "finish")
	if err := done.markFinished(); err != nil {
		r.logger.Error("Couldn't mark thread finished", F("tid", done.id), F("error", err))
	}

	if w := done.waitedBy; w != nil {
		r.wakeLocked(w.id)
	}

	r.recordFinished(done)
	done.destroy()
	r.running = nil
	r.live--
	r.finished++
}

// wakeLocked moves thread id from the blocked queue to the ready queue.
func (r *Runtime) wakeLocked(id ThreadID) {
	t := r.blocked.Remove(id)
	if t == nil {
		r.logger.Warn("Joiner not found in blocked queue", F("tid", id))
		return
	}
	if err := t.markReady(); err != nil {
		r.logger.Error("Couldn't wake thread", F("tid", id), F("error", err))
		return
	}
	r.logger.Debug("Waking up thread", F("tid", id))
	r.ready.Insert(t)
	r.metrics.RecordQueueDepth(r.name, "blocked", r.blocked.Len())
	r.metrics.RecordQueueDepth(r.name, "ready", r.ready.Len())
}

// fail reports an unrecoverable scheduler condition and halts the runtime.
func (r *Runtime) fail(err error) {
	reason := "dispatch"
	if errors.Is(err, ErrSchedulerStarvation) {
		reason = "starvation"
	}
	r.logger.Error("Scheduler cannot continue", F("runtime", r.name), F("error", err))
	r.metrics.RecordFatal(r.name, reason)
	r.fatalHandler.HandleFatal(r.name, err)

	r.mu.Lock()
	r.halted = true
	r.mu.Unlock()
	r.switcher.Halt()
}
