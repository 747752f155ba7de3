package core

import (
	"errors"
	"testing"
)

func TestTCB_Transitions(t *testing.T) {
	tcb := newTCB(1, 5, StateReady)
	if tcb.Key() != 5 {
		t.Fatalf("initial key = %d, want 5", tcb.Key())
	}

	if err := tcb.markRunning(); err != nil {
		t.Fatalf("ready -> running: %v", err)
	}
	if err := tcb.markBlocked(42); err != nil {
		t.Fatalf("running -> blocked: %v", err)
	}
	if tcb.Key() != 42 {
		t.Fatalf("key after block = %d, want 42", tcb.Key())
	}
	if err := tcb.markReady(); err != nil {
		t.Fatalf("blocked -> ready: %v", err)
	}
	if err := tcb.markRunning(); err != nil {
		t.Fatalf("ready -> running: %v", err)
	}
	if err := tcb.markYielded(7); err != nil {
		t.Fatalf("running -> ready: %v", err)
	}
	if tcb.State() != StateReady || tcb.Key() != 7 {
		t.Fatalf("after yield state=%s key=%d, want ready/7", tcb.State(), tcb.Key())
	}
}

func TestTCB_IllegalTransitions(t *testing.T) {
	tests := []struct {
		name string
		from ThreadState
		do   func(*TCB) error
	}{
		{"ready to blocked", StateReady, func(t *TCB) error { return t.markBlocked(1) }},
		{"ready to finished", StateReady, (*TCB).markFinished},
		{"blocked to running", StateBlocked, (*TCB).markRunning},
		{"running to running", StateRunning, (*TCB).markRunning},
		{"ready yield", StateReady, func(t *TCB) error { return t.markYielded(1) }},
		{"finished to ready", StateFinished, (*TCB).markReady},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tcb := newTCB(3, 0, tt.from)
			err := tt.do(tcb)
			if !errors.Is(err, ErrInvalidState) {
				t.Fatalf("err = %v, want ErrInvalidState", err)
			}
			if tcb.State() != tt.from {
				t.Fatalf("state = %s, want unchanged %s", tcb.State(), tt.from)
			}
		})
	}
}

func TestTCB_SingleWaiter(t *testing.T) {
	target := newTCB(1, 0, StateReady)
	first := newTCB(2, 0, StateRunning)
	second := newTCB(3, 0, StateRunning)

	if target.WaitedBy() != NoThread {
		t.Fatalf("WaitedBy = %d, want NoThread", target.WaitedBy())
	}
	if err := target.setWaiter(first); err != nil {
		t.Fatalf("first setWaiter: %v", err)
	}

	err := target.setWaiter(second)
	if !errors.Is(err, ErrInvalidJoinTarget) {
		t.Fatalf("second setWaiter err = %v, want ErrInvalidJoinTarget", err)
	}
	if target.WaitedBy() != 2 {
		t.Fatalf("WaitedBy = %d, want 2", target.WaitedBy())
	}
}

func TestThreadState_String(t *testing.T) {
	if StateBlocked.String() != "blocked" {
		t.Fatalf("StateBlocked = %q", StateBlocked.String())
	}
	if ThreadState(9).String() != "ThreadState(9)" {
		t.Fatalf("unknown state = %q", ThreadState(9).String())
	}
}
