package cthread

import (
	"errors"
	"testing"
)

// TestGlobalRuntime_Facade verifies the package functions share one runtime
// Given: The global runtime
// When: A thread is created, waits on a semaphore and is signaled by main
// Then: Package-level calls observe the same threads and history
func TestGlobalRuntime_Facade(t *testing.T) {
	// Arrange
	InitGlobalRuntime(nil)
	rt := GetGlobalRuntime()
	if rt != GetGlobalRuntime() {
		t.Fatal("GetGlobalRuntime should return the same runtime")
	}
	var sem Semaphore
	if err := SemInit(&sem, 0); err != nil {
		t.Fatalf("SemInit failed: %v", err)
	}
	var selfInside ThreadID = NoThread

	// Act
	id, err := Create(func(arg any) any {
		selfInside = Self()
		if err := SemWait(&sem); err != nil {
			t.Errorf("SemWait failed: %v", err)
		}
		return "released"
	}, nil, 0)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := Yield(); err != nil {
		t.Fatalf("Yield failed: %v", err)
	}
	if err := SemSignal(&sem); err != nil {
		t.Fatalf("SemSignal failed: %v", err)
	}
	if err := Join(id); err != nil {
		t.Fatalf("Join failed: %v", err)
	}

	// Assert
	if selfInside != id {
		t.Fatalf("Self inside thread = %d, want %d", selfInside, id)
	}
	if Self() != MainThreadID {
		t.Fatalf("Self = %d, want main", Self())
	}
	history := History(1)
	if len(history) != 1 || history[0].ID != id || history[0].Result != "released" {
		t.Fatalf("History(1) = %+v, want thread %d with result released", history, id)
	}
	if stats := Stats(); stats.Live != 1 || stats.Halted {
		t.Fatalf("Stats = %+v, want only main live", stats)
	}
}

func TestGlobalRuntime_JoinMainRejected(t *testing.T) {
	if err := Join(MainThreadID); !errors.Is(err, ErrInvalidJoinTarget) {
		t.Fatalf("Join(main) err = %v, want ErrInvalidJoinTarget", err)
	}
	if Identify() == "" {
		t.Fatal("Identify should describe the library")
	}
}

// TestNewRuntime_Independent verifies separate runtimes keep separate ids
func TestNewRuntime_Independent(t *testing.T) {
	config := DefaultRuntimeConfig()
	config.Clock = ConstantClock(0)
	a := NewRuntime(config)
	b := NewRuntime(config)

	idA, err := a.Create(func(arg any) any { return nil }, nil, 0)
	if err != nil {
		t.Fatalf("a.Create failed: %v", err)
	}
	idB, err := b.Create(func(arg any) any { return nil }, nil, 0)
	if err != nil {
		t.Fatalf("b.Create failed: %v", err)
	}
	if idA != 1 || idB != 1 {
		t.Fatalf("ids = %d, %d, want 1, 1", idA, idB)
	}
	if a.Name() == b.Name() {
		t.Fatalf("runtimes share name %q", a.Name())
	}

	if err := a.Join(idA); err != nil {
		t.Fatalf("a.Join failed: %v", err)
	}
	if err := b.Join(idB); err != nil {
		t.Fatalf("b.Join failed: %v", err)
	}
}
