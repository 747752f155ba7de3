package core

import "time"

// ThreadRecord captures a thread reaped by the scheduler.
type ThreadRecord struct {
	ID         ThreadID
	Priority   int
	CreatedAt  time.Time
	FinishedAt time.Time
	Lifetime   time.Duration
	JoinedBy   ThreadID
	Panicked   bool
	Result     any
}

// RuntimeStats represents the observable state of a Runtime.
type RuntimeStats struct {
	Name        string
	Initialized bool
	Halted      bool
	Running     ThreadID
	Ready       int
	ReadyQueue  []ThreadID // dispatch order
	Blocked     int
	Live        int
	Created     int64
	Finished    int64
	Switches    int64
	StackBytes  int64
	LiveStacks  int
}
