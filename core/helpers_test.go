package core

import (
	"sync"
	"testing"
)

// fakeClock returns whatever elapsed value the running thread last set.
// Only the flow holding the executor touches it.
type fakeClock struct {
	next   int64
	starts int
}

func (c *fakeClock) Start()      { c.starts++ }
func (c *fakeClock) Stop() int64 { return c.next }

type recordingFatalHandler struct {
	mu   sync.Mutex
	errs []error
}

func (h *recordingFatalHandler) HandleFatal(runtimeName string, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errs = append(h.errs, err)
}

func (h *recordingFatalHandler) Errors() []error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]error(nil), h.errs...)
}

type recordingPanicHandler struct {
	mu     sync.Mutex
	ids    []ThreadID
	values []any
}

func (h *recordingPanicHandler) HandlePanic(runtimeName string, id ThreadID, panicInfo any, stackTrace []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ids = append(h.ids, id)
	h.values = append(h.values, panicInfo)
}

// fakeContext and fakeSwitcher replace real switching so scheduler steps can
// be driven one at a time from the test goroutine.
type fakeContext struct {
	name     string
	stack    *Stack
	released int
}

func (c *fakeContext) Name() string { return c.name }

func (c *fakeContext) Release() {
	c.released++
	c.stack.Release()
}

type fakeSwitcher struct {
	contexts map[string]*fakeContext
	swaps    []string
	sets     []string
	halted   bool

	failCurrent error
	failMake    error
	failSwap    error
	failSet     error
}

func newFakeSwitcher() *fakeSwitcher {
	return &fakeSwitcher{contexts: make(map[string]*fakeContext)}
}

func (s *fakeSwitcher) Current(name string) (ExecutionContext, error) {
	if s.failCurrent != nil {
		return nil, s.failCurrent
	}
	c := &fakeContext{name: name}
	s.contexts[name] = c
	return c, nil
}

func (s *fakeSwitcher) Make(name string, entry func(), successor ExecutionContext, stack *Stack) (ExecutionContext, error) {
	if s.failMake != nil {
		return nil, s.failMake
	}
	c := &fakeContext{name: name, stack: stack}
	s.contexts[name] = c
	return c, nil
}

func (s *fakeSwitcher) Swap(from, to ExecutionContext) error {
	if s.failSwap != nil {
		return s.failSwap
	}
	s.swaps = append(s.swaps, from.Name()+"->"+to.Name())
	return nil
}

func (s *fakeSwitcher) Set(to ExecutionContext) error {
	if s.failSet != nil {
		return s.failSet
	}
	s.sets = append(s.sets, to.Name())
	return nil
}

func (s *fakeSwitcher) Halt() { s.halted = true }

// recordingMetrics keeps the last depth reported per queue.
type recordingMetrics struct {
	NilMetrics
	mu     sync.Mutex
	depths map[string][]int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{depths: make(map[string][]int)}
}

func (m *recordingMetrics) RecordQueueDepth(runtimeName string, queue string, depth int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.depths[queue] = append(m.depths[queue], depth)
}

func (m *recordingMetrics) lastDepth(queue string) (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d := m.depths[queue]
	if len(d) == 0 {
		return 0, false
	}
	return d[len(d)-1], true
}

type testRig struct {
	rt     *Runtime
	clock  *fakeClock
	fatal  *recordingFatalHandler
	panics *recordingPanicHandler
}

// newTestRuntime builds a runtime with deterministic keys and handlers that
// never exit the process. A nil switcher selects the goroutine switcher.
func newTestRuntime(t *testing.T, switcher ContextSwitcher, tune func(*RuntimeConfig)) *testRig {
	t.Helper()
	rig := &testRig{
		clock:  &fakeClock{},
		fatal:  &recordingFatalHandler{},
		panics: &recordingPanicHandler{},
	}
	config := DefaultRuntimeConfig()
	config.Name = "test-" + t.Name()
	config.Clock = rig.clock
	config.FatalHandler = rig.fatal
	config.PanicHandler = rig.panics
	config.Switcher = switcher
	if tune != nil {
		tune(config)
	}
	rig.rt = NewRuntime(config)
	return rig
}

func noop(arg any) any { return nil }
