package prometheus

import (
	"context"
	"sync"
	"time"

	"github.com/Swind/go-cthread/core"
	prom "github.com/prometheus/client_golang/prometheus"
)

// RuntimeSnapshotProvider provides current runtime stats snapshots.
// *core.Runtime satisfies it.
type RuntimeSnapshotProvider interface {
	Stats() core.RuntimeStats
}

// SnapshotPoller periodically exports runtime Stats() snapshots into Prometheus gauges.
type SnapshotPoller struct {
	interval time.Duration

	runtimesMu sync.RWMutex
	runtimes   map[string]RuntimeSnapshotProvider

	readyThreads   *prom.GaugeVec
	blockedThreads *prom.GaugeVec
	liveThreads    *prom.GaugeVec
	switches       *prom.GaugeVec
	stackBytes     *prom.GaugeVec
	halted         *prom.GaugeVec

	stateMu sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewSnapshotPoller creates a snapshot poller and registers its collectors.
func NewSnapshotPoller(reg prom.Registerer, interval time.Duration) (*SnapshotPoller, error) {
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	if interval <= 0 {
		interval = time.Second
	}

	readyThreads := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "cthread",
		Name:      "runtime_ready_threads",
		Help:      "Threads waiting in the ready queue.",
	}, []string{"runtime"})
	blockedThreads := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "cthread",
		Name:      "runtime_blocked_threads",
		Help:      "Threads waiting in the join queue.",
	}, []string{"runtime"})
	liveThreads := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "cthread",
		Name:      "runtime_live_threads",
		Help:      "Threads not yet reaped, main included.",
	}, []string{"runtime"})
	switches := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "cthread",
		Name:      "runtime_dispatches",
		Help:      "Dispatch count snapshot.",
	}, []string{"runtime"})
	stackBytes := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "cthread",
		Name:      "runtime_stack_bytes",
		Help:      "Bytes of stack currently reserved.",
	}, []string{"runtime"})
	halted := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "cthread",
		Name:      "runtime_halted",
		Help:      "Runtime halted state (1=halted, 0=live).",
	}, []string{"runtime"})

	var err error
	if readyThreads, err = registerCollector(reg, readyThreads); err != nil {
		return nil, err
	}
	if blockedThreads, err = registerCollector(reg, blockedThreads); err != nil {
		return nil, err
	}
	if liveThreads, err = registerCollector(reg, liveThreads); err != nil {
		return nil, err
	}
	if switches, err = registerCollector(reg, switches); err != nil {
		return nil, err
	}
	if stackBytes, err = registerCollector(reg, stackBytes); err != nil {
		return nil, err
	}
	if halted, err = registerCollector(reg, halted); err != nil {
		return nil, err
	}

	return &SnapshotPoller{
		interval:       interval,
		runtimes:       make(map[string]RuntimeSnapshotProvider),
		readyThreads:   readyThreads,
		blockedThreads: blockedThreads,
		liveThreads:    liveThreads,
		switches:       switches,
		stackBytes:     stackBytes,
		halted:         halted,
	}, nil
}

// AddRuntime adds or replaces a runtime snapshot provider by name.
func (p *SnapshotPoller) AddRuntime(name string, provider RuntimeSnapshotProvider) {
	if p == nil || provider == nil {
		return
	}
	name = normalizeLabel(name, "runtime")
	p.runtimesMu.Lock()
	p.runtimes[name] = provider
	p.runtimesMu.Unlock()
}

// Start begins periodic polling; repeated calls are no-ops.
func (p *SnapshotPoller) Start(ctx context.Context) {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if p.running {
		p.stateMu.Unlock()
		return
	}
	pollCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	p.running = true
	p.stateMu.Unlock()

	go p.loop(pollCtx)
}

// Stop stops periodic polling; repeated calls are safe.
func (p *SnapshotPoller) Stop() {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if !p.running {
		p.stateMu.Unlock()
		return
	}
	cancel := p.cancel
	done := p.done
	p.stateMu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}

	p.stateMu.Lock()
	p.running = false
	p.cancel = nil
	p.done = nil
	p.stateMu.Unlock()
}

func (p *SnapshotPoller) loop(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.collectOnce()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.collectOnce()
		}
	}
}

func (p *SnapshotPoller) collectOnce() {
	p.runtimesMu.RLock()
	defer p.runtimesMu.RUnlock()

	for name, provider := range p.runtimes {
		stats := provider.Stats()
		p.readyThreads.WithLabelValues(name).Set(float64(stats.Ready))
		p.blockedThreads.WithLabelValues(name).Set(float64(stats.Blocked))
		p.liveThreads.WithLabelValues(name).Set(float64(stats.Live))
		p.switches.WithLabelValues(name).Set(float64(stats.Switches))
		p.stackBytes.WithLabelValues(name).Set(float64(stats.StackBytes))
		if stats.Halted {
			p.halted.WithLabelValues(name).Set(1)
		} else {
			p.halted.WithLabelValues(name).Set(0)
		}
	}
}
