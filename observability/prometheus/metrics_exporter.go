package prometheus

import (
	"errors"
	"fmt"
	"time"

	"github.com/Swind/go-cthread/core"
	prom "github.com/prometheus/client_golang/prometheus"
)

// ExporterOptions controls collector configuration.
type ExporterOptions struct {
	LifetimeBuckets []float64
}

// MetricsExporter adapts core.Metrics to Prometheus collectors.
type MetricsExporter struct {
	threadsCreatedTotal  *prom.CounterVec
	threadsFinishedTotal *prom.CounterVec
	threadPanicTotal     *prom.CounterVec
	threadLifetime       *prom.HistogramVec
	contextSwitchTotal   *prom.CounterVec
	operationErrorTotal  *prom.CounterVec
	fatalTotal           *prom.CounterVec
	queueDepth           *prom.GaugeVec
}

var _ core.Metrics = (*MetricsExporter)(nil)

// NewMetricsExporter creates and registers Prometheus collectors for core.Metrics.
func NewMetricsExporter(namespace string, reg prom.Registerer, opts ExporterOptions) (*MetricsExporter, error) {
	if namespace == "" {
		namespace = "cthread"
	}
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	buckets := opts.LifetimeBuckets
	if len(buckets) == 0 {
		buckets = prom.DefBuckets
	}

	createdVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "threads_created_total",
		Help:      "Total number of threads created.",
	}, []string{"runtime"})
	finishedVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "threads_finished_total",
		Help:      "Total number of threads reaped by the scheduler.",
	}, []string{"runtime"})
	panicVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "thread_panic_total",
		Help:      "Total number of thread entry functions that panicked.",
	}, []string{"runtime"})
	lifetimeVec := prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "thread_lifetime_seconds",
		Help:      "Time from thread creation to reaping in seconds.",
		Buckets:   buckets,
	}, []string{"runtime"})
	switchVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "context_switches_total",
		Help:      "Total number of hand-offs to the scheduler.",
	}, []string{"runtime", "reason"})
	errorVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "operation_errors_total",
		Help:      "Total number of runtime operations that returned an error.",
	}, []string{"runtime", "op"})
	fatalVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "fatal_total",
		Help:      "Total number of unrecoverable scheduler conditions.",
	}, []string{"runtime", "reason"})
	queueDepthVec := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "queue_depth",
		Help:      "Current depth of the ready and blocked queues.",
	}, []string{"runtime", "queue"})

	var err error
	if createdVec, err = registerCollector(reg, createdVec); err != nil {
		return nil, err
	}
	if finishedVec, err = registerCollector(reg, finishedVec); err != nil {
		return nil, err
	}
	if panicVec, err = registerCollector(reg, panicVec); err != nil {
		return nil, err
	}
	if lifetimeVec, err = registerCollector(reg, lifetimeVec); err != nil {
		return nil, err
	}
	if switchVec, err = registerCollector(reg, switchVec); err != nil {
		return nil, err
	}
	if errorVec, err = registerCollector(reg, errorVec); err != nil {
		return nil, err
	}
	if fatalVec, err = registerCollector(reg, fatalVec); err != nil {
		return nil, err
	}
	if queueDepthVec, err = registerCollector(reg, queueDepthVec); err != nil {
		return nil, err
	}

	return &MetricsExporter{
		threadsCreatedTotal:  createdVec,
		threadsFinishedTotal: finishedVec,
		threadPanicTotal:     panicVec,
		threadLifetime:       lifetimeVec,
		contextSwitchTotal:   switchVec,
		operationErrorTotal:  errorVec,
		fatalTotal:           fatalVec,
		queueDepth:           queueDepthVec,
	}, nil
}

// RecordThreadCreated records thread creation.
func (m *MetricsExporter) RecordThreadCreated(runtimeName string) {
	if m == nil {
		return
	}
	m.threadsCreatedTotal.WithLabelValues(normalizeLabel(runtimeName, "unknown")).Inc()
}

// RecordThreadFinished records a reaped thread and its lifetime.
func (m *MetricsExporter) RecordThreadFinished(runtimeName string, lifetime time.Duration) {
	if m == nil {
		return
	}
	label := normalizeLabel(runtimeName, "unknown")
	m.threadsFinishedTotal.WithLabelValues(label).Inc()
	m.threadLifetime.WithLabelValues(label).Observe(lifetime.Seconds())
}

// RecordThreadPanic records thread panic events.
func (m *MetricsExporter) RecordThreadPanic(runtimeName string, panicInfo any) {
	if m == nil {
		return
	}
	m.threadPanicTotal.WithLabelValues(normalizeLabel(runtimeName, "unknown")).Inc()
}

// RecordContextSwitch records a hand-off to the scheduler.
func (m *MetricsExporter) RecordContextSwitch(runtimeName string, reason string) {
	if m == nil {
		return
	}
	m.contextSwitchTotal.WithLabelValues(normalizeLabel(runtimeName, "unknown"), normalizeLabel(reason, "unknown")).Inc()
}

// RecordQueueDepth records queue depth.
func (m *MetricsExporter) RecordQueueDepth(runtimeName string, queue string, depth int) {
	if m == nil {
		return
	}
	m.queueDepth.WithLabelValues(normalizeLabel(runtimeName, "unknown"), normalizeLabel(queue, "unknown")).Set(float64(depth))
}

// RecordOperationError records a failed operation.
func (m *MetricsExporter) RecordOperationError(runtimeName string, op string) {
	if m == nil {
		return
	}
	m.operationErrorTotal.WithLabelValues(normalizeLabel(runtimeName, "unknown"), normalizeLabel(op, "unknown")).Inc()
}

// RecordFatal records an unrecoverable scheduler condition.
func (m *MetricsExporter) RecordFatal(runtimeName string, reason string) {
	if m == nil {
		return
	}
	m.fatalTotal.WithLabelValues(normalizeLabel(runtimeName, "unknown"), normalizeLabel(reason, "unknown")).Inc()
}

func normalizeLabel(v string, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func registerCollector[T prom.Collector](reg prom.Registerer, collector T) (T, error) {
	err := reg.Register(collector)
	if err == nil {
		return collector, nil
	}

	var alreadyRegisteredErr prom.AlreadyRegisteredError
	if errors.As(err, &alreadyRegisteredErr) {
		existing, ok := alreadyRegisteredErr.ExistingCollector.(T)
		if !ok {
			return collector, fmt.Errorf("collector type mismatch for %T", collector)
		}
		return existing, nil
	}

	return collector, err
}
