package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/Swind/go-cthread/core"
	obs "github.com/Swind/go-cthread/observability/prometheus"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"
)

const defaultStackSize = core.DefaultStackSize

// session is one runtime built from the global flags plus the resources
// that must be closed when the command ends.
type session struct {
	rt      *core.Runtime
	out     io.Writer
	poller  *obs.SnapshotPoller
	closers []func() error
}

func newSession(c *cli.Context) (*session, error) {
	s := &session{out: c.App.Writer}

	config := core.DefaultRuntimeConfig()
	config.Name = c.String("name")
	config.StackSize = c.Int("stack-size")
	config.MaxStackBytes = c.Int64("max-stack-bytes")
	if c.Bool("round-robin") {
		config.Clock = core.ConstantClock(0)
	}

	logger, err := s.openLogger(c)
	if err != nil {
		return nil, err
	}
	config.Logger = logger

	if addr := c.String("metrics-addr"); addr != "" {
		if err := s.serveMetrics(addr, config); err != nil {
			_ = s.Close()
			return nil, err
		}
	}

	s.rt = core.NewRuntime(config)
	if s.poller != nil {
		s.poller.AddRuntime(s.rt.Name(), s.rt)
		s.poller.Start(context.Background())
	}
	return s, nil
}

func (s *session) openLogger(c *cli.Context) (core.Logger, error) {
	level, err := core.ParseLogLevel(c.String("log-level"))
	if err != nil {
		return nil, cli.Exit(err.Error(), 2)
	}
	if c.Bool("verbose") {
		level = core.LevelDebug
	}

	var w io.Writer = c.App.ErrWriter
	if w == nil {
		w = os.Stderr
	}
	if path := c.String("log-file"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		s.closers = append(s.closers, f.Close)
		w = f
	}
	return core.NewWriterLogger(w, level), nil
}

// serveMetrics wires the exporter and the snapshot poller into config and
// starts the HTTP endpoint.
func (s *session) serveMetrics(addr string, config *core.RuntimeConfig) error {
	reg := prom.NewRegistry()

	exporter, err := obs.NewMetricsExporter("cthread", reg, obs.ExporterOptions{})
	if err != nil {
		return fmt.Errorf("metrics exporter: %w", err)
	}
	config.Metrics = exporter

	poller, err := obs.NewSnapshotPoller(reg, 100*time.Millisecond)
	if err != nil {
		return fmt.Errorf("snapshot poller: %w", err)
	}
	s.poller = poller
	s.closers = append(s.closers, func() error {
		poller.Stop()
		return nil
	})

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	server := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			config.Logger.Error("Metrics server stopped", core.F("error", err))
		}
	}()
	s.closers = append(s.closers, func() error {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		return server.Shutdown(ctx)
	})
	config.Logger.Info("Serving metrics", core.F("addr", addr))
	return nil
}

// Close releases resources in reverse order of acquisition.
func (s *session) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}

func (s *session) printStats() {
	stats := s.rt.Stats()
	fmt.Fprintf(s.out, "runtime %s: created=%d finished=%d dispatches=%d live=%d stack_bytes=%d\n",
		stats.Name, stats.Created, stats.Finished, stats.Switches, stats.Live, stats.StackBytes)
}
