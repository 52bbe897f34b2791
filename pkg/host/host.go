// Package host wires a configured runtime: logger, type registry, task loop
// and metrics.
package host

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/zhouwensi/Bridge/pkg/config"
	"github.com/zhouwensi/Bridge/pkg/runtime"
	"github.com/zhouwensi/Bridge/pkg/task"
)

// Host owns the long-lived pieces of a runtime instance.
type Host struct {
	Config   *config.Config
	Logger   *slog.Logger
	Registry *runtime.Registry
	Loop     *task.Loop
	// Metrics and Gatherer are nil when metrics are disabled.
	Metrics  *task.Metrics
	Gatherer prometheus.Gatherer
}

type options struct {
	logOutput  io.Writer
	prometheus *prometheus.Registry
}

type Option func(*options)

// WithLogOutput sends log records to w instead of stderr.
func WithLogOutput(w io.Writer) Option {
	return func(o *options) { o.logOutput = w }
}

// WithPrometheusRegistry registers metrics with reg instead of a fresh
// registry.
func WithPrometheusRegistry(reg *prometheus.Registry) Option {
	return func(o *options) { o.prometheus = reg }
}

// New builds a host from cfg; a nil cfg means config.Default().
func New(cfg *config.Config, opts ...Option) (*Host, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := options{logOutput: os.Stderr}
	for _, opt := range opts {
		opt(&o)
	}

	logger, err := newLogger(cfg, o.logOutput)
	if err != nil {
		return nil, err
	}
	h := &Host{Config: cfg, Logger: logger}

	h.Registry = runtime.NewRegistry(runtime.WithLogger(logger))
	for _, ns := range cfg.Registry.Namespaces {
		if _, err := h.Registry.EnsureNamespace(ns); err != nil {
			return nil, fmt.Errorf("host: namespace %s: %w", ns, err)
		}
	}

	loopOpts := []task.LoopOption{
		task.WithLogger(logger),
		task.WithDispatchRate(cfg.Scheduler.DispatchRate, cfg.Scheduler.DispatchBurst),
		task.WithQueueHint(cfg.Scheduler.QueueHint),
	}
	if cfg.Metrics.Enabled {
		reg := o.prometheus
		if reg == nil {
			reg = prometheus.NewRegistry()
		}
		metrics, err := task.NewMetrics(reg, cfg.Metrics.Namespace)
		if err != nil {
			return nil, fmt.Errorf("host: %w", err)
		}
		h.Metrics = metrics
		h.Gatherer = reg
		loopOpts = append(loopOpts, task.WithMetrics(metrics))
	}
	h.Loop = task.NewLoop(loopOpts...)

	logger.Info("host: runtime ready",
		"namespaces", len(cfg.Registry.Namespaces),
		"metrics", cfg.Metrics.Enabled,
		"dispatch_rate", cfg.Scheduler.DispatchRate)
	return h, nil
}

func newLogger(cfg *config.Config, w io.Writer) (*slog.Logger, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}
	handlerOpts := &slog.HandlerOptions{Level: level}
	if cfg.Logging.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, handlerOpts)), nil
	}
	return slog.New(slog.NewTextHandler(w, handlerOpts)), nil
}

// Close stops the loop. Queued callbacks still run; tasks waiting on timers
// fault instead of holding shutdown open.
func (h *Host) Close() {
	if h == nil || h.Loop == nil {
		return
	}
	h.Loop.Close()
	h.Logger.Debug("host: closed")
}
