package task

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts loop and task activity. A nil *Metrics records nothing.
type Metrics struct {
	dispatched prometheus.Counter
	panics     prometheus.Counter
	started    prometheus.Counter
	settled    *prometheus.CounterVec
	queueDepth prometheus.Gauge
}

// NewMetrics builds the collectors under namespace and registers them with
// reg.
func NewMetrics(reg prometheus.Registerer, namespace string) (*Metrics, error) {
	m := &Metrics{
		dispatched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "loop",
			Name:      "dispatched_total",
			Help:      "Callbacks dispatched by the scheduler loop.",
		}),
		panics: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "loop",
			Name:      "recovered_panics_total",
			Help:      "Panics recovered while running posted callbacks.",
		}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "loop",
			Name:      "queue_depth",
			Help:      "Callbacks waiting in the scheduler queue.",
		}),
		started: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "task",
			Name:      "started_total",
			Help:      "Tasks whose action was started.",
		}),
		settled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "task",
			Name:      "settled_total",
			Help:      "Tasks that reached a terminal status.",
		}, []string{"status"}),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.dispatched, m.panics, m.queueDepth, m.started, m.settled} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("task: register metrics: %w", err)
		}
	}
	return m, nil
}

func (m *Metrics) observeDispatch() {
	if m != nil {
		m.dispatched.Inc()
	}
}

func (m *Metrics) observePanic() {
	if m != nil {
		m.panics.Inc()
	}
}

func (m *Metrics) observeQueue(depth int) {
	if m != nil {
		m.queueDepth.Set(float64(depth))
	}
}

func (m *Metrics) taskStarted() {
	if m != nil {
		m.started.Inc()
	}
}

func (m *Metrics) taskSettled(status Status) {
	if m != nil {
		m.settled.WithLabelValues(status.String()).Inc()
	}
}
