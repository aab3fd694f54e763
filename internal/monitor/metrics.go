package monitor

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/turtacn/Tabula/pkg/fsm"
	"github.com/turtacn/Tabula/pkg/logger"
)

// Metrics records engine activity as Prometheus collectors. It implements fsm.Observer.
type Metrics struct {
	registry *prometheus.Registry

	// InstancesActive tracks the number of occupied pool slots.
	InstancesActive prometheus.Gauge
	// PoolExhaustedTotal counts Init calls refused for lack of a free slot.
	PoolExhaustedTotal prometheus.Counter
	// EventsTotal counts AddEvent calls, partitioned by result.
	EventsTotal *prometheus.CounterVec
	// StepsTotal counts Run calls that consumed an event, partitioned by status.
	StepsTotal *prometheus.CounterVec
	// TransitionsTotal counts steps that fired a transition.
	TransitionsTotal prometheus.Counter
	// CallbacksTotal counts state callbacks, partitioned by kind and result.
	CallbacksTotal *prometheus.CounterVec
	// StepDuration tracks time spent in one Run call.
	StepDuration prometheus.Histogram
}

var _ fsm.Observer = (*Metrics)(nil)

// NewMetrics builds the collectors on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		InstancesActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tabula_instances_active",
			Help: "Number of FSM instances occupying a pool slot",
		}),
		PoolExhaustedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tabula_pool_exhausted_total",
			Help: "Init calls refused because every slot was in use",
		}),
		EventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tabula_events_total",
			Help: "Events offered to AddEvent",
		}, []string{"result"}),
		StepsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tabula_steps_total",
			Help: "Run steps that consumed an event",
		}, []string{"status"}),
		TransitionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tabula_transitions_total",
			Help: "Steps that fired a transition",
		}),
		CallbacksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tabula_callbacks_total",
			Help: "State callbacks invoked",
		}, []string{"kind", "result"}),
		StepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tabula_step_duration_seconds",
			Help:    "Time spent in a single Run step",
			Buckets: prometheus.ExponentialBuckets(1e-7, 4, 10),
		}),
	}
	m.registry.MustRegister(
		m.InstancesActive,
		m.PoolExhaustedTotal,
		m.EventsTotal,
		m.StepsTotal,
		m.TransitionsTotal,
		m.CallbacksTotal,
		m.StepDuration,
	)
	return m
}

// Registry exposes the private registry, for tests and custom exporters.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) InstanceAcquired(fsm.Handle) { m.InstancesActive.Inc() }
func (m *Metrics) InstanceReleased(fsm.Handle) { m.InstancesActive.Dec() }
func (m *Metrics) PoolExhausted()              { m.PoolExhaustedTotal.Inc() }

func (m *Metrics) EventQueued(_ fsm.Event, err error) {
	m.EventsTotal.WithLabelValues(result(err)).Inc()
}

func (m *Metrics) Stepped(status fsm.Status, transitioned bool, elapsed time.Duration) {
	m.StepsTotal.WithLabelValues(status.String()).Inc()
	if transitioned {
		m.TransitionsTotal.Inc()
	}
	m.StepDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) CallbackFired(kind fsm.CallbackKind, err error) {
	m.CallbacksTotal.WithLabelValues(string(kind), result(err)).Inc()
}

// Serve exposes /metrics on addr in the background. An empty addr disables it.
func (m *Metrics) Serve(addr string) *http.Server {
	if addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logger.Log.Info("Metrics server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Metrics server failed", "err", err)
		}
	}()
	return srv
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// Personal.AI order the ending
