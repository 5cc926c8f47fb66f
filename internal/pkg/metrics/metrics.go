package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Turn outcomes
const (
	OutcomeCompleted = "completed"
	OutcomeRejected  = "rejected"
	OutcomeFailed    = "failed"
)

// Failure kinds
const (
	KindTimeout = "timeout"
	KindError   = "error"
)

// Metrics collects chat pipeline counters. A nil *Metrics is a valid no-op.
type Metrics struct {
	turns        *prometheus.CounterVec
	callDuration *prometheus.HistogramVec
	failures     *prometheus.CounterVec
}

// New creates the collectors and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		turns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lawgpt",
			Name:      "chat_turns_total",
			Help:      "Chat turns by terminal outcome.",
		}, []string{"outcome"}),
		callDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "lawgpt",
			Name:      "upstream_call_duration_seconds",
			Help:      "Latency of retriever, language model and memory calls.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30},
		}, []string{"stage"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lawgpt",
			Name:      "upstream_failures_total",
			Help:      "Failed upstream calls by stage and kind.",
		}, []string{"stage", "kind"}),
	}

	reg.MustRegister(m.turns, m.callDuration, m.failures)
	return m
}

func (m *Metrics) Turn(outcome string) {
	if m == nil {
		return
	}
	m.turns.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveCall(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.callDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (m *Metrics) Failure(stage, kind string) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(stage, kind).Inc()
}

// RegisterSessionGauge exports the number of conversations held in process memory
func RegisterSessionGauge(reg prometheus.Registerer, sessions func() int) prometheus.GaugeFunc {
	g := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "lawgpt",
		Name:      "memory_sessions",
		Help:      "Sessions held by the in-process conversation memory.",
	}, func() float64 { return float64(sessions()) })

	reg.MustRegister(g)
	return g
}
