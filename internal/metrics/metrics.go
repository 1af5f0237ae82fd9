package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/fx"
)

// Metrics records per-turn outcomes.
type Metrics struct {
	turns      *prometheus.CounterVec
	askLatency *prometheus.HistogramVec
	synthFails prometheus.Counter
}

// New registers the assistant collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		turns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sarvajna_turns_total",
			Help: "Turns processed, by detected language and outcome.",
		}, []string{"language", "outcome"}),
		askLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sarvajna_model_request_seconds",
			Help:    "Latency of language model calls.",
			Buckets: prometheus.DefBuckets,
		}, []string{"outcome"}),
		synthFails: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sarvajna_speech_failures_total",
			Help: "Speech syntheses that degraded to text-only.",
		}),
	}

	reg.MustRegister(m.turns, m.askLatency, m.synthFails)
	return m
}

// Turn counts a finished turn. outcome is "ok" or an error kind.
func (m *Metrics) Turn(language, outcome string) {
	m.turns.WithLabelValues(language, outcome).Inc()
}

// ModelRequest observes one model call.
func (m *Metrics) ModelRequest(outcome string, d time.Duration) {
	m.askLatency.WithLabelValues(outcome).Observe(d.Seconds())
}

// SynthesisFailed counts a degraded speech synthesis.
func (m *Metrics) SynthesisFailed() {
	m.synthFails.Inc()
}

// TurnCounter exposes one turn series for inspection.
func (m *Metrics) TurnCounter(language, outcome string) prometheus.Counter {
	return m.turns.WithLabelValues(language, outcome)
}

func (m *Metrics) SynthesisFailures() prometheus.Counter {
	return m.synthFails
}

// NewRegistry returns a registry with the Go and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func Module() fx.Option {
	return fx.Module(
		"metrics",
		fx.Provide(
			NewRegistry,
			func(reg *prometheus.Registry) *Metrics { return New(reg) },
		),
	)
}
