package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the trust module.
type Metrics struct {
	// Decision outcomes by policy and decision
	DecisionOutcome *prometheus.CounterVec

	// Verdicts demoted by the decay engine, by policy
	DecayDemotions *prometheus.CounterVec

	// Full evaluation latency (normalize, score, evaluate, decay)
	EvaluateLatency prometheus.Histogram

	// Simulations run, counting one per asset regardless of policy count
	Simulations prometheus.Counter
}

// New creates a Metrics instance with all trust module metrics registered.
func New() *Metrics {
	return &Metrics{
		DecisionOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "veracity_trust_decisions_total",
			Help: "Total decisions by policy and outcome",
		}, []string{"policy", "decision"}),

		DecayDemotions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "veracity_trust_decay_demotions_total",
			Help: "Total verdicts demoted for staleness, by policy",
		}, []string{"policy"}),

		EvaluateLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "veracity_trust_evaluate_duration_seconds",
			Help:    "Duration of a full trust evaluation including decay",
			Buckets: []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025},
		}),

		Simulations: promauto.NewCounter(prometheus.CounterOpts{
			Name: "veracity_trust_simulations_total",
			Help: "Total multi-policy simulations run",
		}),
	}
}

// IncrementOutcome records a decision outcome.
func (m *Metrics) IncrementOutcome(policy, decision string) {
	if m != nil {
		m.DecisionOutcome.WithLabelValues(policy, decision).Inc()
	}
}

// IncrementDecayDemotion records a staleness demotion.
func (m *Metrics) IncrementDecayDemotion(policy string) {
	if m != nil {
		m.DecayDemotions.WithLabelValues(policy).Inc()
	}
}

// ObserveEvaluateLatency records a full evaluation duration.
func (m *Metrics) ObserveEvaluateLatency(d time.Duration) {
	if m != nil {
		m.EvaluateLatency.Observe(d.Seconds())
	}
}

// IncrementSimulations records one simulation call.
func (m *Metrics) IncrementSimulations() {
	if m != nil {
		m.Simulations.Inc()
	}
}
