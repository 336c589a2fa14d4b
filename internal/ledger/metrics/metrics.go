package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the ledger module.
type Metrics struct {
	// Appends by event type and result (ok, conflict, error)
	Appends *prometheus.CounterVec

	// Retries spent resolving tip conflicts
	AppendConflicts prometheus.Counter

	// Events removed by the retention cap
	Evictions prometheus.Counter

	// Full append latency including retries
	AppendLatency prometheus.Histogram
}

// New creates a Metrics instance with all ledger metrics registered.
func New() *Metrics {
	return &Metrics{
		Appends: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "veracity_ledger_appends_total",
			Help: "Total ledger append attempts by event type and result",
		}, []string{"type", "result"}),

		AppendConflicts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "veracity_ledger_append_conflicts_total",
			Help: "Total tip conflicts observed while appending, including retried ones",
		}),

		Evictions: promauto.NewCounter(prometheus.CounterOpts{
			Name: "veracity_ledger_evictions_total",
			Help: "Total events evicted by the retention cap",
		}),

		AppendLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "veracity_ledger_append_duration_seconds",
			Help:    "Duration of ledger appends including conflict retries",
			Buckets: []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5},
		}),
	}
}

// IncrementAppend records an append attempt outcome.
func (m *Metrics) IncrementAppend(eventType, result string) {
	if m != nil {
		m.Appends.WithLabelValues(eventType, result).Inc()
	}
}

// IncrementConflict records one observed tip conflict.
func (m *Metrics) IncrementConflict() {
	if m != nil {
		m.AppendConflicts.Inc()
	}
}

// IncrementEviction records one retention eviction.
func (m *Metrics) IncrementEviction() {
	if m != nil {
		m.Evictions.Inc()
	}
}

// ObserveAppendLatency records a full append duration.
func (m *Metrics) ObserveAppendLatency(d time.Duration) {
	if m != nil {
		m.AppendLatency.Observe(d.Seconds())
	}
}
