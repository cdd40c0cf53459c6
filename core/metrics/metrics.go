package metrics

import (
	"time"

	"identity-reconciler/core/reconcile"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the reconciliation engine.
type Metrics struct {
	// Decision outcomes by kind
	DecisionOutcome *prometheus.CounterVec

	// Full identify latency, including the transaction
	DecisionLatency prometheus.Histogram
}

// New creates a Metrics instance registered against reg.
// A nil registerer falls back to the default Prometheus registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	m := &Metrics{
		DecisionOutcome: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "identity_reconcile_decisions_total",
			Help: "Total reconciliation decisions by outcome",
		}, []string{"outcome"}),

		DecisionLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "identity_reconcile_duration_seconds",
			Help:    "Duration of identify calls including the store transaction",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
	}

	// Pre-create every series so dashboards see zeros instead of gaps.
	for _, o := range []reconcile.Outcome{
		reconcile.OutcomeCreatedPrimary,
		reconcile.OutcomeLinkedSecondary,
		reconcile.OutcomeMerged,
		reconcile.OutcomeUnchanged,
		reconcile.OutcomeInvalid,
		reconcile.OutcomeError,
	} {
		m.DecisionOutcome.WithLabelValues(string(o))
	}
	return m
}

// ObserveDecision records one decision and its latency.
func (m *Metrics) ObserveDecision(outcome reconcile.Outcome, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.DecisionOutcome.WithLabelValues(string(outcome)).Inc()
	m.DecisionLatency.Observe(elapsed.Seconds())
}

var _ reconcile.Recorder = (*Metrics)(nil)
