package metrics

import (
	"testing"
	"time"

	"identity-reconciler/core/reconcile"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveDecision(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveDecision(reconcile.OutcomeCreatedPrimary, 10*time.Millisecond)
	m.ObserveDecision(reconcile.OutcomeCreatedPrimary, 20*time.Millisecond)
	m.ObserveDecision(reconcile.OutcomeMerged, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.DecisionOutcome.WithLabelValues("created_primary")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DecisionOutcome.WithLabelValues("merged")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.DecisionOutcome.WithLabelValues("invalid")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.DecisionLatency))
}

func TestNew_PreCreatesSeries(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	assert.Equal(t, 6, testutil.CollectAndCount(m.DecisionOutcome))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "identity_reconcile_decisions_total")
	assert.Contains(t, names, "identity_reconcile_duration_seconds")
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() { m.ObserveDecision(reconcile.OutcomeError, time.Second) })
}
