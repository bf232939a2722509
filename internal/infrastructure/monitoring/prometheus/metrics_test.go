package prometheus

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minhaarvore/arvore/internal/application/consistency"
)

func TestReconciliationCompleted(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.ReconciliationCompleted(&consistency.Report{
		Scanned:  100,
		Mutated:  7,
		Duration: 2 * time.Second,
		CountsByKind: map[consistency.AnomalyKind]int{
			consistency.AnomalyMissingChildLink: 4,
			consistency.AnomalySpouseConflict:   2,
		},
		Failures: []consistency.WriteFailure{{PersonID: "x", Error: "boom"}},
	})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.reconciliationRuns))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.correctionsApplied))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.writeFailures))
	assert.Equal(t, 4.0, testutil.ToFloat64(
		m.anomaliesTotal.WithLabelValues(string(consistency.AnomalyMissingChildLink))))
}

func TestDedupAndSubfamilyRecorders(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.DuplicateScanCompleted(3)
	m.DuplicateScanCompleted(5)
	m.MergeCompleted(2)
	m.SubfamiliesSuggested(4)
	m.SubfamilyCreated()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.duplicateScans))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.duplicateCandidates), "gauge holds the latest scan")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.mergesCompleted))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.referencesRewritten))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.subfamiliesSuggested))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.subfamiliesCreated))
}

func TestMetricsRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewMetrics(reg)

	families, err := reg.Gather()
	require.NoError(t, err)

	// Histograms and vecs without observations are not gathered yet; the
	// plain counters and gauges must be.
	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["arvore_reconciliation_runs_total"])
	assert.True(t, names["arvore_merges_completed_total"])
}
