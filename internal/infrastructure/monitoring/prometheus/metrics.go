// Package prometheus exposes the engine's operational metrics.  One Metrics
// value implements the Recorder contracts of the application services.
package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/minhaarvore/arvore/internal/application/consistency"
)

// Metrics bundles every collector the engine emits.
type Metrics struct {
	reconciliationRuns     prometheus.Counter
	reconciliationDuration prometheus.Histogram
	anomaliesTotal         *prometheus.CounterVec
	correctionsApplied     prometheus.Counter
	writeFailures          prometheus.Counter

	duplicateScans      prometheus.Counter
	duplicateCandidates prometheus.Gauge
	mergesCompleted     prometheus.Counter
	referencesRewritten prometheus.Counter

	subfamiliesSuggested prometheus.Gauge
	subfamiliesCreated   prometheus.Counter
}

// NewMetrics registers all collectors on reg.  Pass prometheus.DefaultRegisterer
// in binaries and a fresh registry in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		reconciliationRuns: factory.NewCounter(prometheus.CounterOpts{
			Name: "arvore_reconciliation_runs_total",
			Help: "Completed reconciliation passes.",
		}),
		reconciliationDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "arvore_reconciliation_duration_seconds",
			Help:    "Wall time of a reconciliation pass.",
			Buckets: []float64{.01, .05, .1, .5, 1, 5, 10, 30, 60},
		}),
		anomaliesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "arvore_graph_anomalies_total",
			Help: "Detected graph anomalies by kind.",
		}, []string{"kind"}),
		correctionsApplied: factory.NewCounter(prometheus.CounterOpts{
			Name: "arvore_corrections_applied_total",
			Help: "Person records mutated by reconciliation.",
		}),
		writeFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "arvore_correction_write_failures_total",
			Help: "Corrections that failed to persist.",
		}),
		duplicateScans: factory.NewCounter(prometheus.CounterOpts{
			Name: "arvore_duplicate_scans_total",
			Help: "Completed duplicate scans.",
		}),
		duplicateCandidates: factory.NewGauge(prometheus.GaugeOpts{
			Name: "arvore_duplicate_candidates",
			Help: "Candidates found by the latest duplicate scan.",
		}),
		mergesCompleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "arvore_merges_completed_total",
			Help: "Committed person merges.",
		}),
		referencesRewritten: factory.NewCounter(prometheus.CounterOpts{
			Name: "arvore_merge_references_rewritten_total",
			Help: "Foreign records rewritten during merges.",
		}),
		subfamiliesSuggested: factory.NewGauge(prometheus.GaugeOpts{
			Name: "arvore_subfamilies_suggested",
			Help: "Suggestions produced by the latest subfamily detection run.",
		}),
		subfamiliesCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "arvore_subfamilies_created_total",
			Help: "Subfamilies materialized after human confirmation.",
		}),
	}
}

// ReconciliationCompleted records the outcome of one reconciliation pass.
func (m *Metrics) ReconciliationCompleted(report *consistency.Report) {
	m.reconciliationRuns.Inc()
	m.reconciliationDuration.Observe(report.Duration.Seconds())
	m.correctionsApplied.Add(float64(report.Mutated))
	m.writeFailures.Add(float64(len(report.Failures)))
	for kind, count := range report.CountsByKind {
		m.anomaliesTotal.WithLabelValues(string(kind)).Add(float64(count))
	}
}

// DuplicateScanCompleted records the outcome of one duplicate scan.
func (m *Metrics) DuplicateScanCompleted(candidates int) {
	m.duplicateScans.Inc()
	m.duplicateCandidates.Set(float64(candidates))
}

// MergeCompleted records one committed merge.
func (m *Metrics) MergeCompleted(updates int) {
	m.mergesCompleted.Inc()
	m.referencesRewritten.Add(float64(updates))
}

// SubfamiliesSuggested records the outcome of one detection run.
func (m *Metrics) SubfamiliesSuggested(count int) {
	m.subfamiliesSuggested.Set(float64(count))
}

// SubfamilyCreated records one confirmed subfamily.
func (m *Metrics) SubfamilyCreated() {
	m.subfamiliesCreated.Inc()
}
