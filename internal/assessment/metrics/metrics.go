package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the assessment module.
// Tracks run throughput, override activity, and the critical path durations.
type Metrics struct {
	AssessmentsCreated  prometheus.Counter
	RunsCompleted       prometheus.Counter
	RunsFailed          prometheus.Counter
	DocumentsProcessed  prometheus.Counter
	ExtractionFailures  prometheus.Counter
	Overrides           *prometheus.CounterVec
	VersionConflicts    prometheus.Counter
	RunDuration         prometheus.Histogram
	ExtractionDuration  prometheus.Histogram
	CoveragePercentage  prometheus.Histogram
}

// New creates a Metrics instance with all assessment module metrics registered.
func New() *Metrics {
	return &Metrics{
		AssessmentsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "itsg33_assessments_created_total",
			Help: "Total number of assessments created",
		}),
		RunsCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "itsg33_assessment_runs_completed_total",
			Help: "Total number of assessment runs completed",
		}),
		RunsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "itsg33_assessment_runs_failed_total",
			Help: "Total number of assessment runs that failed",
		}),
		DocumentsProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "itsg33_documents_processed_total",
			Help: "Total number of evidence documents processed",
		}),
		ExtractionFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "itsg33_evidence_extraction_failures_total",
			Help: "Total number of documents whose evidence extraction failed",
		}),
		Overrides: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "itsg33_overrides_total",
			Help: "Total number of manual overrides by action",
		}, []string{"action"}),
		VersionConflicts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "itsg33_version_conflicts_total",
			Help: "Total number of optimistic concurrency conflicts observed",
		}),
		RunDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "itsg33_assessment_run_duration_seconds",
			Help:    "Duration of full assessment runs including extraction",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
		}),
		ExtractionDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "itsg33_evidence_extraction_duration_seconds",
			Help:    "Duration of per-document evidence extraction",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120},
		}),
		CoveragePercentage: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "itsg33_coverage_percentage",
			Help:    "Coverage percentage distribution across completed runs",
			Buckets: []float64{0, 10, 25, 50, 75, 90, 100},
		}),
	}
}

// ObserveRun records the duration of a completed run.
// Call with time.Now() at the start of the run.
func (m *Metrics) ObserveRun(start time.Time) {
	m.RunDuration.Observe(time.Since(start).Seconds())
}

// ObserveExtraction records the duration of one document's extraction.
func (m *Metrics) ObserveExtraction(start time.Time) {
	m.ExtractionDuration.Observe(time.Since(start).Seconds())
}

// IncrementOverride records an override by action name.
func (m *Metrics) IncrementOverride(action string) {
	m.Overrides.WithLabelValues(action).Inc()
}
