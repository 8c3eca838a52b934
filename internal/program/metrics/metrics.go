package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the program module. Every method is safe
// to call on a nil receiver so tests and tools can run without a registry.
type Metrics struct {
	// Evaluations by outcome ("eligible", "ineligible", "error")
	Evaluations *prometheus.CounterVec

	// Per-criterion outcomes by kind and result
	CriterionOutcomes *prometheus.CounterVec

	// Criteria that referenced missing questions or groups
	IntegrityFaults prometheus.Counter

	// Authoring rejections by reason (illegal_operator, too_many_selections, ...)
	AuthoringRejections *prometheus.CounterVec

	// Program cache lookups by result ("hit", "miss", "error", "bypass")
	CacheLookups *prometheus.CounterVec

	EvaluateLatency      prometheus.Histogram
	BatchEvaluateLatency prometheus.Histogram
	ProgramsCreated      prometheus.Counter
}

// New creates a Metrics instance with all program module metrics registered
// on the default registry.
func New() *Metrics {
	return &Metrics{
		Evaluations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "grantgate_evaluations_total",
			Help: "Total eligibility evaluations by outcome",
		}, []string{"outcome"}),

		CriterionOutcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "grantgate_criterion_outcomes_total",
			Help: "Criterion results by criterion kind and result",
		}, []string{"kind", "result"}),

		IntegrityFaults: promauto.NewCounter(prometheus.CounterOpts{
			Name: "grantgate_integrity_faults_total",
			Help: "Criteria evaluated fail-closed because they reference missing questions or groups",
		}),

		AuthoringRejections: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "grantgate_authoring_rejections_total",
			Help: "Conditions rejected by the authoring rules, by reason",
		}, []string{"reason"}),

		CacheLookups: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "grantgate_program_cache_lookups_total",
			Help: "Program cache lookups by result",
		}, []string{"result"}),

		EvaluateLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "grantgate_evaluate_duration_seconds",
			Help:    "Duration of a single applicant evaluation including program load",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}),

		BatchEvaluateLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "grantgate_batch_evaluate_duration_seconds",
			Help:    "Duration of batch evaluations",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),

		ProgramsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "grantgate_programs_created_total",
			Help: "Total number of programs created",
		}),
	}
}

// IncrementEvaluation records an evaluation outcome.
func (m *Metrics) IncrementEvaluation(outcome string) {
	if m != nil {
		m.Evaluations.WithLabelValues(outcome).Inc()
	}
}

// IncrementCriterionOutcome records one criterion result.
func (m *Metrics) IncrementCriterionOutcome(kind string, passed bool) {
	if m == nil {
		return
	}
	result := "failed"
	if passed {
		result = "passed"
	}
	m.CriterionOutcomes.WithLabelValues(kind, result).Inc()
}

// AddIntegrityFaults records integrity faults reported by an evaluation.
func (m *Metrics) AddIntegrityFaults(n int) {
	if m != nil && n > 0 {
		m.IntegrityFaults.Add(float64(n))
	}
}

// IncrementAuthoringRejection records a rejected condition.
func (m *Metrics) IncrementAuthoringRejection(reason string) {
	if m != nil {
		m.AuthoringRejections.WithLabelValues(reason).Inc()
	}
}

// RecordCacheLookup records a program cache lookup result.
func (m *Metrics) RecordCacheLookup(result string) {
	if m != nil {
		m.CacheLookups.WithLabelValues(result).Inc()
	}
}

// ObserveEvaluateLatency records a single evaluation duration.
func (m *Metrics) ObserveEvaluateLatency(d time.Duration) {
	if m != nil {
		m.EvaluateLatency.Observe(d.Seconds())
	}
}

// ObserveBatchEvaluateLatency records a batch evaluation duration.
func (m *Metrics) ObserveBatchEvaluateLatency(d time.Duration) {
	if m != nil {
		m.BatchEvaluateLatency.Observe(d.Seconds())
	}
}

// IncrementProgramsCreated records a created program.
func (m *Metrics) IncrementProgramsCreated() {
	if m != nil {
		m.ProgramsCreated.Inc()
	}
}
