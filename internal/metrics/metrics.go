package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "speckle_checker"
)

var (
	runDurationBuckets = []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600}

	// Run metrics
	RunDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "run_duration_seconds",
		Help:      "Time taken for a validation run to complete.",
		Buckets:   runDurationBuckets,
	})

	RunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "runs_total",
		Help:      "Count of validation run executions.",
	}, []string{"status"})

	ObjectsEvaluated = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "objects_evaluated",
		Help:      "Number of objects flattened from the model in the last run.",
	})

	// Rule table metrics
	RulesLoaded = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "rules_loaded",
		Help:      "Number of valid rules parsed from the rule table in the last run.",
	})

	RuleParseDiagnosticsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rule_parse_diagnostics_total",
		Help:      "Count of rule table rows or groups rejected during parsing.",
	})

	// Engine metrics
	RuleEvaluationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rule_evaluations_total",
		Help:      "Number of per-object rule outcomes.",
	}, []string{"outcome"})

	IssuesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "issues_total",
		Help:      "Number of reported issues by severity.",
	}, []string{"severity"})
)
