// Package metrics defines Prometheus metrics for eapulse.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "eap"

// HTTP metrics.
var (
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"method", "path", "status"})

	HealthzUp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "healthz_up",
		Help:      "Whether the last liveness probe succeeded (1) or failed (0).",
	})

	ReadyzUp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "readyz_up",
		Help:      "Whether the last readiness probe succeeded (1) or failed (0).",
	})
)

// Evaluation metrics.
var (
	EvaluationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "evaluation_duration_seconds",
		Help:      "Duration of full report evaluations in seconds.",
		Buckets:   prometheus.DefBuckets,
	})

	RulesEvaluatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rules_evaluated_total",
		Help:      "Total number of rule evaluations performed.",
	})

	RuleFiringsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rule_firings_total",
		Help:      "Total number of rule firings.",
	}, []string{"rule_type", "severity"})

	SuppressedFiringsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "suppressed_firings_total",
		Help:      "Total number of firings suppressed by active PTO.",
	})
)

// Alert metrics.
var (
	AlertsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "alerts_created_total",
		Help:      "Total number of alerts created.",
	})

	AlertsDedupedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "alerts_deduped_total",
		Help:      "Total number of firings folded into an existing open alert.",
	})
)

// Classifier metrics.
var (
	ClassifierCallsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "classifier_calls_total",
		Help:      "Total number of LLM classifier calls.",
	})

	ClassifierFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "classifier_failures_total",
		Help:      "Total number of classifier runs that fell back to safe defaults.",
	})

	ClassifierCacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "classifier_cache_hits_total",
		Help:      "Total number of classifier results served from cache.",
	})
)

// Health scoring metrics.
var (
	HealthComputedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "health_computed_total",
		Help:      "Total number of health computations by resulting status.",
	}, []string{"status"})
)

// Pattern state metrics.
var (
	PatternStatesPrunedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "pattern_states_pruned_total",
		Help:      "Total number of expired pattern states removed by the sweep.",
	})
)
