package main

import "errors"

// KnownMetrics is the set of metric names exported by eapulse plus
// recording rule names referenced in dashboards and alerts.
var KnownMetrics = map[string]bool{
	// HTTP metrics.
	"eap_http_request_duration_seconds": true,
	"eap_http_requests_total":           true,

	// Health metrics.
	"eap_healthz_up": true,
	"eap_readyz_up":  true,

	// Evaluation metrics.
	"eap_evaluation_duration_seconds": true,
	"eap_rules_evaluated_total":       true,
	"eap_rule_firings_total":          true,
	"eap_suppressed_firings_total":    true,

	// Alert metrics.
	"eap_alerts_created_total": true,
	"eap_alerts_deduped_total": true,

	// Classifier metrics.
	"eap_classifier_calls_total":      true,
	"eap_classifier_failures_total":   true,
	"eap_classifier_cache_hits_total": true,

	// Health scoring metrics.
	"eap_health_computed_total": true,

	// Pattern state metrics.
	"eap_pattern_states_pruned_total": true,

	// Recording rules.
	"eap:http_requests:rate5m":       true,
	"eap:http_errors:rate5m":         true,
	"eap:rule_firings:rate5m":        true,
	"eap:classifier_failures:rate5m": true,
	"eap:alerts_created:rate5m":      true,

	// Standard Prometheus metrics referenced in dashboards.
	"up":                         true,
	"process_start_time_seconds": true,
}

// Config controls which artifacts the generator produces and where they go.
type Config struct {
	OutputDir        string
	DashboardEnabled bool
	RulesEnabled     bool
}

// DefaultConfig returns a Config that generates all artifacts into ../../deploy
// (relative to tools/dashgen/).
func DefaultConfig() Config {
	return Config{
		OutputDir:        "../../deploy",
		DashboardEnabled: true,
		RulesEnabled:     true,
	}
}

// Validate checks that the config is usable.
func (c Config) Validate() error {
	if c.OutputDir == "" {
		return errors.New("output directory must be set")
	}
	if !c.DashboardEnabled && !c.RulesEnabled {
		return errors.New("at least one of dashboard or rules must be enabled")
	}
	return nil
}
