package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetricsRegistered(t *testing.T) {
	t.Parallel()

	// Verify all metrics are non-nil (registered via promauto on package init).
	assert.NotNil(t, HTTPRequestDuration)
	assert.NotNil(t, HTTPRequestsTotal)
	assert.NotNil(t, HealthzUp)
	assert.NotNil(t, ReadyzUp)
	assert.NotNil(t, EvaluationDuration)
	assert.NotNil(t, RulesEvaluatedTotal)
	assert.NotNil(t, RuleFiringsTotal)
	assert.NotNil(t, SuppressedFiringsTotal)
	assert.NotNil(t, AlertsCreatedTotal)
	assert.NotNil(t, AlertsDedupedTotal)
	assert.NotNil(t, ClassifierCallsTotal)
	assert.NotNil(t, ClassifierFailuresTotal)
	assert.NotNil(t, ClassifierCacheHitsTotal)
	assert.NotNil(t, HealthComputedTotal)
	assert.NotNil(t, PatternStatesPrunedTotal)
}
