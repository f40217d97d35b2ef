package classify_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eapulse/eapulse/pkg/classify"
	domain "github.com/eapulse/eapulse/pkg/types"
)

func TestRenderBatchPrompt(t *testing.T) {
	t.Parallel()

	report := &domain.Report{
		ID:              "rep-1",
		WorkloadFeeling: domain.WorkloadOverwhelming,
		Difficulties:    "client keeps changing scope mid-week",
		SupportNeeded:   "need help prioritizing",
	}
	rules := []domain.Rule{
		{
			ID:       "r1",
			Name:     "Burnout language",
			RuleType: domain.RuleAIText,
			DefaultThresholds: json.RawMessage(
				`{"confidenceThreshold": 0.7, "detectionPatterns": ["exhausted", "can't keep up"]}`,
			),
		},
		{
			ID:       "r2",
			Name:     "Client friction",
			RuleType: domain.RuleAIText,
		},
	}

	prompt, err := classify.RenderBatchPrompt(report, rules)
	require.NoError(t, err)

	assert.Contains(t, prompt, "difficulties: client keeps changing scope mid-week")
	assert.Contains(t, prompt, "supportNeeded: need help prioritizing")
	assert.Contains(t, prompt, "biggestWin: (empty)")
	assert.Contains(t, prompt, "ruleId r1 (Burnout language); watch for: exhausted; can't keep up")
	assert.Contains(t, prompt, "ruleId r2 (Client friction)")
	assert.Contains(t, prompt, "JSON array")
}

func TestRenderBatchPrompt_AllTextFieldsPresent(t *testing.T) {
	t.Parallel()

	prompt, err := classify.RenderBatchPrompt(&domain.Report{}, testRules("r1"))
	require.NoError(t, err)

	for _, field := range []string{
		"biggestWin", "whatCompleted", "pendingTasks",
		"difficulties", "supportNeeded", "additionalNotes",
	} {
		assert.Contains(t, prompt, field)
	}
}
