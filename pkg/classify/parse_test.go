package classify_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eapulse/eapulse/pkg/classify"
	domain "github.com/eapulse/eapulse/pkg/types"
)

func testRules(ids ...string) []domain.Rule {
	rules := make([]domain.Rule, 0, len(ids))
	for i, id := range ids {
		rules = append(rules, domain.Rule{
			ID:         id,
			RuleNumber: i + 1,
			Name:       "rule " + id,
			RuleType:   domain.RuleAIText,
			Severity:   domain.SeverityMedium,
			Enabled:    true,
		})
	}
	return rules
}

func TestParseDetections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		rules   []domain.Rule
		want    []domain.AIDetection
		wantErr bool
	}{
		{
			name: "plain array",
			content: `[
				{"ruleId": "r1", "detected": true, "confidence": 0.85, "evidence": ["I am drowning"], "reasoning": "overload language"},
				{"ruleId": "r2", "detected": false, "confidence": 0.1, "reasoning": "nothing found"}
			]`,
			rules: testRules("r1", "r2"),
			want: []domain.AIDetection{
				{RuleID: "r1", Detected: true, Confidence: 0.85, Evidence: []string{"I am drowning"}, Reasoning: "overload language"},
				{RuleID: "r2", Detected: false, Confidence: 0.1, Reasoning: "nothing found"},
			},
		},
		{
			name: "code fenced with language tag",
			content: "```json\n" +
				`[{"ruleId": "r1", "detected": true, "confidence": 0.9, "reasoning": "ok"}]` +
				"\n```",
			rules: testRules("r1"),
			want: []domain.AIDetection{
				{RuleID: "r1", Detected: true, Confidence: 0.9, Reasoning: "ok"},
			},
		},
		{
			name:    "bare object attributed to only rule",
			content: `{"detected": true, "confidence": 0.8, "reasoning": "single"}`,
			rules:   testRules("r1"),
			want: []domain.AIDetection{
				{RuleID: "r1", Detected: true, Confidence: 0.8, Reasoning: "single"},
			},
		},
		{
			name:    "bare object with explicit ruleId",
			content: `{"ruleId": "r2", "detected": true, "confidence": 0.75}`,
			rules:   testRules("r1", "r2"),
			want: []domain.AIDetection{
				{RuleID: "r1", Reasoning: "no result returned for rule"},
				{RuleID: "r2", Detected: true, Confidence: 0.75},
			},
		},
		{
			name: "missing ruleIds attributed by position",
			content: `[
				{"detected": true, "confidence": 0.9, "reasoning": "first"},
				{"detected": false, "confidence": 0.2, "reasoning": "second"}
			]`,
			rules: testRules("r1", "r2"),
			want: []domain.AIDetection{
				{RuleID: "r1", Detected: true, Confidence: 0.9, Reasoning: "first"},
				{RuleID: "r2", Detected: false, Confidence: 0.2, Reasoning: "second"},
			},
		},
		{
			name:    "unknown ruleId dropped",
			content: `[{"ruleId": "bogus", "detected": true, "confidence": 0.99}]`,
			rules:   testRules("r1"),
			want: []domain.AIDetection{
				{RuleID: "r1", Reasoning: "no result returned for rule"},
			},
		},
		{
			name: "confidence clamped to unit interval",
			content: `[
				{"ruleId": "r1", "detected": true, "confidence": 1.7},
				{"ruleId": "r2", "detected": false, "confidence": -0.4}
			]`,
			rules: testRules("r1", "r2"),
			want: []domain.AIDetection{
				{RuleID: "r1", Detected: true, Confidence: 1},
				{RuleID: "r2", Detected: false, Confidence: 0},
			},
		},
		{
			name:    "evidence as bare string",
			content: `[{"ruleId": "r1", "detected": true, "confidence": 0.8, "evidence": "quoted text"}]`,
			rules:   testRules("r1"),
			want: []domain.AIDetection{
				{RuleID: "r1", Detected: true, Confidence: 0.8, Evidence: []string{"quoted text"}},
			},
		},
		{
			name:    "missing rules filled with defaults",
			content: `[{"ruleId": "r2", "detected": true, "confidence": 0.9}]`,
			rules:   testRules("r1", "r2", "r3"),
			want: []domain.AIDetection{
				{RuleID: "r1", Reasoning: "no result returned for rule"},
				{RuleID: "r2", Detected: true, Confidence: 0.9},
				{RuleID: "r3", Reasoning: "no result returned for rule"},
			},
		},
		{
			name:    "not JSON at all",
			content: "I could not analyze this report.",
			rules:   testRules("r1"),
			wantErr: true,
		},
		{
			name:    "no rules",
			content: `[{"ruleId": "r1", "detected": true}]`,
			rules:   nil,
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := classify.ParseDetections(tt.content, tt.rules)
			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDetections_ResultOrderFollowsRules(t *testing.T) {
	t.Parallel()

	// The model may return results in any order; output follows rule order.
	content := `[
		{"ruleId": "r3", "detected": true, "confidence": 0.9},
		{"ruleId": "r1", "detected": false, "confidence": 0.2},
		{"ruleId": "r2", "detected": true, "confidence": 0.8}
	]`

	got, err := classify.ParseDetections(content, testRules("r1", "r2", "r3"))
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "r1", got[0].RuleID)
	assert.Equal(t, "r2", got[1].RuleID)
	assert.Equal(t, "r3", got[2].RuleID)
}

func TestParseDetections_RoundTripsThroughCacheEncoding(t *testing.T) {
	t.Parallel()

	content := `[{"ruleId": "r1", "detected": true, "confidence": 0.85, "evidence": ["exact quote"], "reasoning": "found it"}]`
	got, err := classify.ParseDetections(content, testRules("r1"))
	require.NoError(t, err)

	encoded, err := json.Marshal(got)
	require.NoError(t, err)

	var decoded []domain.AIDetection
	require.NoError(t, json.Unmarshal(encoded, &decoded))
	assert.Equal(t, got, decoded)
}
