package engine

import (
	"strings"

	domain "github.com/eapulse/eapulse/pkg/types"
)

// EvaluateCondition reports whether a report satisfies a single trigger
// condition. Unknown fields resolve to "" and unknown operators never
// match, so a misconfigured rule stays quiet instead of alerting.
func EvaluateCondition(report *domain.Report, cond *domain.TriggerCondition) bool {
	value := report.Field(cond.Field)

	switch cond.Operator {
	case domain.OpEquals:
		return value == cond.Value.Str
	case domain.OpNotEquals:
		return value != cond.Value.Str
	case domain.OpContains:
		if cond.Value.Str == "" {
			return false
		}
		return strings.Contains(strings.ToLower(value), strings.ToLower(cond.Value.Str))
	case domain.OpEmpty:
		return strings.TrimSpace(value) == ""
	case domain.OpWordCountLT:
		return wordCount(value) < cond.Value.Int()
	default:
		return false
	}
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}
