package classify

import (
	"encoding/json"
	"fmt"
	"strings"

	domain "github.com/eapulse/eapulse/pkg/types"
)

// rawDetection is the lenient wire shape of one rule result. Models wrap
// responses in code fences, return bare objects instead of arrays, and
// emit evidence as a string instead of a list; parsing tolerates all of it.
type rawDetection struct {
	RuleID     string       `json:"ruleId"`
	Detected   bool         `json:"detected"`
	Confidence float64      `json:"confidence"`
	Evidence   stringOrList `json:"evidence"`
	Reasoning  string       `json:"reasoning"`
}

// stringOrList accepts a JSON string, an array of strings, or null.
type stringOrList []string

// UnmarshalJSON implements the lenient decode.
func (s *stringOrList) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" || trimmed == "" {
		return nil
	}
	if trimmed[0] == '"' {
		var one string
		if err := json.Unmarshal(data, &one); err != nil {
			return err
		}
		*s = []string{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*s = many
	return nil
}

// stripCodeFences removes a surrounding markdown code fence, if present.
func stripCodeFences(content string) string {
	s := strings.TrimSpace(content)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	// Drop the opening fence line (which may carry a language tag).
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[idx+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func clampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

// ParseDetections decodes a model response into one detection per rule.
// Results for unknown rule ids are dropped; rules the model skipped get an
// all-false default. A bare object (no array) is accepted as a one-element
// response. Entries missing a ruleId are attributed to the rule at the same
// position in the prompt's rule list.
func ParseDetections(content string, rules []domain.Rule) ([]domain.AIDetection, error) {
	if len(rules) == 0 {
		return nil, nil
	}

	body := stripCodeFences(content)

	var raws []rawDetection
	if err := json.Unmarshal([]byte(body), &raws); err != nil {
		var one rawDetection
		if singleErr := json.Unmarshal([]byte(body), &one); singleErr != nil {
			return nil, fmt.Errorf("parsing detections: %w", err)
		}
		raws = []rawDetection{one}
	}

	known := make(map[string]int, len(rules))
	for i, r := range rules {
		known[r.ID] = i
	}

	byRule := make(map[string]domain.AIDetection, len(raws))
	for i, raw := range raws {
		id := raw.RuleID
		if id == "" && i < len(rules) {
			id = rules[i].ID
		}
		if _, ok := known[id]; !ok {
			continue
		}
		byRule[id] = domain.AIDetection{
			RuleID:     id,
			Detected:   raw.Detected,
			Confidence: clampConfidence(raw.Confidence),
			Evidence:   raw.Evidence,
			Reasoning:  raw.Reasoning,
		}
	}

	out := make([]domain.AIDetection, 0, len(rules))
	for _, r := range rules {
		if d, ok := byRule[r.ID]; ok {
			out = append(out, d)
			continue
		}
		out = append(out, domain.AIDetection{
			RuleID:    r.ID,
			Reasoning: "no result returned for rule",
		})
	}

	return out, nil
}
