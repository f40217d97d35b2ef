package classify

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	domain "github.com/eapulse/eapulse/pkg/types"
)

// batchTmpl is the single batched analysis prompt covering every AI rule
// for one report. One call per report regardless of rule count.
const batchTmpl = `You are analyzing an executive assistant's daily report for potential churn-risk signals.

Report fields:
{{range .Fields}}- {{.Name}}: {{if .Value}}{{.Value}}{{else}}(empty){{end}}
{{end}}
Rules to evaluate:
{{range .Rules}}- ruleId {{.RuleID}} ({{.Name}}){{if .Patterns}}; watch for: {{.Patterns}}{{end}}
{{end}}
For each rule, decide whether the report text contains any of the signals it watches for.
Quote the report verbatim as evidence; do not paraphrase.

Respond ONLY with a JSON array containing exactly one object per rule:
[{"ruleId": "<rule id>", "detected": true|false, "confidence": 0.0-1.0, "evidence": ["exact quote"], "reasoning": "one sentence"}]`

// batchPromptData holds the template variables for the batched prompt.
type batchPromptData struct {
	Fields []domain.FieldValue
	Rules  []rulePromptData
}

type rulePromptData struct {
	RuleID   string
	Name     string
	Patterns string
}

var batchTemplate = template.Must(template.New("batch").Parse(batchTmpl))

// RenderBatchPrompt renders the batched analysis prompt for a report and
// the AI rules to evaluate against it.
func RenderBatchPrompt(report *domain.Report, rules []domain.Rule) (string, error) {
	data := batchPromptData{
		Fields: report.TextFields(),
		Rules:  make([]rulePromptData, 0, len(rules)),
	}

	for _, r := range rules {
		data.Rules = append(data.Rules, rulePromptData{
			RuleID:   r.ID,
			Name:     r.Name,
			Patterns: strings.Join(r.DetectionPatterns(), "; "),
		})
	}

	var buf bytes.Buffer
	if err := batchTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering batch prompt: %w", err)
	}

	return buf.String(), nil
}
