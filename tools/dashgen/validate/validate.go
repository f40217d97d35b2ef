// Package validate checks generated PromQL expressions against the set of
// metrics the application actually exports.
package validate

import (
	"fmt"
	"strings"

	"github.com/prometheus/prometheus/promql/parser"
)

// Result collects validation findings. Errors are parse failures;
// warnings are references to metrics the application does not export.
type Result struct {
	Errors   []string
	Warnings []string
}

// Ok reports whether validation found no errors.
func (r Result) Ok() bool {
	return len(r.Errors) == 0
}

// Exprs parses each PromQL expression and checks every referenced metric
// name against the known set. Histogram series are matched by their base
// name, so "foo_bucket" is accepted when "foo" is known.
func Exprs(exprs []string, known map[string]bool) Result {
	var result Result
	for _, expr := range exprs {
		node, err := parser.ParseExpr(expr)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", expr, err))
			continue
		}

		parser.Inspect(node, func(n parser.Node, _ []parser.Node) error {
			vs, ok := n.(*parser.VectorSelector)
			if !ok || vs.Name == "" {
				return nil
			}
			if !knownMetric(vs.Name, known) {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("unknown metric %q in %s", vs.Name, expr))
			}
			return nil
		})
	}
	return result
}

func knownMetric(name string, known map[string]bool) bool {
	if known[name] {
		return true
	}
	for _, suffix := range []string{"_bucket", "_sum", "_count"} {
		if base, ok := strings.CutSuffix(name, suffix); ok && known[base] {
			return true
		}
	}
	return false
}
