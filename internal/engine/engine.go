// Package engine evaluates alert rules against daily reports and turns
// firings into deduplicated alerts.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/eapulse/eapulse/internal/metrics"
	"github.com/eapulse/eapulse/internal/store"
	"github.com/eapulse/eapulse/pkg/classify"
	domain "github.com/eapulse/eapulse/pkg/types"
)

// Engine orchestrates rule evaluation for submitted reports.
type Engine struct {
	store      store.Store
	classifier classify.Classifier
	log        *slog.Logger
	now        func() time.Time
}

// NewEngine creates a new Engine with injected dependencies.
func NewEngine(
	s store.Store,
	c classify.Classifier,
	opts ...EngineOption,
) *Engine {
	eng := &Engine{
		store:      s,
		classifier: c,
		log:        slog.Default(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(eng)
	}
	return eng
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.log = l
	}
}

// WithClock overrides the time source, used in tests.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

// EvaluateReport runs every enabled rule against the report and records
// alerts for fired rules. LOGIC rules evaluate synchronously; AI_TEXT
// rules share one batched classifier call whose failure never blocks the
// logic results.
func (eng *Engine) EvaluateReport(
	ctx context.Context,
	reportID string,
) ([]domain.RuleEvaluation, error) {
	start := time.Now()
	defer func() {
		metrics.EvaluationDuration.Observe(time.Since(start).Seconds())
	}()

	report, err := eng.store.GetReport(ctx, reportID)
	if err != nil {
		return nil, fmt.Errorf("loading report %s: %w", reportID, err)
	}

	rules, err := eng.store.ListRules(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("listing rules: %w", err)
	}

	suppressAttendance := eng.onPTO(ctx, report)

	var aiRules []domain.Rule
	for _, r := range rules {
		if r.RuleType == domain.RuleAIText {
			aiRules = append(aiRules, r)
		}
	}

	detections := make(map[string]domain.AIDetection, len(aiRules))
	if len(aiRules) > 0 {
		metrics.ClassifierCallsTotal.Inc()
		for _, d := range eng.classifier.Classify(ctx, report, aiRules) {
			detections[d.RuleID] = d
		}
	}

	evals := make([]domain.RuleEvaluation, 0, len(rules))
	for i := range rules {
		rule := &rules[i]

		eval := domain.RuleEvaluation{
			RuleID:   rule.ID,
			RuleName: rule.Name,
			Severity: rule.Severity,
		}
		metrics.RulesEvaluatedTotal.Inc()

		// Attendance rules still evaluate during PTO so callers see what
		// would have fired; only the alert is withheld.
		eval.Suppressed = suppressAttendance && isAttendanceRule(rule)

		switch rule.RuleType {
		case domain.RuleLogic:
			eng.evaluateLogic(ctx, report, rule, &eval)
		case domain.RuleAIText:
			evaluateAI(rule, detections, &eval)
		default:
			eng.log.Warn("unknown rule type", "rule", rule.Name, "type", rule.RuleType)
		}

		if eval.Fired {
			if eval.Suppressed {
				metrics.SuppressedFiringsTotal.Inc()
			} else {
				metrics.RuleFiringsTotal.
					WithLabelValues(string(rule.RuleType), string(rule.Severity)).
					Inc()
				eng.recordAlert(ctx, report, rule, eval.Evidence)
			}
		}

		evals = append(evals, eval)
	}

	return evals, nil
}

// onPTO reports whether an active PTO record covers the report date.
// Lookup failures are treated as no PTO: a degraded PTO table should not
// silence attendance alerts.
func (eng *Engine) onPTO(ctx context.Context, report *domain.Report) bool {
	pto, err := eng.store.ActivePTO(ctx, report.PairingID, report.ReportDate)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			eng.log.Warn("PTO lookup failed", "pairing_id", report.PairingID, "error", err)
		}
		return false
	}
	return pto.Covers(report.ReportDate)
}

// isAttendanceRule identifies rules about report submission itself, the
// ones that should not fire while the EA is on approved leave.
func isAttendanceRule(r *domain.Rule) bool {
	if r.RuleNumber == 1 {
		return true
	}
	name := strings.ToLower(r.Name)
	return strings.Contains(name, "report") || strings.Contains(name, "late")
}

func (eng *Engine) evaluateLogic(
	ctx context.Context,
	report *domain.Report,
	rule *domain.Rule,
	eval *domain.RuleEvaluation,
) {
	cond, ok := rule.Condition()
	if !ok {
		eng.log.Warn("rule has no usable trigger condition", "rule", rule.Name)
		return
	}

	if cond.PatternType == domain.PatternOverTime {
		out, err := evaluatePattern(ctx, eng.store, report, rule, cond)
		if err != nil {
			eng.log.Error("pattern evaluation failed", "rule", rule.Name, "error", err)
			return
		}
		if out.fired {
			occ := out.occurrences
			eval.Fired = true
			eval.Evidence = &domain.Evidence{
				Reasoning:   patternReasoning(out, cond),
				Quotes:      out.quotes,
				Occurrences: &occ,
			}
		}
		return
	}

	if EvaluateCondition(report, cond) {
		eval.Fired = true
		ev := &domain.Evidence{}
		if q := report.Field(cond.Field); q != "" {
			ev.Quotes = []string{q}
		}
		eval.Evidence = ev
	}
}

func evaluateAI(
	rule *domain.Rule,
	detections map[string]domain.AIDetection,
	eval *domain.RuleEvaluation,
) {
	det, ok := detections[rule.ID]
	if !ok {
		return
	}

	if det.Detected && det.Confidence >= rule.ConfidenceThreshold() {
		conf := det.Confidence
		eval.Fired = true
		eval.Evidence = &domain.Evidence{
			Confidence: &conf,
			Reasoning:  det.Reasoning,
			Quotes:     det.Evidence,
		}
	}
}

func (eng *Engine) recordAlert(
	ctx context.Context,
	report *domain.Report,
	rule *domain.Rule,
	ev *domain.Evidence,
) {
	_, created, err := EnsureAlert(ctx, eng.store, report.PairingID, rule, ev, eng.now().Unix())
	if err != nil {
		eng.log.Error("recording alert failed",
			"pairing_id", report.PairingID, "rule", rule.Name, "error", err)
		return
	}
	if created {
		metrics.AlertsCreatedTotal.Inc()
	} else {
		metrics.AlertsDedupedTotal.Inc()
	}
}
