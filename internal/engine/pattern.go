package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/eapulse/eapulse/internal/store"
	domain "github.com/eapulse/eapulse/pkg/types"
)

const secondsPerDay = 86400

const maxEvidenceQuotes = 3

// patternOutcome is the result of one pattern_over_time evaluation.
type patternOutcome struct {
	fired       bool
	occurrences int
	quotes      []string
}

// evaluatePattern tracks rolling-window occurrences for one (pairing, rule).
// Occurrences are always recomputed by rescanning the window, so the stored
// state is a cache of the last evaluation rather than the source of truth.
func evaluatePattern(
	ctx context.Context,
	s store.Store,
	report *domain.Report,
	rule *domain.Rule,
	cond *domain.TriggerCondition,
) (patternOutcome, error) {
	windowStart := report.ReportDate - int64(cond.PatternWindow)*secondsPerDay
	windowEnd := report.ReportDate

	// A non-matching report neither fires nor resets accumulated state.
	if !EvaluateCondition(report, cond) {
		return patternOutcome{}, nil
	}

	state, err := s.GetPatternState(ctx, report.PairingID, rule.ID)
	switch {
	case err == nil:
		if state.WindowEnd < windowStart {
			// Everything the old state counted has aged out.
			if err := s.DeletePatternState(ctx, report.PairingID, rule.ID); err != nil {
				return patternOutcome{}, fmt.Errorf("deleting stale pattern state: %w", err)
			}
		}
	case errors.Is(err, store.ErrNotFound):
	default:
		return patternOutcome{}, fmt.Errorf("loading pattern state: %w", err)
	}

	reports, err := s.ListReportsInWindow(ctx, report.PairingID, windowStart, windowEnd)
	if err != nil {
		return patternOutcome{}, fmt.Errorf("scanning window reports: %w", err)
	}

	out := patternOutcome{}
	seen := false
	for i := range reports {
		r := &reports[i]
		if r.ID == report.ID {
			seen = true
		}
		if !EvaluateCondition(r, cond) {
			continue
		}
		out.occurrences++
		if len(out.quotes) < maxEvidenceQuotes {
			if q := r.Field(cond.Field); q != "" {
				out.quotes = append(out.quotes, q)
			}
		}
	}
	if !seen {
		// The triggering report itself counts even if the window query
		// missed it (not yet visible to the listing query).
		out.occurrences++
	}

	if err := s.UpsertPatternState(ctx, &domain.PatternState{
		PairingID:   report.PairingID,
		RuleID:      rule.ID,
		Occurrences: out.occurrences,
		WindowStart: windowStart,
		WindowEnd:   windowEnd,
		WindowDays:  cond.PatternWindow,
	}); err != nil {
		return patternOutcome{}, fmt.Errorf("upserting pattern state: %w", err)
	}

	out.fired = out.occurrences >= cond.PatternThreshold
	return out, nil
}

func patternReasoning(out patternOutcome, cond *domain.TriggerCondition) string {
	return fmt.Sprintf(
		"%d occurrences in %d-day window (threshold: %d)",
		out.occurrences, cond.PatternWindow, cond.PatternThreshold,
	)
}
