package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eapulse/eapulse/internal/store"
	domain "github.com/eapulse/eapulse/pkg/types"
)

var day0 = time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC).Unix()

func patternCond() *domain.TriggerCondition {
	return &domain.TriggerCondition{
		Field:            "workloadFeeling",
		Operator:         domain.OpEquals,
		Value:            domain.ConditionValue{Str: "OVERWHELMING"},
		PatternType:      domain.PatternOverTime,
		PatternWindow:    domain.DefaultPatternWindowDays,
		PatternThreshold: domain.DefaultPatternThreshold,
	}
}

func seedReport(
	t *testing.T,
	s store.Store,
	pairingID string,
	date int64,
	feeling domain.WorkloadFeeling,
) *domain.Report {
	t.Helper()
	r := &domain.Report{
		PairingID:       pairingID,
		ReportDate:      date,
		WorkloadFeeling: feeling,
		WhatCompleted:   "daily work",
	}
	require.NoError(t, s.CreateReport(context.Background(), r))
	return r
}

func patternRule() *domain.Rule {
	return &domain.Rule{
		ID:         "rule-pattern",
		RuleNumber: 4,
		Name:       "Sustained overwhelming workload",
		RuleType:   domain.RuleLogic,
		Severity:   domain.SeverityHigh,
		Enabled:    true,
	}
}

func TestEvaluatePattern_BelowThresholdTracksWithoutFiring(t *testing.T) {
	t.Parallel()

	s := store.NewMemoryStore()
	ctx := context.Background()
	rule := patternRule()

	seedReport(t, s, "pair-1", day0-2*secondsPerDay, domain.WorkloadOverwhelming)
	current := seedReport(t, s, "pair-1", day0, domain.WorkloadOverwhelming)

	out, err := evaluatePattern(ctx, s, current, rule, patternCond())
	require.NoError(t, err)

	assert.False(t, out.fired)
	assert.Equal(t, 2, out.occurrences)

	state, err := s.GetPatternState(ctx, "pair-1", rule.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, state.Occurrences)
	assert.Equal(t, day0, state.WindowEnd)
	assert.Equal(t, day0-int64(domain.DefaultPatternWindowDays)*secondsPerDay, state.WindowStart)
}

func TestEvaluatePattern_FiresAtThreshold(t *testing.T) {
	t.Parallel()

	s := store.NewMemoryStore()
	ctx := context.Background()
	rule := patternRule()

	seedReport(t, s, "pair-1", day0-4*secondsPerDay, domain.WorkloadOverwhelming)
	seedReport(t, s, "pair-1", day0-3*secondsPerDay, domain.WorkloadModerate)
	seedReport(t, s, "pair-1", day0-2*secondsPerDay, domain.WorkloadOverwhelming)
	current := seedReport(t, s, "pair-1", day0, domain.WorkloadOverwhelming)

	cond := patternCond()
	out, err := evaluatePattern(ctx, s, current, rule, cond)
	require.NoError(t, err)

	assert.True(t, out.fired)
	assert.Equal(t, 3, out.occurrences)
	assert.Equal(
		t,
		"3 occurrences in 7-day window (threshold: 3)",
		patternReasoning(out, cond),
	)

	// Quotes come from matching reports, newest first, capped at 3.
	require.Len(t, out.quotes, 3)
	assert.Equal(t, "OVERWHELMING", out.quotes[0])
}

func TestEvaluatePattern_NonMatchLeavesStateAlone(t *testing.T) {
	t.Parallel()

	s := store.NewMemoryStore()
	ctx := context.Background()
	rule := patternRule()

	require.NoError(t, s.UpsertPatternState(ctx, &domain.PatternState{
		PairingID:   "pair-1",
		RuleID:      rule.ID,
		Occurrences: 2,
		WindowStart: day0 - 7*secondsPerDay,
		WindowEnd:   day0 - secondsPerDay,
		WindowDays:  domain.DefaultPatternWindowDays,
	}))

	current := seedReport(t, s, "pair-1", day0, domain.WorkloadLight)

	out, err := evaluatePattern(ctx, s, current, rule, patternCond())
	require.NoError(t, err)

	assert.False(t, out.fired)
	assert.Zero(t, out.occurrences)

	state, err := s.GetPatternState(ctx, "pair-1", rule.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, state.Occurrences)
}

func TestEvaluatePattern_StaleStateRestartsCount(t *testing.T) {
	t.Parallel()

	s := store.NewMemoryStore()
	ctx := context.Background()
	rule := patternRule()

	// State from a burst three weeks ago, fully outside the new window.
	require.NoError(t, s.UpsertPatternState(ctx, &domain.PatternState{
		PairingID:   "pair-1",
		RuleID:      rule.ID,
		Occurrences: 3,
		WindowStart: day0 - 28*secondsPerDay,
		WindowEnd:   day0 - 21*secondsPerDay,
		WindowDays:  domain.DefaultPatternWindowDays,
	}))
	seedReport(t, s, "pair-1", day0-21*secondsPerDay, domain.WorkloadOverwhelming)

	current := seedReport(t, s, "pair-1", day0, domain.WorkloadOverwhelming)

	out, err := evaluatePattern(ctx, s, current, rule, patternCond())
	require.NoError(t, err)

	assert.False(t, out.fired)
	assert.Equal(t, 1, out.occurrences)

	state, err := s.GetPatternState(ctx, "pair-1", rule.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, state.Occurrences)
	assert.Equal(t, day0, state.WindowEnd)
}

func TestEvaluatePattern_WindowBoundaryInclusive(t *testing.T) {
	t.Parallel()

	s := store.NewMemoryStore()
	ctx := context.Background()
	rule := patternRule()

	// Exactly windowDays old: still inside the window.
	seedReport(t, s, "pair-1",
		day0-int64(domain.DefaultPatternWindowDays)*secondsPerDay,
		domain.WorkloadOverwhelming)
	current := seedReport(t, s, "pair-1", day0, domain.WorkloadOverwhelming)

	out, err := evaluatePattern(ctx, s, current, rule, patternCond())
	require.NoError(t, err)
	assert.Equal(t, 2, out.occurrences)
}

func TestEvaluatePattern_OtherPairingReportsIgnored(t *testing.T) {
	t.Parallel()

	s := store.NewMemoryStore()
	ctx := context.Background()
	rule := patternRule()

	seedReport(t, s, "pair-2", day0-secondsPerDay, domain.WorkloadOverwhelming)
	current := seedReport(t, s, "pair-1", day0, domain.WorkloadOverwhelming)

	out, err := evaluatePattern(ctx, s, current, rule, patternCond())
	require.NoError(t, err)
	assert.Equal(t, 1, out.occurrences)
}
