package engine

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eapulse/eapulse/internal/store"
	domain "github.com/eapulse/eapulse/pkg/types"
)

func TestEnsureAlert_CreatesNew(t *testing.T) {
	t.Parallel()

	s := store.NewMemoryStore()
	ctx := context.Background()
	rule := mustCreateRule(t, s, immediateRule(4, "Overwhelming workload", domain.SeverityHigh))

	conf := 0.9
	ev := &domain.Evidence{Confidence: &conf, Reasoning: "sustained overload"}
	detectedAt := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC).Unix()

	alert, created, err := EnsureAlert(ctx, s, "pair-1", rule, ev, detectedAt)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, domain.AlertNew, alert.Status)
	assert.Equal(t, detectedAt, alert.DetectedAt)
	assert.Equal(t, "Overwhelming workload alert", alert.Title)

	var got domain.Evidence
	require.NoError(t, json.Unmarshal(alert.Evidence, &got))
	assert.Equal(t, "sustained overload", got.Reasoning)
}

func TestEnsureAlert_DedupesOpenAlert(t *testing.T) {
	t.Parallel()

	s := store.NewMemoryStore()
	ctx := context.Background()
	rule := mustCreateRule(t, s, immediateRule(4, "Overwhelming workload", domain.SeverityHigh))

	first, created, err := EnsureAlert(ctx, s, "pair-1", rule, nil, day0)
	require.NoError(t, err)
	require.True(t, created)

	second, created, err := EnsureAlert(ctx, s, "pair-1", rule, nil, day0+secondsPerDay)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.DetectedAt, second.DetectedAt, "original detection time kept")
}

func TestEnsureAlert_InvestigatingStillDedupes(t *testing.T) {
	t.Parallel()

	s := store.NewMemoryStore()
	ctx := context.Background()
	rule := mustCreateRule(t, s, immediateRule(4, "Overwhelming workload", domain.SeverityHigh))

	first, _, err := EnsureAlert(ctx, s, "pair-1", rule, nil, day0)
	require.NoError(t, err)
	_, err = s.UpdateAlertStatus(ctx, first.ID, domain.AlertInvestigating, "")
	require.NoError(t, err)

	_, created, err := EnsureAlert(ctx, s, "pair-1", rule, nil, day0+secondsPerDay)
	require.NoError(t, err)
	assert.False(t, created, "any non-resolved status blocks a new alert")
}

func TestEnsureAlert_NewAlertAfterResolution(t *testing.T) {
	t.Parallel()

	s := store.NewMemoryStore()
	ctx := context.Background()
	rule := mustCreateRule(t, s, immediateRule(4, "Overwhelming workload", domain.SeverityHigh))

	first, _, err := EnsureAlert(ctx, s, "pair-1", rule, nil, day0)
	require.NoError(t, err)
	_, err = s.UpdateAlertStatus(ctx, first.ID, domain.AlertResolved, "handled")
	require.NoError(t, err)

	second, created, err := EnsureAlert(ctx, s, "pair-1", rule, nil, day0+secondsPerDay)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestEnsureAlert_DistinctPairingsIndependent(t *testing.T) {
	t.Parallel()

	s := store.NewMemoryStore()
	ctx := context.Background()
	rule := mustCreateRule(t, s, immediateRule(4, "Overwhelming workload", domain.SeverityHigh))

	_, created, err := EnsureAlert(ctx, s, "pair-1", rule, nil, day0)
	require.NoError(t, err)
	require.True(t, created)

	_, created, err = EnsureAlert(ctx, s, "pair-2", rule, nil, day0)
	require.NoError(t, err)
	assert.True(t, created)
}

func TestAlertTitle_FallsBackToRuleName(t *testing.T) {
	t.Parallel()

	rule := &domain.Rule{Name: "Overwhelming workload"}
	assert.Equal(t, "Overwhelming workload", alertTitle(rule))

	rule.AlertTitle = "EA workload critical"
	assert.Equal(t, "EA workload critical", alertTitle(rule))
}
