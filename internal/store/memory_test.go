package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/eapulse/eapulse/pkg/types"
)

func TestMemoryStore_CreateAlert_RejectsSecondOpenAlert(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	ctx := context.Background()
	now := time.Now().Unix()

	first := &domain.Alert{
		PairingID:  "pair-1",
		RuleID:     "rule-1",
		Title:      "EA reported overwhelming workload",
		Severity:   domain.SeverityCritical,
		Status:     domain.AlertNew,
		DetectedAt: now,
	}
	require.NoError(t, s.CreateAlert(ctx, first))

	dup := &domain.Alert{
		PairingID:  "pair-1",
		RuleID:     "rule-1",
		Severity:   domain.SeverityCritical,
		Status:     domain.AlertNew,
		DetectedAt: now,
	}
	assert.ErrorIs(t, s.CreateAlert(ctx, dup), ErrConflict)

	// Other pairings and rules are unaffected.
	other := &domain.Alert{
		PairingID:  "pair-2",
		RuleID:     "rule-1",
		Status:     domain.AlertNew,
		DetectedAt: now,
	}
	assert.NoError(t, s.CreateAlert(ctx, other))

	// After resolution a fresh open alert is allowed again.
	_, err := s.UpdateAlertStatus(ctx, first.ID, domain.AlertResolved, "")
	require.NoError(t, err)
	assert.NoError(t, s.CreateAlert(ctx, dup))
}
