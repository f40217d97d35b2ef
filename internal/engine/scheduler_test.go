package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eapulse/eapulse/internal/store"
	"github.com/eapulse/eapulse/pkg/logger"
	domain "github.com/eapulse/eapulse/pkg/types"
)

func TestNewScheduler_RegistersSweep(t *testing.T) {
	t.Parallel()

	s := store.NewMemoryStore()
	sched, err := NewScheduler(s, "0 3 * * *", logger.Nop())
	require.NoError(t, err)
	assert.Len(t, sched.Entries(), 1)
}

func TestNewScheduler_BadSpec(t *testing.T) {
	t.Parallel()

	s := store.NewMemoryStore()
	_, err := NewScheduler(s, "not a cron spec", logger.Nop())
	assert.Error(t, err)
}

func TestScheduler_StartStop(t *testing.T) {
	t.Parallel()

	s := store.NewMemoryStore()
	sched, err := NewScheduler(s, "0 3 * * *", logger.Nop())
	require.NoError(t, err)

	sched.Start()
	ctx := sched.Stop()

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop in time")
	}
}

func TestScheduler_SweepExpiredPrunesStaleStates(t *testing.T) {
	t.Parallel()

	s := store.NewMemoryStore()
	ctx := context.Background()

	now := time.Date(2025, 6, 2, 3, 0, 0, 0, time.UTC)
	stale := now.AddDate(0, 0, -30).Unix()
	fresh := now.AddDate(0, 0, -2).Unix()

	require.NoError(t, s.UpsertPatternState(ctx, &domain.PatternState{
		PairingID:   "pair-1",
		RuleID:      "rule-1",
		Occurrences: 2,
		WindowStart: stale - domain.DefaultPatternWindowDays*secondsPerDay,
		WindowEnd:   stale,
		WindowDays:  domain.DefaultPatternWindowDays,
	}))
	require.NoError(t, s.UpsertPatternState(ctx, &domain.PatternState{
		PairingID:   "pair-2",
		RuleID:      "rule-1",
		Occurrences: 1,
		WindowStart: fresh - domain.DefaultPatternWindowDays*secondsPerDay,
		WindowEnd:   fresh,
		WindowDays:  domain.DefaultPatternWindowDays,
	}))

	sched, err := NewScheduler(s, "0 3 * * *", logger.Nop())
	require.NoError(t, err)
	sched.now = func() time.Time { return now }

	require.NoError(t, sched.SweepExpired(ctx))

	_, err = s.GetPatternState(ctx, "pair-1", "rule-1")
	assert.ErrorIs(t, err, store.ErrNotFound, "stale state pruned")

	kept, err := s.GetPatternState(ctx, "pair-2", "rule-1")
	require.NoError(t, err)
	assert.Equal(t, 1, kept.Occurrences)
}
