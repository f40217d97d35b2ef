package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/eapulse/eapulse/internal/metrics"
	"github.com/eapulse/eapulse/internal/store"
	domain "github.com/eapulse/eapulse/pkg/types"
)

// Scheduler runs the periodic pattern-state sweep.
type Scheduler struct {
	cron  *cron.Cron
	store store.Store
	log   *slog.Logger
	now   func() time.Time
}

// NewScheduler creates a Scheduler that prunes expired pattern states on
// the given cron spec (standard 5-field or "@every ..." syntax).
func NewScheduler(
	s store.Store,
	sweepSpec string,
	log *slog.Logger,
) (*Scheduler, error) {
	c := cron.New()

	sched := &Scheduler{
		cron:  c,
		store: s,
		log:   log,
		now:   time.Now,
	}

	if _, err := c.AddFunc(sweepSpec, sched.runSweep); err != nil {
		return nil, err
	}

	return sched, nil
}

// Start begins running scheduled tasks.
func (s *Scheduler) Start() {
	s.log.Info("scheduler started")
	s.cron.Start()
}

// Stop gracefully stops the scheduler, waiting for running jobs to finish.
func (s *Scheduler) Stop() context.Context {
	s.log.Info("scheduler stopping")
	return s.cron.Stop()
}

// Entries returns the registered cron entries for inspection.
func (s *Scheduler) Entries() []cron.Entry {
	return s.cron.Entries()
}

func (s *Scheduler) runSweep() {
	ctx := context.Background()
	if err := s.SweepExpired(ctx); err != nil {
		s.log.Error("pattern state sweep failed", "error", err)
	}
}

// SweepExpired deletes pattern states whose windows have fully aged out.
func (s *Scheduler) SweepExpired(ctx context.Context) error {
	cutoff := s.now().Unix() - int64(domain.DefaultPatternWindowDays)*secondsPerDay

	pruned, err := s.store.DeleteExpiredPatternState(ctx, cutoff)
	if err != nil {
		return err
	}

	if pruned > 0 {
		metrics.PatternStatesPrunedTotal.Add(float64(pruned))
		s.log.Info("pruned expired pattern states", "count", pruned)
	}
	return nil
}
