// Package health derives a traffic-light status for a pairing from its
// open alerts and recent report activity. Health is computed fresh on
// every read; only a manual override is ever stored.
package health

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/eapulse/eapulse/internal/metrics"
	"github.com/eapulse/eapulse/internal/store"
	"github.com/eapulse/eapulse/pkg/logger"
	domain "github.com/eapulse/eapulse/pkg/types"
)

const (
	staleReportBusinessDays = 2
	missedSyncWindowDays    = 7
	missedSyncThreshold     = 3
	workloadStreakLength    = 5
	noWinBusinessDays       = 10
	noWinThreshold          = 10
)

// Scorer computes pairing health on demand.
type Scorer struct {
	store store.Store
	log   *slog.Logger
	now   func() time.Time
}

// Option configures a Scorer.
type Option func(*Scorer)

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Scorer) { s.log = log }
}

// WithClock overrides the time source, used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *Scorer) { s.now = now }
}

// NewScorer creates a Scorer backed by the given store.
func NewScorer(st store.Store, opts ...Option) *Scorer {
	s := &Scorer{
		store: st,
		log:   logger.Nop(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ComputeHealth walks the status waterfall for a pairing. Branches are
// ordered by severity and the first match wins; there is no blending.
func (s *Scorer) ComputeHealth(
	ctx context.Context,
	pairingID string,
) (domain.HealthResult, error) {
	pairing, err := s.store.GetPairing(ctx, pairingID)
	if err != nil {
		return domain.HealthResult{}, fmt.Errorf("loading pairing %s: %w", pairingID, err)
	}

	now := s.now()

	if pairing.HealthOverride != nil {
		return s.result(*pairing.HealthOverride, "Manual override by operations team", true, now), nil
	}

	alerts, err := s.store.ListOpenAlertsByPairing(ctx, pairingID)
	if err != nil {
		return domain.HealthResult{}, fmt.Errorf("listing open alerts for %s: %w", pairingID, err)
	}

	var critical, high, medium int
	for _, a := range alerts {
		switch a.Severity {
		case domain.SeverityCritical:
			critical++
		case domain.SeverityHigh:
			high++
		case domain.SeverityMedium:
			medium++
		}
	}

	if critical > 0 {
		return s.result(domain.HealthRed,
			fmt.Sprintf("%d critical alert(s) active", critical), false, now), nil
	}

	latest, err := s.store.LatestReport(ctx, pairingID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return s.result(domain.HealthRed, "No reports submitted yet", false, now), nil
	case err != nil:
		return domain.HealthResult{}, fmt.Errorf("loading latest report for %s: %w", pairingID, err)
	}

	if businessDaysSince(time.Unix(latest.ReportDate, 0).UTC(), now) > staleReportBusinessDays {
		return s.result(domain.HealthRed, "No report in more than 2 business days", false, now), nil
	}

	if latest.WorkloadFeeling == domain.WorkloadOverwhelming {
		return s.result(domain.HealthRed, "Latest report shows overwhelming workload", false, now), nil
	}

	if high > 0 {
		return s.result(domain.HealthYellow,
			fmt.Sprintf("%d high-severity alert(s) active", high), false, now), nil
	}

	if medium >= 3 {
		return s.result(domain.HealthYellow,
			fmt.Sprintf("%d medium-severity alerts active", medium), false, now), nil
	}

	missedSyncs, err := s.countMissedSyncs(ctx, pairingID, now)
	if err != nil {
		return domain.HealthResult{}, err
	}
	if missedSyncs >= missedSyncThreshold {
		return s.result(domain.HealthYellow,
			fmt.Sprintf("%d reports in the last 7 days missed the daily sync", missedSyncs), false, now), nil
	}

	if streak, ok := s.workloadStreak(ctx, pairingID); ok {
		reason := fmt.Sprintf("Last 5 reports all show %s workload", strings.ToLower(string(streak)))
		return s.result(domain.HealthYellow, reason, false, now), nil
	}

	noWins, err := s.countEmptyWins(ctx, pairingID, now)
	if err != nil {
		return domain.HealthResult{}, err
	}
	if noWins >= noWinThreshold {
		return s.result(domain.HealthYellow,
			fmt.Sprintf("%d recent reports with no biggest win recorded", noWins), false, now), nil
	}

	return s.result(domain.HealthGreen, "All signals healthy", false, now), nil
}

func (s *Scorer) result(
	status domain.HealthStatus,
	reason string,
	isOverride bool,
	now time.Time,
) domain.HealthResult {
	metrics.HealthComputedTotal.WithLabelValues(string(status)).Inc()
	return domain.HealthResult{
		Status:       status,
		Reason:       reason,
		IsOverride:   isOverride,
		CalculatedAt: now,
	}
}

func (s *Scorer) countMissedSyncs(ctx context.Context, pairingID string, now time.Time) (int, error) {
	start := now.AddDate(0, 0, -missedSyncWindowDays).Unix()
	reports, err := s.store.ListReportsInWindow(ctx, pairingID, start, now.Unix())
	if err != nil {
		return 0, fmt.Errorf("listing reports for sync check: %w", err)
	}

	missed := 0
	for _, r := range reports {
		if !r.HadDailySync {
			missed++
		}
	}
	return missed, nil
}

// workloadStreak reports whether the last 5 reports are all HEAVY or all
// LIGHT. Sustained extremes in either direction are an unhealthy signal.
func (s *Scorer) workloadStreak(ctx context.Context, pairingID string) (domain.WorkloadFeeling, bool) {
	reports, err := s.store.ListReportsByPairing(ctx, pairingID, workloadStreakLength)
	if err != nil || len(reports) < workloadStreakLength {
		return "", false
	}

	first := reports[0].WorkloadFeeling
	if first != domain.WorkloadHeavy && first != domain.WorkloadLight {
		return "", false
	}
	for _, r := range reports[1:] {
		if r.WorkloadFeeling != first {
			return "", false
		}
	}
	return first, true
}

func (s *Scorer) countEmptyWins(ctx context.Context, pairingID string, now time.Time) (int, error) {
	start := businessDaysBack(now, noWinBusinessDays).Unix()
	reports, err := s.store.ListReportsInWindow(ctx, pairingID, start, now.Unix())
	if err != nil {
		return 0, fmt.Errorf("listing reports for win check: %w", err)
	}

	empty := 0
	for _, r := range reports {
		if strings.TrimSpace(r.BiggestWin) == "" {
			empty++
		}
	}
	return empty, nil
}

// businessDaysSince counts the weekdays strictly after from's calendar
// day, up to and including to's. Saturday and Sunday do not count.
func businessDaysSince(from, to time.Time) int {
	day := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	end := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)

	days := 0
	for day.Before(end) {
		day = day.AddDate(0, 0, 1)
		if wd := day.Weekday(); wd != time.Saturday && wd != time.Sunday {
			days++
		}
	}
	return days
}

// businessDaysBack walks backwards from t until n weekdays have passed.
func businessDaysBack(t time.Time, n int) time.Time {
	day := t
	for remaining := n; remaining > 0; {
		day = day.AddDate(0, 0, -1)
		if wd := day.Weekday(); wd != time.Saturday && wd != time.Sunday {
			remaining--
		}
	}
	return day
}
