package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	domain "github.com/eapulse/eapulse/pkg/types"
)

// MemoryStore is an in-memory Store used by unit tests and local
// development without Postgres. It mirrors the PostgresStore semantics,
// including the one-open-alert-per-(pairing, rule) constraint.
type MemoryStore struct {
	mu sync.RWMutex

	pairings map[string]domain.Pairing
	reports  map[string]domain.Report
	rules    map[string]domain.Rule
	patterns map[string]domain.PatternState // keyed pairingID+"/"+ruleID
	alerts   map[string]domain.Alert
	pto      map[string]domain.PTORecord
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		pairings: make(map[string]domain.Pairing),
		reports:  make(map[string]domain.Report),
		rules:    make(map[string]domain.Rule),
		patterns: make(map[string]domain.PatternState),
		alerts:   make(map[string]domain.Alert),
		pto:      make(map[string]domain.PTORecord),
	}
}

func patternKey(pairingID, ruleID string) string {
	return pairingID + "/" + ruleID
}

// CreatePairing inserts a pairing, assigning an ID when absent.
func (s *MemoryStore) CreatePairing(_ context.Context, p *domain.Pairing) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now()
	p.CreatedAt, p.UpdatedAt = now, now
	s.pairings[p.ID] = *p
	return nil
}

// GetPairing retrieves a pairing by ID.
func (s *MemoryStore) GetPairing(_ context.Context, id string) (*domain.Pairing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.pairings[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

// ListPairings returns all pairings ordered by EA then client name.
func (s *MemoryStore) ListPairings(_ context.Context) ([]domain.Pairing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Pairing, 0, len(s.pairings))
	for _, p := range s.pairings {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].EAName != out[j].EAName {
			return out[i].EAName < out[j].EAName
		}
		return out[i].ClientName < out[j].ClientName
	})
	return out, nil
}

// UpdatePairing updates the names of an existing pairing.
func (s *MemoryStore) UpdatePairing(_ context.Context, p *domain.Pairing) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.pairings[p.ID]
	if !ok {
		return ErrNotFound
	}
	cur.EAName = p.EAName
	cur.ClientName = p.ClientName
	cur.UpdatedAt = time.Now()
	s.pairings[p.ID] = cur
	return nil
}

// DeletePairing removes a pairing and its dependent rows.
func (s *MemoryStore) DeletePairing(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.pairings, id)
	for rid, r := range s.reports {
		if r.PairingID == id {
			delete(s.reports, rid)
		}
	}
	for k, ps := range s.patterns {
		if ps.PairingID == id {
			delete(s.patterns, k)
		}
	}
	for aid, a := range s.alerts {
		if a.PairingID == id {
			delete(s.alerts, aid)
		}
	}
	for pid, rec := range s.pto {
		if rec.PairingID == id {
			delete(s.pto, pid)
		}
	}
	return nil
}

// SetHealthOverride sets or clears the manual health override.
func (s *MemoryStore) SetHealthOverride(
	_ context.Context,
	id string,
	status *domain.HealthStatus,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pairings[id]
	if !ok {
		return ErrNotFound
	}
	p.HealthOverride = status
	p.UpdatedAt = time.Now()
	s.pairings[id] = p
	return nil
}

// CreateReport inserts a report, assigning an ID when absent.
func (s *MemoryStore) CreateReport(_ context.Context, r *domain.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	r.CreatedAt = time.Now()
	s.reports[r.ID] = *r
	return nil
}

// GetReport retrieves a report by ID.
func (s *MemoryStore) GetReport(_ context.Context, id string) (*domain.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.reports[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &r, nil
}

func (s *MemoryStore) reportsForPairing(pairingID string) []domain.Report {
	var out []domain.Report
	for _, r := range s.reports {
		if r.PairingID == pairingID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ReportDate > out[j].ReportDate
	})
	return out
}

// ListReportsByPairing returns a pairing's reports, newest first.
func (s *MemoryStore) ListReportsByPairing(
	_ context.Context,
	pairingID string,
	limit int,
) ([]domain.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := s.reportsForPairing(pairingID)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ListReportsInWindow returns reports with report_date in [start, end], newest first.
func (s *MemoryStore) ListReportsInWindow(
	_ context.Context,
	pairingID string,
	start, end int64,
) ([]domain.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Report
	for _, r := range s.reportsForPairing(pairingID) {
		if r.ReportDate >= start && r.ReportDate <= end {
			out = append(out, r)
		}
	}
	return out, nil
}

// LatestReport returns the pairing's most recent report by report date.
func (s *MemoryStore) LatestReport(_ context.Context, pairingID string) (*domain.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reports := s.reportsForPairing(pairingID)
	if len(reports) == 0 {
		return nil, ErrNotFound
	}
	return &reports[0], nil
}

// CreateRule inserts a rule, assigning an ID when absent.
func (s *MemoryStore) CreateRule(_ context.Context, r *domain.Rule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	now := time.Now()
	r.CreatedAt, r.UpdatedAt = now, now
	s.rules[r.ID] = *r
	return nil
}

// GetRule retrieves a rule by ID.
func (s *MemoryStore) GetRule(_ context.Context, id string) (*domain.Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.rules[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &r, nil
}

// GetRuleByNumber retrieves a rule by its business number.
func (s *MemoryStore) GetRuleByNumber(_ context.Context, ruleNumber int) (*domain.Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.rules {
		if r.RuleNumber == ruleNumber {
			return &r, nil
		}
	}
	return nil, ErrNotFound
}

// ListRules returns all rules ordered by rule number.
func (s *MemoryStore) ListRules(_ context.Context, enabledOnly bool) ([]domain.Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Rule
	for _, r := range s.rules {
		if enabledOnly && !r.Enabled {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].RuleNumber < out[j].RuleNumber
	})
	return out, nil
}

// UpdateRule replaces an existing rule's mutable fields.
func (s *MemoryStore) UpdateRule(_ context.Context, r *domain.Rule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.rules[r.ID]
	if !ok {
		return ErrNotFound
	}
	r.RuleNumber = cur.RuleNumber
	r.CreatedAt = cur.CreatedAt
	r.UpdatedAt = time.Now()
	s.rules[r.ID] = *r
	return nil
}

// SetRuleEnabled enables or disables a rule.
func (s *MemoryStore) SetRuleEnabled(_ context.Context, id string, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rules[id]
	if !ok {
		return ErrNotFound
	}
	r.Enabled = enabled
	r.UpdatedAt = time.Now()
	s.rules[id] = r
	return nil
}

// DeleteRule removes a rule by ID.
func (s *MemoryStore) DeleteRule(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.rules, id)
	return nil
}

// GetPatternState retrieves the state for one (pairing, rule).
func (s *MemoryStore) GetPatternState(
	_ context.Context,
	pairingID, ruleID string,
) (*domain.PatternState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ps, ok := s.patterns[patternKey(pairingID, ruleID)]
	if !ok {
		return nil, ErrNotFound
	}
	return &ps, nil
}

// UpsertPatternState inserts or replaces the state for (pairing, rule).
func (s *MemoryStore) UpsertPatternState(_ context.Context, ps *domain.PatternState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := patternKey(ps.PairingID, ps.RuleID)
	if cur, ok := s.patterns[key]; ok {
		ps.ID = cur.ID
	} else if ps.ID == "" {
		ps.ID = uuid.NewString()
	}
	ps.UpdatedAt = time.Now()
	s.patterns[key] = *ps
	return nil
}

// DeletePatternState removes the state for one (pairing, rule).
func (s *MemoryStore) DeletePatternState(_ context.Context, pairingID, ruleID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.patterns, patternKey(pairingID, ruleID))
	return nil
}

// DeleteExpiredPatternState removes states whose window ended before the cutoff.
func (s *MemoryStore) DeleteExpiredPatternState(
	_ context.Context,
	windowEndBefore int64,
) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pruned := 0
	for k, ps := range s.patterns {
		if ps.WindowEnd < windowEndBefore {
			delete(s.patterns, k)
			pruned++
		}
	}
	return pruned, nil
}

// CreateAlert inserts an alert, assigning an ID when absent. A second
// unresolved alert for the same (pairing, rule) is rejected, matching
// the partial unique index in Postgres.
func (s *MemoryStore) CreateAlert(_ context.Context, a *domain.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.Status != domain.AlertResolved {
		for _, existing := range s.alerts {
			if existing.PairingID == a.PairingID &&
				existing.RuleID == a.RuleID &&
				existing.Status != domain.AlertResolved {
				return ErrConflict
			}
		}
	}

	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	s.alerts[a.ID] = *a
	return nil
}

// GetAlert retrieves an alert by ID.
func (s *MemoryStore) GetAlert(_ context.Context, id string) (*domain.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.alerts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

// FindOpenAlert returns the unresolved alert for (pairing, rule), if any.
func (s *MemoryStore) FindOpenAlert(
	_ context.Context,
	pairingID, ruleID string,
) (*domain.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.alerts {
		if a.PairingID == pairingID && a.RuleID == ruleID && a.Open() {
			return &a, nil
		}
	}
	return nil, ErrNotFound
}

func alertMatches(a *domain.Alert, q *AlertQuery) bool {
	if q.PairingID != nil && a.PairingID != *q.PairingID {
		return false
	}
	if q.RuleID != nil && a.RuleID != *q.RuleID {
		return false
	}
	if q.Status != nil && !strings.EqualFold(string(a.Status), *q.Status) {
		return false
	}
	if q.Severity != nil && !strings.EqualFold(string(a.Severity), *q.Severity) {
		return false
	}
	if q.OpenOnly && !a.Open() {
		return false
	}
	return true
}

// ListAlerts queries alerts with optional filters.
func (s *MemoryStore) ListAlerts(
	_ context.Context,
	opts *AlertQuery,
) ([]domain.Alert, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Alert
	for _, a := range s.alerts {
		if alertMatches(&a, opts) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].DetectedAt > out[j].DetectedAt
	})

	total := len(out)

	offset := max(opts.Offset, 0)
	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]

	limit := opts.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if len(out) > limit {
		out = out[:limit]
	}

	return out, total, nil
}

// ListOpenAlertsByPairing returns all unresolved alerts for a pairing.
func (s *MemoryStore) ListOpenAlertsByPairing(
	_ context.Context,
	pairingID string,
) ([]domain.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Alert
	for _, a := range s.alerts {
		if a.PairingID == pairingID && a.Open() {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].DetectedAt > out[j].DetectedAt
	})
	return out, nil
}

// UpdateAlertStatus transitions an alert and returns the updated row.
func (s *MemoryStore) UpdateAlertStatus(
	_ context.Context,
	id string,
	status domain.AlertStatus,
	notes string,
) (*domain.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.alerts[id]
	if !ok {
		return nil, ErrNotFound
	}
	a.Status = status
	if status == domain.AlertResolved {
		now := nowUnix()
		a.ResolvedAt = &now
	} else {
		a.ResolvedAt = nil
	}
	if notes != "" {
		a.Notes = notes
	}
	s.alerts[id] = a
	return &a, nil
}

// AssignAlert sets (or clears, when nil) the alert's assignee.
func (s *MemoryStore) AssignAlert(_ context.Context, id string, assignee *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.alerts[id]
	if !ok {
		return ErrNotFound
	}
	a.AssignedTo = assignee
	s.alerts[id] = a
	return nil
}

// CreatePTO inserts a PTO record, assigning an ID when absent.
func (s *MemoryStore) CreatePTO(_ context.Context, rec *domain.PTORecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	rec.CreatedAt = time.Now()
	s.pto[rec.ID] = *rec
	return nil
}

// ListPTOByPairing returns a pairing's PTO records, newest first.
func (s *MemoryStore) ListPTOByPairing(
	_ context.Context,
	pairingID string,
) ([]domain.PTORecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.PTORecord
	for _, rec := range s.pto {
		if rec.PairingID == pairingID {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartDate > out[j].StartDate
	})
	return out, nil
}

// DeletePTO removes a PTO record by ID.
func (s *MemoryStore) DeletePTO(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.pto, id)
	return nil
}

// ActivePTO returns the PTO record covering the given date for the pairing.
func (s *MemoryStore) ActivePTO(
	_ context.Context,
	pairingID string,
	date int64,
) (*domain.PTORecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var best *domain.PTORecord
	for _, rec := range s.pto {
		if rec.PairingID != pairingID || !rec.Covers(date) {
			continue
		}
		if best == nil || rec.StartDate > best.StartDate {
			r := rec
			best = &r
		}
	}
	if best == nil {
		return nil, ErrNotFound
	}
	return best, nil
}

// GetSystemState returns aggregate counts.
func (s *MemoryStore) GetSystemState(_ context.Context) (*domain.SystemState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := &domain.SystemState{
		PairingsTotal: len(s.pairings),
		ReportsTotal:  len(s.reports),
		RulesTotal:    len(s.rules),
		AlertsTotal:   len(s.alerts),
		PatternStates: len(s.patterns),
	}
	for _, r := range s.rules {
		if r.Enabled {
			st.RulesEnabled++
		}
	}
	for _, a := range s.alerts {
		if a.Open() {
			st.AlertsOpen++
		}
	}
	now := nowUnix()
	for _, rec := range s.pto {
		if rec.Covers(now) {
			st.PTORecordsActive++
		}
	}
	return st, nil
}

// Migrate is a no-op for the in-memory store.
func (s *MemoryStore) Migrate(_ context.Context) error {
	return nil
}

// Ping always succeeds.
func (s *MemoryStore) Ping(_ context.Context) error {
	return nil
}
