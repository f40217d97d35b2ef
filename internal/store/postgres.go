package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domain "github.com/eapulse/eapulse/pkg/types"
)

const defaultPoolSize = 10

// PostgresStore implements Store using pgxpool (connection-pooled PostgreSQL).
//
// TODO(test): PostgresStore methods require live Postgres, tested via integration tests.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore with connection pooling.
func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	cfg.MaxConns = defaultPoolSize

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Close gracefully shuts down the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Ping verifies the database connection is alive.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Migrate applies pending SQL schema migrations.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	return RunMigrations(ctx, s.pool)
}

// notFound maps pgx.ErrNoRows to the package sentinel.
func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// CreatePairing inserts a new EA-client pairing.
func (s *PostgresStore) CreatePairing(ctx context.Context, p *domain.Pairing) error {
	args := pgx.NamedArgs{
		"ea_name":         p.EAName,
		"client_name":     p.ClientName,
		"health_override": healthOverrideArg(p.HealthOverride),
	}

	return s.pool.QueryRow(ctx, queryCreatePairing, args).Scan(
		&p.ID, &p.CreatedAt, &p.UpdatedAt,
	)
}

// GetPairing retrieves a pairing by its ID.
func (s *PostgresStore) GetPairing(ctx context.Context, id string) (*domain.Pairing, error) {
	p := &domain.Pairing{}
	if err := scanPairing(s.pool.QueryRow(ctx, queryGetPairing, id), p); err != nil {
		return nil, notFound(err)
	}
	return p, nil
}

// ListPairings returns all pairings ordered by EA then client name.
func (s *PostgresStore) ListPairings(ctx context.Context) ([]domain.Pairing, error) {
	rows, err := s.pool.Query(ctx, queryListPairings)
	if err != nil {
		return nil, fmt.Errorf("querying pairings: %w", err)
	}
	defer rows.Close()

	var pairings []domain.Pairing
	for rows.Next() {
		var p domain.Pairing
		if err := scanPairing(rows, &p); err != nil {
			return nil, fmt.Errorf("scanning pairing: %w", err)
		}
		pairings = append(pairings, p)
	}

	return pairings, rows.Err()
}

// UpdatePairing updates the names of an existing pairing.
func (s *PostgresStore) UpdatePairing(ctx context.Context, p *domain.Pairing) error {
	args := pgx.NamedArgs{
		"id":          p.ID,
		"ea_name":     p.EAName,
		"client_name": p.ClientName,
	}

	if _, err := s.pool.Exec(ctx, queryUpdatePairing, args); err != nil {
		return fmt.Errorf("updating pairing: %w", err)
	}
	return nil
}

// DeletePairing removes a pairing and, via cascade, its dependent rows.
func (s *PostgresStore) DeletePairing(ctx context.Context, id string) error {
	if _, err := s.pool.Exec(ctx, queryDeletePairing, id); err != nil {
		return fmt.Errorf("deleting pairing: %w", err)
	}
	return nil
}

// SetHealthOverride sets or clears (nil) the manual health override.
func (s *PostgresStore) SetHealthOverride(
	ctx context.Context,
	id string,
	status *domain.HealthStatus,
) error {
	if _, err := s.pool.Exec(ctx, querySetHealthOverride, id, healthOverrideArg(status)); err != nil {
		return fmt.Errorf("setting health override: %w", err)
	}
	return nil
}

// CreateReport inserts a new daily report.
func (s *PostgresStore) CreateReport(ctx context.Context, r *domain.Report) error {
	args := pgx.NamedArgs{
		"pairing_id":          r.PairingID,
		"report_date":         r.ReportDate,
		"workload_feeling":    string(r.WorkloadFeeling),
		"work_type":           string(r.WorkType),
		"feeling_during_work": string(r.FeelingDuringWork),
		"had_daily_sync":      r.HadDailySync,
		"biggest_win":         r.BiggestWin,
		"what_completed":      r.WhatCompleted,
		"pending_tasks":       r.PendingTasks,
		"difficulties":        r.Difficulties,
		"support_needed":      r.SupportNeeded,
		"additional_notes":    r.AdditionalNotes,
	}

	return s.pool.QueryRow(ctx, queryCreateReport, args).Scan(&r.ID, &r.CreatedAt)
}

// GetReport retrieves a report by its ID.
func (s *PostgresStore) GetReport(ctx context.Context, id string) (*domain.Report, error) {
	r := &domain.Report{}
	if err := scanReport(s.pool.QueryRow(ctx, queryGetReport, id), r); err != nil {
		return nil, notFound(err)
	}
	return r, nil
}

// ListReportsByPairing returns a pairing's reports, newest first.
func (s *PostgresStore) ListReportsByPairing(
	ctx context.Context,
	pairingID string,
	limit int,
) ([]domain.Report, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	return s.queryReports(ctx, queryListReportsByPairing, pairingID, limit)
}

// ListReportsInWindow returns reports with report_date in [start, end], newest first.
func (s *PostgresStore) ListReportsInWindow(
	ctx context.Context,
	pairingID string,
	start, end int64,
) ([]domain.Report, error) {
	return s.queryReports(ctx, queryListReportsInWindow, pairingID, start, end)
}

// LatestReport returns the pairing's most recent report by report date.
func (s *PostgresStore) LatestReport(ctx context.Context, pairingID string) (*domain.Report, error) {
	r := &domain.Report{}
	if err := scanReport(s.pool.QueryRow(ctx, queryLatestReport, pairingID), r); err != nil {
		return nil, notFound(err)
	}
	return r, nil
}

// CreateRule inserts a new detection rule.
func (s *PostgresStore) CreateRule(ctx context.Context, r *domain.Rule) error {
	return s.pool.QueryRow(ctx, queryCreateRule, ruleArgs(r)).Scan(
		&r.ID, &r.CreatedAt, &r.UpdatedAt,
	)
}

// GetRule retrieves a rule by its ID.
func (s *PostgresStore) GetRule(ctx context.Context, id string) (*domain.Rule, error) {
	r := &domain.Rule{}
	if err := scanRule(s.pool.QueryRow(ctx, queryGetRule, id), r); err != nil {
		return nil, notFound(err)
	}
	return r, nil
}

// GetRuleByNumber retrieves a rule by its stable business number.
func (s *PostgresStore) GetRuleByNumber(ctx context.Context, ruleNumber int) (*domain.Rule, error) {
	r := &domain.Rule{}
	if err := scanRule(s.pool.QueryRow(ctx, queryGetRuleByNumber, ruleNumber), r); err != nil {
		return nil, notFound(err)
	}
	return r, nil
}

// ListRules returns all rules, optionally filtered to enabled only.
func (s *PostgresStore) ListRules(ctx context.Context, enabledOnly bool) ([]domain.Rule, error) {
	query := queryListRulesAll
	if enabledOnly {
		query = queryListRulesEnabled
	}

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying rules: %w", err)
	}
	defer rows.Close()

	var rules []domain.Rule
	for rows.Next() {
		var r domain.Rule
		if err := scanRule(rows, &r); err != nil {
			return nil, fmt.Errorf("scanning rule: %w", err)
		}
		rules = append(rules, r)
	}

	return rules, rows.Err()
}

// UpdateRule updates an existing rule.
func (s *PostgresStore) UpdateRule(ctx context.Context, r *domain.Rule) error {
	args := ruleArgs(r)
	args["id"] = r.ID

	if _, err := s.pool.Exec(ctx, queryUpdateRule, args); err != nil {
		return fmt.Errorf("updating rule: %w", err)
	}
	return nil
}

// SetRuleEnabled enables or disables a rule.
func (s *PostgresStore) SetRuleEnabled(ctx context.Context, id string, enabled bool) error {
	if _, err := s.pool.Exec(ctx, querySetRuleEnabled, id, enabled); err != nil {
		return fmt.Errorf("setting rule enabled: %w", err)
	}
	return nil
}

// DeleteRule removes a rule by its ID.
func (s *PostgresStore) DeleteRule(ctx context.Context, id string) error {
	if _, err := s.pool.Exec(ctx, queryDeleteRule, id); err != nil {
		return fmt.Errorf("deleting rule: %w", err)
	}
	return nil
}

// GetPatternState retrieves the rolling-window state for one (pairing, rule).
func (s *PostgresStore) GetPatternState(
	ctx context.Context,
	pairingID, ruleID string,
) (*domain.PatternState, error) {
	ps := &domain.PatternState{}
	err := s.pool.QueryRow(ctx, queryGetPatternState, pairingID, ruleID).Scan(
		&ps.ID, &ps.PairingID, &ps.RuleID, &ps.Occurrences,
		&ps.WindowStart, &ps.WindowEnd, &ps.WindowDays, &ps.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	return ps, nil
}

// UpsertPatternState inserts or replaces the state for (pairing, rule).
func (s *PostgresStore) UpsertPatternState(ctx context.Context, ps *domain.PatternState) error {
	args := pgx.NamedArgs{
		"pairing_id":   ps.PairingID,
		"rule_id":      ps.RuleID,
		"occurrences":  ps.Occurrences,
		"window_start": ps.WindowStart,
		"window_end":   ps.WindowEnd,
		"window_days":  ps.WindowDays,
	}

	return s.pool.QueryRow(ctx, queryUpsertPatternState, args).Scan(&ps.ID, &ps.UpdatedAt)
}

// DeletePatternState removes the state for one (pairing, rule).
func (s *PostgresStore) DeletePatternState(ctx context.Context, pairingID, ruleID string) error {
	if _, err := s.pool.Exec(ctx, queryDeletePatternState, pairingID, ruleID); err != nil {
		return fmt.Errorf("deleting pattern state: %w", err)
	}
	return nil
}

// DeleteExpiredPatternState removes states whose window ended before the
// cutoff and returns how many rows were pruned.
func (s *PostgresStore) DeleteExpiredPatternState(
	ctx context.Context,
	windowEndBefore int64,
) (int, error) {
	tag, err := s.pool.Exec(ctx, queryDeleteExpiredPatternState, windowEndBefore)
	if err != nil {
		return 0, fmt.Errorf("deleting expired pattern state: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// CreateAlert inserts a new alert.
func (s *PostgresStore) CreateAlert(ctx context.Context, a *domain.Alert) error {
	args := pgx.NamedArgs{
		"pairing_id":  a.PairingID,
		"rule_id":     a.RuleID,
		"title":       a.Title,
		"description": a.Description,
		"severity":    string(a.Severity),
		"status":      string(a.Status),
		"assigned_to": a.AssignedTo,
		"detected_at": a.DetectedAt,
		"evidence":    []byte(a.Evidence),
		"notes":       a.Notes,
	}

	err := s.pool.QueryRow(ctx, queryCreateAlert, args).Scan(&a.ID)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrConflict
	}
	return err
}

// GetAlert retrieves an alert by its ID.
func (s *PostgresStore) GetAlert(ctx context.Context, id string) (*domain.Alert, error) {
	a := &domain.Alert{}
	if err := scanAlert(s.pool.QueryRow(ctx, queryGetAlert, id), a); err != nil {
		return nil, notFound(err)
	}
	return a, nil
}

// FindOpenAlert returns the unresolved alert for (pairing, rule), or
// ErrNotFound when none exists.
func (s *PostgresStore) FindOpenAlert(
	ctx context.Context,
	pairingID, ruleID string,
) (*domain.Alert, error) {
	a := &domain.Alert{}
	if err := scanAlert(s.pool.QueryRow(ctx, queryFindOpenAlert, pairingID, ruleID), a); err != nil {
		return nil, notFound(err)
	}
	return a, nil
}

// ListAlerts queries alerts with optional filters, returning results and
// the total count matching the filters.
func (s *PostgresStore) ListAlerts(
	ctx context.Context,
	opts *AlertQuery,
) ([]domain.Alert, int, error) {
	dataSQL, countSQL, args := opts.ToSQL()

	var total int
	if err := s.pool.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting alerts: %w", err)
	}

	alerts, err := s.queryAlerts(ctx, dataSQL, args...)
	if err != nil {
		return nil, 0, err
	}

	return alerts, total, nil
}

// ListOpenAlertsByPairing returns all unresolved alerts for a pairing.
func (s *PostgresStore) ListOpenAlertsByPairing(
	ctx context.Context,
	pairingID string,
) ([]domain.Alert, error) {
	return s.queryAlerts(ctx, queryListOpenAlertsByPairing, pairingID)
}

// UpdateAlertStatus transitions an alert and returns the updated row.
// Moving to RESOLVED stamps resolved_at; any other status clears it.
// Non-empty notes replace the stored notes.
func (s *PostgresStore) UpdateAlertStatus(
	ctx context.Context,
	id string,
	status domain.AlertStatus,
	notes string,
) (*domain.Alert, error) {
	var resolvedAt any
	if status == domain.AlertResolved {
		resolvedAt = nowUnix()
	}

	a := &domain.Alert{}
	row := s.pool.QueryRow(ctx, queryUpdateAlertStatus, id, string(status), resolvedAt, notes)
	if err := scanAlert(row, a); err != nil {
		return nil, notFound(err)
	}
	return a, nil
}

// AssignAlert sets (or clears, when nil) the alert's assignee.
func (s *PostgresStore) AssignAlert(ctx context.Context, id string, assignee *string) error {
	tag, err := s.pool.Exec(ctx, queryAssignAlert, id, assignee)
	if err != nil {
		return fmt.Errorf("assigning alert: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CreatePTO inserts a scheduled absence.
func (s *PostgresStore) CreatePTO(ctx context.Context, rec *domain.PTORecord) error {
	args := pgx.NamedArgs{
		"pairing_id": rec.PairingID,
		"start_date": rec.StartDate,
		"end_date":   rec.EndDate,
		"reason":     string(rec.Reason),
	}

	return s.pool.QueryRow(ctx, queryCreatePTO, args).Scan(&rec.ID, &rec.CreatedAt)
}

// ListPTOByPairing returns a pairing's PTO records, newest first.
func (s *PostgresStore) ListPTOByPairing(
	ctx context.Context,
	pairingID string,
) ([]domain.PTORecord, error) {
	rows, err := s.pool.Query(ctx, queryListPTOByPairing, pairingID)
	if err != nil {
		return nil, fmt.Errorf("querying pto records: %w", err)
	}
	defer rows.Close()

	var records []domain.PTORecord
	for rows.Next() {
		var rec domain.PTORecord
		if err := rows.Scan(
			&rec.ID, &rec.PairingID, &rec.StartDate, &rec.EndDate, &rec.Reason, &rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning pto record: %w", err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// DeletePTO removes a PTO record by its ID.
func (s *PostgresStore) DeletePTO(ctx context.Context, id string) error {
	if _, err := s.pool.Exec(ctx, queryDeletePTO, id); err != nil {
		return fmt.Errorf("deleting pto record: %w", err)
	}
	return nil
}

// ActivePTO returns the PTO record covering the given date for the pairing,
// or ErrNotFound when none does.
func (s *PostgresStore) ActivePTO(
	ctx context.Context,
	pairingID string,
	date int64,
) (*domain.PTORecord, error) {
	rec := &domain.PTORecord{}
	err := s.pool.QueryRow(ctx, queryActivePTO, pairingID, date).Scan(
		&rec.ID, &rec.PairingID, &rec.StartDate, &rec.EndDate, &rec.Reason, &rec.CreatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	return rec, nil
}

// GetSystemState returns aggregate row counts in one round trip.
func (s *PostgresStore) GetSystemState(ctx context.Context) (*domain.SystemState, error) {
	st := &domain.SystemState{}
	err := s.pool.QueryRow(ctx, queryGetSystemState).Scan(
		&st.PairingsTotal, &st.ReportsTotal,
		&st.RulesTotal, &st.RulesEnabled,
		&st.AlertsOpen, &st.AlertsTotal,
		&st.PatternStates, &st.PTORecordsActive,
	)
	if err != nil {
		return nil, fmt.Errorf("querying system state: %w", err)
	}
	return st, nil
}

// queryReports is a helper for report queries.
func (s *PostgresStore) queryReports(
	ctx context.Context,
	query string,
	args ...any,
) ([]domain.Report, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying reports: %w", err)
	}
	defer rows.Close()

	var reports []domain.Report
	for rows.Next() {
		var r domain.Report
		if err := scanReport(rows, &r); err != nil {
			return nil, fmt.Errorf("scanning report: %w", err)
		}
		reports = append(reports, r)
	}

	return reports, rows.Err()
}

// queryAlerts is a helper for alert queries.
func (s *PostgresStore) queryAlerts(
	ctx context.Context,
	query string,
	args ...any,
) ([]domain.Alert, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying alerts: %w", err)
	}
	defer rows.Close()

	var alerts []domain.Alert
	for rows.Next() {
		var a domain.Alert
		if err := scanAlert(rows, &a); err != nil {
			return nil, fmt.Errorf("scanning alert: %w", err)
		}
		alerts = append(alerts, a)
	}

	return alerts, rows.Err()
}

// scannable abstracts pgx.Row and pgx.Rows for reuse.
type scannable interface {
	Scan(dest ...any) error
}

func scanPairing(row scannable, p *domain.Pairing) error {
	var override *string
	if err := row.Scan(
		&p.ID, &p.EAName, &p.ClientName, &override, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return err
	}
	if override != nil {
		hs := domain.HealthStatus(*override)
		p.HealthOverride = &hs
	}
	return nil
}

func scanReport(row scannable, r *domain.Report) error {
	return row.Scan(
		&r.ID, &r.PairingID, &r.ReportDate,
		&r.WorkloadFeeling, &r.WorkType, &r.FeelingDuringWork, &r.HadDailySync,
		&r.BiggestWin, &r.WhatCompleted, &r.PendingTasks,
		&r.Difficulties, &r.SupportNeeded, &r.AdditionalNotes,
		&r.CreatedAt,
	)
}

func scanRule(row scannable, r *domain.Rule) error {
	return row.Scan(
		&r.ID, &r.RuleNumber, &r.Name, &r.RuleType, &r.Severity, &r.Enabled,
		&r.TriggerCondition, &r.AdjustableThresholds, &r.DefaultThresholds,
		&r.AlertTitle, &r.AlertDescription, &r.SuggestedAction,
		&r.DataSource, &r.BusinessRationale,
		&r.CreatedAt, &r.UpdatedAt,
	)
}

func scanAlert(row scannable, a *domain.Alert) error {
	return row.Scan(
		&a.ID, &a.PairingID, &a.RuleID, &a.Title, &a.Description,
		&a.Severity, &a.Status, &a.AssignedTo,
		&a.DetectedAt, &a.ResolvedAt, &a.Evidence, &a.Notes,
	)
}

func ruleArgs(r *domain.Rule) pgx.NamedArgs {
	return pgx.NamedArgs{
		"rule_number":           r.RuleNumber,
		"name":                  r.Name,
		"rule_type":             string(r.RuleType),
		"severity":              string(r.Severity),
		"enabled":               r.Enabled,
		"trigger_condition":     rawJSONArg(r.TriggerCondition),
		"adjustable_thresholds": rawJSONArg(r.AdjustableThresholds),
		"default_thresholds":    rawJSONArg(r.DefaultThresholds),
		"alert_title":           r.AlertTitle,
		"alert_description":     r.AlertDescription,
		"suggested_action":      r.SuggestedAction,
		"data_source":           r.DataSource,
		"business_rationale":    r.BusinessRationale,
	}
}

func healthOverrideArg(status *domain.HealthStatus) *string {
	if status == nil {
		return nil
	}
	s := string(*status)
	return &s
}

// rawJSONArg passes NULL for empty JSON blobs instead of an invalid empty string.
func rawJSONArg(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return raw
}

func nowUnix() int64 {
	return time.Now().Unix()
}
