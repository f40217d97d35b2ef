// Package store defines the datastore abstraction for eapulse.
// All business logic depends on the Store interface, never on concrete
// implementations. The in-memory implementation backs unit tests; the
// PostgreSQL implementation backs production.
package store

import (
	"context"
	"errors"

	domain "github.com/eapulse/eapulse/pkg/types"
)

// ErrNotFound is returned when a requested row does not exist.
// PostgresStore maps pgx.ErrNoRows to it so callers never import pgx.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when an insert violates a uniqueness
// constraint, such as a second unresolved alert for the same
// (pairing, rule).
var ErrConflict = errors.New("conflict")

// AlertQuery defines optional filters for alert queries.
type AlertQuery struct {
	PairingID *string
	RuleID    *string
	Status    *string
	Severity  *string
	OpenOnly  bool
	Limit     int // default 50
	Offset    int
}

// Store defines all data access operations for eapulse.
type Store interface {
	// Pairings
	CreatePairing(ctx context.Context, p *domain.Pairing) error
	GetPairing(ctx context.Context, id string) (*domain.Pairing, error)
	ListPairings(ctx context.Context) ([]domain.Pairing, error)
	UpdatePairing(ctx context.Context, p *domain.Pairing) error
	DeletePairing(ctx context.Context, id string) error
	SetHealthOverride(ctx context.Context, id string, status *domain.HealthStatus) error

	// Reports
	CreateReport(ctx context.Context, r *domain.Report) error
	GetReport(ctx context.Context, id string) (*domain.Report, error)
	ListReportsByPairing(ctx context.Context, pairingID string, limit int) ([]domain.Report, error)
	ListReportsInWindow(ctx context.Context, pairingID string, start, end int64) ([]domain.Report, error)
	LatestReport(ctx context.Context, pairingID string) (*domain.Report, error)

	// Rules
	CreateRule(ctx context.Context, r *domain.Rule) error
	GetRule(ctx context.Context, id string) (*domain.Rule, error)
	GetRuleByNumber(ctx context.Context, ruleNumber int) (*domain.Rule, error)
	ListRules(ctx context.Context, enabledOnly bool) ([]domain.Rule, error)
	UpdateRule(ctx context.Context, r *domain.Rule) error
	SetRuleEnabled(ctx context.Context, id string, enabled bool) error
	DeleteRule(ctx context.Context, id string) error

	// Pattern state
	GetPatternState(ctx context.Context, pairingID, ruleID string) (*domain.PatternState, error)
	UpsertPatternState(ctx context.Context, ps *domain.PatternState) error
	DeletePatternState(ctx context.Context, pairingID, ruleID string) error
	DeleteExpiredPatternState(ctx context.Context, windowEndBefore int64) (int, error)

	// Alerts
	CreateAlert(ctx context.Context, a *domain.Alert) error
	GetAlert(ctx context.Context, id string) (*domain.Alert, error)
	FindOpenAlert(ctx context.Context, pairingID, ruleID string) (*domain.Alert, error)
	ListAlerts(ctx context.Context, opts *AlertQuery) ([]domain.Alert, int, error)
	ListOpenAlertsByPairing(ctx context.Context, pairingID string) ([]domain.Alert, error)
	UpdateAlertStatus(ctx context.Context, id string, status domain.AlertStatus, notes string) (*domain.Alert, error)
	AssignAlert(ctx context.Context, id string, assignee *string) error

	// PTO
	CreatePTO(ctx context.Context, rec *domain.PTORecord) error
	ListPTOByPairing(ctx context.Context, pairingID string) ([]domain.PTORecord, error)
	DeletePTO(ctx context.Context, id string) error
	ActivePTO(ctx context.Context, pairingID string, date int64) (*domain.PTORecord, error)

	// Aggregates
	GetSystemState(ctx context.Context) (*domain.SystemState, error)

	// Migrations
	Migrate(ctx context.Context) error

	// Health
	Ping(ctx context.Context) error
}
