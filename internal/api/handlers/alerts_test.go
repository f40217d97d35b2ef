package handlers_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eapulse/eapulse/internal/api/handlers"
	"github.com/eapulse/eapulse/internal/store"
	domain "github.com/eapulse/eapulse/pkg/types"
)

func seedAlert(
	t *testing.T,
	s *store.MemoryStore,
	pairingID, ruleID string,
	severity domain.Severity,
	status domain.AlertStatus,
) *domain.Alert {
	t.Helper()
	a := &domain.Alert{
		PairingID:  pairingID,
		RuleID:     ruleID,
		Title:      "workload alert",
		Severity:   severity,
		Status:     status,
		DetectedAt: 1748865600,
	}
	require.NoError(t, s.CreateAlert(context.Background(), a))
	return a
}

func TestListAlerts_Filters(t *testing.T) {
	t.Parallel()

	s := store.NewMemoryStore()
	seedAlert(t, s, "pair-1", "rule-1", domain.SeverityHigh, domain.AlertNew)
	seedAlert(t, s, "pair-1", "rule-2", domain.SeverityMedium, domain.AlertResolved)
	seedAlert(t, s, "pair-2", "rule-1", domain.SeverityCritical, domain.AlertNew)

	h := handlers.NewAlertHandler(s)
	_, api := humatest.New(t)
	handlers.RegisterAlertRoutes(api, h)

	resp := api.Get("/api/v1/alerts")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"total":3`)

	resp = api.Get("/api/v1/alerts?pairing_id=pair-1&open=true")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"total":1`)
	assert.Contains(t, resp.Body.String(), `"rule_id":"rule-1"`)

	resp = api.Get("/api/v1/alerts?severity=CRITICAL")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"total":1`)
	assert.Contains(t, resp.Body.String(), `"pairing_id":"pair-2"`)
}

func TestGetAlert(t *testing.T) {
	t.Parallel()

	s := store.NewMemoryStore()
	a := seedAlert(t, s, "pair-1", "rule-1", domain.SeverityHigh, domain.AlertNew)

	h := handlers.NewAlertHandler(s)
	_, api := humatest.New(t)
	handlers.RegisterAlertRoutes(api, h)

	resp := api.Get("/api/v1/alerts/" + a.ID)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "workload alert")

	resp = api.Get("/api/v1/alerts/missing")
	require.Equal(t, http.StatusNotFound, resp.Code)
}

func TestUpdateAlertStatus(t *testing.T) {
	t.Parallel()

	s := store.NewMemoryStore()
	a := seedAlert(t, s, "pair-1", "rule-1", domain.SeverityHigh, domain.AlertNew)

	h := handlers.NewAlertHandler(s)
	_, api := humatest.New(t)
	handlers.RegisterAlertRoutes(api, h)

	resp := api.Put("/api/v1/alerts/"+a.ID+"/status", map[string]any{
		"status": "RESOLVED",
		"notes":  "spoke with the EA, workload rebalanced",
	})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"status":"RESOLVED"`)
	assert.Contains(t, resp.Body.String(), `"resolved_at"`)

	got, err := s.GetAlert(context.Background(), a.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ResolvedAt)
	assert.Equal(t, "spoke with the EA, workload rebalanced", got.Notes)

	// Reopening clears resolved_at.
	resp = api.Put("/api/v1/alerts/"+a.ID+"/status", map[string]any{
		"status": "INVESTIGATING",
	})
	require.Equal(t, http.StatusOK, resp.Code)

	got, err = s.GetAlert(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ResolvedAt)
}

func TestUpdateAlertStatus_NotFound(t *testing.T) {
	t.Parallel()

	h := handlers.NewAlertHandler(store.NewMemoryStore())
	_, api := humatest.New(t)
	handlers.RegisterAlertRoutes(api, h)

	resp := api.Put("/api/v1/alerts/missing/status", map[string]any{"status": "RESOLVED"})
	require.Equal(t, http.StatusNotFound, resp.Code)
}

func TestAssignAlert(t *testing.T) {
	t.Parallel()

	s := store.NewMemoryStore()
	a := seedAlert(t, s, "pair-1", "rule-1", domain.SeverityHigh, domain.AlertNew)

	h := handlers.NewAlertHandler(s)
	_, api := humatest.New(t)
	handlers.RegisterAlertRoutes(api, h)

	resp := api.Put("/api/v1/alerts/"+a.ID+"/assign", map[string]any{"assigned_to": "sam"})
	require.Equal(t, http.StatusOK, resp.Code)

	got, err := s.GetAlert(context.Background(), a.ID)
	require.NoError(t, err)
	require.NotNil(t, got.AssignedTo)
	assert.Equal(t, "sam", *got.AssignedTo)

	// Null unassigns.
	resp = api.Put("/api/v1/alerts/"+a.ID+"/assign", map[string]any{"assigned_to": nil})
	require.Equal(t, http.StatusOK, resp.Code)

	got, err = s.GetAlert(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Nil(t, got.AssignedTo)
}
