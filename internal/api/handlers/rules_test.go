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

func seedRule(t *testing.T, s *store.MemoryStore, num int, name string, enabled bool) *domain.Rule {
	t.Helper()
	r := &domain.Rule{
		RuleNumber: num,
		Name:       name,
		RuleType:   domain.RuleLogic,
		Severity:   domain.SeverityMedium,
		Enabled:    enabled,
	}
	require.NoError(t, s.CreateRule(context.Background(), r))
	return r
}

func TestListRules(t *testing.T) {
	t.Parallel()

	s := store.NewMemoryStore()
	seedRule(t, s, 1, "Missing daily check-in", true)
	seedRule(t, s, 2, "Late report submission", false)

	h := handlers.NewRuleHandler(s)
	_, api := humatest.New(t)
	handlers.RegisterRuleRoutes(api, h)

	resp := api.Get("/api/v1/rules")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "Missing daily check-in")
	assert.Contains(t, resp.Body.String(), "Late report submission")

	resp = api.Get("/api/v1/rules?enabled=true")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "Missing daily check-in")
	assert.NotContains(t, resp.Body.String(), "Late report submission")
}

func TestGetRule(t *testing.T) {
	t.Parallel()

	s := store.NewMemoryStore()
	r := seedRule(t, s, 4, "Overwhelming workload", true)

	h := handlers.NewRuleHandler(s)
	_, api := humatest.New(t)
	handlers.RegisterRuleRoutes(api, h)

	resp := api.Get("/api/v1/rules/" + r.ID)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "Overwhelming workload")

	resp = api.Get("/api/v1/rules/missing")
	require.Equal(t, http.StatusNotFound, resp.Code)
}

func TestCreateRule(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		body       map[string]any
		wantStatus int
		wantBody   string
	}{
		{
			name: "valid logic rule",
			body: map[string]any{
				"rule_number": 4,
				"name":        "Overwhelming workload",
				"rule_type":   "LOGIC",
				"severity":    "HIGH",
				"enabled":     true,
				"trigger_condition": map[string]any{
					"field":    "workloadFeeling",
					"operator": "equals",
					"value":    "OVERWHELMING",
				},
			},
			wantStatus: http.StatusCreated,
			wantBody:   "Overwhelming workload",
		},
		{
			name: "missing name",
			body: map[string]any{
				"rule_number": 4,
				"rule_type":   "LOGIC",
			},
			wantStatus: http.StatusBadRequest,
			wantBody:   "name is required",
		},
		{
			name: "bad rule type",
			body: map[string]any{
				"rule_number": 4,
				"name":        "Something",
				"rule_type":   "FANCY",
			},
			wantStatus: http.StatusBadRequest,
			wantBody:   "rule_type must be LOGIC or AI_TEXT",
		},
		{
			name: "missing rule number",
			body: map[string]any{
				"name":      "Something",
				"rule_type": "AI_TEXT",
			},
			wantStatus: http.StatusBadRequest,
			wantBody:   "rule_number must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := handlers.NewRuleHandler(store.NewMemoryStore())
			_, api := humatest.New(t)
			handlers.RegisterRuleRoutes(api, h)

			resp := api.Post("/api/v1/rules", tt.body)
			require.Equal(t, tt.wantStatus, resp.Code)
			assert.Contains(t, resp.Body.String(), tt.wantBody)
		})
	}
}

func TestSetRuleEnabled(t *testing.T) {
	t.Parallel()

	s := store.NewMemoryStore()
	r := seedRule(t, s, 4, "Overwhelming workload", true)

	h := handlers.NewRuleHandler(s)
	_, api := humatest.New(t)
	handlers.RegisterRuleRoutes(api, h)

	resp := api.Put("/api/v1/rules/"+r.ID+"/enabled", map[string]any{"enabled": false})
	require.Equal(t, http.StatusOK, resp.Code)

	got, err := s.GetRule(context.Background(), r.ID)
	require.NoError(t, err)
	assert.False(t, got.Enabled)

	resp = api.Put("/api/v1/rules/missing/enabled", map[string]any{"enabled": true})
	require.Equal(t, http.StatusNotFound, resp.Code)
}

func TestDeleteRule(t *testing.T) {
	t.Parallel()

	s := store.NewMemoryStore()
	r := seedRule(t, s, 4, "Overwhelming workload", true)

	h := handlers.NewRuleHandler(s)
	_, api := humatest.New(t)
	handlers.RegisterRuleRoutes(api, h)

	resp := api.Delete("/api/v1/rules/" + r.ID)
	require.Equal(t, http.StatusNoContent, resp.Code)

	_, err := s.GetRule(context.Background(), r.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
