package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eapulse/eapulse/internal/api/handlers"
	domain "github.com/eapulse/eapulse/pkg/types"
)

type fakeStateProvider struct {
	state *domain.SystemState
	err   error
}

func (f *fakeStateProvider) GetSystemState(_ context.Context) (*domain.SystemState, error) {
	return f.state, f.err
}

func TestGetSystemState_Success(t *testing.T) {
	t.Parallel()

	state := &domain.SystemState{
		PairingsTotal: 12,
		ReportsTotal:  340,
		RulesEnabled:  9,
		AlertsOpen:    4,
	}

	h := handlers.NewSystemStateHandler(&fakeStateProvider{state: state})

	_, api := humatest.New(t)
	handlers.RegisterSystemStateRoutes(api, h)

	resp := api.Get("/api/v1/state")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"pairings_total":12`)
	assert.Contains(t, resp.Body.String(), `"alerts_open":4`)
}

func TestGetSystemState_Error(t *testing.T) {
	t.Parallel()

	h := handlers.NewSystemStateHandler(&fakeStateProvider{err: errors.New("db error")})

	_, api := humatest.New(t)
	handlers.RegisterSystemStateRoutes(api, h)

	resp := api.Get("/api/v1/state")
	require.Equal(t, http.StatusInternalServerError, resp.Code)
}
