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

func newPTOAPI(t *testing.T, s *store.MemoryStore) humatest.TestAPI {
	t.Helper()
	h := handlers.NewPTOHandler(s)
	_, api := humatest.New(t)
	handlers.RegisterPTORoutes(api, h)
	return api
}

func TestCreatePTO(t *testing.T) {
	t.Parallel()

	s := store.NewMemoryStore()
	p := seedPairing(t, s)
	api := newPTOAPI(t, s)

	resp := api.Post("/api/v1/pairings/"+p.ID+"/pto", map[string]any{
		"start_date": 1748865600,
		"end_date":   1749124800,
		"reason":     "PTO",
	})
	require.Equal(t, http.StatusCreated, resp.Code)
	assert.Contains(t, resp.Body.String(), `"reason":"PTO"`)

	recs, err := s.ListPTOByPairing(context.Background(), p.ID)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, int64(1748865600), recs[0].StartDate)
}

func TestCreatePTO_DefaultsReason(t *testing.T) {
	t.Parallel()

	s := store.NewMemoryStore()
	p := seedPairing(t, s)
	api := newPTOAPI(t, s)

	resp := api.Post("/api/v1/pairings/"+p.ID+"/pto", map[string]any{
		"start_date": 1748865600,
		"end_date":   1748865600,
	})
	require.Equal(t, http.StatusCreated, resp.Code)

	recs, err := s.ListPTOByPairing(context.Background(), p.ID)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, domain.PTOOther, recs[0].Reason)
}

func TestCreatePTO_Validation(t *testing.T) {
	t.Parallel()

	s := store.NewMemoryStore()
	p := seedPairing(t, s)
	api := newPTOAPI(t, s)

	resp := api.Post("/api/v1/pairings/"+p.ID+"/pto", map[string]any{
		"start_date": 1749124800,
		"end_date":   1748865600,
	})
	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Body.String(), "end_date must not precede start_date")

	resp = api.Post("/api/v1/pairings/"+p.ID+"/pto", map[string]any{
		"end_date": 1748865600,
	})
	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestCreatePTO_UnknownPairing(t *testing.T) {
	t.Parallel()

	api := newPTOAPI(t, store.NewMemoryStore())

	resp := api.Post("/api/v1/pairings/missing/pto", map[string]any{
		"start_date": 1748865600,
		"end_date":   1749124800,
	})
	require.Equal(t, http.StatusNotFound, resp.Code)
}

func TestListAndDeletePTO(t *testing.T) {
	t.Parallel()

	s := store.NewMemoryStore()
	p := seedPairing(t, s)
	rec := &domain.PTORecord{
		PairingID: p.ID,
		StartDate: 1748865600,
		EndDate:   1749124800,
		Reason:    domain.PTOSick,
	}
	require.NoError(t, s.CreatePTO(context.Background(), rec))

	api := newPTOAPI(t, s)

	resp := api.Get("/api/v1/pairings/" + p.ID + "/pto")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"reason":"SICK"`)

	resp = api.Delete("/api/v1/pairings/" + p.ID + "/pto/" + rec.ID)
	require.Equal(t, http.StatusNoContent, resp.Code)

	recs, err := s.ListPTOByPairing(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Empty(t, recs)
}
