package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/eapulse/eapulse/internal/store"
	domain "github.com/eapulse/eapulse/pkg/types"
)

// HealthComputer derives a pairing's traffic-light status.
type HealthComputer interface {
	ComputeHealth(ctx context.Context, pairingID string) (domain.HealthResult, error)
}

// PairingHandler handles pairing CRUD and health reads.
type PairingHandler struct {
	store  store.Store
	scorer HealthComputer
}

// NewPairingHandler creates a new PairingHandler.
func NewPairingHandler(s store.Store, scorer HealthComputer) *PairingHandler {
	return &PairingHandler{store: s, scorer: scorer}
}

// PairingListOutput wraps a pairing list.
type PairingListOutput struct {
	Body []domain.Pairing
}

// ListPairings returns all pairings.
func (h *PairingHandler) ListPairings(
	ctx context.Context,
	_ *struct{},
) (*PairingListOutput, error) {
	pairings, err := h.store.ListPairings(ctx)
	if err != nil {
		return nil, huma.Error500InternalServerError("listing pairings: " + err.Error())
	}
	if pairings == nil {
		pairings = []domain.Pairing{}
	}
	return &PairingListOutput{Body: pairings}, nil
}

// GetPairingInput identifies a pairing.
type GetPairingInput struct {
	ID string `path:"id" doc:"Pairing UUID"`
}

// PairingOutput wraps a single pairing.
type PairingOutput struct {
	Body *domain.Pairing
}

// GetPairing returns a single pairing by ID.
func (h *PairingHandler) GetPairing(
	ctx context.Context,
	input *GetPairingInput,
) (*PairingOutput, error) {
	p, err := h.store.GetPairing(ctx, input.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, huma.Error404NotFound("pairing not found")
		}
		return nil, huma.Error500InternalServerError("loading pairing: " + err.Error())
	}
	return &PairingOutput{Body: p}, nil
}

// CreatePairingInput is the request for POST /api/v1/pairings.
type CreatePairingInput struct {
	Body domain.Pairing
}

// CreatePairing inserts a new pairing.
func (h *PairingHandler) CreatePairing(
	ctx context.Context,
	input *CreatePairingInput,
) (*PairingOutput, error) {
	p := input.Body
	if p.EAName == "" || p.ClientName == "" {
		return nil, huma.Error400BadRequest("ea_name and client_name are required")
	}

	if err := h.store.CreatePairing(ctx, &p); err != nil {
		return nil, huma.Error500InternalServerError("creating pairing: " + err.Error())
	}
	return &PairingOutput{Body: &p}, nil
}

// UpdatePairingInput is the request for PUT /api/v1/pairings/{id}.
type UpdatePairingInput struct {
	ID   string `path:"id" doc:"Pairing UUID"`
	Body domain.Pairing
}

// UpdatePairing replaces an existing pairing.
func (h *PairingHandler) UpdatePairing(
	ctx context.Context,
	input *UpdatePairingInput,
) (*PairingOutput, error) {
	p := input.Body
	p.ID = input.ID

	if err := h.store.UpdatePairing(ctx, &p); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, huma.Error404NotFound("pairing not found")
		}
		return nil, huma.Error500InternalServerError("updating pairing: " + err.Error())
	}
	return &PairingOutput{Body: &p}, nil
}

// DeletePairingInput identifies the pairing to delete.
type DeletePairingInput struct {
	ID string `path:"id" doc:"Pairing UUID"`
}

// DeletePairing removes a pairing.
func (h *PairingHandler) DeletePairing(
	ctx context.Context,
	input *DeletePairingInput,
) (*struct{}, error) {
	if err := h.store.DeletePairing(ctx, input.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, huma.Error404NotFound("pairing not found")
		}
		return nil, huma.Error500InternalServerError("deleting pairing: " + err.Error())
	}
	return &struct{}{}, nil
}

// GetHealthInput identifies the pairing to score.
type GetHealthInput struct {
	ID string `path:"id" doc:"Pairing UUID"`
}

// HealthResultOutput wraps a computed health result.
type HealthResultOutput struct {
	Body domain.HealthResult
}

// GetHealth computes the pairing's current health on demand.
func (h *PairingHandler) GetHealth(
	ctx context.Context,
	input *GetHealthInput,
) (*HealthResultOutput, error) {
	result, err := h.scorer.ComputeHealth(ctx, input.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, huma.Error404NotFound("pairing not found")
		}
		return nil, huma.Error500InternalServerError("computing health: " + err.Error())
	}
	return &HealthResultOutput{Body: result}, nil
}

// SetHealthOverrideInput pins or clears a pairing's health.
type SetHealthOverrideInput struct {
	ID   string `path:"id" doc:"Pairing UUID"`
	Body struct {
		Status *string `json:"status" enum:"GREEN,YELLOW,RED" example:"GREEN" doc:"Pinned status, or null to clear the override"`
	}
}

// SetHealthOverrideOutput confirms the override change.
type SetHealthOverrideOutput struct {
	Body StatusResponse
}

// SetHealthOverride pins the pairing's health to a fixed status. The
// override wins over every computed signal until cleared with null.
func (h *PairingHandler) SetHealthOverride(
	ctx context.Context,
	input *SetHealthOverrideInput,
) (*SetHealthOverrideOutput, error) {
	var status *domain.HealthStatus
	if input.Body.Status != nil {
		s := domain.HealthStatus(*input.Body.Status)
		switch s {
		case domain.HealthGreen, domain.HealthYellow, domain.HealthRed:
		default:
			return nil, huma.Error400BadRequest("status must be GREEN, YELLOW or RED")
		}
		status = &s
	}

	if err := h.store.SetHealthOverride(ctx, input.ID, status); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, huma.Error404NotFound("pairing not found")
		}
		return nil, huma.Error500InternalServerError("setting health override: " + err.Error())
	}

	resp := &SetHealthOverrideOutput{}
	resp.Body.Status = "updated"
	return resp, nil
}

// RegisterPairingRoutes registers pairing endpoints with the Huma API.
func RegisterPairingRoutes(api huma.API, h *PairingHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "list-pairings",
		Method:      http.MethodGet,
		Path:        "/api/v1/pairings",
		Summary:     "List pairings",
		Tags:        []string{"pairings"},
	}, h.ListPairings)

	huma.Register(api, huma.Operation{
		OperationID: "get-pairing",
		Method:      http.MethodGet,
		Path:        "/api/v1/pairings/{id}",
		Summary:     "Get a pairing",
		Tags:        []string{"pairings"},
		Errors:      []int{http.StatusNotFound},
	}, h.GetPairing)

	huma.Register(api, huma.Operation{
		OperationID:   "create-pairing",
		Method:        http.MethodPost,
		Path:          "/api/v1/pairings",
		Summary:       "Create a pairing",
		Tags:          []string{"pairings"},
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusInternalServerError},
	}, h.CreatePairing)

	huma.Register(api, huma.Operation{
		OperationID: "update-pairing",
		Method:      http.MethodPut,
		Path:        "/api/v1/pairings/{id}",
		Summary:     "Update a pairing",
		Tags:        []string{"pairings"},
		Errors:      []int{http.StatusNotFound, http.StatusInternalServerError},
	}, h.UpdatePairing)

	huma.Register(api, huma.Operation{
		OperationID:   "delete-pairing",
		Method:        http.MethodDelete,
		Path:          "/api/v1/pairings/{id}",
		Summary:       "Delete a pairing",
		Tags:          []string{"pairings"},
		DefaultStatus: http.StatusNoContent,
		Errors:        []int{http.StatusNotFound, http.StatusInternalServerError},
	}, h.DeletePairing)

	huma.Register(api, huma.Operation{
		OperationID: "get-pairing-health",
		Method:      http.MethodGet,
		Path:        "/api/v1/pairings/{id}/health",
		Summary:     "Get pairing health",
		Description: "Computes the GREEN/YELLOW/RED status from open alerts and recent reports.",
		Tags:        []string{"pairings"},
		Errors:      []int{http.StatusNotFound},
	}, h.GetHealth)

	huma.Register(api, huma.Operation{
		OperationID: "set-health-override",
		Method:      http.MethodPut,
		Path:        "/api/v1/pairings/{id}/health-override",
		Summary:     "Pin or clear a health override",
		Tags:        []string{"pairings"},
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound, http.StatusInternalServerError},
	}, h.SetHealthOverride)
}
