package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/eapulse/eapulse/internal/store"
	domain "github.com/eapulse/eapulse/pkg/types"
)

// PTOHandler handles scheduled-absence records for a pairing's EA.
type PTOHandler struct {
	store store.Store
}

// NewPTOHandler creates a new PTOHandler.
func NewPTOHandler(s store.Store) *PTOHandler {
	return &PTOHandler{store: s}
}

// CreatePTOInput is the request for POST /api/v1/pairings/{id}/pto.
type CreatePTOInput struct {
	PairingID string `path:"id" doc:"Pairing UUID"`
	Body      struct {
		StartDate int64  `json:"start_date" doc:"First covered day, unix seconds"`
		EndDate   int64  `json:"end_date" doc:"Last covered day, unix seconds"`
		Reason    string `json:"reason,omitempty" enum:",PTO,SICK,OTHER" example:"PTO"`
	}
}

// PTOOutput wraps a single PTO record.
type PTOOutput struct {
	Body *domain.PTORecord
}

// CreatePTO records an upcoming absence. Attendance rules are suppressed
// for reports dated inside the covered range.
func (h *PTOHandler) CreatePTO(
	ctx context.Context,
	input *CreatePTOInput,
) (*PTOOutput, error) {
	if input.Body.StartDate == 0 || input.Body.EndDate == 0 {
		return nil, huma.Error400BadRequest("start_date and end_date are required")
	}
	if input.Body.EndDate < input.Body.StartDate {
		return nil, huma.Error400BadRequest("end_date must not precede start_date")
	}
	if _, err := h.store.GetPairing(ctx, input.PairingID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, huma.Error404NotFound("pairing not found")
		}
		return nil, huma.Error500InternalServerError("loading pairing: " + err.Error())
	}

	reason := domain.PTOReason(input.Body.Reason)
	if reason == "" {
		reason = domain.PTOOther
	}

	rec := &domain.PTORecord{
		PairingID: input.PairingID,
		StartDate: input.Body.StartDate,
		EndDate:   input.Body.EndDate,
		Reason:    reason,
	}
	if err := h.store.CreatePTO(ctx, rec); err != nil {
		return nil, huma.Error500InternalServerError("creating pto record: " + err.Error())
	}
	return &PTOOutput{Body: rec}, nil
}

// ListPTOInput identifies the pairing.
type ListPTOInput struct {
	PairingID string `path:"id" doc:"Pairing UUID"`
}

// PTOListOutput wraps a PTO record list.
type PTOListOutput struct {
	Body []domain.PTORecord
}

// ListPTO returns a pairing's PTO records.
func (h *PTOHandler) ListPTO(
	ctx context.Context,
	input *ListPTOInput,
) (*PTOListOutput, error) {
	recs, err := h.store.ListPTOByPairing(ctx, input.PairingID)
	if err != nil {
		return nil, huma.Error500InternalServerError("listing pto records: " + err.Error())
	}
	if recs == nil {
		recs = []domain.PTORecord{}
	}
	return &PTOListOutput{Body: recs}, nil
}

// DeletePTOInput identifies the record to delete.
type DeletePTOInput struct {
	PairingID string `path:"id" doc:"Pairing UUID"`
	PTOID     string `path:"ptoID" doc:"PTO record UUID"`
}

// DeletePTO removes a PTO record.
func (h *PTOHandler) DeletePTO(
	ctx context.Context,
	input *DeletePTOInput,
) (*struct{}, error) {
	if err := h.store.DeletePTO(ctx, input.PTOID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, huma.Error404NotFound("pto record not found")
		}
		return nil, huma.Error500InternalServerError("deleting pto record: " + err.Error())
	}
	return &struct{}{}, nil
}

// RegisterPTORoutes registers PTO endpoints with the Huma API.
func RegisterPTORoutes(api huma.API, h *PTOHandler) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-pto",
		Method:        http.MethodPost,
		Path:          "/api/v1/pairings/{id}/pto",
		Summary:       "Record a scheduled absence",
		Tags:          []string{"pto"},
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusNotFound, http.StatusInternalServerError},
	}, h.CreatePTO)

	huma.Register(api, huma.Operation{
		OperationID: "list-pto",
		Method:      http.MethodGet,
		Path:        "/api/v1/pairings/{id}/pto",
		Summary:     "List scheduled absences",
		Tags:        []string{"pto"},
	}, h.ListPTO)

	huma.Register(api, huma.Operation{
		OperationID:   "delete-pto",
		Method:        http.MethodDelete,
		Path:          "/api/v1/pairings/{id}/pto/{ptoID}",
		Summary:       "Delete a scheduled absence",
		Tags:          []string{"pto"},
		DefaultStatus: http.StatusNoContent,
		Errors:        []int{http.StatusNotFound, http.StatusInternalServerError},
	}, h.DeletePTO)
}
