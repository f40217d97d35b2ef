package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/eapulse/eapulse/internal/store"
	domain "github.com/eapulse/eapulse/pkg/types"
)

// AlertHandler handles alert queries and lifecycle transitions.
type AlertHandler struct {
	store store.Store
}

// NewAlertHandler creates a new AlertHandler.
func NewAlertHandler(s store.Store) *AlertHandler {
	return &AlertHandler{store: s}
}

// ListAlertsInput filters the alert list.
type ListAlertsInput struct {
	PairingID string `query:"pairing_id" doc:"Filter by pairing UUID"`
	RuleID    string `query:"rule_id" doc:"Filter by rule UUID"`
	Status    string `query:"status" enum:",NEW,INVESTIGATING,WORKING_ON,RESOLVED" doc:"Filter by status"`
	Severity  string `query:"severity" enum:",CRITICAL,HIGH,MEDIUM,LOW" doc:"Filter by severity"`
	Open      bool   `query:"open" doc:"Return only unresolved alerts"`
	Limit     int    `query:"limit" default:"50" minimum:"1" maximum:"500"`
	Offset    int    `query:"offset" minimum:"0"`
}

// AlertListOutput wraps an alert page with the total match count.
type AlertListOutput struct {
	Body struct {
		Alerts []domain.Alert `json:"alerts"`
		Total  int            `json:"total" example:"3"`
	}
}

// ListAlerts returns alerts matching the filters, newest first.
func (h *AlertHandler) ListAlerts(
	ctx context.Context,
	input *ListAlertsInput,
) (*AlertListOutput, error) {
	q := &store.AlertQuery{
		OpenOnly: input.Open,
		Limit:    input.Limit,
		Offset:   input.Offset,
	}
	if input.PairingID != "" {
		q.PairingID = &input.PairingID
	}
	if input.RuleID != "" {
		q.RuleID = &input.RuleID
	}
	if input.Status != "" {
		q.Status = &input.Status
	}
	if input.Severity != "" {
		q.Severity = &input.Severity
	}

	alerts, total, err := h.store.ListAlerts(ctx, q)
	if err != nil {
		return nil, huma.Error500InternalServerError("listing alerts: " + err.Error())
	}
	if alerts == nil {
		alerts = []domain.Alert{}
	}

	resp := &AlertListOutput{}
	resp.Body.Alerts = alerts
	resp.Body.Total = total
	return resp, nil
}

// GetAlertInput identifies an alert.
type GetAlertInput struct {
	ID string `path:"id" doc:"Alert UUID"`
}

// AlertOutput wraps a single alert.
type AlertOutput struct {
	Body *domain.Alert
}

// GetAlert returns a single alert by ID.
func (h *AlertHandler) GetAlert(
	ctx context.Context,
	input *GetAlertInput,
) (*AlertOutput, error) {
	alert, err := h.store.GetAlert(ctx, input.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, huma.Error404NotFound("alert not found")
		}
		return nil, huma.Error500InternalServerError("loading alert: " + err.Error())
	}
	return &AlertOutput{Body: alert}, nil
}

// UpdateAlertStatusInput moves an alert through its lifecycle.
type UpdateAlertStatusInput struct {
	ID   string `path:"id" doc:"Alert UUID"`
	Body struct {
		Status string `json:"status" enum:"NEW,INVESTIGATING,WORKING_ON,RESOLVED" example:"INVESTIGATING"`
		Notes  string `json:"notes,omitempty" doc:"Optional follow-up notes"`
	}
}

// UpdateAlertStatus transitions the alert. Moving to RESOLVED stamps
// resolved_at; any move away from RESOLVED clears it.
func (h *AlertHandler) UpdateAlertStatus(
	ctx context.Context,
	input *UpdateAlertStatusInput,
) (*AlertOutput, error) {
	alert, err := h.store.UpdateAlertStatus(
		ctx,
		input.ID,
		domain.AlertStatus(input.Body.Status),
		input.Body.Notes,
	)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, huma.Error404NotFound("alert not found")
		}
		return nil, huma.Error500InternalServerError("updating alert status: " + err.Error())
	}
	return &AlertOutput{Body: alert}, nil
}

// AssignAlertInput sets or clears the alert's assignee.
type AssignAlertInput struct {
	ID   string `path:"id" doc:"Alert UUID"`
	Body struct {
		AssignedTo *string `json:"assigned_to" example:"sam"`
	}
}

// AssignAlertOutput confirms the assignment.
type AssignAlertOutput struct {
	Body StatusResponse
}

// AssignAlert sets who is working the alert. A null assignee unassigns it.
func (h *AlertHandler) AssignAlert(
	ctx context.Context,
	input *AssignAlertInput,
) (*AssignAlertOutput, error) {
	if err := h.store.AssignAlert(ctx, input.ID, input.Body.AssignedTo); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, huma.Error404NotFound("alert not found")
		}
		return nil, huma.Error500InternalServerError("assigning alert: " + err.Error())
	}
	resp := &AssignAlertOutput{}
	resp.Body.Status = "updated"
	return resp, nil
}

// RegisterAlertRoutes registers alert endpoints with the Huma API.
func RegisterAlertRoutes(api huma.API, h *AlertHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "list-alerts",
		Method:      http.MethodGet,
		Path:        "/api/v1/alerts",
		Summary:     "List alerts",
		Tags:        []string{"alerts"},
	}, h.ListAlerts)

	huma.Register(api, huma.Operation{
		OperationID: "get-alert",
		Method:      http.MethodGet,
		Path:        "/api/v1/alerts/{id}",
		Summary:     "Get an alert",
		Tags:        []string{"alerts"},
		Errors:      []int{http.StatusNotFound},
	}, h.GetAlert)

	huma.Register(api, huma.Operation{
		OperationID: "update-alert-status",
		Method:      http.MethodPut,
		Path:        "/api/v1/alerts/{id}/status",
		Summary:     "Update alert status",
		Tags:        []string{"alerts"},
		Errors:      []int{http.StatusNotFound, http.StatusInternalServerError},
	}, h.UpdateAlertStatus)

	huma.Register(api, huma.Operation{
		OperationID: "assign-alert",
		Method:      http.MethodPut,
		Path:        "/api/v1/alerts/{id}/assign",
		Summary:     "Assign an alert",
		Tags:        []string{"alerts"},
		Errors:      []int{http.StatusNotFound, http.StatusInternalServerError},
	}, h.AssignAlert)
}
