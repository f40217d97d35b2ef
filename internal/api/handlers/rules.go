package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/eapulse/eapulse/internal/store"
	domain "github.com/eapulse/eapulse/pkg/types"
)

// RuleHandler handles detection rule CRUD.
type RuleHandler struct {
	store store.Store
}

// NewRuleHandler creates a new RuleHandler.
func NewRuleHandler(s store.Store) *RuleHandler {
	return &RuleHandler{store: s}
}

// ListRulesInput filters the rule list.
type ListRulesInput struct {
	Enabled bool `query:"enabled" doc:"Return only enabled rules"`
}

// RuleListOutput wraps a rule list.
type RuleListOutput struct {
	Body []domain.Rule
}

// ListRules returns all rules, optionally enabled-only.
func (h *RuleHandler) ListRules(
	ctx context.Context,
	input *ListRulesInput,
) (*RuleListOutput, error) {
	rules, err := h.store.ListRules(ctx, input.Enabled)
	if err != nil {
		return nil, huma.Error500InternalServerError("listing rules: " + err.Error())
	}
	if rules == nil {
		rules = []domain.Rule{}
	}
	return &RuleListOutput{Body: rules}, nil
}

// GetRuleInput identifies a rule.
type GetRuleInput struct {
	ID string `path:"id" doc:"Rule UUID"`
}

// RuleOutput wraps a single rule.
type RuleOutput struct {
	Body *domain.Rule
}

// GetRule returns a single rule by ID.
func (h *RuleHandler) GetRule(
	ctx context.Context,
	input *GetRuleInput,
) (*RuleOutput, error) {
	rule, err := h.store.GetRule(ctx, input.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, huma.Error404NotFound("rule not found")
		}
		return nil, huma.Error500InternalServerError("loading rule: " + err.Error())
	}
	return &RuleOutput{Body: rule}, nil
}

// CreateRuleInput is the request for POST /api/v1/rules.
type CreateRuleInput struct {
	Body domain.Rule
}

// CreateRule inserts a new rule.
func (h *RuleHandler) CreateRule(
	ctx context.Context,
	input *CreateRuleInput,
) (*RuleOutput, error) {
	rule := input.Body
	if rule.Name == "" {
		return nil, huma.Error400BadRequest("name is required")
	}
	if rule.RuleType != domain.RuleLogic && rule.RuleType != domain.RuleAIText {
		return nil, huma.Error400BadRequest("rule_type must be LOGIC or AI_TEXT")
	}
	if rule.RuleNumber <= 0 {
		return nil, huma.Error400BadRequest("rule_number must be positive")
	}

	if err := h.store.CreateRule(ctx, &rule); err != nil {
		return nil, huma.Error500InternalServerError("creating rule: " + err.Error())
	}
	return &RuleOutput{Body: &rule}, nil
}

// UpdateRuleInput is the request for PUT /api/v1/rules/{id}.
type UpdateRuleInput struct {
	ID   string `path:"id" doc:"Rule UUID"`
	Body domain.Rule
}

// UpdateRule replaces an existing rule.
func (h *RuleHandler) UpdateRule(
	ctx context.Context,
	input *UpdateRuleInput,
) (*RuleOutput, error) {
	rule := input.Body
	rule.ID = input.ID

	if err := h.store.UpdateRule(ctx, &rule); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, huma.Error404NotFound("rule not found")
		}
		return nil, huma.Error500InternalServerError("updating rule: " + err.Error())
	}
	return &RuleOutput{Body: &rule}, nil
}

// SetRuleEnabledInput toggles a rule.
type SetRuleEnabledInput struct {
	ID   string `path:"id" doc:"Rule UUID"`
	Body struct {
		Enabled bool `json:"enabled" example:"true"`
	}
}

// SetRuleEnabledOutput confirms the toggle.
type SetRuleEnabledOutput struct {
	Body StatusResponse
}

// SetRuleEnabled enables or disables a rule without touching its definition.
func (h *RuleHandler) SetRuleEnabled(
	ctx context.Context,
	input *SetRuleEnabledInput,
) (*SetRuleEnabledOutput, error) {
	if err := h.store.SetRuleEnabled(ctx, input.ID, input.Body.Enabled); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, huma.Error404NotFound("rule not found")
		}
		return nil, huma.Error500InternalServerError("setting rule enabled: " + err.Error())
	}
	resp := &SetRuleEnabledOutput{}
	resp.Body.Status = "updated"
	return resp, nil
}

// DeleteRuleInput identifies the rule to delete.
type DeleteRuleInput struct {
	ID string `path:"id" doc:"Rule UUID"`
}

// DeleteRule removes a rule.
func (h *RuleHandler) DeleteRule(
	ctx context.Context,
	input *DeleteRuleInput,
) (*struct{}, error) {
	if err := h.store.DeleteRule(ctx, input.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, huma.Error404NotFound("rule not found")
		}
		return nil, huma.Error500InternalServerError("deleting rule: " + err.Error())
	}
	return &struct{}{}, nil
}

// RegisterRuleRoutes registers rule endpoints with the Huma API.
func RegisterRuleRoutes(api huma.API, h *RuleHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "list-rules",
		Method:      http.MethodGet,
		Path:        "/api/v1/rules",
		Summary:     "List rules",
		Tags:        []string{"rules"},
	}, h.ListRules)

	huma.Register(api, huma.Operation{
		OperationID: "get-rule",
		Method:      http.MethodGet,
		Path:        "/api/v1/rules/{id}",
		Summary:     "Get a rule",
		Tags:        []string{"rules"},
		Errors:      []int{http.StatusNotFound},
	}, h.GetRule)

	huma.Register(api, huma.Operation{
		OperationID:   "create-rule",
		Method:        http.MethodPost,
		Path:          "/api/v1/rules",
		Summary:       "Create a rule",
		Tags:          []string{"rules"},
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusInternalServerError},
	}, h.CreateRule)

	huma.Register(api, huma.Operation{
		OperationID: "update-rule",
		Method:      http.MethodPut,
		Path:        "/api/v1/rules/{id}",
		Summary:     "Update a rule",
		Tags:        []string{"rules"},
		Errors:      []int{http.StatusNotFound, http.StatusInternalServerError},
	}, h.UpdateRule)

	huma.Register(api, huma.Operation{
		OperationID: "set-rule-enabled",
		Method:      http.MethodPut,
		Path:        "/api/v1/rules/{id}/enabled",
		Summary:     "Enable or disable a rule",
		Tags:        []string{"rules"},
		Errors:      []int{http.StatusNotFound, http.StatusInternalServerError},
	}, h.SetRuleEnabled)

	huma.Register(api, huma.Operation{
		OperationID:   "delete-rule",
		Method:        http.MethodDelete,
		Path:          "/api/v1/rules/{id}",
		Summary:       "Delete a rule",
		Tags:          []string{"rules"},
		DefaultStatus: http.StatusNoContent,
		Errors:        []int{http.StatusNotFound, http.StatusInternalServerError},
	}, h.DeleteRule)
}
