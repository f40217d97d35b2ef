package client

import (
	"context"

	domain "github.com/eapulse/eapulse/pkg/types"
)

// ListRules returns all rules, or only enabled ones when enabledOnly is set.
func (c *Client) ListRules(ctx context.Context, enabledOnly bool) ([]domain.Rule, error) {
	path := "/api/v1/rules"
	if enabledOnly {
		path += "?enabled=true"
	}
	var rules []domain.Rule
	if err := c.get(ctx, path, &rules); err != nil {
		return nil, err
	}
	return rules, nil
}

// GetRule returns a single rule by ID.
func (c *Client) GetRule(ctx context.Context, id string) (*domain.Rule, error) {
	var r domain.Rule
	if err := c.get(ctx, "/api/v1/rules/"+id, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// CreateRule inserts a new rule.
func (c *Client) CreateRule(ctx context.Context, rule domain.Rule) (*domain.Rule, error) {
	var r domain.Rule
	if err := c.post(ctx, "/api/v1/rules", rule, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// UpdateRule replaces a rule's definition.
func (c *Client) UpdateRule(ctx context.Context, id string, rule domain.Rule) (*domain.Rule, error) {
	var r domain.Rule
	if err := c.put(ctx, "/api/v1/rules/"+id, rule, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// SetRuleEnabled toggles a rule on or off.
func (c *Client) SetRuleEnabled(ctx context.Context, id string, enabled bool) error {
	body := struct {
		Enabled bool `json:"enabled"`
	}{Enabled: enabled}
	return c.put(ctx, "/api/v1/rules/"+id+"/enabled", body, nil)
}

// DeleteRule removes a rule.
func (c *Client) DeleteRule(ctx context.Context, id string) error {
	return c.del(ctx, "/api/v1/rules/"+id)
}
