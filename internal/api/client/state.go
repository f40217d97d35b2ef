package client

import (
	"context"

	domain "github.com/eapulse/eapulse/pkg/types"
)

// GetSystemState returns system-wide counters for dashboards and checks.
func (c *Client) GetSystemState(ctx context.Context) (*domain.SystemState, error) {
	var state domain.SystemState
	if err := c.get(ctx, "/api/v1/state", &state); err != nil {
		return nil, err
	}
	return &state, nil
}
