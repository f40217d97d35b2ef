package client

import (
	"context"
	"fmt"

	domain "github.com/eapulse/eapulse/pkg/types"
)

// ListPairings returns all EA/client pairings.
func (c *Client) ListPairings(ctx context.Context) ([]domain.Pairing, error) {
	var pairings []domain.Pairing
	if err := c.get(ctx, "/api/v1/pairings", &pairings); err != nil {
		return nil, err
	}
	return pairings, nil
}

// GetPairing returns a single pairing by ID.
func (c *Client) GetPairing(ctx context.Context, id string) (*domain.Pairing, error) {
	var p domain.Pairing
	if err := c.get(ctx, "/api/v1/pairings/"+id, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreatePairing registers a new EA/client pairing.
func (c *Client) CreatePairing(ctx context.Context, eaName, clientName string) (*domain.Pairing, error) {
	body := domain.Pairing{EAName: eaName, ClientName: clientName}
	var p domain.Pairing
	if err := c.post(ctx, "/api/v1/pairings", body, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdatePairing replaces a pairing's mutable fields.
func (c *Client) UpdatePairing(ctx context.Context, id string, pairing domain.Pairing) (*domain.Pairing, error) {
	var p domain.Pairing
	if err := c.put(ctx, "/api/v1/pairings/"+id, pairing, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// DeletePairing removes a pairing.
func (c *Client) DeletePairing(ctx context.Context, id string) error {
	return c.del(ctx, "/api/v1/pairings/"+id)
}

// GetHealth computes the current health status for a pairing.
func (c *Client) GetHealth(ctx context.Context, id string) (*domain.HealthResult, error) {
	var h domain.HealthResult
	if err := c.get(ctx, fmt.Sprintf("/api/v1/pairings/%s/health", id), &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// SetHealthOverride pins a pairing's health status. A nil status clears
// the override.
func (c *Client) SetHealthOverride(ctx context.Context, id string, status *string) error {
	body := struct {
		Status *string `json:"status"`
	}{Status: status}
	return c.put(ctx, fmt.Sprintf("/api/v1/pairings/%s/health-override", id), body, nil)
}
