package client

import (
	"context"
	"fmt"

	domain "github.com/eapulse/eapulse/pkg/types"
)

// CreatePTO records an upcoming absence for a pairing. Reason defaults to
// OTHER when empty.
func (c *Client) CreatePTO(ctx context.Context, pairingID string, startDate, endDate int64, reason string) (*domain.PTORecord, error) {
	body := struct {
		StartDate int64  `json:"start_date"`
		EndDate   int64  `json:"end_date"`
		Reason    string `json:"reason,omitempty"`
	}{StartDate: startDate, EndDate: endDate, Reason: reason}

	var rec domain.PTORecord
	if err := c.post(ctx, fmt.Sprintf("/api/v1/pairings/%s/pto", pairingID), body, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListPTO returns all PTO records for a pairing.
func (c *Client) ListPTO(ctx context.Context, pairingID string) ([]domain.PTORecord, error) {
	var records []domain.PTORecord
	if err := c.get(ctx, fmt.Sprintf("/api/v1/pairings/%s/pto", pairingID), &records); err != nil {
		return nil, err
	}
	return records, nil
}

// DeletePTO removes a PTO record.
func (c *Client) DeletePTO(ctx context.Context, pairingID, ptoID string) error {
	return c.del(ctx, fmt.Sprintf("/api/v1/pairings/%s/pto/%s", pairingID, ptoID))
}
