package client

import (
	"context"
	"fmt"

	domain "github.com/eapulse/eapulse/pkg/types"
)

// SubmitReport submits a daily report. Rule evaluation runs server-side
// in the background.
func (c *Client) SubmitReport(ctx context.Context, report domain.Report) (*domain.Report, error) {
	var r domain.Report
	if err := c.post(ctx, "/api/v1/reports", report, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// GetReport returns a single report by ID.
func (c *Client) GetReport(ctx context.Context, id string) (*domain.Report, error) {
	var r domain.Report
	if err := c.get(ctx, "/api/v1/reports/"+id, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// ListPairingReports returns the newest reports for a pairing, up to limit.
// A limit of zero uses the server default.
func (c *Client) ListPairingReports(ctx context.Context, pairingID string, limit int) ([]domain.Report, error) {
	path := fmt.Sprintf("/api/v1/pairings/%s/reports", pairingID)
	if limit > 0 {
		path = fmt.Sprintf("%s?limit=%d", path, limit)
	}
	var reports []domain.Report
	if err := c.get(ctx, path, &reports); err != nil {
		return nil, err
	}
	return reports, nil
}

// EvaluateReport runs every enabled rule against the report and returns
// the per-rule outcomes.
func (c *Client) EvaluateReport(ctx context.Context, id string) ([]domain.RuleEvaluation, error) {
	var evals []domain.RuleEvaluation
	if err := c.post(ctx, fmt.Sprintf("/api/v1/reports/%s/evaluate", id), nil, &evals); err != nil {
		return nil, err
	}
	return evals, nil
}
