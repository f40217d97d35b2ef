package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	domain "github.com/eapulse/eapulse/pkg/types"
)

// AlertFilter narrows an alert listing. Zero values are ignored.
type AlertFilter struct {
	PairingID string
	RuleID    string
	Status    string
	Severity  string
	OpenOnly  bool
	Limit     int
	Offset    int
}

// AlertList is a page of alerts plus the total match count.
type AlertList struct {
	Alerts []domain.Alert `json:"alerts"`
	Total  int            `json:"total"`
}

// ListAlerts returns alerts matching the filter, newest first.
func (c *Client) ListAlerts(ctx context.Context, filter AlertFilter) (*AlertList, error) {
	q := url.Values{}
	if filter.PairingID != "" {
		q.Set("pairing_id", filter.PairingID)
	}
	if filter.RuleID != "" {
		q.Set("rule_id", filter.RuleID)
	}
	if filter.Status != "" {
		q.Set("status", filter.Status)
	}
	if filter.Severity != "" {
		q.Set("severity", filter.Severity)
	}
	if filter.OpenOnly {
		q.Set("open", "true")
	}
	if filter.Limit > 0 {
		q.Set("limit", strconv.Itoa(filter.Limit))
	}
	if filter.Offset > 0 {
		q.Set("offset", strconv.Itoa(filter.Offset))
	}

	path := "/api/v1/alerts"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var list AlertList
	if err := c.get(ctx, path, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// GetAlert returns a single alert by ID.
func (c *Client) GetAlert(ctx context.Context, id string) (*domain.Alert, error) {
	var a domain.Alert
	if err := c.get(ctx, "/api/v1/alerts/"+id, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// UpdateAlertStatus transitions an alert through its lifecycle, optionally
// attaching notes.
func (c *Client) UpdateAlertStatus(ctx context.Context, id, status, notes string) (*domain.Alert, error) {
	body := struct {
		Status string `json:"status"`
		Notes  string `json:"notes,omitempty"`
	}{Status: status, Notes: notes}
	var a domain.Alert
	if err := c.put(ctx, fmt.Sprintf("/api/v1/alerts/%s/status", id), body, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// AssignAlert sets who is working the alert. A nil assignee unassigns it.
func (c *Client) AssignAlert(ctx context.Context, id string, assignedTo *string) error {
	body := struct {
		AssignedTo *string `json:"assigned_to"`
	}{AssignedTo: assignedTo}
	return c.put(ctx, fmt.Sprintf("/api/v1/alerts/%s/assign", id), body, nil)
}
