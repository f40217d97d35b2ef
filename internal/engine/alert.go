package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/eapulse/eapulse/internal/store"
	domain "github.com/eapulse/eapulse/pkg/types"
)

// EnsureAlert creates an alert for a rule firing unless one is already
// open for the same (pairing, rule). The second return is true when a new
// alert was created, false when the firing folded into an existing one.
func EnsureAlert(
	ctx context.Context,
	s store.Store,
	pairingID string,
	rule *domain.Rule,
	ev *domain.Evidence,
	detectedAt int64,
) (*domain.Alert, bool, error) {
	existing, err := s.FindOpenAlert(ctx, pairingID, rule.ID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, false, fmt.Errorf("looking up open alert: %w", err)
	}

	alert := &domain.Alert{
		PairingID:   pairingID,
		RuleID:      rule.ID,
		Title:       alertTitle(rule),
		Description: rule.AlertDescription,
		Severity:    rule.Severity,
		Status:      domain.AlertNew,
		DetectedAt:  detectedAt,
	}

	if ev != nil {
		raw, err := json.Marshal(ev)
		if err != nil {
			return nil, false, fmt.Errorf("serializing evidence: %w", err)
		}
		alert.Evidence = raw
	}

	if err := s.CreateAlert(ctx, alert); err != nil {
		// Concurrent evaluation may have won the partial unique index
		// race; fold into the alert it created.
		if existing, findErr := s.FindOpenAlert(ctx, pairingID, rule.ID); findErr == nil {
			return existing, false, nil
		}
		return nil, false, fmt.Errorf("creating alert: %w", err)
	}

	return alert, true, nil
}

func alertTitle(rule *domain.Rule) string {
	if rule.AlertTitle != "" {
		return rule.AlertTitle
	}
	return rule.Name
}
