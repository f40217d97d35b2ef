package store

import (
	"fmt"
	"strings"
)

const (
	defaultLimit = 50
	maxLimit     = 500
)

const baseAlertsSelect = `SELECT id, pairing_id, rule_id, title, description, severity, status,
		assigned_to, detected_at, resolved_at, evidence, COALESCE(notes, '')
	FROM alerts`

const countAlertsSelect = "SELECT COUNT(*) FROM alerts"

// ToSQL builds the WHERE clause, ORDER BY, LIMIT, and OFFSET for an alert
// query. It returns two SQL strings (one for the data query, one for the
// count query) and the positional parameters.
func (q *AlertQuery) ToSQL() (dataSQL, countSQL string, args []any) {
	var conditions []string
	paramIdx := 1

	if q.PairingID != nil {
		conditions = append(conditions, fmt.Sprintf("pairing_id = $%d", paramIdx))
		args = append(args, *q.PairingID)
		paramIdx++
	}

	if q.RuleID != nil {
		conditions = append(conditions, fmt.Sprintf("rule_id = $%d", paramIdx))
		args = append(args, *q.RuleID)
		paramIdx++
	}

	if q.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", paramIdx))
		args = append(args, *q.Status)
		paramIdx++
	}

	if q.Severity != nil {
		conditions = append(conditions, fmt.Sprintf("severity = $%d", paramIdx))
		args = append(args, *q.Severity)
		paramIdx++
	}

	if q.OpenOnly {
		conditions = append(conditions, "status != 'RESOLVED'")
	}

	var whereClause string
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	// Limit
	limit := q.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	offset := max(q.Offset, 0)

	dataSQL = fmt.Sprintf(
		"%s%s ORDER BY detected_at DESC LIMIT %d OFFSET %d",
		baseAlertsSelect, whereClause, limit, offset,
	)

	countSQL = countAlertsSelect + whereClause

	return dataSQL, countSQL, args
}
