package store

// SQL query constants organized by entity.
// All SQL lives here as constants referenced by PostgresStore methods.

// Pairing queries.
const (
	queryCreatePairing = `
		INSERT INTO pairings (ea_name, client_name, health_override, created_at, updated_at)
		VALUES (@ea_name, @client_name, @health_override, now(), now())
		RETURNING id, created_at, updated_at`

	queryGetPairing = `
		SELECT id, ea_name, client_name, health_override, created_at, updated_at
		FROM pairings
		WHERE id = $1`

	queryListPairings = `
		SELECT id, ea_name, client_name, health_override, created_at, updated_at
		FROM pairings
		ORDER BY ea_name, client_name`

	queryUpdatePairing = `
		UPDATE pairings SET
			ea_name     = @ea_name,
			client_name = @client_name,
			updated_at  = now()
		WHERE id = @id`

	queryDeletePairing = `DELETE FROM pairings WHERE id = $1`

	querySetHealthOverride = `
		UPDATE pairings SET
			health_override = $2,
			updated_at      = now()
		WHERE id = $1`
)

// Report queries.
const (
	queryCreateReport = `
		INSERT INTO reports (
			pairing_id, report_date,
			workload_feeling, work_type, feeling_during_work, had_daily_sync,
			biggest_win, what_completed, pending_tasks,
			difficulties, support_needed, additional_notes,
			created_at
		) VALUES (
			@pairing_id, @report_date,
			@workload_feeling, @work_type, @feeling_during_work, @had_daily_sync,
			@biggest_win, @what_completed, @pending_tasks,
			@difficulties, @support_needed, @additional_notes,
			now()
		)
		RETURNING id, created_at`

	reportColumns = `id, pairing_id, report_date,
			workload_feeling, work_type, feeling_during_work, had_daily_sync,
			biggest_win, what_completed, pending_tasks,
			difficulties, support_needed, additional_notes,
			created_at`

	queryGetReport = `
		SELECT ` + reportColumns + `
		FROM reports
		WHERE id = $1`

	queryListReportsByPairing = `
		SELECT ` + reportColumns + `
		FROM reports
		WHERE pairing_id = $1
		ORDER BY report_date DESC
		LIMIT $2`

	queryListReportsInWindow = `
		SELECT ` + reportColumns + `
		FROM reports
		WHERE pairing_id = $1
		  AND report_date >= $2
		  AND report_date <= $3
		ORDER BY report_date DESC`

	queryLatestReport = `
		SELECT ` + reportColumns + `
		FROM reports
		WHERE pairing_id = $1
		ORDER BY report_date DESC
		LIMIT 1`
)

// Rule queries.
const (
	ruleColumns = `id, rule_number, name, rule_type, severity, enabled,
			trigger_condition, adjustable_thresholds, default_thresholds,
			alert_title, alert_description, suggested_action,
			data_source, business_rationale,
			created_at, updated_at`

	queryCreateRule = `
		INSERT INTO rules (
			rule_number, name, rule_type, severity, enabled,
			trigger_condition, adjustable_thresholds, default_thresholds,
			alert_title, alert_description, suggested_action,
			data_source, business_rationale,
			created_at, updated_at
		) VALUES (
			@rule_number, @name, @rule_type, @severity, @enabled,
			@trigger_condition, @adjustable_thresholds, @default_thresholds,
			@alert_title, @alert_description, @suggested_action,
			@data_source, @business_rationale,
			now(), now()
		)
		RETURNING id, created_at, updated_at`

	queryGetRule = `
		SELECT ` + ruleColumns + `
		FROM rules
		WHERE id = $1`

	queryGetRuleByNumber = `
		SELECT ` + ruleColumns + `
		FROM rules
		WHERE rule_number = $1`

	queryListRulesAll = `
		SELECT ` + ruleColumns + `
		FROM rules
		ORDER BY rule_number`

	queryListRulesEnabled = `
		SELECT ` + ruleColumns + `
		FROM rules
		WHERE enabled = true
		ORDER BY rule_number`

	queryUpdateRule = `
		UPDATE rules SET
			name                  = @name,
			rule_type             = @rule_type,
			severity              = @severity,
			enabled               = @enabled,
			trigger_condition     = @trigger_condition,
			adjustable_thresholds = @adjustable_thresholds,
			default_thresholds    = @default_thresholds,
			alert_title           = @alert_title,
			alert_description     = @alert_description,
			suggested_action      = @suggested_action,
			data_source           = @data_source,
			business_rationale    = @business_rationale,
			updated_at            = now()
		WHERE id = @id`

	querySetRuleEnabled = `
		UPDATE rules SET
			enabled    = $2,
			updated_at = now()
		WHERE id = $1`

	queryDeleteRule = `DELETE FROM rules WHERE id = $1`
)

// Pattern state queries.
const (
	queryGetPatternState = `
		SELECT id, pairing_id, rule_id, occurrences, window_start, window_end, window_days, updated_at
		FROM pattern_state
		WHERE pairing_id = $1 AND rule_id = $2`

	queryUpsertPatternState = `
		INSERT INTO pattern_state (
			pairing_id, rule_id, occurrences, window_start, window_end, window_days, updated_at
		) VALUES (
			@pairing_id, @rule_id, @occurrences, @window_start, @window_end, @window_days, now()
		)
		ON CONFLICT (pairing_id, rule_id) DO UPDATE SET
			occurrences  = EXCLUDED.occurrences,
			window_start = EXCLUDED.window_start,
			window_end   = EXCLUDED.window_end,
			window_days  = EXCLUDED.window_days,
			updated_at   = now()
		RETURNING id, updated_at`

	queryDeletePatternState = `
		DELETE FROM pattern_state WHERE pairing_id = $1 AND rule_id = $2`

	queryDeleteExpiredPatternState = `
		DELETE FROM pattern_state WHERE window_end < $1`
)

// Alert queries.
const (
	alertColumns = `id, pairing_id, rule_id, title, description, severity, status,
			assigned_to, detected_at, resolved_at, evidence, COALESCE(notes, '')`

	queryCreateAlert = `
		INSERT INTO alerts (
			pairing_id, rule_id, title, description, severity, status,
			assigned_to, detected_at, evidence, notes
		) VALUES (
			@pairing_id, @rule_id, @title, @description, @severity, @status,
			@assigned_to, @detected_at, @evidence, @notes
		)
		RETURNING id`

	queryGetAlert = `
		SELECT ` + alertColumns + `
		FROM alerts
		WHERE id = $1`

	queryFindOpenAlert = `
		SELECT ` + alertColumns + `
		FROM alerts
		WHERE pairing_id = $1
		  AND rule_id = $2
		  AND status != 'RESOLVED'
		LIMIT 1`

	queryListOpenAlertsByPairing = `
		SELECT ` + alertColumns + `
		FROM alerts
		WHERE pairing_id = $1
		  AND status != 'RESOLVED'
		ORDER BY detected_at DESC`

	queryUpdateAlertStatus = `
		UPDATE alerts SET
			status      = $2,
			resolved_at = $3,
			notes       = CASE WHEN $4 != '' THEN $4 ELSE notes END
		WHERE id = $1
		RETURNING ` + alertColumns

	queryAssignAlert = `
		UPDATE alerts SET assigned_to = $2 WHERE id = $1`
)

// PTO queries.
const (
	queryCreatePTO = `
		INSERT INTO pto_records (pairing_id, start_date, end_date, reason, created_at)
		VALUES (@pairing_id, @start_date, @end_date, @reason, now())
		RETURNING id, created_at`

	queryListPTOByPairing = `
		SELECT id, pairing_id, start_date, end_date, reason, created_at
		FROM pto_records
		WHERE pairing_id = $1
		ORDER BY start_date DESC`

	queryDeletePTO = `DELETE FROM pto_records WHERE id = $1`

	queryActivePTO = `
		SELECT id, pairing_id, start_date, end_date, reason, created_at
		FROM pto_records
		WHERE pairing_id = $1
		  AND start_date <= $2
		  AND end_date >= $2
		ORDER BY start_date DESC
		LIMIT 1`
)

// Aggregate queries.
const (
	queryGetSystemState = `
		SELECT
			(SELECT COUNT(*) FROM pairings)                                              AS pairings_total,
			(SELECT COUNT(*) FROM reports)                                               AS reports_total,
			(SELECT COUNT(*) FROM rules)                                                 AS rules_total,
			(SELECT COUNT(*) FROM rules WHERE enabled = true)                            AS rules_enabled,
			(SELECT COUNT(*) FROM alerts WHERE status != 'RESOLVED')                     AS alerts_open,
			(SELECT COUNT(*) FROM alerts)                                                AS alerts_total,
			(SELECT COUNT(*) FROM pattern_state)                                         AS pattern_states,
			(SELECT COUNT(*) FROM pto_records
				WHERE start_date <= EXTRACT(EPOCH FROM now())::bigint
				  AND end_date >= EXTRACT(EPOCH FROM now())::bigint)                     AS pto_records_active`
)
