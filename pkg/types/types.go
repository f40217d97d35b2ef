// Package domain defines the core business types for the EA operations pulse service.
package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// WorkloadFeeling captures how heavy the EA's day felt.
type WorkloadFeeling string

// Workload feeling constants.
const (
	WorkloadLight        WorkloadFeeling = "LIGHT"
	WorkloadModerate     WorkloadFeeling = "MODERATE"
	WorkloadHeavy        WorkloadFeeling = "HEAVY"
	WorkloadOverwhelming WorkloadFeeling = "OVERWHELMING"
)

// WorkType categorizes the mix of tasks in a report.
type WorkType string

// Work type constants.
const (
	WorkTypeNotMuch   WorkType = "NOT_MUCH"
	WorkTypeRegular   WorkType = "REGULAR"
	WorkTypeMix       WorkType = "MIX"
	WorkTypeMostlyNew WorkType = "MOSTLY_NEW"
)

// FeelingDuringWork captures the EA's mood while working.
type FeelingDuringWork string

// Feeling constants.
const (
	FeelingGreat    FeelingDuringWork = "GREAT"
	FeelingGood     FeelingDuringWork = "GOOD"
	FeelingOkay     FeelingDuringWork = "OKAY"
	FeelingStressed FeelingDuringWork = "STRESSED"
)

// RuleType distinguishes structured-field rules from free-text AI rules.
type RuleType string

// Rule type constants.
const (
	RuleLogic  RuleType = "LOGIC"
	RuleAIText RuleType = "AI_TEXT"
)

// Severity ranks how urgent a rule firing is.
type Severity string

// Severity constants.
const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
)

// AlertStatus tracks an alert through its lifecycle.
type AlertStatus string

// Alert status constants.
const (
	AlertNew           AlertStatus = "NEW"
	AlertInvestigating AlertStatus = "INVESTIGATING"
	AlertWorkingOn     AlertStatus = "WORKING_ON"
	AlertResolved      AlertStatus = "RESOLVED"
)

// HealthStatus is the traffic-light health of a pairing.
type HealthStatus string

// Health status constants.
const (
	HealthGreen  HealthStatus = "GREEN"
	HealthYellow HealthStatus = "YELLOW"
	HealthRed    HealthStatus = "RED"
)

// PTOReason categorizes a time-off record.
type PTOReason string

// PTO reason constants.
const (
	PTOVacation PTOReason = "PTO"
	PTOSick     PTOReason = "SICK"
	PTOOther    PTOReason = "OTHER"
)

// ConditionOperator is the comparison applied by a logic rule.
type ConditionOperator string

// Condition operator constants.
const (
	OpEquals      ConditionOperator = "equals"
	OpNotEquals   ConditionOperator = "not_equals"
	OpContains    ConditionOperator = "contains"
	OpEmpty       ConditionOperator = "empty"
	OpWordCountLT ConditionOperator = "word_count_lt"
)

// PatternType distinguishes single-report conditions from multi-day patterns.
type PatternType string

// Pattern type constants.
const (
	PatternImmediate PatternType = "immediate"
	PatternOverTime  PatternType = "pattern_over_time"
)

// Pairing links an EA to the client they support.
type Pairing struct {
	ID             string        `json:"id"                        db:"id"`
	EAName         string        `json:"ea_name"                   db:"ea_name"`
	ClientName     string        `json:"client_name"               db:"client_name"`
	HealthOverride *HealthStatus `json:"health_override,omitempty" db:"health_override"`
	CreatedAt      time.Time     `json:"created_at"                db:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"                db:"updated_at"`
}

// Report is one EA daily check-in. Date fields are unix seconds so the
// same value round-trips through the API, the store and rule evaluation
// without timezone drift.
type Report struct {
	ID         string `json:"id"          db:"id"`
	PairingID  string `json:"pairing_id"  db:"pairing_id"`
	ReportDate int64  `json:"report_date" db:"report_date"`

	// Structured signals
	WorkloadFeeling   WorkloadFeeling   `json:"workload_feeling"    db:"workload_feeling"`
	WorkType          WorkType          `json:"work_type"           db:"work_type"`
	FeelingDuringWork FeelingDuringWork `json:"feeling_during_work" db:"feeling_during_work"`
	HadDailySync      bool              `json:"had_daily_sync"      db:"had_daily_sync"`

	// Free text
	BiggestWin      string `json:"biggest_win"      db:"biggest_win"`
	WhatCompleted   string `json:"what_completed"   db:"what_completed"`
	PendingTasks    string `json:"pending_tasks"    db:"pending_tasks"`
	Difficulties    string `json:"difficulties"     db:"difficulties"`
	SupportNeeded   string `json:"support_needed"   db:"support_needed"`
	AdditionalNotes string `json:"additional_notes" db:"additional_notes"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Field resolves a rule condition field name to its string form.
// Booleans render as "true"/"false"; unknown names resolve to the empty
// string so an `empty` condition on them fires and everything else does not.
func (r *Report) Field(name string) string {
	switch name {
	case "workloadFeeling":
		return string(r.WorkloadFeeling)
	case "workType":
		return string(r.WorkType)
	case "feelingDuringWork":
		return string(r.FeelingDuringWork)
	case "hadDailySync":
		if r.HadDailySync {
			return "true"
		}
		return "false"
	case "biggestWin":
		return r.BiggestWin
	case "whatCompleted":
		return r.WhatCompleted
	case "pendingTasks":
		return r.PendingTasks
	case "difficulties":
		return r.Difficulties
	case "supportNeeded":
		return r.SupportNeeded
	case "additionalNotes":
		return r.AdditionalNotes
	default:
		return ""
	}
}

// TextFields returns the free-text fields in a stable order for prompt building.
func (r *Report) TextFields() []FieldValue {
	return []FieldValue{
		{Name: "biggestWin", Value: r.BiggestWin},
		{Name: "whatCompleted", Value: r.WhatCompleted},
		{Name: "pendingTasks", Value: r.PendingTasks},
		{Name: "difficulties", Value: r.Difficulties},
		{Name: "supportNeeded", Value: r.SupportNeeded},
		{Name: "additionalNotes", Value: r.AdditionalNotes},
	}
}

// FieldValue pairs a report field name with its resolved value.
type FieldValue struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Rule is one configurable detection rule. The condition and threshold
// columns hold JSON as authored by operations; accessors parse them on
// demand and fall back to safe defaults on malformed input.
type Rule struct {
	ID                   string          `json:"id"                    db:"id"`
	RuleNumber           int             `json:"rule_number"           db:"rule_number"`
	Name                 string          `json:"name"                  db:"name"`
	RuleType             RuleType        `json:"rule_type"             db:"rule_type"`
	Severity             Severity        `json:"severity"              db:"severity"`
	Enabled              bool            `json:"enabled"               db:"enabled"`
	TriggerCondition     json.RawMessage `json:"trigger_condition"     db:"trigger_condition"`
	AdjustableThresholds json.RawMessage `json:"adjustable_thresholds" db:"adjustable_thresholds"`
	DefaultThresholds    json.RawMessage `json:"default_thresholds"    db:"default_thresholds"`
	AlertTitle           string          `json:"alert_title"           db:"alert_title"`
	AlertDescription     string          `json:"alert_description"     db:"alert_description"`
	SuggestedAction      string          `json:"suggested_action"      db:"suggested_action"`
	DataSource           string          `json:"data_source"           db:"data_source"`
	BusinessRationale    string          `json:"business_rationale"    db:"business_rationale"`
	CreatedAt            time.Time       `json:"created_at"            db:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"            db:"updated_at"`
}

// DefaultConfidenceThreshold applies when an AI rule does not configure one.
const DefaultConfidenceThreshold = 0.7

// Default pattern window parameters for pattern_over_time rules.
const (
	DefaultPatternWindowDays = 7
	DefaultPatternThreshold  = 3
)

// TriggerCondition is the parsed form of a logic rule's condition JSON.
type TriggerCondition struct {
	Field            string            `json:"field"`
	Operator         ConditionOperator `json:"operator"`
	Value            ConditionValue    `json:"value"`
	PatternType      PatternType       `json:"patternType"`
	PatternWindow    int               `json:"patternWindow"`
	PatternThreshold int               `json:"patternThreshold"`
}

// ConditionValue accepts either a JSON string or number, the two value
// shapes rule authors use.
type ConditionValue struct {
	Str string
	Num float64
}

// UnmarshalJSON accepts a string, a number, or null.
func (v *ConditionValue) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" || s == "" {
		return nil
	}
	if s[0] == '"' {
		return json.Unmarshal(data, &v.Str)
	}
	if err := json.Unmarshal(data, &v.Num); err != nil {
		return err
	}
	return nil
}

// MarshalJSON writes the string form when set, the number otherwise.
func (v ConditionValue) MarshalJSON() ([]byte, error) {
	if v.Str != "" {
		return json.Marshal(v.Str)
	}
	return json.Marshal(v.Num)
}

// Int returns the numeric value, accepting numbers authored as strings.
func (v ConditionValue) Int() int {
	if v.Str != "" {
		var n float64
		if err := json.Unmarshal([]byte(v.Str), &n); err == nil {
			return int(n)
		}
		return 0
	}
	return int(v.Num)
}

// Condition parses the rule's trigger condition. The second return is
// false when the JSON is missing or malformed.
func (r *Rule) Condition() (*TriggerCondition, bool) {
	if len(r.TriggerCondition) == 0 {
		return nil, false
	}
	var c TriggerCondition
	if err := json.Unmarshal(r.TriggerCondition, &c); err != nil {
		return nil, false
	}
	if c.Field == "" && c.Operator == "" {
		return nil, false
	}
	if c.PatternType == "" {
		c.PatternType = PatternImmediate
	}
	if c.PatternType == PatternOverTime {
		if c.PatternWindow <= 0 {
			c.PatternWindow = DefaultPatternWindowDays
		}
		if c.PatternThreshold <= 0 {
			c.PatternThreshold = DefaultPatternThreshold
		}
	}
	return &c, true
}

// ruleThresholds is the shape shared by the adjustable and default
// threshold columns.
type ruleThresholds struct {
	ConfidenceThreshold *float64 `json:"confidenceThreshold"`
	DetectionPatterns   []string `json:"detectionPatterns"`
}

func (r *Rule) thresholds() ruleThresholds {
	var t ruleThresholds
	if len(r.AdjustableThresholds) > 0 {
		if err := json.Unmarshal(r.AdjustableThresholds, &t); err == nil {
			if t.ConfidenceThreshold != nil || len(t.DetectionPatterns) > 0 {
				return t
			}
		}
	}
	t = ruleThresholds{}
	if len(r.DefaultThresholds) > 0 {
		_ = json.Unmarshal(r.DefaultThresholds, &t)
	}
	return t
}

// ConfidenceThreshold returns the minimum AI confidence for this rule to
// fire, preferring the adjustable thresholds over the defaults.
func (r *Rule) ConfidenceThreshold() float64 {
	t := r.thresholds()
	if t.ConfidenceThreshold != nil && *t.ConfidenceThreshold > 0 {
		return *t.ConfidenceThreshold
	}
	return DefaultConfidenceThreshold
}

// DetectionPatterns returns the free-text signals the classifier looks for.
func (r *Rule) DetectionPatterns() []string {
	return r.thresholds().DetectionPatterns
}

// PatternState tracks rolling-window occurrences for one (pairing, rule).
type PatternState struct {
	ID          string    `json:"id"           db:"id"`
	PairingID   string    `json:"pairing_id"   db:"pairing_id"`
	RuleID      string    `json:"rule_id"      db:"rule_id"`
	Occurrences int       `json:"occurrences"  db:"occurrences"`
	WindowStart int64     `json:"window_start" db:"window_start"`
	WindowEnd   int64     `json:"window_end"   db:"window_end"`
	WindowDays  int       `json:"window_days"  db:"window_days"`
	UpdatedAt   time.Time `json:"updated_at"   db:"updated_at"`
}

// Alert is a deduplicated rule firing awaiting operations follow-up.
type Alert struct {
	ID          string          `json:"id"                    db:"id"`
	PairingID   string          `json:"pairing_id"            db:"pairing_id"`
	RuleID      string          `json:"rule_id"               db:"rule_id"`
	Title       string          `json:"title"                 db:"title"`
	Description string          `json:"description"           db:"description"`
	Severity    Severity        `json:"severity"              db:"severity"`
	Status      AlertStatus     `json:"status"                db:"status"`
	AssignedTo  *string         `json:"assigned_to,omitempty" db:"assigned_to"`
	DetectedAt  int64           `json:"detected_at"           db:"detected_at"`
	ResolvedAt  *int64          `json:"resolved_at,omitempty" db:"resolved_at"`
	Evidence    json.RawMessage `json:"evidence,omitempty"    db:"evidence"`
	Notes       string          `json:"notes,omitempty"       db:"notes"`
}

// Open reports whether the alert still needs attention.
func (a *Alert) Open() bool {
	return a.Status != AlertResolved
}

// Evidence explains why a rule fired.
type Evidence struct {
	Confidence  *float64 `json:"confidence,omitempty"`
	Reasoning   string   `json:"reasoning,omitempty"`
	Quotes      []string `json:"quotes,omitempty"`
	Occurrences *int     `json:"occurrences,omitempty"`
}

// PTORecord is a scheduled absence for the EA of a pairing.
type PTORecord struct {
	ID        string    `json:"id"         db:"id"`
	PairingID string    `json:"pairing_id" db:"pairing_id"`
	StartDate int64     `json:"start_date" db:"start_date"`
	EndDate   int64     `json:"end_date"   db:"end_date"`
	Reason    PTOReason `json:"reason"     db:"reason"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Covers reports whether the record spans the given unix-seconds date.
func (p *PTORecord) Covers(date int64) bool {
	return p.StartDate <= date && date <= p.EndDate
}

// RuleEvaluation is the outcome of evaluating one rule against one report.
type RuleEvaluation struct {
	RuleID     string    `json:"rule_id"`
	RuleName   string    `json:"rule_name"`
	Fired      bool      `json:"fired"`
	Suppressed bool      `json:"suppressed"`
	Severity   Severity  `json:"severity"`
	Evidence   *Evidence `json:"evidence,omitempty"`
}

// AIDetection is one rule's result from a batched classifier call.
type AIDetection struct {
	RuleID     string   `json:"ruleId"`
	Detected   bool     `json:"detected"`
	Confidence float64  `json:"confidence"`
	Evidence   []string `json:"evidence,omitempty"`
	Reasoning  string   `json:"reasoning,omitempty"`
}

// HealthResult is a computed traffic-light status with its justification.
type HealthResult struct {
	Status       HealthStatus `json:"status"`
	Reason       string       `json:"reason"`
	IsOverride   bool         `json:"is_override"`
	CalculatedAt time.Time    `json:"calculated_at"`
}

// SystemState holds aggregate counts for the operations dashboard.
type SystemState struct {
	PairingsTotal     int `json:"pairings_total"      db:"pairings_total"`
	ReportsTotal      int `json:"reports_total"       db:"reports_total"`
	RulesTotal        int `json:"rules_total"         db:"rules_total"`
	RulesEnabled      int `json:"rules_enabled"       db:"rules_enabled"`
	AlertsOpen        int `json:"alerts_open"         db:"alerts_open"`
	AlertsTotal       int `json:"alerts_total"        db:"alerts_total"`
	PatternStates     int `json:"pattern_states"      db:"pattern_states"`
	PTORecordsActive  int `json:"pto_records_active"  db:"pto_records_active"`
}