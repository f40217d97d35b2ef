package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	domain "github.com/eapulse/eapulse/pkg/types"
)

// tabWriter wraps tabwriter with error tracking.
type tabWriter struct {
	*tabwriter.Writer
	err error
}

func newTabWriter(w io.Writer) *tabWriter {
	return &tabWriter{Writer: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
}

func (tw *tabWriter) writef(format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.Writer, format, args...)
}

func (tw *tabWriter) finish() error {
	if tw.err != nil {
		return tw.err
	}
	return tw.Flush()
}

func printPairingTable(pairings []domain.Pairing) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("ID\tEA\tCLIENT\tOVERRIDE\n")
	for i := range pairings {
		override := "-"
		if pairings[i].HealthOverride != nil {
			override = string(*pairings[i].HealthOverride)
		}
		tw.writef("%s\t%s\t%s\t%s\n",
			pairings[i].ID,
			pairings[i].EAName,
			pairings[i].ClientName,
			override,
		)
	}
	return tw.finish()
}

func printPairingDetail(p *domain.Pairing) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("ID:\t%s\n", p.ID)
	tw.writef("EA:\t%s\n", p.EAName)
	tw.writef("Client:\t%s\n", p.ClientName)
	override := "-"
	if p.HealthOverride != nil {
		override = string(*p.HealthOverride)
	}
	tw.writef("Override:\t%s\n", override)
	tw.writef("Created:\t%s\n", p.CreatedAt.Format("2006-01-02 15:04:05"))
	return tw.finish()
}

func printHealthResult(h *domain.HealthResult) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("Status:\t%s\n", h.Status)
	tw.writef("Reason:\t%s\n", h.Reason)
	tw.writef("Override:\t%v\n", h.IsOverride)
	tw.writef("Calculated:\t%s\n", h.CalculatedAt.Format("2006-01-02 15:04:05"))
	return tw.finish()
}

func printReportTable(reports []domain.Report) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("ID\tDATE\tWORKLOAD\tSYNC\tWIN\n")
	for i := range reports {
		tw.writef("%s\t%s\t%s\t%v\t%s\n",
			reports[i].ID,
			unixDate(reports[i].ReportDate),
			reports[i].WorkloadFeeling,
			reports[i].HadDailySync,
			truncate(reports[i].BiggestWin, 40),
		)
	}
	return tw.finish()
}

func printReportDetail(r *domain.Report) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("ID:\t%s\n", r.ID)
	tw.writef("Pairing:\t%s\n", r.PairingID)
	tw.writef("Date:\t%s\n", unixDate(r.ReportDate))
	tw.writef("Workload:\t%s\n", r.WorkloadFeeling)
	tw.writef("Work Type:\t%s\n", r.WorkType)
	tw.writef("Feeling:\t%s\n", r.FeelingDuringWork)
	tw.writef("Daily Sync:\t%v\n", r.HadDailySync)
	tw.writef("Biggest Win:\t%s\n", r.BiggestWin)
	tw.writef("Completed:\t%s\n", r.WhatCompleted)
	tw.writef("Pending:\t%s\n", r.PendingTasks)
	tw.writef("Difficulties:\t%s\n", r.Difficulties)
	tw.writef("Support:\t%s\n", r.SupportNeeded)
	tw.writef("Notes:\t%s\n", r.AdditionalNotes)
	return tw.finish()
}

func printEvaluationTable(evals []domain.RuleEvaluation) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("RULE\tFIRED\tSUPPRESSED\tSEVERITY\n")
	for i := range evals {
		tw.writef("%s\t%v\t%v\t%s\n",
			evals[i].RuleName,
			evals[i].Fired,
			evals[i].Suppressed,
			evals[i].Severity,
		)
	}
	return tw.finish()
}

func printRuleTable(rules []domain.Rule) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("ID\t#\tNAME\tTYPE\tSEVERITY\tENABLED\n")
	for i := range rules {
		tw.writef("%s\t%d\t%s\t%s\t%s\t%v\n",
			rules[i].ID,
			rules[i].RuleNumber,
			rules[i].Name,
			rules[i].RuleType,
			rules[i].Severity,
			rules[i].Enabled,
		)
	}
	return tw.finish()
}

func printRuleDetail(r *domain.Rule) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("ID:\t%s\n", r.ID)
	tw.writef("Number:\t%d\n", r.RuleNumber)
	tw.writef("Name:\t%s\n", r.Name)
	tw.writef("Type:\t%s\n", r.RuleType)
	tw.writef("Severity:\t%s\n", r.Severity)
	tw.writef("Enabled:\t%v\n", r.Enabled)
	tw.writef("Condition:\t%s\n", string(r.TriggerCondition))
	tw.writef("Thresholds:\t%s\n", string(r.AdjustableThresholds))
	tw.writef("Title:\t%s\n", r.AlertTitle)
	tw.writef("Action:\t%s\n", r.SuggestedAction)
	return tw.finish()
}

func printAlertTable(alerts []domain.Alert) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("ID\tTITLE\tSEVERITY\tSTATUS\tASSIGNED\tDETECTED\n")
	for i := range alerts {
		assigned := "-"
		if alerts[i].AssignedTo != nil {
			assigned = *alerts[i].AssignedTo
		}
		tw.writef("%s\t%s\t%s\t%s\t%s\t%s\n",
			alerts[i].ID,
			truncate(alerts[i].Title, 40),
			alerts[i].Severity,
			alerts[i].Status,
			assigned,
			unixDate(alerts[i].DetectedAt),
		)
	}
	return tw.finish()
}

func printAlertDetail(a *domain.Alert) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("ID:\t%s\n", a.ID)
	tw.writef("Pairing:\t%s\n", a.PairingID)
	tw.writef("Rule:\t%s\n", a.RuleID)
	tw.writef("Title:\t%s\n", a.Title)
	tw.writef("Description:\t%s\n", a.Description)
	tw.writef("Severity:\t%s\n", a.Severity)
	tw.writef("Status:\t%s\n", a.Status)
	assigned := "-"
	if a.AssignedTo != nil {
		assigned = *a.AssignedTo
	}
	tw.writef("Assigned:\t%s\n", assigned)
	tw.writef("Detected:\t%s\n", unixDate(a.DetectedAt))
	if a.ResolvedAt != nil {
		tw.writef("Resolved:\t%s\n", unixDate(*a.ResolvedAt))
	}
	if len(a.Evidence) > 0 {
		tw.writef("Evidence:\t%s\n", string(a.Evidence))
	}
	if a.Notes != "" {
		tw.writef("Notes:\t%s\n", a.Notes)
	}
	return tw.finish()
}

func printPTOTable(records []domain.PTORecord) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("ID\tSTART\tEND\tREASON\n")
	for i := range records {
		tw.writef("%s\t%s\t%s\t%s\n",
			records[i].ID,
			unixDate(records[i].StartDate),
			unixDate(records[i].EndDate),
			records[i].Reason,
		)
	}
	return tw.finish()
}

func printSystemState(s *domain.SystemState) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("Pairings:\t%d\n", s.PairingsTotal)
	tw.writef("Reports:\t%d\n", s.ReportsTotal)
	tw.writef("Rules:\t%d (%d enabled)\n", s.RulesTotal, s.RulesEnabled)
	tw.writef("Alerts:\t%d (%d open)\n", s.AlertsTotal, s.AlertsOpen)
	tw.writef("Pattern States:\t%d\n", s.PatternStates)
	tw.writef("Active PTO:\t%d\n", s.PTORecordsActive)
	return tw.finish()
}

func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func unixDate(ts int64) string {
	return time.Unix(ts, 0).UTC().Format("2006-01-02")
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
