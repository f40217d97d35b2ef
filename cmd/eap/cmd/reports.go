package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	domain "github.com/eapulse/eapulse/pkg/types"
)

func reportsCmd() *cobra.Command {
	reportsRoot := &cobra.Command{
		Use:   "reports",
		Short: "Submit and inspect daily reports",
	}

	reportsRoot.AddCommand(
		reportsSubmitCmd(),
		reportsGetCmd(),
		reportsListCmd(),
		reportsEvaluateCmd(),
	)

	return reportsRoot
}

func reportsSubmitCmd() *cobra.Command {
	var (
		pairingID  string
		date       string
		workload   string
		workType   string
		feeling    string
		hadSync    bool
		biggestWin string
		completed  string
		pending    string
		difficulty string
		support    string
		notes      string
	)

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a daily report",
		Example: `  eap reports submit --pairing abc123 --workload MODERATE --sync \
    --win "Closed the quarterly books" --completed "Invoices, inbox zero"`,
		RunE: func(_ *cobra.Command, _ []string) error {
			report := domain.Report{
				PairingID:         pairingID,
				WorkloadFeeling:   domain.WorkloadFeeling(workload),
				WorkType:          domain.WorkType(workType),
				FeelingDuringWork: domain.FeelingDuringWork(feeling),
				HadDailySync:      hadSync,
				BiggestWin:        biggestWin,
				WhatCompleted:     completed,
				PendingTasks:      pending,
				Difficulties:      difficulty,
				SupportNeeded:     support,
				AdditionalNotes:   notes,
			}

			if date != "" {
				d, err := time.Parse("2006-01-02", date)
				if err != nil {
					return fmt.Errorf("parsing --date: %w", err)
				}
				report.ReportDate = d.Unix()
			}

			c := newClient()
			created, err := c.SubmitReport(context.Background(), report)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(created)
			}
			fmt.Printf("Report %s submitted for %s. Rule evaluation runs in the background.\n",
				created.ID, unixDate(created.ReportDate))
			return nil
		},
	}

	cmd.Flags().StringVar(&pairingID, "pairing", "", "pairing ID (required)")
	cmd.Flags().StringVar(&date, "date", "", "report date YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&workload, "workload", "MODERATE", "workload feeling (LIGHT, MODERATE, HEAVY, OVERWHELMING)")
	cmd.Flags().StringVar(&workType, "work-type", "", "dominant work type")
	cmd.Flags().StringVar(&feeling, "feeling", "", "feeling during work")
	cmd.Flags().BoolVar(&hadSync, "sync", false, "had the daily sync")
	cmd.Flags().StringVar(&biggestWin, "win", "", "biggest win")
	cmd.Flags().StringVar(&completed, "completed", "", "what was completed")
	cmd.Flags().StringVar(&pending, "pending", "", "pending tasks")
	cmd.Flags().StringVar(&difficulty, "difficulties", "", "difficulties encountered")
	cmd.Flags().StringVar(&support, "support", "", "support needed")
	cmd.Flags().StringVar(&notes, "notes", "", "additional notes")
	cobra.CheckErr(cmd.MarkFlagRequired("pairing"))

	return cmd
}

func reportsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show report details",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			c := newClient()
			r, err := c.GetReport(context.Background(), args[0])
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(r)
			}
			return printReportDetail(r)
		},
	}
}

func reportsListCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list <pairing-id>",
		Short: "List a pairing's reports, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			c := newClient()
			reports, err := c.ListPairingReports(context.Background(), args[0], limit)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(reports)
			}
			if len(reports) == 0 {
				fmt.Println("No reports found.")
				return nil
			}
			return printReportTable(reports)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "max reports to return")

	return cmd
}

func reportsEvaluateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "evaluate <id>",
		Short: "Re-run rule evaluation for a report",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			c := newClient()
			evals, err := c.EvaluateReport(context.Background(), args[0])
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(evals)
			}
			if len(evals) == 0 {
				fmt.Println("No enabled rules.")
				return nil
			}
			return printEvaluationTable(evals)
		},
	}
}
