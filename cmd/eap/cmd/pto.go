package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func ptoCmd() *cobra.Command {
	ptoRoot := &cobra.Command{
		Use:   "pto",
		Short: "Manage PTO records",
		Long: "Manage PTO records for pairings. Attendance rules are suppressed for\n" +
			"reports dated inside a covered range.",
	}

	ptoRoot.AddCommand(
		ptoAddCmd(),
		ptoListCmd(),
		ptoDeleteCmd(),
	)

	return ptoRoot
}

func ptoAddCmd() *cobra.Command {
	var (
		start  string
		end    string
		reason string
	)

	cmd := &cobra.Command{
		Use:     "add <pairing-id>",
		Short:   "Record an upcoming absence",
		Example: `  eap pto add abc123 --start 2026-09-07 --end 2026-09-11 --reason PTO`,
		Args:    cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			startDate, err := time.Parse("2006-01-02", start)
			if err != nil {
				return fmt.Errorf("parsing --start: %w", err)
			}
			endDate, err := time.Parse("2006-01-02", end)
			if err != nil {
				return fmt.Errorf("parsing --end: %w", err)
			}

			c := newClient()
			rec, err := c.CreatePTO(context.Background(), args[0], startDate.Unix(), endDate.Unix(), reason)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(rec)
			}
			fmt.Printf("PTO %s recorded: %s to %s (%s)\n",
				rec.ID, unixDate(rec.StartDate), unixDate(rec.EndDate), rec.Reason)
			return nil
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "first covered day YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&end, "end", "", "last covered day YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&reason, "reason", "", "reason (PTO, SICK, OTHER)")
	cobra.CheckErr(cmd.MarkFlagRequired("start"))
	cobra.CheckErr(cmd.MarkFlagRequired("end"))

	return cmd
}

func ptoListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <pairing-id>",
		Short: "List a pairing's PTO records",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			c := newClient()
			records, err := c.ListPTO(context.Background(), args[0])
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(records)
			}
			if len(records) == 0 {
				fmt.Println("No PTO records found.")
				return nil
			}
			return printPTOTable(records)
		},
	}
}

func ptoDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <pairing-id> <pto-id>",
		Short: "Delete a PTO record",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			c := newClient()
			if err := c.DeletePTO(context.Background(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Println("PTO record deleted.")
			return nil
		},
	}
}
