package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	apiclient "github.com/eapulse/eapulse/internal/api/client"
)

func alertsCmd() *cobra.Command {
	alertsRoot := &cobra.Command{
		Use:   "alerts",
		Short: "Work the alert queue",
	}

	alertsRoot.AddCommand(
		alertsListCmd(),
		alertsGetCmd(),
		alertsStatusCmd(),
		alertsAssignCmd(),
	)

	return alertsRoot
}

func alertsListCmd() *cobra.Command {
	var (
		pairingID string
		severity  string
		status    string
		openOnly  bool
		limit     int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List alerts, newest first",
		Example: `  eap alerts list --open
  eap alerts list --pairing abc123 --severity CRITICAL`,
		RunE: func(_ *cobra.Command, _ []string) error {
			c := newClient()
			result, err := c.ListAlerts(context.Background(), apiclient.AlertFilter{
				PairingID: pairingID,
				Severity:  severity,
				Status:    status,
				OpenOnly:  openOnly,
				Limit:     limit,
			})
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(result)
			}
			if len(result.Alerts) == 0 {
				fmt.Println("No alerts found.")
				return nil
			}
			if err := printAlertTable(result.Alerts); err != nil {
				return err
			}
			fmt.Printf("\n%d of %d alert(s)\n", len(result.Alerts), result.Total)
			return nil
		},
	}

	cmd.Flags().StringVar(&pairingID, "pairing", "", "filter by pairing ID")
	cmd.Flags().StringVar(&severity, "severity", "", "filter by severity (CRITICAL, HIGH, MEDIUM, LOW)")
	cmd.Flags().StringVar(&status, "status", "", "filter by status (NEW, INVESTIGATING, WORKING_ON, RESOLVED)")
	cmd.Flags().BoolVar(&openOnly, "open", false, "only unresolved alerts")
	cmd.Flags().IntVar(&limit, "limit", 0, "max alerts to return")

	return cmd
}

func alertsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show alert details",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			c := newClient()
			a, err := c.GetAlert(context.Background(), args[0])
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(a)
			}
			return printAlertDetail(a)
		},
	}
}

func alertsStatusCmd() *cobra.Command {
	var notes string

	cmd := &cobra.Command{
		Use:   "status <id> <status>",
		Short: "Move an alert through its lifecycle",
		Example: `  eap alerts status abc123 INVESTIGATING
  eap alerts status abc123 RESOLVED --notes "Workload rebalanced with client"`,
		Args: cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			c := newClient()
			a, err := c.UpdateAlertStatus(context.Background(), args[0], args[1], notes)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(a)
			}
			fmt.Printf("Alert %s is now %s.\n", a.ID, a.Status)
			return nil
		},
	}

	cmd.Flags().StringVar(&notes, "notes", "", "follow-up notes")

	return cmd
}

func alertsAssignCmd() *cobra.Command {
	var unassign bool

	cmd := &cobra.Command{
		Use:   "assign <id> [assignee]",
		Short: "Assign or unassign an alert",
		Example: `  eap alerts assign abc123 sam
  eap alerts assign abc123 --unassign`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(_ *cobra.Command, args []string) error {
			c := newClient()

			if unassign {
				if err := c.AssignAlert(context.Background(), args[0], nil); err != nil {
					return err
				}
				fmt.Println("Alert unassigned.")
				return nil
			}

			if len(args) < 2 {
				return fmt.Errorf("assignee required unless --unassign is set")
			}
			assignee := args[1]
			if err := c.AssignAlert(context.Background(), args[0], &assignee); err != nil {
				return err
			}
			fmt.Printf("Alert assigned to %s.\n", assignee)
			return nil
		},
	}

	cmd.Flags().BoolVar(&unassign, "unassign", false, "clear the assignee")

	return cmd
}
