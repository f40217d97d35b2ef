package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	domain "github.com/eapulse/eapulse/pkg/types"
)

func pairingsCmd() *cobra.Command {
	pairingsRoot := &cobra.Command{
		Use:   "pairings",
		Short: "Manage EA/client pairings",
	}

	pairingsRoot.AddCommand(
		pairingsListCmd(),
		pairingsGetCmd(),
		pairingsCreateCmd(),
		pairingsDeleteCmd(),
		pairingsHealthCmd(),
		pairingsOverrideCmd(),
	)

	return pairingsRoot
}

func pairingsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all pairings",
		Example: `  eap pairings list
  eap pairings list --output json`,
		RunE: func(_ *cobra.Command, _ []string) error {
			c := newClient()
			pairings, err := c.ListPairings(context.Background())
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(pairings)
			}
			if len(pairings) == 0 {
				fmt.Println("No pairings found.")
				return nil
			}
			return printPairingTable(pairings)
		},
	}
}

func pairingsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show pairing details",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			c := newClient()
			p, err := c.GetPairing(context.Background(), args[0])
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(p)
			}
			return printPairingDetail(p)
		},
	}
}

func pairingsCreateCmd() *cobra.Command {
	var eaName, clientName string

	cmd := &cobra.Command{
		Use:     "create",
		Short:   "Register a new pairing",
		Example: `  eap pairings create --ea "Jordan Reyes" --client "Acme Corp"`,
		RunE: func(_ *cobra.Command, _ []string) error {
			c := newClient()
			p, err := c.CreatePairing(context.Background(), eaName, clientName)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(p)
			}
			fmt.Printf("Created pairing %s (%s / %s)\n", p.ID, p.EAName, p.ClientName)
			return nil
		},
	}

	cmd.Flags().StringVar(&eaName, "ea", "", "EA name (required)")
	cmd.Flags().StringVar(&clientName, "client", "", "client name (required)")
	cobra.CheckErr(cmd.MarkFlagRequired("ea"))
	cobra.CheckErr(cmd.MarkFlagRequired("client"))

	return cmd
}

func pairingsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a pairing",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			c := newClient()
			if err := c.DeletePairing(context.Background(), args[0]); err != nil {
				return err
			}
			fmt.Println("Pairing deleted.")
			return nil
		},
	}
}

func pairingsHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health <id>",
		Short: "Compute the pairing's health status",
		Example: `  eap pairings health abc123
  eap pairings health abc123 --output json`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			c := newClient()
			h, err := c.GetHealth(context.Background(), args[0])
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(h)
			}
			return printHealthResult(h)
		},
	}
}

func pairingsOverrideCmd() *cobra.Command {
	var clear bool

	cmd := &cobra.Command{
		Use:   "override <id> [status]",
		Short: "Pin or clear the pairing's health status",
		Example: `  eap pairings override abc123 RED
  eap pairings override abc123 --clear`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(_ *cobra.Command, args []string) error {
			c := newClient()

			if clear {
				if err := c.SetHealthOverride(context.Background(), args[0], nil); err != nil {
					return err
				}
				fmt.Println("Override cleared.")
				return nil
			}

			if len(args) < 2 {
				return fmt.Errorf("status required unless --clear is set")
			}
			status := args[1]
			switch domain.HealthStatus(status) {
			case domain.HealthGreen, domain.HealthYellow, domain.HealthRed:
			default:
				return fmt.Errorf("status must be GREEN, YELLOW or RED")
			}

			if err := c.SetHealthOverride(context.Background(), args[0], &status); err != nil {
				return err
			}
			fmt.Printf("Health pinned to %s.\n", status)
			return nil
		},
	}

	cmd.Flags().BoolVar(&clear, "clear", false, "clear the override")

	return cmd
}
