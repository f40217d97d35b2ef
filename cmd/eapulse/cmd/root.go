// Package cmd implements the CLI commands for the eapulse server.
package cmd

import (
	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "eapulse",
	Short: "Monitor EA/client pairings for risk signals",
	Long:  "An API-first service that evaluates daily EA reports against alert rules, tracks multi-day patterns, classifies free-text risk signals via LLM, and computes per-pairing health scores.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file path")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
