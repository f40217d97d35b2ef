// Package main is the entry point for the eapulse server.
package main

import (
	"os"

	"github.com/eapulse/eapulse/cmd/eapulse/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
