// Package main is the entry point for the eap CLI.
package main

import "github.com/eapulse/eapulse/cmd/eap/cmd"

func main() {
	cmd.Execute()
}
