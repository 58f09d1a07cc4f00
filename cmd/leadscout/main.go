// Package main provides the entry point for the leadscout CLI and HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "leadscout",
	Short: "Lead qualification and prompt optimization",
	Long:  "Leadscout qualifies and ranks sales leads against a persona, and improves its own ranking instructions with a beam search over prompt variants scored against a labeled dataset.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
