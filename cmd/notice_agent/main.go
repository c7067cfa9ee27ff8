// Package main provides the entry point for the notice ingestion agent CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "notice_agent",
	Short: "Campus notice ingestion agent",
	Long:  "Notice agent scans a campus notice board, deduplicates notices by content fingerprint, extracts structured fields with Gemini, persists them to Firestore and publishes topic alerts.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
