// Package main provides the entry point for the evaluation agent CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "evalagent",
	Short: "Automated course-evaluation assistant",
	Long:  "evalagent completes pending course-evaluation questionnaires against the university evaluation portal using a selectable answering strategy.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
