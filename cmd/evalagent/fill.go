package main

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"

	"github.com/spf13/cobra"

	"github.com/yuxuan/evalagent/internal/form"
	"github.com/yuxuan/evalagent/internal/schemas"
	"github.com/yuxuan/evalagent/internal/selection"
)

var fillCmd = &cobra.Command{
	Use:   "fill",
	Short: "Synthesize a submission payload from a questionnaire file",
	Long:  "Read a raw questionnaire record from a JSON file, synthesize the answer set offline, and write the shape-checked submission payload. Useful for inspecting what a strategy would submit.",
	RunE:  runFill,
}

var (
	fillInputFile  string
	fillOutputFile string
	fillStrategy   string
	fillSeed       int64
)

func init() {
	fillCmd.Flags().StringVarP(&fillInputFile, "in", "i", "", "Path to raw questionnaire JSON file (required)")
	fillCmd.Flags().StringVarP(&fillOutputFile, "out", "o", "", "Path to output payload JSON file (default: stdout)")
	fillCmd.Flags().StringVarP(&fillStrategy, "strategy", "s", "best", "Answer strategy: best, random, worst_passing, or worst")
	fillCmd.Flags().Int64Var(&fillSeed, "seed", 0, "RNG seed for the random strategy (0 uses the clock)")

	rootCmd.AddCommand(fillCmd)
}

func runFill(_ *cobra.Command, _ []string) error {
	if fillInputFile == "" {
		return fmt.Errorf("must provide --in")
	}

	strategy, err := selection.ParseStrategy(fillStrategy)
	if err != nil {
		return err
	}

	raw, err := os.ReadFile(fillInputFile)
	if err != nil {
		return fmt.Errorf("failed to read questionnaire file: %w", err)
	}

	var rng *rand.Rand
	if fillSeed != 0 {
		rng = rand.New(rand.NewSource(fillSeed))
	}

	payload, err := form.Fill(raw, strategy, rng)
	if err != nil {
		return err
	}

	encoded, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}
	if err := schemas.ValidateSubmission(encoded); err != nil {
		return fmt.Errorf("payload failed shape check: %w", err)
	}

	if fillOutputFile == "" {
		_, _ = fmt.Fprintln(os.Stdout, string(encoded))
		return nil
	}
	if err := os.WriteFile(fillOutputFile, encoded, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	_, _ = fmt.Fprintf(os.Stdout, "Output: %s (total score %d)\n", fillOutputFile, payload.Results[0].TotalScore)
	return nil
}
