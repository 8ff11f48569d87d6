package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"lexver/internal/engine"
)

var (
	summaryScope     string
	summaryYearStart int
	summaryYearEnd   int
	summaryFormat    string
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Summarize changes per year",
	Long: `Aggregate change records per snapshot year: counts per change type and
the net character delta, optionally restricted to one subtree.

Examples:
  lexver summary --year-start=1990 --year-end=2000
  lexver summary --scope=/t18/s922 --year-start=1990 --year-end=2000`,
	Run: runSummary,
}

func init() {
	summaryCmd.Flags().StringVar(&summaryScope, "scope", "", "Restrict to one provision subtree")
	summaryCmd.Flags().IntVar(&summaryYearStart, "year-start", 0, "First year, inclusive (required)")
	summaryCmd.Flags().IntVar(&summaryYearEnd, "year-end", 0, "Last year, inclusive (required)")
	summaryCmd.Flags().StringVar(&summaryFormat, "format", "json", "Output format (json, human)")
	summaryCmd.MarkFlagRequired("year-start")
	summaryCmd.MarkFlagRequired("year-end")

	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, args []string) {
	logger := newLogger(summaryFormat)

	workDir := mustGetWorkDir()
	eng := mustGetEngine(workDir, logger)
	ctx := newContext()

	response, err := eng.ChangeSummary(ctx, engine.SummaryRequest{
		ScopeID:   summaryScope,
		YearStart: summaryYearStart,
		YearEnd:   summaryYearEnd,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error summarizing changes: %v\n", err)
		os.Exit(1)
	}

	output, err := FormatResponse(response, OutputFormat(summaryFormat))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(output)
}
