package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"lexver/internal/engine"
)

var (
	compareYearOld     int
	compareYearNew     int
	compareGranularity string
	compareFormat      string
)

var compareCmd = &cobra.Command{
	Use:   "compare <provisionId>",
	Short: "Diff a provision subtree between two snapshot years",
	Long: `Compare the hierarchy rooted at a provision id between two snapshot
years. Every node in the union of both years is classified as unchanged,
modified, added, or removed; modified leaves carry a token-level inline
diff at word or sentence granularity.

Examples:
  lexver compare /t18/s922 --year-old=1994 --year-new=2024
  lexver compare /t18/s922/a --year-old=1994 --year-new=2024 --granularity=sentence`,
	Args: cobra.ExactArgs(1),
	Run:  runCompare,
}

func init() {
	compareCmd.Flags().IntVar(&compareYearOld, "year-old", 0, "Earlier snapshot year (required)")
	compareCmd.Flags().IntVar(&compareYearNew, "year-new", 0, "Later snapshot year (required)")
	compareCmd.Flags().StringVar(&compareGranularity, "granularity", "", "Inline diff granularity (word, sentence)")
	compareCmd.Flags().StringVar(&compareFormat, "format", "json", "Output format (json, human)")
	compareCmd.MarkFlagRequired("year-old")
	compareCmd.MarkFlagRequired("year-new")

	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) {
	logger := newLogger(compareFormat)

	workDir := mustGetWorkDir()
	eng := mustGetEngine(workDir, logger)
	ctx := newContext()

	response, err := eng.CompareHierarchical(ctx, engine.CompareRequest{
		RootID:      args[0],
		YearOld:     compareYearOld,
		YearNew:     compareYearNew,
		Granularity: compareGranularity,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error comparing provisions: %v\n", err)
		os.Exit(1)
	}

	output, err := FormatResponse(response, OutputFormat(compareFormat))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(output)
}
