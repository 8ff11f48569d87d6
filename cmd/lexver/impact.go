package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"lexver/internal/engine"
)

var (
	impactYear       int
	impactDepth      int
	impactHierarchy  bool
	impactReferences bool
	impactAmendments bool
	impactFormat     string
)

var impactCmd = &cobra.Command{
	Use:   "impact <provisionId>",
	Short: "Compute the impact radius of a provision",
	Long: `Run a bounded breadth-first traversal from a seed provision over the
selected edge types. Hierarchy and reference edges stay within the
requested year; amendment edges cross to other snapshot years. Each
reached node carries its change record for its own year.

When no edge-type flag is given, all three are enabled.

Examples:
  lexver impact /t18/s922/d --year=2024 --depth=1 --references
  lexver impact /t18/s922 --year=2024 --depth=2`,
	Args: cobra.ExactArgs(1),
	Run:  runImpact,
}

func init() {
	impactCmd.Flags().IntVar(&impactYear, "year", 0, "Snapshot year (required)")
	impactCmd.Flags().IntVar(&impactDepth, "depth", 0, "Traversal depth 1-3 (default from config)")
	impactCmd.Flags().BoolVar(&impactHierarchy, "hierarchy", false, "Follow parent/child edges")
	impactCmd.Flags().BoolVar(&impactReferences, "references", false, "Follow cross-reference edges")
	impactCmd.Flags().BoolVar(&impactAmendments, "amendments", false, "Follow amendment edges across years")
	impactCmd.Flags().StringVar(&impactFormat, "format", "json", "Output format (json, human)")
	impactCmd.MarkFlagRequired("year")

	rootCmd.AddCommand(impactCmd)
}

func runImpact(cmd *cobra.Command, args []string) {
	logger := newLogger(impactFormat)

	workDir := mustGetWorkDir()
	eng := mustGetEngine(workDir, logger)
	ctx := newContext()

	response, err := eng.ImpactRadius(ctx, engine.RadiusRequest{
		SeedID:            args[0],
		Year:              impactYear,
		Depth:             impactDepth,
		IncludeHierarchy:  impactHierarchy,
		IncludeReferences: impactReferences,
		IncludeAmendments: impactAmendments,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error computing impact radius: %v\n", err)
		os.Exit(1)
	}

	output, err := FormatResponse(response, OutputFormat(impactFormat))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(output)
}
