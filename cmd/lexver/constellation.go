package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"lexver/internal/engine"
)

var (
	constScope        string
	constSection      string
	constYearStart    int
	constYearEnd      int
	constChangeTypes  string
	constMinMagnitude float64
	constFormat       string
)

var constellationCmd = &cobra.Command{
	Use:   "constellation",
	Short: "Cluster changes by year and enclosing parent",
	Long: `Group change records over a year range into constellations: provisions
changed in the same year under the same enclosing parent. The grouping
is purely structural and deterministic.

Examples:
  lexver constellation --year-start=1990 --year-end=2000
  lexver constellation --scope=/t18/s922 --year-start=1990 --year-end=2000
  lexver constellation --section=922 --types=added,removed --min-magnitude=0.5 --year-start=1990 --year-end=2000`,
	Run: runConstellation,
}

func init() {
	constellationCmd.Flags().StringVar(&constScope, "scope", "", "Restrict to one provision subtree")
	constellationCmd.Flags().StringVar(&constSection, "section", "", "Restrict to ids containing this section number")
	constellationCmd.Flags().IntVar(&constYearStart, "year-start", 0, "First year, inclusive (required)")
	constellationCmd.Flags().IntVar(&constYearEnd, "year-end", 0, "Last year, inclusive (required)")
	constellationCmd.Flags().StringVar(&constChangeTypes, "types", "", "Comma-separated change types (added,removed,modified)")
	constellationCmd.Flags().Float64Var(&constMinMagnitude, "min-magnitude", 0, "Minimum change magnitude")
	constellationCmd.Flags().StringVar(&constFormat, "format", "json", "Output format (json, human)")
	constellationCmd.MarkFlagRequired("year-start")
	constellationCmd.MarkFlagRequired("year-end")

	rootCmd.AddCommand(constellationCmd)
}

func runConstellation(cmd *cobra.Command, args []string) {
	logger := newLogger(constFormat)

	workDir := mustGetWorkDir()
	eng := mustGetEngine(workDir, logger)
	ctx := newContext()

	response, err := eng.Constellation(ctx, engine.ConstellationRequest{
		ScopeID:      constScope,
		SectionNum:   constSection,
		YearStart:    constYearStart,
		YearEnd:      constYearEnd,
		ChangeTypes:  splitTypes(constChangeTypes),
		MinMagnitude: constMinMagnitude,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building constellations: %v\n", err)
		os.Exit(1)
	}

	output, err := FormatResponse(response, OutputFormat(constFormat))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(output)
}

func splitTypes(s string) []string {
	if s == "" {
		return nil
	}
	var types []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			types = append(types, t)
		}
	}
	return types
}
