package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"lexver/internal/engine"
	"lexver/internal/export"
)

var (
	exportOutput string

	exportCompareYearOld     int
	exportCompareYearNew     int
	exportCompareGranularity string

	exportImpactYear  int
	exportImpactDepth int

	exportConstScope     string
	exportConstYearStart int
	exportConstYearEnd   int
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Run an analysis and write the result as a gzip JSON archive",
}

var exportCompareCmd = &cobra.Command{
	Use:   "compare <provisionId>",
	Short: "Export a hierarchical diff",
	Long: `Run compare and write the full diff tree gzip-compressed.

Example:
  lexver export compare /t18/s922 --year-old=1994 --year-new=2024 --output=diff-s922`,
	Args: cobra.ExactArgs(1),
	Run:  runExportCompare,
}

var exportImpactCmd = &cobra.Command{
	Use:   "impact <provisionId>",
	Short: "Export an impact radius",
	Args:  cobra.ExactArgs(1),
	Run:   runExportImpact,
}

var exportConstellationCmd = &cobra.Command{
	Use:   "constellation",
	Short: "Export change constellations",
	Run:   runExportConstellation,
}

func init() {
	exportCmd.PersistentFlags().StringVar(&exportOutput, "output", "", "Archive path (required)")
	exportCmd.MarkPersistentFlagRequired("output")

	exportCompareCmd.Flags().IntVar(&exportCompareYearOld, "year-old", 0, "Earlier snapshot year (required)")
	exportCompareCmd.Flags().IntVar(&exportCompareYearNew, "year-new", 0, "Later snapshot year (required)")
	exportCompareCmd.Flags().StringVar(&exportCompareGranularity, "granularity", "", "Inline diff granularity (word, sentence)")
	exportCompareCmd.MarkFlagRequired("year-old")
	exportCompareCmd.MarkFlagRequired("year-new")

	exportImpactCmd.Flags().IntVar(&exportImpactYear, "year", 0, "Snapshot year (required)")
	exportImpactCmd.Flags().IntVar(&exportImpactDepth, "depth", 0, "Traversal depth 1-3 (default from config)")
	exportImpactCmd.MarkFlagRequired("year")

	exportConstellationCmd.Flags().StringVar(&exportConstScope, "scope", "", "Restrict to one provision subtree")
	exportConstellationCmd.Flags().IntVar(&exportConstYearStart, "year-start", 0, "First year, inclusive (required)")
	exportConstellationCmd.Flags().IntVar(&exportConstYearEnd, "year-end", 0, "Last year, inclusive (required)")
	exportConstellationCmd.MarkFlagRequired("year-start")
	exportConstellationCmd.MarkFlagRequired("year-end")

	exportCmd.AddCommand(exportCompareCmd)
	exportCmd.AddCommand(exportImpactCmd)
	exportCmd.AddCommand(exportConstellationCmd)
	rootCmd.AddCommand(exportCmd)
}

func runExportCompare(cmd *cobra.Command, args []string) {
	logger := newLogger("human")
	eng := mustGetEngine(mustGetWorkDir(), logger)

	response, err := eng.CompareHierarchical(newContext(), engine.CompareRequest{
		RootID:      args[0],
		YearOld:     exportCompareYearOld,
		YearNew:     exportCompareYearNew,
		Granularity: exportCompareGranularity,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error comparing provisions: %v\n", err)
		os.Exit(1)
	}
	writeExport(response)
}

func runExportImpact(cmd *cobra.Command, args []string) {
	logger := newLogger("human")
	eng := mustGetEngine(mustGetWorkDir(), logger)

	response, err := eng.ImpactRadius(newContext(), engine.RadiusRequest{
		SeedID: args[0],
		Year:   exportImpactYear,
		Depth:  exportImpactDepth,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error computing impact radius: %v\n", err)
		os.Exit(1)
	}
	writeExport(response)
}

func runExportConstellation(cmd *cobra.Command, args []string) {
	logger := newLogger("human")
	eng := mustGetEngine(mustGetWorkDir(), logger)

	response, err := eng.Constellation(newContext(), engine.ConstellationRequest{
		ScopeID:   exportConstScope,
		YearStart: exportConstYearStart,
		YearEnd:   exportConstYearEnd,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building constellations: %v\n", err)
		os.Exit(1)
	}
	writeExport(response)
}

func writeExport(response interface{}) {
	path, err := export.WriteArchiveFile(exportOutput, response)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error writing archive: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Archive written to %s\n", path)
}
