package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"lexver/internal/store"
)

var importCmd = &cobra.Command{
	Use:   "import <snapshot.yaml>...",
	Short: "Import yearly snapshot files into the corpus database",
	Long: `Load one or more YAML snapshot files into the corpus database. Each
file carries one year: the provision rows, optional reference and
amendment edges, and optional pre-computed change records.

When a snapshot carries no change records, they are derived against the
closest earlier year already in the database, so files should be
imported in ascending year order.

Examples:
  lexver import snapshots/1993.yaml
  lexver import snapshots/*.yaml`,
	Args: cobra.MinimumNArgs(1),
	Run:  runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) {
	logger := newLogger("human")

	workDir := mustGetWorkDir()
	db := mustGetDB(workDir, logger)
	ctx := newContext()

	for _, path := range args {
		snap, err := store.LoadSnapshot(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", path, err)
			os.Exit(1)
		}
		if err := db.ImportSnapshot(ctx, snap); err != nil {
			fmt.Fprintf(os.Stderr, "Error importing %s: %v\n", path, err)
			os.Exit(1)
		}
		fmt.Printf("Imported %s: year %d, %d rows\n", path, snap.Year, len(snap.Rows))
	}
}
