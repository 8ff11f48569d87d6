package main

import (
	"lexver/internal/version"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "lexver",
	Short: "lexver - legal corpus version analytics",
	Long: `lexver analyzes how a hierarchically structured legal text corpus
evolves across yearly snapshots: hierarchical version diffs with
token-level inline highlighting, bounded impact-radius traversals over
the provision graph, and deterministic change-constellation clustering.`,
	Version: version.Version,
}

func init() {
	rootCmd.SetVersionTemplate("lexver version {{.Version}}\n")
}
