package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"lexver/internal/config"
	"lexver/internal/store"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize lexver configuration",
	Long:  "Creates a .lexver/ directory with default configuration and an empty corpus database in the current directory",
	RunE:  runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Force reinitialization (removes existing .lexver directory)")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	logger := newLogger("human")

	workDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}

	lexverDir := filepath.Join(workDir, ".lexver")
	if _, statErr := os.Stat(lexverDir); statErr == nil {
		if !initForce {
			// Idempotent behavior: already initialized is success (CI-friendly)
			fmt.Println("lexver already initialized.")
			fmt.Printf("Configuration at: %s\n", filepath.Join(lexverDir, "config.json"))
			fmt.Println("\nRun 'lexver init --force' to reinitialize.")
			return nil
		}
		if removeErr := os.RemoveAll(lexverDir); removeErr != nil {
			return fmt.Errorf("failed to remove existing .lexver directory: %w", removeErr)
		}
		logger.Info("Removed existing .lexver directory", nil)
	}

	cfg := config.DefaultConfig()
	if err := cfg.Save(workDir); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	db, err := store.Open(cfg.DatabasePath(workDir), logger)
	if err != nil {
		return fmt.Errorf("failed to create corpus database: %w", err)
	}
	defer db.Close()

	logger.Info("lexver initialized", map[string]interface{}{
		"config_path": filepath.Join(lexverDir, "config.json"),
		"db_path":     cfg.DatabasePath(workDir),
	})

	fmt.Println("lexver initialized successfully!")
	fmt.Printf("Configuration written to: %s\n", filepath.Join(lexverDir, "config.json"))
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Run 'lexver import <snapshot.yaml>' to load yearly snapshots")
	fmt.Println("  2. Run 'lexver compare <provisionId> --year-old=Y1 --year-new=Y2'")

	return nil
}
