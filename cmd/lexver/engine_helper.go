package main

import (
	"context"
	"fmt"
	"os"
	"sync"

	"lexver/internal/config"
	"lexver/internal/engine"
	"lexver/internal/logging"
	"lexver/internal/store"
)

var (
	engineOnce   sync.Once
	sharedEngine *engine.Engine
	sharedDB     *store.DB
	engineErr    error
)

// getEngine returns a shared engine instance, lazily initialized on
// first use: config from .lexver/config.json, corpus database opened
// (and created) under the same directory.
func getEngine(workDir string, logger *logging.Logger) (*engine.Engine, error) {
	engineOnce.Do(func() {
		cfg, err := config.LoadConfig(workDir)
		if err != nil {
			logger.Warn("Failed to load config, using defaults", map[string]interface{}{
				"error": err.Error(),
			})
			cfg = config.DefaultConfig()
		}
		if err := cfg.Validate(); err != nil {
			engineErr = fmt.Errorf("invalid configuration: %w", err)
			return
		}

		db, err := store.Open(cfg.DatabasePath(workDir), logger)
		if err != nil {
			engineErr = fmt.Errorf("failed to open corpus database: %w", err)
			return
		}

		sharedDB = db
		sharedEngine = engine.New(db, cfg, logger)
	})

	return sharedEngine, engineErr
}

// mustGetEngine returns the shared engine or exits on error.
func mustGetEngine(workDir string, logger *logging.Logger) *engine.Engine {
	eng, err := getEngine(workDir, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing engine: %v\n", err)
		os.Exit(1)
	}
	return eng
}

// mustGetDB returns the shared database handle or exits on error.
// Used by commands that write (import) rather than query.
func mustGetDB(workDir string, logger *logging.Logger) *store.DB {
	if _, err := getEngine(workDir, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing store: %v\n", err)
		os.Exit(1)
	}
	return sharedDB
}

// getWorkDir returns the corpus working directory.
func getWorkDir() (string, error) {
	return os.Getwd()
}

// mustGetWorkDir returns the working directory or exits on error.
func mustGetWorkDir() string {
	workDir, err := getWorkDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return workDir
}

// newContext creates a new context for command execution.
func newContext() context.Context {
	return context.Background()
}

// newLogger creates a logger matching the output format.
func newLogger(format string) *logging.Logger {
	logFormat := logging.HumanFormat
	if format == "json" {
		logFormat = logging.JSONFormat
	}
	return logging.NewLogger(logging.Config{
		Format: logFormat,
		Level:  logging.InfoLevel,
	})
}
