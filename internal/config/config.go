// Package config loads and validates lexver configuration from
// .lexver/config.json under the working directory.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config represents the complete lexver configuration.
type Config struct {
	Version int `json:"version" mapstructure:"version"`

	Database  DatabaseConfig  `json:"database" mapstructure:"database"`
	Diff      DiffConfig      `json:"diff" mapstructure:"diff"`
	Traversal TraversalConfig `json:"traversal" mapstructure:"traversal"`
	Logging   LoggingConfig   `json:"logging" mapstructure:"logging"`
}

// DatabaseConfig locates the corpus database.
type DatabaseConfig struct {
	// Path is relative to the .lexver directory unless absolute.
	Path string `json:"path" mapstructure:"path"`
}

// DiffConfig bounds the hierarchical diff path.
type DiffConfig struct {
	// DefaultGranularity is the inline-diff tokenization used when the
	// caller does not pass one ("word" or "sentence").
	DefaultGranularity string `json:"defaultGranularity" mapstructure:"defaultGranularity"`
	// MaxTreeRows caps the subtree size accepted by compare. The diff is
	// not interruptible mid-recursion, so the cap is checked up front.
	MaxTreeRows int `json:"maxTreeRows" mapstructure:"maxTreeRows"`
}

// TraversalConfig bounds the impact-radius path.
type TraversalConfig struct {
	// MaxDepth is the upper bound accepted for the depth parameter.
	MaxDepth int `json:"maxDepth" mapstructure:"maxDepth"`
	// DefaultDepth is used when the caller passes zero.
	DefaultDepth int `json:"defaultDepth" mapstructure:"defaultDepth"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format"`
	Level  string `json:"level" mapstructure:"level"`
}

const currentConfigVersion = 1

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Version: currentConfigVersion,
		Database: DatabaseConfig{
			Path: "corpus.db",
		},
		Diff: DiffConfig{
			DefaultGranularity: "word",
			MaxTreeRows:        20000,
		},
		Traversal: TraversalConfig{
			MaxDepth:     3,
			DefaultDepth: 1,
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
	}
}

// LoadConfig loads configuration from .lexver/config.json, falling back
// to defaults when no config file exists.
func LoadConfig(workDir string) (*Config, error) {
	v := viper.New()

	def := DefaultConfig()
	v.SetDefault("version", def.Version)
	v.SetDefault("database.path", def.Database.Path)
	v.SetDefault("diff.defaultGranularity", def.Diff.DefaultGranularity)
	v.SetDefault("diff.maxTreeRows", def.Diff.MaxTreeRows)
	v.SetDefault("traversal.maxDepth", def.Traversal.MaxDepth)
	v.SetDefault("traversal.defaultDepth", def.Traversal.DefaultDepth)
	v.SetDefault("logging.format", def.Logging.Format)
	v.SetDefault("logging.level", def.Logging.Level)

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(workDir, ".lexver"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return def, nil
		}
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the configuration to .lexver/config.json.
func (c *Config) Save(workDir string) error {
	dir := filepath.Join(workDir, ".lexver")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0644)
}

// Validate checks if the configuration is usable.
func (c *Config) Validate() error {
	if c.Version != currentConfigVersion {
		return &ConfigError{Field: "version", Message: "unsupported config version"}
	}
	if g := c.Diff.DefaultGranularity; g != "word" && g != "sentence" {
		return &ConfigError{Field: "diff.defaultGranularity", Message: "must be word or sentence"}
	}
	if c.Traversal.MaxDepth < 1 || c.Traversal.MaxDepth > 3 {
		return &ConfigError{Field: "traversal.maxDepth", Message: "must be between 1 and 3"}
	}
	if c.Traversal.DefaultDepth < 1 || c.Traversal.DefaultDepth > c.Traversal.MaxDepth {
		return &ConfigError{Field: "traversal.defaultDepth", Message: "must be between 1 and maxDepth"}
	}
	if c.Diff.MaxTreeRows <= 0 {
		return &ConfigError{Field: "diff.maxTreeRows", Message: "must be positive"}
	}
	return nil
}

// DatabasePath resolves the configured database path against workDir.
func (c *Config) DatabasePath(workDir string) string {
	if filepath.IsAbs(c.Database.Path) {
		return c.Database.Path
	}
	return filepath.Join(workDir, ".lexver", c.Database.Path)
}

// ConfigError represents a configuration error.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
