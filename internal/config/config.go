// Package config provides configuration management for mcpsync using Viper.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/thoreinstein/mcpsync/internal/paths"
	"github.com/thoreinstein/mcpsync/pkg/fileutil"
)

// Config represents the top-level configuration structure.
type Config struct {
	Version        int      `mapstructure:"version" yaml:"version"`
	DefaultTargets []string `mapstructure:"default_targets" yaml:"default_targets"`
	ProjectDirs    []string `mapstructure:"project_dirs" yaml:"project_dirs"`
	Backup         Backup   `mapstructure:"backup" yaml:"backup"`
	Learning       Learning `mapstructure:"learning" yaml:"learning"`
}

// Backup holds snapshot retention settings.
type Backup struct {
	// RetentionCount is the number of snapshots to keep per target.
	// The most recent snapshot is always retained regardless of this value.
	RetentionCount int `mapstructure:"retention_count" yaml:"retention_count"`
}

// Learning holds preference learning settings.
type Learning struct {
	Enabled     bool `mapstructure:"enabled" yaml:"enabled"`
	AutoSuggest bool `mapstructure:"auto_suggest" yaml:"auto_suggest"`
	QuickDeploy bool `mapstructure:"quick_deploy" yaml:"quick_deploy"`
}

// Init initializes Viper with default configuration.
// Call this once at application startup before accessing config values.
func Init() {
	// Config file settings
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Search paths (in order of precedence)
	viper.AddConfigPath(".") // Current directory
	viper.AddConfigPath(paths.ConfigDir())

	// Environment variable support
	viper.SetEnvPrefix("MCPSYNC")
	viper.AutomaticEnv()

	// Defaults
	viper.SetDefault("version", 1)
	viper.SetDefault("default_targets", []string{paths.PlatformClaudeDesktop, paths.PlatformClaudeCode})
	viper.SetDefault("backup.retention_count", 10)
	viper.SetDefault("learning.enabled", true)
	viper.SetDefault("learning.auto_suggest", true)
	viper.SetDefault("learning.quick_deploy", true)
}

// Load reads the configuration file.
// If path is provided, it reads from that specific file.
// If path is empty, it searches in the default locations.
// Returns the loaded configuration or default values if no file is found (when path is empty).
func Load(path string) (*Config, error) {
	if path != "" {
		viper.SetConfigFile(path)
	}

	if err := viper.ReadInConfig(); err != nil {
		// If config file not found...
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// If user specified a path, this is an error
			if path != "" {
				return nil, fmt.Errorf("config file not found at %s: %w", path, err)
			}
			// Otherwise (implicit load), it's fine to use defaults
		} else {
			// Real read error (parsing, permissions, etc)
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// Save writes the configuration to config.yaml in mcpsync's config
// directory, creating the directory if needed.
func Save(cfg *Config) error {
	return SaveTo(cfg, filepath.Join(paths.ConfigDir(), "config.yaml"))
}

// SaveTo writes the configuration to an explicit path.
func SaveTo(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := fileutil.AtomicWriteYAML(path, cfg); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
