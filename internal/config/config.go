// Package config provides configuration management for deploypack using Viper.
package config

import (
	"fmt"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// AppName is the application name used for config file naming.
const AppName = "deploypack"

// Config represents the top-level configuration structure.
type Config struct {
	Version int `mapstructure:"version" yaml:"version"`

	// OutputDir is the default artifact directory name used when
	// `deploypack build` is invoked without --output.
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir"`

	// VerboseDefault makes every run behave as if -v was passed.
	VerboseDefault bool `mapstructure:"verbose_default" yaml:"verbose_default"`

	// FallbackVersions are the fixed runtime versions used when neither
	// project metadata nor the installed toolchain yields one. The values
	// are a policy choice, not a guess: the toolchain probe runs first, and
	// these only apply when the probe itself fails.
	FallbackVersions FallbackVersions `mapstructure:"fallback_versions" yaml:"fallback_versions"`
}

// FallbackVersions holds the per-platform fixed runtime version fallbacks.
type FallbackVersions struct {
	DotNet string `mapstructure:"dotnet" yaml:"dotnet"`
	Node   string `mapstructure:"node" yaml:"node"`
	Python string `mapstructure:"python" yaml:"python"`
}

// Init initializes Viper with default configuration.
// Call this once at application startup before accessing config values.
func Init() {
	// Config file settings
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Search paths (in order of precedence)
	viper.AddConfigPath(".") // Current directory
	viper.AddConfigPath(filepath.Join(xdg.ConfigHome, AppName))

	// Environment variable support
	viper.SetEnvPrefix("DEPLOYPACK")
	viper.AutomaticEnv()

	// Defaults
	viper.SetDefault("version", 1)
	viper.SetDefault("output_dir", "publish")
	viper.SetDefault("verbose_default", false)
	viper.SetDefault("fallback_versions.dotnet", "8.0")
	viper.SetDefault("fallback_versions.node", "20")
	viper.SetDefault("fallback_versions.python", "3.11")
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
