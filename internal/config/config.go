// Package config resolves settings from flags, RIA_* environment variables
// and an optional config file, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config holds every setting used by the commands. Each command only reads
// the fields it needs.
type Config struct {
	Catalog string `mapstructure:"input"`
	DataDir string `mapstructure:"data-dir"`
	Output  string `mapstructure:"output"`
	Format  string `mapstructure:"format"`
	Store   string `mapstructure:"store"`
	Include string `mapstructure:"include"`
	Exclude string `mapstructure:"exclude"`
	Workers int    `mapstructure:"workers"`
	Addr    string `mapstructure:"addr"`
	Verbose bool   `mapstructure:"verbose"`
}

// Defaults returns the built-in settings.
func Defaults() Config {
	return Config{
		Catalog: "./catalog-nk.yml",
		Output:  "./results.json",
		Store:   "./results.json",
		Workers: 4,
		Addr:    ":8888",
	}
}

// Load resolves the configuration for cmd. cfgFile may be empty, in which case
// ria.yaml is looked up in the working directory and $HOME/.ria.
func Load(cmd *cobra.Command, cfgFile string) (*Config, error) {
	v := viper.New()

	defaults := Defaults()
	v.SetDefault("input", defaults.Catalog)
	v.SetDefault("output", defaults.Output)
	v.SetDefault("store", defaults.Store)
	v.SetDefault("workers", defaults.Workers)
	v.SetDefault("addr", defaults.Addr)

	// Environment variables with RIA_ prefix, e.g. RIA_DATA_DIR
	v.SetEnvPrefix("RIA")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("ria")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.ria")
	}

	// Try to read config file (not required unless named explicitly)
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	if cmd != nil {
		if err := v.BindPFlags(cmd.Flags()); err != nil {
			return nil, fmt.Errorf("failed to bind flags: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// ResolveDataDir returns DataDir, or the directory holding the catalog when
// none is set.
func (c *Config) ResolveDataDir() string {
	if c.DataDir != "" {
		return c.DataDir
	}
	return filepath.Dir(c.Catalog)
}
