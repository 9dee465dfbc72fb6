// Package config provides Viper-based configuration loading for dtx.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// RNGConfig selects the randomness source shared by every table.
type RNGConfig struct {
	// Seed makes rolls reproducible when Crypto is false.
	Seed uint64 `mapstructure:"seed"`
	// Crypto selects the crypto/rand source; Seed must then be 0.
	Crypto bool `mapstructure:"crypto"`
}

// ContentConfig locates the table definitions and policy scripts.
type ContentConfig struct {
	// TablesDir holds *.yaml table definitions.
	TablesDir string `mapstructure:"tables_dir"`
	// ScriptsDir holds *.lua policy scripts. Empty disables scripting.
	ScriptsDir string `mapstructure:"scripts_dir"`
}

// ScriptingConfig holds Lua VM settings.
type ScriptingConfig struct {
	// InstructionLimit is the opcode budget of one script call; 0 selects the default.
	InstructionLimit int `mapstructure:"instruction_limit"`
}

// SimConfig holds simulation defaults.
type SimConfig struct {
	// Rolls is the default number of rolls per simulation.
	Rolls int `mapstructure:"rolls"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging   LoggingConfig   `mapstructure:"logging"`
	RNG       RNGConfig       `mapstructure:"rng"`
	Content   ContentConfig   `mapstructure:"content"`
	Scripting ScriptingConfig `mapstructure:"scripting"`
	Sim       SimConfig       `mapstructure:"sim"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if c.RNG.Crypto && c.RNG.Seed != 0 {
		errs = append(errs, "rng.seed must be 0 when rng.crypto is set")
	}
	if c.Content.TablesDir == "" {
		errs = append(errs, "content.tables_dir must not be empty")
	}
	if c.Scripting.InstructionLimit < 0 {
		errs = append(errs, fmt.Sprintf("scripting.instruction_limit must be >= 0, got %d", c.Scripting.InstructionLimit))
	}
	if c.Sim.Rolls < 1 {
		errs = append(errs, fmt.Sprintf("sim.rolls must be >= 1, got %d", c.Sim.Rolls))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

// Load reads configuration from the given file path, applies environment
// variable overrides, and validates the result. An empty path skips the file
// and uses defaults plus environment.
//
// Precondition: path is empty or names a readable YAML file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()

	// Environment variable overrides with DTX_ prefix
	v.SetEnvPrefix("DTX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}
	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("rng.seed", 0)
	v.SetDefault("rng.crypto", true)

	v.SetDefault("content.tables_dir", "content/tables")
	v.SetDefault("content.scripts_dir", "")

	v.SetDefault("scripting.instruction_limit", 100000)

	v.SetDefault("sim.rolls", 10000)
}
