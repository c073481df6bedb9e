// Package config provides Viper-based configuration loading for the battle simulator.
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

// StackSpec describes one army slot: a creature type ID and a stack count.
type StackSpec struct {
	// Creature is the creature type ID, resolved against the creature registry.
	Creature string `mapstructure:"creature"`
	// Count is the number of creatures in the stack.
	Count int `mapstructure:"count"`
}

// BattleConfig holds battle simulation settings.
type BattleConfig struct {
	// Seed is the RNG seed for damage rolls. 0 means "derive a random seed".
	Seed int64 `mapstructure:"seed"`
	// MaxRounds aborts the simulation if no side has won after this many rounds.
	MaxRounds int `mapstructure:"max_rounds"`
	// CreaturesDir is the directory of creature type YAML definitions.
	CreaturesDir string `mapstructure:"creatures_dir"`
	// Attacker is the attacking army, up to 7 slots.
	Attacker []StackSpec `mapstructure:"attacker"`
	// Defender is the defending army, up to 7 slots.
	Defender []StackSpec `mapstructure:"defender"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging LoggingConfig `mapstructure:"logging"`
	Battle  BattleConfig  `mapstructure:"battle"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateBattle(c.Battle); err != nil {
		errs = append(errs, err.Error())
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

func validateBattle(b BattleConfig) error {
	var errs []string
	if b.MaxRounds < 1 {
		errs = append(errs, fmt.Sprintf("battle.max_rounds must be >= 1, got %d", b.MaxRounds))
	}
	if b.CreaturesDir == "" {
		errs = append(errs, "battle.creatures_dir must not be empty")
	}
	errs = append(errs, validateArmy("battle.attacker", b.Attacker)...)
	errs = append(errs, validateArmy("battle.defender", b.Defender)...)
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateArmy(key string, army []StackSpec) []string {
	var errs []string
	if len(army) == 0 {
		errs = append(errs, fmt.Sprintf("%s must have at least one stack", key))
	}
	if len(army) > 7 {
		errs = append(errs, fmt.Sprintf("%s must have at most 7 stacks, got %d", key, len(army)))
	}
	for i, s := range army {
		if s.Creature == "" {
			errs = append(errs, fmt.Sprintf("%s[%d].creature must not be empty", key, i))
		}
		if s.Count < 1 {
			errs = append(errs, fmt.Sprintf("%s[%d].count must be >= 1, got %d", key, i, s.Count))
		}
	}
	return errs
}

// setDefaults applies default values for all optional configuration keys.
func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("battle.seed", 0)
	v.SetDefault("battle.max_rounds", 100)
	v.SetDefault("battle.creatures_dir", "data/creatures")
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with ELDOR_ prefix
	v.SetEnvPrefix("ELDOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
