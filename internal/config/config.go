// Package config provides Viper-based configuration loading for the dice tray.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// TelnetConfig holds Telnet acceptor settings.
type TelnetConfig struct {
	// Host is the bind address for the Telnet listener.
	Host string `mapstructure:"host"`
	// Port is the TCP port for the Telnet listener.
	Port int `mapstructure:"port"`
	// ReadTimeout is the per-read timeout for Telnet connections.
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
	// WriteTimeout is the per-write timeout for Telnet connections.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Addr returns the "host:port" listen address.
func (t TelnetConfig) Addr() string {
	return fmt.Sprintf("%s:%d", t.Host, t.Port)
}

// DiceConfig selects the random source and the dice-set catalog.
type DiceConfig struct {
	// Source is "pcg" (seedable, default) or "crypto".
	Source string `mapstructure:"source"`
	// Seed fixes the pcg sequence; zero seeds from the clock.
	Seed uint64 `mapstructure:"seed"`
	// SetsDir holds dice-set YAML files; empty uses the built-in set.
	SetsDir string `mapstructure:"sets_dir"`
	// DefaultSet is the dice set selected for new trays.
	DefaultSet string `mapstructure:"default_set"`
	// KeptFaces is the die that advantage applies to; 0 means every die.
	KeptFaces int `mapstructure:"kept_faces"`
}

// HistoryConfig bounds the per-tray roll history.
type HistoryConfig struct {
	// Capacity is the number of retained entries; 0 keeps every entry.
	Capacity int `mapstructure:"capacity"`
}

// TrayConfig holds roll pacing and limits.
type TrayConfig struct {
	// RevealDelay is the pause before each die value is shown.
	RevealDelay time.Duration `mapstructure:"reveal_delay"`
	// MaxDice caps the dice in one roll; 0 disables the cap.
	MaxDice int `mapstructure:"max_dice"`
}

// ScriptingConfig holds Lua macro settings.
type ScriptingConfig struct {
	// MacrosDir holds *.lua macro scripts; empty disables macros.
	MacrosDir string `mapstructure:"macros_dir"`
	// InstructionLimit bounds each macro expansion; 0 uses the default.
	InstructionLimit int `mapstructure:"instruction_limit"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging   LoggingConfig   `mapstructure:"logging"`
	Telnet    TelnetConfig    `mapstructure:"telnet"`
	Dice      DiceConfig      `mapstructure:"dice"`
	History   HistoryConfig   `mapstructure:"history"`
	Tray      TrayConfig      `mapstructure:"tray"`
	Scripting ScriptingConfig `mapstructure:"scripting"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string
	for _, err := range []error{
		validateLogging(c.Logging),
		validateTelnet(c.Telnet),
		validateDice(c.Dice),
		validateHistory(c.History),
		validateTray(c.Tray),
		validateScripting(c.Scripting),
	} {
		if err != nil {
			errs = append(errs, err.Error())
		}
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

func validateTelnet(t TelnetConfig) error {
	var errs []string
	if t.Port < 0 || t.Port > 65535 {
		errs = append(errs, fmt.Sprintf("telnet.port must be 0-65535, got %d", t.Port))
	}
	if t.ReadTimeout < 0 {
		errs = append(errs, "telnet.read_timeout must not be negative")
	}
	if t.WriteTimeout < 0 {
		errs = append(errs, "telnet.write_timeout must not be negative")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateDice(d DiceConfig) error {
	var errs []string
	validSources := map[string]bool{"pcg": true, "crypto": true}
	if !validSources[d.Source] {
		errs = append(errs, fmt.Sprintf("dice.source must be one of [pcg, crypto], got %q", d.Source))
	}
	if d.DefaultSet == "" {
		errs = append(errs, "dice.default_set must not be empty")
	}
	validKept := map[int]bool{0: true, 2: true, 4: true, 6: true, 8: true, 10: true, 12: true, 20: true, 100: true}
	if !validKept[d.KeptFaces] {
		errs = append(errs, fmt.Sprintf("dice.kept_faces must be 0 or a standard die, got %d", d.KeptFaces))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateHistory(h HistoryConfig) error {
	if h.Capacity < 0 {
		return fmt.Errorf("history.capacity must be >= 0, got %d", h.Capacity)
	}
	return nil
}

func validateTray(t TrayConfig) error {
	var errs []string
	if t.RevealDelay < 0 {
		errs = append(errs, "tray.reveal_delay must not be negative")
	}
	if t.MaxDice < 0 {
		errs = append(errs, fmt.Sprintf("tray.max_dice must be >= 0, got %d", t.MaxDice))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateScripting(s ScriptingConfig) error {
	if s.InstructionLimit < 0 {
		return errors.New("scripting.instruction_limit must not be negative")
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result. An empty path uses defaults and the
// environment only.
//
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()

	// Environment variable overrides with DICETRAY_ prefix
	v.SetEnvPrefix("DICETRAY")
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
	v.SetDefault("logging.format", "json")

	v.SetDefault("telnet.host", "0.0.0.0")
	v.SetDefault("telnet.port", 4000)
	v.SetDefault("telnet.read_timeout", "30m")
	v.SetDefault("telnet.write_timeout", "30s")

	v.SetDefault("dice.source", "pcg")
	v.SetDefault("dice.seed", 0)
	v.SetDefault("dice.sets_dir", "")
	v.SetDefault("dice.default_set", "GALAXY_STANDARD")
	v.SetDefault("dice.kept_faces", 20)

	v.SetDefault("history.capacity", 50)

	v.SetDefault("tray.reveal_delay", "400ms")
	v.SetDefault("tray.max_dice", 100)

	v.SetDefault("scripting.macros_dir", "")
	v.SetDefault("scripting.instruction_limit", 0)
}
