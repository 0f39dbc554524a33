// Package config loads simulator settings from a YAML file, TCGSIM_*
// environment variables and defaults, in that order of precedence from
// last to first.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/multierr"
)

// Config is the root configuration.
type Config struct {
	Logging    LoggingConfig    `mapstructure:"logging"`
	Simulation SimulationConfig `mapstructure:"simulation"`
	Server     ServerConfig     `mapstructure:"server"`
}

// LoggingConfig selects the zap level and encoding.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SimulationConfig holds engine and runner settings.
type SimulationConfig struct {
	TickInterval        time.Duration `mapstructure:"tick_interval"`
	Seed                int64         `mapstructure:"seed"`
	CardsFile           string        `mapstructure:"cards_file"`
	CardCount           int           `mapstructure:"card_count"`
	DeckSize            int           `mapstructure:"deck_size"`
	StartingHealth      int           `mapstructure:"starting_health"`
	InitialFitnessCount int           `mapstructure:"initial_fitness_count"`
	MaxRounds           int           `mapstructure:"max_rounds"`
	AutoStart           bool          `mapstructure:"auto_start"`
	NarrationLimit      int           `mapstructure:"narration_limit"`
	RecordReplay        bool          `mapstructure:"record_replay"`
}

// ServerConfig configures the spectator server.
type ServerConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address"`
}

// Load reads path (optional) and the environment. An empty path uses
// defaults and environment only.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("TCGSIM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("simulation.tick_interval", 500*time.Millisecond)
	v.SetDefault("simulation.seed", 0)
	v.SetDefault("simulation.cards_file", "")
	v.SetDefault("simulation.card_count", 60)
	v.SetDefault("simulation.deck_size", 15)
	v.SetDefault("simulation.starting_health", 30)
	v.SetDefault("simulation.initial_fitness_count", 1)
	v.SetDefault("simulation.max_rounds", 0)
	v.SetDefault("simulation.auto_start", false)
	v.SetDefault("simulation.narration_limit", 500)
	v.SetDefault("simulation.record_replay", false)

	v.SetDefault("server.enabled", false)
	v.SetDefault("server.address", ":8080")
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var err error

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		err = multierr.Append(err, fmt.Errorf("logging.level: unknown level %q", c.Logging.Level))
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		err = multierr.Append(err, fmt.Errorf("logging.format: unknown format %q", c.Logging.Format))
	}

	s := c.Simulation
	if s.TickInterval < 0 {
		err = multierr.Append(err, errors.New("simulation.tick_interval must not be negative"))
	}
	if s.DeckSize <= 0 {
		err = multierr.Append(err, errors.New("simulation.deck_size must be positive"))
	}
	if s.CardsFile == "" && s.CardCount < 2*s.DeckSize {
		err = multierr.Append(err, fmt.Errorf("simulation.card_count %d cannot fill two decks of %d", s.CardCount, s.DeckSize))
	}
	if s.StartingHealth <= 0 {
		err = multierr.Append(err, errors.New("simulation.starting_health must be positive"))
	}
	if s.InitialFitnessCount <= 0 {
		err = multierr.Append(err, errors.New("simulation.initial_fitness_count must be positive"))
	}
	if s.MaxRounds < 0 {
		err = multierr.Append(err, errors.New("simulation.max_rounds must not be negative"))
	}

	if c.Server.Enabled && c.Server.Address == "" {
		err = multierr.Append(err, errors.New("server.address is required when the server is enabled"))
	}
	return err
}
