// Package config handles tool configuration loading and management.
package config

import (
	"fmt"

	"github.com/Faultbox/strafe/internal/logger"
	"github.com/Faultbox/strafe/internal/movement"
)

// Config holds all settings.
type Config struct {
	Simulation  SimulationConfig  `yaml:"simulation"`
	Tuning      movement.Tuning   `yaml:"tuning"`
	Replay      ReplayConfig      `yaml:"replay"`
	Leaderboard LeaderboardConfig `yaml:"leaderboard"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// SimulationConfig holds run settings that are not part of the movement tuning.
type SimulationConfig struct {
	Seed          uint32  `yaml:"seed"`
	Player        string  `yaml:"player"`
	MaxFrameDelta float32 `yaml:"max_frame_delta"` // seconds of wall time one frame may advance
}

// ReplayConfig holds recording settings.
type ReplayConfig struct {
	Dir string `yaml:"dir"` // where record writes relative output paths
}

// LeaderboardConfig holds leaderboard settings. An empty DBPath disables submission.
type LeaderboardConfig struct {
	DBPath string `yaml:"db_path"`
	Limit  int    `yaml:"limit"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
	JSON    bool   `yaml:"json"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Simulation: SimulationConfig{
			Seed:          1,
			Player:        "player",
			MaxFrameDelta: 0.25,
		},
		Tuning: movement.DefaultTuning(),
		Replay: ReplayConfig{
			Dir: "runs",
		},
		Leaderboard: LeaderboardConfig{
			Limit: 10,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate checks settings that would make a run meaningless.
func (c *Config) Validate() error {
	if err := c.Tuning.Validate(); err != nil {
		return fmt.Errorf("tuning: %w", err)
	}
	if c.Simulation.Player == "" {
		return fmt.Errorf("simulation.player is empty")
	}
	if c.Simulation.MaxFrameDelta <= 0 {
		return fmt.Errorf("simulation.max_frame_delta must be positive")
	}
	if c.Leaderboard.Limit <= 0 {
		return fmt.Errorf("leaderboard.limit must be positive")
	}
	if _, err := logger.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	return nil
}
