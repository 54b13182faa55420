package config

import (
	"flag"
	"os"
)

var (
	flagConfig    = flag.String("config", "", "Path to config file")
	flagDebug     = flag.Bool("debug", false, "Enable debug logging")
	flagSeed      = flag.Int64("seed", -1, "PRNG seed for new recordings")
	flagPlayer    = flag.String("player", "", "Player name for new recordings")
	flagTickRate  = flag.Int("tickrate", 0, "Simulation tick rate in Hz")
	flagDB        = flag.String("db", "", "Leaderboard database path")
	flagReplayDir = flag.String("replay-dir", "", "Directory for recordings")
	flagLogFile   = flag.String("log-file", "", "Log file path")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// Args returns the non-flag arguments.
func Args() []string {
	return flag.Args()
}

// Usage prints flag defaults to stderr.
func Usage() {
	flag.CommandLine.SetOutput(os.Stderr)
	flag.PrintDefaults()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagSeed >= 0 {
		cfg.Simulation.Seed = uint32(*flagSeed)
	}
	if *flagPlayer != "" {
		cfg.Simulation.Player = *flagPlayer
	}
	if *flagTickRate > 0 {
		cfg.Tuning.TickRate = *flagTickRate
	}
	if *flagDB != "" {
		cfg.Leaderboard.DBPath = *flagDB
	}
	if *flagReplayDir != "" {
		cfg.Replay.Dir = *flagReplayDir
	}
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
}
