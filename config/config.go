// Package config loads runtime configuration from a YAML file with
// environment overrides. A .env file in the working directory is picked
// up before the environment is read.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config carries every runtime knob. Zero values fall back to defaults.
type Config struct {
	DataDir         string `yaml:"data_dir"`            // catalog .lua directory
	Listen          string `yaml:"listen"`              // server listen address
	LogFile         string `yaml:"log_file"`            // rolling log path, "" = stderr
	DBPath          string `yaml:"db_path"`             // snapshot database, "" = no persistence
	Player          string `yaml:"player"`              // local session player ID
	TickMillis      int    `yaml:"tick_ms"`             // simulation tick length
	SnapshotSeconds int    `yaml:"snapshot_interval_s"` // seconds between server snapshots
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		DataDir:         "data",
		Listen:          ":8080",
		Player:          "player",
		TickMillis:      600,
		SnapshotSeconds: 60,
	}
}

// Load reads path (if non-empty and present) over the defaults, then
// applies RUNESIM_* environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("reading config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	// .env is optional; missing files are fine.
	_ = godotenv.Load()

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("RUNESIM_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("RUNESIM_LISTEN"); v != "" {
		cfg.Listen = v
	}
	if v := os.Getenv("RUNESIM_LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
	if v := os.Getenv("RUNESIM_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("RUNESIM_PLAYER"); v != "" {
		cfg.Player = v
	}
	if v := os.Getenv("RUNESIM_TICK_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TickMillis = n
		}
	}
	if v := os.Getenv("RUNESIM_SNAPSHOT_S"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.SnapshotSeconds = n
		}
	}
}
