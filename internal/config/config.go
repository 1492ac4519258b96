// Package config loads the malkhana configuration from a YAML file with
// MALKHANA_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file read when --config is not given.
const DefaultPath = "malkhana.yaml"

// Store drivers
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "pgx"
)

// Config is the full malkhana configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store"`
	HTTP      HTTPConfig      `yaml:"http"`
	Sweep     SweepConfig     `yaml:"sweep"`
	Ledger    LedgerConfig    `yaml:"ledger"`
	Log       LogConfig       `yaml:"log"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Actor     ActorConfig     `yaml:"actor"`
}

// StoreConfig selects the record store backend.
type StoreConfig struct {
	Driver string `yaml:"driver" env:"MALKHANA_STORE_DRIVER"`
	DSN    string `yaml:"dsn"    env:"MALKHANA_STORE_DSN"`
}

// HTTPConfig configures the JSON API listener.
type HTTPConfig struct {
	Addr string `yaml:"addr" env:"MALKHANA_HTTP_ADDR"`
}

// SweepConfig configures the pending-case alert sweep run by `serve`.
type SweepConfig struct {
	Interval  time.Duration `yaml:"interval"  env:"MALKHANA_SWEEP_INTERVAL"`
	Threshold time.Duration `yaml:"threshold" env:"MALKHANA_SWEEP_THRESHOLD"`
}

// LedgerConfig holds custody ledger tuning.
type LedgerConfig struct {
	TransferMaxAttempts int `yaml:"transfer_max_attempts" env:"MALKHANA_TRANSFER_MAX_ATTEMPTS"`
}

// LogConfig configures slog output.
type LogConfig struct {
	Level  string `yaml:"level"  env:"MALKHANA_LOG_LEVEL"`
	Format string `yaml:"format" env:"MALKHANA_LOG_FORMAT"` // "text" or "json"
}

// TelemetryConfig enables OTLP tracing when an endpoint is set.
type TelemetryConfig struct {
	OTLPEndpoint string `yaml:"otlp_endpoint" env:"MALKHANA_OTLP_ENDPOINT"`
	ServiceName  string `yaml:"service_name"  env:"MALKHANA_SERVICE_NAME"`
}

// ActorConfig is the default CLI actor (overridden by --as/--role).
type ActorConfig struct {
	ID   string `yaml:"id"   env:"MALKHANA_ACTOR_ID"`
	Role string `yaml:"role" env:"MALKHANA_ACTOR_ROLE"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			Driver: DriverSQLite,
			DSN:    filepath.Join(".malkhana", "malkhana.db"),
		},
		HTTP: HTTPConfig{Addr: ":8080"},
		Sweep: SweepConfig{
			Interval:  time.Minute,
			Threshold: 24 * time.Hour,
		},
		Ledger:    LedgerConfig{TransferMaxAttempts: 3},
		Log:       LogConfig{Level: "info", Format: "text"},
		Telemetry: TelemetryConfig{ServiceName: "malkhana"},
	}
}

// LoadConfig reads the YAML file at path over the defaults, then applies
// environment overrides. A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// defaults only
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveConfig writes cfg as YAML to path, creating parent directories.
func SaveConfig(path string, cfg *Config) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config dir: %w", err)
		}
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unsupported store driver %q (want %s or %s)", c.Store.Driver, DriverSQLite, DriverPostgres)
	}
	if c.Store.DSN == "" {
		return fmt.Errorf("store.dsn is required")
	}
	if c.Ledger.TransferMaxAttempts < 1 {
		return fmt.Errorf("ledger.transfer_max_attempts must be at least 1, got %d", c.Ledger.TransferMaxAttempts)
	}
	if c.Sweep.Interval < 0 || c.Sweep.Threshold < 0 {
		return fmt.Errorf("sweep durations must not be negative")
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unsupported log format %q", c.Log.Format)
	}
	return nil
}
