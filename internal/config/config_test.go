package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Store.Driver != DriverSQLite {
		t.Errorf("expected driver %s, got %s", DriverSQLite, cfg.Store.Driver)
	}
	if cfg.Ledger.TransferMaxAttempts != 3 {
		t.Errorf("expected 3 transfer attempts, got %d", cfg.Ledger.TransferMaxAttempts)
	}
	if cfg.Sweep.Threshold != 24*time.Hour {
		t.Errorf("expected 24h threshold, got %s", cfg.Sweep.Threshold)
	}
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "malkhana.yaml")
	content := `
store:
  driver: pgx
  dsn: postgres://localhost/malkhana
sweep:
  interval: 30s
  threshold: 2h
ledger:
  transfer_max_attempts: 5
log:
  format: json
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Store.Driver != DriverPostgres {
		t.Errorf("expected driver pgx, got %s", cfg.Store.Driver)
	}
	if cfg.Sweep.Interval != 30*time.Second {
		t.Errorf("expected 30s interval, got %s", cfg.Sweep.Interval)
	}
	if cfg.Sweep.Threshold != 2*time.Hour {
		t.Errorf("expected 2h threshold, got %s", cfg.Sweep.Threshold)
	}
	if cfg.Ledger.TransferMaxAttempts != 5 {
		t.Errorf("expected 5 attempts, got %d", cfg.Ledger.TransferMaxAttempts)
	}
	// Unset keys keep their defaults.
	if cfg.HTTP.Addr != ":8080" {
		t.Errorf("expected default addr, got %s", cfg.HTTP.Addr)
	}
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "malkhana.yaml")
	if err := os.WriteFile(path, []byte("http:\n  addr: \":9000\"\n"), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	t.Setenv("MALKHANA_HTTP_ADDR", ":9999")
	t.Setenv("MALKHANA_SWEEP_THRESHOLD", "15m")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.HTTP.Addr != ":9999" {
		t.Errorf("expected env addr :9999, got %s", cfg.HTTP.Addr)
	}
	if cfg.Sweep.Threshold != 15*time.Minute {
		t.Errorf("expected 15m threshold, got %s", cfg.Sweep.Threshold)
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "malkhana.yaml")
	if err := os.WriteFile(path, []byte("store: [unclosed"), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "malkhana.yaml")
	cfg := Default()
	cfg.Actor = ActorConfig{ID: "U-7", Role: "ADMIN"}
	cfg.Sweep.Threshold = 90 * time.Minute

	if err := SaveConfig(path, cfg); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if loaded.Actor.ID != "U-7" || loaded.Actor.Role != "ADMIN" {
		t.Errorf("actor not preserved: %+v", loaded.Actor)
	}
	if loaded.Sweep.Threshold != 90*time.Minute {
		t.Errorf("threshold not preserved: %s", loaded.Sweep.Threshold)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults are valid", mutate: func(*Config) {}},
		{name: "unknown driver", mutate: func(c *Config) { c.Store.Driver = "mysql" }, wantErr: true},
		{name: "empty dsn", mutate: func(c *Config) { c.Store.DSN = "" }, wantErr: true},
		{name: "zero attempts", mutate: func(c *Config) { c.Ledger.TransferMaxAttempts = 0 }, wantErr: true},
		{name: "negative threshold", mutate: func(c *Config) { c.Sweep.Threshold = -time.Second }, wantErr: true},
		{name: "unknown log format", mutate: func(c *Config) { c.Log.Format = "xml" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
