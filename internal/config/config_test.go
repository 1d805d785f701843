package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	defaults := Default("/data/sikte.json")
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"), defaults)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Storage.Backend != BackendFile || cfg.Storage.Path != "/data/sikte.json" {
		t.Fatalf("unexpected storage config %#v", cfg.Storage)
	}
	if cfg.Windows.HistoryDays != 30 || cfg.Windows.StatsDays != 7 {
		t.Fatalf("unexpected windows config %#v", cfg.Windows)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[storage]
backend = "sqlite"
path = "/tmp/sikte.db"

[logging]
level = "debug"

[windows]
history_days = 14
stats_days = 3

[server]
bind = "0.0.0.0:9090"
allowed_origins = ["http://localhost:3000"]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(path, Default("/data/sikte.json"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Storage.Backend != BackendSQLite || cfg.Storage.Path != "/tmp/sikte.db" {
		t.Fatalf("unexpected storage config %#v", cfg.Storage)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected logging level %q", cfg.Logging.Level)
	}
	if cfg.Windows.HistoryDays != 14 || cfg.Windows.StatsDays != 3 {
		t.Fatalf("unexpected windows config %#v", cfg.Windows)
	}
	if cfg.Server.Bind != "0.0.0.0:9090" {
		t.Fatalf("unexpected bind %q", cfg.Server.Bind)
	}
}

func TestLoadRejectsInvalidToml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("storage = ["), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if _, err := Load(path, Default("/data/sikte.json")); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults valid", mutate: func(c *Config) {}},
		{name: "bad backend", mutate: func(c *Config) { c.Storage.Backend = "redis" }, wantErr: true},
		{name: "empty path", mutate: func(c *Config) { c.Storage.Path = " " }, wantErr: true},
		{name: "negative history window", mutate: func(c *Config) { c.Windows.HistoryDays = -1 }, wantErr: true},
		{name: "negative stats window", mutate: func(c *Config) { c.Windows.StatsDays = -1 }, wantErr: true},
		{name: "empty bind", mutate: func(c *Config) { c.Server.Bind = "" }, wantErr: true},
		{name: "blank origin", mutate: func(c *Config) { c.Server.AllowedOrigins = []string{" "} }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default("/data/sikte.json")
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEnsureConfigDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := EnsureConfigDir(path); err != nil {
		t.Fatalf("EnsureConfigDir() error = %v", err)
	}
	info, err := os.Stat(filepath.Dir(path))
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if !info.IsDir() {
		t.Fatal("expected directory")
	}
}
