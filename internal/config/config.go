package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

type StorageBackend string

const (
	BackendFile   StorageBackend = "file"
	BackendSQLite StorageBackend = "sqlite"
)

type Config struct {
	Storage StorageConfig `toml:"storage"`
	Logging LoggingConfig `toml:"logging"`
	Windows WindowsConfig `toml:"windows"`
	Server  ServerConfig  `toml:"server"`
}

type StorageConfig struct {
	Backend StorageBackend `toml:"backend"`
	Path    string         `toml:"path"`
}

type LoggingConfig struct {
	Level string `toml:"level"`
}

// WindowsConfig sets the default trailing windows (in days) used when a query
// does not name one explicitly.
type WindowsConfig struct {
	HistoryDays int `toml:"history_days"`
	StatsDays   int `toml:"stats_days"`
}

type ServerConfig struct {
	Bind           string   `toml:"bind"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

func Default(logPath string) Config {
	return Config{
		Storage: StorageConfig{
			Backend: BackendFile,
			Path:    logPath,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Windows: WindowsConfig{
			HistoryDays: 30,
			StatsDays:   7,
		},
		Server: ServerConfig{
			Bind:           "127.0.0.1:8080",
			AllowedOrigins: []string{"http://localhost:5173"},
		},
	}
}

func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(content) == 0 {
		return cfg, nil
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Storage.Backend {
	case BackendFile, BackendSQLite:
	default:
		return fmt.Errorf("invalid storage.backend: %q", c.Storage.Backend)
	}
	if strings.TrimSpace(c.Storage.Path) == "" {
		return errors.New("storage path is required")
	}

	if c.Windows.HistoryDays < 0 {
		return errors.New("windows.history_days must be >= 0")
	}
	if c.Windows.StatsDays < 0 {
		return errors.New("windows.stats_days must be >= 0")
	}

	if strings.TrimSpace(c.Server.Bind) == "" {
		return errors.New("server.bind is required")
	}
	for i, origin := range c.Server.AllowedOrigins {
		if strings.TrimSpace(origin) == "" {
			return fmt.Errorf("server.allowed_origins[%d] is empty", i)
		}
	}
	return nil
}

func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
