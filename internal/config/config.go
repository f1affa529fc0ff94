package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"menuplanner/internal/models"
)

// Config represents the application configuration
type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`

	Storage struct {
		Driver     string `yaml:"driver"`
		Path       string `yaml:"path"`
		LegacyUnit string `yaml:"legacy_unit"`
		LogSQL     bool   `yaml:"log_sql"`
	} `yaml:"storage"`

	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`

	Log struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"log"`
}

const (
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// Default returns the configuration used when no file is present
func Default() *Config {
	cfg := &Config{}
	cfg.Server.Addr = "127.0.0.1:8080"
	cfg.Storage.Driver = DriverSQLite
	cfg.Storage.Path = "auto_save/menu_data.db"
	cfg.Storage.LegacyUnit = string(models.UnitGram)
	cfg.Metrics.Enabled = true
	cfg.Metrics.Path = "/metrics"
	cfg.Log.Level = "info"
	cfg.Log.Pretty = true
	return cfg
}

// Load reads the YAML file at path on top of the defaults. A missing
// file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values that have a closed set of options
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverSQLite:
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path is required for the %s driver", DriverSQLite)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unsupported storage driver: %s", c.Storage.Driver)
	}
	if _, err := models.ParseUnit(c.Storage.LegacyUnit); err != nil {
		return fmt.Errorf("storage.legacy_unit: %w", err)
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	return nil
}

// LegacyUnit returns the parsed storage.legacy_unit
func (c *Config) LegacyUnit() models.Unit {
	u, err := models.ParseUnit(c.Storage.LegacyUnit)
	if err != nil {
		return models.UnitGram
	}
	return u
}
