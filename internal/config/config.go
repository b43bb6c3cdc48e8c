// Package config loads the tracker's YAML configuration and applies
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"markettracker/internal/domain"
)

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for the market tracker.
type Config struct {
	Storage  Storage        `yaml:"storage"`
	Provider ProviderConfig `yaml:"provider"`
	Universe []string       `yaml:"universe"`
	Server   Server         `yaml:"server"`
	Logging  Logging        `yaml:"logging"`
}

// Storage holds paths for data persistence.
type Storage struct {
	SQLitePath string `yaml:"sqlite_path"`

	// ArchiveDir enables Parquet snapshots of completed refreshes when set.
	ArchiveDir string `yaml:"archive_dir"`
}

// ProviderConfig selects and configures the upstream data provider.
type ProviderConfig struct {
	// Name is "alphavantage" or "alpaca".
	Name string `yaml:"name"`

	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"` // alpaca only
	BaseURL   string `yaml:"base_url"`   // empty selects the production endpoint

	RateLimitPerMin int `yaml:"rate_limit_per_min"`
	LookbackYears   int `yaml:"lookback_years"`
}

// Server holds the query API listener configuration.
type Server struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Logging configures the application logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load reads the YAML configuration file at the given path, parses it into a
// Config struct, applies environment variable overrides, and fills defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides checks well-known environment variables and overrides
// the corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Storage.SQLitePath = v
	}
	if v := os.Getenv("ARCHIVE_DIR"); v != "" {
		cfg.Storage.ArchiveDir = v
	}

	// APIKEY is the legacy variable name the first deployment used; the
	// provider-specific names take precedence.
	if v := os.Getenv("APIKEY"); v != "" {
		cfg.Provider.APIKey = v
	}
	if v := os.Getenv("ALPHAVANTAGE_API_KEY"); v != "" {
		cfg.Provider.APIKey = v
	}
	if v := os.Getenv("APCA_API_KEY_ID"); v != "" {
		cfg.Provider.APIKey = v
	}
	if v := os.Getenv("APCA_API_SECRET_KEY"); v != "" {
		cfg.Provider.APISecret = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Storage.SQLitePath == "" {
		cfg.Storage.SQLitePath = "funds.db"
	}
	if cfg.Provider.Name == "" {
		cfg.Provider.Name = "alphavantage"
	}
	if cfg.Provider.RateLimitPerMin <= 0 {
		cfg.Provider.RateLimitPerMin = 5
	}
	if cfg.Provider.LookbackYears <= 0 {
		cfg.Provider.LookbackYears = 2
	}
	if len(cfg.Universe) == 0 {
		cfg.Universe = append(cfg.Universe, domain.DefaultUniverse...)
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "127.0.0.1"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

func (cfg *Config) validate() error {
	switch strings.ToLower(cfg.Provider.Name) {
	case "alphavantage", "alpaca":
	default:
		return fmt.Errorf("unknown provider %q", cfg.Provider.Name)
	}
	return nil
}
