// Package app wires the tracker's components together from configuration,
// so every binary builds the same stack the same way.
package app

import (
	"fmt"
	"log/slog"
	"strings"

	"markettracker/internal/analytics"
	"markettracker/internal/config"
	"markettracker/internal/domain"
	"markettracker/internal/provider"
	"markettracker/internal/store"
	"markettracker/internal/sync"
	"markettracker/internal/util"
)

// App holds the wired components of one tracker process.
type App struct {
	Config      *config.Config
	Store       *store.SQLiteStore
	Provider    provider.Provider
	Coordinator *sync.Coordinator
	Engine      *analytics.Engine
	Log         *slog.Logger
}

// New loads configuration from cfgPath and wires the full stack: logger,
// store, provider, rate limiter, sync coordinator, and analytics engine.
func New(cfgPath string) (*App, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("loading config %s: %w", cfgPath, err)
	}

	logger := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	util.SetDefault(logger)

	s, err := store.NewSQLiteStore(cfg.Storage.SQLitePath)
	if err != nil {
		return nil, err
	}

	p, err := newProvider(cfg)
	if err != nil {
		s.Close()
		return nil, err
	}

	var archive *store.Archive
	if cfg.Storage.ArchiveDir != "" {
		archive = store.NewArchive(cfg.Storage.ArchiveDir)
	}

	limiter := util.NewRateLimiter(cfg.Provider.RateLimitPerMin)

	return &App{
		Config:      cfg,
		Store:       s,
		Provider:    p,
		Coordinator: sync.New(s, p, domain.Universe(cfg.Universe), limiter, archive),
		Engine:      analytics.New(s),
		Log:         logger,
	}, nil
}

// Close releases the app's resources.
func (a *App) Close() error {
	return a.Store.Close()
}

func newProvider(cfg *config.Config) (provider.Provider, error) {
	switch strings.ToLower(cfg.Provider.Name) {
	case "alphavantage":
		if cfg.Provider.APIKey == "" {
			return nil, fmt.Errorf("alphavantage requires an API key (APIKEY env or provider.api_key)")
		}
		return provider.NewAlphaVantage(cfg.Provider.APIKey, cfg.Provider.BaseURL), nil
	case "alpaca":
		return provider.NewAlpaca(
			cfg.Provider.APIKey,
			cfg.Provider.APISecret,
			cfg.Provider.BaseURL,
			cfg.Provider.LookbackYears,
		), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s. Options: alphavantage, alpaca", cfg.Provider.Name)
	}
}
