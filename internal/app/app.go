// Package app wires configuration into a ready-to-use resolution pipeline.
// Rule sets are loaded and compiled exactly once here and shared read-only
// for the process lifetime.
package app

import (
	"fmt"
	"log/slog"

	"openhours/internal/audit"
	"openhours/internal/celeval"
	"openhours/internal/config"
	"openhours/internal/randtime"
	"openhours/internal/resolver"
)

// App holds the assembled pipeline for the CLI and the HTTP API.
type App struct {
	Config   *config.Config
	Resolver resolver.Resolver
	Random   *randtime.Generator

	closers []func() error
}

// New builds the pipeline from config: audit backend, compiled rule sets,
// and the strategy-appropriate resolver.
func New(cfg *config.Config, log *slog.Logger) (*App, error) {
	a := &App{
		Config: cfg,
		Random: randtime.NewYear(cfg.Random.Year),
	}

	var store audit.Store
	switch cfg.Audit.Backend {
	case config.AuditSQLite:
		s, err := audit.OpenSQLite(cfg.Audit.Path)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, s.Close)
		store = s
	default:
		store = audit.NewCSVStore(cfg.Audit.Path)
	}

	switch cfg.Strategy {
	case config.StrategyCombined:
		combined, err := celeval.Load(cfg.Rules.Combined)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("load combined rule set: %w", err)
		}
		r := resolver.NewCombined(combined, store)
		r.Log = log
		a.Resolver = r
	default:
		holiday, err := celeval.Load(cfg.Rules.Holiday)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("load holiday rule set: %w", err)
		}
		business, err := celeval.Load(cfg.Rules.BusinessHours)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("load business hours rule set: %w", err)
		}
		r := resolver.NewSplit(holiday, business, store)
		r.Log = log
		a.Resolver = r
	}
	return a, nil
}

// Close releases backend resources.
func (a *App) Close() error {
	var firstErr error
	for _, c := range a.closers {
		if err := c(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
