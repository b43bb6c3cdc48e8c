// Package sync keeps the bar store aligned with the real-world trading
// calendar. A run compares the store's latest date against the last
// completed trading day and, when stale, rebuilds the store from the
// upstream provider through a staging table.
package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"markettracker/internal/calendar"
	"markettracker/internal/domain"
	"markettracker/internal/provider"
	"markettracker/internal/store"
	"markettracker/internal/util"
)

// State is the outcome classification of a run.
type State string

const (
	// StateFresh means the store already covered the last completed trading
	// day and no refresh was performed.
	StateFresh State = "fresh"

	// StateStale means the store was behind the calendar and a refresh ran.
	StateStale State = "stale"
)

// Report summarizes one coordinator run.
type Report struct {
	State State

	// AsOf is the last completed trading day the run targeted, canonical form.
	AsOf string

	// Bars is the total number of bars loaded during a refresh.
	Bars int

	// Failed lists tickers whose provider fetch failed or returned no data.
	// A non-empty list still counts as a completed refresh.
	Failed []string

	// Archive is the snapshot path written after a successful refresh, if
	// archiving is configured.
	Archive string
}

// Coordinator owns all writes to the bar store.
type Coordinator struct {
	store    store.BarStore
	provider provider.Provider
	universe domain.Universe
	limiter  *util.RateLimiter
	archive  *store.Archive // nil disables snapshots
	log      *slog.Logger
}

// New creates a Coordinator. archive may be nil to disable Parquet
// snapshots.
func New(s store.BarStore, p provider.Provider, universe domain.Universe, limiter *util.RateLimiter, archive *store.Archive) *Coordinator {
	return &Coordinator{
		store:    s,
		provider: p,
		universe: universe,
		limiter:  limiter,
		archive:  archive,
		log:      slog.Default().With("component", "sync"),
	}
}

// Run refreshes the store if it is stale relative to the trading calendar,
// and reports what happened. A fresh store is a no-op.
func (c *Coordinator) Run(ctx context.Context, today time.Time) (*Report, error) {
	last, err := calendar.LastCompletedTradingDay(today)
	if err != nil {
		return nil, fmt.Errorf("resolving last trading day: %w", err)
	}

	maxDate, err := c.store.MaxDate(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading store max date: %w", err)
	}

	if maxDate != "" {
		// A same-day run can see today's in-progress bar; compare against
		// the previous day so an incomplete session never counts as current.
		effective := maxDate
		if maxDate == today.Format(domain.DateFormat) {
			effective, err = calendar.SubtractDay(maxDate)
			if err != nil {
				return nil, fmt.Errorf("adjusting same-day max date: %w", err)
			}
		}
		if effective == last {
			c.log.Info("data is current, no refresh", "asOf", last)
			return &Report{State: StateFresh, AsOf: last}, nil
		}
	}

	report, err := c.Refresh(ctx, last)
	if err != nil {
		return nil, err
	}
	return report, nil
}

// Refresh rebuilds the store unconditionally: every universe instrument is
// fetched from the provider into a staging table, which is swapped in only
// after the whole loop finishes. An interrupted refresh leaves the previous
// table intact and still stale.
func (c *Coordinator) Refresh(ctx context.Context, asOf string) (*Report, error) {
	c.log.Info("store is stale, refreshing",
		"asOf", asOf, "provider", c.provider.Name(), "instruments", len(c.universe))

	if err := c.store.BeginRebuild(ctx); err != nil {
		return nil, fmt.Errorf("staging rebuild: %w", err)
	}

	report := &Report{State: StateStale, AsOf: asOf}
	for _, ticker := range c.universe {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("waiting for rate limit: %w", err)
		}

		bars, err := c.provider.History(ctx, ticker)
		if err != nil {
			if errors.Is(err, provider.ErrRateLimited) {
				// Quota breach is a hard stop; the staging table is
				// abandoned and the previous data stays live.
				return nil, fmt.Errorf("refresh aborted at %s: %w", ticker, err)
			}
			c.log.Warn("provider fetch failed, skipping instrument",
				"ticker", ticker, "error", err)
			report.Failed = append(report.Failed, ticker)
			continue
		}
		if len(bars) == 0 {
			c.log.Warn("provider returned no data, skipping instrument", "ticker", ticker)
			report.Failed = append(report.Failed, ticker)
			continue
		}

		if err := c.store.InsertBars(ctx, bars); err != nil {
			return nil, fmt.Errorf("loading bars for %s: %w", ticker, err)
		}
		report.Bars += len(bars)
		c.log.Debug("instrument loaded", "ticker", ticker, "bars", len(bars))
	}

	if err := c.store.CommitRebuild(ctx); err != nil {
		return nil, fmt.Errorf("swapping refreshed table in: %w", err)
	}

	c.log.Info("refresh complete",
		"asOf", asOf, "bars", report.Bars, "failed", len(report.Failed))

	if c.archive != nil {
		path, err := c.snapshot(ctx, asOf)
		if err != nil {
			// The refresh itself succeeded; a failed snapshot is not fatal.
			c.log.Warn("archive snapshot failed", "error", err)
		} else {
			report.Archive = path
		}
	}

	return report, nil
}

func (c *Coordinator) snapshot(ctx context.Context, asOf string) (string, error) {
	bars, err := c.store.AllBars(ctx)
	if err != nil {
		return "", fmt.Errorf("reading bars for snapshot: %w", err)
	}
	return c.archive.Snapshot(ctx, asOf, bars)
}
