// Package store persists the daily bar cache in a single SQLite table and
// snapshots completed refreshes to Parquet archives.
package store

import (
	"context"
	"errors"

	"markettracker/internal/domain"
)

// ErrNotFound is returned when a requested ticker has no rows in the store.
var ErrNotFound = errors.New("store: ticker not found")

// ErrEmptyStore is returned by operations that cannot proceed against a
// store with no rows at all.
var ErrEmptyStore = errors.New("store: no data")

// BarStore is the read/rebuild surface over the daily bar table. Writes go
// exclusively through the rebuild cycle: BeginRebuild stages a fresh table,
// InsertBars fills it, CommitRebuild swaps it in atomically. Readers always
// see either the previous complete table or the new one.
type BarStore interface {
	// MaxDate returns the latest date present, or "" when the store is empty.
	MaxDate(ctx context.Context) (string, error)

	// HasDate reports whether any bar exists for the given date.
	HasDate(ctx context.Context, date string) (bool, error)

	// HasTicker reports whether any bar exists for the given ticker.
	HasTicker(ctx context.Context, ticker string) (bool, error)

	// Tickers returns the sorted distinct tickers present.
	Tickers(ctx context.Context) ([]string, error)

	// CloseAt returns the close for (ticker, date). ok is false when the row
	// does not exist.
	CloseAt(ctx context.Context, ticker, date string) (close float64, ok bool, err error)

	// BarsBetween returns all bars for the given tickers with date in
	// [start, end] inclusive, ordered by ticker then date.
	BarsBetween(ctx context.Context, tickers []string, start, end string) ([]domain.Bar, error)

	// AllBars returns every bar, ordered by ticker then date.
	AllBars(ctx context.Context) ([]domain.Bar, error)

	// Count returns the total number of bars.
	Count(ctx context.Context) (int, error)

	// BeginRebuild creates (or recreates) the empty staging table.
	BeginRebuild(ctx context.Context) error

	// InsertBars appends a batch of bars to the staging table.
	InsertBars(ctx context.Context, bars []domain.Bar) error

	// CommitRebuild atomically replaces the live table with the staging table.
	CommitRebuild(ctx context.Context) error
}
