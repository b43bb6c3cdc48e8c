// Package analytics answers the dashboard's queries against the bar store:
// resolving a relative lookback into dates that actually have data, percent
// change between two resolved dates, and close-price series over a window.
package analytics

import (
	"context"
	"fmt"
	"math"
	"time"

	"markettracker/internal/calendar"
	"markettracker/internal/domain"
	"markettracker/internal/store"
)

// maxEndWalk bounds the backward search for the most recent stored date. A
// store refreshed daily is never more than a long weekend behind today;
// exceeding the bound means the store is badly stale and the query should
// fail loudly instead of silently reporting old numbers.
const maxEndWalk = 10

// Range is a pair of dates both guaranteed, by construction, to have at
// least one bar in the store at resolution time. It is recomputed per query
// and never persisted.
type Range struct {
	End   string
	Start string
}

// Change is the percent-change result for one instrument.
type Change struct {
	Ticker  string
	Date    string // the resolved end date
	Percent float64
}

// Point is one element of a close-price series.
type Point struct {
	Ticker string
	Date   string
	Close  float64
}

// Engine computes analytics over a read-only view of the bar store.
type Engine struct {
	store store.BarStore
}

// New creates an Engine over the given store.
func New(s store.BarStore) *Engine {
	return &Engine{store: s}
}

// ResolveRange turns a "months back from today" request into the nearest
// dates for which the store actually has rows. Stored data may have gaps
// relative to the ideal calendar (provider outages, instruments listed
// mid-window), so the store's own contents are authoritative: the end date
// walks backward from today to the most recent stored date, and the start
// date walks forward from the calendar target until it hits data, never
// passing the end.
func (e *Engine) ResolveRange(ctx context.Context, months int, today time.Time) (Range, error) {
	n, err := e.store.Count(ctx)
	if err != nil {
		return Range{}, fmt.Errorf("checking store: %w", err)
	}
	if n == 0 {
		return Range{}, store.ErrEmptyStore
	}

	end := today.Format(domain.DateFormat)
	for i := 0; ; i++ {
		ok, err := e.store.HasDate(ctx, end)
		if err != nil {
			return Range{}, fmt.Errorf("resolving end date: %w", err)
		}
		if ok {
			break
		}
		if i >= maxEndWalk {
			return Range{}, fmt.Errorf("no stored date within %d days of today: %w",
				maxEndWalk, calendar.ErrWalkExceeded)
		}
		if end, err = calendar.SubtractDay(end); err != nil {
			return Range{}, err
		}
	}

	start := calendar.MonthsBack(months, today)
	for {
		if start >= end {
			// The end date is known to have data.
			start = end
			break
		}
		ok, err := e.store.HasDate(ctx, start)
		if err != nil {
			return Range{}, fmt.Errorf("resolving start date: %w", err)
		}
		if ok {
			break
		}
		if start, err = calendar.AddDay(start); err != nil {
			return Range{}, err
		}
	}

	return Range{End: end, Start: start}, nil
}

// PercentChange computes the percent change for one instrument between two
// resolved dates as round3(100 * (1 - close[start]/close[end])): up moves
// are positive. A ticker absent from the store entirely is ErrNotFound; a
// ticker missing a row at either specific date (possible even after range
// resolution, which only guarantees some instrument has data there) yields
// a nil result with no error.
func (e *Engine) PercentChange(ctx context.Context, ticker, end, start string) (*Change, error) {
	has, err := e.store.HasTicker(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("checking ticker %s: %w", ticker, err)
	}
	if !has {
		return nil, fmt.Errorf("ticker %s: %w", ticker, store.ErrNotFound)
	}

	endClose, okEnd, err := e.store.CloseAt(ctx, ticker, end)
	if err != nil {
		return nil, err
	}
	startClose, okStart, err := e.store.CloseAt(ctx, ticker, start)
	if err != nil {
		return nil, err
	}
	if !okEnd || !okStart {
		return nil, nil
	}

	return &Change{
		Ticker:  ticker,
		Date:    end,
		Percent: round3(100 * (1 - startClose/endClose)),
	}, nil
}

// CloseSeries returns the close prices for the given instruments between
// start and end inclusive, ordered by ticker then date. Instruments absent
// from the store contribute nothing; if every requested instrument is
// absent, the result is ErrNotFound rather than a silently empty series.
func (e *Engine) CloseSeries(ctx context.Context, tickers []string, end, start string) ([]Point, error) {
	anyPresent := false
	for _, t := range tickers {
		has, err := e.store.HasTicker(ctx, t)
		if err != nil {
			return nil, fmt.Errorf("checking ticker %s: %w", t, err)
		}
		if has {
			anyPresent = true
			break
		}
	}
	if !anyPresent {
		return nil, fmt.Errorf("no requested ticker in store: %w", store.ErrNotFound)
	}

	bars, err := e.store.BarsBetween(ctx, tickers, start, end)
	if err != nil {
		return nil, err
	}

	points := make([]Point, 0, len(bars))
	for _, b := range bars {
		points = append(points, Point{Ticker: b.Ticker, Date: b.Date, Close: b.Close})
	}
	return points, nil
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
