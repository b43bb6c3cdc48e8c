// Package provider implements the upstream daily-bar data sources. Every
// provider exposes the same History capability; the sync coordinator does
// not care which one is behind it.
package provider

import (
	"context"
	"errors"

	"markettracker/internal/domain"
)

// ErrRateLimited signals that the upstream provider refused the call for
// quota reasons. Unlike a transport failure, it is a hard stop for the
// whole refresh run, not a per-instrument skip.
var ErrRateLimited = errors.New("provider: rate limit reached")

// Provider fetches the available daily history for one instrument.
type Provider interface {
	// Name returns the provider identifier, for logs and reports.
	Name() string

	// History returns daily bars for ticker over the provider's lookback
	// window, oldest first. An empty slice with a nil error means the
	// provider knows nothing about the ticker.
	History(ctx context.Context, ticker string) ([]domain.Bar, error)
}
