package provider

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"markettracker/internal/domain"
)

// Compile-time interface check.
var _ Provider = (*Alpaca)(nil)

// Alpaca fetches daily bars from the Alpaca market-data API over a bounded
// lookback window.
type Alpaca struct {
	client        *marketdata.Client
	lookbackYears int
	now           func() time.Time
}

// NewAlpaca creates an Alpaca provider. An empty dataURL selects the SDK's
// default endpoint. lookbackYears bounds the history window; values below 1
// default to 2.
func NewAlpaca(apiKey, apiSecret, dataURL string, lookbackYears int) *Alpaca {
	opts := marketdata.ClientOpts{
		APIKey:    apiKey,
		APISecret: apiSecret,
	}
	if dataURL != "" {
		opts.BaseURL = dataURL
	}
	if lookbackYears < 1 {
		lookbackYears = 2
	}
	return &Alpaca{
		client:        marketdata.NewClient(opts),
		lookbackYears: lookbackYears,
		now:           time.Now,
	}
}

// Name returns the provider identifier.
func (p *Alpaca) Name() string { return "alpaca" }

// History fetches daily bars for ticker over the lookback window, oldest
// first (the API returns them in ascending time order).
func (p *Alpaca) History(ctx context.Context, ticker string) ([]domain.Bar, error) {
	end := p.now()
	start := end.AddDate(-p.lookbackYears, 0, 0)

	alpacaBars, err := p.client.GetBars(ticker, marketdata.GetBarsRequest{
		TimeFrame: marketdata.OneDay,
		Start:     start,
		End:       end,
	})
	if err != nil {
		if isRateLimit(err) {
			return nil, fmt.Errorf("%w: %v", ErrRateLimited, err)
		}
		return nil, fmt.Errorf("GetBars %s: %w", ticker, err)
	}

	bars := make([]domain.Bar, 0, len(alpacaBars))
	for _, ab := range alpacaBars {
		bars = append(bars, domain.Bar{
			Ticker: ticker,
			Date:   ab.Timestamp.Format(domain.DateFormat),
			Open:   ab.Open,
			Close:  ab.Close,
		})
	}
	return bars, nil
}

// isRateLimit reports whether the SDK error is an HTTP 429. The SDK
// surfaces the status in the error text.
func isRateLimit(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") || strings.Contains(msg, "too many requests")
}
