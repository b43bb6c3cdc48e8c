package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"markettracker/internal/domain"
	"markettracker/internal/util"
)

// Compile-time interface check.
var _ Provider = (*AlphaVantage)(nil)

// DefaultAlphaVantageURL is the production query endpoint.
const DefaultAlphaVantageURL = "https://www.alphavantage.co/query"

// AlphaVantage fetches daily bars from the Alpha Vantage TIME_SERIES_DAILY
// endpoint with full output size.
type AlphaVantage struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewAlphaVantage creates an AlphaVantage provider. An empty baseURL selects
// the production endpoint.
func NewAlphaVantage(apiKey, baseURL string) *AlphaVantage {
	if baseURL == "" {
		baseURL = DefaultAlphaVantageURL
	}
	return &AlphaVantage{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Name returns the provider identifier.
func (p *AlphaVantage) Name() string { return "alphavantage" }

// avResponse is the subset of the Alpha Vantage payload we consume. A
// populated Information field is how the API reports a quota breach (with
// HTTP 200, so it must be detected in the body).
type avResponse struct {
	Information  string           `json:"Information"`
	ErrorMessage string           `json:"Error Message"`
	Series       map[string]avDay `json:"Time Series (Daily)"`
}

type avDay struct {
	Open  string `json:"1. open"`
	Close string `json:"4. close"`
}

// History fetches the full daily series for ticker, oldest first.
func (p *AlphaVantage) History(ctx context.Context, ticker string) ([]domain.Bar, error) {
	q := url.Values{}
	q.Set("function", "TIME_SERIES_DAILY")
	q.Set("outputsize", "full")
	q.Set("symbol", ticker)
	q.Set("apikey", p.apiKey)
	reqURL := p.baseURL + "?" + q.Encode()

	var body []byte
	err := util.Retry(ctx, 3, time.Second, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return err
		}
		resp, err := p.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("fetching %s: %w", ticker, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("fetching %s: unexpected status %s", ticker, resp.Status)
		}
		body, err = io.ReadAll(resp.Body)
		return err
	})
	if err != nil {
		return nil, err
	}

	var parsed avResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decoding response for %s: %w", ticker, err)
	}

	if parsed.Information != "" {
		return nil, fmt.Errorf("%w: %s", ErrRateLimited, parsed.Information)
	}
	if parsed.ErrorMessage != "" {
		return nil, fmt.Errorf("alphavantage error for %s: %s", ticker, parsed.ErrorMessage)
	}

	bars := make([]domain.Bar, 0, len(parsed.Series))
	for day, v := range parsed.Series {
		date, err := normalizeDate(day)
		if err != nil {
			return nil, err
		}
		open, err := strconv.ParseFloat(v.Open, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing open for %s@%s: %w", ticker, day, err)
		}
		closePx, err := strconv.ParseFloat(v.Close, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing close for %s@%s: %w", ticker, day, err)
		}
		bars = append(bars, domain.Bar{
			Ticker: ticker,
			Date:   date,
			Open:   open,
			Close:  closePx,
		})
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Date < bars[j].Date })
	return bars, nil
}

// normalizeDate converts the API's YYYY-MM-DD keys to the canonical
// YYYYMMDD form.
func normalizeDate(s string) (string, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return "", fmt.Errorf("parsing series date %q: %w", s, err)
	}
	return t.Format(domain.DateFormat), nil
}
