// Package markettracker provides a Go client for the tracker-server query
// API.
package markettracker

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client talks to a running tracker-server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a tracker API client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Change is a percent-change row for one ticker.
type Change struct {
	Ticker  string  `json:"ticker"`
	AsOf    string  `json:"asOf"`
	Months  int     `json:"months"`
	Percent float64 `json:"percent"`
	NoData  bool    `json:"noData,omitempty"`
}

// Point is one element of a close-price series.
type Point struct {
	Ticker string  `json:"ticker"`
	Date   string  `json:"date"`
	Close  float64 `json:"close"`
}

// Series is a multi-ticker close-price series over a resolved range.
type Series struct {
	AsOf   string  `json:"asOf"`
	Start  string  `json:"start"`
	Months int     `json:"months"`
	Points []Point `json:"points"`
}

// Tickers returns the tickers present in the server's store.
func (c *Client) Tickers(ctx context.Context) ([]string, error) {
	var resp struct {
		Tickers []string `json:"tickers"`
	}
	if err := c.get(ctx, "/api/tickers", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Tickers, nil
}

// Change retrieves the percent change for one ticker over the lookback.
func (c *Client) Change(ctx context.Context, ticker string, months int) (*Change, error) {
	q := url.Values{}
	q.Set("ticker", ticker)
	q.Set("months", strconv.Itoa(months))

	var change Change
	if err := c.get(ctx, "/api/change", q, &change); err != nil {
		return nil, err
	}
	return &change, nil
}

// Series retrieves the close-price series for the given tickers.
func (c *Client) Series(ctx context.Context, tickers []string, months int) (*Series, error) {
	q := url.Values{}
	q.Set("tickers", strings.Join(tickers, ","))
	q.Set("months", strconv.Itoa(months))

	var series Series
	if err := c.get(ctx, "/api/series", q, &series); err != nil {
		return nil, err
	}
	return &series, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	reqURL := c.baseURL + path
	if len(q) > 0 {
		reqURL += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("GET %s: %s (%s)", path, apiErr.Error, resp.Status)
		}
		return fmt.Errorf("GET %s: unexpected status %s", path, resp.Status)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
