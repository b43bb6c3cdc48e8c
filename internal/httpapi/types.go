// Package httpapi provides the HTTP query API the dashboard consumes:
// percent-change rows and close-price series as plain JSON, plus the
// human-readable as-of date for the resolved range.
package httpapi

// TickersResponse lists the tickers actually present in the store.
type TickersResponse struct {
	Tickers []string `json:"tickers"`
}

// ChangeResponse is the percent-change result for one ticker. NoData is set
// when the ticker exists but has no row at one of the resolved dates.
type ChangeResponse struct {
	Ticker  string  `json:"ticker"`
	AsOf    string  `json:"asOf"` // resolved end date, YYYY-MM-DD
	Months  int     `json:"months"`
	Percent float64 `json:"percent"`
	NoData  bool    `json:"noData,omitempty"`
}

// PointJSON is one element of a close-price series.
type PointJSON struct {
	Ticker string  `json:"ticker"`
	Date   string  `json:"date"` // YYYY-MM-DD
	Close  float64 `json:"close"`
}

// SeriesResponse is a multi-ticker close-price series over a resolved range.
type SeriesResponse struct {
	AsOf   string      `json:"asOf"`  // resolved end date, YYYY-MM-DD
	Start  string      `json:"start"` // resolved start date, YYYY-MM-DD
	Months int         `json:"months"`
	Points []PointJSON `json:"points"`
}
