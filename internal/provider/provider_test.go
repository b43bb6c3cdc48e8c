package provider

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

const avPayload = `{
  "Meta Data": {
    "1. Information": "Daily Prices (open, high, low, close) and Volumes",
    "2. Symbol": "VTI"
  },
  "Time Series (Daily)": {
    "2024-01-04": {"1. open": "236.50", "4. close": "238.20"},
    "2024-01-02": {"1. open": "236.00", "4. close": "237.50"},
    "2024-01-03": {"1. open": "237.00", "4. close": "236.10"}
  }
}`

func TestAlphaVantageHistory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("symbol"); got != "VTI" {
			t.Errorf("symbol param = %q, want VTI", got)
		}
		if got := r.URL.Query().Get("outputsize"); got != "full" {
			t.Errorf("outputsize param = %q, want full", got)
		}
		if got := r.URL.Query().Get("apikey"); got != "test-key" {
			t.Errorf("apikey param = %q, want test-key", got)
		}
		w.Write([]byte(avPayload))
	}))
	defer srv.Close()

	p := NewAlphaVantage("test-key", srv.URL)
	bars, err := p.History(context.Background(), "VTI")
	if err != nil {
		t.Fatalf("History: %v", err)
	}

	if len(bars) != 3 {
		t.Fatalf("History returned %d bars, want 3", len(bars))
	}

	// Bars come back oldest first with canonical dates.
	wantDates := []string{"20240102", "20240103", "20240104"}
	for i, want := range wantDates {
		if bars[i].Date != want {
			t.Errorf("bars[%d].Date = %s, want %s", i, bars[i].Date, want)
		}
		if bars[i].Ticker != "VTI" {
			t.Errorf("bars[%d].Ticker = %s, want VTI", i, bars[i].Ticker)
		}
	}
	if bars[0].Open != 236.00 || bars[0].Close != 237.50 {
		t.Errorf("bars[0] = %+v, want open 236.00 close 237.50", bars[0])
	}
}

func TestAlphaVantageRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The API reports quota breaches with HTTP 200 and an Information
		// field in the body.
		w.Write([]byte(`{"Information": "Thank you for using Alpha Vantage! Our standard API rate limit is 25 requests per day."}`))
	}))
	defer srv.Close()

	p := NewAlphaVantage("test-key", srv.URL)
	_, err := p.History(context.Background(), "VTI")
	if !errors.Is(err, ErrRateLimited) {
		t.Errorf("History = %v, want ErrRateLimited", err)
	}
}

func TestAlphaVantageErrorMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Error Message": "Invalid API call."}`))
	}))
	defer srv.Close()

	p := NewAlphaVantage("test-key", srv.URL)
	_, err := p.History(context.Background(), "BOGUS")
	if err == nil {
		t.Fatal("History should fail on an Error Message payload")
	}
	if errors.Is(err, ErrRateLimited) {
		t.Error("Error Message payload must not be classified as rate limiting")
	}
}

func TestAlphaVantageBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := NewAlphaVantage("test-key", srv.URL)
	if _, err := p.History(context.Background(), "VTI"); err == nil {
		t.Fatal("History should fail on a non-200 status")
	}
}

func TestProviderNames(t *testing.T) {
	if got := NewAlphaVantage("k", "").Name(); got != "alphavantage" {
		t.Errorf("AlphaVantage.Name() = %q", got)
	}
	if got := NewAlpaca("k", "s", "", 0).Name(); got != "alpaca" {
		t.Errorf("Alpaca.Name() = %q", got)
	}
}

func TestAlpacaLookbackDefault(t *testing.T) {
	p := NewAlpaca("k", "s", "", 0)
	if p.lookbackYears != 2 {
		t.Errorf("lookbackYears = %d, want default 2", p.lookbackYears)
	}
	p = NewAlpaca("k", "s", "", 5)
	if p.lookbackYears != 5 {
		t.Errorf("lookbackYears = %d, want 5", p.lookbackYears)
	}
}
