package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"markettracker/internal/analytics"
	"markettracker/internal/calendar"
	"markettracker/internal/store"
)

// allowedMonths is the enumerated lookback set the dashboard offers.
var allowedMonths = map[int]bool{1: true, 2: true, 3: true, 6: true, 12: true, 24: true}

// QueryServer serves the tracker's query API.
type QueryServer struct {
	engine *analytics.Engine
	store  store.BarStore
	log    *slog.Logger

	// now is time.Now unless overridden in tests.
	now func() time.Time
}

// NewQueryServer creates a QueryServer over the given engine and store.
func NewQueryServer(engine *analytics.Engine, s store.BarStore, log *slog.Logger) *QueryServer {
	return &QueryServer{
		engine: engine,
		store:  s,
		log:    log,
		now:    time.Now,
	}
}

// RegisterRoutes attaches the API handlers to mux.
func (s *QueryServer) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/tickers", s.handleTickers)
	mux.HandleFunc("GET /api/change", s.handleChange)
	mux.HandleFunc("GET /api/series", s.handleSeries)
	mux.HandleFunc("GET /healthz", s.handleHealth)
}

// Handler returns an http.Handler with CORS middleware.
func (s *QueryServer) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return corsMiddleware(mux)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func (s *QueryServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

func (s *QueryServer) handleTickers(w http.ResponseWriter, r *http.Request) {
	tickers, err := s.store.Tickers(r.Context())
	if err != nil {
		s.log.Error("listing tickers", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if tickers == nil {
		tickers = []string{}
	}
	writeJSON(w, TickersResponse{Tickers: tickers})
}

func (s *QueryServer) handleChange(w http.ResponseWriter, r *http.Request) {
	ticker := r.URL.Query().Get("ticker")
	if ticker == "" {
		writeError(w, http.StatusBadRequest, "ticker parameter is required")
		return
	}
	months, ok := parseMonths(w, r)
	if !ok {
		return
	}

	rng, ok := s.resolveRange(w, r, months)
	if !ok {
		return
	}

	change, err := s.engine.PercentChange(r.Context(), ticker, rng.End, rng.Start)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "ticker not in data: "+ticker)
			return
		}
		s.log.Error("computing percent change", "ticker", ticker, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	resp := ChangeResponse{Ticker: ticker, AsOf: displayDate(rng.End), Months: months}
	if change == nil {
		resp.NoData = true
	} else {
		resp.Percent = change.Percent
	}
	writeJSON(w, resp)
}

func (s *QueryServer) handleSeries(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("tickers")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "tickers parameter is required")
		return
	}
	var tickers []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tickers = append(tickers, t)
		}
	}
	if len(tickers) == 0 {
		writeError(w, http.StatusBadRequest, "tickers parameter is required")
		return
	}
	months, ok := parseMonths(w, r)
	if !ok {
		return
	}

	rng, ok := s.resolveRange(w, r, months)
	if !ok {
		return
	}

	points, err := s.engine.CloseSeries(r.Context(), tickers, rng.End, rng.Start)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no data for requested tickers")
			return
		}
		s.log.Error("building close series", "tickers", tickers, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	resp := SeriesResponse{
		AsOf:   displayDate(rng.End),
		Start:  displayDate(rng.Start),
		Months: months,
		Points: make([]PointJSON, 0, len(points)),
	}
	for _, p := range points {
		resp.Points = append(resp.Points, PointJSON{
			Ticker: p.Ticker,
			Date:   displayDate(p.Date),
			Close:  p.Close,
		})
	}
	writeJSON(w, resp)
}

// resolveRange resolves the lookback window, writing the appropriate error
// response on failure.
func (s *QueryServer) resolveRange(w http.ResponseWriter, r *http.Request, months int) (analytics.Range, bool) {
	rng, err := s.engine.ResolveRange(r.Context(), months, s.now())
	if err != nil {
		switch {
		case errors.Is(err, store.ErrEmptyStore):
			writeError(w, http.StatusServiceUnavailable, "no data loaded yet")
		case errors.Is(err, calendar.ErrWalkExceeded):
			writeError(w, http.StatusServiceUnavailable, "data is stale, refresh required")
		default:
			s.log.Error("resolving range", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return analytics.Range{}, false
	}
	return rng, true
}

func parseMonths(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("months")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "months parameter is required")
		return 0, false
	}
	months, err := strconv.Atoi(raw)
	if err != nil || !allowedMonths[months] {
		writeError(w, http.StatusBadRequest, "months must be one of 1, 2, 3, 6, 12, 24")
		return 0, false
	}
	return months, true
}

// displayDate converts a canonical YYYYMMDD date to the YYYY-MM-DD form
// responses use.
func displayDate(date string) string {
	t, err := calendar.Parse(date)
	if err != nil {
		return date
	}
	return t.Format("2006-01-02")
}
