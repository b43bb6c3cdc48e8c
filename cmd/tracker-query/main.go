package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"markettracker/internal/app"
	"markettracker/internal/store"
)

func main() {
	months := flag.Int("months", 1, "lookback in months (1, 2, 3, 6, 12, 24)")
	tickers := flag.String("tickers", "", "comma-separated tickers (default: all in store)")
	noSync := flag.Bool("no-sync", false, "query existing data without refreshing first")
	flag.Parse()

	cfgPath := "config/tracker.yaml"
	if p := os.Getenv("TRACKER_CONFIG"); p != "" {
		cfgPath = p
	}

	a, err := app.New(cfgPath)
	if err != nil {
		log.Fatalf("failed to initialize: %v", err)
	}
	defer a.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if !*noSync {
		if _, err := a.Coordinator.Run(ctx, time.Now()); err != nil {
			log.Fatalf("sync failed: %v", err)
		}
	}

	var selected []string
	if *tickers != "" {
		for _, t := range strings.Split(*tickers, ",") {
			if t = strings.TrimSpace(t); t != "" {
				selected = append(selected, strings.ToUpper(t))
			}
		}
	} else {
		selected, err = a.Store.Tickers(ctx)
		if err != nil {
			log.Fatalf("listing tickers: %v", err)
		}
	}

	rng, err := a.Engine.ResolveRange(ctx, *months, time.Now())
	if err != nil {
		log.Fatalf("resolving range: %v", err)
	}

	fmt.Printf("Change over %d month(s), %s to %s\n\n", *months, rng.Start, rng.End)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TICKER\tCHANGE")
	for _, ticker := range selected {
		change, err := a.Engine.PercentChange(ctx, ticker, rng.End, rng.Start)
		switch {
		case errors.Is(err, store.ErrNotFound):
			fmt.Fprintf(w, "%s\tnot in data\n", ticker)
		case err != nil:
			log.Fatalf("computing change for %s: %v", ticker, err)
		case change == nil:
			fmt.Fprintf(w, "%s\tno data\n", ticker)
		default:
			fmt.Fprintf(w, "%s\t%+.3f%%\n", ticker, change.Percent)
		}
	}
	w.Flush()
}
