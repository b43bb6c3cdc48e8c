package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"markettracker/internal/app"
	"markettracker/internal/calendar"
	"markettracker/internal/sync"
)

func main() {
	force := flag.Bool("force", false, "refresh even if the store is already current")
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

	today := time.Now()

	var report *sync.Report
	if *force {
		asOf, err := calendar.LastCompletedTradingDay(today)
		if err != nil {
			log.Fatalf("resolving last trading day: %v", err)
		}
		report, err = a.Coordinator.Refresh(ctx, asOf)
		if err != nil {
			log.Fatalf("forced refresh failed: %v", err)
		}
	} else {
		report, err = a.Coordinator.Run(ctx, today)
		if err != nil {
			log.Fatalf("sync failed: %v", err)
		}
	}

	slog.Info("sync finished",
		"state", report.State,
		"asOf", report.AsOf,
		"bars", report.Bars,
		"failed", report.Failed,
		"archive", report.Archive,
	)
}
