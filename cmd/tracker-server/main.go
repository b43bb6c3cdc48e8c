package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"markettracker/internal/app"
	"markettracker/internal/httpapi"
)

func main() {
	noSync := flag.Bool("no-sync", false, "serve immediately without refreshing the store first")
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
		report, err := a.Coordinator.Run(ctx, time.Now())
		if err != nil {
			// Stale data is still serveable; the dashboard surfaces the
			// as-of date so the user can tell.
			slog.Warn("startup sync failed, serving existing data", "error", err)
		} else {
			slog.Info("startup sync finished",
				"state", report.State, "asOf", report.AsOf, "failed", report.Failed)
		}
	}

	qs := httpapi.NewQueryServer(a.Engine, a.Store, a.Log)
	addr := fmt.Sprintf("%s:%d", a.Config.Server.Host, a.Config.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      qs.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("serving query API", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server error: %v", err)
	}
}
