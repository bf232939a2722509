// Worker entry point: runs the periodic graph passes (reconciliation,
// duplicate scans, subfamily suggestions, the daily birthday scan) and
// exposes health and metrics endpoints.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/minhaarvore/arvore/internal/application/jobs"
	"github.com/minhaarvore/arvore/internal/bootstrap"
	"github.com/minhaarvore/arvore/internal/config"
	"github.com/minhaarvore/arvore/internal/infrastructure/monitoring/logging"
	"github.com/minhaarvore/arvore/pkg/errors"
)

const defaultConfigPath = "configs/config.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logging.NewLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	log = log.Named("worker")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialize application", logging.Err(err))
		os.Exit(1)
	}
	defer app.Close(context.Background())

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return runReconcileLoop(ctx, app, cfg.Engine.ReconcileInterval, log) })
	g.Go(func() error { return runDuplicateScanLoop(ctx, app, cfg.Engine.DuplicateScanInterval, log) })
	g.Go(func() error { return runBirthdayLoop(ctx, app, cfg.Engine.BirthdayScanHourUTC, log) })
	g.Go(func() error { return serveProbes(ctx, app, cfg, log) })

	log.Info("worker started",
		logging.String("backend", cfg.Storage.Backend),
		logging.Duration("reconcile_interval", cfg.Engine.ReconcileInterval),
		logging.Duration("duplicate_scan_interval", cfg.Engine.DuplicateScanInterval))

	if err := g.Wait(); err != nil && err != context.Canceled {
		log.Error("worker stopped with error", logging.Err(err))
		os.Exit(1)
	}
	log.Info("worker stopped")
}

// runReconcileLoop runs a full consistency pass on every tick and refreshes
// the shared snapshot cache from the corrected graph.
func runReconcileLoop(ctx context.Context, app *bootstrap.App, interval time.Duration, log logging.Logger) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		report, err := app.Consistency.Run(ctx)
		if err != nil {
			// A concurrent pass holding the lock is routine, not a failure.
			if errors.IsCode(err, errors.ErrCodeReconcileInProgress) {
				log.Debug("reconciliation skipped, lock held elsewhere")
				continue
			}
			log.Error("reconciliation pass failed", logging.Err(err))
			continue
		}
		log.Info("reconciliation pass finished",
			logging.Int("scanned", report.Scanned),
			logging.Int("mutated", report.Mutated))

		if app.Cache != nil {
			snapshot, err := app.Persons.GetAll(ctx)
			if err == nil {
				if err := app.Cache.Populate(ctx, snapshot); err != nil {
					log.Warn("failed to refresh snapshot cache", logging.Err(err))
				}
			}
		}
	}
}

// runDuplicateScanLoop scans for duplicate candidates and publishes subfamily
// suggestions alongside, both being periodic read-only passes.
func runDuplicateScanLoop(ctx context.Context, app *bootstrap.App, interval time.Duration, log logging.Logger) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		candidates, err := app.Dedup.Scan(ctx)
		if err != nil {
			log.Error("duplicate scan failed", logging.Err(err))
		} else if len(candidates) > 0 {
			log.Info("duplicate candidates found", logging.Int("count", len(candidates)))
		}

		suggestions, err := app.Subfamily.Suggest(ctx)
		if err != nil {
			log.Error("subfamily suggestion scan failed", logging.Err(err))
			continue
		}
		if len(suggestions) > 0 && app.Events != nil {
			if err := app.Events.PublishSuggestions(ctx, suggestions); err != nil {
				log.Warn("failed to publish subfamily suggestions", logging.Err(err))
			}
		}
	}
}

// runBirthdayLoop fires once a day at the configured UTC hour and publishes
// who celebrates a birthday that day.
func runBirthdayLoop(ctx context.Context, app *bootstrap.App, hourUTC int, log logging.Logger) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(untilNextRun(time.Now().UTC(), hourUTC)):
		}

		day := time.Now().UTC()
		snapshot, err := app.Persons.GetAll(ctx)
		if err != nil {
			log.Error("birthday scan failed to load snapshot", logging.Err(err))
			continue
		}

		celebrating := jobs.BirthdaysOn(day, snapshot)
		if len(celebrating) == 0 {
			continue
		}
		ages := make([]int, len(celebrating))
		for i, p := range celebrating {
			ages[i] = jobs.Age(*p.BirthDate, day)
		}
		log.Info("birthdays today", logging.Int("count", len(celebrating)))
		if app.Events != nil {
			if err := app.Events.PublishBirthdays(ctx, day, celebrating, ages); err != nil {
				log.Warn("failed to publish birthday events", logging.Err(err))
			}
		}
	}
}

// untilNextRun returns the wait until the next occurrence of hourUTC.
func untilNextRun(now time.Time, hourUTC int) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day(), hourUTC, 0, 0, 0, time.UTC)
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next.Sub(now)
}

// serveProbes exposes /healthz and /metrics for the scheduler.
func serveProbes(ctx context.Context, app *bootstrap.App, cfg *config.Config, log logging.Logger) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.HandlerFor(app.Registry, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config.LoadFromEnv()
	}
	return config.Load(path)
}
