// API server entry point: serves the admin HTTP API over the configured
// storage backend.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/minhaarvore/arvore/internal/bootstrap"
	"github.com/minhaarvore/arvore/internal/config"
	"github.com/minhaarvore/arvore/internal/infrastructure/monitoring/logging"
	httpserver "github.com/minhaarvore/arvore/internal/interfaces/http"
	"github.com/minhaarvore/arvore/internal/interfaces/http/handlers"
)

const defaultConfigPath = "configs/config.yaml"

var version = "dev"

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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialize application", logging.Err(err))
		os.Exit(1)
	}
	defer app.Close(context.Background())

	checkers := make([]handlers.HealthChecker, 0, len(app.HealthCheckers()))
	for _, ck := range app.HealthCheckers() {
		checkers = append(checkers, handlers.CheckerFunc{ComponentName: ck.Component, Fn: ck.Fn})
	}

	router := httpserver.NewRouter(httpserver.RouterConfig{
		Consistency: handlers.NewConsistencyHandler(app.Consistency),
		Dedup:       handlers.NewDedupHandler(app.Dedup),
		Kinship:     handlers.NewKinshipHandler(app.Persons, app.Kinship),
		Subfamily:   handlers.NewSubfamilyHandler(app.Subfamily),
		Health:      handlers.NewHealthHandler(version, checkers...),
		Gatherer:    app.Registry,
		Logger:      log,
		Mode:        cfg.Server.Mode,
	})
	srv := httpserver.NewServer(cfg.Server, router, log)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	log.Info("api server started",
		logging.String("version", version),
		logging.String("backend", cfg.Storage.Backend),
		logging.Int("port", cfg.Server.Port))

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			log.Error("http server failed", logging.Err(err))
		}
	}

	if err := srv.Stop(context.Background()); err != nil {
		log.Error("http server shutdown failed", logging.Err(err))
	}
}

func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config.LoadFromEnv()
	}
	return config.Load(path)
}
