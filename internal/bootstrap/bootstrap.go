// Package bootstrap is the composition root shared by the binaries: it turns
// a Config into connected infrastructure and wired application services, and
// tears everything down again in reverse order.
package bootstrap

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/minhaarvore/arvore/internal/application/consistency"
	"github.com/minhaarvore/arvore/internal/application/dedup"
	"github.com/minhaarvore/arvore/internal/application/kinship"
	appsubfamily "github.com/minhaarvore/arvore/internal/application/subfamily"
	"github.com/minhaarvore/arvore/internal/config"
	"github.com/minhaarvore/arvore/internal/domain/person"
	"github.com/minhaarvore/arvore/internal/domain/subfamily"
	"github.com/minhaarvore/arvore/internal/infrastructure/database/memory"
	neo4jdrv "github.com/minhaarvore/arvore/internal/infrastructure/database/neo4j"
	neo4jrepo "github.com/minhaarvore/arvore/internal/infrastructure/database/neo4j/repositories"
	"github.com/minhaarvore/arvore/internal/infrastructure/database/postgres"
	pgrepo "github.com/minhaarvore/arvore/internal/infrastructure/database/postgres/repositories"
	redisdb "github.com/minhaarvore/arvore/internal/infrastructure/database/redis"
	"github.com/minhaarvore/arvore/internal/infrastructure/messaging/kafka"
	"github.com/minhaarvore/arvore/internal/infrastructure/monitoring/logging"
	prommetrics "github.com/minhaarvore/arvore/internal/infrastructure/monitoring/prometheus"
	"github.com/minhaarvore/arvore/pkg/errors"
)

// App holds every wired component.  Fields for optional infrastructure are
// nil when the config disables them.
type App struct {
	Config *config.Config
	Logger logging.Logger

	Persons     person.GraphStore
	Subfamilies subfamily.Store

	Redis    *redisdb.Client
	Cache    *redisdb.SnapshotCache
	Producer *kafka.Producer
	Events   *kafka.EventPublisher

	Registry *prometheus.Registry
	Metrics  *prommetrics.Metrics

	Consistency *consistency.Service
	Dedup       *dedup.Service
	Kinship     *kinship.Resolver
	Subfamily   *appsubfamily.Service

	pg     *postgres.Connection
	neo4j  *neo4jdrv.Driver
	closed bool
}

// New connects infrastructure per cfg and wires the application services.
// On error everything already opened is closed before returning.
func New(ctx context.Context, cfg *config.Config, log logging.Logger) (*App, error) {
	app := &App{
		Config:   cfg,
		Logger:   log,
		Registry: prometheus.NewRegistry(),
	}
	app.Metrics = prommetrics.NewMetrics(app.Registry)

	if err := app.connectStores(ctx, cfg, log); err != nil {
		app.Close(ctx)
		return nil, err
	}

	var consistencyGuard consistency.PassGuard
	var dedupGuard dedup.PassGuard
	if cfg.Redis.Addr != "" && cfg.Storage.Backend != config.BackendMemory {
		client, err := redisdb.NewClient(cfg.Redis, log)
		if err != nil {
			app.Close(ctx)
			return nil, err
		}
		app.Redis = client
		app.Cache = redisdb.NewSnapshotCache(client, log,
			redisdb.WithSnapshotTTL(cfg.Engine.SnapshotCacheTTL))
		lock := redisdb.NewPassLock(client, "graph-pass", log,
			redisdb.WithLockTTL(cfg.Engine.PassLockTTL))
		consistencyGuard = lock
		dedupGuard = lock
	}

	if cfg.Kafka.Enabled {
		producer, err := kafka.NewProducer(cfg.Kafka.Producer, log)
		if err != nil {
			app.Close(ctx)
			return nil, err
		}
		app.Producer = producer
		app.Events = kafka.NewEventPublisher(producer)
	}

	var consistencyEvents consistency.EventPublisher
	var dedupEvents dedup.EventPublisher
	if app.Events != nil {
		consistencyEvents = app.Events
		dedupEvents = app.Events
	}

	var err error
	app.Consistency, err = consistency.NewService(consistency.ServiceConfig{
		Store:      app.Persons,
		Reconciler: consistency.NewReconciler(consistency.WithMaxAncestryDepth(cfg.Engine.MaxAncestryDepth)),
		Guard:      consistencyGuard,
		Events:     consistencyEvents,
		Metrics:    app.Metrics,
		Logger:     log,
	})
	if err != nil {
		app.Close(ctx)
		return nil, err
	}

	app.Dedup, err = dedup.NewService(dedup.ServiceConfig{
		Store:    app.Persons,
		Detector: dedup.NewDetector(dedup.WithThreshold(cfg.Engine.DuplicateThreshold)),
		Engine:   dedup.NewEngine(),
		Guard:    dedupGuard,
		Events:   dedupEvents,
		Metrics:  app.Metrics,
		Logger:   log,
	})
	if err != nil {
		app.Close(ctx)
		return nil, err
	}

	app.Subfamily, err = appsubfamily.NewService(appsubfamily.ServiceConfig{
		Persons:     app.Persons,
		Subfamilies: app.Subfamilies,
		Detector:    appsubfamily.NewDetector(),
		Metrics:     app.Metrics,
		Logger:      log,
	})
	if err != nil {
		app.Close(ctx)
		return nil, err
	}

	app.Kinship = kinship.NewResolver(kinship.WithMaxDepth(cfg.Engine.KinshipMaxDepth))

	return app, nil
}

func (a *App) connectStores(ctx context.Context, cfg *config.Config, log logging.Logger) error {
	switch cfg.Storage.Backend {
	case config.BackendPostgres:
		if err := postgres.RunMigrations(cfg.Database, cfg.Database.MigrationsDir, log); err != nil {
			return err
		}
		conn, err := postgres.NewConnection(ctx, cfg.Database, log)
		if err != nil {
			return err
		}
		a.pg = conn
		a.Persons = pgrepo.NewPersonRepository(conn.Pool(), log)
		a.Subfamilies = pgrepo.NewSubfamilyRepository(conn.Pool(), log)
	case config.BackendNeo4j:
		driver, err := neo4jdrv.NewDriver(ctx, cfg.Neo4j, log)
		if err != nil {
			return err
		}
		a.neo4j = driver
		a.Persons = neo4jrepo.NewPersonGraphRepository(driver, log)
		// Confirmed subfamilies stay in memory under the neo4j backend; the
		// graph database holds person nodes only.
		a.Subfamilies = memory.NewSubfamilyStore()
	case config.BackendMemory:
		a.Persons = memory.NewGraphStore()
		a.Subfamilies = memory.NewSubfamilyStore()
	default:
		return errors.Newf(errors.ErrCodeConfigInvalid, "unknown storage backend %q", cfg.Storage.Backend)
	}
	return nil
}

// HealthCheckers returns one checker per connected infrastructure component.
func (a *App) HealthCheckers() []Checker {
	var checkers []Checker
	if a.pg != nil {
		checkers = append(checkers, Checker{Component: "postgres", Fn: a.pg.HealthCheck})
	}
	if a.neo4j != nil {
		checkers = append(checkers, Checker{Component: "neo4j", Fn: func(ctx context.Context) error {
			_, err := a.neo4j.ExecuteRead(ctx, func(tx neo4jdrv.Transaction) (any, error) {
				return tx.Run(ctx, "RETURN 1", nil)
			})
			return err
		}})
	}
	if a.Redis != nil {
		checkers = append(checkers, Checker{Component: "redis", Fn: func(ctx context.Context) error {
			return a.Redis.Underlying().Ping(ctx).Err()
		}})
	}
	return checkers
}

// Checker names one component health probe.
type Checker struct {
	Component string
	Fn        func(ctx context.Context) error
}

// Close releases every connection.  Safe to call more than once.
func (a *App) Close(ctx context.Context) {
	if a.closed {
		return
	}
	a.closed = true

	if a.Producer != nil {
		if err := a.Producer.Close(); err != nil {
			a.Logger.Warn("failed to close kafka producer", logging.Err(err))
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.Logger.Warn("failed to close redis client", logging.Err(err))
		}
	}
	if a.neo4j != nil {
		if err := a.neo4j.Close(ctx); err != nil {
			a.Logger.Warn("failed to close neo4j driver", logging.Err(err))
		}
	}
	if a.pg != nil {
		a.pg.Close()
	}
}
