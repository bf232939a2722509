package consistency

import (
	"context"
	"fmt"

	"github.com/minhaarvore/arvore/internal/domain/person"
	"github.com/minhaarvore/arvore/internal/infrastructure/monitoring/logging"
	"github.com/minhaarvore/arvore/pkg/errors"
)

// PassGuard serializes graph-mutating passes across processes.  At most one
// reconciliation or merge may run against the same store at a time; the redis
// lock is the production implementation, a no-op guard serves tests.
type PassGuard interface {
	TryLock(ctx context.Context) (bool, error)
	Unlock(ctx context.Context) error
}

// EventPublisher emits the reconciliation report for downstream consumers
// (admin notification pipeline, audit).  Publish failures never fail a pass.
type EventPublisher interface {
	PublishReport(ctx context.Context, report *Report) error
}

// Recorder receives pass outcomes for monitoring.
type Recorder interface {
	ReconciliationCompleted(report *Report)
}

// ServiceConfig wires the reconciliation service.  Guard, Events, and Metrics
// are optional; Store, Reconciler, and Logger are required.
type ServiceConfig struct {
	Store      person.GraphStore
	Reconciler *Reconciler
	Guard      PassGuard
	Events     EventPublisher
	Metrics    Recorder
	Logger     logging.Logger
}

// Service runs reconciliation passes against the authoritative store: it
// obtains one consistent snapshot, runs the pure engine, and commits the
// corrected write-set with per-record failure isolation.
type Service struct {
	store      person.GraphStore
	reconciler *Reconciler
	guard      PassGuard
	events     EventPublisher
	metrics    Recorder
	log        logging.Logger
}

// NewService validates cfg and constructs the service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Store == nil {
		return nil, errors.InvalidParam("consistency service requires a graph store")
	}
	if cfg.Reconciler == nil {
		return nil, errors.InvalidParam("consistency service requires a reconciler")
	}
	if cfg.Logger == nil {
		return nil, errors.InvalidParam("consistency service requires a logger")
	}
	return &Service{
		store:      cfg.Store,
		reconciler: cfg.Reconciler,
		guard:      cfg.Guard,
		events:     cfg.Events,
		metrics:    cfg.Metrics,
		log:        cfg.Logger.Named("consistency"),
	}, nil
}

// Run executes one full reconciliation pass.  The report is returned even
// when the pass partially fails; a non-nil error tells the scheduler to retry
// the whole pass later.
func (s *Service) Run(ctx context.Context) (*Report, error) {
	release, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	snapshot, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSnapshotUnavailable, "failed to load graph snapshot")
	}

	corrected, report := s.reconciler.Reconcile(snapshot)
	for _, p := range corrected {
		if err := s.store.Put(ctx, p); err != nil {
			s.log.Error("failed to persist corrected record",
				logging.String("person_id", p.ID), logging.Err(err))
			report.Failures = append(report.Failures, WriteFailure{
				PersonID: p.ID,
				Error:    err.Error(),
			})
		}
	}

	s.log.Info("reconciliation pass finished",
		logging.Int("scanned", report.Scanned),
		logging.Int("mutated", report.Mutated),
		logging.Int("anomalies", len(report.Details)),
		logging.Int("write_failures", len(report.Failures)),
		logging.Duration("duration", report.Duration))

	if s.metrics != nil {
		s.metrics.ReconciliationCompleted(report)
	}
	if s.events != nil {
		if err := s.events.PublishReport(ctx, report); err != nil {
			s.log.Warn("failed to publish reconciliation report", logging.Err(err))
		}
	}

	if len(report.Failures) > 0 {
		return report, errors.New(errors.ErrCodeReconcilePartial,
			fmt.Sprintf("%d of %d corrections failed to persist", len(report.Failures), report.Mutated))
	}
	return report, nil
}

// RecomputeDistances refreshes DistanceFromRoot across the graph and persists
// the changed records.  Uses the same failure isolation as Run.
func (s *Service) RecomputeDistances(ctx context.Context) (int, error) {
	snapshot, err := s.store.GetAll(ctx)
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeSnapshotUnavailable, "failed to load graph snapshot")
	}

	changed := RecomputeRootDistances(snapshot)
	var failed int
	for _, p := range changed {
		if err := s.store.Put(ctx, p); err != nil {
			failed++
			s.log.Error("failed to persist recomputed distance",
				logging.String("person_id", p.ID), logging.Err(err))
		}
	}
	if failed > 0 {
		return len(changed) - failed, errors.New(errors.ErrCodeReconcilePartial,
			fmt.Sprintf("%d of %d distance updates failed to persist", failed, len(changed)))
	}
	return len(changed), nil
}

// acquire takes the single-flight guard when one is configured.  The returned
// release func is always safe to call.
func (s *Service) acquire(ctx context.Context) (func(), error) {
	if s.guard == nil {
		return func() {}, nil
	}
	ok, err := s.guard.TryLock(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to acquire pass guard")
	}
	if !ok {
		return nil, errors.New(errors.ErrCodeReconcileInProgress, "another graph pass holds the lock")
	}
	return func() {
		if err := s.guard.Unlock(context.WithoutCancel(ctx)); err != nil {
			s.log.Warn("failed to release pass guard", logging.Err(err))
		}
	}, nil
}
