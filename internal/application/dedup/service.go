package dedup

import (
	"context"
	"fmt"

	"github.com/minhaarvore/arvore/internal/domain/person"
	"github.com/minhaarvore/arvore/internal/infrastructure/monitoring/logging"
	"github.com/minhaarvore/arvore/pkg/errors"
)

// PassGuard serializes graph-mutating passes across processes; merges share
// the guard with reconciliation so the two can never interleave writes.
type PassGuard interface {
	TryLock(ctx context.Context) (bool, error)
	Unlock(ctx context.Context) error
}

// EventPublisher emits merge outcomes for downstream consumers.  Publish
// failures never fail the merge itself.
type EventPublisher interface {
	PublishMerge(ctx context.Context, result *MergeResult) error
}

// Recorder receives scan and merge outcomes for monitoring.
type Recorder interface {
	DuplicateScanCompleted(candidates int)
	MergeCompleted(updates int)
}

// ServiceConfig wires the dedup service.  Guard, Events, and Metrics are
// optional; Store, Detector, Engine, and Logger are required.
type ServiceConfig struct {
	Store    person.GraphStore
	Detector *Detector
	Engine   *Engine
	Guard    PassGuard
	Events   EventPublisher
	Metrics  Recorder
	Logger   logging.Logger
}

// Service drives duplicate scans and merge commits against the authoritative
// store.  A scan is a pure read; a merge is an exclusive write pass.
type Service struct {
	store    person.GraphStore
	detector *Detector
	engine   *Engine
	guard    PassGuard
	events   EventPublisher
	metrics  Recorder
	log      logging.Logger
}

// NewService validates cfg and constructs the service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Store == nil {
		return nil, errors.InvalidParam("dedup service requires a graph store")
	}
	if cfg.Detector == nil {
		return nil, errors.InvalidParam("dedup service requires a detector")
	}
	if cfg.Engine == nil {
		return nil, errors.InvalidParam("dedup service requires a merge engine")
	}
	if cfg.Logger == nil {
		return nil, errors.InvalidParam("dedup service requires a logger")
	}
	return &Service{
		store:    cfg.Store,
		detector: cfg.Detector,
		engine:   cfg.Engine,
		guard:    cfg.Guard,
		events:   cfg.Events,
		metrics:  cfg.Metrics,
		log:      cfg.Logger.Named("dedup"),
	}, nil
}

// Scan loads one snapshot and returns all duplicate candidates at or above
// the configured threshold.
func (s *Service) Scan(ctx context.Context) ([]Candidate, error) {
	snapshot, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSnapshotUnavailable, "failed to load graph snapshot")
	}

	candidates, err := s.detector.FindDuplicates(ctx, snapshot)
	if err != nil {
		return nil, err
	}

	s.log.Info("duplicate scan finished",
		logging.Int("scanned", len(snapshot)),
		logging.Int("candidates", len(candidates)))
	if s.metrics != nil {
		s.metrics.DuplicateScanCompleted(len(candidates))
	}
	return candidates, nil
}

// Merge collapses discard into keep and commits the full write-set.  The pass
// guard rejects concurrent graph passes; any write failure aborts the commit
// with MergeCommitFailed so the operator can retry after the store recovers.
func (s *Service) Merge(ctx context.Context, keepID, discardID string) (*MergeResult, error) {
	release, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	snapshot, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSnapshotUnavailable, "failed to load graph snapshot")
	}
	idx := person.BuildIndex(snapshot)

	keep := idx.Get(keepID)
	if keep == nil {
		return nil, errors.NotFound("person " + keepID)
	}
	discard := idx.Get(discardID)
	if discard == nil {
		return nil, errors.NotFound("person " + discardID)
	}

	result, err := s.engine.Merge(keep, discard, snapshot)
	if err != nil {
		return nil, err
	}

	if err := s.commit(ctx, result); err != nil {
		return nil, err
	}

	s.log.Info("merge committed",
		logging.String("keep", keepID),
		logging.String("discard", discardID),
		logging.Int("rewritten", len(result.Updates)))
	if s.metrics != nil {
		s.metrics.MergeCompleted(len(result.Updates))
	}
	if s.events != nil {
		if err := s.events.PublishMerge(ctx, result); err != nil {
			s.log.Warn("failed to publish merge event", logging.Err(err))
		}
	}
	return result, nil
}

// commit writes the merged record and rewritten references before deleting
// the discarded record, so a crash mid-commit leaves no dangling reads.
func (s *Service) commit(ctx context.Context, result *MergeResult) error {
	if err := s.store.Put(ctx, result.Merged); err != nil {
		return errors.Wrap(err, errors.ErrCodeMergeCommitFailed,
			fmt.Sprintf("failed to persist merged record %s", result.Merged.ID))
	}
	for _, p := range result.Updates {
		if err := s.store.Put(ctx, p); err != nil {
			return errors.Wrap(err, errors.ErrCodeMergeCommitFailed,
				fmt.Sprintf("failed to rewrite references of %s", p.ID))
		}
	}
	for _, id := range result.Deletions {
		if err := s.store.Delete(ctx, id); err != nil {
			return errors.Wrap(err, errors.ErrCodeMergeCommitFailed,
				fmt.Sprintf("failed to delete merged-away record %s", id))
		}
	}
	return nil
}

func (s *Service) acquire(ctx context.Context) (func(), error) {
	if s.guard == nil {
		return func() {}, nil
	}
	ok, err := s.guard.TryLock(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to acquire pass guard")
	}
	if !ok {
		return nil, errors.New(errors.ErrCodeMergeInProgress, "another graph pass holds the lock")
	}
	return func() {
		if err := s.guard.Unlock(context.WithoutCancel(ctx)); err != nil {
			s.log.Warn("failed to release pass guard", logging.Err(err))
		}
	}, nil
}
