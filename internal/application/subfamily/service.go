package subfamily

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/minhaarvore/arvore/internal/domain/person"
	domain "github.com/minhaarvore/arvore/internal/domain/subfamily"
	"github.com/minhaarvore/arvore/internal/infrastructure/monitoring/logging"
	"github.com/minhaarvore/arvore/pkg/errors"
)

// Recorder receives detection outcomes for monitoring.
type Recorder interface {
	SubfamiliesSuggested(count int)
	SubfamilyCreated()
}

// ServiceConfig wires the subfamily service.  Metrics is optional; the rest
// are required.
type ServiceConfig struct {
	Persons     person.GraphStore
	Subfamilies domain.Store
	Detector    *Detector
	Metrics     Recorder
	Logger      logging.Logger
}

// Service suggests nuclear-family groupings and materializes accepted ones.
// Acceptance is a human decision; the service never creates groups on its own.
type Service struct {
	persons     person.GraphStore
	subfamilies domain.Store
	detector    *Detector
	metrics     Recorder
	log         logging.Logger
}

// NewService validates cfg and constructs the service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Persons == nil {
		return nil, errors.InvalidParam("subfamily service requires a graph store")
	}
	if cfg.Subfamilies == nil {
		return nil, errors.InvalidParam("subfamily service requires a subfamily store")
	}
	if cfg.Detector == nil {
		return nil, errors.InvalidParam("subfamily service requires a detector")
	}
	if cfg.Logger == nil {
		return nil, errors.InvalidParam("subfamily service requires a logger")
	}
	return &Service{
		persons:     cfg.Persons,
		subfamilies: cfg.Subfamilies,
		detector:    cfg.Detector,
		metrics:     cfg.Metrics,
		log:         cfg.Logger.Named("subfamily"),
	}, nil
}

// Suggest loads one snapshot and the confirmed groups, then returns every
// couple not yet materialized.
func (s *Service) Suggest(ctx context.Context) ([]Suggestion, error) {
	snapshot, err := s.persons.GetAll(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSnapshotUnavailable, "failed to load graph snapshot")
	}
	existing, err := s.subfamilies.ListExisting(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list confirmed subfamilies")
	}

	suggestions := s.detector.Detect(snapshot, existing)
	s.log.Info("subfamily detection finished",
		logging.Int("scanned", len(snapshot)),
		logging.Int("existing", len(existing)),
		logging.Int("suggestions", len(suggestions)))
	if s.metrics != nil {
		s.metrics.SubfamiliesSuggested(len(suggestions))
	}
	return suggestions, nil
}

// Accept materializes one suggestion.  The store's couple-key uniqueness makes
// a double acceptance fail with SubfamilyExists rather than duplicate.
func (s *Service) Accept(ctx context.Context, sg Suggestion) (*domain.Subfamily, error) {
	created := &domain.Subfamily{
		ID:        uuid.NewString(),
		Name:      sg.Name,
		FatherID:  sg.FatherID,
		MotherID:  sg.MotherID,
		CoupleKey: domain.CoupleKey(sg.FatherID, sg.MotherID),
		MemberIDs: sg.MemberIDs,
		CreatedAt: time.Now().UTC(),
	}
	if err := created.Validate(); err != nil {
		return nil, err
	}
	if err := s.subfamilies.Create(ctx, created); err != nil {
		return nil, err
	}

	s.log.Info("subfamily created",
		logging.String("subfamily_id", created.ID),
		logging.String("couple_key", created.CoupleKey),
		logging.Int("members", len(created.MemberIDs)))
	if s.metrics != nil {
		s.metrics.SubfamilyCreated()
	}
	return created, nil
}
