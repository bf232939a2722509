package subfamily

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minhaarvore/arvore/internal/domain/person"
	domain "github.com/minhaarvore/arvore/internal/domain/subfamily"
	"github.com/minhaarvore/arvore/internal/infrastructure/monitoring/logging"
	"github.com/minhaarvore/arvore/pkg/errors"
)

type fakePersonStore struct {
	records map[string]*person.Person
}

func newFakePersonStore(persons ...*person.Person) *fakePersonStore {
	s := &fakePersonStore{records: map[string]*person.Person{}}
	for _, p := range persons {
		s.records[p.ID] = p.Clone()
	}
	return s
}

func (s *fakePersonStore) GetAll(context.Context) ([]*person.Person, error) {
	out := make([]*person.Person, 0, len(s.records))
	for _, p := range s.records {
		out = append(out, p.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *fakePersonStore) Get(_ context.Context, id string) (*person.Person, bool, error) {
	p, ok := s.records[id]
	if !ok {
		return nil, false, nil
	}
	return p.Clone(), true, nil
}

func (s *fakePersonStore) Put(_ context.Context, p *person.Person) error {
	s.records[p.ID] = p.Clone()
	return nil
}

func (s *fakePersonStore) Delete(_ context.Context, id string) error {
	delete(s.records, id)
	return nil
}

type fakeSubfamilyStore struct {
	byKey map[string]*domain.Subfamily
}

func newFakeSubfamilyStore() *fakeSubfamilyStore {
	return &fakeSubfamilyStore{byKey: map[string]*domain.Subfamily{}}
}

func (s *fakeSubfamilyStore) ListExisting(context.Context) ([]*domain.Subfamily, error) {
	out := make([]*domain.Subfamily, 0, len(s.byKey))
	for _, g := range s.byKey {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CoupleKey < out[j].CoupleKey })
	return out, nil
}

func (s *fakeSubfamilyStore) Create(_ context.Context, g *domain.Subfamily) error {
	if _, exists := s.byKey[g.CoupleKey]; exists {
		return errors.New(errors.ErrCodeSubfamilyExists, "subfamily already exists").
			WithDetail("couple_key=" + g.CoupleKey)
	}
	s.byKey[g.CoupleKey] = g
	return nil
}

type fakeRecorder struct {
	suggested []int
	created   int
}

func (r *fakeRecorder) SubfamiliesSuggested(count int) { r.suggested = append(r.suggested, count) }
func (r *fakeRecorder) SubfamilyCreated()              { r.created++ }

func newTestService(t *testing.T, persons person.GraphStore, groups domain.Store, rec Recorder) *Service {
	t.Helper()
	svc, err := NewService(ServiceConfig{
		Persons:     persons,
		Subfamilies: groups,
		Detector:    NewDetector(),
		Metrics:     rec,
		Logger:      logging.NewNop(),
	})
	require.NoError(t, err)
	return svc
}

func TestNewService_MissingDeps(t *testing.T) {
	persons := newFakePersonStore()
	groups := newFakeSubfamilyStore()

	tests := []struct {
		name string
		cfg  ServiceConfig
	}{
		{"nil persons", ServiceConfig{Subfamilies: groups, Detector: NewDetector(), Logger: logging.NewNop()}},
		{"nil subfamilies", ServiceConfig{Persons: persons, Detector: NewDetector(), Logger: logging.NewNop()}},
		{"nil detector", ServiceConfig{Persons: persons, Subfamilies: groups, Logger: logging.NewNop()}},
		{"nil logger", ServiceConfig{Persons: persons, Subfamilies: groups, Detector: NewDetector()}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := NewService(tt.cfg)
			assert.Error(t, err)
			assert.Nil(t, svc)
		})
	}
}

func TestService_SuggestThenAccept(t *testing.T) {
	persons := newFakePersonStore(graph()...)
	groups := newFakeSubfamilyStore()
	rec := &fakeRecorder{}
	svc := newTestService(t, persons, groups, rec)

	suggestions, err := svc.Suggest(context.Background())
	require.NoError(t, err)
	require.Len(t, suggestions, 2)
	assert.Equal(t, []int{2}, rec.suggested)

	created, err := svc.Accept(context.Background(), suggestions[1])
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, suggestions[1].Key, created.CoupleKey)
	assert.Equal(t, suggestions[1].MemberIDs, created.MemberIDs)
	assert.False(t, created.CreatedAt.IsZero())
	assert.Equal(t, 1, rec.created)

	// The accepted couple no longer appears in a fresh detection run.
	again, err := svc.Suggest(context.Background())
	require.NoError(t, err)
	require.Len(t, again, 1)
	assert.NotEqual(t, suggestions[1].Key, again[0].Key)
}

func TestService_Accept_DoubleTapRejected(t *testing.T) {
	persons := newFakePersonStore(graph()...)
	groups := newFakeSubfamilyStore()
	svc := newTestService(t, persons, groups, nil)

	suggestions, err := svc.Suggest(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, suggestions)

	_, err = svc.Accept(context.Background(), suggestions[0])
	require.NoError(t, err)

	_, err = svc.Accept(context.Background(), suggestions[0])
	assert.True(t, errors.IsCode(err, errors.ErrCodeSubfamilyExists))
}

func TestService_Accept_InvalidSuggestionRejected(t *testing.T) {
	svc := newTestService(t, newFakePersonStore(), newFakeSubfamilyStore(), nil)

	_, err := svc.Accept(context.Background(), Suggestion{Name: "Família"})
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))
}
