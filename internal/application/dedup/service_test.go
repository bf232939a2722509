package dedup

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minhaarvore/arvore/internal/domain/person"
	"github.com/minhaarvore/arvore/internal/infrastructure/monitoring/logging"
	"github.com/minhaarvore/arvore/pkg/errors"
)

type fakeStore struct {
	mu      sync.Mutex
	records map[string]*person.Person
	failPut map[string]error
}

func newFakeStore(persons ...*person.Person) *fakeStore {
	s := &fakeStore{records: map[string]*person.Person{}, failPut: map[string]error{}}
	for _, p := range persons {
		s.records[p.ID] = p.Clone()
	}
	return s
}

func (s *fakeStore) GetAll(context.Context) ([]*person.Person, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*person.Person, 0, len(s.records))
	for _, p := range s.records {
		out = append(out, p.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *fakeStore) Get(_ context.Context, id string) (*person.Person, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.records[id]
	if !ok {
		return nil, false, nil
	}
	return p.Clone(), true, nil
}

func (s *fakeStore) Put(_ context.Context, p *person.Person) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failPut[p.ID]; err != nil {
		return err
	}
	s.records[p.ID] = p.Clone()
	return nil
}

func (s *fakeStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, id)
	return nil
}

type fakeGuard struct {
	held bool
}

func (g *fakeGuard) TryLock(context.Context) (bool, error) {
	if g.held {
		return false, nil
	}
	g.held = true
	return true, nil
}

func (g *fakeGuard) Unlock(context.Context) error {
	g.held = false
	return nil
}

type fakePublisher struct {
	merges []*MergeResult
}

func (p *fakePublisher) PublishMerge(_ context.Context, r *MergeResult) error {
	p.merges = append(p.merges, r)
	return nil
}

type fakeRecorder struct {
	scans  []int
	merges []int
}

func (r *fakeRecorder) DuplicateScanCompleted(candidates int) { r.scans = append(r.scans, candidates) }
func (r *fakeRecorder) MergeCompleted(updates int)            { r.merges = append(r.merges, updates) }

func newTestService(t *testing.T, store person.GraphStore, guard PassGuard, events EventPublisher, rec Recorder) *Service {
	t.Helper()
	svc, err := NewService(ServiceConfig{
		Store:    store,
		Detector: NewDetector(),
		Engine:   NewEngine(),
		Guard:    guard,
		Events:   events,
		Metrics:  rec,
		Logger:   logging.NewNop(),
	})
	require.NoError(t, err)
	return svc
}

func TestNewService_MissingDeps(t *testing.T) {
	tests := []struct {
		name string
		cfg  ServiceConfig
	}{
		{"nil store", ServiceConfig{Detector: NewDetector(), Engine: NewEngine(), Logger: logging.NewNop()}},
		{"nil detector", ServiceConfig{Store: newFakeStore(), Engine: NewEngine(), Logger: logging.NewNop()}},
		{"nil engine", ServiceConfig{Store: newFakeStore(), Detector: NewDetector(), Logger: logging.NewNop()}},
		{"nil logger", ServiceConfig{Store: newFakeStore(), Detector: NewDetector(), Engine: NewEngine()}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := NewService(tt.cfg)
			assert.Error(t, err)
			assert.Nil(t, svc)
		})
	}
}

func TestService_Scan(t *testing.T) {
	store := newFakeStore(
		&person.Person{ID: "p1", Name: "João Silva", BirthDate: date(1990, time.January, 1)},
		&person.Person{ID: "p2", Name: "Joao Silva", BirthDate: date(1990, time.January, 1)},
		&person.Person{ID: "p3", Name: "Outra Pessoa"},
	)
	rec := &fakeRecorder{}

	svc := newTestService(t, store, nil, nil, rec)
	candidates, err := svc.Scan(context.Background())

	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "p1:p2", candidates[0].Key)
	assert.Equal(t, []int{1}, rec.scans)
}

func TestService_Merge_Commits(t *testing.T) {
	store := newFakeStore(
		&person.Person{ID: "keep", Name: "Ana"},
		&person.Person{ID: "discard", Name: "Ana Maria"},
		&person.Person{ID: "c", Name: "Filho", MotherID: "discard"},
	)
	guard := &fakeGuard{}
	events := &fakePublisher{}
	rec := &fakeRecorder{}

	svc := newTestService(t, store, guard, events, rec)
	result, err := svc.Merge(context.Background(), "keep", "discard")

	require.NoError(t, err)
	assert.Equal(t, "Ana Maria", result.Merged.Name)
	assert.False(t, guard.held, "guard released after merge")
	require.Len(t, events.merges, 1)
	assert.Equal(t, []int{1}, rec.merges)

	_, ok, err := store.Get(context.Background(), "discard")
	require.NoError(t, err)
	assert.False(t, ok, "discarded record deleted")

	c, ok, err := store.Get(context.Background(), "c")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "keep", c.MotherID)
}

func TestService_Merge_UnknownPerson(t *testing.T) {
	store := newFakeStore(&person.Person{ID: "keep", Name: "Ana"})

	svc := newTestService(t, store, nil, nil, nil)
	_, err := svc.Merge(context.Background(), "keep", "ghost")
	assert.True(t, errors.IsNotFound(err))

	_, err = svc.Merge(context.Background(), "ghost", "keep")
	assert.True(t, errors.IsNotFound(err))
}

func TestService_Merge_GuardContention(t *testing.T) {
	store := newFakeStore(
		&person.Person{ID: "keep", Name: "Ana"},
		&person.Person{ID: "discard", Name: "Ana Maria"},
	)
	guard := &fakeGuard{held: true}

	svc := newTestService(t, store, guard, nil, nil)
	_, err := svc.Merge(context.Background(), "keep", "discard")
	assert.True(t, errors.IsCode(err, errors.ErrCodeMergeInProgress))
}

func TestService_Merge_CommitFailure(t *testing.T) {
	store := newFakeStore(
		&person.Person{ID: "keep", Name: "Ana"},
		&person.Person{ID: "discard", Name: "Ana Maria"},
	)
	store.failPut["keep"] = errors.New(errors.ErrCodeDatabaseError, "disk on fire")

	svc := newTestService(t, store, nil, nil, nil)
	_, err := svc.Merge(context.Background(), "keep", "discard")
	assert.True(t, errors.IsCode(err, errors.ErrCodeMergeCommitFailed))

	_, ok, getErr := store.Get(context.Background(), "discard")
	require.NoError(t, getErr)
	assert.True(t, ok, "discard survives a failed commit")
}
