// Package memory provides in-memory store implementations used by tests, the
// CLI's offline mode, and local development without a database.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/minhaarvore/arvore/internal/domain/person"
	"github.com/minhaarvore/arvore/internal/domain/subfamily"
	"github.com/minhaarvore/arvore/pkg/errors"
)

// GraphStore is a mutex-guarded map implementing person.GraphStore.  Every
// read and write deep-clones so callers can never alias internal state.
type GraphStore struct {
	mu      sync.RWMutex
	records map[string]*person.Person
}

// NewGraphStore constructs an empty store, optionally seeded.
func NewGraphStore(seed ...*person.Person) *GraphStore {
	s := &GraphStore{records: make(map[string]*person.Person, len(seed))}
	for _, p := range seed {
		s.records[p.ID] = p.Clone()
	}
	return s
}

// GetAll returns a deep-cloned snapshot ordered by id.
func (s *GraphStore) GetAll(context.Context) ([]*person.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*person.Person, 0, len(s.records))
	for _, p := range s.records {
		out = append(out, p.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *GraphStore) Get(_ context.Context, id string) (*person.Person, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.records[id]
	if !ok {
		return nil, false, nil
	}
	return p.Clone(), true, nil
}

// Put upserts keyed by id.
func (s *GraphStore) Put(_ context.Context, p *person.Person) error {
	if p == nil || p.ID == "" {
		return errors.InvalidParam("person record requires an id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[p.ID] = p.Clone()
	return nil
}

func (s *GraphStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, id)
	return nil
}

// Len reports the number of stored records.
func (s *GraphStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// SubfamilyStore implements subfamily.Store with couple-key uniqueness.
type SubfamilyStore struct {
	mu    sync.RWMutex
	byKey map[string]*subfamily.Subfamily
}

// NewSubfamilyStore constructs an empty store.
func NewSubfamilyStore() *SubfamilyStore {
	return &SubfamilyStore{byKey: map[string]*subfamily.Subfamily{}}
}

func (s *SubfamilyStore) ListExisting(context.Context) ([]*subfamily.Subfamily, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*subfamily.Subfamily, 0, len(s.byKey))
	for _, g := range s.byKey {
		clone := *g
		clone.MemberIDs = append([]string(nil), g.MemberIDs...)
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CoupleKey < out[j].CoupleKey })
	return out, nil
}

func (s *SubfamilyStore) Create(_ context.Context, g *subfamily.Subfamily) error {
	if err := g.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byKey[g.CoupleKey]; exists {
		return errors.New(errors.ErrCodeSubfamilyExists, "subfamily already exists").
			WithDetail("couple_key=" + g.CoupleKey)
	}
	clone := *g
	clone.MemberIDs = append([]string(nil), g.MemberIDs...)
	s.byKey[g.CoupleKey] = &clone
	return nil
}
