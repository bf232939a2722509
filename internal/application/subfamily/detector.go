// Package subfamily derives nuclear-family groupings (couple plus descendant
// closure) from the person graph and materializes the ones a human confirms.
package subfamily

import (
	"sort"

	"github.com/minhaarvore/arvore/internal/domain/person"
	domain "github.com/minhaarvore/arvore/internal/domain/subfamily"
)

// Suggestion is a proposed grouping awaiting human confirmation.  The Key is
// the canonical couple key, stable across detection runs.
type Suggestion struct {
	Key       string   `json:"key"`
	FatherID  string   `json:"father_id,omitempty"`
	MotherID  string   `json:"mother_id,omitempty"`
	Name      string   `json:"name"`
	MemberIDs []string `json:"member_ids"`
}

// Detector enumerates parent couples not yet represented by a confirmed
// grouping.  Pure read-only scan; safe for concurrent use.
type Detector struct{}

// NewDetector constructs a Detector.
func NewDetector() *Detector { return &Detector{} }

// Detect returns one suggestion per distinct parent couple (or single parent)
// that has at least one child and no entry in existing.  Re-running against an
// unchanged graph with an up-to-date existing list yields nothing.
func (d *Detector) Detect(all []*person.Person, existing []*domain.Subfamily) []Suggestion {
	idx := person.BuildIndex(all)

	known := make(map[string]struct{}, len(existing))
	for _, g := range existing {
		known[g.CoupleKey] = struct{}{}
	}

	type couple struct {
		fatherID, motherID string
	}
	couples := map[string]couple{}
	for _, p := range all {
		if p.FatherID == "" && p.MotherID == "" {
			continue
		}
		key := domain.CoupleKey(p.FatherID, p.MotherID)
		if _, seen := couples[key]; seen {
			continue
		}
		if _, confirmed := known[key]; confirmed {
			continue
		}
		couples[key] = couple{fatherID: p.FatherID, motherID: p.MotherID}
	}

	keys := make([]string, 0, len(couples))
	for key := range couples {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out := make([]Suggestion, 0, len(keys))
	for _, key := range keys {
		c := couples[key]
		out = append(out, Suggestion{
			Key:       key,
			FatherID:  c.fatherID,
			MotherID:  c.motherID,
			Name:      displayName(c.fatherID, c.motherID, idx),
			MemberIDs: memberClosure(c.fatherID, c.motherID, all, idx),
		})
	}
	return out
}

// memberClosure collects the couple and the full descendant line of their
// common children.  Traversal is iterative with a visited set so malformed
// cyclic data cannot loop.
func memberClosure(fatherID, motherID string, all []*person.Person, idx person.Index) []string {
	visited := map[string]struct{}{}
	var members []string
	add := func(id string) bool {
		if id == "" || idx.Get(id) == nil {
			return false
		}
		if _, seen := visited[id]; seen {
			return false
		}
		visited[id] = struct{}{}
		members = append(members, id)
		return true
	}

	add(fatherID)
	add(motherID)

	key := domain.CoupleKey(fatherID, motherID)
	var frontier []string
	for _, p := range all {
		if p.FatherID == "" && p.MotherID == "" {
			continue
		}
		if domain.CoupleKey(p.FatherID, p.MotherID) == key && add(p.ID) {
			frontier = append(frontier, p.ID)
		}
	}

	for len(frontier) > 0 {
		var next []string
		for _, id := range frontier {
			for _, q := range all {
				if (q.FatherID == id || q.MotherID == id) && add(q.ID) {
					next = append(next, q.ID)
				}
			}
		}
		frontier = next
	}

	sort.Strings(members)
	return members
}

// displayName derives a human-facing group name from the couple's names.
func displayName(fatherID, motherID string, idx person.Index) string {
	father := idx.Get(fatherID)
	mother := idx.Get(motherID)
	switch {
	case father != nil && mother != nil:
		return "Família de " + father.Name + " e " + mother.Name
	case father != nil:
		return "Família de " + father.Name
	case mother != nil:
		return "Família de " + mother.Name
	default:
		return "Família"
	}
}
