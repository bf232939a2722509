// Package kinship computes the nearest-relationship label (parentesco)
// between two nodes of the family graph.  The resolver is a pure function
// over a snapshot index; callers are responsible for snapshot freshness.
package kinship

import (
	"sort"

	"github.com/minhaarvore/arvore/internal/domain/person"
	"github.com/minhaarvore/arvore/pkg/errors"
)

// Label is a conventional relationship name, describing what B is to A.
type Label string

const (
	LabelSelf             Label = "SELF"
	LabelFather           Label = "FATHER"
	LabelMother           Label = "MOTHER"
	LabelChild            Label = "CHILD"
	LabelSpouse           Label = "SPOUSE"
	LabelSibling          Label = "SIBLING"
	LabelGrandparent      Label = "GRANDPARENT"
	LabelGreatGrandparent Label = "GREAT_GRANDPARENT"
	LabelGrandchild       Label = "GRANDCHILD"
	LabelGreatGrandchild  Label = "GREAT_GRANDCHILD"
	LabelUncleAunt        Label = "UNCLE_AUNT"
	LabelNephewNiece      Label = "NEPHEW_NIECE"
	LabelCousin           Label = "COUSIN"
	LabelDistantRelative  Label = "DISTANT_RELATIVE"
	LabelUnrelated        Label = "UNRELATED"
)

// DefaultMaxDepth is the combined path-length ceiling of the ancestor search.
const DefaultMaxDepth = 6

// Resolver labels pairs of persons.  Safe for concurrent use.
type Resolver struct {
	maxDepth int
}

// ResolverOption customises a Resolver.
type ResolverOption func(*Resolver)

// WithMaxDepth overrides the search ceiling.
func WithMaxDepth(depth int) ResolverOption {
	return func(r *Resolver) {
		if depth > 0 {
			r.maxDepth = depth
		}
	}
}

// NewResolver constructs a Resolver with the default depth ceiling.
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the relationship label of b as seen from a.  Both ids must
// resolve in the index.  Malformed data (ancestry cycles) cannot cause
// unbounded work: the climb carries an explicit visited set and depth bound.
func (r *Resolver) Resolve(aID, bID string, idx person.Index) (Label, error) {
	a := idx.Get(aID)
	if a == nil {
		return LabelUnrelated, errors.New(errors.ErrCodeKinshipUnknownPerson, "person not present in snapshot").
			WithDetail("id=" + aID)
	}
	b := idx.Get(bID)
	if b == nil {
		return LabelUnrelated, errors.New(errors.ErrCodeKinshipUnknownPerson, "person not present in snapshot").
			WithDetail("id=" + bID)
	}

	if aID == bID {
		return LabelSelf, nil
	}
	if a.FatherID == bID {
		return LabelFather, nil
	}
	if a.MotherID == bID {
		return LabelMother, nil
	}
	if b.FatherID == aID || b.MotherID == aID || a.HasChild(bID) {
		return LabelChild, nil
	}
	if a.SpouseID == bID || b.SpouseID == aID {
		return LabelSpouse, nil
	}
	if sharesParent(a, b) {
		return LabelSibling, nil
	}

	// Bidirectional search: climb the ancestor chains of both sides, then
	// meet in the middle over common ancestors.
	upA := r.ancestorDepths(a, idx)
	upB := r.ancestorDepths(b, idx)

	best, found := closestMeeting(upA, upB, r.maxDepth)
	if !found {
		return LabelUnrelated, nil
	}
	return classify(best.up, best.down), nil
}

type meeting struct {
	up   int // a's generations up to the common ancestor
	down int // b's generations up to the same ancestor
}

// collateral reports whether the path bends (neither pure ascent nor descent).
func (m meeting) collateral() bool {
	return m.up > 0 && m.down > 0
}

// closestMeeting picks the shortest common-ancestor meeting within the depth
// ceiling.  Ties prefer the lineal (pure ancestor/descendant) meeting over a
// collateral one; remaining ties resolve by smaller ascent then ancestor id
// order, keeping results deterministic.
func closestMeeting(upA, upB map[string]int, maxDepth int) (meeting, bool) {
	ids := make([]string, 0, len(upA))
	for id := range upA {
		if _, ok := upB[id]; ok {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	var best meeting
	found := false
	for _, id := range ids {
		m := meeting{up: upA[id], down: upB[id]}
		if m.up+m.down > maxDepth {
			continue
		}
		if !found || better(m, best) {
			best = m
			found = true
		}
	}
	return best, found
}

func better(m, than meeting) bool {
	if m.up+m.down != than.up+than.down {
		return m.up+m.down < than.up+than.down
	}
	if m.collateral() != than.collateral() {
		return !m.collateral()
	}
	return m.up < than.up
}

// classify maps a meeting pattern onto the conventional label.
func classify(up, down int) Label {
	switch {
	case down == 0:
		switch up {
		case 2:
			return LabelGrandparent
		case 3:
			return LabelGreatGrandparent
		default:
			return LabelDistantRelative
		}
	case up == 0:
		switch down {
		case 2:
			return LabelGrandchild
		case 3:
			return LabelGreatGrandchild
		default:
			return LabelDistantRelative
		}
	case up == 1 && down == 1:
		return LabelSibling
	case up == 2 && down == 1:
		return LabelUncleAunt
	case up == 1 && down == 2:
		return LabelNephewNiece
	case up == down:
		return LabelCousin
	default:
		return LabelDistantRelative
	}
}

// ancestorDepths walks the father/mother chains of p up to the depth ceiling,
// returning the minimum generation count per reachable ancestor.  p itself is
// included at depth 0 so that pure lineal relations meet at an endpoint.
func (r *Resolver) ancestorDepths(p *person.Person, idx person.Index) map[string]int {
	depths := map[string]int{p.ID: 0}
	frontier := []string{p.ID}
	for depth := 1; depth <= r.maxDepth && len(frontier) > 0; depth++ {
		var next []string
		for _, id := range frontier {
			cur := idx.Get(id)
			if cur == nil {
				continue
			}
			for _, pid := range cur.ParentIDs() {
				if _, seen := depths[pid]; seen {
					continue
				}
				depths[pid] = depth
				next = append(next, pid)
			}
		}
		frontier = next
	}
	return depths
}

func sharesParent(a, b *person.Person) bool {
	for _, pa := range a.ParentIDs() {
		for _, pb := range b.ParentIDs() {
			if pa == pb {
				return true
			}
		}
	}
	return false
}
