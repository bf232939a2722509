package consistency

import (
	"sort"

	"github.com/minhaarvore/arvore/internal/domain/person"
)

// RecomputeRootDistances recalculates DistanceFromRoot for every person as the
// minimum number of relationship hops (parent, child, spouse) from the root
// couple.  Root-couple members are at distance 0; persons unreachable from the
// root get -1.  Returns clones of the records whose stored distance changed,
// version bumped, ready to persist.
//
// Like Reconcile this is a pure function over the snapshot; it is typically
// run right after a reconciliation pass or a merge, both of which can change
// reachability.
func RecomputeRootDistances(snapshot []*person.Person) []*person.Person {
	idx := person.BuildIndex(snapshot)

	dist := make(map[string]int, len(snapshot))
	var frontier []string
	for _, p := range snapshot {
		if p.IsRootCouple {
			dist[p.ID] = 0
			frontier = append(frontier, p.ID)
		}
	}
	sort.Strings(frontier)

	for len(frontier) > 0 {
		var next []string
		for _, id := range frontier {
			p := idx.Get(id)
			if p == nil {
				continue
			}
			for _, n := range neighbors(p) {
				if _, seen := dist[n]; seen || !idx.Has(n) {
					continue
				}
				dist[n] = dist[id] + 1
				next = append(next, n)
			}
		}
		sort.Strings(next)
		frontier = next
	}

	var changed []*person.Person
	for _, p := range snapshot {
		d, ok := dist[p.ID]
		if !ok {
			d = -1
		}
		if p.DistanceFromRoot == d {
			continue
		}
		clone := p.Clone()
		clone.DistanceFromRoot = d
		clone.Touch()
		changed = append(changed, clone)
	}
	sort.Slice(changed, func(i, j int) bool { return changed[i].ID < changed[j].ID })
	return changed
}

// neighbors returns the undirected relationship adjacency of p: parents,
// children, current and former spouses.
func neighbors(p *person.Person) []string {
	out := make([]string, 0, 2+len(p.ChildIDs)+len(p.FormerSpouseIDs)+1)
	out = append(out, p.ParentIDs()...)
	if p.SpouseID != "" {
		out = append(out, p.SpouseID)
	}
	out = append(out, p.ChildIDs...)
	out = append(out, p.FormerSpouseIDs...)
	return out
}
