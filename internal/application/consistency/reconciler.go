package consistency

import (
	"fmt"
	"sort"
	"time"

	"github.com/minhaarvore/arvore/internal/domain/person"
)

// DefaultMaxAncestryDepth bounds the father/mother chain traversal of the
// cycle check.  64 generations is far beyond any legitimate tree.
const DefaultMaxAncestryDepth = 64

// Reconciler restores the bidirectional relationship invariants of a person
// graph snapshot.  It is a pure transformation: the input snapshot is never
// mutated, corrected records are returned as clones, and all durable side
// effects are the caller's responsibility.
type Reconciler struct {
	maxAncestryDepth int
}

// ReconcilerOption customises a Reconciler.
type ReconcilerOption func(*Reconciler)

// WithMaxAncestryDepth overrides the ancestry-cycle traversal bound.
func WithMaxAncestryDepth(depth int) ReconcilerOption {
	return func(r *Reconciler) {
		if depth > 0 {
			r.maxAncestryDepth = depth
		}
	}
}

// NewReconciler constructs a Reconciler with default bounds.
func NewReconciler(opts ...ReconcilerOption) *Reconciler {
	r := &Reconciler{maxAncestryDepth: DefaultMaxAncestryDepth}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reconcile analyses the full snapshot and returns every corrected record
// (cloned, version bumped) plus the anomaly report.  Records with conflicts
// that cannot be auto-corrected appear in the report only.
//
// The pass is idempotent: feeding the corrected graph back in yields zero
// further corrections, though uncorrectable conflicts are reported again on
// every run until a human resolves them.
func (r *Reconciler) Reconcile(snapshot []*person.Person) ([]*person.Person, *Report) {
	started := time.Now().UTC()
	report := &Report{
		Scanned:      len(snapshot),
		CountsByKind: make(map[AnomalyKind]int),
		StartedAt:    started,
	}

	// Work on clones in deterministic order so repeated runs over the same
	// snapshot produce byte-identical reports.
	work := make([]*person.Person, len(snapshot))
	for i, p := range snapshot {
		work[i] = p.Clone()
	}
	sort.Slice(work, func(i, j int) bool { return work[i].ID < work[j].ID })

	idx := person.BuildIndex(work)
	touched := make(map[string]bool)
	mark := func(p *person.Person) { touched[p.ID] = true }

	r.reconcileParents(work, idx, report, mark)
	r.reconcileSpouses(work, idx, report, mark)
	r.reconcileChildren(work, idx, report, mark)
	r.detectAncestryCycles(work, idx, report)

	corrected := make([]*person.Person, 0, len(touched))
	for _, p := range work {
		if touched[p.ID] {
			p.Touch()
			corrected = append(corrected, p)
		}
	}
	report.Mutated = len(corrected)
	report.Duration = time.Since(started)
	return corrected, report
}

// reconcileParents enforces parent-child symmetry: every person naming a parent must be
// listed in that parent's child set.  Dangling parent references are cleared;
// a person is never fabricated.
func (r *Reconciler) reconcileParents(work []*person.Person, idx person.Index, report *Report, mark func(*person.Person)) {
	for _, p := range work {
		type slot struct {
			field string
			id    *string
		}
		for _, s := range []slot{{"father", &p.FatherID}, {"mother", &p.MotherID}} {
			if *s.id == "" {
				continue
			}
			parent := idx.Get(*s.id)
			if parent == nil {
				report.add(AnomalyDanglingParentRef, p.ID, s.field,
					fmt.Sprintf("%s references missing person %s; link cleared", s.field, *s.id))
				*s.id = ""
				mark(p)
				continue
			}
			if !parent.HasChild(p.ID) {
				report.add(AnomalyMissingChildLink, parent.ID, "children",
					fmt.Sprintf("child %s names %s as %s but is not listed; added", p.ID, parent.ID, s.field))
				parent.AddChild(p.ID)
				mark(parent)
			}
		}
	}
}

// reconcileSpouses enforces spouse symmetry.  An unset reverse
// link is completed; a reverse link to a third party is a conflict reported
// for both sides and never overwritten.
func (r *Reconciler) reconcileSpouses(work []*person.Person, idx person.Index, report *Report, mark func(*person.Person)) {
	conflictSeen := make(map[string]bool)
	for _, p := range work {
		if p.SpouseID == "" {
			continue
		}
		spouse := idx.Get(p.SpouseID)
		if spouse == nil {
			report.add(AnomalyDanglingSpouseRef, p.ID, "current_spouse",
				fmt.Sprintf("current spouse references missing person %s; link cleared", p.SpouseID))
			p.SpouseID = ""
			mark(p)
			continue
		}
		switch spouse.SpouseID {
		case p.ID:
			// Symmetric, nothing to do.
		case "":
			report.add(AnomalyAsymmetricSpouse, spouse.ID, "current_spouse",
				fmt.Sprintf("%s names %s as spouse; reverse link was unset and has been completed", p.ID, spouse.ID))
			spouse.SpouseID = p.ID
			mark(spouse)
		default:
			key := pairKey(p.ID, spouse.ID)
			if conflictSeen[key] {
				continue
			}
			conflictSeen[key] = true
			report.add(AnomalySpouseConflict, p.ID, "current_spouse",
				fmt.Sprintf("%s names %s as spouse, but %s names %s; requires human resolution", p.ID, spouse.ID, spouse.ID, spouse.SpouseID))
			report.add(AnomalySpouseConflict, spouse.ID, "current_spouse",
				fmt.Sprintf("%s is named as spouse by %s while naming %s; requires human resolution", spouse.ID, p.ID, spouse.SpouseID))
		}
	}
}

// reconcileChildren enforces child-parent symmetry: every listed child must name the
// lister as father or mother.  The first open parent slot receives the
// correction; when both slots are taken by other people the ambiguity is
// reported untouched.  Entries that would make a record its own relative
// are dropped in favour of the parent/spouse link.
func (r *Reconciler) reconcileChildren(work []*person.Person, idx person.Index, report *Report, mark func(*person.Person)) {
	for _, p := range work {
		for _, cid := range append([]string(nil), p.ChildIDs...) {
			if cid == p.ID || (cid != "" && (cid == p.FatherID || cid == p.MotherID || cid == p.SpouseID)) {
				report.add(AnomalySelfReferentialLink, p.ID, "children",
					fmt.Sprintf("%s appears both as child and as parent/spouse of %s; child entry removed", cid, p.ID))
				p.RemoveChild(cid)
				mark(p)
				continue
			}
			child := idx.Get(cid)
			if child == nil {
				report.add(AnomalyDanglingChildRef, p.ID, "children",
					fmt.Sprintf("children references missing person %s; entry removed", cid))
				p.RemoveChild(cid)
				mark(p)
				continue
			}
			if p.IsParentOf(child) {
				continue
			}
			switch {
			case child.FatherID == "":
				report.add(AnomalyMissingParentLink, child.ID, "father",
					fmt.Sprintf("%s lists %s as child; open father slot filled", p.ID, child.ID))
				child.FatherID = p.ID
				mark(child)
			case child.MotherID == "":
				report.add(AnomalyMissingParentLink, child.ID, "mother",
					fmt.Sprintf("%s lists %s as child; open mother slot filled", p.ID, child.ID))
				child.MotherID = p.ID
				mark(child)
			default:
				report.add(AnomalyAmbiguousParentSlot, child.ID, "parents",
					fmt.Sprintf("%s lists %s as child but both parent slots are taken by %s and %s; requires human resolution",
						p.ID, child.ID, child.FatherID, child.MotherID))
			}
		}
	}
}

// detectAncestryCycles detects ancestry cycles: no record may be its
// own ancestor.  Traversal is a bounded breadth-first walk over the corrected
// father/mother links with an explicit visited set; shared ancestors
// (pedigree collapse) are legitimate and must not be flagged; only reaching
// the start node again is a cycle.  Cycles are reported, never broken.
func (r *Reconciler) detectAncestryCycles(work []*person.Person, idx person.Index, report *Report) {
	for _, p := range work {
		visited := map[string]bool{}
		frontier := p.ParentIDs()
		for depth := 0; depth < r.maxAncestryDepth && len(frontier) > 0; depth++ {
			next := make([]string, 0, len(frontier))
			for _, id := range frontier {
				if id == p.ID {
					report.add(AnomalyAncestryCycle, p.ID, "parents",
						fmt.Sprintf("%s is its own ancestor; cycle must be resolved manually", p.ID))
					frontier = nil
					next = nil
					break
				}
				if visited[id] {
					continue
				}
				visited[id] = true
				if anc := idx.Get(id); anc != nil {
					next = append(next, anc.ParentIDs()...)
				}
			}
			frontier = next
		}
	}
}

// pairKey canonicalizes an unordered id pair.
func pairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + ":" + b
}
