package dedup

import (
	"github.com/minhaarvore/arvore/internal/domain/person"
	"github.com/minhaarvore/arvore/pkg/errors"
)

// MergeResult is the complete write-set of a merge, computed before any write
// is attempted.  The caller commits Merged plus Updates and the Deletions
// together or not at all.
type MergeResult struct {
	Merged    *person.Person   `json:"merged"`
	Updates   []*person.Person `json:"updates"`
	Deletions []string         `json:"deletions"`
}

// fieldResolver merges one attribute from donor into dst.  The table below
// replaces the dynamic field copying of ad-hoc merge code with explicit pure
// resolvers; adding an attribute to Person means adding a row here.
type fieldResolver struct {
	name  string
	apply func(dst, donor *person.Person)
}

var mergePolicy = []fieldResolver{
	// Longer non-empty string wins: more information assumed more complete.
	{"name", func(dst, donor *person.Person) {
		if len(donor.Name) > len(dst.Name) {
			dst.Name = donor.Name
		}
	}},
	{"biography", func(dst, donor *person.Person) {
		if len(donor.Biography) > len(dst.Biography) {
			dst.Biography = donor.Biography
		}
	}},

	// Scalar optionals: first non-null of keep then discard.
	{"birth_date", func(dst, donor *person.Person) {
		if dst.BirthDate == nil && donor.BirthDate != nil {
			bd := *donor.BirthDate
			dst.BirthDate = &bd
		}
	}},
	{"death_date", func(dst, donor *person.Person) {
		if dst.DeathDate == nil && donor.DeathDate != nil {
			dd := *donor.DeathDate
			dst.DeathDate = &dd
		}
	}},
	{"birth_place", func(dst, donor *person.Person) {
		if dst.BirthPlace == "" {
			dst.BirthPlace = donor.BirthPlace
		}
	}},
	{"residence", func(dst, donor *person.Person) {
		if dst.Residence == "" {
			dst.Residence = donor.Residence
		}
	}},
	{"profession", func(dst, donor *person.Person) {
		if dst.Profession == "" {
			dst.Profession = donor.Profession
		}
	}},
	{"photo_url", func(dst, donor *person.Person) {
		if dst.PhotoURL == "" {
			dst.PhotoURL = donor.PhotoURL
		}
	}},

	// Relationship scalars: first non-null of keep then discard.
	{"father", func(dst, donor *person.Person) {
		if dst.FatherID == "" {
			dst.FatherID = donor.FatherID
		}
	}},
	{"mother", func(dst, donor *person.Person) {
		if dst.MotherID == "" {
			dst.MotherID = donor.MotherID
		}
	}},
	{"current_spouse", func(dst, donor *person.Person) {
		if dst.SpouseID == "" {
			dst.SpouseID = donor.SpouseID
		}
	}},

	// Set fields: union, deduplicated.
	{"former_spouses", func(dst, donor *person.Person) {
		for _, id := range donor.FormerSpouseIDs {
			dst.AddFormerSpouse(id)
		}
	}},
	{"children", func(dst, donor *person.Person) {
		for _, id := range donor.ChildIDs {
			dst.AddChild(id)
		}
	}},

	// Root-couple bookkeeping: the flag survives from either side, the
	// distance follows keep unless unset.
	{"root_couple", func(dst, donor *person.Person) {
		dst.IsRootCouple = dst.IsRootCouple || donor.IsRootCouple
		if dst.DistanceFromRoot == 0 && !dst.IsRootCouple {
			dst.DistanceFromRoot = donor.DistanceFromRoot
		}
	}},
}

// Engine collapses a confirmed duplicate pair.  Pure: it returns the full
// write-set and never touches a store.
type Engine struct{}

// NewEngine constructs a merge engine.
func NewEngine() *Engine { return &Engine{} }

// Merge produces the canonical record for keep+discard and rewrites every
// reference to discard across the graph.  keep wins on every tie.
//
// The merge is rejected with a validation error when it would make the
// canonical record its own parent, spouse, or child; that only happens with
// bad data (the two records referenced each other) and requires manual
// cleanup rather than a guess.
func (e *Engine) Merge(keep, discard *person.Person, all []*person.Person) (*MergeResult, error) {
	if keep == nil || discard == nil {
		return nil, errors.InvalidParam("merge requires both records")
	}
	if keep.ID == discard.ID {
		return nil, errors.New(errors.ErrCodeMergeSelfTarget, "cannot merge a person with itself").
			WithDetail("id=" + keep.ID)
	}

	merged := keep.Clone()
	for _, f := range mergePolicy {
		f.apply(merged, discard)
	}
	rewriteRefs(merged, discard.ID, keep.ID)

	if merged.FatherID == keep.ID || merged.MotherID == keep.ID || merged.SpouseID == keep.ID ||
		merged.HasChild(keep.ID) || merged.HasFormerSpouse(keep.ID) {
		return nil, errors.New(errors.ErrCodeMergeSelfReference,
			"merge would make the canonical record its own relative").
			WithDetail("keep=" + keep.ID + " discard=" + discard.ID)
	}

	merged.Version = maxVersion(keep.Version, discard.Version)
	merged.Touch()

	var updates []*person.Person
	for _, other := range all {
		if other.ID == keep.ID || other.ID == discard.ID {
			continue
		}
		if !referencesID(other, discard.ID) {
			continue
		}
		clone := other.Clone()
		rewriteRefs(clone, discard.ID, keep.ID)
		clone.Touch()
		updates = append(updates, clone)
	}

	return &MergeResult{
		Merged:    merged,
		Updates:   updates,
		Deletions: []string{discard.ID},
	}, nil
}

// rewriteRefs replaces every occurrence of from with to across the
// relationship fields of p.  Set fields collapse rather than duplicate.
func rewriteRefs(p *person.Person, from, to string) {
	if p.FatherID == from {
		p.FatherID = to
	}
	if p.MotherID == from {
		p.MotherID = to
	}
	if p.SpouseID == from {
		p.SpouseID = to
	}
	p.FormerSpouseIDs = replaceInSet(p.FormerSpouseIDs, from, to)
	p.ChildIDs = replaceInSet(p.ChildIDs, from, to)
}

// replaceInSet substitutes from with to, collapsing the entry when to is
// already present.
func replaceInSet(ids []string, from, to string) []string {
	out := ids[:0]
	for _, id := range ids {
		if id == from {
			id = to
		}
		dup := false
		for _, seen := range out {
			if seen == id {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, id)
		}
	}
	return out
}

func referencesID(p *person.Person, id string) bool {
	return p.FatherID == id || p.MotherID == id || p.SpouseID == id ||
		p.HasFormerSpouse(id) || p.HasChild(id)
}

func maxVersion(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
