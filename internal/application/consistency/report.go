// Package consistency implements the relationship reconciliation engine: it
// scans a full snapshot of the person graph, restores the bidirectional
// parent/child and spouse invariants where a safe correction exists, and
// reports every violation it finds, corrected or not, for administrator
// review.
package consistency

import "time"

// AnomalyKind classifies a detected invariant violation.
type AnomalyKind string

const (
	// AnomalyMissingChildLink: a child names a parent, but the parent's child
	// set does not list the child.  Corrected by adding the child entry.
	AnomalyMissingChildLink AnomalyKind = "MISSING_CHILD_LINK"

	// AnomalyMissingParentLink: a parent lists a child, but the child record
	// names neither parent.  Corrected by filling the first open parent slot.
	AnomalyMissingParentLink AnomalyKind = "MISSING_PARENT_LINK"

	// AnomalyDanglingParentRef: father/mother references a non-existent
	// record.  Corrected by clearing the link; a person is never fabricated.
	AnomalyDanglingParentRef AnomalyKind = "DANGLING_PARENT_REF"

	// AnomalyDanglingChildRef: a child entry references a non-existent record.
	// Corrected by removing the entry.
	AnomalyDanglingChildRef AnomalyKind = "DANGLING_CHILD_REF"

	// AnomalyDanglingSpouseRef: currentSpouse references a non-existent
	// record.  Corrected by clearing the link.
	AnomalyDanglingSpouseRef AnomalyKind = "DANGLING_SPOUSE_REF"

	// AnomalyAsymmetricSpouse: A names B as spouse while B's spouse is unset.
	// Corrected by setting B's spouse to A.
	AnomalyAsymmetricSpouse AnomalyKind = "ASYMMETRIC_SPOUSE"

	// AnomalySpouseConflict: A names B as spouse while B names a third party.
	// Never auto-fixed; both sides are reported for human resolution.
	AnomalySpouseConflict AnomalyKind = "SPOUSE_CONFLICT"

	// AnomalyAmbiguousParentSlot: a listed child already has both parent
	// slots filled by other people.  Never auto-fixed.
	AnomalyAmbiguousParentSlot AnomalyKind = "AMBIGUOUS_PARENT_SLOT"

	// AnomalySelfReferentialLink: an identifier appears both in a record's
	// child set and among its parent/spouse fields.  Corrected by dropping the
	// child entry; the parent/spouse link is kept as the more deliberate edit.
	AnomalySelfReferentialLink AnomalyKind = "SELF_REFERENTIAL_LINK"

	// AnomalyAncestryCycle: a record is its own ancestor.  Detected and
	// reported only; breaking the cycle requires human judgement.
	AnomalyAncestryCycle AnomalyKind = "ANCESTRY_CYCLE"
)

// autoCorrected reports whether the anomaly kind carries a corrective write.
func (k AnomalyKind) autoCorrected() bool {
	switch k {
	case AnomalySpouseConflict, AnomalyAmbiguousParentSlot, AnomalyAncestryCycle:
		return false
	}
	return true
}

// AnomalyDetail is one detected violation, in the exact shape surfaced to an
// administrator.
type AnomalyDetail struct {
	Kind     AnomalyKind `json:"kind"`
	PersonID string      `json:"person_id"`
	Field    string      `json:"field"`
	Message  string      `json:"message"`
}

// WriteFailure records a store write that failed while committing corrections.
// Failures are isolated per record; the pass continues and the periodic job
// retries the whole pass.
type WriteFailure struct {
	PersonID string `json:"person_id"`
	Error    string `json:"error"`
}

// Report aggregates the outcome of one reconciliation pass.
type Report struct {
	Scanned      int                 `json:"scanned"`
	Mutated      int                 `json:"mutated"`
	CountsByKind map[AnomalyKind]int `json:"counts_by_kind"`
	Details      []AnomalyDetail     `json:"details"`

	// Failures is populated by the committing service, not the pure engine.
	Failures []WriteFailure `json:"failures,omitempty"`

	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
}

// Clean reports whether the pass found nothing at all.
func (r *Report) Clean() bool {
	return len(r.Details) == 0 && len(r.Failures) == 0
}

func (r *Report) add(kind AnomalyKind, personID, field, message string) {
	if r.CountsByKind == nil {
		r.CountsByKind = make(map[AnomalyKind]int)
	}
	r.CountsByKind[kind]++
	r.Details = append(r.Details, AnomalyDetail{
		Kind:     kind,
		PersonID: personID,
		Field:    field,
		Message:  message,
	})
}
