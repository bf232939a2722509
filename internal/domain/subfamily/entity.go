// Package subfamily defines the nuclear-family grouping entity and its store
// contract.  Subfamilies are derived from the person graph by the detector and
// materialized only after human confirmation.
package subfamily

import (
	"sort"
	"strings"
	"time"

	"github.com/minhaarvore/arvore/pkg/errors"
)

// Subfamily is a confirmed nuclear-family grouping: a couple (or single
// parent) plus the closure of their descendants.
type Subfamily struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	FatherID string `json:"father_id,omitempty"`
	MotherID string `json:"mother_id,omitempty"`

	// CoupleKey is the stable identity of the grouping: the sorted parent
	// identifiers joined by ":".  Detection idempotence keys on it.
	CoupleKey string `json:"couple_key"`

	MemberIDs []string  `json:"member_ids"`
	CreatedAt time.Time `json:"created_at"`
}

// Validate checks the intrinsic invariants of a subfamily record.
func (s *Subfamily) Validate() error {
	if s.ID == "" {
		return errors.New(errors.ErrCodeValidation, "subfamily id must not be empty")
	}
	if s.FatherID == "" && s.MotherID == "" {
		return errors.New(errors.ErrCodeValidation, "subfamily requires at least one parent")
	}
	if s.CoupleKey != CoupleKey(s.FatherID, s.MotherID) {
		return errors.New(errors.ErrCodeValidation, "subfamily couple key does not match parents").
			WithDetail("id=" + s.ID)
	}
	return nil
}

// CoupleKey canonicalizes a parent pair into the detection identity key.
// Ordering is lexicographic so that (a,b) and (b,a) collapse to the same key;
// single-parent groups keep the empty slot in the key.
func CoupleKey(fatherID, motherID string) string {
	ids := []string{fatherID, motherID}
	sort.Strings(ids)
	return strings.Join(ids, ":")
}
