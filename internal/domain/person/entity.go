// Package person defines the Person entity, the sole node type of the family
// graph, together with the GraphStore contract and the snapshot index used by
// the consistency, kinship, deduplication, and subfamily engines.
package person

import (
	"time"

	"github.com/minhaarvore/arvore/pkg/errors"
)

// Person is a node in the family graph.  Relationship fields hold identifiers
// of other Person records; an empty string means "not set".  The bidirectional
// invariants between FatherID/MotherID/SpouseID/ChildIDs are restored by the
// consistency engine, not enforced at construction time, because records are
// edited concurrently by untrusted clients and may arrive inconsistent.
type Person struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	BirthDate *time.Time `json:"birth_date,omitempty"`
	DeathDate *time.Time `json:"death_date,omitempty"`

	BirthPlace string `json:"birth_place,omitempty"`
	Residence  string `json:"residence,omitempty"`
	Profession string `json:"profession,omitempty"`
	PhotoURL   string `json:"photo_url,omitempty"`
	Biography  string `json:"biography,omitempty"`

	FatherID string `json:"father_id,omitempty"`
	MotherID string `json:"mother_id,omitempty"`

	// SpouseID is the current spouse; symmetry with the referenced record is an
	// invariant restored by reconciliation.
	SpouseID        string   `json:"spouse_id,omitempty"`
	FormerSpouseIDs []string `json:"former_spouse_ids,omitempty"`
	ChildIDs        []string `json:"child_ids,omitempty"`

	// Version increases monotonically on every mutation; upstream optimistic
	// conflict detection relies on it.
	Version int64 `json:"version"`

	IsRootCouple     bool `json:"is_root_couple"`
	DistanceFromRoot int  `json:"distance_from_root"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks the intrinsic (single-record) invariants.  Cross-record
// invariants are the consistency engine's job.
func (p *Person) Validate() error {
	if p.ID == "" {
		return errors.New(errors.ErrCodePersonInvalid, "person id must not be empty")
	}
	if p.Name == "" {
		return errors.New(errors.ErrCodePersonInvalid, "person name must not be empty")
	}
	if p.BirthDate != nil && p.DeathDate != nil && p.DeathDate.Before(*p.BirthDate) {
		return errors.New(errors.ErrCodePersonInvalid, "death date precedes birth date").
			WithDetail("id=" + p.ID)
	}
	if p.FatherID == p.ID || p.MotherID == p.ID || p.SpouseID == p.ID {
		return errors.New(errors.ErrCodePersonInvalid, "person references itself").
			WithDetail("id=" + p.ID)
	}
	return nil
}

// Clone returns a deep copy.  The engines never mutate a snapshot in place;
// every corrective write operates on a clone.
func (p *Person) Clone() *Person {
	clone := *p
	if p.BirthDate != nil {
		bd := *p.BirthDate
		clone.BirthDate = &bd
	}
	if p.DeathDate != nil {
		dd := *p.DeathDate
		clone.DeathDate = &dd
	}
	clone.FormerSpouseIDs = append([]string(nil), p.FormerSpouseIDs...)
	clone.ChildIDs = append([]string(nil), p.ChildIDs...)
	return &clone
}

// Touch bumps the version and refreshes UpdatedAt.  Called once per mutated
// record, regardless of how many fields changed.
func (p *Person) Touch() {
	p.Version++
	p.UpdatedAt = time.Now().UTC()
}

// HasChild reports whether id is listed under ChildIDs.
func (p *Person) HasChild(id string) bool {
	return containsID(p.ChildIDs, id)
}

// AddChild appends id to ChildIDs unless already present.
// Returns true when the set changed.
func (p *Person) AddChild(id string) bool {
	if id == "" || p.HasChild(id) {
		return false
	}
	p.ChildIDs = append(p.ChildIDs, id)
	return true
}

// RemoveChild deletes id from ChildIDs.  Returns true when the set changed.
func (p *Person) RemoveChild(id string) bool {
	return removeID(&p.ChildIDs, id)
}

// HasFormerSpouse reports whether id is listed under FormerSpouseIDs.
func (p *Person) HasFormerSpouse(id string) bool {
	return containsID(p.FormerSpouseIDs, id)
}

// AddFormerSpouse appends id to FormerSpouseIDs unless already present.
func (p *Person) AddFormerSpouse(id string) bool {
	if id == "" || p.HasFormerSpouse(id) {
		return false
	}
	p.FormerSpouseIDs = append(p.FormerSpouseIDs, id)
	return true
}

// IsParentOf reports whether p is listed as father or mother of child.
func (p *Person) IsParentOf(child *Person) bool {
	return child.FatherID == p.ID || child.MotherID == p.ID
}

// ParentIDs returns the non-empty parent identifiers.
func (p *Person) ParentIDs() []string {
	ids := make([]string, 0, 2)
	if p.FatherID != "" {
		ids = append(ids, p.FatherID)
	}
	if p.MotherID != "" {
		ids = append(ids, p.MotherID)
	}
	return ids
}

func containsID(ids []string, id string) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

func removeID(ids *[]string, id string) bool {
	for i, x := range *ids {
		if x == id {
			*ids = append((*ids)[:i], (*ids)[i+1:]...)
			return true
		}
	}
	return false
}
