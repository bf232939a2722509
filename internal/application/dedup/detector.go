// Package dedup implements fuzzy duplicate detection over the person graph
// and the merge engine that collapses a confirmed duplicate pair into one
// canonical record, rewriting every foreign reference.
package dedup

import (
	"context"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/minhaarvore/arvore/internal/domain/person"
	"github.com/minhaarvore/arvore/pkg/errors"
)

// DefaultThreshold is the minimum score for a pair to qualify as a candidate.
const DefaultThreshold = 80

// Feature weights.  Points, not probabilities; the sum is capped at 100.
const (
	scoreNameExact     = 40
	scoreNameContained = 20
	scoreSameBirthDate = 30
	scoreSharedFather  = 15
	scoreSharedMother  = 15
	scoreCap           = 100
)

// Reason strings mirror the rules that fired, in evaluation order, for the
// human reviewer.  They are user-facing and therefore localized.
const (
	ReasonNameExact     = "Nome idêntico"
	ReasonNameContained = "Nome contido"
	ReasonSameBirthDate = "Mesma data de nascimento"
	ReasonSharedFather  = "Mesmo pai"
	ReasonSharedMother  = "Mesma mãe"
)

// Candidate is a pair of person records suspected of describing the same
// individual.  PersonAID is always the lower identifier so that the Key is
// stable across runs and usable for deduplicating detection results.
type Candidate struct {
	PersonAID string   `json:"person_a_id"`
	PersonBID string   `json:"person_b_id"`
	Score     int      `json:"score"`
	Reasons   []string `json:"reasons"`
	Key       string   `json:"key"`
}

// Detector scores all person pairs for likely duplication.  Pure read-only
// scan; safe for concurrent use.
type Detector struct {
	threshold int
}

// DetectorOption customises a Detector.
type DetectorOption func(*Detector)

// WithThreshold overrides the candidate threshold.
func WithThreshold(threshold int) DetectorOption {
	return func(d *Detector) {
		if threshold > 0 {
			d.threshold = threshold
		}
	}
}

// NewDetector constructs a Detector with the default threshold.
func NewDetector(opts ...DetectorOption) *Detector {
	d := &Detector{threshold: DefaultThreshold}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// FindDuplicates compares every pair of records and returns the candidates
// scoring at or above the threshold, ordered by score descending then key.
//
// The scan is O(n²), acceptable at per-family-tree scale (thousands of
// persons).  Cancellation is checked between outer-loop iterations; on
// cancellation the partial result is discarded.
func (d *Detector) FindDuplicates(ctx context.Context, all []*person.Person) ([]Candidate, error) {
	ordered := make([]*person.Person, len(all))
	copy(ordered, all)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	normalized := make([]string, len(ordered))
	for i, p := range ordered {
		normalized[i] = NormalizeName(p.Name)
	}

	var out []Candidate
	for i := 0; i < len(ordered); i++ {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDuplicateScanCancelled, "duplicate scan cancelled")
		}
		for j := i + 1; j < len(ordered); j++ {
			score, reasons := scorePair(ordered[i], ordered[j], normalized[i], normalized[j])
			if score < d.threshold {
				continue
			}
			a, b := ordered[i].ID, ordered[j].ID
			out = append(out, Candidate{
				PersonAID: a,
				PersonBID: b,
				Score:     score,
				Reasons:   reasons,
				Key:       a + ":" + b,
			})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Key < out[j].Key
	})
	return out, nil
}

// scorePair applies the weighted feature rules in evaluation order.
func scorePair(a, b *person.Person, nameA, nameB string) (int, []string) {
	var score int
	var reasons []string

	switch {
	case nameA != "" && nameA == nameB:
		// An exact match is also a containment, so it earns both bonuses.
		score += scoreNameExact + scoreNameContained
		reasons = append(reasons, ReasonNameExact)
	case nameA != "" && nameB != "" && (strings.Contains(nameA, nameB) || strings.Contains(nameB, nameA)):
		score += scoreNameContained
		reasons = append(reasons, ReasonNameContained)
	}

	if a.BirthDate != nil && b.BirthDate != nil && sameDay(a, b) {
		score += scoreSameBirthDate
		reasons = append(reasons, ReasonSameBirthDate)
	}
	if a.FatherID != "" && a.FatherID == b.FatherID {
		score += scoreSharedFather
		reasons = append(reasons, ReasonSharedFather)
	}
	if a.MotherID != "" && a.MotherID == b.MotherID {
		score += scoreSharedMother
		reasons = append(reasons, ReasonSharedMother)
	}

	if score > scoreCap {
		score = scoreCap
	}
	return score, reasons
}

func sameDay(a, b *person.Person) bool {
	ay, am, ad := a.BirthDate.Date()
	by, bm, bd := b.BirthDate.Date()
	return ay == by && am == bm && ad == bd
}

var diacriticStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeName lowercases, strips diacritics, and collapses whitespace so
// that "João  Silva" and "joao silva" compare equal.
func NormalizeName(name string) string {
	stripped, _, err := transform.String(diacriticStripper, name)
	if err != nil {
		stripped = name
	}
	return strings.Join(strings.Fields(strings.ToLower(stripped)), " ")
}
