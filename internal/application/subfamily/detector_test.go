package subfamily

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minhaarvore/arvore/internal/domain/person"
	domain "github.com/minhaarvore/arvore/internal/domain/subfamily"
)

func graph() []*person.Person {
	return []*person.Person{
		{ID: "pai", Name: "Joaquim", SpouseID: "mae", ChildIDs: []string{"f1", "f2"}},
		{ID: "mae", Name: "Benedita", SpouseID: "pai", ChildIDs: []string{"f1", "f2"}},
		{ID: "f1", Name: "Filho Um", FatherID: "pai", MotherID: "mae", SpouseID: "nora", ChildIDs: []string{"neto"}},
		{ID: "f2", Name: "Filha Dois", FatherID: "pai", MotherID: "mae"},
		{ID: "nora", Name: "Nora", SpouseID: "f1", ChildIDs: []string{"neto"}},
		{ID: "neto", Name: "Neto", FatherID: "f1", MotherID: "nora"},
		{ID: "avulso", Name: "Avulso"},
	}
}

func TestDetect_SuggestsEachCouple(t *testing.T) {
	got := NewDetector().Detect(graph(), nil)

	require.Len(t, got, 2)
	assert.Equal(t, domain.CoupleKey("f1", "nora"), got[0].Key)
	assert.Equal(t, domain.CoupleKey("pai", "mae"), got[1].Key)
	assert.Equal(t, "Família de Joaquim e Benedita", got[1].Name)
}

func TestDetect_MemberClosureFollowsDirectLine(t *testing.T) {
	got := NewDetector().Detect(graph(), nil)

	var root *Suggestion
	for i := range got {
		if got[i].Key == domain.CoupleKey("pai", "mae") {
			root = &got[i]
		}
	}
	require.NotNil(t, root)

	// Couple, their children, and the grandchild; the daughter-in-law married
	// in and is not on the couple's direct line.
	assert.Equal(t, []string{"f1", "f2", "mae", "neto", "pai"}, root.MemberIDs)
}

func TestDetect_ExistingGroupsSkipped(t *testing.T) {
	existing := []*domain.Subfamily{
		{ID: "g1", CoupleKey: domain.CoupleKey("pai", "mae")},
	}

	got := NewDetector().Detect(graph(), existing)
	require.Len(t, got, 1)
	assert.Equal(t, domain.CoupleKey("f1", "nora"), got[0].Key)
}

func TestDetect_IdempotentAgainstUpToDateGroups(t *testing.T) {
	all := graph()
	first := NewDetector().Detect(all, nil)

	existing := make([]*domain.Subfamily, 0, len(first))
	for _, sg := range first {
		existing = append(existing, &domain.Subfamily{ID: sg.Key, CoupleKey: sg.Key})
	}

	assert.Empty(t, NewDetector().Detect(all, existing))
}

func TestDetect_SingleParentGroup(t *testing.T) {
	all := []*person.Person{
		{ID: "mae", Name: "Solteira", ChildIDs: []string{"f"}},
		{ID: "f", Name: "Filho", MotherID: "mae"},
	}

	got := NewDetector().Detect(all, nil)
	require.Len(t, got, 1)
	assert.Equal(t, domain.CoupleKey("", "mae"), got[0].Key)
	assert.Equal(t, "mae", got[0].MotherID)
	assert.Empty(t, got[0].FatherID)
	assert.Equal(t, "Família de Solteira", got[0].Name)
	assert.Equal(t, []string{"f", "mae"}, got[0].MemberIDs)
}

func TestDetect_ChildlessCoupleIgnored(t *testing.T) {
	all := []*person.Person{
		{ID: "a", Name: "A", SpouseID: "b"},
		{ID: "b", Name: "B", SpouseID: "a"},
	}
	assert.Empty(t, NewDetector().Detect(all, nil))
}

func TestDetect_CyclicDataTerminates(t *testing.T) {
	all := []*person.Person{
		{ID: "a", Name: "A", FatherID: "b"},
		{ID: "b", Name: "B", FatherID: "a"},
	}

	got := NewDetector().Detect(all, nil)
	require.Len(t, got, 2)
	for _, sg := range got {
		assert.NotEmpty(t, sg.MemberIDs)
	}
}
