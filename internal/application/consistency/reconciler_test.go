package consistency

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minhaarvore/arvore/internal/domain/person"
)

func p(id, name string) *person.Person {
	return &person.Person{ID: id, Name: name, Version: 1}
}

func byID(persons []*person.Person) map[string]*person.Person {
	out := make(map[string]*person.Person, len(persons))
	for _, x := range persons {
		out[x.ID] = x
	}
	return out
}

// applyCorrections overlays corrected records onto the original snapshot,
// mimicking what the committing service persists.
func applyCorrections(snapshot, corrected []*person.Person) []*person.Person {
	fixes := byID(corrected)
	out := make([]*person.Person, 0, len(snapshot))
	for _, x := range snapshot {
		if f, ok := fixes[x.ID]; ok {
			out = append(out, f)
		} else {
			out = append(out, x)
		}
	}
	return out
}

func TestReconcile_CleanGraphProducesNoWrites(t *testing.T) {
	father := p("f", "Pai")
	mother := p("m", "Mãe")
	child := p("c", "Filho")
	father.SpouseID = "m"
	mother.SpouseID = "f"
	father.ChildIDs = []string{"c"}
	mother.ChildIDs = []string{"c"}
	child.FatherID = "f"
	child.MotherID = "m"

	corrected, report := NewReconciler().Reconcile([]*person.Person{father, mother, child})

	assert.Empty(t, corrected)
	assert.True(t, report.Clean())
	assert.Equal(t, 3, report.Scanned)
	assert.Zero(t, report.Mutated)
}

func TestReconcile_MissingChildLink(t *testing.T) {
	father := p("f", "Pai")
	child := p("c", "Filho")
	child.FatherID = "f"

	corrected, report := NewReconciler().Reconcile([]*person.Person{father, child})

	require.Len(t, corrected, 1)
	got := corrected[0]
	assert.Equal(t, "f", got.ID)
	assert.True(t, got.HasChild("c"))
	assert.Equal(t, int64(2), got.Version, "corrective write bumps version")
	assert.Equal(t, 1, report.CountsByKind[AnomalyMissingChildLink])
	require.Len(t, report.Details, 1)
	assert.Equal(t, "f", report.Details[0].PersonID)
	assert.Equal(t, "children", report.Details[0].Field)
}

func TestReconcile_DanglingParentRefCleared(t *testing.T) {
	child := p("c", "Filho")
	child.FatherID = "ghost"
	child.MotherID = "m"
	mother := p("m", "Mãe")
	mother.ChildIDs = []string{"c"}

	corrected, report := NewReconciler().Reconcile([]*person.Person{child, mother})

	require.Len(t, corrected, 1)
	assert.Equal(t, "c", corrected[0].ID)
	assert.Empty(t, corrected[0].FatherID, "dangling link cleared, no person fabricated")
	assert.Equal(t, "m", corrected[0].MotherID)
	assert.Equal(t, 1, report.CountsByKind[AnomalyDanglingParentRef])
}

func TestReconcile_ChildListFillsOpenParentSlot(t *testing.T) {
	parent := p("a", "Ana")
	parent.ChildIDs = []string{"b"}
	child := p("b", "Beto")

	corrected, report := NewReconciler().Reconcile([]*person.Person{parent, child})

	require.Len(t, corrected, 1)
	assert.Equal(t, "b", corrected[0].ID)
	assert.Equal(t, "a", corrected[0].FatherID, "father slot is filled first")
	assert.Equal(t, 1, report.CountsByKind[AnomalyMissingParentLink])
}

func TestReconcile_ChildListFallsBackToMotherSlot(t *testing.T) {
	parent := p("a", "Ana")
	parent.ChildIDs = []string{"b"}
	other := p("x", "Xavier")
	other.ChildIDs = []string{"b"}
	child := p("b", "Beto")
	child.FatherID = "x"

	corrected, _ := NewReconciler().Reconcile([]*person.Person{parent, child, other})

	got := byID(corrected)["b"]
	require.NotNil(t, got)
	assert.Equal(t, "x", got.FatherID)
	assert.Equal(t, "a", got.MotherID)
}

func TestReconcile_AmbiguousParentSlot(t *testing.T) {
	lister := p("a", "Ana")
	lister.ChildIDs = []string{"b"}
	father := p("f", "Pai")
	father.ChildIDs = []string{"b"}
	mother := p("m", "Mãe")
	mother.ChildIDs = []string{"b"}
	child := p("b", "Beto")
	child.FatherID = "f"
	child.MotherID = "m"

	corrected, report := NewReconciler().Reconcile([]*person.Person{lister, father, mother, child})

	assert.Empty(t, corrected, "ambiguity is never auto-fixed")
	assert.Equal(t, 1, report.CountsByKind[AnomalyAmbiguousParentSlot])
	assert.Equal(t, "b", report.Details[0].PersonID)
}

func TestReconcile_AsymmetricSpouseCompleted(t *testing.T) {
	a := p("a", "Ana")
	a.SpouseID = "b"
	b := p("b", "Beto")

	corrected, report := NewReconciler().Reconcile([]*person.Person{a, b})

	require.Len(t, corrected, 1)
	assert.Equal(t, "b", corrected[0].ID)
	assert.Equal(t, "a", corrected[0].SpouseID)
	assert.Equal(t, 1, report.CountsByKind[AnomalyAsymmetricSpouse])
}

func TestReconcile_SpouseConflictReportedForBothSidesNoWrite(t *testing.T) {
	a := p("a", "Ana")
	a.SpouseID = "b"
	b := p("b", "Beto")
	b.SpouseID = "c"
	c := p("c", "Carla")
	c.SpouseID = "b"

	corrected, report := NewReconciler().Reconcile([]*person.Person{a, b, c})

	assert.Empty(t, corrected)
	assert.Equal(t, 2, report.CountsByKind[AnomalySpouseConflict])

	var ids []string
	for _, d := range report.Details {
		ids = append(ids, d.PersonID)
	}
	assert.ElementsMatch(t, []string{"a", "b"}, ids)
}

func TestReconcile_DanglingSpouseAndChildRefs(t *testing.T) {
	a := p("a", "Ana")
	a.SpouseID = "ghost"
	a.ChildIDs = []string{"nobody"}

	corrected, report := NewReconciler().Reconcile([]*person.Person{a})

	require.Len(t, corrected, 1)
	assert.Empty(t, corrected[0].SpouseID)
	assert.Empty(t, corrected[0].ChildIDs)
	assert.Equal(t, 1, report.CountsByKind[AnomalyDanglingSpouseRef])
	assert.Equal(t, 1, report.CountsByKind[AnomalyDanglingChildRef])
}

func TestReconcile_SelfReferentialChildEntryDropped(t *testing.T) {
	a := p("a", "Ana")
	a.FatherID = "f"
	a.ChildIDs = []string{"f", "a"}
	f := p("f", "Pai")
	f.ChildIDs = []string{"a"}

	corrected, report := NewReconciler().Reconcile([]*person.Person{a, f})

	got := byID(corrected)["a"]
	require.NotNil(t, got)
	assert.Empty(t, got.ChildIDs, "parent and self entries removed from child set")
	assert.Equal(t, "f", got.FatherID, "parent link wins over child entry")
	assert.Equal(t, 2, report.CountsByKind[AnomalySelfReferentialLink])
}

func TestReconcile_AncestryCycleReportedNotFixed(t *testing.T) {
	// Three-generation loop with both link directions kept symmetric, so the
	// cycle is the only remaining anomaly.
	a := p("a", "Ana")
	b := p("b", "Beto")
	c := p("c", "Carla")
	a.FatherID, b.ChildIDs = "b", []string{"a"}
	b.FatherID, c.ChildIDs = "c", []string{"b"}
	c.FatherID, a.ChildIDs = "a", []string{"c"}

	corrected, report := NewReconciler().Reconcile([]*person.Person{a, b, c})

	assert.Empty(t, corrected)
	assert.Equal(t, 3, report.CountsByKind[AnomalyAncestryCycle], "each member of the cycle is flagged")
}

func TestReconcile_SharedAncestorIsNotACycle(t *testing.T) {
	// Both parents of "c" share a grandfather: pedigree collapse, legitimate.
	g := p("g", "Avô")
	g.ChildIDs = []string{"f", "m"}
	f := p("f", "Pai")
	f.FatherID = "g"
	f.ChildIDs = []string{"c"}
	m := p("m", "Mãe")
	m.FatherID = "g"
	m.ChildIDs = []string{"c"}
	c := p("c", "Filho")
	c.FatherID = "f"
	c.MotherID = "m"

	_, report := NewReconciler().Reconcile([]*person.Person{g, f, m, c})

	assert.Zero(t, report.CountsByKind[AnomalyAncestryCycle])
}

func TestReconcile_Idempotent(t *testing.T) {
	father := p("f", "Pai")
	child := p("c", "Filho")
	child.FatherID = "f"
	a := p("a", "Ana")
	a.SpouseID = "b"
	b := p("b", "Beto")
	snapshot := []*person.Person{father, child, a, b}

	corrected, first := NewReconciler().Reconcile(snapshot)
	require.NotEmpty(t, corrected)
	require.Positive(t, first.Mutated)

	second, secondReport := NewReconciler().Reconcile(applyCorrections(snapshot, corrected))
	assert.Empty(t, second, "second run must yield zero further corrections")
	assert.Zero(t, secondReport.Mutated)
}

func TestReconcile_SpouseSymmetryHoldsAfterPass(t *testing.T) {
	a := p("a", "Ana")
	a.SpouseID = "b"
	b := p("b", "Beto")
	c := p("c", "Carla")
	c.SpouseID = "d"
	d := p("d", "Davi")
	d.SpouseID = "c"
	snapshot := []*person.Person{a, b, c, d}

	corrected, _ := NewReconciler().Reconcile(snapshot)
	final := person.BuildIndex(applyCorrections(snapshot, corrected))

	for _, x := range final {
		if x.SpouseID == "" {
			continue
		}
		spouse := final.Get(x.SpouseID)
		require.NotNil(t, spouse)
		assert.Equal(t, x.ID, spouse.SpouseID, "spouse symmetry must hold for %s", x.ID)
	}
}

func TestReconcile_ParentChildInvariantHoldsAfterPass(t *testing.T) {
	f := p("f", "Pai")
	f.ChildIDs = []string{"c1", "c2"}
	c1 := p("c1", "Um")
	c2 := p("c2", "Dois")
	c2.MotherID = "f" // asymmetric the other way round too
	c3 := p("c3", "Três")
	c3.FatherID = "f"
	snapshot := []*person.Person{f, c1, c2, c3}

	corrected, _ := NewReconciler().Reconcile(snapshot)
	final := person.BuildIndex(applyCorrections(snapshot, corrected))

	for _, x := range final {
		for _, cid := range x.ChildIDs {
			child := final.Get(cid)
			require.NotNil(t, child)
			assert.True(t, child.FatherID == x.ID || child.MotherID == x.ID,
				"child %s must name %s as a parent", cid, x.ID)
		}
		for _, pid := range x.ParentIDs() {
			parent := final.Get(pid)
			require.NotNil(t, parent)
			assert.True(t, parent.HasChild(x.ID),
				"parent %s must list %s as child", pid, x.ID)
		}
	}
}

func TestReconcile_DeterministicReports(t *testing.T) {
	build := func() []*person.Person {
		f := p("f", "Pai")
		c1 := p("c1", "Um")
		c1.FatherID = "f"
		c2 := p("c2", "Dois")
		c2.FatherID = "f"
		a := p("a", "Ana")
		a.SpouseID = "ghost"
		return []*person.Person{c2, a, f, c1}
	}

	_, r1 := NewReconciler().Reconcile(build())
	_, r2 := NewReconciler().Reconcile(build())
	assert.Equal(t, r1.Details, r2.Details)
	assert.Equal(t, r1.CountsByKind, r2.CountsByKind)
}
