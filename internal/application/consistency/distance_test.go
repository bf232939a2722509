package consistency

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minhaarvore/arvore/internal/domain/person"
)

func TestRecomputeRootDistances(t *testing.T) {
	root1 := p("r1", "Fundador")
	root1.IsRootCouple = true
	root2 := p("r2", "Fundadora")
	root2.IsRootCouple = true
	root1.SpouseID, root2.SpouseID = "r2", "r1"
	child := p("c", "Filho")
	child.FatherID, child.MotherID = "r1", "r2"
	root1.ChildIDs = []string{"c"}
	root2.ChildIDs = []string{"c"}
	grandchild := p("g", "Neto")
	grandchild.FatherID = "c"
	child.ChildIDs = []string{"g"}
	island := p("i", "Isolado")
	island.DistanceFromRoot = 7 // stale

	// Stale values everywhere force updates.
	root1.DistanceFromRoot = 5
	child.DistanceFromRoot = 5
	grandchild.DistanceFromRoot = 5

	changed := RecomputeRootDistances([]*person.Person{root1, root2, child, grandchild, island})

	got := byID(changed)
	require.Len(t, changed, 4, "r2 already at 0 stays untouched")
	assert.Equal(t, 0, got["r1"].DistanceFromRoot)
	assert.Equal(t, 1, got["c"].DistanceFromRoot)
	assert.Equal(t, 2, got["g"].DistanceFromRoot)
	assert.Equal(t, -1, got["i"].DistanceFromRoot, "unreachable records get -1")
	assert.Nil(t, got["r2"])
}

func TestRecomputeRootDistances_NoChangesNoWrites(t *testing.T) {
	root := p("r", "Fundador")
	root.IsRootCouple = true
	child := p("c", "Filho")
	child.FatherID = "r"
	child.DistanceFromRoot = 1
	root.ChildIDs = []string{"c"}

	assert.Empty(t, RecomputeRootDistances([]*person.Person{root, child}))
}
