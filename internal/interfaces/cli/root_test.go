package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minhaarvore/arvore/internal/application/consistency"
	"github.com/minhaarvore/arvore/internal/application/dedup"
	"github.com/minhaarvore/arvore/internal/application/kinship"
	appsubfamily "github.com/minhaarvore/arvore/internal/application/subfamily"
	"github.com/minhaarvore/arvore/internal/domain/person"
	"github.com/minhaarvore/arvore/internal/infrastructure/database/memory"
	"github.com/minhaarvore/arvore/internal/infrastructure/monitoring/logging"
)

// memoryFactory builds a fully wired in-memory dependency set seeded with the
// given persons.
func memoryFactory(t *testing.T, persons ...*person.Person) DepsFactory {
	t.Helper()

	store := memory.NewGraphStore()
	ctx := context.Background()
	for _, p := range persons {
		require.NoError(t, store.Put(ctx, p))
	}

	log := logging.NewNop()
	consistencySvc, err := consistency.NewService(consistency.ServiceConfig{
		Store:      store,
		Reconciler: consistency.NewReconciler(),
		Logger:     log,
	})
	require.NoError(t, err)
	dedupSvc, err := dedup.NewService(dedup.ServiceConfig{
		Store:    store,
		Detector: dedup.NewDetector(),
		Engine:   dedup.NewEngine(),
		Logger:   log,
	})
	require.NoError(t, err)
	subfamilySvc, err := appsubfamily.NewService(appsubfamily.ServiceConfig{
		Persons:     store,
		Subfamilies: memory.NewSubfamilyStore(),
		Detector:    appsubfamily.NewDetector(),
		Logger:      log,
	})
	require.NoError(t, err)

	deps := &Deps{
		Consistency: consistencySvc,
		Dedup:       dedupSvc,
		Kinship:     kinship.NewResolver(),
		Subfamily:   subfamilySvc,
		Persons:     store,
		Logger:      log,
	}
	return func(*RootOptions) (*Deps, func(), error) {
		return deps, func() {}, nil
	}
}

func execute(t *testing.T, root *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func TestReconcileCommand(t *testing.T) {
	factory := memoryFactory(t,
		&person.Person{ID: "pai", Name: "Pai", ChildIDs: []string{"filho"}},
		&person.Person{ID: "filho", Name: "Filho"},
	)

	out, err := execute(t, NewRootCommand(factory), "reconcile")

	require.NoError(t, err)
	assert.Contains(t, out, "Scanned 2 record(s)")
	assert.Contains(t, out, "corrected 1")
}

func TestReconcileCommand_DistancesOnly(t *testing.T) {
	factory := memoryFactory(t,
		&person.Person{ID: "pai", Name: "Pai", IsRootCouple: true, ChildIDs: []string{"filho"}},
		&person.Person{ID: "filho", Name: "Filho", FatherID: "pai"},
	)

	out, err := execute(t, NewRootCommand(factory), "reconcile", "--distances-only")

	require.NoError(t, err)
	assert.Contains(t, out, "Recomputed root distances")
}

func TestDuplicatesCommand(t *testing.T) {
	factory := memoryFactory(t,
		&person.Person{ID: "a", Name: "João Silva"},
		&person.Person{ID: "b", Name: "Maria Costa"},
	)

	out, err := execute(t, NewRootCommand(factory), "duplicates")

	require.NoError(t, err)
	assert.Contains(t, out, "No duplicate candidates")
}

func TestMergeCommand(t *testing.T) {
	factory := memoryFactory(t,
		&person.Person{ID: "keep", Name: "João Silva"},
		&person.Person{ID: "discard", Name: "Joao Silva"},
		&person.Person{ID: "filho", Name: "Filho", FatherID: "discard"},
	)

	out, err := execute(t, NewRootCommand(factory), "merge", "--keep", "keep", "--discard", "discard")

	require.NoError(t, err)
	assert.Contains(t, out, "Merged discard into keep")
	assert.Contains(t, out, "1 reference(s) rewritten")
}

func TestMergeCommand_RequiresFlags(t *testing.T) {
	factory := memoryFactory(t)

	_, err := execute(t, NewRootCommand(factory), "merge", "--keep", "only")

	assert.Error(t, err)
}

func TestKinshipCommand(t *testing.T) {
	factory := memoryFactory(t,
		&person.Person{ID: "pai", Name: "Pai", ChildIDs: []string{"filho"}},
		&person.Person{ID: "filho", Name: "Filho", FatherID: "pai"},
	)

	out, err := execute(t, NewRootCommand(factory), "kinship", "filho", "pai", "--json")

	require.NoError(t, err)
	assert.Contains(t, out, `"label": "FATHER"`)
}

func TestSubfamiliesSuggestAndAccept(t *testing.T) {
	factory := memoryFactory(t,
		&person.Person{ID: "pai", Name: "Pai", SpouseID: "mae", ChildIDs: []string{"filho"}},
		&person.Person{ID: "mae", Name: "Mãe", SpouseID: "pai", ChildIDs: []string{"filho"}},
		&person.Person{ID: "filho", Name: "Filho", FatherID: "pai", MotherID: "mae"},
	)
	root := NewRootCommand(factory)

	out, err := execute(t, root, "subfamilies", "suggest")
	require.NoError(t, err)
	assert.Contains(t, out, "mae:pai")

	out, err = execute(t, root, "subfamilies", "accept", "--key", "mae:pai")
	require.NoError(t, err)
	assert.Contains(t, out, "Created subfamily")
}

func TestSubfamiliesAccept_UnknownKey(t *testing.T) {
	factory := memoryFactory(t)

	_, err := execute(t, NewRootCommand(factory), "subfamilies", "accept", "--key", "x:y")

	assert.Error(t, err)
}
