package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minhaarvore/arvore/internal/domain/person"
	"github.com/minhaarvore/arvore/internal/domain/subfamily"
	"github.com/minhaarvore/arvore/pkg/errors"
)

func TestGraphStore_RoundTrip(t *testing.T) {
	store := NewGraphStore()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, &person.Person{ID: "a", Name: "Ana"}))
	require.NoError(t, store.Put(ctx, &person.Person{ID: "b", Name: "Bento"}))

	all, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "a", all[0].ID, "snapshot ordered by id")

	got, ok, err := store.Get(ctx, "a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Ana", got.Name)

	require.NoError(t, store.Delete(ctx, "a"))
	_, ok, err = store.Get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, store.Len())
}

func TestGraphStore_PutIsUpsertAndIsolated(t *testing.T) {
	store := NewGraphStore()
	ctx := context.Background()

	p := &person.Person{ID: "a", Name: "Ana", ChildIDs: []string{"c"}}
	require.NoError(t, store.Put(ctx, p))

	// Mutating the original after Put must not leak into the store.
	p.Name = "Alterada"
	p.ChildIDs[0] = "x"

	got, ok, err := store.Get(ctx, "a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Ana", got.Name)
	assert.Equal(t, []string{"c"}, got.ChildIDs)

	require.NoError(t, store.Put(ctx, &person.Person{ID: "a", Name: "Nova"}))
	got, _, _ = store.Get(ctx, "a")
	assert.Equal(t, "Nova", got.Name)
	assert.Equal(t, 1, store.Len())
}

func TestGraphStore_PutRejectsEmptyID(t *testing.T) {
	store := NewGraphStore()
	err := store.Put(context.Background(), &person.Person{Name: "Sem ID"})
	assert.Error(t, err)
}

func TestSubfamilyStore_UniqueCoupleKey(t *testing.T) {
	store := NewSubfamilyStore()
	ctx := context.Background()

	g := &subfamily.Subfamily{
		ID:        "g1",
		Name:      "Família de Teste",
		FatherID:  "pai",
		MotherID:  "mae",
		CoupleKey: subfamily.CoupleKey("pai", "mae"),
		MemberIDs: []string{"pai", "mae", "filho"},
		CreatedAt: time.Now(),
	}
	require.NoError(t, store.Create(ctx, g))

	dup := *g
	dup.ID = "g2"
	err := store.Create(ctx, &dup)
	assert.True(t, errors.IsCode(err, errors.ErrCodeSubfamilyExists))

	existing, err := store.ListExisting(ctx)
	require.NoError(t, err)
	require.Len(t, existing, 1)
	assert.Equal(t, "g1", existing[0].ID)
}

func TestSubfamilyStore_CreateValidates(t *testing.T) {
	store := NewSubfamilyStore()
	err := store.Create(context.Background(), &subfamily.Subfamily{ID: "g"})
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))
}
