package bootstrap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minhaarvore/arvore/internal/config"
	"github.com/minhaarvore/arvore/internal/domain/person"
	"github.com/minhaarvore/arvore/internal/infrastructure/monitoring/logging"
)

func memoryConfig() *config.Config {
	cfg := &config.Config{}
	cfg.ApplyDefaults()
	cfg.Storage.Backend = config.BackendMemory
	cfg.Redis.Addr = "" // keep the guard local
	return cfg
}

func TestNew_MemoryBackend(t *testing.T) {
	ctx := context.Background()
	app, err := New(ctx, memoryConfig(), logging.NewNop())
	require.NoError(t, err)
	defer app.Close(ctx)

	assert.NotNil(t, app.Persons)
	assert.NotNil(t, app.Subfamilies)
	assert.NotNil(t, app.Consistency)
	assert.NotNil(t, app.Dedup)
	assert.NotNil(t, app.Subfamily)
	assert.NotNil(t, app.Kinship)
	assert.NotNil(t, app.Metrics)
	assert.Nil(t, app.Redis)
	assert.Nil(t, app.Producer)
	assert.Empty(t, app.HealthCheckers())
}

func TestNew_ServicesShareTheStore(t *testing.T) {
	ctx := context.Background()
	app, err := New(ctx, memoryConfig(), logging.NewNop())
	require.NoError(t, err)
	defer app.Close(ctx)

	require.NoError(t, app.Persons.Put(ctx, &person.Person{ID: "pai", Name: "Pai", ChildIDs: []string{"filho"}}))
	require.NoError(t, app.Persons.Put(ctx, &person.Person{ID: "filho", Name: "Filho"}))

	report, err := app.Consistency.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Scanned)
	assert.Equal(t, 1, report.Mutated)

	filho, ok, err := app.Persons.Get(ctx, "filho")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "pai", filho.FatherID)
}

func TestNew_RejectsUnknownBackend(t *testing.T) {
	cfg := memoryConfig()
	cfg.Storage.Backend = "tape"

	_, err := New(context.Background(), cfg, logging.NewNop())
	assert.Error(t, err)
}

func TestClose_Idempotent(t *testing.T) {
	ctx := context.Background()
	app, err := New(ctx, memoryConfig(), logging.NewNop())
	require.NoError(t, err)

	app.Close(ctx)
	app.Close(ctx)
}
