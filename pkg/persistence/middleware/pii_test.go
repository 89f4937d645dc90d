package middleware_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/latticelabs/lattice/pkg/adapters/memory"
	"github.com/latticelabs/lattice/pkg/domain"
	"github.com/latticelabs/lattice/pkg/persistence/middleware"
)

const emailPattern = `[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`

func TestPII_MasksUserQuery(t *testing.T) {
	backing := memory.NewStore()
	store := middleware.NewPIIMiddleware([]string{emailPattern})(backing)
	ctx := context.Background()

	job := &domain.Job{
		ID:        "job-1",
		Status:    domain.JobCompleted,
		UserQuery: "send the scene to alice@example.com please",
	}
	require.NoError(t, store.Save(ctx, job))

	loaded, err := store.Load(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, "send the scene to *** please", loaded.UserQuery)

	// The caller's record is untouched.
	assert.Contains(t, job.UserQuery, "alice@example.com")
}

func TestPII_LeavesSceneAlone(t *testing.T) {
	backing := memory.NewStore()
	store := middleware.NewPIIMiddleware([]string{emailPattern})(backing)
	ctx := context.Background()

	scene := `{"nodes":["contact@example.com"]}`
	require.NoError(t, store.Save(ctx, &domain.Job{ID: "j", Scene: scene}))

	loaded, err := store.Load(ctx, "j")
	require.NoError(t, err)
	assert.Equal(t, scene, loaded.Scene, "machine-generated content is not masked")
}

func TestChain_OrderIsOutsideIn(t *testing.T) {
	backing := memory.NewStore()
	ctx := context.Background()

	store := middleware.Chain(backing,
		middleware.NewPIIMiddleware([]string{emailPattern}),
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: testKey('a')}),
	)

	require.NoError(t, store.Save(ctx, &domain.Job{
		ID:        "j",
		UserQuery: "mail bob@example.com",
	}))

	loaded, err := store.Load(ctx, "j")
	require.NoError(t, err)
	assert.Equal(t, "mail ***", loaded.UserQuery, "PII is masked before sealing")

	raw, err := backing.Load(ctx, "j")
	require.NoError(t, err)
	assert.NotEmpty(t, raw.Sealed)
	assert.Empty(t, raw.UserQuery)
}
