package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/latticelabs/lattice/pkg/domain"
)

// RunJobStoreContract runs a suite of tests verifying that a JobStore
// implementation adheres to the interface contract. Adapter packages call
// it from their own tests.
func RunJobStoreContract(t *testing.T, store JobStore) {
	ctx := context.Background()
	jobID := "contract-job-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		job := &domain.Job{
			ID:        jobID,
			Status:    domain.JobCompleted,
			Model:     "test-model",
			UserQuery: "add a torus",
			Intent:    string(domain.ActionModifyScene),
			Scene:     `{"nodes":[],"edges":[]}`,
			CreatedAt: time.Now().UTC().Truncate(time.Second),
		}

		err := store.Save(ctx, job)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, jobID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, job.ID, loaded.ID)
		assert.Equal(t, job.Status, loaded.Status)
		assert.Equal(t, job.Scene, loaded.Scene)
		assert.Equal(t, job.Intent, loaded.Intent)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+jobID)
		assert.ErrorIs(t, err, domain.ErrJobNotFound)
	})

	t.Run("Overwrite", func(t *testing.T) {
		first := &domain.Job{ID: jobID, Status: domain.JobRunning}
		require.NoError(t, store.Save(ctx, first))

		second := &domain.Job{ID: jobID, Status: domain.JobFailed, Error: "boom"}
		require.NoError(t, store.Save(ctx, second))

		loaded, err := store.Load(ctx, jobID)
		require.NoError(t, err)
		assert.Equal(t, domain.JobFailed, loaded.Status)
		assert.Equal(t, "boom", loaded.Error)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, &domain.Job{ID: jobID, Status: domain.JobCompleted}))

		err := store.Delete(ctx, jobID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, jobID)
		assert.ErrorIs(t, err, domain.ErrJobNotFound, "Load after Delete should return ErrJobNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := jobID + "-1"
		id2 := jobID + "-2"
		_ = store.Save(ctx, &domain.Job{ID: id1, Status: domain.JobCompleted})
		_ = store.Save(ctx, &domain.Job{ID: id2, Status: domain.JobCompleted})

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		jobs, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, jobs, id1)
		assert.Contains(t, jobs, id2)
	})
}
