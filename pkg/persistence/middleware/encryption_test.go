package middleware_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/latticelabs/lattice/pkg/adapters/memory"
	"github.com/latticelabs/lattice/pkg/domain"
	"github.com/latticelabs/lattice/pkg/persistence/middleware"
)

func testKey(b byte) []byte {
	return bytes.Repeat([]byte{b}, 32)
}

func testJob() *domain.Job {
	return &domain.Job{
		ID:        "job-1",
		Status:    domain.JobCompleted,
		Model:     "test-model",
		UserQuery: "add a torus",
		Scene:     `{"nodes":["cube","torus"]}`,
		CreatedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestEncryption_RoundTrip(t *testing.T) {
	backing := memory.NewStore()
	store := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey: testKey('a'),
	})(backing)
	ctx := context.Background()

	job := testJob()
	require.NoError(t, store.Save(ctx, job))

	loaded, err := store.Load(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, job.UserQuery, loaded.UserQuery)
	assert.Equal(t, job.Scene, loaded.Scene)

	// The backing store only sees the envelope.
	raw, err := backing.Load(ctx, "job-1")
	require.NoError(t, err)
	assert.NotEmpty(t, raw.Sealed)
	assert.Empty(t, raw.UserQuery)
	assert.Empty(t, raw.Scene)
	assert.Equal(t, domain.JobCompleted, raw.Status, "status stays readable for monitoring")
}

func TestEncryption_KeyRotation(t *testing.T) {
	backing := memory.NewStore()
	ctx := context.Background()

	oldStore := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey: testKey('a'),
	})(backing)
	require.NoError(t, oldStore.Save(ctx, testJob()))

	// New active key, old key demoted to fallback.
	newStore := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    testKey('b'),
		FallbackKeys: [][]byte{testKey('a')},
	})(backing)

	loaded, err := newStore.Load(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, "add a torus", loaded.UserQuery)
}

func TestEncryption_WrongKeyFails(t *testing.T) {
	backing := memory.NewStore()
	ctx := context.Background()

	require.NoError(t, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey: testKey('a'),
	})(backing).Save(ctx, testJob()))

	_, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey: testKey('x'),
	})(backing).Load(ctx, "job-1")
	assert.Error(t, err)
}

func TestEncryption_RejectsPlainRecords(t *testing.T) {
	backing := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, backing.Save(ctx, testJob()))

	store := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey: testKey('a'),
	})(backing)

	_, err := store.Load(ctx, "job-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "envelope")
}

func TestEncryption_ShortKeyPanics(t *testing.T) {
	assert.Panics(t, func() {
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short")})
	})
}
