package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/latticelabs/lattice/pkg/adapters/redis"
	"github.com/latticelabs/lattice/pkg/domain"
	"github.com/latticelabs/lattice/pkg/ports"
)

func newTestClient(t *testing.T) *backend.Client {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	return backend.NewClient(&backend.Options{Addr: mr.Addr()})
}

func TestRedisStore_Contract(t *testing.T) {
	store := redis.NewFromClient(newTestClient(t))
	ports.RunJobStoreContract(t, store)
}

func TestRedisStore_CustomPrefix(t *testing.T) {
	client := newTestClient(t)
	store := redis.NewFromClient(client, redis.WithPrefix("custom:"))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &domain.Job{ID: "j1", Status: domain.JobCompleted}))

	val, err := client.Get(ctx, "custom:j1").Result()
	require.NoError(t, err)
	assert.Contains(t, val, `"completed"`)
}

func TestRedisStore_TTLSetsExpiry(t *testing.T) {
	client := newTestClient(t)
	store := redis.NewFromClient(client, redis.WithTTL(time.Hour))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &domain.Job{ID: "j1", Status: domain.JobRunning}))

	ttl, err := client.TTL(ctx, "lattice:job:j1").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}
