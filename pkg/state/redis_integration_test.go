//go:build integration

package state_test

import (
	"context"
	"os"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/liginc/unias-go/pkg/state"
)

const testRedisURL = "redis://localhost:6379/0"

func newTestRedisClient(t *testing.T) goredis.UniversalClient {
	t.Helper()

	url := os.Getenv("REDIS_URL")
	if url == "" {
		url = testRedisURL
	}

	ctx := context.Background()
	client, err := state.OpenRedis(ctx, url)
	require.NoError(t, err, "failed to connect to Redis")

	t.Cleanup(func() {
		_ = client.Close()
	})

	return client
}

func TestRedis_IssueConsume(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("state is single use", func(t *testing.T) {
		t.Parallel()
		s := state.NewRedis(newTestRedisClient(t), state.WithPrefix("test-single-use"))

		v, err := s.Issue(ctx)
		require.NoError(t, err)
		require.NoError(t, s.Consume(ctx, v))
		require.ErrorIs(t, s.Consume(ctx, v), state.ErrNotFound)
	})

	t.Run("ttl applied", func(t *testing.T) {
		t.Parallel()
		client := newTestRedisClient(t)
		s := state.NewRedis(client, state.WithPrefix("test-ttl"), state.WithTTL(30*time.Second))

		v, err := s.Issue(ctx)
		require.NoError(t, err)

		ttl, err := client.TTL(ctx, "test-ttl:"+v).Result()
		require.NoError(t, err)
		require.Greater(t, ttl, time.Duration(0))
		require.LessOrEqual(t, ttl, 30*time.Second)
	})

	t.Run("collision", func(t *testing.T) {
		t.Parallel()
		s := state.NewRedis(newTestRedisClient(t),
			state.WithPrefix("test-collision"),
			state.WithGenerator(func() string { return "fixed" }))

		_, err := s.Issue(ctx)
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Consume(ctx, "fixed") })

		_, err = s.Issue(ctx)
		require.ErrorIs(t, err, state.ErrCollision)
	})

	t.Run("close leaves caller client open", func(t *testing.T) {
		t.Parallel()
		client := newTestRedisClient(t)
		s := state.NewRedis(client)
		require.NoError(t, s.Close())
		require.NoError(t, client.Ping(ctx).Err())
	})
}
