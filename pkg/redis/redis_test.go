package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/fbgraph/pkg/redis"
)

func TestOpen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("empty url", func(t *testing.T) {
		t.Parallel()

		client, err := redis.Open(ctx, redis.Config{}, nil)
		require.ErrorIs(t, err, redis.ErrEmptyURL)
		require.Nil(t, client)
	})

	t.Run("wrong scheme", func(t *testing.T) {
		t.Parallel()

		for _, u := range []string{"http://localhost:6379", "localhost:6379", "postgres://localhost"} {
			client, err := redis.Open(ctx, redis.Config{URL: u}, nil)
			require.ErrorIs(t, err, redis.ErrInvalidURL, u)
			require.Nil(t, client)
		}
	})

	t.Run("connects to running server", func(t *testing.T) {
		t.Parallel()

		srv := miniredis.RunT(t)
		client, err := redis.Open(ctx, redis.Config{URL: "redis://" + srv.Addr()}, nil)
		require.NoError(t, err)
		t.Cleanup(func() { _ = client.Close() })

		require.NoError(t, redis.Healthcheck(client)(ctx))
	})

	t.Run("gives up on unreachable server", func(t *testing.T) {
		t.Parallel()

		srv := miniredis.RunT(t)
		addr := srv.Addr()
		srv.Close()

		client, err := redis.Open(ctx, redis.Config{
			URL:           "redis://" + addr,
			RetryAttempts: 2,
			RetryInterval: time.Millisecond,
			DialTimeout:   100 * time.Millisecond,
		}, nil)
		require.ErrorIs(t, err, redis.ErrUnreachable)
		require.Nil(t, client)
	})
}

func TestHealthcheck(t *testing.T) {
	t.Parallel()

	t.Run("nil client", func(t *testing.T) {
		t.Parallel()
		require.ErrorIs(t, redis.Healthcheck(nil)(context.Background()), redis.ErrHealthcheckFailed)
	})

	t.Run("server gone", func(t *testing.T) {
		t.Parallel()

		srv := miniredis.RunT(t)
		client, err := redis.Open(context.Background(), redis.Config{URL: "redis://" + srv.Addr()}, nil)
		require.NoError(t, err)
		t.Cleanup(func() { _ = client.Close() })

		srv.Close()
		require.ErrorIs(t, redis.Healthcheck(client)(context.Background()), redis.ErrHealthcheckFailed)
	})
}
