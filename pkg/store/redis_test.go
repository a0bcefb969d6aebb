package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/fbgraph/pkg/store"
)

func newMiniredis(t *testing.T) (*miniredis.Miniredis, goredis.UniversalClient) {
	t.Helper()

	srv := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return srv, client
}

func TestRedis(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("prefixed keys", func(t *testing.T) {
		t.Parallel()

		srv, client := newMiniredis(t)
		h := store.NewRedis(client)

		require.NoError(t, h.Set(ctx, "state:abc", "abc", time.Minute))
		assert.True(t, srv.Exists("fbgraph:state:abc"))

		v, err := h.Get(ctx, "state:abc")
		require.NoError(t, err)
		assert.Equal(t, "abc", v)
		assert.Equal(t, time.Minute, srv.TTL("fbgraph:state:abc"))
	})

	t.Run("custom prefix and default ttl", func(t *testing.T) {
		t.Parallel()

		srv, client := newMiniredis(t)
		h := store.NewRedis(client, store.WithPrefix("login"), store.WithRedisDefaultTTL(2*time.Minute))

		require.NoError(t, h.Set(ctx, "k", "v", 0))
		assert.True(t, srv.Exists("login:k"))
		assert.Equal(t, 2*time.Minute, srv.TTL("login:k"))
	})

	t.Run("negative ttl never expires", func(t *testing.T) {
		t.Parallel()

		srv, client := newMiniredis(t)
		h := store.NewRedis(client, store.WithPrefix(""))

		require.NoError(t, h.Set(ctx, "k", "v", -1))
		assert.True(t, srv.Exists("k"))
		assert.Zero(t, srv.TTL("k"))
	})

	t.Run("expiry and delete", func(t *testing.T) {
		t.Parallel()

		srv, client := newMiniredis(t)
		h := store.NewRedis(client)

		require.NoError(t, h.Set(ctx, "short", "v", time.Second))
		srv.FastForward(2 * time.Second)
		_, err := h.Get(ctx, "short")
		require.ErrorIs(t, err, store.ErrNotFound)

		require.NoError(t, h.Set(ctx, "k", "v", time.Minute))
		require.NoError(t, h.Delete(ctx, "k"))
		_, err = h.Get(ctx, "k")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("server errors are passed through", func(t *testing.T) {
		t.Parallel()

		srv, client := newMiniredis(t)
		h := store.NewRedis(client)
		srv.SetError("boom")

		_, err := h.Get(ctx, "k")
		require.Error(t, err)
		require.NotErrorIs(t, err, store.ErrNotFound)
	})
}
