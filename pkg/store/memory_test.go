package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/fbgraph/pkg/store"
)

func TestMemory(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("set get delete", func(t *testing.T) {
		t.Parallel()

		m := store.NewMemory(store.WithCleanupInterval(0))
		t.Cleanup(func() { _ = m.Close() })

		require.NoError(t, m.Set(ctx, "state:abc", "abc", time.Minute))
		v, err := m.Get(ctx, "state:abc")
		require.NoError(t, err)
		assert.Equal(t, "abc", v)

		require.NoError(t, m.Delete(ctx, "state:abc"))
		_, err = m.Get(ctx, "state:abc")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("missing key", func(t *testing.T) {
		t.Parallel()

		m := store.NewMemory(store.WithCleanupInterval(0))
		_, err := m.Get(ctx, "nope")
		require.ErrorIs(t, err, store.ErrNotFound)
		require.NoError(t, m.Delete(ctx, "nope"))
	})

	t.Run("expired entry", func(t *testing.T) {
		t.Parallel()

		m := store.NewMemory(store.WithCleanupInterval(0))
		require.NoError(t, m.Set(ctx, "k", "v", time.Millisecond))
		time.Sleep(5 * time.Millisecond)

		_, err := m.Get(ctx, "k")
		require.ErrorIs(t, err, store.ErrNotFound)
		assert.Equal(t, 0, m.Len())
	})

	t.Run("default and negative ttl", func(t *testing.T) {
		t.Parallel()

		m := store.NewMemory(store.WithCleanupInterval(0), store.WithDefaultTTL(time.Millisecond))
		require.NoError(t, m.Set(ctx, "default", "v", 0))
		require.NoError(t, m.Set(ctx, "forever", "v", -1))
		time.Sleep(5 * time.Millisecond)

		_, err := m.Get(ctx, "default")
		require.ErrorIs(t, err, store.ErrNotFound)
		v, err := m.Get(ctx, "forever")
		require.NoError(t, err)
		assert.Equal(t, "v", v)
	})

	t.Run("janitor removes expired entries", func(t *testing.T) {
		t.Parallel()

		m := store.NewMemory(store.WithCleanupInterval(5 * time.Millisecond))
		t.Cleanup(func() { _ = m.Close() })

		require.NoError(t, m.Set(ctx, "k", "v", time.Millisecond))
		require.Eventually(t, func() bool { return m.Len() == 0 }, time.Second, 5*time.Millisecond)
	})

	t.Run("closed store rejects writes", func(t *testing.T) {
		t.Parallel()

		m := store.NewMemory()
		require.NoError(t, m.Close())
		require.NoError(t, m.Close())

		require.ErrorIs(t, m.Set(ctx, "k", "v", 0), store.ErrClosed)
		require.ErrorIs(t, m.Delete(ctx, "k"), store.ErrClosed)
	})
}
