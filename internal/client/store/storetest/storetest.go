// Package storetest holds the behaviour every store driver must share.
package storetest

import (
	"context"
	"testing"

	"github.com/aussiebroadwan/banksync/internal/client/store"
	"github.com/stretchr/testify/require"
)

// Run exercises s against the store.Store contract.
func Run(t *testing.T, s store.Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		_, err := s.Get(ctx, "absent")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("set then get", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, "session", []byte("3")))
		v, err := s.Get(ctx, "session")
		require.NoError(t, err)
		require.Equal(t, []byte("3"), v)
	})

	t.Run("overwrite", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, "session", []byte("1")))
		v, err := s.Get(ctx, "session")
		require.NoError(t, err)
		require.Equal(t, []byte("1"), v)
	})

	t.Run("remove is idempotent", func(t *testing.T) {
		require.NoError(t, s.Remove(ctx, "session"))
		require.NoError(t, s.Remove(ctx, "session"))
		_, err := s.Get(ctx, "session")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("keys are independent", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, "a", []byte("x")))
		require.NoError(t, s.Set(ctx, "b", []byte("y")))
		require.NoError(t, s.Remove(ctx, "a"))

		v, err := s.Get(ctx, "b")
		require.NoError(t, err)
		require.Equal(t, []byte("y"), v)
	})
}
