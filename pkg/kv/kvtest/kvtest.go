// Package kvtest holds the behavioral contract every core.KVStore must meet.
package kvtest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lborres/careerguide/core"
)

// Run exercises open's store against the KVStore contract. open must return
// an empty store.
func Run(t *testing.T, open func(t *testing.T) core.KVStore) {
	t.Helper()
	ctx := context.Background()

	t.Run("get missing key reports ErrKeyNotFound", func(t *testing.T) {
		s := open(t)
		_, err := s.GetItem(ctx, "missing")
		require.ErrorIs(t, err, core.ErrKeyNotFound)
	})

	t.Run("set then get round trips bytes", func(t *testing.T) {
		s := open(t)
		require.NoError(t, s.SetItem(ctx, core.KeyAuthToken, []byte(`"T"`)))

		got, err := s.GetItem(ctx, core.KeyAuthToken)
		require.NoError(t, err)
		require.Equal(t, `"T"`, string(got))
	})

	t.Run("set overwrites", func(t *testing.T) {
		s := open(t)
		require.NoError(t, s.SetItem(ctx, "k", []byte("1")))
		require.NoError(t, s.SetItem(ctx, "k", []byte("2")))

		got, err := s.GetItem(ctx, "k")
		require.NoError(t, err)
		require.Equal(t, "2", string(got))
	})

	t.Run("remove missing key succeeds", func(t *testing.T) {
		s := open(t)
		require.NoError(t, s.RemoveItem(ctx, "missing"))
	})

	t.Run("multi remove deletes only named keys", func(t *testing.T) {
		s := open(t)
		for _, k := range []string{core.KeyAuthToken, core.KeyUserData, core.KeyUserRole, core.KeyAppSettings} {
			require.NoError(t, s.SetItem(ctx, k, []byte(`"v"`)))
		}

		require.NoError(t, s.MultiRemove(ctx, core.SessionKeys...))
		require.NoError(t, s.MultiRemove(ctx, core.SessionKeys...), "multi remove must be idempotent")

		keys, err := s.Keys(ctx)
		require.NoError(t, err)
		require.Equal(t, []string{core.KeyAppSettings}, keys)
	})

	t.Run("keys are sorted", func(t *testing.T) {
		s := open(t)
		for _, k := range []string{"b", "c", "a"} {
			require.NoError(t, s.SetItem(ctx, k, []byte("x")))
		}

		keys, err := s.Keys(ctx)
		require.NoError(t, err)
		require.Equal(t, []string{"a", "b", "c"}, keys)
	})

	t.Run("clear empties the store", func(t *testing.T) {
		s := open(t)
		require.NoError(t, s.SetItem(ctx, "a", []byte("x")))
		require.NoError(t, s.Clear(ctx))

		keys, err := s.Keys(ctx)
		require.NoError(t, err)
		require.Empty(t, keys)
	})

	t.Run("cancelled context fails", func(t *testing.T) {
		s := open(t)
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		require.Error(t, s.SetItem(cctx, "a", []byte("x")))
	})
}
