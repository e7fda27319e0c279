package kv

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lborres/careerguide/core"
	"github.com/lborres/careerguide/pkg/kv/kvtest"
)

func TestMemoryStoreContract(t *testing.T) {
	kvtest.Run(t, func(t *testing.T) core.KVStore {
		return NewMemoryStore()
	})
}

func TestFileStoreContract(t *testing.T) {
	kvtest.Run(t, func(t *testing.T) core.KVStore {
		s, err := OpenFileStore(FileStoreConfig{Path: filepath.Join(t.TempDir(), "store.json")})
		require.NoError(t, err)
		return s
	})
}

func TestMemoryStoreShouldCopyValues(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	value := []byte("abc")
	require.NoError(t, s.SetItem(ctx, "k", value))
	value[0] = 'x'

	got, err := s.GetItem(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "abc", string(got))
}

func TestFileStoreShouldPersistAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "store.json")

	s, err := OpenFileStore(FileStoreConfig{Path: path})
	require.NoError(t, err)
	require.NoError(t, s.SetItem(ctx, core.KeyAuthToken, []byte(`"T"`)))
	require.NoError(t, s.Close())

	reopened, err := OpenFileStore(FileStoreConfig{Path: path})
	require.NoError(t, err)

	got, err := reopened.GetItem(ctx, core.KeyAuthToken)
	require.NoError(t, err)
	require.Equal(t, `"T"`, string(got))
}

func TestFileStoreShouldRejectCorruptDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	require.NoError(t, os.WriteFile(path, []byte("{oops"), 0o600))

	_, err := OpenFileStore(FileStoreConfig{Path: path})
	require.Error(t, err)
}

func TestFileStoreClosedShouldFail(t *testing.T) {
	s, err := OpenFileStore(FileStoreConfig{Path: filepath.Join(t.TempDir(), "store.json")})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	require.ErrorIs(t, s.SetItem(context.Background(), "k", []byte("v")), core.ErrStoreClosed)
	_, err = s.GetItem(context.Background(), "k")
	require.ErrorIs(t, err, core.ErrStoreClosed)
	_, err = s.Keys(context.Background())
	require.ErrorIs(t, err, core.ErrStoreClosed)
}

func TestFileStoreWatchShouldPickUpExternalWrites(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	path := filepath.Join(t.TempDir(), "store.json")
	s, err := OpenFileStore(FileStoreConfig{Path: path})
	require.NoError(t, err)
	require.NoError(t, s.Watch(ctx))

	require.NoError(t, os.WriteFile(path, []byte(`{"user_role":"\"counselor\""}`), 0o600))

	require.Eventually(t, func() bool {
		got, err := s.GetItem(ctx, core.KeyUserRole)
		return err == nil && string(got) == `"counselor"`
	}, 2*time.Second, 20*time.Millisecond)
}

func TestFileStoreWatchShouldNotDropOwnWrites(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	path := filepath.Join(t.TempDir(), "store.json")
	s, err := OpenFileStore(FileStoreConfig{Path: path})
	require.NoError(t, err)
	require.NoError(t, s.Watch(ctx))

	const n = 1000
	for i := range n {
		require.NoError(t, s.SetItem(ctx, fmt.Sprintf("key_%04d", i), []byte(strconv.Itoa(i))))
	}

	keys, err := s.Keys(ctx)
	require.NoError(t, err)
	require.Len(t, keys, n)

	reopened, err := OpenFileStore(FileStoreConfig{Path: path})
	require.NoError(t, err)
	keys, err = reopened.Keys(ctx)
	require.NoError(t, err)
	require.Len(t, keys, n)
}
