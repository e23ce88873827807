package storage

import (
	"context"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func testStorage(t *testing.T, s Storage) {
	t.Helper()
	ctx := context.Background()

	ok, err := s.Exists(ctx, "secret")
	require.NoError(t, err)
	require.False(t, ok)

	_, err = s.Load(ctx, "secret")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Store(ctx, "secret", []byte{1, 2, 3}))
	require.NoError(t, s.Store(ctx, "rotation/5", []byte{5}))
	require.NoError(t, s.Store(ctx, "rotation/-3", []byte{3}))

	data, err := s.Load(ctx, "secret")
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3}, data)

	require.NoError(t, s.Store(ctx, "secret", []byte{9}))
	data, err = s.Load(ctx, "secret")
	require.NoError(t, err)
	require.Equal(t, []byte{9}, data)

	keys, err := s.Keys(ctx, "rotation/")
	require.NoError(t, err)
	if diff := cmp.Diff([]string{"rotation/-3", "rotation/5"}, keys); diff != "" {
		t.Fatalf("keys (-want +got):\n%s", diff)
	}

	require.NoError(t, s.Delete(ctx, "secret"))
	require.ErrorIs(t, s.Delete(ctx, "secret"), ErrNotFound)

	require.ErrorIs(t, s.Store(ctx, "../escape", nil), ErrInvalidKey)
	require.ErrorIs(t, s.Store(ctx, "", nil), ErrInvalidKey)

	require.NoError(t, s.Close())
}

func TestMemoryStorage(t *testing.T) {
	testStorage(t, NewMemoryStorage(0))
}

func TestMemoryStorageCapacity(t *testing.T) {
	s := NewMemoryStorage(1)
	ctx := context.Background()

	require.NoError(t, s.Store(ctx, "a", make([]byte, 1024*1024)))
	require.ErrorIs(t, s.Store(ctx, "b", []byte{1}), ErrStorageFull)
	require.NoError(t, s.Store(ctx, "a", []byte{1}))
	require.NoError(t, s.Store(ctx, "b", []byte{1}))
}

func TestFileStorage(t *testing.T) {
	s, err := NewFileStorage(t.TempDir())
	require.NoError(t, err)
	testStorage(t, s)
}

func TestRedisStorage(t *testing.T) {
	url := os.Getenv("ORION_TEST_REDIS")
	if url == "" {
		t.Skip("ORION_TEST_REDIS not set")
	}
	s, err := NewRedisStorage(url, "orion-test:"+t.Name()+":")
	require.NoError(t, err)
	testStorage(t, s)
}

func TestOpen(t *testing.T) {
	s, err := Open("")
	require.NoError(t, err)
	require.IsType(t, &MemoryStorage{}, s)

	s, err = Open(t.TempDir())
	require.NoError(t, err)
	require.IsType(t, &FileStorage{}, s)
}
