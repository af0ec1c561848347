package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// exerciseStore runs the behaviour every backend must share.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Get(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, SaveJSON(ctx, s, "daily:2026-10-14", record{Name: "alice", Score: 1250}))
	var got record
	require.NoError(t, LoadJSON(ctx, s, "daily:2026-10-14", &got))
	assert.Equal(t, record{Name: "alice", Score: 1250}, got)

	require.NoError(t, SaveJSON(ctx, s, "daily:2026-10-14", record{Name: "alice", Score: 900}))
	require.NoError(t, LoadJSON(ctx, s, "daily:2026-10-14", &got))
	assert.Equal(t, 900, got.Score)

	require.NoError(t, s.Delete(ctx, "daily:2026-10-14"))
	require.ErrorIs(t, LoadJSON(ctx, s, "daily:2026-10-14", &got), ErrNotFound)
	require.NoError(t, s.Delete(ctx, "never-existed"))
}

func TestMemoryStore(t *testing.T) {
	t.Parallel()
	exerciseStore(t, NewMemoryStore())
}

func TestFileStore(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "blackjack.json")
	s, err := OpenFile(path)
	require.NoError(t, err)
	exerciseStore(t, s)
}

func TestFileStorePersists(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "blackjack.json")

	s, err := OpenFile(path)
	require.NoError(t, err)
	require.NoError(t, SaveJSON(ctx, s, KeyLifetimeStats, record{Name: "life", Score: 7}))
	require.NoError(t, s.Close())

	reopened, err := OpenFile(path)
	require.NoError(t, err)
	var got record
	require.NoError(t, LoadJSON(ctx, reopened, KeyLifetimeStats, &got))
	assert.Equal(t, 7, got.Score)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files left behind")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestFileStoreRejectsInvalidJSON(t *testing.T) {
	t.Parallel()

	s, err := OpenFile(filepath.Join(t.TempDir(), "s.json"))
	require.NoError(t, err)
	require.Error(t, s.Put(context.Background(), "k", []byte("{not json")))
	_, err = s.Get(context.Background(), "k")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestFileStoreCorruptFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "s.json")
	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0o644))
	_, err := OpenFile(path)
	require.Error(t, err)
}

func TestOpen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, err := Open(ctx, Options{Backend: BackendMemory})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = Open(ctx, Options{Path: filepath.Join(t.TempDir(), "x.json")})
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)

	_, err = Open(ctx, Options{Backend: "etcd"})
	require.Error(t, err)

	_, err = Open(ctx, Options{Backend: BackendFile})
	require.Error(t, err, "file backend needs a path")
}

func TestRedisStoreMiniredis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s := NewRedisStoreWithClient(client, "blackjack-test:")
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.Ping(context.Background()))
	exerciseStore(t, s)

	require.NoError(t, s.Put(context.Background(), "stats:lifetime", []byte(`{"rounds":3}`)))
	assert.True(t, mr.Exists("blackjack-test:stats:lifetime"), "keys carry the prefix")
	assert.False(t, mr.Exists("stats:lifetime"))
	got, err := mr.Get("blackjack-test:stats:lifetime")
	require.NoError(t, err)
	assert.Equal(t, `{"rounds":3}`, got)
}

func TestRedisStoreOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	s, err := Open(ctx, Options{Backend: BackendRedis, RedisAddr: mr.Addr(), Prefix: "bj:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, SaveJSON(ctx, s, KeyLifetimeStats, record{Name: "bob", Score: 7}))
	assert.True(t, mr.Exists("bj:"+KeyLifetimeStats))
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("BLACKJACK_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("BLACKJACK_TEST_REDIS_ADDR not set")
	}

	s := NewRedisStore(addr, "", 0, "blackjack-test:")
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Ping(context.Background()))
	exerciseStore(t, s)
}
