package snapshot

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/fundlens/backend/pkg/redis"
)

func newCachedStore(t *testing.T) (*CachedStore, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewCachedStore(NewMemoryStore(), redis.Wrap(rdb), nil), mr
}

func TestCachedStore_GetPopulatesCache(t *testing.T) {
	ctx := context.Background()
	s, mr := newCachedStore(t)

	_, err := s.Add(ctx, testSnapshot("c1", 50), "2024-01", "")
	require.NoError(t, err)

	got, err := s.Get(ctx, "2024-01")
	require.NoError(t, err)
	assert.Equal(t, "2024-01", got.ID)
	assert.True(t, mr.Exists("fundlens:cache:snapshot:2024-01"))

	cached, err := s.Get(ctx, "2024-01")
	require.NoError(t, err)
	assert.Equal(t, got.Rows[0].Symbol, cached.Rows[0].Symbol)
}

func TestCachedStore_WritesInvalidate(t *testing.T) {
	ctx := context.Background()
	s, mr := newCachedStore(t)

	for i, id := range []string{"2024-01", "2024-02"} {
		_, err := s.Add(ctx, testSnapshot(string(rune('a'+i)), 50), id, "")
		require.NoError(t, err)
	}
	require.NoError(t, s.SetActive(ctx, "2024-01"))

	_, err := s.Get(ctx, "2024-01")
	require.NoError(t, err)
	_, err = s.Get(ctx, "2024-02")
	require.NoError(t, err)

	require.NoError(t, s.SetActive(ctx, "2024-02"))
	assert.False(t, mr.Exists("fundlens:cache:snapshot:2024-01"))
	assert.False(t, mr.Exists("fundlens:cache:snapshot:2024-02"))

	old, err := s.Get(ctx, "2024-01")
	require.NoError(t, err)
	assert.False(t, old.Active)

	require.NoError(t, s.SoftDelete(ctx, "2024-01"))
	deleted, err := s.Get(ctx, "2024-01")
	require.NoError(t, err)
	assert.True(t, deleted.Deleted)
}

func TestCachedStore_RedisDownFallsThrough(t *testing.T) {
	ctx := context.Background()
	s, mr := newCachedStore(t)

	_, err := s.Add(ctx, testSnapshot("c1", 50), "2024-01", "")
	require.NoError(t, err)

	mr.Close()

	got, err := s.Get(ctx, "2024-01")
	require.NoError(t, err)
	assert.Equal(t, "2024-01", got.ID)
}
