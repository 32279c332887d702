package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisStore(client, time.Hour, zap.NewNop()), mr
}

func TestRedisStore_LoadEmptyIDCreatesSession(t *testing.T) {
	store, _ := setupTestStore(t)

	s, err := store.Load(context.Background(), "")
	require.NoError(t, err)
	assert.True(t, s.IsNew())
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, 0, s.Len())
}

func TestRedisStore_SaveAndLoad(t *testing.T) {
	store, mr := setupTestStore(t)
	ctx := context.Background()

	s, err := store.Load(ctx, "")
	require.NoError(t, err)
	require.NoError(t, s.Set("greeting", map[string]int{"n": 3}))
	require.NoError(t, store.Save(ctx, s))

	assert.True(t, mr.Exists(sessionKeyPrefix+s.ID))
	assert.Equal(t, time.Hour, mr.TTL(sessionKeyPrefix+s.ID))

	loaded, err := store.Load(ctx, s.ID)
	require.NoError(t, err)
	assert.False(t, loaded.IsNew())

	var got map[string]int
	found, err := loaded.Get("greeting", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 3, got["n"])
}

func TestRedisStore_UnknownIDStartsFresh(t *testing.T) {
	store, _ := setupTestStore(t)

	s, err := store.Load(context.Background(), "does-not-exist")
	require.NoError(t, err)
	assert.True(t, s.IsNew())
	assert.NotEqual(t, "does-not-exist", s.ID)
}

func TestRedisStore_SaveUnmodifiedSkipsWrite(t *testing.T) {
	store, mr := setupTestStore(t)

	s, err := store.Load(context.Background(), "")
	require.NoError(t, err)
	require.NoError(t, store.Save(context.Background(), s))

	assert.False(t, mr.Exists(sessionKeyPrefix+s.ID))
}

func TestRedisStore_EmptySessionIsDeleted(t *testing.T) {
	store, mr := setupTestStore(t)
	ctx := context.Background()

	s, _ := store.Load(ctx, "")
	require.NoError(t, s.Set("cart", map[string]string{}))
	require.NoError(t, store.Save(ctx, s))
	require.True(t, mr.Exists(sessionKeyPrefix+s.ID))

	s.Delete("cart")
	require.NoError(t, store.Save(ctx, s))
	assert.False(t, mr.Exists(sessionKeyPrefix+s.ID))
}

func TestRedisStore_CorruptBlobStartsFresh(t *testing.T) {
	store, mr := setupTestStore(t)
	require.NoError(t, mr.Set(sessionKeyPrefix+"broken", "not json"))

	s, err := store.Load(context.Background(), "broken")
	require.NoError(t, err)
	assert.True(t, s.IsNew())
}

func TestRedisStore_LoadError(t *testing.T) {
	store, mr := setupTestStore(t)
	mr.SetError("READONLY")

	_, err := store.Load(context.Background(), "abc")
	assert.Error(t, err)
}

func TestRedisStore_Ping(t *testing.T) {
	store, _ := setupTestStore(t)

	assert.NoError(t, store.Ping(context.Background()))
}
