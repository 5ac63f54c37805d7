package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/agricoop/api/internal/config"
)

func TestNew_DisabledReturnsNoop(t *testing.T) {
	store, err := New(context.Background(), config.RedisConfig{Enabled: false})
	require.NoError(t, err)
	assert.IsType(t, NoopStore{}, store)
}

func TestNoopStore_AlwaysMisses(t *testing.T) {
	ctx := context.Background()
	var s Store = NoopStore{}

	require.NoError(t, s.Set(ctx, KeyCropTypes, []byte("[]"), time.Minute))
	value, ok, err := s.Get(ctx, KeyCropTypes)
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, value)
	assert.NoError(t, s.Delete(ctx, ReferenceKeys...))
	assert.NoError(t, s.Ping(ctx))
	assert.NoError(t, s.Close())
}

func TestNewRedisStore_Unreachable(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	_, err := NewRedisStore(context.Background(), config.RedisConfig{Addr: "127.0.0.1:1"})
	assert.Error(t, err)
}

func TestRedisStore_RoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Skipping integration test, redis unavailable: %v", err)
	}

	store := NewRedisStoreFromClient(client)
	defer store.Close()

	key := "test:" + t.Name()
	require.NoError(t, store.Set(ctx, key, []byte(`{"ok":true}`), time.Minute))

	value, ok, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"ok":true}`, string(value))

	require.NoError(t, store.Delete(ctx, key))
	_, ok, err = store.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)
}
