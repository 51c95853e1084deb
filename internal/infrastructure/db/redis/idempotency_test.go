package redis

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient connects to a local Redis or skips the test.
func newTestClient(t *testing.T) *redis.Client {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		t.Skipf("redis not available: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestIdempotencyStore_Lifecycle(t *testing.T) {
	client := newTestClient(t)
	store := NewIdempotencyStore(client, time.Minute)
	ctx := context.Background()

	key := "seller-1:" + uuid.NewString()
	t.Cleanup(func() { client.Del(ctx, store.key(key)) })

	id, reserved, err := store.Reserve(ctx, key)
	require.NoError(t, err)
	assert.True(t, reserved)
	assert.Empty(t, id)

	// Second caller sees the in-flight reservation.
	id, reserved, err = store.Reserve(ctx, key)
	require.NoError(t, err)
	assert.False(t, reserved)
	assert.Empty(t, id)

	require.NoError(t, store.Complete(ctx, key, "item-42"))

	id, reserved, err = store.Reserve(ctx, key)
	require.NoError(t, err)
	assert.False(t, reserved)
	assert.Equal(t, "item-42", id)

	ttl, err := client.TTL(ctx, store.key(key)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}

func TestIdempotencyStore_Release(t *testing.T) {
	client := newTestClient(t)
	store := NewIdempotencyStore(client, time.Minute)
	ctx := context.Background()

	key := "seller-1:" + uuid.NewString()
	t.Cleanup(func() { client.Del(ctx, store.key(key)) })

	_, reserved, err := store.Reserve(ctx, key)
	require.NoError(t, err)
	require.True(t, reserved)

	require.NoError(t, store.Release(ctx, key))

	_, reserved, err = store.Reserve(ctx, key)
	require.NoError(t, err)
	assert.True(t, reserved, "a released key can be claimed again")
}

func TestIdempotencyStore_DefaultTTL(t *testing.T) {
	store := NewIdempotencyStore(nil, 0)
	assert.Equal(t, idempotencyTTL, store.ttl)
	assert.Equal(t, "idem:a:b", store.key("a:b"))
}
