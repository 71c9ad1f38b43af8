package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionKey(t *testing.T) {
	assert.Equal(t, "admin:revoked:abc", sessionKey("abc"))
}

func TestSessionStore_RevokeExpiredIsNoop(t *testing.T) {
	// nil client: any real call would panic
	store := NewSessionStore(nil)
	assert.NoError(t, store.Revoke(context.Background(), "abc", 0))
	assert.NoError(t, store.Revoke(context.Background(), "abc", -time.Second))
}

// Runs against a live server when REDIS_TEST_ADDR is set, e.g. localhost:6379.
func TestSessionStore_Live(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	ctx := context.Background()
	require.NoError(t, client.Ping(ctx).Err())

	store := NewSessionStore(client)
	sessionID := uuid.NewString()
	defer client.Del(ctx, sessionKey(sessionID))

	revoked, err := store.IsRevoked(ctx, sessionID)
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, store.Revoke(ctx, sessionID, time.Minute))

	revoked, err = store.IsRevoked(ctx, sessionID)
	require.NoError(t, err)
	assert.True(t, revoked)

	ttl, err := client.TTL(ctx, sessionKey(sessionID)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}
