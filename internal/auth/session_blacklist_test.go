package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInMemoryBlacklistStore(t *testing.T) {
	store := NewInMemoryBlacklistStore()
	defer store.Close()
	assert.NotNil(t, store)
	assert.NotNil(t, store.blacklist)
}

func TestAddToBlacklist(t *testing.T) {
	store := NewInMemoryBlacklistStore()
	defer store.Close()
	jti := "test-token-id"
	exp := time.Now().Add(time.Hour)

	err := store.AddToBlacklist(context.Background(), jti, exp)
	assert.NoError(t, err)

	store.mu.RLock()
	expTime, exists := store.blacklist[jti]
	store.mu.RUnlock()

	assert.True(t, exists)
	assert.Equal(t, exp, expTime)
}

func TestIsBlacklisted(t *testing.T) {
	store := NewInMemoryBlacklistStore()
	defer store.Close()
	ctx := context.Background()

	isBlacklisted, err := store.IsBlacklisted(ctx, "non-existent-token")
	assert.NoError(t, err)
	assert.False(t, isBlacklisted)

	require.NoError(t, store.AddToBlacklist(ctx, "blacklisted-token", time.Now().Add(time.Hour)))
	isBlacklisted, err = store.IsBlacklisted(ctx, "blacklisted-token")
	assert.NoError(t, err)
	assert.True(t, isBlacklisted)
}

func TestCleanUpExpired(t *testing.T) {
	store := NewInMemoryBlacklistStore()
	defer store.Close()
	ctx := context.Background()

	require.NoError(t, store.AddToBlacklist(ctx, "expired-token-1", time.Now().Add(-time.Hour)))
	require.NoError(t, store.AddToBlacklist(ctx, "expired-token-2", time.Now().Add(-time.Minute)))
	require.NoError(t, store.AddToBlacklist(ctx, "valid-token", time.Now().Add(time.Hour)))

	store.CleanUpExpired()

	for jti, want := range map[string]bool{"expired-token-1": false, "expired-token-2": false, "valid-token": true} {
		got, err := store.IsBlacklisted(ctx, jti)
		assert.NoError(t, err)
		assert.Equal(t, want, got, jti)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	store := NewInMemoryBlacklistStore()
	store.Close()
	assert.NotPanics(t, store.Close)
}

func TestRedisBlacklistStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := NewRedisBlacklistStore(client)
	ctx := context.Background()

	require.NoError(t, store.AddToBlacklist(ctx, "jti-1", time.Now().Add(time.Minute)))
	got, err := store.IsBlacklisted(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, got)
	assert.True(t, mr.Exists("jwt:blacklist:jti-1"))

	// the entry expires with the token
	mr.FastForward(2 * time.Minute)
	got, err = store.IsBlacklisted(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, got)

	require.NoError(t, store.AddToBlacklist(ctx, "jti-old", time.Now().Add(-time.Minute)))
	assert.False(t, mr.Exists("jwt:blacklist:jti-old"))
}
