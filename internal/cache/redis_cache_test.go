package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisCache(rdb), mr
}

func TestJSONRoundTripAndExpiry(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	type item struct {
		Title string `json:"title"`
	}
	require.NoError(t, c.SetJSON(ctx, "k", []item{{Title: "Intern"}}, time.Minute))

	var got []item
	ok, err := c.GetJSON(ctx, "k", &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Intern", got[0].Title)

	mr.FastForward(2 * time.Minute)
	ok, err = c.GetJSON(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCorruptEntryIsAMiss(t *testing.T) {
	c, mr := newTestCache(t)
	require.NoError(t, mr.Set("bad", "{not json"))

	var dst map[string]any
	ok, err := c.GetJSON(context.Background(), "bad", &dst)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, mr.Exists("bad"))
}

func TestGenerationBump(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	gen, err := c.Generation(ctx, "jobs")
	require.NoError(t, err)
	assert.Zero(t, gen)

	require.NoError(t, c.Bump(ctx, "jobs"))
	require.NoError(t, c.Bump(ctx, "jobs"))
	gen, err = c.Generation(ctx, "jobs")
	require.NoError(t, err)
	assert.EqualValues(t, 2, gen)

	require.NoError(t, c.Del(ctx))
}
