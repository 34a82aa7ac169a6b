package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedValue struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func newTestCache(t *testing.T) *Cache {
	t.Helper()

	srv := miniredis.RunT(t)
	client, err := NewFromAddr(srv.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	return NewCache(client, "agricredit")
}

func TestCacheSetGet(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	in := cachedValue{Name: "maize", Count: 3}
	require.NoError(t, cache.Set(ctx, "test:key", in, TTLMedium))

	var out cachedValue
	found, err := cache.Get(ctx, "test:key", &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, in, out)
}

func TestCacheGetMiss(t *testing.T) {
	cache := newTestCache(t)

	var out cachedValue
	found, err := cache.Get(context.Background(), "missing", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCacheDelete(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "gone", cachedValue{Name: "beans"}, 0))
	require.NoError(t, cache.Delete(ctx, "gone"))

	var out cachedValue
	found, err := cache.Get(ctx, "gone", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCacheGetOrSet(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	calls := 0
	fill := func() (interface{}, error) {
		calls++
		return cachedValue{Name: "tomatoes", Count: calls}, nil
	}

	var out cachedValue
	require.NoError(t, cache.GetOrSet(ctx, "prices", &out, time.Minute, fill))
	assert.Equal(t, 1, calls)
	assert.Equal(t, "tomatoes", out.Name)

	// Second call comes from cache
	var again cachedValue
	require.NoError(t, cache.GetOrSet(ctx, "prices", &again, time.Minute, fill))
	assert.Equal(t, 1, calls)
	assert.Equal(t, out, again)
}

func TestCacheDisabledClient(t *testing.T) {
	cache := NewCache(&Client{enabled: false}, "agricredit")
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k", cachedValue{}, 0))

	var out cachedValue
	found, err := cache.Get(ctx, "k", &out)
	require.NoError(t, err)
	assert.False(t, found)
}
