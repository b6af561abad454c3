package studio

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/otpstudio/studio-server-go/internal/model"
)

func TestPostsCache_FreshHitSkipsRefresh(t *testing.T) {
	cache := NewPostsCache(60 * time.Second)

	now := time.Unix(1000, 0)
	cache.now = func() time.Time { return now }

	calls := 0
	refresh := func(ctx context.Context) ([]model.Post, error) {
		calls++
		return []model.Post{{ID: 1, Slug: "first"}}, nil
	}

	ctx := context.Background()

	posts, err := cache.GetOrRefresh(ctx, false, refresh)
	require.NoError(t, err)
	assert.Len(t, posts, 1)
	assert.Equal(t, 1, calls)

	// second call within the TTL: served from cache, no refresh
	now = now.Add(30 * time.Second)
	posts, err = cache.GetOrRefresh(ctx, false, refresh)
	require.NoError(t, err)
	assert.Len(t, posts, 1)
	assert.Equal(t, 1, calls)

	// past the TTL: refreshed again
	now = now.Add(31 * time.Second)
	_, err = cache.GetOrRefresh(ctx, false, refresh)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestPostsCache_ForceBypassesFreshness(t *testing.T) {
	cache := NewPostsCache(60 * time.Second)

	calls := 0
	refresh := func(ctx context.Context) ([]model.Post, error) {
		calls++
		return nil, nil
	}

	ctx := context.Background()
	_, err := cache.GetOrRefresh(ctx, false, refresh)
	require.NoError(t, err)
	_, err = cache.GetOrRefresh(ctx, true, refresh)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestPostsCache_TimestampStrictlyIncreases(t *testing.T) {
	cache := NewPostsCache(60 * time.Second)

	now := time.Unix(1000, 0)
	cache.now = func() time.Time { return now }

	refresh := func(ctx context.Context) ([]model.Post, error) { return nil, nil }

	ctx := context.Background()
	_, err := cache.GetOrRefresh(ctx, true, refresh)
	require.NoError(t, err)
	first := cache.LastFetchAt()

	now = now.Add(time.Millisecond)
	_, err = cache.GetOrRefresh(ctx, true, refresh)
	require.NoError(t, err)
	second := cache.LastFetchAt()

	assert.True(t, second.After(first), "fetch timestamp must strictly increase")
}

func TestPostsCache_FailedRefreshKeepsNothingStale(t *testing.T) {
	cache := NewPostsCache(60 * time.Second)

	now := time.Unix(1000, 0)
	cache.now = func() time.Time { return now }

	good := func(ctx context.Context) ([]model.Post, error) {
		return []model.Post{{ID: 1}}, nil
	}
	bad := func(ctx context.Context) ([]model.Post, error) {
		return nil, errors.New("network down")
	}

	ctx := context.Background()
	_, err := cache.GetOrRefresh(ctx, true, good)
	require.NoError(t, err)
	before := cache.LastFetchAt()

	_, err = cache.GetOrRefresh(ctx, true, bad)
	require.Error(t, err)

	// old snapshot and timestamp untouched by the failed refresh
	assert.Equal(t, before, cache.LastFetchAt())
	posts, err := cache.GetOrRefresh(ctx, false, bad)
	require.NoError(t, err)
	assert.Len(t, posts, 1)
}

func TestPostsCache_Invalidate(t *testing.T) {
	cache := NewPostsCache(60 * time.Second)

	calls := 0
	refresh := func(ctx context.Context) ([]model.Post, error) {
		calls++
		return nil, nil
	}

	ctx := context.Background()
	_, err := cache.GetOrRefresh(ctx, false, refresh)
	require.NoError(t, err)

	cache.Invalidate()
	assert.True(t, cache.LastFetchAt().IsZero())

	_, err = cache.GetOrRefresh(ctx, false, refresh)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}
