package cache

import (
	"context"
	"testing"
	"time"

	"girlfanz/services/feed/internal/entity"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*miniredis.Miniredis, PageCache) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, NewRedisPageCache(client, 30*time.Second)
}

func TestPageKey(t *testing.T) {
	assert.Equal(t, "feed:page:g0:all:first:21", pageKey(PageKey{Limit: 21}))
	assert.Equal(t, "feed:page:g3:creator-1:first:5", pageKey(PageKey{Generation: 3, CreatorID: "creator-1", Limit: 5}))

	a := pageKey(PageKey{Cursor: "abc", Limit: 21})
	b := pageKey(PageKey{Cursor: "abd", Limit: 21})
	assert.NotEqual(t, a, b)
	assert.NotContains(t, a, "abc")
	assert.NotEqual(t, a, pageKey(PageKey{Cursor: "abc", Limit: 11}))
}

func TestRedisPageCache_RoundTrip(t *testing.T) {
	mr, c := newTestCache(t)
	ctx := context.Background()
	key := PageKey{Cursor: "tok", Limit: 3}

	_, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	content := "hello"
	price := 500
	posts := []*entity.Post{
		{ID: "p1", CreatorID: "c1", Visibility: entity.VisibilityPublic, Content: &content, CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)},
		{ID: "p2", CreatorID: "c1", Visibility: entity.VisibilityPaid, PriceInCents: &price, Media: []entity.MediaRef{{Key: "k"}}},
	}
	require.NoError(t, c.Set(ctx, key, posts))

	got, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, posts, got)

	ttl := mr.TTL(pageKey(key))
	assert.Equal(t, 30*time.Second, ttl)
}

func TestRedisPageCache_Invalidate(t *testing.T) {
	_, c := newTestCache(t)
	ctx := context.Background()
	key := PageKey{Limit: 3}

	require.NoError(t, c.Set(ctx, key, []*entity.Post{{ID: "p1"}}))
	require.NoError(t, c.Invalidate(ctx))

	gen, err := c.Generation(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), gen)

	key.Generation = gen
	_, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisPageCache_FillAfterInvalidateIsNotServed(t *testing.T) {
	_, c := newTestCache(t)
	ctx := context.Background()

	gen, err := c.Generation(ctx)
	require.NoError(t, err)
	key := PageKey{Generation: gen, Limit: 3}

	_, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	require.False(t, ok)

	// A post is deleted while the miss is being filled from the store.
	require.NoError(t, c.Invalidate(ctx))
	require.NoError(t, c.Set(ctx, key, []*entity.Post{{ID: "deleted-post"}}))

	gen, err = c.Generation(ctx)
	require.NoError(t, err)
	_, ok, err = c.Get(ctx, PageKey{Generation: gen, Limit: 3})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisPageCache_Unavailable(t *testing.T) {
	mr, c := newTestCache(t)
	mr.Close()

	_, err := c.Generation(context.Background())
	assert.Error(t, err)
	_, _, err = c.Get(context.Background(), PageKey{Limit: 3})
	assert.Error(t, err)
	assert.Error(t, c.Set(context.Background(), PageKey{Limit: 3}, nil))
}
