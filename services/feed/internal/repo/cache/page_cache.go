package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"girlfanz/services/feed/internal/entity"

	"github.com/redis/go-redis/v9"
)

const generationKey = "feed:page:generation"

// PageKey identifies one raw page. Pages hold store rows before visibility
// resolution, so the key carries no viewer.
//
// Generation must be read before the store is queried. A fill stamped with
// an older generation lands in a namespace no reader uses any more.
type PageKey struct {
	Generation int64
	CreatorID  string
	Cursor     string
	Limit      int
}

type PageCache interface {
	Generation(ctx context.Context) (int64, error)
	Get(ctx context.Context, key PageKey) ([]*entity.Post, bool, error)
	Set(ctx context.Context, key PageKey, posts []*entity.Post) error
	// Invalidate drops every cached page by moving to a new generation.
	Invalidate(ctx context.Context) error
}

type redisPageCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisPageCache(client *redis.Client, ttl time.Duration) PageCache {
	return &redisPageCache{client: client, ttl: ttl}
}

func (c *redisPageCache) Get(ctx context.Context, key PageKey) ([]*entity.Post, bool, error) {
	data, err := c.client.Get(ctx, pageKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read cached page: %w", err)
	}

	var posts []*entity.Post
	if err := json.Unmarshal(data, &posts); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached page: %w", err)
	}
	return posts, true, nil
}

func (c *redisPageCache) Set(ctx context.Context, key PageKey, posts []*entity.Post) error {
	data, err := json.Marshal(posts)
	if err != nil {
		return fmt.Errorf("failed to encode page: %w", err)
	}

	if err := c.client.Set(ctx, pageKey(key), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache page: %w", err)
	}
	return nil
}

func (c *redisPageCache) Invalidate(ctx context.Context) error {
	if err := c.client.Incr(ctx, generationKey).Err(); err != nil {
		return fmt.Errorf("failed to bump page generation: %w", err)
	}
	return nil
}

func (c *redisPageCache) Generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, generationKey).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read page generation: %w", err)
	}
	return gen, nil
}

func pageKey(k PageKey) string {
	scope := "all"
	if k.CreatorID != "" {
		scope = k.CreatorID
	}

	cur := "first"
	if k.Cursor != "" {
		sum := sha256.Sum256([]byte(k.Cursor))
		cur = hex.EncodeToString(sum[:16])
	}

	return fmt.Sprintf("feed:page:g%d:%s:%s:%d", k.Generation, scope, cur, k.Limit)
}
