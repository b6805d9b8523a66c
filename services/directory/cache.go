package directory

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
)

const cacheKeyPrefix = "directory:"

// PageCache stores rendered result pages by canonical query.
type PageCache interface {
	Get(ctx context.Context, key string) (*Page, bool, error)
	Set(ctx context.Context, key string, page *Page) error
}

// RedisPageCache implements PageCache on Redis with a fixed TTL.
type RedisPageCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisPageCache(client *redis.Client, ttl time.Duration) *RedisPageCache {
	return &RedisPageCache{client: client, ttl: ttl}
}

func (c *RedisPageCache) Get(ctx context.Context, key string) (*Page, bool, error) {
	val, err := c.client.Get(ctx, cacheKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var page Page
	if err := json.Unmarshal(val, &page); err != nil {
		return nil, false, err
	}
	return &page, true, nil
}

func (c *RedisPageCache) Set(ctx context.Context, key string, page *Page) error {
	data, err := json.Marshal(page)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, cacheKeyPrefix+key, data, c.ttl).Err()
}
