// Package sessioncache implements the cover workflow's durable side channel:
// a last-write-wins cache keyed by (school, grade), never the system of record.
package sessioncache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/trezcool/kitabu/core/cover"
)

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ cover.SessionCache = (*RedisCache)(nil)

func NewRedisCache(url string, ttl time.Duration) (*RedisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Wrap(err, "parsing redis url")
	}
	return &RedisCache{client: redis.NewClient(opts), ttl: ttl}, nil
}

func key(schoolID string, grade cover.Grade) string {
	return fmt.Sprintf("cover:%s:%s", schoolID, grade)
}

func (c *RedisCache) Get(ctx context.Context, schoolID string, grade cover.Grade) (cover.CachedSelection, bool, error) {
	data, err := c.client.Get(ctx, key(schoolID, grade)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return cover.CachedSelection{}, false, nil
		}
		return cover.CachedSelection{}, false, errors.Wrap(err, "reading cache")
	}
	var sel cover.CachedSelection
	if err := json.Unmarshal(data, &sel); err != nil {
		// a corrupt entry is as good as a miss
		return cover.CachedSelection{}, false, nil
	}
	return sel, true, nil
}

func (c *RedisCache) Put(ctx context.Context, schoolID string, grade cover.Grade, sel cover.CachedSelection) error {
	data, err := json.Marshal(sel)
	if err != nil {
		return errors.Wrap(err, "encoding cache entry")
	}
	if err := c.client.Set(ctx, key(schoolID, grade), data, c.ttl).Err(); err != nil {
		return errors.Wrap(err, "writing cache")
	}
	return nil
}

func (c *RedisCache) Delete(ctx context.Context, schoolID string, grade cover.Grade) error {
	if err := c.client.Del(ctx, key(schoolID, grade)).Err(); err != nil {
		return errors.Wrap(err, "clearing cache")
	}
	return nil
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
