// Package cache keeps rendered booking-list pages so repeated list views do
// not hit the database. Any successful mutation invalidates every page.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Leganyst/samara-beach/internal/model"
)

// ListPage — закэшированный ответ List.
type ListPage struct {
	Bookings   []model.SamaraBooking `json:"bookings"`
	TotalCount int64                 `json:"totalCount"`
}

type ListCache interface {
	// Get returns the cached page and true, or false on a miss. gen is the
	// generation the lookup ran under; pass it to Set when filling the miss.
	Get(ctx context.Context, take, skip int) (page *ListPage, gen int64, hit bool, err error)
	// Set stores page under generation gen. A page read before an Invalidate
	// lands under the old generation and is never served.
	Set(ctx context.Context, gen int64, take, skip int, page *ListPage) error
	// Invalidate drops every cached page.
	Invalidate(ctx context.Context) error
}

// Noop is used when Redis is not configured.
type Noop struct{}

func (Noop) Get(context.Context, int, int) (*ListPage, int64, bool, error) { return nil, 0, false, nil }
func (Noop) Set(context.Context, int64, int, int, *ListPage) error         { return nil }
func (Noop) Invalidate(context.Context) error                              { return nil }

// RedisListCache stores pages as JSON under "<prefix>v<generation>:<take>:<skip>".
// Invalidate bumps the generation counter, so stale pages are never read
// again and simply expire by TTL.
type RedisListCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisListCache creates a Redis-backed cache. Prefix may be empty.
func NewRedisListCache(client *redis.Client, prefix string, ttl time.Duration) *RedisListCache {
	if prefix == "" {
		prefix = "samara:bookings:"
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &RedisListCache{client: client, prefix: prefix, ttl: ttl}
}

func (c *RedisListCache) genKey() string {
	return c.prefix + "gen"
}

func (c *RedisListCache) pageKey(gen int64, take, skip int) string {
	return fmt.Sprintf("%sv%d:%d:%d", c.prefix, gen, take, skip)
}

func (c *RedisListCache) generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, c.genKey()).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, err
	}
	return gen, nil
}

func (c *RedisListCache) Get(ctx context.Context, take, skip int) (*ListPage, int64, bool, error) {
	gen, err := c.generation(ctx)
	if err != nil {
		return nil, 0, false, err
	}
	b, err := c.client.Get(ctx, c.pageKey(gen, take, skip)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, gen, false, nil
		}
		return nil, gen, false, err
	}
	var page ListPage
	if err := json.Unmarshal(b, &page); err != nil {
		// битая запись — считаем промахом
		_ = c.client.Del(ctx, c.pageKey(gen, take, skip)).Err()
		return nil, gen, false, nil
	}
	return &page, gen, true, nil
}

// Set пишет под переданным поколением, а не под текущим: иначе страница,
// прочитанная до Invalidate, попала бы в новое поколение.
func (c *RedisListCache) Set(ctx context.Context, gen int64, take, skip int, page *ListPage) error {
	b, err := json.Marshal(page)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.pageKey(gen, take, skip), b, c.ttl).Err()
}

func (c *RedisListCache) Invalidate(ctx context.Context) error {
	return c.client.Incr(ctx, c.genKey()).Err()
}
