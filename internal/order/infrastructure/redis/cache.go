package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"demo/ordersvc/internal/order/domain"
)

// Cache is a TTL'd read-through cache of fully assembled order details.
// Mutations invalidate; only reads populate.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewCache(rdb *redis.Client, ttl time.Duration) *Cache {
	return &Cache{rdb: rdb, ttl: ttl}
}

func key(id int64) string {
	return fmt.Sprintf("order:%d", id)
}

func (c *Cache) Get(ctx context.Context, id int64) (domain.Order, bool, error) {
	raw, err := c.rdb.Get(ctx, key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Order{}, false, nil
	}
	if err != nil {
		return domain.Order{}, false, err
	}
	var o domain.Order
	if err := json.Unmarshal(raw, &o); err != nil {
		return domain.Order{}, false, err
	}
	return o, true, nil
}

func (c *Cache) Set(ctx context.Context, o domain.Order) error {
	raw, err := json.Marshal(o)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key(o.ID), raw, c.ttl).Err()
}

func (c *Cache) Invalidate(ctx context.Context, id int64) error {
	return c.rdb.Del(ctx, key(id)).Err()
}
