package sequence

import (
	"context"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "procurement:seq:"

// RedisCounter backs sequence numbers with INCR so several API instances
// can share one series.
type RedisCounter struct {
	client redis.Cmdable
}

func NewRedisCounter(client redis.Cmdable) *RedisCounter {
	return &RedisCounter{client: client}
}

func (c *RedisCounter) Next(ctx context.Context, name string) (int64, error) {
	return c.client.Incr(ctx, redisKeyPrefix+name).Result()
}
