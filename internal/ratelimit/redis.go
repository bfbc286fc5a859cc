package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// incrScript атомарно увеличивает счётчик и ставит TTL окна при первом обращении.
var incrScript = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return n
`)

// RedisCounter хранит окна в Redis, чтобы лимит был общим для всех реплик.
type RedisCounter struct {
	client    redis.Scripter
	keyPrefix string
}

// NewRedisCounter создаёт счётчик. Пустой keyPrefix заменяется на "rate_limit:".
func NewRedisCounter(client redis.Scripter, keyPrefix string) *RedisCounter {
	if keyPrefix == "" {
		keyPrefix = "rate_limit:"
	}
	return &RedisCounter{client: client, keyPrefix: keyPrefix}
}

// Incr реализует Counter.
func (c *RedisCounter) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	const op = "ratelimit.RedisCounter.Incr"
	n, err := incrScript.Run(ctx, c.client, []string{c.keyPrefix + key}, window.Milliseconds()).Int64()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}
