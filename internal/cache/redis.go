// Package cache хранит значения в Redis в виде JSON с TTL.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/magabrotheeeer/saaskit/internal/config"
)

// Cache JSON-кэш поверх Redis. Все ключи получают общий префикс.
type Cache struct {
	client *redis.Client
	prefix string
}

// New подключается к Redis по секции redis конфигурации и проверяет соединение.
func New(ctx context.Context, cfg config.Redis) (*Cache, error) {
	const op = "cache.New"

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Username:     cfg.User,
		Password:     cfg.Password,
		DB:           cfg.DB,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.Timeout,
		WriteTimeout: cfg.Timeout,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return NewFromClient(client, cfg.KeyPrefix), nil
}

// NewFromClient оборачивает готовый клиент.
func NewFromClient(client *redis.Client, prefix string) *Cache {
	return &Cache{client: client, prefix: prefix}
}

// Client отдаёт клиент для компонентов со своей схемой ключей, например счётчика rate limit.
func (c *Cache) Client() *redis.Client {
	return c.client
}

// Prefix общий префикс ключей.
func (c *Cache) Prefix() string {
	return c.prefix
}

// Get декодирует значение ключа в dst. Отсутствующий ключ даёт (false, nil).
func (c *Cache) Get(ctx context.Context, key string, dst any) (bool, error) {
	const op = "cache.Get"

	raw, err := c.client.Get(ctx, c.prefix+key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("%s: decode %q: %w", op, key, err)
	}
	return true, nil
}

// Set кодирует value в JSON и сохраняет на ttl.
func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	const op = "cache.Set"

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%s: encode %q: %w", op, key, err)
	}
	if err := c.client.Set(ctx, c.prefix+key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Invalidate удаляет ключи. Отсутствующие ключи не считаются ошибкой.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) error {
	const op = "cache.Invalidate"

	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.prefix + k
	}
	if err := c.client.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *Cache) Close() error {
	return c.client.Close()
}
