// Package ratelimit реализует ограничение частоты запросов фиксированным окном.
//
// Счётчик вынесен за интерфейс Counter: в одном процессе хватает MemoryCounter,
// несколько реплик API делят RedisCounter.
package ratelimit

import (
	"context"
	"fmt"
	"time"
)

// Counter увеличивает счётчик ключа в текущем окне и возвращает новое значение.
// Окно начинается с первого обращения к ключу и длится window.
type Counter interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

// Limiter пропускает не более limit запросов на ключ за окно.
type Limiter struct {
	counter Counter
	limit   int64
	window  time.Duration
}

// NewLimiter создаёт Limiter поверх счётчика.
func NewLimiter(counter Counter, limit int64, window time.Duration) *Limiter {
	return &Limiter{counter: counter, limit: limit, window: window}
}

// Allow учитывает запрос и сообщает, укладывается ли он в лимит.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, error) {
	const op = "ratelimit.Allow"
	n, err := l.counter.Incr(ctx, key, l.window)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return n <= l.limit, nil
}
