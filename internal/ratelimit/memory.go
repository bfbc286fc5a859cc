package ratelimit

import (
	"context"
	"sync"
	"time"
)

type memoryWindow struct {
	count   int64
	resetAt time.Time
}

// MemoryCounter хранит окна в памяти процесса. Просроченные окна удаляются
// не чаще одного раза за sweepEvery.
type MemoryCounter struct {
	mu         sync.Mutex
	windows    map[string]*memoryWindow
	now        func() time.Time
	nextSweep  time.Time
	sweepEvery time.Duration
}

// NewMemoryCounter создаёт пустой счётчик.
func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{
		windows:    make(map[string]*memoryWindow),
		now:        time.Now,
		sweepEvery: time.Minute,
	}
}

// Incr реализует Counter.
func (c *MemoryCounter) Incr(_ context.Context, key string, window time.Duration) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if now.After(c.nextSweep) {
		for k, w := range c.windows {
			if !now.Before(w.resetAt) {
				delete(c.windows, k)
			}
		}
		c.nextSweep = now.Add(c.sweepEvery)
	}

	w, ok := c.windows[key]
	if !ok || !now.Before(w.resetAt) {
		w = &memoryWindow{resetAt: now.Add(window)}
		c.windows[key] = w
	}
	w.count++
	return w.count, nil
}
