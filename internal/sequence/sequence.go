// Package sequence hands out human-readable document numbers such as
// REQ-2026-00042. Each prefix gets its own counter per calendar year.
package sequence

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Counter atomically increments the named counter and returns the new value.
// The first call for a name returns 1.
type Counter interface {
	Next(ctx context.Context, name string) (int64, error)
}

type Generator struct {
	counter Counter
	now     func() time.Time
}

func NewGenerator(counter Counter) *Generator {
	return &Generator{counter: counter, now: time.Now}
}

// WithClock replaces the time source, mostly for tests
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Next returns the next number for prefix in the current year
func (g *Generator) Next(ctx context.Context, prefix string) (string, error) {
	year := g.now().Year()
	value, err := g.counter.Next(ctx, CounterName(prefix, year))
	if err != nil {
		return "", fmt.Errorf("failed to allocate %s number: %w", prefix, err)
	}
	return Format(prefix, year, value), nil
}

// CounterName is the key a prefix and year are counted under
func CounterName(prefix string, year int) string {
	return fmt.Sprintf("%s-%d", prefix, year)
}

func Format(prefix string, year int, value int64) string {
	return fmt.Sprintf("%s-%d-%05d", prefix, year, value)
}

// MemoryCounter keeps counters in process memory. Values are lost on restart.
type MemoryCounter struct {
	mu     sync.Mutex
	values map[string]int64
}

func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{values: make(map[string]int64)}
}

func (c *MemoryCounter) Next(_ context.Context, name string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[name]++
	return c.values[name], nil
}
