// Package counter provides reference counters that toggle state when the
// count crosses zero.
package counter

import (
	"errors"
	"log/slog"
	"sync"
)

// ErrNegative is returned when a counter is decremented below zero.
var ErrNegative = errors.New("counter: went negative")

// Listener is notified with the new count after every change.
type Listener func(count int)

// Counter is a thread-safe reference count.
type Counter struct {
	name   string
	logger *slog.Logger

	mu        sync.Mutex
	count     int
	listeners []Listener
}

// New creates a counter. A nil logger uses slog.Default.
func New(name string, logger *slog.Logger) *Counter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Counter{
		name:   name,
		logger: logger.With("component", "counter", "counter", name),
	}
}

// Name returns the counter label.
func (c *Counter) Name() string { return c.name }

// Value returns the current count.
func (c *Counter) Value() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

// OnChange registers a listener.
func (c *Counter) OnChange(fn Listener) {
	c.mu.Lock()
	c.listeners = append(c.listeners, fn)
	c.mu.Unlock()
}

// Increment adds one and returns the new count.
func (c *Counter) Increment() int {
	n, _ := c.add(1)
	return n
}

// Decrement subtracts one and returns the new count. The count is allowed to
// go negative but ErrNegative is returned and an error is logged.
func (c *Counter) Decrement() (int, error) {
	return c.add(-1)
}

// Count increments when up is true and decrements otherwise.
func (c *Counter) Count(up bool) error {
	if up {
		c.Increment()
		return nil
	}
	_, err := c.Decrement()
	return err
}

func (c *Counter) add(d int) (int, error) {
	c.mu.Lock()
	c.count += d
	n := c.count
	listeners := make([]Listener, len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(n)
	}

	if n < 0 {
		c.logger.Error("counter went negative, a client decremented too often", "count", n)
		return n, ErrNegative
	}
	return n, nil
}
