package counter

import (
	"errors"
	"sync"
)

// Activation drives an on/off state from a counter: active is count > 0,
// flipped when Invert is set.
type Activation struct {
	Invert bool
	Set    func(active bool)
}

// Apply pushes the state for count to Set.
func (a Activation) Apply(count int) {
	if a.Set != nil {
		a.Set(a.Invert != (count > 0))
	}
}

// Active returns the state for count without calling Set.
func (a Activation) Active(count int) bool {
	return a.Invert != (count > 0)
}

// Attach subscribes a to c and applies the current count immediately.
func Attach(c *Counter, a Activation) {
	c.OnChange(a.Apply)
	a.Apply(c.Value())
}

// Binding ties a set of counters to an enabled state. Enabling increments
// every counter (decrements when inverted) and disabling does the reverse.
// The counter set must not change while bound.
type Binding struct {
	counters []*Counter
	invert   bool

	mu      sync.Mutex
	enabled bool
}

// NewBinding creates a disabled binding over counters.
func NewBinding(invert bool, counters ...*Counter) *Binding {
	return &Binding{counters: counters, invert: invert}
}

// Enable counts the binding in. Repeated calls are no-ops.
func (b *Binding) Enable() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.enabled {
		return nil
	}
	b.enabled = true
	return b.count(!b.invert)
}

// Disable counts the binding out. Repeated calls are no-ops.
func (b *Binding) Disable() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.enabled {
		return nil
	}
	b.enabled = false
	return b.count(b.invert)
}

// Enabled reports the binding state.
func (b *Binding) Enabled() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.enabled
}

func (b *Binding) count(up bool) error {
	var errs []error
	for _, c := range b.counters {
		if c == nil {
			continue
		}
		if err := c.Count(up); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
